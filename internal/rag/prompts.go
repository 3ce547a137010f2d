package rag

import (
	"fmt"
	"strings"
)

// Prompts is the wording of one assistant deployment.
type Prompts struct {
	Name string
	// System frames every request.
	System string
	// Grounded is used when the index is present; it contains {context} and {question}.
	Grounded string
	// Direct is used when no documents are indexed; it contains {question}.
	Direct string
	// Extraction asks for structured paper metadata; it contains {content}. Empty
	// disables analysis after upload.
	Extraction string
}

// LegalPrompts is the legal assistant deployment.
var LegalPrompts = Prompts{
	Name: "legal",
	System: `You are an expert AI Legal Assistant specializing in Indian Law and the Indian Penal Code (IPC).

STRICT GUIDELINES:
1. Provide accurate information based on the Indian legal framework
2. Always cite relevant IPC sections, acts, or legal provisions when applicable
3. Clearly state when information is general guidance vs. specific legal advice
4. Recommend consulting a qualified lawyer for specific legal matters
5. Maintain a professional and formal tone
6. If uncertain, acknowledge limitations rather than speculate
7. Focus on factual, objective legal information

RESPONSE FORMAT:
- Start with a clear, direct answer
- Cite relevant legal sections/acts
- Provide context and explanation
- Include any important caveats or considerations
- Suggest next steps if appropriate

Remember: you provide legal information, not legal advice.`,
	Grounded: `Based on the following legal document context, provide a comprehensive answer to the user's question.

Context from documents:
{context}

Question: {question}

Provide a detailed response that:
1. Directly addresses the question
2. References specific sections or clauses from the documents
3. Explains legal implications clearly
4. Maintains accuracy and professionalism

Answer:`,
	Direct: `You are answering a question about Indian Law.

Question: {question}

Provide a comprehensive response following the guidelines above. Include relevant IPC sections, legal provisions, and practical context.

Answer:`,
}

// PaperPrompts is the research paper assistant deployment.
var PaperPrompts = Prompts{
	Name: "paper",
	System: `You are an expert AI Research Assistant that helps users understand academic papers and white papers.

GUIDELINES:
1. Base answers on the provided papers whenever they are relevant
2. Name the paper a statement comes from
3. Explain methods, results and limitations precisely
4. Distinguish the authors' claims from your own interpretation
5. If the papers do not answer the question, say so before using general knowledge`,
	Grounded: `Based on the following excerpts from the uploaded papers, answer the user's question.

Context from papers:
{context}

Question: {question}

Answer accurately, cite the paper each point comes from, and note any gaps in the provided material.

Answer:`,
	Direct: `No papers have been uploaded yet. Answer from general research knowledge.

Question: {question}

Answer:`,
	Extraction: `Extract the key information from the following research paper text. Respond in Markdown with these sections:

**Title:**
**Authors:**
**Summary:** (2-3 sentences)
**Key Findings:** (bullet points)
**Methodology:**
**Topics:** (comma-separated keywords)
**Conclusions:**

If a section cannot be determined from the text, write "Not found".

Paper text:
{content}`,
}

// PromptsFor returns the prompts of a named variant.
func PromptsFor(variant string) (Prompts, error) {
	switch strings.ToLower(variant) {
	case "", LegalPrompts.Name:
		return LegalPrompts, nil
	case PaperPrompts.Name:
		return PaperPrompts, nil
	default:
		return Prompts{}, fmt.Errorf("unknown assistant variant %q", variant)
	}
}

func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
