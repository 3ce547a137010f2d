package rag

import (
	"strings"
	"sync"

	"github.com/hyperjump/docqa/internal/models"
)

// DefaultHistoryTurns is the number of prior turns included in a prompt.
const DefaultHistoryTurns = 4

// History is the append-only conversation of one session.
type History struct {
	mu    sync.Mutex
	turns []models.Turn
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Record appends a completed exchange.
func (h *History) Record(query, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, models.Turn{Query: query, Answer: answer})
}

// Render returns the last maxTurns turns, oldest first, as "User:" and
// "Assistant:" lines. It returns "" for an empty history or maxTurns <= 0.
func (h *History) Render(maxTurns int) string {
	turns := h.last(maxTurns)
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("User: ")
		sb.WriteString(t.Query)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(t.Answer)
	}
	return sb.String()
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Turns returns a copy of all recorded turns.
func (h *History) Turns() []models.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) last(n int) []models.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || len(h.turns) == 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	out := make([]models.Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}
