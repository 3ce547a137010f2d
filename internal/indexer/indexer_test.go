package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/extract/pdftest"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/storage"
	"github.com/hyperjump/docqa/internal/vector"
)

type recordingUpserter struct {
	calls [][]models.Chunk
	err   error
}

func (r *recordingUpserter) Upsert(_ context.Context, chunks []models.Chunk) error {
	r.calls = append(r.calls, chunks)
	return r.err
}

type stubAnalyzer struct {
	texts []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, raw string) string {
	s.texts = append(s.texts, raw)
	return "analysis of " + strings.Fields(raw)[0]
}

func newTestIndexer(t *testing.T, up Upserter, opts ...IndexerOption) *Indexer {
	t.Helper()
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)
	return NewIndexer(up, chunker, nil, opts...)
}

func pdfUpload(name string, pages ...string) models.Upload {
	return models.Upload{Name: name, MIMEType: "application/pdf", Data: pdftest.Build(pages...)}
}

func TestIndexer_IngestSinglePage(t *testing.T) {
	up := &recordingUpserter{}
	idx := newTestIndexer(t, up)

	res := idx.Ingest(context.Background(), pdfUpload("france.pdf", "The capital of France is Paris."))
	require.True(t, res.OK(), "result: %+v", res)
	assert.Equal(t, 1, res.Chunks)
	require.Len(t, up.calls, 1)
	chunk := up.calls[0][0]
	assert.Equal(t, "france.pdf", chunk.Source)
	assert.Contains(t, chunk.Text, "The capital of France is Paris.")
	assert.NotEmpty(t, chunk.ID)
}

func TestIndexer_IngestBatchPartialFailure(t *testing.T) {
	up := &recordingUpserter{}
	idx := newTestIndexer(t, up)

	resp := idx.IngestBatch(context.Background(), []models.Upload{
		pdfUpload("good.pdf", "Section 302 deals with murder."),
		{Name: "corrupt.pdf", MIMEType: "application/pdf", Data: []byte("not a pdf at all")},
		{Name: "notes.txt", MIMEType: "text/plain", Data: []byte("plain text")},
		pdfUpload("blank.pdf", "   "),
		pdfUpload("also-good.pdf", "Section 304 deals with culpable homicide."),
	})

	require.Len(t, resp.Results, 5)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 2, resp.Failed)
	assert.Equal(t, 1, resp.Skipped)
	assert.True(t, resp.Results[0].OK())
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Contains(t, resp.Results[2].Error, models.ErrUnsupportedType.Error())
	assert.Empty(t, resp.Results[3].Error)
	assert.NotEmpty(t, resp.Results[3].Warning)
	assert.True(t, resp.Results[4].OK())
	assert.Len(t, up.calls, 2, "only readable documents with text are upserted")
}

func TestIndexer_EmbeddingFailureIsPerFile(t *testing.T) {
	up := &recordingUpserter{err: &models.EmbeddingError{Op: "embed documents", Err: errors.New("quota")}}
	idx := newTestIndexer(t, up)

	res := idx.Ingest(context.Background(), pdfUpload("a.pdf", "text"))
	assert.False(t, res.OK())
	assert.Contains(t, res.Error, "quota")
	assert.Zero(t, res.Chunks)
}

func TestIndexer_PersistenceFailureIsWarning(t *testing.T) {
	up := &recordingUpserter{err: &models.PersistenceError{Op: "save", Err: errors.New("read-only file system")}}
	an := &stubAnalyzer{}
	idx := newTestIndexer(t, up, WithAnalyzer(an))

	res := idx.Ingest(context.Background(), pdfUpload("a.pdf", "Attention is all you need"))
	assert.True(t, res.OK(), "chunks are usable in memory")
	assert.Contains(t, res.Warning, "may not survive a restart")
	assert.Equal(t, "analysis of Attention", res.Analysis)
}

func TestIndexer_AnalyzerRunsOnlyAfterSuccess(t *testing.T) {
	an := &stubAnalyzer{}
	idx := newTestIndexer(t, &recordingUpserter{}, WithAnalyzer(an))

	resp := idx.IngestBatch(context.Background(), []models.Upload{
		pdfUpload("paper.pdf", "Transformers page one", "page two"),
		{Name: "bad.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-garbage")},
	})
	require.Len(t, an.texts, 1)
	assert.Contains(t, an.texts[0], "Transformers page one")
	assert.Contains(t, an.texts[0], "\n", "pages are joined by a newline")
	assert.Equal(t, "analysis of Transformers", resp.Results[0].Analysis)
	assert.Empty(t, resp.Results[1].Analysis)
}

func TestIndexer_IngestPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), pdftest.Build("bravo"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), pdftest.Build("alpha"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# skip"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".hidden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "c.pdf"), pdftest.Build("charlie"), 0600))
	single := filepath.Join(t.TempDir(), "single.pdf")
	require.NoError(t, os.WriteFile(single, pdftest.Build("single"), 0600))

	up := &recordingUpserter{}
	idx := newTestIndexer(t, up)
	resp := idx.IngestPaths(context.Background(), []string{dir, single, filepath.Join(dir, "missing.pdf")})

	require.Len(t, resp.Results, 4)
	assert.Equal(t, "a.pdf", resp.Results[0].Name)
	assert.Equal(t, "b.pdf", resp.Results[1].Name)
	assert.Equal(t, "single.pdf", resp.Results[2].Name)
	assert.NotEmpty(t, resp.Results[3].Error)
	assert.Equal(t, 3, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
}

func TestIndexer_IntoVectorHandle(t *testing.T) {
	handle := vector.NewHandle(storage.NewSQLiteSnapshot(t.TempDir()), embedding.NewMockEmbedder(128))
	idx := newTestIndexer(t, handle)
	ctx := context.Background()

	resp := idx.IngestBatch(ctx, []models.Upload{
		pdfUpload("one.pdf", "The capital of France is Paris."),
		pdfUpload("two.pdf", "Berlin is the capital of Germany."),
	})
	require.Equal(t, 2, resp.Succeeded)
	assert.True(t, handle.IsPresent())
	assert.Equal(t, 2, handle.Size())
	assert.ElementsMatch(t, []string{"one.pdf", "two.pdf"}, handle.Sources())

	res, err := handle.Search(ctx, "What is the capital of France?", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "one.pdf", res[0].Source)
}
