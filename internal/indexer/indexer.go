// Package indexer turns uploaded PDFs into chunks and adds them to the vector index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docqa/internal/extract"
	"github.com/hyperjump/docqa/internal/models"
)

// Upserter adds chunks to the vector index.
type Upserter interface {
	Upsert(ctx context.Context, chunks []models.Chunk) error
}

// Analyzer produces an informational summary of a document's raw text.
type Analyzer interface {
	Analyze(ctx context.Context, rawText string) string
}

// Indexer extracts, chunks and upserts documents one file at a time.
type Indexer struct {
	index     Upserter
	chunker   *Chunker
	extractor *extract.Extractor
	analyzer  Analyzer    // optional; runs after each successful upsert
	logger    *zap.Logger // optional; when set, logs ingestion events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for ingestion events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithAnalyzer runs a on the raw text of every document that is indexed.
func WithAnalyzer(a Analyzer) IndexerOption {
	return func(idx *Indexer) { idx.analyzer = a }
}

// NewIndexer creates an indexer. extractor may be nil, in which case a default one is used.
func NewIndexer(index Upserter, chunker *Chunker, extractor *extract.Extractor, opts ...IndexerOption) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		index:     index,
		chunker:   chunker,
		extractor: extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IngestBatch ingests uploads in order. Each file succeeds or fails on its own.
func (idx *Indexer) IngestBatch(ctx context.Context, uploads []models.Upload) *models.IngestResponse {
	resp := &models.IngestResponse{Results: make([]*models.IngestResult, 0, len(uploads))}
	for _, up := range uploads {
		resp.Add(idx.Ingest(ctx, up))
	}
	return resp
}

// Ingest indexes one upload and reports the outcome. Extraction and embedding
// failures are reported in Error; a document with no text or an index that
// could not be saved is reported in Warning.
func (idx *Indexer) Ingest(ctx context.Context, up models.Upload) *models.IngestResult {
	res := &models.IngestResult{Name: up.Name}
	raw, n, err := idx.ingest(ctx, up)
	switch {
	case err == nil:
		res.Chunks = n
	case errors.Is(err, models.ErrNoText):
		res.Warning = "no extractable text; nothing was indexed"
	case isPersistence(err):
		res.Chunks = n
		res.Warning = "indexed for this session but could not be saved; it may not survive a restart: " + err.Error()
	default:
		res.Error = err.Error()
	}
	if err != nil {
		idx.log().Warn("ingestion problem", zap.String("file", up.Name), zap.Error(err))
	} else {
		idx.log().Info("file indexed", zap.String("file", up.Name), zap.Int("chunks", n))
	}
	if res.Chunks > 0 && idx.analyzer != nil {
		res.Analysis = idx.analyzer.Analyze(ctx, raw)
	}
	return res
}

func (idx *Indexer) ingest(ctx context.Context, up models.Upload) (string, int, error) {
	if !extract.IsPDF(up.Name, up.MIMEType) {
		return "", 0, &models.IngestionError{Source: up.Name, Err: models.ErrUnsupportedType}
	}
	pages, err := idx.extractor.Pages(up.Data)
	if err != nil {
		return "", 0, &models.IngestionError{Source: up.Name, Err: err}
	}
	raw := extract.JoinPages(pages)
	chunks := idx.chunker.Chunk(up.Name, raw)
	if len(chunks) == 0 {
		return "", 0, &models.IngestionError{Source: up.Name, Err: models.ErrNoText}
	}
	for i := range chunks {
		chunks[i].ID = uuid.New().String()
	}
	if err := idx.index.Upsert(ctx, chunks); err != nil {
		return raw, len(chunks), err
	}
	return raw, len(chunks), nil
}

// IngestFile reads and ingests the file at path. The document is named by its base name.
func (idx *Indexer) IngestFile(ctx context.Context, path string) *models.IngestResult {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		idx.log().Warn("read failed", zap.String("path", path), zap.Error(err))
		return &models.IngestResult{Name: name, Error: fmt.Sprintf("read file: %v", err)}
	}
	return idx.Ingest(ctx, models.Upload{Name: name, MIMEType: extract.MIMETypePDF, Data: data})
}

// IngestPaths ingests files and, for directories, every PDF beneath them.
// Files given explicitly must be PDFs; non-PDF files inside directories are skipped.
func (idx *Indexer) IngestPaths(ctx context.Context, paths []string) *models.IngestResponse {
	resp := &models.IngestResponse{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			resp.Add(&models.IngestResult{Name: filepath.Base(p), Error: err.Error()})
			continue
		}
		if !info.IsDir() {
			if !extract.IsPDF(p, "") {
				resp.Add(&models.IngestResult{Name: filepath.Base(p), Error: models.ErrUnsupportedType.Error()})
				continue
			}
			resp.Add(idx.IngestFile(ctx, p))
			continue
		}
		files, err := pdfFiles(p)
		if err != nil {
			resp.Add(&models.IngestResult{Name: filepath.Base(p), Error: err.Error()})
			continue
		}
		for _, f := range files {
			resp.Add(idx.IngestFile(ctx, f))
		}
	}
	return resp
}

// pdfFiles returns the regular PDF files under dir in lexical order.
func pdfFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !extract.IsPDF(path, "") {
			return nil
		}
		// Resolve symlinks so we only index regular files
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func isPersistence(err error) bool {
	var perr *models.PersistenceError
	return errors.As(err, &perr)
}

func (idx *Indexer) log() *zap.Logger {
	if idx.logger == nil {
		return zap.NewNop()
	}
	return idx.logger
}
