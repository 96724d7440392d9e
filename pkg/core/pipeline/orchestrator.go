// Package pipeline runs documents end to end: size check, format detection,
// extraction, statement assembly and analysis.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"finstat/pkg/core/analysis"
	"finstat/pkg/core/extract"
	"finstat/pkg/core/statement"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxDocumentBytes is the document size ceiling when none is set.
const DefaultMaxDocumentBytes int64 = 20 << 20

// DocumentTooLargeError is returned before any parsing when a document
// exceeds the configured ceiling.
type DocumentTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *DocumentTooLargeError) Error() string {
	return fmt.Sprintf("document of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// Repository persists analyses. The pipeline runs without one.
type Repository interface {
	SaveAnalysis(ctx context.Context, id string, stmt *statement.ParsedStatement, res *analysis.AnalysisResult) error
}

// Cache keeps parsed statements by content key. Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*statement.ParsedStatement, error)
	Put(ctx context.Context, key string, stmt *statement.ParsedStatement) error
}

// Config holds the settings of every stage.
type Config struct {
	MaxDocumentBytes int64
	Extract          extract.Options
	Statement        statement.Options
	Analysis         analysis.Options
}

// DefaultConfig returns the stage defaults.
func DefaultConfig() Config {
	return Config{
		MaxDocumentBytes: DefaultMaxDocumentBytes,
		Statement:        statement.DefaultOptions(),
		Analysis:         analysis.Options{Workers: analysis.DefaultWorkers},
	}
}

// Pipeline manages the flow from raw bytes to AnalysisResult:
// detect -> extract -> assemble -> analyze -> (optional) store.
type Pipeline struct {
	registry    *extract.Registry
	cfg         Config
	repo        Repository
	cache       Cache
	fingerprint []byte
	log         *slog.Logger
}

// New creates a pipeline with the standard extractors.
func New(cfg Config, log *slog.Logger) *Pipeline {
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Analysis.Logger == nil {
		cfg.Analysis.Logger = log
	}
	// Parsed statements depend on the options as well as the bytes.
	fingerprint, _ := json.Marshal(struct {
		Extract   extract.Options
		Statement statement.Options
	}{cfg.Extract, cfg.Statement})
	return &Pipeline{
		registry:    extract.NewRegistry(cfg.Extract),
		cfg:         cfg,
		fingerprint: fingerprint,
		log:         log,
	}
}

// SetRepository enables persistence of analysis results.
func (p *Pipeline) SetRepository(repo Repository) {
	p.repo = repo
}

// SetCache enables reuse of statements parsed from identical documents.
func (p *Pipeline) SetCache(c Cache) {
	p.cache = c
}

// SetRegistry replaces the extractor registry.
func (p *Pipeline) SetRegistry(r *extract.Registry) {
	p.registry = r
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// MaxDocumentBytes is the size ceiling in bytes.
func (p *Pipeline) MaxDocumentBytes() int64 {
	return p.cfg.MaxDocumentBytes
}

// =============================================================================
// SINGLE DOCUMENT
// =============================================================================

// ReadDocument reads r once, failing with *DocumentTooLargeError as soon as
// more than the ceiling has been read.
func (p *Pipeline) ReadDocument(ctx context.Context, r io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := p.cfg.MaxDocumentBytes
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if n > limit {
		return nil, &DocumentTooLargeError{Size: n, Limit: limit}
	}
	return buf.Bytes(), nil
}

// ParseStatement converts one document into a ParsedStatement. The size
// ceiling is checked before any parsing.
func (p *Pipeline) ParseStatement(ctx context.Context, data []byte, hint extract.Hint) (*statement.ParsedStatement, error) {
	if size := int64(len(data)); size > p.cfg.MaxDocumentBytes {
		return nil, &DocumentTooLargeError{Size: size, Limit: p.cfg.MaxDocumentBytes}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key string
	if p.cache != nil {
		key = p.CacheKey(data)
		if stmt, err := p.cache.Get(ctx, key); err != nil {
			p.log.Warn("statement cache read failed", "document", hint.String(), "error", err)
		} else if stmt != nil {
			p.log.Debug("statement cache hit", "document", hint.String(), "key", key)
			return stmt, nil
		}
	}

	start := time.Now()
	table, err := p.registry.Extract(ctx, data, hint)
	if err != nil {
		return nil, err
	}
	stmt, err := statement.Assemble(table, p.cfg.Statement)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.Put(ctx, key, stmt); err != nil {
			p.log.Warn("statement cache write failed", "document", hint.String(), "error", err)
		}
	}
	p.log.Debug("statement parsed",
		"document", hint.String(),
		"format", table.Format,
		"rows", len(table.Rows),
		"warnings", len(stmt.Warnings),
		"elapsed", time.Since(start))
	return stmt, nil
}

// CacheKey is the hex SHA-256 of the parse options and the document bytes.
func (p *Pipeline) CacheKey(data []byte) string {
	h := sha256.New()
	h.Write(p.fingerprint)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ParseReader reads and parses a document in one step.
func (p *Pipeline) ParseReader(ctx context.Context, r io.Reader, hint extract.Hint) (*statement.ParsedStatement, error) {
	data, err := p.ReadDocument(ctx, r)
	if err != nil {
		return nil, err
	}
	return p.ParseStatement(ctx, data, hint)
}

// Analyze parses the document, and its prior year when given, then analyzes
// the statement and stores the result if a repository is set. A document
// without an ID gets a random one.
func (p *Pipeline) Analyze(ctx context.Context, doc Document) (*statement.ParsedStatement, *analysis.AnalysisResult, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	item := p.prepare(ctx, doc)
	if item.Err != nil {
		return nil, nil, item.Err
	}
	res := analysis.AnalyzeBatch(ctx, []analysis.BatchItem{item}, p.cfg.Analysis)[0]
	if res.Err != nil {
		return item.Statement, nil, res.Err
	}
	if err := p.save(ctx, doc.ID, item.Statement, res.Result); err != nil {
		return item.Statement, res.Result, fmt.Errorf("storage failed: %w", err)
	}
	return item.Statement, res.Result, nil
}

// =============================================================================
// BATCH
// =============================================================================

// Document is one input of AnalyzeDocuments. Previous is the optional
// prior-year document of the same company. Err marks a document that
// could not be read; it fills the document's slot without parsing. On
// Previous, Err only drops the prior year.
type Document struct {
	ID       string
	Data     []byte
	Hint     extract.Hint
	Previous *Document
	Err      error
}

// AnalyzeDocuments parses and analyzes every document. Results keep input
// order; a document that fails to parse fills its own slot with the error.
// Storage failures are logged and do not fail the item. Documents without
// an ID get a random one.
func (p *Pipeline) AnalyzeDocuments(ctx context.Context, docs []Document) []analysis.BatchResult {
	items := make([]analysis.BatchItem, len(docs))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i := range docs {
		i, doc := i, docs[i]
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		g.Go(func() error {
			items[i] = p.prepare(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	results := analysis.AnalyzeBatch(ctx, items, p.cfg.Analysis)
	if p.repo == nil {
		return results
	}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if err := p.save(ctx, r.ID, items[r.Index].Statement, r.Result); err != nil {
			p.log.Warn("storing analysis failed", "id", r.ID, "error", err)
		}
	}
	return results
}

// prepare parses a document and its prior year into a batch item. Errors
// are carried in the item. A prior year that could not be read leaves the
// item without one and adds a warning.
func (p *Pipeline) prepare(ctx context.Context, doc Document) analysis.BatchItem {
	item := analysis.BatchItem{ID: doc.ID}
	if doc.Err != nil {
		item.Err = doc.Err
		return item
	}
	stmt, err := p.ParseStatement(ctx, doc.Data, doc.Hint)
	if err != nil {
		item.Err = err
		return item
	}
	item.Statement = stmt
	if doc.Previous != nil && doc.Previous.Err != nil {
		p.log.Warn("previous year unavailable", "id", doc.ID, "error", doc.Previous.Err)
		item.Warnings = append(item.Warnings, statement.Warning{
			Code:    statement.WarnPreviousYear,
			Message: fmt.Sprintf("previous year not analyzed: %v", doc.Previous.Err),
		})
		return item
	}
	if doc.Previous != nil {
		prev, err := p.ParseStatement(ctx, doc.Previous.Data, doc.Previous.Hint)
		if err != nil {
			item.Err = fmt.Errorf("previous year: %w", err)
			return item
		}
		item.Previous = prev
	}
	return item
}

func (p *Pipeline) save(ctx context.Context, id string, stmt *statement.ParsedStatement, res *analysis.AnalysisResult) error {
	if p.repo == nil {
		return nil
	}
	return p.repo.SaveAnalysis(ctx, id, stmt, res)
}

func (p *Pipeline) workers() int {
	if p.cfg.Analysis.Workers > 0 {
		return p.cfg.Analysis.Workers
	}
	return analysis.DefaultWorkers
}
