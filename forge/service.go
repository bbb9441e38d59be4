// Package forge is the document tool service: it binds the range resolver,
// assembler, metadata editor, and text extractor behind one request surface
// and journals every call. Operations run serialized; the service owns no
// document state between calls.
package forge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/pdfforge/assemble"
	"github.com/hazyhaar/pdfforge/codec"
	"github.com/hazyhaar/pdfforge/docmeta"
	"github.com/hazyhaar/pdfforge/doctext"
	"github.com/hazyhaar/pdfforge/kit"
	"github.com/hazyhaar/pdfforge/opslog"
	"github.com/hazyhaar/pdfforge/pagerange"
)

// Service dispatches document tool operations.
type Service struct {
	cfg     Config
	logger  *slog.Logger
	asm     *assemble.Assembler
	meta    *docmeta.Editor
	text    *doctext.Extractor
	journal *opslog.Store

	// mu serializes operations: one document mutation at a time.
	mu sync.Mutex
}

// New creates a Service. journal may be nil to disable the operation journal.
func New(cfg Config, journal *opslog.Store) *Service {
	cfg.defaults()
	return &Service{
		cfg:    cfg,
		logger: cfg.Logger,
		asm: assemble.New(assemble.Config{
			MaxSourceSize: cfg.MaxSourceSize,
			Logger:        cfg.Logger,
		}),
		meta:    docmeta.New(cfg.Logger),
		text:    doctext.New(cfg.Logger),
		journal: journal,
	}
}

// Inspect returns the metadata view of a document.
func (s *Service) Inspect(ctx context.Context, req InspectRequest) (*docmeta.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.Path == "" {
		return nil, s.fail(ctx, "pdf_inspect", "missing path", start,
			fmt.Errorf("%w: path is required", ErrInvalidArguments))
	}
	md, err := s.meta.Read(ctx, req.Path)
	if err != nil {
		return nil, s.fail(ctx, "pdf_inspect", req.Path, start, err)
	}
	s.done(ctx, "pdf_inspect", fmt.Sprintf("inspected %s (%d pages)", req.Path, md.PageCount), start)
	return md, nil
}

// Text returns extracted plain text of a document.
func (s *Service) Text(ctx context.Context, req TextRequest) (*doctext.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.Path == "" {
		return nil, s.fail(ctx, "pdf_text", "missing path", start,
			fmt.Errorf("%w: path is required", ErrInvalidArguments))
	}
	res, err := s.text.Extract(req.Path, req.Pages)
	if err != nil {
		return nil, s.fail(ctx, "pdf_text", req.Path, start, err)
	}
	s.done(ctx, "pdf_text", fmt.Sprintf("extracted text from %s (%d pages, %d chars)", req.Path, len(res.Pages), res.Chars), start)
	return res, nil
}

// Create writes a fresh document.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.OutputPath == "" {
		return nil, s.fail(ctx, "pdf_create", "missing output_path", start,
			fmt.Errorf("%w: output_path is required", ErrInvalidArguments))
	}
	if req.Pages < 1 {
		return nil, s.fail(ctx, "pdf_create", req.OutputPath, start,
			fmt.Errorf("%w: pages must be >= 1", ErrInvalidArguments))
	}
	if err := codec.CreateBlank(req.OutputPath, req.Pages, req.Paper, req.PageTexts); err != nil {
		return nil, s.fail(ctx, "pdf_create", req.OutputPath, start, err)
	}
	s.done(ctx, "pdf_create", fmt.Sprintf("created %s (%d pages)", req.OutputPath, req.Pages), start)
	return &CreateResponse{OutputPath: req.OutputPath, Pages: req.Pages}, nil
}

// Merge concatenates the sources into one document.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (*assemble.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.OutputPath == "" {
		return nil, s.fail(ctx, "pdf_merge", "missing output_path", start,
			fmt.Errorf("%w: output_path is required", ErrInvalidArguments))
	}
	res, err := s.asm.Merge(ctx, req.Sources, req.OutputPath)
	if err != nil {
		return nil, s.fail(ctx, "pdf_merge", req.OutputPath, start, err)
	}
	s.done(ctx, "pdf_merge", fmt.Sprintf("merged %d sources into %s (%d pages)", res.Sources, res.OutputPath, res.TotalPages), start)
	return res, nil
}

// Split copies the pages selected by a range expression into a new document.
func (s *Service) Split(ctx context.Context, req SplitRequest) (*assemble.SplitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.Source == "" || req.OutputPath == "" {
		return nil, s.fail(ctx, "pdf_split", "missing source or output_path", start,
			fmt.Errorf("%w: source and output_path are required", ErrInvalidArguments))
	}
	res, err := s.asm.SplitRange(ctx, req.Source, req.Range, req.OutputPath)
	if err != nil {
		return nil, s.fail(ctx, "pdf_split", req.Source, start, err)
	}
	s.done(ctx, "pdf_split", fmt.Sprintf("split %s %q into %s (%d pages)", req.Source, req.Range, res.OutputPath, res.Pages), start)
	return res, nil
}

// ExtractPages writes one single-page document per listed page number.
func (s *Service) ExtractPages(ctx context.Context, req ExtractPagesRequest) (*assemble.ExtractResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.Source == "" || req.OutputDir == "" {
		return nil, s.fail(ctx, "pdf_extract_pages", "missing source or output_dir", start,
			fmt.Errorf("%w: source and output_dir are required", ErrInvalidArguments))
	}
	res, err := s.asm.ExtractEachPage(ctx, req.Source, req.Pages, req.OutputDir, req.Prefix)
	if err != nil {
		return nil, s.fail(ctx, "pdf_extract_pages", req.Source, start, err)
	}
	s.done(ctx, "pdf_extract_pages", fmt.Sprintf("extracted %d pages of %s into %s", len(res.Files), req.Source, req.OutputDir), start)
	return res, nil
}

// SetMetadata partially updates a document's descriptive metadata.
func (s *Service) SetMetadata(ctx context.Context, req SetMetadataRequest) (*docmeta.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.Path == "" {
		return nil, s.fail(ctx, "pdf_set_metadata", "missing path", start,
			fmt.Errorf("%w: path is required", ErrInvalidArguments))
	}
	md, err := s.meta.Write(ctx, req.Path, docmeta.Update{
		Title:    req.Title,
		Author:   req.Author,
		Subject:  req.Subject,
		Keywords: req.Keywords,
		Creator:  req.Creator,
		Producer: req.Producer,
	}, req.OutputPath)
	if err != nil {
		return nil, s.fail(ctx, "pdf_set_metadata", req.Path, start, err)
	}
	s.done(ctx, "pdf_set_metadata", fmt.Sprintf("updated metadata of %s", md.SourcePath), start)
	return md, nil
}

// ResolveRange resolves a range expression against a page count without
// touching any document.
func (s *Service) ResolveRange(ctx context.Context, req PageRangeRequest) (*PageRangeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if req.PageCount < 1 {
		return nil, s.fail(ctx, "pdf_page_range", req.Range, start,
			fmt.Errorf("%w: page_count must be >= 1", ErrInvalidArguments))
	}
	pages, err := pagerange.Resolve(req.Range, req.PageCount)
	if err != nil {
		return nil, s.fail(ctx, "pdf_page_range", req.Range, start, err)
	}
	s.done(ctx, "pdf_page_range", fmt.Sprintf("resolved %q against %d pages", req.Range, req.PageCount), start)
	return &PageRangeResponse{Pages: pages}, nil
}

// History returns the latest journaled operations, newest first.
func (s *Service) History(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	if s.journal == nil {
		return &HistoryResponse{}, nil
	}
	limit := req.Limit
	if limit <= 0 || limit > s.cfg.JournalKeep {
		limit = s.cfg.JournalKeep
	}
	entries, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, coded(err)
	}
	resp := &HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:         e.ID,
			Tool:       e.Tool,
			Summary:    e.Summary,
			DurationUs: e.DurationUs,
			Error:      e.Error,
			Timestamp:  e.Timestamp,
		})
	}
	return resp, nil
}

// done journals and logs a successful operation.
func (s *Service) done(ctx context.Context, tool, summary string, start time.Time) {
	dur := time.Since(start)
	s.logger.Info("tool call", "tool", tool, "summary", summary, "duration", dur)
	if s.journal != nil {
		s.journal.RecordAsync(&opslog.Entry{
			RequestID:  kit.GetRequestID(ctx),
			Tool:       tool,
			Summary:    summary,
			DurationUs: dur.Microseconds(),
		})
	}
}

// fail journals and logs a failed operation, returning the coded error.
func (s *Service) fail(ctx context.Context, tool, summary string, start time.Time, err error) error {
	dur := time.Since(start)
	cerr := coded(err)
	s.logger.Warn("tool call failed", "tool", tool, "summary", summary, "error", cerr, "duration", dur)
	if s.journal != nil {
		s.journal.RecordAsync(&opslog.Entry{
			RequestID:  kit.GetRequestID(ctx),
			Tool:       tool,
			Summary:    summary,
			DurationUs: dur.Microseconds(),
			Error:      cerr.Error(),
		})
	}
	return cerr
}
