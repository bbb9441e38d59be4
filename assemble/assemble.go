// Package assemble composes and decomposes paginated documents: merging
// sources, splitting by page-range expression, and per-page extraction.
// All validation happens before any output byte reaches storage, so a failed
// operation never leaves partial files behind.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/pdfforge/codec"
	"github.com/hazyhaar/pdfforge/pagerange"
)

// creatorTag is the provenance stamp written into assembled documents.
const creatorTag = "pdfforge"

// ErrEmptySourceSet is returned when a merge is requested with no sources.
var ErrEmptySourceSet = errors.New("assemble: empty source set")

// ErrSourceNotFound is returned when a source path is missing or unreadable.
var ErrSourceNotFound = errors.New("assemble: source not found")

// ErrInvalidPageNumber is returned when a literal page number lies outside
// the document.
var ErrInvalidPageNumber = errors.New("assemble: invalid page number")

// Config configures an Assembler.
type Config struct {
	// MaxSourceSize is the maximum size of a single source file
	// (default: 100 MB).
	MaxSourceSize int64 `json:"max_source_size" yaml:"max_source_size"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxSourceSize <= 0 {
		c.MaxSourceSize = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Assembler performs document composition. It holds no per-call state;
// every operation loads its sources fresh and releases them before returning.
type Assembler struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Assembler with the given configuration.
func New(cfg Config) *Assembler {
	cfg.defaults()
	return &Assembler{cfg: cfg, logger: cfg.Logger}
}

// MergeResult reports a completed merge.
type MergeResult struct {
	OutputPath string `json:"output_path"`
	TotalPages int    `json:"total_pages"`
	Sources    int    `json:"sources"`
}

// Merge appends every page of each source, in list order, to a new document
// at outPath. The result's metadata is fresh: descriptive fields inherited
// from the sources are cleared, the creator carries the assembler's
// provenance tag, and the codec stamps producer and dates at write time.
func (a *Assembler) Merge(ctx context.Context, sources []string, outPath string) (*MergeResult, error) {
	if len(sources) == 0 {
		return nil, ErrEmptySourceSet
	}
	for _, src := range sources {
		if err := a.statSource(src); err != nil {
			return nil, err
		}
	}

	a.logger.Debug("merging documents", "sources", len(sources), "output", outPath)

	if err := codec.Merge(sources, outPath); err != nil {
		return nil, err
	}
	if err := a.stampProvenance(outPath); err != nil {
		return nil, err
	}
	total, err := codec.PageCount(outPath)
	if err != nil {
		return nil, err
	}
	return &MergeResult{OutputPath: outPath, TotalPages: total, Sources: len(sources)}, nil
}

// SplitResult reports a completed range split.
type SplitResult struct {
	OutputPath string `json:"output_path"`
	Pages      int    `json:"pages"`
}

// SplitRange resolves rangeExpr against the source's page count and copies
// the resolved pages, in resolved order including repeats, into a new
// document at outPath.
func (a *Assembler) SplitRange(ctx context.Context, src, rangeExpr, outPath string) (*SplitResult, error) {
	if err := a.statSource(src); err != nil {
		return nil, err
	}
	total, err := codec.PageCount(src)
	if err != nil {
		return nil, err
	}
	pages, err := pagerange.Resolve(rangeExpr, total)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("splitting document", "source", src, "range", rangeExpr, "pages", len(pages))

	if err := codec.Collect(src, pages, outPath); err != nil {
		return nil, err
	}
	return &SplitResult{OutputPath: outPath, Pages: len(pages)}, nil
}

// ExtractResult reports a completed per-page extraction.
type ExtractResult struct {
	Files []string `json:"files"`
}

// ExtractEachPage writes one single-page document per requested page number
// into outDir, named "<prefix>_page_<n>.pdf", and returns the created paths
// in input order. Page numbers are taken literally (no range grammar) and
// are all validated before any file is written: the first invalid number
// aborts the whole operation with nothing persisted.
func (a *Assembler) ExtractEachPage(ctx context.Context, src string, pages []int, outDir, prefix string) (*ExtractResult, error) {
	if err := a.statSource(src); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no page numbers given", ErrInvalidPageNumber)
	}

	doc, err := codec.Load(src)
	if err != nil {
		return nil, err
	}
	total := doc.PageCount()
	for _, p := range pages {
		if p < 1 || p > total {
			return nil, fmt.Errorf("%w: page %d out of bounds [1, %d]", ErrInvalidPageNumber, p, total)
		}
	}

	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("assemble: create output dir %s: %w", outDir, err)
	}

	a.logger.Debug("extracting pages", "source", src, "pages", len(pages), "dir", outDir)

	files := make([]string, 0, len(pages))
	for _, p := range pages {
		data, err := doc.ExtractPage(p)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s_page_%d.pdf", prefix, p))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("assemble: write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return &ExtractResult{Files: files}, nil
}

// statSource verifies a source exists, is a regular file, and fits the
// configured size limit.
func (a *Assembler) statSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	if info.Size() > a.cfg.MaxSourceSize {
		return fmt.Errorf("assemble: %s too large: %d bytes (max %d)", path, info.Size(), a.cfg.MaxSourceSize)
	}
	return nil
}

// stampProvenance rewrites outPath with the assembler's creator tag and
// without any descriptive metadata inherited from the merge sources.
// Producer and the date fields are left to the codec, which stamps them
// fresh on every write.
func (a *Assembler) stampProvenance(outPath string) error {
	doc, err := codec.Load(outPath)
	if err != nil {
		return err
	}
	clear := ""
	tag := creatorTag
	if err := doc.SetFields(map[string]*string{
		"Title":    &clear,
		"Author":   &clear,
		"Subject":  &clear,
		"Keywords": &clear,
		"Producer": &clear,
		"Creator":  &tag,
	}); err != nil {
		return err
	}
	return doc.Save(outPath)
}
