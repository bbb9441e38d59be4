// Package doctext extracts plain text from documents for inspection and
// search. It uses a separate read-only parser rather than the codec so a
// text pass never mutates or revalidates the document.
package doctext

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrSourceNotFound is returned when the document path is missing or unreadable.
var ErrSourceNotFound = errors.New("doctext: source not found")

// ErrExtract is returned when the parser cannot make sense of the document.
var ErrExtract = errors.New("doctext: text extraction failed")

// PageText is the extracted text of one page.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Result is the extracted text of a document.
type Result struct {
	Pages []PageText `json:"pages"`
	// Chars counts the extracted characters across all pages.
	Chars int `json:"chars"`
}

// Extractor pulls plain text out of documents.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the plain text of the given pages (all pages when pages is
// empty). Pages the parser cannot decode yield empty text rather than failing
// the whole document; scanned pages commonly have none.
func (e *Extractor) Extract(path string, pages []int) (res *Result, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("text parser panicked", "source", path, "panic", r)
			res, err = nil, fmt.Errorf("%w: %s: parser panic: %v", ErrExtract, path, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtract, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	res = &Result{Pages: make([]PageText, 0, len(pages))}
	for _, n := range pages {
		if n < 1 || n > total {
			return nil, fmt.Errorf("%w: %s: page %d out of bounds [1, %d]", ErrExtract, path, n, total)
		}
		res.Pages = append(res.Pages, PageText{Page: n, Text: pageText(reader, n)})
	}
	for _, p := range res.Pages {
		res.Chars += len(p.Text)
	}
	return res, nil
}

// pageText reads one page, swallowing per-page decode failures.
func pageText(reader *pdflib.Reader, n int) string {
	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
