package forge

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/pdfforge/assemble"
	"github.com/hazyhaar/pdfforge/dbopen"
	"github.com/hazyhaar/pdfforge/internal/testpdf"
	"github.com/hazyhaar/pdfforge/opslog"
	_ "modernc.org/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(Config{}, nil)
}

func TestResolveRange(t *testing.T) {
	s := newTestService(t)
	resp, err := s.ResolveRange(context.Background(), PageRangeRequest{Range: "7,1-3", PageCount: 10})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []int{7, 1, 2, 3}
	if len(resp.Pages) != len(want) {
		t.Fatalf("pages = %v, want %v", resp.Pages, want)
	}
	for i := range want {
		if resp.Pages[i] != want[i] {
			t.Fatalf("pages = %v, want %v", resp.Pages, want)
		}
	}
}

func TestResolveRange_InvalidCode(t *testing.T) {
	s := newTestService(t)
	_, err := s.ResolveRange(context.Background(), PageRangeRequest{Range: "5-2", PageCount: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), CodeInvalidPageRange) {
		t.Errorf("err = %q, want %s prefix", err, CodeInvalidPageRange)
	}
}

func TestResolveRange_BadPageCount(t *testing.T) {
	s := newTestService(t)
	_, err := s.ResolveRange(context.Background(), PageRangeRequest{Range: "1", PageCount: 0})
	if err == nil || !strings.HasPrefix(err.Error(), CodeInvalidArguments) {
		t.Fatalf("err = %v, want %s prefix", err, CodeInvalidArguments)
	}
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("err = %v, want ErrInvalidArguments in chain", err)
	}
}

func TestMerge_ErrorCodes(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()

	_, err := s.Merge(context.Background(), MergeRequest{OutputPath: filepath.Join(dir, "out.pdf")})
	if err == nil || !strings.HasPrefix(err.Error(), CodeEmptySourceSet) {
		t.Fatalf("empty sources: err = %v, want %s prefix", err, CodeEmptySourceSet)
	}
	if !errors.Is(err, assemble.ErrEmptySourceSet) {
		t.Errorf("err = %v, want ErrEmptySourceSet in chain", err)
	}

	_, err = s.Merge(context.Background(), MergeRequest{
		Sources:    []string{filepath.Join(dir, "missing.pdf")},
		OutputPath: filepath.Join(dir, "out.pdf"),
	})
	if err == nil || !strings.HasPrefix(err.Error(), CodeSourceNotFound) {
		t.Fatalf("missing source: err = %v, want %s prefix", err, CodeSourceNotFound)
	}
}

func TestMergeSplitInspect_Flow(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	a := testpdf.Write(t, dir, "a.pdf", testpdf.Pages(2))
	b := testpdf.Write(t, dir, "b.pdf", testpdf.Pages(3))
	merged := filepath.Join(dir, "merged.pdf")
	part := filepath.Join(dir, "part.pdf")

	mres, err := s.Merge(context.Background(), MergeRequest{Sources: []string{a, b}, OutputPath: merged})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if mres.TotalPages != 5 {
		t.Errorf("merged pages = %d, want 5", mres.TotalPages)
	}

	sres, err := s.Split(context.Background(), SplitRequest{Source: merged, Range: "1-2", OutputPath: part})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if sres.Pages != 2 {
		t.Errorf("split pages = %d, want 2", sres.Pages)
	}

	md, err := s.Inspect(context.Background(), InspectRequest{Path: part})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if md.PageCount != 2 {
		t.Errorf("inspected pages = %d, want 2", md.PageCount)
	}
}

func TestExtractPages_InvalidNumberCode(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	src := testpdf.Write(t, dir, "src.pdf", testpdf.Pages(3))

	_, err := s.ExtractPages(context.Background(), ExtractPagesRequest{
		Source:    src,
		Pages:     []int{1, 99},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err == nil || !strings.HasPrefix(err.Error(), CodeInvalidPageNumber) {
		t.Fatalf("err = %v, want %s prefix", err, CodeInvalidPageNumber)
	}
}

func TestHistory_RecordsCalls(t *testing.T) {
	db := dbopen.OpenMemory(t)
	journal := opslog.NewStore(db)
	if err := journal.Init(); err != nil {
		t.Fatal(err)
	}
	s := New(Config{}, journal)

	if _, err := s.ResolveRange(context.Background(), PageRangeRequest{Range: "1-2", PageCount: 5}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, _ = s.ResolveRange(context.Background(), PageRangeRequest{Range: "bad", PageCount: 5})

	journal.Close()

	resp, err := s.History(context.Background(), HistoryRequest{Limit: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(resp.Entries))
	}
	var failed int
	for _, e := range resp.Entries {
		if e.Tool != "pdf_page_range" {
			t.Errorf("tool = %q", e.Tool)
		}
		if e.Error != "" {
			failed++
			if !strings.HasPrefix(e.Error, CodeInvalidPageRange) {
				t.Errorf("journaled error = %q, want %s prefix", e.Error, CodeInvalidPageRange)
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed entries = %d, want 1", failed)
	}
}

func TestHistory_NoJournal(t *testing.T) {
	s := newTestService(t)
	resp, err := s.History(context.Background(), HistoryRequest{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(resp.Entries) != 0 {
		t.Errorf("entries = %d, want 0 without a journal", len(resp.Entries))
	}
}

func TestService_SerializesCalls(t *testing.T) {
	s := newTestService(t)

	const n = 8
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := s.ResolveRange(context.Background(), PageRangeRequest{Range: "1-3", PageCount: 5})
			done <- err
		}()
	}
	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("concurrent resolve: %v", err)
			}
		case <-deadline:
			t.Fatal("concurrent calls did not complete")
		}
	}
}
