package docmeta

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/pdfforge/internal/testpdf"
)

func strPtr(s string) *string { return &s }

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(3))

	md, err := New(nil).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if md.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", md.PageCount)
	}
	if md.ByteSize <= 0 {
		t.Errorf("ByteSize = %d, want > 0", md.ByteSize)
	}
	if md.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", md.SourcePath, path)
	}
	if md.Title != "" {
		t.Errorf("Title = %q, want empty for fresh fixture", md.Title)
	}
}

func TestRead_SourceNotFound(t *testing.T) {
	_, err := New(nil).Read(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestWrite_PartialUpdate(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(1))
	ed := New(nil)

	if _, err := ed.Write(context.Background(), path, Update{
		Title:  strPtr("First Title"),
		Author: strPtr("A. Writer"),
	}, ""); err != nil {
		t.Fatalf("first write: %v", err)
	}

	// Second write names only the title: author must survive untouched.
	md, err := ed.Write(context.Background(), path, Update{Title: strPtr("Second Title")}, "")
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if md.Title != "Second Title" {
		t.Errorf("Title = %q, want %q", md.Title, "Second Title")
	}
	if md.Author != "A. Writer" {
		t.Errorf("Author = %q, want unchanged %q", md.Author, "A. Writer")
	}
}

func TestWrite_CreatorPartialUpdate(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(1))
	ed := New(nil)

	md, err := ed.Write(context.Background(), path, Update{Creator: strPtr("scanshop 2.1")}, "")
	if err != nil {
		t.Fatalf("set creator: %v", err)
	}
	if md.Creator != "scanshop 2.1" {
		t.Errorf("Creator = %q, want %q", md.Creator, "scanshop 2.1")
	}

	// A later write naming only the title keeps the creator.
	md, err = ed.Write(context.Background(), path, Update{Title: strPtr("Scanned")}, "")
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if md.Creator != "scanshop 2.1" {
		t.Errorf("Creator = %q, want unchanged %q", md.Creator, "scanshop 2.1")
	}
	// The producer is owned by the codec and re-stamped at write time.
	if md.Producer == "" {
		t.Error("Producer should be stamped after a write")
	}
}

func TestWrite_ClearField(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(1))
	ed := New(nil)

	if _, err := ed.Write(context.Background(), path, Update{Subject: strPtr("topic")}, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	md, err := ed.Write(context.Background(), path, Update{Subject: strPtr("")}, "")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if md.Subject != "" {
		t.Errorf("Subject = %q, want cleared", md.Subject)
	}
}

func TestWrite_EmptyUpdateRefreshesModDate(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(1))
	ed := New(nil)

	before, err := ed.Write(context.Background(), path, Update{Title: strPtr("kept")}, "")
	if err != nil {
		t.Fatalf("seed write: %v", err)
	}

	md, err := ed.Write(context.Background(), path, Update{}, "")
	if err != nil {
		t.Fatalf("empty write: %v", err)
	}
	if md.Title != before.Title || md.Author != before.Author || md.Subject != before.Subject {
		t.Errorf("empty update changed descriptive fields: %+v vs %+v", md, before)
	}
	if md.ModDate.IsZero() {
		t.Error("ModDate must be set after any write")
	}
}

func TestWrite_OutPathLeavesSourceUntouched(t *testing.T) {
	dir := t.TempDir()
	src := testpdf.Write(t, dir, "src.pdf", testpdf.Pages(1))
	out := filepath.Join(dir, "out.pdf")
	ed := New(nil)

	md, err := ed.Write(context.Background(), src, Update{Title: strPtr("copy title")}, out)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if md.SourcePath != out {
		t.Errorf("result SourcePath = %q, want %q", md.SourcePath, out)
	}
	if md.Title != "copy title" {
		t.Errorf("Title = %q", md.Title)
	}

	orig, err := ed.Read(context.Background(), src)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if orig.Title != "" {
		t.Errorf("source Title = %q, want untouched", orig.Title)
	}
}

func TestWrite_SourceNotFound(t *testing.T) {
	_, err := New(nil).Write(context.Background(),
		filepath.Join(t.TempDir(), "gone.pdf"), Update{Title: strPtr("x")}, "")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}
