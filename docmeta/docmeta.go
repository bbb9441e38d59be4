// Package docmeta reads and edits the descriptive metadata of a document:
// the info-dictionary fields plus a few derived facts (page count, byte
// size). Edits are partial: only the fields a caller names change, except
// the modification date, which every successful write refreshes.
package docmeta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazyhaar/pdfforge/codec"
)

// ErrSourceNotFound is returned when the document path is missing or unreadable.
var ErrSourceNotFound = errors.New("docmeta: source not found")

// Metadata is the full descriptive view of a document.
type Metadata struct {
	SourcePath string `json:"source_path"`
	PageCount  int    `json:"page_count"`
	ByteSize   int64  `json:"byte_size"`

	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Keywords     string    `json:"keywords,omitempty"`
	Creator      string    `json:"creator,omitempty"`
	Producer     string    `json:"producer,omitempty"`
	CreationDate time.Time `json:"creation_date,omitzero"`
	ModDate      time.Time `json:"mod_date,omitzero"`
}

// Update names the fields to change. Nil pointers leave the current value
// untouched; a pointer to "" clears the field. Producer is accepted for
// symmetry with Read, but the codec re-stamps it at write time, so the value
// a later Read reports is the codec's.
type Update struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Subject  *string `json:"subject,omitempty"`
	Keywords *string `json:"keywords,omitempty"`
	Creator  *string `json:"creator,omitempty"`
	Producer *string `json:"producer,omitempty"`
}

// Empty reports whether the update names no field at all.
func (u Update) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Subject == nil &&
		u.Keywords == nil && u.Creator == nil && u.Producer == nil
}

// Editor reads and writes document metadata.
type Editor struct {
	logger *slog.Logger
}

// New creates an Editor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{logger: logger}
}

// Read returns the metadata of the document at path.
func (e *Editor) Read(ctx context.Context, path string) (*Metadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	doc, err := codec.Load(path)
	if err != nil {
		return nil, err
	}
	info, err := doc.Info()
	if err != nil {
		return nil, err
	}
	return &Metadata{
		SourcePath:   path,
		PageCount:    doc.PageCount(),
		ByteSize:     fi.Size(),
		Title:        info.Title,
		Author:       info.Author,
		Subject:      info.Subject,
		Keywords:     info.Keywords,
		Creator:      info.Creator,
		Producer:     info.Producer,
		CreationDate: info.CreationDate,
		ModDate:      info.ModDate,
	}, nil
}

// Write applies upd to the document at path and returns the resulting
// metadata. With outPath empty the document is rewritten in place. The
// modification date is refreshed on every write, including an empty update.
func (e *Editor) Write(ctx context.Context, path string, upd Update, outPath string) (*Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	doc, err := codec.Load(path)
	if err != nil {
		return nil, err
	}
	if err := doc.SetFields(fields(upd)); err != nil {
		return nil, err
	}
	if err := doc.SetInfo(codec.Info{ModDate: time.Now()}); err != nil {
		return nil, err
	}

	if outPath == "" {
		outPath = path
	}
	if err := doc.Save(outPath); err != nil {
		return nil, err
	}

	e.logger.Debug("metadata written", "source", path, "output", outPath, "empty_update", upd.Empty())
	return e.Read(ctx, outPath)
}

// fields flattens an Update into codec field assignments, carrying the
// set-vs-clear distinction through.
func fields(u Update) map[string]*string {
	m := map[string]*string{}
	if u.Title != nil {
		m["Title"] = u.Title
	}
	if u.Author != nil {
		m["Author"] = u.Author
	}
	if u.Subject != nil {
		m["Subject"] = u.Subject
	}
	if u.Keywords != nil {
		m["Keywords"] = u.Keywords
	}
	if u.Creator != nil {
		m["Creator"] = u.Creator
	}
	if u.Producer != nil {
		m["Producer"] = u.Producer
	}
	return m
}
