// Package codec is the document codec boundary. It wraps pdfcpu behind a
// small handle-based contract (load, save, page count, page extraction,
// info dictionary access) plus file-level composition helpers, so the rest
// of the engine never touches PDF internals directly.
//
// A Document handle is owned by exactly one operation: it is created from
// source bytes, consumed, and discarded. Nothing here caches handles.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrCodec wraps any lower-level decode/encode fault bubbled up from pdfcpu.
var ErrCodec = errors.New("codec: document codec failure")

// Document is an in-memory handle on a parsed PDF, scoped to one operation.
type Document struct {
	ctx *model.Context
}

// Info holds the descriptive fields of a document's info dictionary.
// Zero values mean "absent".
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
	ModDate      time.Time
}

// Load parses the PDF at path into a Document handle.
func Load(path string) (*Document, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCodec, path, err)
	}
	return &Document{ctx: ctx}, nil
}

// LoadBytes parses in-memory PDF bytes into a Document handle.
func LoadBytes(data []byte) (*Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: read bytes: %v", ErrCodec, err)
	}
	return &Document{ctx: ctx}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	if err := api.WriteContextFile(d.ctx, path); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrCodec, path, err)
	}
	return nil
}

// ExtractPage returns a new single-page PDF containing page pageNr (1-based).
// The returned bytes are an independent document; the source is unchanged.
func (d *Document) ExtractPage(pageNr int) ([]byte, error) {
	r, err := api.ExtractPage(d.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("%w: extract page %d: %v", ErrCodec, pageNr, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: extract page %d: %v", ErrCodec, pageNr, err)
	}
	return data, nil
}

// Info reads the document's info dictionary. A document without one yields
// a zero Info, not an error.
func (d *Document) Info() (Info, error) {
	var info Info
	xref := d.ctx.XRefTable
	if xref.Info == nil {
		return info, nil
	}
	dict, err := xref.DereferenceDict(*xref.Info)
	if err != nil {
		return info, fmt.Errorf("%w: info dict: %v", ErrCodec, err)
	}
	if dict == nil {
		return info, nil
	}

	info.Title = d.infoString(dict, "Title")
	info.Author = d.infoString(dict, "Author")
	info.Subject = d.infoString(dict, "Subject")
	info.Keywords = d.infoString(dict, "Keywords")
	info.Creator = d.infoString(dict, "Creator")
	info.Producer = d.infoString(dict, "Producer")
	if s := d.infoString(dict, "CreationDate"); s != "" {
		if t, ok := types.DateTime(s, true); ok {
			info.CreationDate = t
		}
	}
	if s := d.infoString(dict, "ModDate"); s != "" {
		if t, ok := types.DateTime(s, true); ok {
			info.ModDate = t
		}
	}
	return info, nil
}

// SetInfo writes every non-zero field of info into the document's info
// dictionary, creating the dictionary if absent. Zero fields keep their
// existing entries untouched.
func (d *Document) SetInfo(info Info) error {
	dict, err := d.ensureInfoDict()
	if err != nil {
		return err
	}
	set := func(key, val string) {
		if val != "" {
			dict[key] = types.StringLiteral(escapeString(val))
		}
	}
	set("Title", info.Title)
	set("Author", info.Author)
	set("Subject", info.Subject)
	set("Keywords", info.Keywords)
	set("Creator", info.Creator)
	set("Producer", info.Producer)
	if !info.CreationDate.IsZero() {
		dict["CreationDate"] = types.StringLiteral(types.DateString(info.CreationDate))
	}
	if !info.ModDate.IsZero() {
		dict["ModDate"] = types.StringLiteral(types.DateString(info.ModDate))
	}
	return nil
}

// SetFields applies named text entries to the info dictionary. A pointer to
// the empty string removes the entry; nil values never appear here. Only the
// standard descriptive keys (Title, Author, Subject, Keywords, Creator,
// Producer) are accepted.
func (d *Document) SetFields(fields map[string]*string) error {
	if len(fields) == 0 {
		return nil
	}
	dict, err := d.ensureInfoDict()
	if err != nil {
		return err
	}
	for key, val := range fields {
		switch key {
		case "Title", "Author", "Subject", "Keywords", "Creator", "Producer":
		default:
			return fmt.Errorf("%w: unknown info field %q", ErrCodec, key)
		}
		if val == nil {
			continue
		}
		if *val == "" {
			delete(dict, key)
			continue
		}
		dict[key] = types.StringLiteral(escapeString(*val))
	}
	return nil
}

// ensureInfoDict returns the info dictionary, registering a fresh one when
// the document has none.
func (d *Document) ensureInfoDict() (types.Dict, error) {
	xref := d.ctx.XRefTable
	if xref.Info != nil {
		dict, err := xref.DereferenceDict(*xref.Info)
		if err != nil {
			return nil, fmt.Errorf("%w: info dict: %v", ErrCodec, err)
		}
		if dict != nil {
			return dict, nil
		}
	}
	dict := types.Dict{}
	ref, err := xref.IndRefForNewObject(dict)
	if err != nil {
		return nil, fmt.Errorf("%w: create info dict: %v", ErrCodec, err)
	}
	xref.Info = ref
	return dict, nil
}

// infoString decodes a text entry of the info dictionary, following one
// level of indirection. Undecodable entries read as absent.
func (d *Document) infoString(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	obj, err := d.ctx.XRefTable.Dereference(obj)
	if err != nil {
		return ""
	}
	switch s := obj.(type) {
	case types.StringLiteral:
		if v, err := types.StringLiteralToString(s); err == nil {
			return v
		}
	case types.HexLiteral:
		if v, err := types.HexLiteralToString(s); err == nil {
			return v
		}
	}
	return ""
}

// escapeString escapes backslashes and parentheses for a PDF string literal.
func escapeString(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '(', ')':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
