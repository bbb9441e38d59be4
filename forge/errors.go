package forge

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/pdfforge/assemble"
	"github.com/hazyhaar/pdfforge/codec"
	"github.com/hazyhaar/pdfforge/docmeta"
	"github.com/hazyhaar/pdfforge/doctext"
	"github.com/hazyhaar/pdfforge/pagerange"
)

// ErrInvalidArguments is returned when a request is structurally wrong
// before any engine work starts.
var ErrInvalidArguments = errors.New("forge: invalid arguments")

// Stable error codes carried in every failed response. Callers branch on
// these, not on message text.
const (
	CodeInvalidArguments  = "invalid_arguments"
	CodeSourceNotFound    = "source_not_found"
	CodeEmptySourceSet    = "empty_source_set"
	CodeInvalidPageRange  = "invalid_page_range"
	CodeInvalidPageNumber = "invalid_page_number"
	CodeCodecFailure      = "codec_failure"
	CodeInternal          = "internal"
)

// ErrorCode classifies an engine error into its stable code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return CodeInvalidArguments
	case errors.Is(err, assemble.ErrEmptySourceSet):
		return CodeEmptySourceSet
	case errors.Is(err, pagerange.ErrInvalidRange):
		return CodeInvalidPageRange
	case errors.Is(err, assemble.ErrInvalidPageNumber):
		return CodeInvalidPageNumber
	case errors.Is(err, assemble.ErrSourceNotFound),
		errors.Is(err, docmeta.ErrSourceNotFound),
		errors.Is(err, doctext.ErrSourceNotFound):
		return CodeSourceNotFound
	case errors.Is(err, codec.ErrCodec), errors.Is(err, doctext.ErrExtract):
		return CodeCodecFailure
	default:
		return CodeInternal
	}
}

// coded prefixes err with its stable code so the transport envelope carries
// both the code and the diagnostic message.
func coded(err error) error {
	return fmt.Errorf("%s: %w", ErrorCode(err), err)
}
