// Package pagerange resolves page-range expressions into ordered page lists.
//
// Grammar: a comma-separated list of tokens. Each token is either a single
// 1-based page number ("5") or an inclusive ascending range ("3-9").
// Whitespace around tokens and around the hyphen is ignored.
//
// Resolution is strict: any malformed or out-of-bound token aborts the whole
// expression. Token order is preserved in the output and duplicates are kept,
// so "3,1-2,3" resolves to [3 1 2 3] — callers may intentionally repeat pages
// to reorder output documents.
package pagerange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned (wrapped) for any expression that cannot be
// resolved against the given page count.
var ErrInvalidRange = errors.New("pagerange: invalid page range")

// Resolve parses expr against totalPages and returns the ordered sequence of
// 1-based page numbers it denotes.
func Resolve(expr string, totalPages int) ([]int, error) {
	if totalPages < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidRange)
	}
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidRange)
	}

	var pages []int
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("%w: empty token in %q", ErrInvalidRange, expr)
		}

		if start, end, ok := strings.Cut(token, "-"); ok {
			from, err := parsePage(start, token, totalPages)
			if err != nil {
				return nil, err
			}
			to, err := parsePage(end, token, totalPages)
			if err != nil {
				return nil, err
			}
			if from > to {
				return nil, fmt.Errorf("%w: descending range %q (start must be <= end)", ErrInvalidRange, token)
			}
			for p := from; p <= to; p++ {
				pages = append(pages, p)
			}
			continue
		}

		p, err := parsePage(token, token, totalPages)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// parsePage parses one side of a token as a page number within [1, totalPages].
func parsePage(s, token string, totalPages int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", ErrInvalidRange, token)
	}
	if n < 1 || n > totalPages {
		return 0, fmt.Errorf("%w: page %d in %q out of bounds [1, %d]", ErrInvalidRange, n, token, totalPages)
	}
	return n, nil
}
