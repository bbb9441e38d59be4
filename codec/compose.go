package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the page count of the PDF at path without keeping a handle.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: page count %s: %v", ErrCodec, path, err)
	}
	return n, nil
}

// Merge appends every page of each source, in list order, into a new
// document at outPath.
func Merge(sources []string, outPath string) error {
	if err := api.MergeCreateFile(sources, outPath, false, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: merge: %v", ErrCodec, err)
	}
	return nil
}

// Collect copies the given 1-based pages of src, in the given order and with
// repeats allowed, into a new document at outPath.
func Collect(src string, pages []int, outPath string) error {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	if err := api.CollectFile(src, outPath, sel, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: collect %s: %v", ErrCodec, src, err)
	}
	return nil
}

// createPage mirrors the pdfcpu create-JSON page shape.
type createPage struct {
	Content createContent `json:"content"`
}

type createContent struct {
	Text []createText `json:"text"`
}

type createText struct {
	Value string     `json:"value"`
	Font  createFont `json:"font"`
	Pos   [2]float64 `json:"position"`
}

type createFont struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// CreateBlank writes a new document with pageCount pages of the given paper
// size to outPath. Each page carries the matching entry of pageTexts when
// provided, otherwise a single space (pdfcpu create requires page content).
func CreateBlank(outPath string, pageCount int, paper string, pageTexts []string) error {
	if pageCount < 1 {
		return fmt.Errorf("%w: create: page count %d must be >= 1", ErrCodec, pageCount)
	}
	if paper == "" {
		paper = "A4"
	}

	pages := make(map[string]createPage, pageCount)
	for i := 1; i <= pageCount; i++ {
		text := " "
		if i-1 < len(pageTexts) && pageTexts[i-1] != "" {
			text = pageTexts[i-1]
		}
		pages[strconv.Itoa(i)] = createPage{
			Content: createContent{
				Text: []createText{{
					Value: text,
					Font:  createFont{Name: "Helvetica", Size: 12},
					Pos:   [2]float64{72, 720},
				}},
			},
		}
	}

	decl := map[string]any{
		"papersize": paper,
		"pages":     pages,
	}
	data, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("%w: create: %v", ErrCodec, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "pdfforge-create-*.json")
	if err != nil {
		return fmt.Errorf("%w: create: %v", ErrCodec, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: create: %v", ErrCodec, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: create: %v", ErrCodec, err)
	}

	if err := api.CreateFile("", tmpPath, outPath, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrCodec, outPath, err)
	}
	return nil
}
