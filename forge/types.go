package forge

// Request and response shapes for the tool surface. Field names match the
// JSON schema advertised to clients.

// InspectRequest asks for the metadata view of one document.
type InspectRequest struct {
	Path string `json:"path"`
}

// TextRequest asks for extracted plain text. An empty Pages list means all
// pages.
type TextRequest struct {
	Path  string `json:"path"`
	Pages []int  `json:"pages,omitempty"`
}

// CreateRequest asks for a fresh document.
type CreateRequest struct {
	OutputPath string   `json:"output_path"`
	Pages      int      `json:"pages"`
	Paper      string   `json:"paper,omitempty"`
	PageTexts  []string `json:"page_texts,omitempty"`
}

// CreateResponse reports a created document.
type CreateResponse struct {
	OutputPath string `json:"output_path"`
	Pages      int    `json:"pages"`
}

// MergeRequest concatenates sources, in list order, into one document.
type MergeRequest struct {
	Sources    []string `json:"sources"`
	OutputPath string   `json:"output_path"`
}

// SplitRequest copies the pages a range expression selects into a new
// document.
type SplitRequest struct {
	Source     string `json:"source"`
	Range      string `json:"range"`
	OutputPath string `json:"output_path"`
}

// ExtractPagesRequest writes one single-page document per listed page.
type ExtractPagesRequest struct {
	Source    string `json:"source"`
	Pages     []int  `json:"pages"`
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix,omitempty"`
}

// SetMetadataRequest partially updates descriptive metadata. Omitted fields
// keep their current value; an explicit empty string clears the field. With
// OutputPath empty the document is rewritten in place.
type SetMetadataRequest struct {
	Path       string  `json:"path"`
	Title      *string `json:"title,omitempty"`
	Author     *string `json:"author,omitempty"`
	Subject    *string `json:"subject,omitempty"`
	Keywords   *string `json:"keywords,omitempty"`
	Creator    *string `json:"creator,omitempty"`
	Producer   *string `json:"producer,omitempty"`
	OutputPath string  `json:"output_path,omitempty"`
}

// PageRangeRequest resolves a range expression against a page count without
// touching any document.
type PageRangeRequest struct {
	Range     string `json:"range"`
	PageCount int    `json:"page_count"`
}

// PageRangeResponse is the resolved page list, order and repeats preserved.
type PageRangeResponse struct {
	Pages []int `json:"pages"`
}

// HistoryRequest asks for the latest journaled operations.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HistoryEntry is one journaled operation as reported to clients.
type HistoryEntry struct {
	ID         string `json:"id"`
	Tool       string `json:"tool"`
	Summary    string `json:"summary"`
	DurationUs int64  `json:"duration_us"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// HistoryResponse is the journal slice, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}
