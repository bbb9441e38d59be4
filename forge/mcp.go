package forge

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pdfforge/idgen"
	"github.com/hazyhaar/pdfforge/kit"
)

var newRequestID = idgen.Prefixed("req_", idgen.UUIDv7())

// RegisterMCP registers the document tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerInspectTool(srv)
	s.registerTextTool(srv)
	s.registerCreateTool(srv)
	s.registerMergeTool(srv)
	s.registerSplitTool(srv)
	s.registerExtractPagesTool(srv)
	s.registerSetMetadataTool(srv)
	s.registerPageRangeTool(srv)
	s.registerHistoryTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// decodeJSON builds a decode func that unmarshals arguments into a fresh T
// and tags the context with a request ID.
func decodeJSON[T any]() func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r T
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithRequestID(ctx, newRequestID())
			},
		}, nil
	}
}

func (s *Service) registerInspectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_inspect",
		Description: "Read the metadata of a PDF: page count, byte size, and info-dictionary fields.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "PDF file path"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Inspect(ctx, *req.(*InspectRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[InspectRequest]())
}

func (s *Service) registerTextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_text",
		Description: "Extract plain text from a PDF, optionally limited to specific pages.",
		InputSchema: inputSchema(map[string]any{
			"path":  map[string]any{"type": "string", "description": "PDF file path"},
			"pages": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "description": "1-based page numbers; empty means all pages"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Text(ctx, *req.(*TextRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[TextRequest]())
}

func (s *Service) registerCreateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_create",
		Description: "Create a new PDF with the given number of pages, optionally with per-page text.",
		InputSchema: inputSchema(map[string]any{
			"output_path": map[string]any{"type": "string", "description": "Where to write the new PDF"},
			"pages":       map[string]any{"type": "integer", "description": "Number of pages (>= 1)"},
			"paper":       map[string]any{"type": "string", "description": "Paper size, e.g. A4 or Letter (default A4)"},
			"page_texts":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Text to place on each page, in order"},
		}, []string{"output_path", "pages"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Create(ctx, *req.(*CreateRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[CreateRequest]())
}

func (s *Service) registerMergeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_merge",
		Description: "Concatenate multiple PDFs, in list order, into one output file.",
		InputSchema: inputSchema(map[string]any{
			"sources":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Source PDF paths, merged in order"},
			"output_path": map[string]any{"type": "string", "description": "Where to write the merged PDF"},
		}, []string{"sources", "output_path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Merge(ctx, *req.(*MergeRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[MergeRequest]())
}

func (s *Service) registerSplitTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_split",
		Description: "Copy the pages selected by a range expression (e.g. \"1-3,7\") into a new PDF. Order and repeats are preserved.",
		InputSchema: inputSchema(map[string]any{
			"source":      map[string]any{"type": "string", "description": "Source PDF path"},
			"range":       map[string]any{"type": "string", "description": "Comma-separated page numbers and A-B spans, 1-based"},
			"output_path": map[string]any{"type": "string", "description": "Where to write the split PDF"},
		}, []string{"source", "range", "output_path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Split(ctx, *req.(*SplitRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[SplitRequest]())
}

func (s *Service) registerExtractPagesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_extract_pages",
		Description: "Write one single-page PDF per listed page number. All pages are validated first; an invalid number aborts the whole call with no files written.",
		InputSchema: inputSchema(map[string]any{
			"source":     map[string]any{"type": "string", "description": "Source PDF path"},
			"pages":      map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "description": "Literal 1-based page numbers"},
			"output_dir": map[string]any{"type": "string", "description": "Directory for the single-page PDFs"},
			"prefix":     map[string]any{"type": "string", "description": "Output file prefix (default: source basename)"},
		}, []string{"source", "pages", "output_dir"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.ExtractPages(ctx, *req.(*ExtractPagesRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[ExtractPagesRequest]())
}

func (s *Service) registerSetMetadataTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_set_metadata",
		Description: "Partially update a PDF's descriptive metadata. Omitted fields are kept, empty strings clear. The modification date is always refreshed.",
		InputSchema: inputSchema(map[string]any{
			"path":        map[string]any{"type": "string", "description": "PDF file path"},
			"title":       map[string]any{"type": "string"},
			"author":      map[string]any{"type": "string"},
			"subject":     map[string]any{"type": "string"},
			"keywords":    map[string]any{"type": "string"},
			"creator":     map[string]any{"type": "string"},
			"producer":    map[string]any{"type": "string"},
			"output_path": map[string]any{"type": "string", "description": "Write here instead of in place"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.SetMetadata(ctx, *req.(*SetMetadataRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[SetMetadataRequest]())
}

func (s *Service) registerPageRangeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_page_range",
		Description: "Resolve a page-range expression against a page count without touching any file. Useful to preview what a split would select.",
		InputSchema: inputSchema(map[string]any{
			"range":      map[string]any{"type": "string", "description": "Comma-separated page numbers and A-B spans, 1-based"},
			"page_count": map[string]any{"type": "integer", "description": "Total pages to validate against"},
		}, []string{"range", "page_count"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.ResolveRange(ctx, *req.(*PageRangeRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[PageRangeRequest]())
}

func (s *Service) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pdf_history",
		Description: "List the latest journaled tool operations, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum entries to return"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.History(ctx, *req.(*HistoryRequest))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[HistoryRequest]())
}
