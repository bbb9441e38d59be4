package forge

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pdfforge/internal/testpdf"
)

var testMCPImpl = &mcp.Implementation{Name: "pdfforge-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	svc := New(Config{}, nil)
	srv := mcp.NewServer(testMCPImpl, nil)
	svc.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %s", name, tc.Text)
	}
	return tc.Text
}

// mcpCallToolErr expects a tool-level error and returns its message.
func mcpCallToolErr(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s) protocol error: %v", name, err)
	}
	if !result.IsError {
		t.Fatalf("CallTool(%s): expected tool error, got success", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_ListTools(t *testing.T) {
	session := mcpSession(t)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	want := map[string]bool{
		"pdf_inspect": true, "pdf_text": true, "pdf_create": true,
		"pdf_merge": true, "pdf_split": true, "pdf_extract_pages": true,
		"pdf_set_metadata": true, "pdf_page_range": true, "pdf_history": true,
	}
	for _, tool := range res.Tools {
		delete(want, tool.Name)
	}
	for name := range want {
		t.Errorf("tool %q not advertised", name)
	}
}

func TestMCP_PageRange(t *testing.T) {
	session := mcpSession(t)

	text := mcpCallTool(t, session, "pdf_page_range", map[string]any{
		"range": "2,2,4-5", "page_count": 6,
	})
	var resp PageRangeResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []int{2, 2, 4, 5}
	if len(resp.Pages) != len(want) {
		t.Fatalf("pages = %v, want %v (duplicates kept)", resp.Pages, want)
	}
	for i := range want {
		if resp.Pages[i] != want[i] {
			t.Fatalf("pages = %v, want %v", resp.Pages, want)
		}
	}
}

func TestMCP_PageRange_ErrorEnvelope(t *testing.T) {
	session := mcpSession(t)

	msg := mcpCallToolErr(t, session, "pdf_page_range", map[string]any{
		"range": "9-12", "page_count": 6,
	})
	if !strings.Contains(msg, CodeInvalidPageRange) {
		t.Errorf("error message %q should carry code %s", msg, CodeInvalidPageRange)
	}
	if !strings.Contains(msg, "9-12") {
		t.Errorf("error message %q should name the offending token", msg)
	}
}

func TestMCP_MergeAndSplit(t *testing.T) {
	session := mcpSession(t)
	dir := t.TempDir()
	a := testpdf.Write(t, dir, "a.pdf", testpdf.Pages(2))
	b := testpdf.Write(t, dir, "b.pdf", testpdf.Pages(1))
	merged := filepath.Join(dir, "merged.pdf")

	text := mcpCallTool(t, session, "pdf_merge", map[string]any{
		"sources": []string{a, b}, "output_path": merged,
	})
	var mres struct {
		TotalPages int `json:"total_pages"`
	}
	if err := json.Unmarshal([]byte(text), &mres); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mres.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", mres.TotalPages)
	}

	text = mcpCallTool(t, session, "pdf_split", map[string]any{
		"source": merged, "range": "3,1", "output_path": filepath.Join(dir, "out.pdf"),
	})
	var sres struct {
		Pages int `json:"pages"`
	}
	if err := json.Unmarshal([]byte(text), &sres); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sres.Pages != 2 {
		t.Errorf("pages = %d, want 2", sres.Pages)
	}
}

func TestMCP_ExtractPages_AtomicError(t *testing.T) {
	session := mcpSession(t)
	dir := t.TempDir()
	src := testpdf.Write(t, dir, "src.pdf", testpdf.Pages(4))

	msg := mcpCallToolErr(t, session, "pdf_extract_pages", map[string]any{
		"source": src, "pages": []int{2, 40}, "output_dir": filepath.Join(dir, "out"),
	})
	if !strings.Contains(msg, CodeInvalidPageNumber) {
		t.Errorf("error message %q should carry code %s", msg, CodeInvalidPageNumber)
	}
}

func TestMCP_SetMetadata(t *testing.T) {
	session := mcpSession(t)
	dir := t.TempDir()
	path := testpdf.Write(t, dir, "doc.pdf", testpdf.Pages(1))

	text := mcpCallTool(t, session, "pdf_set_metadata", map[string]any{
		"path": path, "title": "Field Notes", "creator": "fieldkit",
	})
	var md struct {
		Title     string `json:"title"`
		Creator   string `json:"creator"`
		PageCount int    `json:"page_count"`
	}
	if err := json.Unmarshal([]byte(text), &md); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if md.Title != "Field Notes" {
		t.Errorf("title = %q", md.Title)
	}
	if md.Creator != "fieldkit" {
		t.Errorf("creator = %q, want fieldkit", md.Creator)
	}
	if md.PageCount != 1 {
		t.Errorf("page_count = %d, want 1", md.PageCount)
	}
}

func TestMCP_Inspect_SourceNotFound(t *testing.T) {
	session := mcpSession(t)

	msg := mcpCallToolErr(t, session, "pdf_inspect", map[string]any{
		"path": filepath.Join(t.TempDir(), "gone.pdf"),
	})
	if !strings.Contains(msg, CodeSourceNotFound) {
		t.Errorf("error message %q should carry code %s", msg, CodeSourceNotFound)
	}
}

func TestMCP_UnknownTool(t *testing.T) {
	session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "pdf_transmogrify",
		Arguments: map[string]any{},
	})
	if err == nil && !result.IsError {
		t.Fatal("unknown tool should fail, got success")
	}
}

func TestMCP_InvalidArguments(t *testing.T) {
	session := mcpSession(t)

	// Missing required path: rejected either by schema validation or by the
	// endpoint's own argument check. Never a success, never a dead session.
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "pdf_inspect",
		Arguments: map[string]any{},
	})
	if err == nil && !result.IsError {
		t.Fatal("missing required argument should fail, got success")
	}

	// The session survives and serves the next call.
	text := mcpCallTool(t, session, "pdf_page_range", map[string]any{
		"range": "1", "page_count": 1,
	})
	if !strings.Contains(text, "1") {
		t.Errorf("follow-up call returned %q", text)
	}
}
