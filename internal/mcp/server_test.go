package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(Deps{
		Catalog:   catalog.Default(),
		Sessions:  session.NewManager(catalog.Default(), session.Options{Latency: -1}),
		Composer:  compositor.New(compositor.Options{Settle: -1, Scale: 1}, nil),
		OutputDir: t.TempDir(),
	})
	srv.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return srv
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var text strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text.WriteString(tc.Text)
		}
	}
	return result, text.String()
}

var sessionLine = regexp.MustCompile(`Session: (\S+)`)

func startSession(t *testing.T, srv *Server, templateID string) string {
	t.Helper()
	result, text := call(t, srv.handleCreateSession, map[string]any{"template_id": templateID})
	if result.IsError {
		t.Fatalf("create_session: %s", text)
	}
	m := sessionLine.FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("no session ID in %q", text)
	}
	return m[1]
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatal(err)
	}
	return compositor.DataURL(buf.Bytes())
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{listTemplatesTool, "list_templates"},
		{createSessionTool, "create_session"},
		{getDocumentTool, "get_document"},
		{sendMessageTool, "send_message"},
		{applyPatchesTool, "apply_patches"},
		{exportPageTool, "export_page"},
		{composeImageTool, "compose_image"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(Deps{Catalog: catalog.Default()})
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.outputDir != "." {
		t.Errorf("outputDir = %q, want %q", srv.outputDir, ".")
	}
}

func TestHandleListTemplates(t *testing.T) {
	srv := newTestServer(t)

	_, text := call(t, srv.handleListTemplates, map[string]any{})
	if !strings.Contains(text, "feishu-change-management") || !strings.Contains(text, "jira-time-tracker") {
		t.Errorf("expected both templates, got %q", text)
	}

	_, text = call(t, srv.handleListTemplates, map[string]any{"query": "zzzzqqq"})
	if text != "No templates matched." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestHandleCreateSession(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing arguments", func(t *testing.T) {
		result, _ := call(t, srv.handleCreateSession, map[string]any{})
		if !result.IsError {
			t.Error("expected error without template_id or document_json")
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		result, text := call(t, srv.handleCreateSession, map[string]any{"template_id": "nope"})
		if !result.IsError {
			t.Fatal("expected error")
		}
		if !strings.Contains(text, "not_found") {
			t.Errorf("expected kind in message, got %q", text)
		}
	})

	t.Run("from document", func(t *testing.T) {
		tpl, err := catalog.Default().Get("jira-time-tracker")
		if err != nil {
			t.Fatal(err)
		}
		raw, err := tpl.NewDocument().JSON()
		if err != nil {
			t.Fatal(err)
		}
		result, text := call(t, srv.handleCreateSession, map[string]any{"document_json": string(raw)})
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", text)
		}
		if !strings.Contains(text, "Clockwise Time Tracker") {
			t.Errorf("expected document in output, got %q", text)
		}
	})

	t.Run("invalid document", func(t *testing.T) {
		result, _ := call(t, srv.handleCreateSession, map[string]any{"document_json": `{"layout": 1}`})
		if !result.IsError {
			t.Error("expected validation error")
		}
	})
}

func TestHandleSendMessage(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv, "feishu-change-management")

	result, text := call(t, srv.handleSendMessage, map[string]any{"session_id": id, "message": "生成功能列表"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "get_document") {
		t.Errorf("expected mutation note, got %q", text)
	}

	_, text = call(t, srv.handleGetDocument, map[string]any{"session_id": id})
	var d document.Document
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(d.Tabs.Overview.Features) != 3 {
		t.Errorf("features = %d, want 3", len(d.Tabs.Overview.Features))
	}

	result, _ = call(t, srv.handleSendMessage, map[string]any{"session_id": id})
	if !result.IsError {
		t.Error("expected error for missing message")
	}

	result, _ = call(t, srv.handleSendMessage, map[string]any{"session_id": "missing", "message": "hi"})
	if !result.IsError {
		t.Error("expected error for unknown session")
	}
}

func TestHandleApplyPatches(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv, "feishu-change-management")

	result, text := call(t, srv.handleApplyPatches, map[string]any{
		"session_id": id,
		"patches": []any{
			map[string]any{"op": "replace", "path": "appInfo.tagline", "value": "Ship changes safely"},
		},
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}

	result, text = call(t, srv.handleApplyPatches, map[string]any{
		"session_id": id,
		"patches": []any{
			map[string]any{"op": "replace", "path": "appInfo.tagline", "value": "Lost"},
			map[string]any{"op": "replace", "path": "appInfo.rating", "value": 99},
		},
	})
	if !result.IsError {
		t.Fatal("expected rejected batch")
	}
	if !strings.Contains(text, "patch_rejected") {
		t.Errorf("expected patch_rejected kind, got %q", text)
	}

	snap, err := srv.sessions.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Document.AppInfo.Tagline != "Ship changes safely" {
		t.Errorf("tagline = %q", snap.Document.AppInfo.Tagline)
	}

	result, _ = call(t, srv.handleApplyPatches, map[string]any{"session_id": id, "patches": []any{}})
	if !result.IsError {
		t.Error("expected error for empty batch")
	}
}

func TestHandleExportPage(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv, "jira-time-tracker")

	_, html := call(t, srv.handleExportPage, map[string]any{"session_id": id})
	if !strings.HasPrefix(html, "<div") {
		t.Errorf("expected markup, got %q", html[:min(len(html), 40)])
	}

	_, text := call(t, srv.handleExportPage, map[string]any{"session_id": id, "format": "text"})
	if strings.Contains(text, "<") {
		t.Error("text export should not contain markup")
	}
	if !strings.Contains(text, "Clockwise Time Tracker") {
		t.Error("text export should contain the app name")
	}
}

func TestHandleComposeImageToFile(t *testing.T) {
	srv := newTestServer(t)

	result, text := call(t, srv.handleComposeImage, map[string]any{"source": tinyPNG(t), "frame": "none"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	path := filepath.Join(srv.outputDir, "onepage-image-1700000000123.png")
	if !strings.Contains(text, path) {
		t.Errorf("expected path %q in %q", path, text)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("image not written: %v", err)
	}
}

func TestHandleComposeImageIntoSession(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv, "feishu-change-management")

	result, text := call(t, srv.handleComposeImage, map[string]any{
		"source": tinyPNG(t), "session_id": id, "media_index": 0,
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	snap, err := srv.sessions.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(snap.Document.Media[0].URL, "data:image/png;base64,") {
		t.Errorf("media[0] not replaced: %q", snap.Document.Media[0].URL[:min(len(snap.Document.Media[0].URL), 40)])
	}
	if snap.Target != nil {
		t.Error("edit target should be cleared")
	}

	result, _ = call(t, srv.handleComposeImage, map[string]any{
		"source": "data:image/png;base64,AAAA", "session_id": id, "media_index": 0,
	})
	if !result.IsError {
		t.Fatal("expected rasterization error")
	}
	snap, _ = srv.sessions.Get(id)
	if snap.Target != nil {
		t.Error("edit target should be cleared after a failed compose")
	}

	result, _ = call(t, srv.handleComposeImage, map[string]any{
		"source": tinyPNG(t), "session_id": id, "media_index": 5,
	})
	if !result.IsError {
		t.Error("expected error for out-of-range media index")
	}
}
