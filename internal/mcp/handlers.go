package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/export"
	"github.com/ziadkadry99/onepage/internal/session"
)

// handleListTemplates lists catalog templates as cards.
func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tpls := s.catalog.Search(request.GetString("query", ""))
	if len(tpls) == 0 {
		return mcp.NewToolResultText("No templates matched."), nil
	}
	return mcp.NewToolResultText(formatTemplates(tpls)), nil
}

// handleCreateSession starts a session from a template or an imported document.
func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		snap session.Snapshot
		err  error
	)
	if raw := request.GetString("document_json", ""); raw != "" {
		var d document.Document
		d, err = document.Validate([]byte(raw))
		if err == nil {
			snap = s.sessions.Adopt(document.Load(d))
		}
	} else if id := request.GetString("template_id", ""); id != "" {
		snap, err = s.sessions.Create(id)
	} else {
		return mcp.NewToolResultError("one of template_id or document_json is required"), nil
	}
	if err != nil {
		return toolError("create session", err), nil
	}

	body, err := json.MarshalIndent(snap.Document, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session: %s\n\n%s\n\nAssistant: %s", snap.ID, body, snap.Conversation[0].Content)), nil
}

// handleGetDocument returns the session's document as JSON.
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	snap, err := s.sessions.Get(id)
	if err != nil {
		return toolError("get document", err), nil
	}
	body, err := snap.Document.JSON()
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}

// handleSendMessage runs one chat turn.
func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	msg, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	var turn session.Turn
	err = s.sessions.Do(id, func(sess *session.Session) error {
		var err error
		turn, err = sess.Send(ctx, msg)
		return err
	})
	if err != nil {
		return toolError("send message", err), nil
	}

	text := turn.Reply.Content
	if turn.Mutated {
		text += "\n\n(The page document was updated; call get_document to see it.)"
	}
	return mcp.NewToolResultText(text), nil
}

// handleApplyPatches applies a patch batch atomically.
func (s *Server) handleApplyPatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	raw, ok := request.GetArguments()["patches"]
	if !ok {
		return mcp.NewToolResultError("missing required parameter: patches"), nil
	}
	patches, err := decodePatches(raw)
	if err != nil {
		return toolError("decode patches", err), nil
	}

	err = s.sessions.Do(id, func(sess *session.Session) error {
		return sess.Apply(patches...)
	})
	if err != nil {
		return toolError("apply patches", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Applied %d patch(es).", len(patches))), nil
}

// handleExportPage renders the page as markup or text.
func (s *Server) handleExportPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	snap, err := s.sessions.Get(id)
	if err != nil {
		return toolError("export page", err), nil
	}

	p := export.Document(snap.Document)
	if request.GetString("format", "html") == "text" {
		return mcp.NewToolResultText(p.Text), nil
	}
	return mcp.NewToolResultText(p.HTML), nil
}

// handleComposeImage frames a screenshot and either routes it into a session
// or writes it to the output directory.
func (s *Server) handleComposeImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}
	req := compositor.Request{
		Source:     src,
		Frame:      compositor.Frame(request.GetString("frame", "")),
		Background: compositor.Background(request.GetString("background", "")),
		Scale:      request.GetFloat("scale", 0),
	}

	if id := request.GetString("session_id", ""); id != "" {
		index := request.GetInt("media_index", -1)
		var res *compositor.Result
		err := s.sessions.Do(id, func(sess *session.Session) error {
			if err := sess.SetTarget(&session.EditTarget{Section: session.SectionMedia, Index: index}); err != nil {
				return err
			}
			var err error
			res, err = s.composer.Compose(ctx, req)
			if err != nil {
				sess.SetTarget(nil)
				return err
			}
			return sess.ReplaceTargetImage(res.DataURL())
		})
		if err != nil {
			return toolError("compose image", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Replaced media[%d] with a %dx%d image.", index, res.Width, res.Height)), nil
	}

	res, err := s.composer.Compose(ctx, req)
	if err != nil {
		return toolError("compose image", err), nil
	}
	path, err := res.Save(s.outputDir, s.now())
	if err != nil {
		return toolError("save image", err), nil
	}
	s.logger.Info("image written", zap.String("path", path))
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %dx%d image to %s", res.Width, res.Height, path)), nil
}

func decodePatches(raw any) ([]document.Patch, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, apperr.InvalidInput("patches must be a JSON array", err)
	}
	var patches []document.Patch
	if err := json.Unmarshal(b, &patches); err != nil {
		return nil, apperr.InvalidInput("patches must be a JSON array", err)
	}
	if len(patches) == 0 {
		return nil, apperr.InvalidInput("at least one patch is required", nil)
	}
	return patches, nil
}

// toolError reports err to the agent with its kind, and whether retrying
// could help.
func toolError(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s failed [%s]: %v", action, apperr.KindOf(err), err)
	if apperr.IsRetryable(err) {
		msg += " (retryable)"
	}
	return mcp.NewToolResultError(msg)
}

// formatTemplates renders catalog cards for agent consumption.
func formatTemplates(tpls []catalog.Template) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d template(s):\n", len(tpls)))
	for _, t := range tpls {
		sb.WriteString(fmt.Sprintf("\n- %s (%s)\n", t.Name, t.ID))
		sb.WriteString(fmt.Sprintf("  Category: %s, conversion score: %d\n", t.Category, t.ConversionScore))
		if len(t.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("  Tags: %s\n", strings.Join(t.Tags, ", ")))
		}
		if t.Description != "" {
			sb.WriteString("  " + t.Description + "\n")
		}
	}
	return sb.String()
}
