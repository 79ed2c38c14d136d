package editor

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/intent"
	"github.com/ziadkadry99/onepage/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "message" or "snapshot"
	Content string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type      string             `json:"type"` // "response", "snapshot" or "error"
	SessionID string             `json:"session_id"`
	Content   string             `json:"content,omitempty"`
	Intent    intent.Intent      `json:"intent,omitempty"`
	Mutated   bool               `json:"mutated,omitempty"`
	Outcome   string             `json:"outcome,omitempty"`
	Kind      apperr.Kind        `json:"kind,omitempty"`
	Retryable bool               `json:"retryable,omitempty"`
	Document  *document.Document `json:"document,omitempty"`
}

func (e *Editor) handleChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := e.sessions.Get(id); apperr.KindOf(err) == apperr.KindNotFound {
		e.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	// The socket outlives the request timeout. A pending turn is cancelled
	// as soon as the reader sees the connection close.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	msgs := make(chan []byte)
	go func() {
		defer close(msgs)
		defer cancel()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					e.logger.Debug("websocket read", zap.Error(err))
				}
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for msg := range msgs {
		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			e.sendError(conn, id, apperr.InvalidInput("invalid message format", err))
			continue
		}

		switch req.Type {
		case "message":
			e.handleChatMessage(ctx, conn, id, req)
		case "snapshot":
			e.handleChatSnapshot(conn, id)
		default:
			e.sendError(conn, id, apperr.InvalidInput("unknown message type: "+req.Type, nil))
		}
	}
}

func (e *Editor) handleChatMessage(ctx context.Context, conn *websocket.Conn, id string, req chatRequest) {
	var (
		turn session.Turn
		doc  document.Document
	)
	err := e.sessions.Do(id, func(s *session.Session) error {
		var err error
		turn, err = s.Send(ctx, req.Content)
		doc = s.Document()
		return err
	})
	if err != nil {
		e.sendError(conn, id, err)
		return
	}

	resp := chatResponse{
		Type:      "response",
		SessionID: id,
		Content:   turn.Reply.Content,
		Intent:    turn.Intent,
		Mutated:   turn.Mutated,
		Outcome:   turn.Outcome,
	}
	if turn.Mutated {
		resp.Document = &doc
	}
	e.sendResponse(conn, resp)
}

func (e *Editor) handleChatSnapshot(conn *websocket.Conn, id string) {
	snap, err := e.sessions.Get(id)
	if err != nil {
		e.sendError(conn, id, err)
		return
	}
	e.sendResponse(conn, chatResponse{Type: "snapshot", SessionID: id, Document: &snap.Document})
}

func (e *Editor) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		e.logger.Warn("websocket write", zap.Error(err))
	}
}

func (e *Editor) sendError(conn *websocket.Conn, sessionID string, err error) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   err.Error(),
		Kind:      apperr.KindOf(err),
		Retryable: apperr.IsRetryable(err),
	}
	if err := conn.WriteJSON(resp); err != nil {
		e.logger.Warn("websocket write error", zap.Error(err))
	}
}
