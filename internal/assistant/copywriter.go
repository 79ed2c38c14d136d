package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/llm"
	"github.com/ziadkadry99/onepage/internal/logging"
)

// Demo reply returned when no provider is configured. Clients treat it as a
// mock and fall back to their offline copywriter.
const (
	demoCopy      = "Unlock your potential with our revolutionary product. Limited time offer!"
	demoRationale = "Uses Scarcity Principle to drive urgency."
)

// CopywriterHandler serves POST /api/generate-marketing-copy.
type CopywriterHandler struct {
	provider llm.Provider
	apiKey   string
	logger   *zap.Logger
}

// NewCopywriterHandler creates the handler. provider may be nil. If apiKey is
// set, requests must carry it as a bearer token.
func NewCopywriterHandler(provider llm.Provider, apiKey string, logger *zap.Logger) *CopywriterHandler {
	return &CopywriterHandler{
		provider: provider,
		apiKey:   apiKey,
		logger:   logging.OrNop(logger).Named("copywriter"),
	}
}

type copyAPIRequest struct {
	Prompt      string `json:"prompt"`
	Context     string `json:"context"`
	Instruction string `json:"instruction"`
	Style       string `json:"style"`
}

func (h *CopywriterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+h.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid API key"})
		return
	}

	var req copyAPIRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}
	style := req.Style
	if style == "" {
		style = "persuasive"
	}

	if h.provider == nil {
		writeJSON(w, http.StatusOK, copyResponse{Copy: demoCopy, Mock: true, Rationale: demoRationale, Style: style})
		return
	}

	instruction := req.Instruction
	if instruction == "" {
		instruction = SystemInstruction
	}
	user := req.Prompt
	if req.Context != "" {
		user += "\n\nCurrent page data (JSON):\n" + req.Context
	}

	resp, err := h.provider.Complete(r.Context(), llm.Prompt(instruction, user))
	if err != nil {
		h.logger.Warn("completion failed", zap.String("provider", h.provider.Name()), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "completion failed"})
		return
	}
	h.logger.Debug("completion",
		zap.String("provider", h.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)

	writeJSON(w, http.StatusOK, copyResponse{Copy: strings.TrimSpace(resp.Content), Style: style})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
