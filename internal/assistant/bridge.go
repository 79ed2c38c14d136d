// Package assistant connects an editing session to a remote copywriting
// endpoint and serves that endpoint on top of an LLM provider.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/metrics"
)

// SystemInstruction is sent with every completion request.
const SystemInstruction = "You are an expert app-marketplace copywriter. You write concise, high-conversion listing copy. " +
	"Use the page data in the context to stay specific to the product. Reply in the language the user writes in."

// Reason says why the remote assistant could not answer.
type Reason string

const (
	ReasonMissingCredential Reason = "missing_credential"
	ReasonMockReply         Reason = "mock_reply"
	ReasonBadStatus         Reason = "bad_status"
	ReasonMalformedBody     Reason = "malformed_body"
	ReasonTransport         Reason = "transport"
)

// Result is either Completed with text or Unavailable with a reason.
type Result struct {
	Text   string
	Reason Reason
}

// Completed builds a successful Result.
func Completed(text string) Result { return Result{Text: text} }

// Unavailable builds a Result telling the caller to fall back.
func Unavailable(reason Reason) Result { return Result{Reason: reason} }

// OK reports whether the result carries remote text.
func (r Result) OK() bool { return r.Reason == "" }

// Outcome is the metrics/log label for r.
func (r Result) Outcome() string {
	if r.OK() {
		return "completed"
	}
	return string(r.Reason)
}

// Config configures a Bridge.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// RPM caps requests per minute; 0 disables limiting.
	RPM int
}

// Bridge calls the copywriting endpoint. It never returns an error: every
// failure becomes an Unavailable result.
type Bridge struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewBridge creates a Bridge. A zero Timeout defaults to 30s.
func NewBridge(cfg Config, logger *zap.Logger) *Bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	b := &Bridge{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logging.OrNop(logger).Named("assistant"),
	}
	if cfg.RPM > 0 {
		b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RPM)), cfg.RPM)
	}
	if cfg.Endpoint != "" && cfg.APIKey == "" {
		b.logger.Warn("assistant endpoint has no api key; replies come from the offline copywriter",
			zap.String("endpoint", cfg.Endpoint))
	}
	return b
}

// Configured reports whether the bridge has both an endpoint and a credential.
// The key is required even when the endpoint does not check it.
func (b *Bridge) Configured() bool {
	return b.cfg.Endpoint != "" && b.cfg.APIKey != ""
}

type copyRequest struct {
	Prompt      string `json:"prompt"`
	Context     string `json:"context"`
	Instruction string `json:"instruction"`
}

type copyResponse struct {
	Copy      string `json:"copy"`
	Mock      bool   `json:"mock"`
	Rationale string `json:"rationale,omitempty"`
	Style     string `json:"style,omitempty"`
}

// Complete asks the endpoint for a reply to prompt, sending d as context.
func (b *Bridge) Complete(ctx context.Context, prompt string, d document.Document) Result {
	res := b.complete(ctx, prompt, d)
	metrics.AssistantOutcomes.WithLabelValues(res.Outcome()).Inc()
	return res
}

func (b *Bridge) complete(ctx context.Context, prompt string, d document.Document) Result {
	if !b.Configured() {
		return Unavailable(ReasonMissingCredential)
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			b.logger.Debug("rate limit wait aborted", zap.Error(err))
			return Unavailable(ReasonTransport)
		}
	}

	docJSON, err := d.JSON()
	if err != nil {
		b.logger.Warn("encoding document context", zap.Error(err))
		return Unavailable(ReasonTransport)
	}
	body, err := json.Marshal(copyRequest{
		Prompt:      prompt,
		Context:     string(docJSON),
		Instruction: SystemInstruction,
	})
	if err != nil {
		return Unavailable(ReasonTransport)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		b.logger.Warn("building request", zap.Error(err))
		return Unavailable(ReasonTransport)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Info("copywriter endpoint unreachable", zap.Error(err))
		return Unavailable(ReasonTransport)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Unavailable(ReasonTransport)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.logger.Info("copywriter endpoint returned error", zap.Int("status", resp.StatusCode))
		return Unavailable(ReasonBadStatus)
	}

	var cr copyResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		b.logger.Info("copywriter endpoint returned malformed body", zap.Error(err))
		return Unavailable(ReasonMalformedBody)
	}
	if cr.Mock || cr.Copy == "" {
		return Unavailable(ReasonMockReply)
	}
	return Completed(cr.Copy)
}

// String is used in logs.
func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("completed(%d chars)", len(r.Text))
	}
	return fmt.Sprintf("unavailable(%s)", r.Reason)
}
