// Package session holds one user's editing state: the Document being
// edited, the assistant conversation and the current edit target.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/assistant"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/intent"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/metrics"
)

// DefaultLatency is how long the offline copywriter pretends to think.
const DefaultLatency = time.Second

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Section names a selectable region of the page.
type Section string

const (
	SectionAppInfo  Section = "appInfo"
	SectionMedia    Section = "media"
	SectionOverview Section = "overview"
	SectionFeatures Section = "features"
	SectionSidebar  Section = "sidebar"
)

func (s Section) valid() bool {
	switch s {
	case SectionAppInfo, SectionMedia, SectionOverview, SectionFeatures, SectionSidebar:
		return true
	}
	return false
}

// EditTarget is the region the user last selected. For media, Index picks
// the element that receives composed images.
type EditTarget struct {
	Section Section `json:"section"`
	Index   int     `json:"index"`
}

// Assistant answers a prompt remotely. *assistant.Bridge implements it.
type Assistant interface {
	Complete(ctx context.Context, prompt string, d document.Document) assistant.Result
}

// Options configures new sessions.
type Options struct {
	Assistant Assistant
	// Latency is the wait before an offline reply. Zero means
	// DefaultLatency; negative disables it.
	Latency time.Duration
	Logger  *zap.Logger
}

func (o Options) latency() time.Duration {
	if o.Latency == 0 {
		return DefaultLatency
	}
	return max(o.Latency, 0)
}

// Session is single-owner state. Mutating methods must not run concurrently
// with each other (see Manager); reads are safe at any time.
type Session struct {
	id         string
	templateID string

	mu         sync.RWMutex
	doc        document.Document
	conv       []Message
	target     *EditTarget

	assistant Assistant
	latency   time.Duration
	logger    *zap.Logger
}

// New starts a session on a fresh copy of tpl's document.
func New(tpl catalog.Template, opts Options) *Session {
	s := FromDocument(tpl.NewDocument(), opts)
	s.templateID = tpl.ID
	return s
}

// FromDocument starts a session on d, which must already be validated.
func FromDocument(d document.Document, opts Options) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		doc:       d.Clone(),
		conv:      []Message{{Role: RoleAssistant, Content: intent.Greeting}},
		assistant: opts.Assistant,
		latency:   opts.latency(),
		logger:    logging.OrNop(opts.Logger).With(zap.String("session", id)),
	}
}

func (s *Session) ID() string { return s.id }

// TemplateID is empty for sessions started from an imported document.
func (s *Session) TemplateID() string { return s.templateID }

// Document returns a copy of the current document.
func (s *Session) Document() document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Conversation returns a copy of the conversation so far.
func (s *Session) Conversation() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversation()
}

func (s *Session) conversation() []Message {
	out := make([]Message, len(s.conv))
	copy(out, s.conv)
	return out
}

// Target returns the current edit target, or nil.
func (s *Session) Target() *EditTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editTarget()
}

func (s *Session) editTarget() *EditTarget {
	if s.target == nil {
		return nil
	}
	t := *s.target
	return &t
}

// Apply applies patches atomically to the document.
func (s *Session) Apply(patches ...document.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(patches...)
}

func (s *Session) apply(patches ...document.Patch) error {
	err := s.doc.Apply(patches...)
	metrics.PatchesApplied.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Debug("patch rejected", zap.Error(err))
	}
	return err
}

func (s *Session) appendMessage(m Message) {
	s.mu.Lock()
	s.conv = append(s.conv, m)
	s.mu.Unlock()
}

// Turn is the outcome of one Send.
type Turn struct {
	Reply Message `json:"reply"`
	// Intent is set when the offline copywriter answered.
	Intent  intent.Intent `json:"intent,omitempty"`
	Mutated bool          `json:"mutated"`
	Outcome string        `json:"outcome"`
}

// Send appends the user's message and produces exactly one reply. A remote
// reply never changes the document; otherwise the offline copywriter runs
// after the simulated latency and may apply one patch batch.
func (s *Session) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, apperr.InvalidInput("message is empty", nil)
	}
	s.appendMessage(Message{Role: RoleUser, Content: text})

	outcome := string(assistant.ReasonMissingCredential)
	if s.assistant != nil {
		res := s.assistant.Complete(ctx, text, s.Document())
		if res.OK() {
			reply := Message{Role: RoleAssistant, Content: res.Text}
			s.appendMessage(reply)
			return Turn{Reply: reply, Outcome: res.Outcome()}, nil
		}
		outcome = res.Outcome()
		s.logger.Debug("assistant unavailable, using offline copywriter", zap.Stringer("result", res))
	}

	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return Turn{}, ctx.Err()
		case <-t.C:
		}
	}

	// Readers see the document and its reply change together.
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := intent.Execute(&s.doc, text)
	if r.Mutates() || err != nil {
		metrics.PatchesApplied.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		return Turn{}, fmt.Errorf("executing intent: %w", err)
	}
	metrics.IntentsExecuted.WithLabelValues(string(r.Intent)).Inc()

	reply := Message{Role: RoleAssistant, Content: r.Message}
	s.conv = append(s.conv, reply)
	return Turn{Reply: reply, Intent: r.Intent, Mutated: r.Mutates(), Outcome: outcome}, nil
}

// SetTarget selects a region. A nil target clears the selection.
func (s *Session) SetTarget(t *EditTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.target = nil
		return nil
	}
	if !t.Section.valid() {
		return apperr.InvalidInput(fmt.Sprintf("unknown section %q", t.Section), nil)
	}
	if t.Section == SectionMedia && (t.Index < 0 || t.Index >= len(s.doc.Media)) {
		return apperr.InvalidInput(fmt.Sprintf("media index %d out of range", t.Index), nil)
	}
	c := *t
	s.target = &c
	return nil
}

// ReplaceTargetImage writes url into the targeted media element and clears
// the target.
func (s *Session) ReplaceTargetImage(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil || s.target.Section != SectionMedia {
		return apperr.InvalidInput("no media element is selected", nil)
	}
	if err := s.apply(document.Replace(fmt.Sprintf("media[%d].url", s.target.Index), url)); err != nil {
		return err
	}
	s.target = nil
	return nil
}

// Snapshot is a serializable copy of the session state.
type Snapshot struct {
	ID           string            `json:"id"`
	TemplateID   string            `json:"templateId,omitempty"`
	Document     document.Document `json:"document"`
	Conversation []Message         `json:"conversation"`
	Target       *EditTarget       `json:"editTarget,omitempty"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:           s.id,
		TemplateID:   s.templateID,
		Document:     s.doc.Clone(),
		Conversation: s.conversation(),
		Target:       s.editTarget(),
	}
}
