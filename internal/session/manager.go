package session

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/document"
	"github.com/ziadkadry99/onepage/internal/logging"
)

var (
	// ErrBusy is returned while another operation on the session is pending.
	ErrBusy = apperr.New(apperr.KindBusy, "session is busy")
	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = apperr.NotFound("session not found")
)

type entry struct {
	mu      sync.Mutex
	busy    bool
	session *Session
}

// Manager shares sessions between concurrent callers. Operations on one
// session never queue: a second caller gets ErrBusy. Get is always served.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	store   *catalog.Store
	opts    Options
	logger  *zap.Logger
}

// NewManager creates a Manager that starts sessions from store.
func NewManager(store *catalog.Store, opts Options) *Manager {
	return &Manager{
		entries: make(map[string]*entry),
		store:   store,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger).Named("session"),
	}
}

// Create starts a session on the given template.
func (m *Manager) Create(templateID string) (Snapshot, error) {
	tpl, err := m.store.Get(templateID)
	if err != nil {
		return Snapshot{}, err
	}
	return m.add(New(tpl, m.opts)), nil
}

// Adopt starts a session on an imported document.
func (m *Manager) Adopt(d document.Document) Snapshot {
	return m.add(FromDocument(d, m.opts))
}

func (m *Manager) add(s *Session) Snapshot {
	m.mu.Lock()
	m.entries[s.ID()] = &entry{session: s}
	m.mu.Unlock()
	m.logger.Info("session started", zap.String("id", s.ID()), zap.String("template", s.TemplateID()))
	return s.Snapshot()
}

// Do runs fn with exclusive access to the session.
func (m *Manager) Do(id string, fn func(*Session) error) error {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	e.busy = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()
	return fn(e.session)
}

// Get returns a snapshot of the session. It does not wait for, or conflict
// with, a pending operation.
func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return e.session.Snapshot(), nil
}

// Delete drops the session. Deleting an unknown ID is not an error.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

// IDs returns the live session IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
