// Package auth resolves access codes to users and keeps the signed-in code
// for the CLI and the HTTP API.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

// HeaderCode carries the access code on HTTP requests.
const HeaderCode = "X-Magic-Code"

// Role is a user's permission level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity an access code resolves to.
type User struct {
	ID   int    `json:"id" yaml:"id"`
	Role Role   `json:"role" yaml:"role"`
	Code string `json:"-" yaml:"-"`
}

// ErrInvalidCode is returned for codes that are not in the directory.
var ErrInvalidCode = apperr.Unauthorized("invalid access code")

var builtin = map[string]User{
	"onepage2024": {ID: 1, Role: RoleUser},
	"admin888":    {ID: 2, Role: RoleAdmin},
	"demo":        {ID: 3, Role: RoleUser},
}

// Directory maps access codes to users.
type Directory struct {
	codes map[string]User
}

// NewDirectory returns the built-in codes plus extra. Entries in extra
// replace built-in codes with the same value.
func NewDirectory(extra map[string]User) *Directory {
	d := &Directory{codes: make(map[string]User, len(builtin)+len(extra))}
	for code, u := range builtin {
		d.codes[code] = u
	}
	for code, u := range extra {
		if u.Role == "" {
			u.Role = RoleUser
		}
		d.codes[code] = u
	}
	return d
}

// Lookup resolves code. Surrounding whitespace is ignored.
func (d *Directory) Lookup(code string) (User, bool) {
	code = strings.TrimSpace(code)
	u, ok := d.codes[code]
	if !ok || code == "" {
		return User{}, false
	}
	u.Code = code
	return u, true
}

// CodeStore persists the signed-in access code between runs.
type CodeStore interface {
	// LoadCode returns "" when nothing is stored.
	LoadCode(ctx context.Context) (string, error)
	SaveCode(ctx context.Context, code string) error
	ClearCode(ctx context.Context) error
}

// SessionContext is the current sign-in state. It is read from the store
// once on creation and afterwards changes only through SignIn and SignOut.
type SessionContext struct {
	mu    sync.RWMutex
	dir   *Directory
	store CodeStore
	user  *User
}

// NewSessionContext restores the stored sign-in, if any. A stored code that
// no longer resolves is treated as signed out.
func NewSessionContext(ctx context.Context, dir *Directory, store CodeStore) (*SessionContext, error) {
	s := &SessionContext{dir: dir, store: store}
	if store == nil {
		return s, nil
	}
	code, err := store.LoadCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored access code: %w", err)
	}
	if u, ok := dir.Lookup(code); ok {
		s.user = &u
	}
	return s, nil
}

// Current returns the signed-in user.
func (s *SessionContext) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// SignIn validates code, persists it and makes it current.
func (s *SessionContext) SignIn(ctx context.Context, code string) (User, error) {
	u, ok := s.dir.Lookup(code)
	if !ok {
		return User{}, ErrInvalidCode
	}
	if s.store != nil {
		if err := s.store.SaveCode(ctx, u.Code); err != nil {
			return User{}, fmt.Errorf("saving access code: %w", err)
		}
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

// SignOut forgets the current user.
func (s *SessionContext) SignOut(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.ClearCode(ctx); err != nil {
			return fmt.Errorf("clearing access code: %w", err)
		}
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return nil
}

type ctxKey struct{}

// WithUser attaches u to ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user attached by Middleware.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// Middleware resolves the X-Magic-Code header and attaches the user to the
// request context. Requests without a valid code pass through anonymously.
func Middleware(dir *Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := dir.Lookup(r.Header.Get(HeaderCode)); ok {
				r = r.WithContext(WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}
