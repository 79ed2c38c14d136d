package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

func TestBuiltinCodes(t *testing.T) {
	d := NewDirectory(nil)
	for code, want := range map[string]User{
		"onepage2024": {ID: 1, Role: RoleUser, Code: "onepage2024"},
		"admin888":    {ID: 2, Role: RoleAdmin, Code: "admin888"},
		"demo":        {ID: 3, Role: RoleUser, Code: "demo"},
	} {
		got, ok := d.Lookup(code)
		require.True(t, ok, code)
		assert.Equal(t, want, got)
	}
}

func TestDirectoryLookup(t *testing.T) {
	d := NewDirectory(map[string]User{
		"partner": {ID: 10},
		"demo":    {ID: 30, Role: RoleAdmin},
	})

	tests := []struct {
		code string
		want User
		ok   bool
	}{
		{"onepage2024", User{ID: 1, Role: RoleUser, Code: "onepage2024"}, true},
		{"admin888", User{ID: 2, Role: RoleAdmin, Code: "admin888"}, true},
		{" demo ", User{ID: 30, Role: RoleAdmin, Code: "demo"}, true},
		{"partner", User{ID: 10, Role: RoleUser, Code: "partner"}, true},
		{"guess", User{}, false},
		{"", User{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := d.Lookup(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionContextFileStore(t *testing.T) {
	ctx := context.Background()
	store := &FileStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}
	dir := NewDirectory(nil)

	s, err := NewSessionContext(ctx, dir, store)
	require.NoError(t, err)
	_, ok := s.Current()
	assert.False(t, ok)

	_, err = s.SignIn(ctx, "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	u, err := s.SignIn(ctx, "admin888")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A new context restores the stored sign-in.
	restored, err := NewSessionContext(ctx, dir, store)
	require.NoError(t, err)
	got, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, 2, got.ID)

	require.NoError(t, restored.SignOut(ctx))
	_, ok = restored.Current()
	assert.False(t, ok)
	_, err = os.Stat(store.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, restored.SignOut(ctx))
}

func TestSessionContextIgnoresStaleCode(t *testing.T) {
	ctx := context.Background()
	store := &FileStore{Path: filepath.Join(t.TempDir(), "session.json")}
	require.NoError(t, store.SaveCode(ctx, "revoked"))

	s, err := NewSessionContext(ctx, NewDirectory(nil), store)
	require.NoError(t, err)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, "")

	code, err := store.LoadCode(ctx)
	require.NoError(t, err)
	assert.Empty(t, code)

	s, err := NewSessionContext(ctx, NewDirectory(nil), store)
	require.NoError(t, err)
	_, err = s.SignIn(ctx, "demo")
	require.NoError(t, err)

	stored, err := mr.Get(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, "demo", stored)
	assert.Zero(t, mr.TTL(DefaultRedisKey))

	require.NoError(t, s.SignOut(ctx))
	assert.False(t, mr.Exists(DefaultRedisKey))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err := NewSessionContext(context.Background(), NewDirectory(nil), NewRedisStore(client, "k"))
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var seen *User
	h := Middleware(NewDirectory(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = nil
		if u, ok := FromContext(r.Context()); ok {
			seen = &u
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCode, "onepage2024")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, 1, seen.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCode, "nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}
