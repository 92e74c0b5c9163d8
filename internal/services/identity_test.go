package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quickdate/admin-api/internal/store"
)

type stubAuth struct {
	names map[string]string
}

func (a *stubAuth) DisplayName(_ context.Context, uid string) (string, error) {
	if name, ok := a.names[uid]; ok {
		return name, nil
	}
	return "", errors.New("user not found")
}

func TestResolverPrefersUsername(t *testing.T) {
	st := store.NewMemStore()
	st.Put("users/u1", map[string]interface{}{
		"username":  "alice",
		"firstName": "Alice",
		"lastName":  "Smith",
	})
	r := NewResolver(st, nil)
	require.Equal(t, "@alice", r.Name(context.Background(), "u1"))
}

func TestResolverFirstLastFallback(t *testing.T) {
	st := store.NewMemStore()
	st.Put("users/u1", map[string]interface{}{
		"firstName": "Alice",
		"lastName":  "Smith",
	})
	r := NewResolver(st, nil)
	require.Equal(t, "Alice Smith", r.Name(context.Background(), "u1"))
}

func TestResolverProbesLegacyCollections(t *testing.T) {
	st := store.NewMemStore()
	st.Put("profiles/u2", map[string]interface{}{"displayName": "Bob"})
	r := NewResolver(st, nil)
	require.Equal(t, "Bob", r.Name(context.Background(), "u2"))
}

func TestResolverAuthFallback(t *testing.T) {
	st := store.NewMemStore()
	auth := &stubAuth{names: map[string]string{"u3": "Carol"}}
	r := NewResolver(st, auth)
	require.Equal(t, "Carol", r.Name(context.Background(), "u3"))
}

func TestResolverUIDFallback(t *testing.T) {
	r := NewResolver(store.NewMemStore(), &stubAuth{})
	require.Equal(t, "@ghost", r.Name(context.Background(), "ghost"))
}

func TestResolverSeedWins(t *testing.T) {
	st := store.NewMemStore()
	st.Put("users/u1", map[string]interface{}{"username": "alice"})
	r := NewResolver(st, nil)
	r.Seed("u1", "@carried-name")
	require.Equal(t, "@carried-name", r.Name(context.Background(), "u1"))
}
