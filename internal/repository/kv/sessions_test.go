package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/model"
)

func TestSessionRepoSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	repo := NewSessionRepo(store)

	user := model.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Password: "secret1"}
	require.NoError(t, repo.Save(ctx, user))

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, session.Valid())
	assert.Equal(t, user, *session.CurrentUser)

	require.NoError(t, repo.Clear(ctx))
	session, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated)
	assert.Nil(t, session.CurrentUser)
}

func TestSessionRepoLoadRejectsHalfWrittenSession(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{name: "nothing stored", values: map[string]string{}},
		{name: "flag without user", values: map[string]string{KeyIsAuthenticated: "true"}},
		{name: "flag with null user", values: map[string]string{KeyIsAuthenticated: "true", KeyCurrentUser: "null"}},
		{name: "flag with corrupt user", values: map[string]string{KeyIsAuthenticated: "true", KeyCurrentUser: "{"}},
		{name: "user without flag", values: map[string]string{KeyCurrentUser: `{"id":"u1"}`}},
		{name: "user with false flag", values: map[string]string{KeyIsAuthenticated: "false", KeyCurrentUser: `{"id":"u1"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, backend := newTestStore(t)
			for k, v := range tt.values {
				_, err := backend.Put(ctx, k, v, kvstore.AnyVersion)
				require.NoError(t, err)
			}

			session, err := NewSessionRepo(store).Load(ctx)
			require.NoError(t, err)
			assert.False(t, session.IsAuthenticated)
			assert.Nil(t, session.CurrentUser)
		})
	}
}

func TestSessionRepoRemembered(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	repo := NewSessionRepo(store)

	_, ok, err := repo.LoadRemembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	creds := model.RememberedCredentials{Email: "ann@example.com", Password: "secret1", Remember: true}
	require.NoError(t, repo.SaveRemembered(ctx, creds))

	got, ok, err := repo.LoadRemembered(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, creds, got)

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, session.RememberCredentials)

	// clearing the session leaves the remembered login alone
	require.NoError(t, repo.Clear(ctx))
	_, ok, err = repo.LoadRemembered(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.ClearRemembered(ctx))
	_, ok, err = repo.LoadRemembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepoRememberedNeedsAllKeys(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	_, err := backend.Put(ctx, KeyRememberedEmail, `"ann@example.com"`, kvstore.AnyVersion)
	require.NoError(t, err)
	_, err = backend.Put(ctx, KeyRememberCredentials, "true", kvstore.AnyVersion)
	require.NoError(t, err)

	_, ok, err := NewSessionRepo(store).LoadRemembered(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
