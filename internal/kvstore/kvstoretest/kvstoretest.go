// Package kvstoretest holds behaviour tests every kvstore.Backend must pass.
package kvstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/contact-book/internal/kvstore"
)

// Run exercises a backend. newBackend must return an empty backend each time
// it is called; Run closes it.
func Run(t *testing.T, newBackend func(t *testing.T) kvstore.Backend) {
	t.Helper()

	fresh := func(t *testing.T) kvstore.Backend {
		t.Helper()
		b := newBackend(t)
		t.Cleanup(func() { b.Close() })
		return b
	}

	t.Run("get missing key", func(t *testing.T) {
		b := fresh(t)
		_, err := b.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, kvstore.ErrNotExist)
	})

	t.Run("unconditional put bumps version", func(t *testing.T) {
		ctx := context.Background()
		b := fresh(t)

		v, err := b.Put(ctx, "users", "[]", kvstore.AnyVersion)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		v, err = b.Put(ctx, "users", `[{"id":"1"}]`, kvstore.AnyVersion)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		rec, err := b.Get(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, kvstore.Record{Value: `[{"id":"1"}]`, Version: 2}, rec)
	})

	t.Run("create-only put", func(t *testing.T) {
		ctx := context.Background()
		b := fresh(t)

		v, err := b.Put(ctx, "contacts", "[]", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		_, err = b.Put(ctx, "contacts", "[1]", 0)
		assert.ErrorIs(t, err, kvstore.ErrVersionMismatch)
	})

	t.Run("conditional put", func(t *testing.T) {
		ctx := context.Background()
		b := fresh(t)

		_, err := b.Put(ctx, "contacts", "[]", kvstore.AnyVersion)
		require.NoError(t, err)

		v, err := b.Put(ctx, "contacts", "[1]", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		// stale writer still holding version 1
		_, err = b.Put(ctx, "contacts", "[2]", 1)
		assert.ErrorIs(t, err, kvstore.ErrVersionMismatch)

		rec, err := b.Get(ctx, "contacts")
		require.NoError(t, err)
		assert.Equal(t, "[1]", rec.Value)
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		b := fresh(t)

		_, err := b.Put(ctx, "currentUser", "null", kvstore.AnyVersion)
		require.NoError(t, err)
		require.NoError(t, b.Delete(ctx, "currentUser"))
		require.NoError(t, b.Delete(ctx, "currentUser"))

		_, err = b.Get(ctx, "currentUser")
		assert.ErrorIs(t, err, kvstore.ErrNotExist)
	})

	t.Run("clear", func(t *testing.T) {
		ctx := context.Background()
		b := fresh(t)

		for _, key := range []string{"users", "contacts", "isAuthenticated"} {
			_, err := b.Put(ctx, key, "true", kvstore.AnyVersion)
			require.NoError(t, err)
		}
		require.NoError(t, b.Clear(ctx))

		for _, key := range []string{"users", "contacts", "isAuthenticated"} {
			_, err := b.Get(ctx, key)
			assert.ErrorIs(t, err, kvstore.ErrNotExist, key)
		}
	})
}
