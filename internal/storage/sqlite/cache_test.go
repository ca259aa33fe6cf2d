package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/sqlite"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage/storagetest"
)

func openCache(t *testing.T) *sqlite.Cache {
	t.Helper()

	c, err := sqlite.Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestCache_Backend(t *testing.T) {
	storagetest.Run(t, openCache(t))
}

func TestCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c := openCache(t)

	_, err := c.Get(ctx, "a", storage.KindDeliveryLogs)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, c.Put(ctx, "a", storage.KindDeliveryLogs, []byte(`[1]`)))
	require.NoError(t, c.Put(ctx, "a", storage.KindDeliveryLogs, []byte(`[1,2]`)))
	require.NoError(t, c.Put(ctx, "b", storage.KindDeliveryLogs, []byte(`[3]`)))

	got, err := c.Get(ctx, "a", storage.KindDeliveryLogs)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))

	got, err = c.Get(ctx, "b", storage.KindDeliveryLogs)
	require.NoError(t, err)
	assert.JSONEq(t, `[3]`, string(got))

	_, err = c.Get(ctx, "a", storage.KindExpenses)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	scopes, err := c.Scopes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, scopes)
}

func TestCache_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "a", storage.KindSettings, []byte(`{"cutoffPoint":110}`)))
	require.NoError(t, c.Close())

	c, err = sqlite.Open(path)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get(ctx, "a", storage.KindSettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cutoffPoint":110}`, string(got))
}
