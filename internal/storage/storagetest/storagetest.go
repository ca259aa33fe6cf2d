// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

// Run exercises b against a fresh random scope. Watch is tested too when b
// implements storage.Watcher.
func Run(t *testing.T, b storage.Backend) {
	t.Helper()

	scope := "test-" + uuid.NewString()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := b.Get(context.Background(), scope, storage.KindDeliveryLogs)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, b.Put(ctx, scope, storage.KindExpenses, []byte(`[{"id":"a"}]`)))
		require.NoError(t, b.Put(ctx, scope, storage.KindExpenses, []byte(`[{"id":"b"}]`)))

		got, err := b.Get(ctx, scope, storage.KindExpenses)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"b"}]`, string(got))

		_, err = b.Get(ctx, scope, storage.KindSettings)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	w, ok := b.(storage.Watcher)
	if !ok {
		return
	}

	t.Run("Watch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pushes := make(chan []byte, 8)
		done := make(chan error, 1)

		go func() {
			done <- w.Watch(ctx, scope, storage.KindDeliveryLogs, func(p []byte) { pushes <- p })
		}()

		assert.Nil(t, next(t, pushes), "initial state of a missing document")

		for i := range 2 {
			payload := fmt.Sprintf(`[%d]`, i)
			require.NoError(t, b.Put(context.Background(), scope, storage.KindDeliveryLogs, []byte(payload)))
			assert.JSONEq(t, payload, string(next(t, pushes)))
		}

		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("watch did not stop")
		}
	})
}

func next(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case p := <-ch:
		return p
	case <-time.After(10 * time.Second):
		t.Fatal("no push received")
	}

	return nil
}
