package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

type memBackend struct {
	mu      sync.Mutex
	docs    map[string][]byte
	failGet error
	failPut error
	pushes  chan []byte
}

func newMem() *memBackend {
	return &memBackend{docs: make(map[string][]byte)}
}

func (m *memBackend) key(scope string, kind storage.Kind) string { return scope + "/" + string(kind) }

func (m *memBackend) Get(_ context.Context, scope string, kind storage.Kind) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failGet != nil {
		return nil, m.failGet
	}

	p, ok := m.docs[m.key(scope, kind)]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return p, nil
}

func (m *memBackend) Put(_ context.Context, scope string, kind storage.Kind, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPut != nil {
		return m.failPut
	}

	m.docs[m.key(scope, kind)] = payload

	return nil
}

type watchBackend struct {
	*memBackend
}

func (w watchBackend) Watch(ctx context.Context, scope string, kind storage.Kind, fn func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-w.pushes:
			fn(p)
		}
	}
}

const scope = "user-1"

func TestRepository_CacheOnly(t *testing.T) {
	ctx := context.Background()
	cache := newMem()
	repo := storage.NewRepository(cache, nil, nil)

	_, err := repo.Get(ctx, scope, storage.KindDeliveryLogs)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Put(ctx, scope, storage.KindDeliveryLogs, []byte(`[]`)))

	got, err := repo.Get(ctx, scope, storage.KindDeliveryLogs)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	_, err = repo.Subscribe(ctx, scope, storage.KindDeliveryLogs, func([]byte) {})
	assert.ErrorIs(t, err, storage.ErrWatchUnsupported)
}

func TestRepository_Get(t *testing.T) {
	type testCase struct {
		name    string
		cached  []byte
		remote  []byte
		failGet error
		want    string
		wantErr error
	}

	tests := []testCase{
		{name: "RemoteWins", cached: []byte(`old`), remote: []byte(`new`), want: "new"},
		{name: "OfflineServesCache", cached: []byte(`old`), failGet: errors.New("offline"), want: "old"},
		{name: "OfflineNoCache", failGet: errors.New("offline"), wantErr: errors.New("offline")},
		{name: "MissingEverywhere", wantErr: storage.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cache, remote := newMem(), newMem()

			if tt.cached != nil {
				require.NoError(t, cache.Put(ctx, scope, storage.KindExpenses, tt.cached))
			}

			if tt.remote != nil {
				require.NoError(t, remote.Put(ctx, scope, storage.KindExpenses, tt.remote))
			}

			remote.failGet = tt.failGet

			got, err := storage.NewRepository(cache, remote, nil).Get(ctx, scope, storage.KindExpenses)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			mirrored, err := cache.Get(ctx, scope, storage.KindExpenses)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(mirrored))
		})
	}
}

func TestRepository_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("RemoteThenCache", func(t *testing.T) {
		cache, remote := newMem(), newMem()
		repo := storage.NewRepository(cache, remote, nil)

		require.NoError(t, repo.Put(ctx, scope, storage.KindSettings, []byte(`{}`)))

		for _, b := range []*memBackend{cache, remote} {
			got, err := b.Get(ctx, scope, storage.KindSettings)
			require.NoError(t, err)
			assert.Equal(t, `{}`, string(got))
		}
	})

	t.Run("RemoteFailureLeavesCache", func(t *testing.T) {
		cache, remote := newMem(), newMem()
		require.NoError(t, cache.Put(ctx, scope, storage.KindSettings, []byte(`before`)))
		remote.failPut = errors.New("permission denied")

		err := storage.NewRepository(cache, remote, nil).Put(ctx, scope, storage.KindSettings, []byte(`after`))
		assert.ErrorContains(t, err, "permission denied")
		assert.ErrorIs(t, err, storage.ErrRemote)

		got, err := cache.Get(ctx, scope, storage.KindSettings)
		require.NoError(t, err)
		assert.Equal(t, `before`, string(got))
	})
}

func TestRepository_Subscribe(t *testing.T) {
	ctx := context.Background()
	cache := newMem()
	remote := watchBackend{memBackend: newMem()}
	remote.pushes = make(chan []byte)

	repo := storage.NewRepository(cache, remote, nil)

	got := make(chan []byte, 2)
	unsubscribe, err := repo.Subscribe(ctx, scope, storage.KindDeliveryLogs, func(p []byte) { got <- p })
	require.NoError(t, err)

	remote.pushes <- []byte(`[1]`)

	select {
	case p := <-got:
		assert.Equal(t, `[1]`, string(p))
	case <-time.After(time.Second):
		t.Fatal("no push delivered")
	}

	cached, err := cache.Get(ctx, scope, storage.KindDeliveryLogs)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(cached))

	unsubscribe()

	select {
	case remote.pushes <- []byte(`[2]`):
		t.Fatal("watch still running after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

type item struct {
	Name string `json:"name"`
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(newMem(), nil, nil)
	col := storage.NewCollection[item](repo, storage.KindExpenses)

	items, err := col.Load(ctx, scope)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, col.Save(ctx, scope, nil))

	raw, err := repo.Get(ctx, scope, storage.KindExpenses)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	require.NoError(t, col.Save(ctx, scope, []item{{Name: "fuel"}}))

	items, err = col.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "fuel"}}, items)
}

func TestDocument(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(newMem(), nil, nil)
	doc := storage.NewDocument[item](repo, storage.KindSettings)

	_, err := doc.Load(ctx, scope)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, doc.Save(ctx, scope, item{Name: "cfg"}))

	got, err := doc.Load(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "cfg", got.Name)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "delivery-logs", storage.KindDeliveryLogs.CacheKey())
	assert.Equal(t, "delivery-expenses", storage.KindExpenses.CacheKey())
	assert.Equal(t, "payment-config", storage.KindSettings.CacheKey())

	k, err := storage.ParseKind("delivery-logs")
	require.NoError(t, err)
	assert.Equal(t, storage.KindDeliveryLogs, k)

	k, err = storage.ParseKind("expenses")
	require.NoError(t, err)
	assert.Equal(t, storage.KindExpenses, k)

	_, err = storage.ParseKind("invoices")
	assert.Error(t, err)
}
