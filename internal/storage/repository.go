package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Repository pairs a local cache with an optional remote store. Writes go to
// the remote first and are mirrored into the cache only once the remote has
// accepted them. Concurrent writers are not reconciled: the last write wins.
type Repository struct {
	cache  Backend
	remote Backend
	logger *zap.Logger
}

// NewRepository returns a Repository. remote may be nil, in which case the
// cache is the only store.
func NewRepository(cache, remote Backend, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Repository{cache: cache, remote: remote, logger: logger}
}

// Get reads the cache first. When a remote is configured its copy wins and is
// written back to the cache; if the remote cannot be reached the cached copy
// is served instead.
func (r *Repository) Get(ctx context.Context, scope string, kind Kind) ([]byte, error) {
	cached, cacheErr := r.cache.Get(ctx, scope, kind)
	if cacheErr != nil && !errors.Is(cacheErr, ErrNotFound) {
		r.logger.Warn("cache read failed", zap.String("scope", scope), zap.String("kind", string(kind)), zap.Error(cacheErr))
	}

	if r.remote == nil {
		if cacheErr != nil {
			return nil, cacheErr
		}

		return cached, nil
	}

	payload, err := r.remote.Get(ctx, scope, kind)
	switch {
	case err == nil:
		r.mirror(ctx, scope, kind, payload)
		return payload, nil
	case errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	case cacheErr == nil:
		r.logger.Warn("remote read failed, serving cached copy",
			zap.String("scope", scope), zap.String("kind", string(kind)), zap.Error(err))

		return cached, nil
	}

	return nil, fmt.Errorf("reading %s: %w: %w", kind, ErrRemote, err)
}

// Put stores payload remotely and then in the cache. A remote failure leaves
// the cache as it was.
func (r *Repository) Put(ctx context.Context, scope string, kind Kind, payload []byte) error {
	if r.remote != nil {
		if err := r.remote.Put(ctx, scope, kind, payload); err != nil {
			return fmt.Errorf("writing %s: %w: %w", kind, ErrRemote, err)
		}

		r.mirror(ctx, scope, kind, payload)

		return nil
	}

	if err := r.cache.Put(ctx, scope, kind, payload); err != nil {
		return fmt.Errorf("writing %s to cache: %w", kind, err)
	}

	return nil
}

// Subscribe calls fn with the full payload on every remote change until the
// returned function is called. Each push is mirrored into the cache first.
func (r *Repository) Subscribe(ctx context.Context, scope string, kind Kind, fn func(payload []byte)) (func(), error) {
	w, ok := r.remote.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		err := w.Watch(ctx, scope, kind, func(payload []byte) {
			if payload != nil {
				r.mirror(ctx, scope, kind, payload)
			}

			fn(payload)
		})
		if err != nil && ctx.Err() == nil {
			r.logger.Error("subscription ended", zap.String("scope", scope), zap.String("kind", string(kind)), zap.Error(err))
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func (r *Repository) mirror(ctx context.Context, scope string, kind Kind, payload []byte) {
	if err := r.cache.Put(ctx, scope, kind, payload); err != nil {
		r.logger.Warn("cache write failed", zap.String("scope", scope), zap.String("kind", string(kind)), zap.Error(err))
	}
}
