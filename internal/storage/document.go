package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store is the part of Repository the typed adapters need.
type Store interface {
	Get(ctx context.Context, scope string, kind Kind) ([]byte, error)
	Put(ctx context.Context, scope string, kind Kind, payload []byte) error
	Subscribe(ctx context.Context, scope string, kind Kind, fn func(payload []byte)) (func(), error)
}

// Document stores a single JSON value of type T.
type Document[T any] struct {
	store Store
	kind  Kind
}

func NewDocument[T any](store Store, kind Kind) *Document[T] {
	return &Document[T]{store: store, kind: kind}
}

// Load returns ErrNotFound when nothing has been saved for scope.
func (d *Document[T]) Load(ctx context.Context, scope string) (T, error) {
	var v T

	payload, err := d.store.Get(ctx, scope, d.kind)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", d.kind, err)
	}

	return v, nil
}

func (d *Document[T]) Save(ctx context.Context, scope string, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", d.kind, err)
	}

	return d.store.Put(ctx, scope, d.kind, payload)
}

// Subscribe decodes every pushed payload. Undecodable pushes are skipped and
// removals arrive as the zero value.
func (d *Document[T]) Subscribe(ctx context.Context, scope string, fn func(T)) (func(), error) {
	return d.store.Subscribe(ctx, scope, d.kind, func(payload []byte) {
		var v T

		if payload != nil {
			if err := json.Unmarshal(payload, &v); err != nil {
				return
			}
		}

		fn(v)
	})
}

// Collection stores a JSON array of T. A missing document reads as empty.
type Collection[T any] struct {
	*Document[[]T]
}

func NewCollection[T any](store Store, kind Kind) *Collection[T] {
	return &Collection[T]{Document: NewDocument[[]T](store, kind)}
}

func (c *Collection[T]) Load(ctx context.Context, scope string) ([]T, error) {
	items, err := c.Document.Load(ctx, scope)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}

	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}

// Save writes an empty array rather than null for an empty collection.
func (c *Collection[T]) Save(ctx context.Context, scope string, items []T) error {
	if items == nil {
		items = []T{}
	}

	return c.Document.Save(ctx, scope, items)
}

func (c *Collection[T]) Subscribe(ctx context.Context, scope string, fn func([]T)) (func(), error) {
	return c.Document.Subscribe(ctx, scope, func(items []T) {
		if items == nil {
			items = []T{}
		}

		fn(items)
	})
}
