// Package storage keeps each scope's collections as whole documents in a
// local cache and, optionally, a remote store.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrWatchUnsupported = errors.New("remote store does not support subscriptions")
	// ErrRemote wraps failures reported by the remote backend.
	ErrRemote = errors.New("remote store failed")
)

// Kind names one of the documents kept per scope.
type Kind string

const (
	KindDeliveryLogs Kind = "deliveryLogs"
	KindExpenses     Kind = "expenses"
	KindSettings     Kind = "settings"
)

func Kinds() []Kind {
	return []Kind{KindDeliveryLogs, KindExpenses, KindSettings}
}

// CacheKey is the fixed key the local cache stores a kind under.
func (k Kind) CacheKey() string {
	switch k {
	case KindDeliveryLogs:
		return "delivery-logs"
	case KindExpenses:
		return "delivery-expenses"
	case KindSettings:
		return "payment-config"
	}

	return string(k)
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s || k.CacheKey() == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("unknown document kind %q", s)
}

// Backend stores one opaque payload per (scope, kind). Put replaces the whole
// payload.
type Backend interface {
	Get(ctx context.Context, scope string, kind Kind) ([]byte, error)
	Put(ctx context.Context, scope string, kind Kind, payload []byte) error
}

// Watcher is implemented by backends that push changes. Watch delivers the
// current payload and then every change until ctx is done. A nil payload
// means the document no longer exists.
type Watcher interface {
	Watch(ctx context.Context, scope string, kind Kind, fn func(payload []byte)) error
}
