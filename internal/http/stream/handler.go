// Package stream pushes document changes to clients as server-sent events.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
)

const keepAlive = 25 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context, scope string, kind storage.Kind, fn func(payload []byte)) (func(), error)
}

type Handler struct {
	store  Subscriber
	logger *zap.Logger
}

func NewHandler(store Subscriber, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{kind}", h.stream)
}

// stream sends the whole document on every change. A removed document is sent
// as null.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	kind, err := storage.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	ctx, cancel := context.WithCancel(r.Context())
	updates := make(chan []byte, 8)

	unsubscribe, err := h.store.Subscribe(ctx, scope, kind, func(payload []byte) {
		select {
		case updates <- payload:
		case <-ctx.Done():
		}
	})
	if err != nil {
		cancel()

		if errors.Is(err, storage.ErrWatchUnsupported) {
			http.Error(w, err.Error(), http.StatusNotImplemented)
			return
		}

		h.logger.Error("subscribe failed", zap.String("kind", string(kind)), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	defer unsubscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-updates:
			if payload == nil {
				payload = []byte("null")
			}

			// SSE data may not span lines.
			var compact bytes.Buffer
			if err := json.Compact(&compact, payload); err == nil {
				payload = compact.Bytes()
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, payload); err != nil {
				h.logger.Debug("client gone", zap.Error(err))
				return
			}

			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
