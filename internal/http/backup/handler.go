package backup

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
)

const maxBackupSize = 32 << 20

type Handler struct {
	svc    *backup.Service
	logger *zap.Logger
}

func NewHandler(svc *backup.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Post("/restore", h.restore)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	scope, _ := auth.ScopeFrom(r.Context())

	snap, err := h.svc.Create(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"stoptracker-backup-%s.json\"", snap.Timestamp.Format("2006-01-02")))

	if err := backup.Encode(w, snap); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

type restoreResponse struct {
	Logs     int `json:"logs"`
	Expenses int `json:"expenses"`
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	snap, err := backup.Decode(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	if err := h.svc.Restore(r.Context(), scope, *snap); err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, restoreResponse{Logs: len(snap.Logs), Expenses: len(snap.Expenses)})
}
