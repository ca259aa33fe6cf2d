package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/settings"
)

type Handler struct {
	svc    *settings.Service
	logger *zap.Logger
}

func NewHandler(svc *settings.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rate", h.get)
	r.Put("/rate", h.put)
	r.Get("/presets", h.presets)
	r.Post("/presets/apply", h.applyPreset)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	scope, _ := auth.ScopeFrom(r.Context())

	cfg, err := h.svc.Get(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, cfg)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var cfg rate.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	if err := h.svc.Save(r.Context(), scope, cfg); err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, cfg)
}

func (h *Handler) presets(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, h.logger, http.StatusOK, rate.Presets())
}

type applyPresetRequest struct {
	Name string `json:"name"`
}

func (h *Handler) applyPreset(w http.ResponseWriter, r *http.Request) {
	var req applyPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	cfg, err := h.svc.ApplyPreset(r.Context(), scope, req.Name)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, cfg)
}
