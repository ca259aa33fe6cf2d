package expense

import (
	"encoding/json"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
)

type Handler struct {
	svc    *expense.Service
	logger *zap.Logger
}

func NewHandler(svc *expense.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/categories", h.categories)
	r.Delete("/{id}", h.delete)
}

type createExpenseRequest struct {
	Date        *civil.Date      `json:"date,omitempty"`
	Category    expense.Category `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := expense.CreateParams{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if req.Date != nil {
		params.Date = *req.Date
	}

	scope, _ := auth.ScopeFrom(r.Context())

	rec, err := h.svc.Add(r.Context(), scope, params)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusCreated, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.svc.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, records)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.svc.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, expense.Summarize(records))
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, h.logger, http.StatusOK, expense.Categories())
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	if err := h.svc.Delete(r.Context(), scope, id); err != nil {
		render.Error(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
