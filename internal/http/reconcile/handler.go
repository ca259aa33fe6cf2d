package reconcile

import (
	"encoding/json"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
	"github.com/MrJamesThe3rd/stoptracker/internal/reconcile"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type Handler struct {
	days   *workday.Service
	logger *zap.Logger
}

func NewHandler(days *workday.Service, logger *zap.Logger) *Handler {
	return &Handler{days: days, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.reconcile)
}

type reconcileRequest struct {
	Start         civil.Date       `json:"start"`
	End           civil.Date       `json:"end"`
	ExternalTotal *int             `json:"externalTotal"`
	InvoiceAmount *decimal.Decimal `json:"invoiceAmount,omitempty"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ExternalTotal == nil || *req.ExternalTotal < 0 {
		http.Error(w, "externalTotal must be a non-negative whole number", http.StatusBadRequest)
		return
	}

	if !req.Start.IsValid() || !req.End.IsValid() {
		http.Error(w, "start and end dates are required", http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.days.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	var opts []reconcile.Option
	if req.InvoiceAmount != nil {
		opts = append(opts, reconcile.WithInvoiceAmount(*req.InvoiceAmount))
	}

	render.JSON(w, h.logger, http.StatusOK, reconcile.Reconcile(records, req.Start, req.End, *req.ExternalTotal, opts...))
}
