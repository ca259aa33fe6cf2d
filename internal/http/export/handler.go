package export

import (
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type Handler struct {
	svc      *export.Service
	days     *workday.Service
	expenses *expense.Service
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(svc *export.Service, days *workday.Service, expenses *expense.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, days: days, expenses: expenses, logger: logger, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/workdays.csv", h.workdays)
	r.Get("/expenses.csv", h.expenseCSV)
	r.Get("/bundle.zip", h.bundle)
}

// dateRange reads the optional start and end query parameters.
func dateRange(r *http.Request) (start, end civil.Date, err error) {
	if s := r.URL.Query().Get("start"); s != "" {
		if start, err = civil.ParseDate(s); err != nil {
			return start, end, fmt.Errorf("invalid start date: %w", err)
		}
	}

	if s := r.URL.Query().Get("end"); s != "" {
		if end, err = civil.ParseDate(s); err != nil {
			return start, end, fmt.Errorf("invalid end date: %w", err)
		}
	}

	return start, end, nil
}

func inRange(d, start, end civil.Date) bool {
	if start.IsValid() && d.Before(start) {
		return false
	}

	return !end.IsValid() || !d.After(end)
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *Handler) workdays(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.days.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	filtered := make([]workday.Record, 0, len(records))
	for _, rec := range records {
		if inRange(rec.Date, start, end) {
			filtered = append(filtered, rec)
		}
	}

	attachment(w, "text/csv; charset=utf-8", export.Filename(h.now()))

	if err := h.svc.WriteDays(w, filtered); err != nil {
		h.logger.Error("failed to write csv", zap.Error(err))
	}
}

func (h *Handler) expenseCSV(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.expenses.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	filtered := make([]expense.Record, 0, len(records))
	for _, rec := range records {
		if inRange(rec.Date, start, end) {
			filtered = append(filtered, rec)
		}
	}

	attachment(w, "text/csv; charset=utf-8", "expenses-"+h.now().Format(time.DateOnly)+".csv")

	if err := h.svc.WriteExpenses(w, filtered); err != nil {
		h.logger.Error("failed to write csv", zap.Error(err))
	}
}

func (h *Handler) bundle(w http.ResponseWriter, r *http.Request) {
	scope, _ := auth.ScopeFrom(r.Context())

	attachment(w, "application/zip", "stoptracker-"+h.now().Format("20060102")+".zip")

	if err := h.svc.WriteBundle(r.Context(), w, scope); err != nil {
		h.logger.Error("failed to create zip", zap.Error(err))
	}
}
