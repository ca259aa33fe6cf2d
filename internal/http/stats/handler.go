package stats

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/aggregate"
	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
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
	r.Get("/periods", h.periods)
	r.Get("/trend", h.trend)
	r.Get("/distribution", h.distribution)
	r.Get("/overview", h.overview)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) ([]workday.Record, bool) {
	scope, _ := auth.ScopeFrom(r.Context())

	records, err := h.days.All(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return nil, false
	}

	return records, true
}

func (h *Handler) periods(w http.ResponseWriter, r *http.Request) {
	fn, err := aggregate.PeriodByName(r.URL.Query().Get("by"))
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	records, ok := h.records(w, r)
	if !ok {
		return
	}

	render.JSON(w, h.logger, http.StatusOK, aggregate.Sorted(aggregate.GroupByPeriod(records, fn)))
}

// trend returns the last n periods (default 8) oldest first.
func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	fn, err := aggregate.PeriodByName(r.URL.Query().Get("by"))
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	n := 8
	if s := r.URL.Query().Get("n"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			n = v
		}
	}

	records, ok := h.records(w, r)
	if !ok {
		return
	}

	render.JSON(w, h.logger, http.StatusOK, aggregate.Trend(records, fn, n))
}

func (h *Handler) distribution(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	render.JSON(w, h.logger, http.StatusOK, aggregate.Bucketize(records))
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	render.JSON(w, h.logger, http.StatusOK, aggregate.Overview(records))
}
