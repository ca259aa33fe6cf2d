package workday

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
	"github.com/MrJamesThe3rd/stoptracker/internal/http/render"
	"github.com/MrJamesThe3rd/stoptracker/internal/importer"
	"github.com/MrJamesThe3rd/stoptracker/internal/settings"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type Handler struct {
	days     *workday.Service
	settings *settings.Service
	importer *importer.Service
	logger   *zap.Logger
}

func NewHandler(daySvc *workday.Service, settingsSvc *settings.Service, importSvc *importer.Service, logger *zap.Logger) *Handler {
	return &Handler{days: daySvc, settings: settingsSvc, importer: importSvc, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/{id}", h.delete)
	r.Post("/import", h.importCSV)
	r.Post("/import/confirm", h.confirmImport)
}

type createParamsDTO struct {
	Date  *civil.Date     `json:"date,omitempty"`
	Stops *int            `json:"stops"`
	Extra decimal.Decimal `json:"extra"`
	Notes string          `json:"notes,omitempty"`
}

func (d createParamsDTO) params() workday.CreateParams {
	p := workday.CreateParams{Stops: d.Stops, Extra: d.Extra, Notes: d.Notes}
	if d.Date != nil {
		p.Date = *d.Date
	}

	return p
}

func toParamsDTO(p workday.CreateParams) createParamsDTO {
	return createParamsDTO{Date: &p.Date, Stops: p.Stops, Extra: p.Extra, Notes: p.Notes}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createParamsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	cfg, err := h.settings.Get(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	rec, err := h.days.Add(r.Context(), scope, cfg, req.params())
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusCreated, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := workday.ListOptions{
		SortBy: workday.SortField(q.Get("sort")),
		Order:  workday.Order(q.Get("order")),
	}

	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.Page = n
		}
	}

	if s := q.Get("per_page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			opts.PerPage = n
		}
	}

	scope, _ := auth.ScopeFrom(r.Context())

	page, err := h.days.List(r.Context(), scope, opts)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusOK, page)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	if err := h.days.Delete(r.Context(), scope, id); err != nil {
		render.Error(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importSuccessResponse struct {
	Imported int              `json:"imported"`
	Records  []workday.Record `json:"records"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing workday.Record  `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importer.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scope, _ := auth.ScopeFrom(r.Context())

	cfg, err := h.settings.Get(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	result, err := h.days.Import(r.Context(), scope, cfg, params)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: c.Existing,
			})
		}

		render.JSON(w, h.logger, http.StatusConflict, resp)

		return
	}

	render.JSON(w, h.logger, http.StatusCreated, toSuccessResponse(result.Imported))
}

// confirmImport stores rows the client chose to keep after a conflict.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]workday.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, p.params())
	}

	scope, _ := auth.ScopeFrom(r.Context())

	cfg, err := h.settings.Get(r.Context(), scope)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	records, err := h.days.AddBatch(r.Context(), scope, cfg, params)
	if err != nil {
		render.Error(w, h.logger, err)
		return
	}

	render.JSON(w, h.logger, http.StatusCreated, toSuccessResponse(records))
}

func toSuccessResponse(records []workday.Record) importSuccessResponse {
	if records == nil {
		records = []workday.Record{}
	}

	return importSuccessResponse{Imported: len(records), Records: records}
}

