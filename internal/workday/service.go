package workday

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=workday
type Repository interface {
	Load(ctx context.Context, scope string) ([]Record, error)
	Save(ctx context.Context, scope string, records []Record) error
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

type Option func(*Service)

// WithClock overrides the clock used for CreatedAt and the default date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewV7,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateParams is user input for a new day. Stops is a pointer so that a
// missing value can be told apart from zero.
type CreateParams struct {
	Date  civil.Date
	Stops *int
	Extra decimal.Decimal
	Notes string
}

func (p CreateParams) validate() error {
	if p.Stops == nil {
		return ErrMissingStops
	}

	if *p.Stops < 0 {
		return ErrInvalidStops
	}

	if p.Extra.IsNegative() {
		return ErrInvalidExtra
	}

	return nil
}

func (s *Service) All(ctx context.Context, scope string) ([]Record, error) {
	records, err := s.repo.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading workdays: %w", err)
	}

	return records, nil
}

// Add validates params, prices the day with cfg and stores it.
func (s *Service) Add(ctx context.Context, scope string, cfg rate.Config, params CreateParams) (*Record, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	existing, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	rec, err := s.newRecord(cfg, params)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, scope, append(slices.Clone(existing), rec)); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (s *Service) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	existing, err := s.All(ctx, scope)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(existing, func(r Record) bool { return r.ID == id })
	if idx < 0 {
		return ErrNotFound
	}

	return s.save(ctx, scope, slices.Delete(slices.Clone(existing), idx, idx+1))
}

// Replace swaps the whole collection, e.g. when restoring a backup.
func (s *Service) Replace(ctx context.Context, scope string, records []Record) error {
	for _, r := range records {
		if r.Stops < 0 {
			return fmt.Errorf("record %s: %w", r.ID, ErrInvalidStops)
		}
	}

	return s.save(ctx, scope, slices.Clone(records))
}

func (s *Service) List(ctx context.Context, scope string, opts ListOptions) (*Page, error) {
	records, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, compareBy(opts.SortBy, opts.Order))

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	page := max(opts.Page, 1)
	totalPages := (len(sorted) + perPage - 1) / perPage

	start := min((page-1)*perPage, len(sorted))
	end := min(start+perPage, len(sorted))

	return &Page{
		Records:    sorted[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      len(sorted),
		TotalPages: totalPages,
	}, nil
}

func compareBy(field SortField, order Order) func(a, b Record) int {
	return func(a, b Record) int {
		var c int

		switch field {
		case SortByStops:
			c = cmp.Compare(a.Stops, b.Stops)
		case SortByTotal:
			c = a.Total.Cmp(b.Total)
		default:
			c = a.Date.Compare(b.Date)
		}

		if order == OrderDesc {
			return -c
		}

		return c
	}
}

type ImportResult struct {
	Imported  []Record
	New       []CreateParams
	Conflicts []Conflict
}

// Conflict is an imported row whose date is already logged.
type Conflict struct {
	Incoming CreateParams
	Existing Record
}

// Import adds every row unless one of them falls on an already logged date,
// in which case nothing is written and the conflicts are returned instead.
func (s *Service) Import(ctx context.Context, scope string, cfg rate.Config, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	existing, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	byDate := make(map[civil.Date]Record, len(existing))
	for _, r := range existing {
		byDate[r.Date] = r
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		if r, found := byDate[p.Date]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: r})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	imported, err := s.addBatch(ctx, scope, cfg, existing, newParams)
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: imported}, nil
}

// AddBatch stores every row without checking for date conflicts.
func (s *Service) AddBatch(ctx context.Context, scope string, cfg rate.Config, params []CreateParams) ([]Record, error) {
	if len(params) == 0 {
		return nil, nil
	}

	existing, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	return s.addBatch(ctx, scope, cfg, existing, params)
}

func (s *Service) addBatch(ctx context.Context, scope string, cfg rate.Config, existing []Record, params []CreateParams) ([]Record, error) {
	created := make([]Record, 0, len(params))

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		rec, err := s.newRecord(cfg, p)
		if err != nil {
			return nil, err
		}

		created = append(created, rec)
	}

	if err := s.save(ctx, scope, append(slices.Clone(existing), created...)); err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) newRecord(cfg rate.Config, p CreateParams) (Record, error) {
	id, err := s.newID()
	if err != nil {
		return Record{}, fmt.Errorf("generating id: %w", err)
	}

	now := s.now()

	date := p.Date
	if date.IsZero() {
		date = civil.DateOf(now)
	}

	return Record{
		ID:        id,
		Date:      date,
		Stops:     *p.Stops,
		Extra:     p.Extra,
		Total:     rate.DayTotal(*p.Stops, p.Extra, cfg),
		Notes:     p.Notes,
		CreatedAt: now.UTC(),
	}, nil
}

// save keeps the stored collection ordered by date.
func (s *Service) save(ctx context.Context, scope string, records []Record) error {
	slices.SortStableFunc(records, func(a, b Record) int { return a.Date.Compare(b.Date) })

	if err := s.repo.Save(ctx, scope, records); err != nil {
		return fmt.Errorf("saving workdays: %w", err)
	}

	return nil
}
