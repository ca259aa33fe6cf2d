package expense

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	Load(ctx context.Context, scope string) ([]Record, error)
	Save(ctx context.Context, scope string, records []Record) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateParams is user input for a new expense. Amount is a pointer so that a
// missing value can be told apart from zero.
type CreateParams struct {
	Date        civil.Date
	Category    Category
	Amount      *decimal.Decimal
	Description string
}

func (s *Service) All(ctx context.Context, scope string) ([]Record, error) {
	records, err := s.repo.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading expenses: %w", err)
	}

	return records, nil
}

func (s *Service) Add(ctx context.Context, scope string, params CreateParams) (*Record, error) {
	category := Category(strings.TrimSpace(string(params.Category)))
	if category == "" {
		return nil, ErrMissingCategory
	}

	if params.Amount == nil {
		return nil, ErrMissingAmount
	}

	if params.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	existing, err := s.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}

	now := s.now()

	date := params.Date
	if date.IsZero() {
		date = civil.DateOf(now)
	}

	rec := Record{
		ID:          id,
		Date:        date,
		Category:    category,
		Amount:      *params.Amount,
		Description: params.Description,
		CreatedAt:   now.UTC(),
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

func (s *Service) Replace(ctx context.Context, scope string, records []Record) error {
	for _, r := range records {
		if r.Amount.IsNegative() {
			return fmt.Errorf("expense %s: %w", r.ID, ErrInvalidAmount)
		}
	}

	return s.save(ctx, scope, slices.Clone(records))
}

// Summarize totals expenses per category, largest total first.
func Summarize(records []Record) Summary {
	byCategory := make(map[Category]*CategoryTotal)
	total := decimal.Zero

	for _, r := range records {
		ct, ok := byCategory[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category, Total: decimal.Zero}
			byCategory[r.Category] = ct
		}

		ct.Count++
		ct.Total = ct.Total.Add(r.Amount)
		total = total.Add(r.Amount)
	}

	lines := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		lines = append(lines, *ct)
	}

	slices.SortFunc(lines, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}

		return strings.Compare(string(a.Category), string(b.Category))
	})

	return Summary{Categories: lines, Total: total}
}

// save keeps the stored collection newest first.
func (s *Service) save(ctx context.Context, scope string, records []Record) error {
	slices.SortStableFunc(records, func(a, b Record) int { return b.Date.Compare(a.Date) })

	if err := s.repo.Save(ctx, scope, records); err != nil {
		return fmt.Errorf("saving expenses: %w", err)
	}

	return nil
}
