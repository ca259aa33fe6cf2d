// Package backup moves every document of a scope in and out of a single JSON
// snapshot.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

var ErrInvalidSnapshot = errors.New("invalid backup file")

type Snapshot struct {
	Logs      []workday.Record `json:"logs"`
	Expenses  []expense.Record `json:"expenses"`
	Settings  rate.Config      `json:"settings"`
	Timestamp time.Time        `json:"timestamp"`
}

type Days interface {
	All(ctx context.Context, scope string) ([]workday.Record, error)
	Replace(ctx context.Context, scope string, records []workday.Record) error
}

type Expenses interface {
	All(ctx context.Context, scope string) ([]expense.Record, error)
	Replace(ctx context.Context, scope string, records []expense.Record) error
}

type Settings interface {
	Get(ctx context.Context, scope string) (rate.Config, error)
	Save(ctx context.Context, scope string, cfg rate.Config) error
}

type Service struct {
	days     Days
	expenses Expenses
	settings Settings
	now      func() time.Time
}

func NewService(days Days, expenses Expenses, settings Settings) *Service {
	return &Service{days: days, expenses: expenses, settings: settings, now: time.Now}
}

func (s *Service) Create(ctx context.Context, scope string) (*Snapshot, error) {
	logs, err := s.days.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.All(ctx, scope)
	if err != nil {
		return nil, err
	}

	cfg, err := s.settings.Get(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Logs:      logs,
		Expenses:  expenses,
		Settings:  cfg,
		Timestamp: s.now().UTC(),
	}, nil
}

// Restore checks the whole snapshot before writing anything, then replaces
// settings, expenses and day records in that order.
func (s *Service) Restore(ctx context.Context, scope string, snap Snapshot) error {
	if err := snap.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	for _, r := range snap.Logs {
		if r.Stops < 0 {
			return fmt.Errorf("%w: day %s: %w", ErrInvalidSnapshot, r.Date, workday.ErrInvalidStops)
		}
	}

	for _, e := range snap.Expenses {
		if e.Amount.IsNegative() {
			return fmt.Errorf("%w: expense %s: %w", ErrInvalidSnapshot, e.Date, expense.ErrInvalidAmount)
		}
	}

	if err := s.settings.Save(ctx, scope, snap.Settings); err != nil {
		return err
	}

	if err := s.expenses.Replace(ctx, scope, nonNil(snap.Expenses)); err != nil {
		return err
	}

	return s.days.Replace(ctx, scope, nonNil(snap.Logs))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func Encode(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// Decode reads a snapshot. A file without a logs array is rejected and
// missing settings fall back to the default rate config.
func Decode(r io.Reader) (*Snapshot, error) {
	var raw struct {
		Snapshot
		Logs     *[]workday.Record `json:"logs"`
		Settings *rate.Config      `json:"settings"`
	}

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if raw.Logs == nil {
		return nil, fmt.Errorf("%w: missing logs", ErrInvalidSnapshot)
	}

	snap := raw.Snapshot
	snap.Logs = *raw.Logs

	snap.Settings = rate.DefaultConfig()
	if raw.Settings != nil {
		snap.Settings = *raw.Settings
	}

	return &snap, nil
}
