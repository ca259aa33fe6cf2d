package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

// DefaultDateLayout is the day/month/year layout used when none is configured.
const DefaultDateLayout = "02/01/2006"

type Days interface {
	All(ctx context.Context, scope string) ([]workday.Record, error)
}

type Expenses interface {
	All(ctx context.Context, scope string) ([]expense.Record, error)
}

type Snapshotter interface {
	Create(ctx context.Context, scope string) (*backup.Snapshot, error)
}

// Service writes day records and expenses as CSV.
type Service struct {
	days     Days
	expenses Expenses
	backups  Snapshotter
	layout   string
}

func NewService(days Days, expenses Expenses, backups Snapshotter, dateLayout string) *Service {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	return &Service{days: days, expenses: expenses, backups: backups, layout: dateLayout}
}

// Filename is the name offered for a day-record export made at now.
func Filename(now time.Time) string {
	return "stops-data-" + now.Format(time.DateOnly) + ".csv"
}

// WriteDays writes one row per record in the order given.
func (s *Service) WriteDays(w io.Writer, records []workday.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Stops", "Extra", "Total"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Date.In(time.UTC).Format(s.layout),
			strconv.Itoa(r.Stops),
			r.Extra.String(),
			r.Total.String(),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Date, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func (s *Service) WriteExpenses(w io.Writer, records []expense.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Category", "Amount", "Description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Date.In(time.UTC).Format(s.layout),
			string(r.Category),
			r.Amount.StringFixed(2),
			r.Description,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.Date, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteBundle writes a zip archive with both CSV files and a full backup.
func (s *Service) WriteBundle(ctx context.Context, w io.Writer, scope string) error {
	snap, err := s.backups.Create(ctx, scope)
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}

	zw := zip.NewWriter(w)

	entries := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"stops.csv", func(w io.Writer) error { return s.WriteDays(w, snap.Logs) }},
		{"expenses.csv", func(w io.Writer) error { return s.WriteExpenses(w, snap.Expenses) }},
		{"backup.json", func(w io.Writer) error { return backup.Encode(w, snap) }},
	}

	for _, e := range entries {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: snap.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("adding %s: %w", e.name, err)
		}

		if err := e.write(f); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}

// DirOption narrows what ToDir writes.
type DirOption func(*dirOptions)

type dirOptions struct {
	start, end civil.Date
}

// Between keeps only records dated within [start, end]. A zero bound is open.
func Between(start, end civil.Date) DirOption {
	return func(o *dirOptions) {
		o.start, o.end = start, end
	}
}

func (o dirOptions) keep(d civil.Date) bool {
	if o.start.IsValid() && d.Before(o.start) {
		return false
	}

	return !o.end.IsValid() || !d.After(o.end)
}

// ToDir writes the day-record and expense CSVs for scope into dir and returns
// the paths written.
func (s *Service) ToDir(ctx context.Context, scope, dir string, now time.Time, opts ...DirOption) ([]string, error) {
	var o dirOptions
	for _, opt := range opts {
		opt(&o)
	}

	allDays, err := s.days.All(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listing workdays: %w", err)
	}

	allExpenses, err := s.expenses.All(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	days := filter(allDays, func(r workday.Record) bool { return o.keep(r.Date) })
	expenses := filter(allExpenses, func(r expense.Record) bool { return o.keep(r.Date) })

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	files := []struct {
		path  string
		write func(io.Writer) error
	}{
		{filepath.Join(dir, Filename(now)), func(w io.Writer) error { return s.WriteDays(w, days) }},
		{filepath.Join(dir, "expenses-"+now.Format(time.DateOnly)+".csv"), func(w io.Writer) error { return s.WriteExpenses(w, expenses) }},
	}

	paths := make([]string, 0, len(files))

	for _, f := range files {
		if err := writeFile(f.path, f.write); err != nil {
			return nil, err
		}

		paths = append(paths, f.path)
	}

	return paths, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))

	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}

	return out
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return f.Close()
}
