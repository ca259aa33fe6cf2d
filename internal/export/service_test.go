package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type stubSource struct {
	days     []workday.Record
	expenses []expense.Record
	err      error
}

func (s stubSource) Days() export.Days         { return daysFunc(s.allDays) }
func (s stubSource) Expenses() export.Expenses { return expensesFunc(s.allExpenses) }

func (s stubSource) allDays(context.Context, string) ([]workday.Record, error) {
	return s.days, s.err
}

func (s stubSource) allExpenses(context.Context, string) ([]expense.Record, error) {
	return s.expenses, s.err
}

func (s stubSource) Create(context.Context, string) (*backup.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &backup.Snapshot{
		Logs:      s.days,
		Expenses:  s.expenses,
		Settings:  rate.DefaultConfig(),
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

type daysFunc func(context.Context, string) ([]workday.Record, error)

func (f daysFunc) All(ctx context.Context, scope string) ([]workday.Record, error) {
	return f(ctx, scope)
}

type expensesFunc func(context.Context, string) ([]expense.Record, error)

func (f expensesFunc) All(ctx context.Context, scope string) ([]expense.Record, error) {
	return f(ctx, scope)
}

func newService(src stubSource, layout string) *export.Service {
	return export.NewService(src.Days(), src.Expenses(), src, layout)
}

func sample() stubSource {
	cfg := rate.DefaultConfig()

	return stubSource{
		days: []workday.Record{
			{
				Date:  civil.Date{Year: 2024, Month: time.January, Day: 15},
				Stops: 90,
				Extra: decimal.Zero,
				Total: rate.ComputeTotal(90, cfg),
			},
			{
				Date:  civil.Date{Year: 2024, Month: time.January, Day: 16},
				Stops: 120,
				Extra: decimal.NewFromInt(5),
				Total: rate.DayTotal(120, decimal.NewFromInt(5), cfg),
			},
		},
		expenses: []expense.Record{
			{
				Date:        civil.Date{Year: 2024, Month: time.January, Day: 20},
				Category:    expense.CategoryFuel,
				Amount:      decimal.RequireFromString("45.5"),
				Description: "diesel, full tank",
			},
		},
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 2, 3, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "stops-data-2024-02-03.csv", export.Filename(now))
}

func TestService_WriteDays(t *testing.T) {
	type args struct {
		layout  string
		records []workday.Record
	}

	type testCase struct {
		name string
		args args
		want string
	}

	tests := []testCase{
		{
			name: "DefaultLayout",
			args: args{records: sample().days},
			want: "Date,Stops,Extra,Total\n15/01/2024,90,0,178.2\n16/01/2024,120,5,237.6\n",
		},
		{
			name: "ISOLayout",
			args: args{layout: time.DateOnly, records: sample().days[:1]},
			want: "Date,Stops,Extra,Total\n2024-01-15,90,0,178.2\n",
		},
		{
			name: "Empty",
			args: args{},
			want: "Date,Stops,Extra,Total\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := newService(stubSource{}, tt.args.layout).WriteDays(&buf, tt.args.records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestService_WriteExpenses(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, newService(stubSource{}, "").WriteExpenses(&buf, sample().expenses))
	assert.Equal(t, "Date,Category,Amount,Description\n20/01/2024,Fuel,45.50,\"diesel, full tank\"\n", buf.String())
}

func TestService_WriteBundle(t *testing.T) {
	src := sample()

	var buf bytes.Buffer
	require.NoError(t, newService(src, "").WriteBundle(context.Background(), &buf, "s1"))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := make(map[string]string)

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		contents[f.Name] = string(data)
	}

	require.Len(t, contents, 3)
	assert.Contains(t, contents["stops.csv"], "16/01/2024,120,5,237.6")
	assert.Contains(t, contents["expenses.csv"], "Fuel,45.50")

	snap, err := backup.Decode(bytes.NewBufferString(contents["backup.json"]))
	require.NoError(t, err)
	assert.Len(t, snap.Logs, 2)
}

func TestService_WriteBundle_Error(t *testing.T) {
	err := newService(stubSource{err: assert.AnError}, "").WriteBundle(context.Background(), io.Discard, "s1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestService_ToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)

	paths, err := newService(sample(), "").ToDir(context.Background(), "s1", dir, now)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "stops-data-2024-02-03.csv"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "15/01/2024,90,0,178.2")

	_, err = newService(stubSource{err: assert.AnError}, "").ToDir(context.Background(), "s1", dir, now)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestService_ToDir_Between(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	day := civil.Date{Year: 2024, Month: time.January, Day: 16}

	paths, err := newService(sample(), "").ToDir(context.Background(), "s1", dir, now, export.Between(day, civil.Date{}))
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "15/01/2024")
	assert.Contains(t, string(data), "16/01/2024,120")

	data, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "diesel")
}
