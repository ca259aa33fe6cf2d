package reconcile_test

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/reconcile"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

func rec(date string, stops int, extra string) workday.Record {
	e := decimal.RequireFromString(extra)

	return workday.Record{
		Date:  day(date),
		Stops: stops,
		Extra: e,
		Total: rate.DayTotal(stops, e, rate.DefaultConfig()),
	}
}

func TestReconcile_Example(t *testing.T) {
	records := []workday.Record{
		rec("2024-01-03", 130, "5"),
		rec("2024-01-01", 90, "0"),
	}

	assert.True(t, records[1].Total.Equal(decimal.RequireFromString("178.20")))
	assert.True(t, records[0].Total.Equal(decimal.RequireFromString("252.40")))

	got := reconcile.Reconcile(records, day("2024-01-01"), day("2024-01-03"), 200)

	assert.Equal(t, 220, got.AppTotal)
	assert.Equal(t, 20, got.Difference)
	assert.Equal(t, reconcile.StatusOver, got.Status)
	require.NotNil(t, got.Accuracy)
	assert.InDelta(t, 90.909, *got.Accuracy, 0.001)
	assert.True(t, got.AppEarnings.Equal(decimal.RequireFromString("430.60")), "got %s", got.AppEarnings)

	require.Len(t, got.Daily, 2)
	assert.Equal(t, day("2024-01-01"), got.Daily[0].Date)
	assert.Equal(t, day("2024-01-03"), got.Daily[1].Date)
}

func TestReconcile(t *testing.T) {
	records := []workday.Record{
		rec("2024-01-31", 100, "0"),
		rec("2024-02-01", 80, "0"),
		rec("2024-02-15", 120, "0"),
		rec("2024-02-29", 60, "0"),
		rec("2024-03-01", 110, "0"),
	}

	type args struct {
		records  []workday.Record
		start    string
		end      string
		external int
	}

	type testCase struct {
		name         string
		args         args
		wantApp      int
		wantDiff     int
		wantStatus   reconcile.Status
		wantAccuracy *float64
		wantDays     int
	}

	hundred := 100.0

	tests := []testCase{
		{
			name:         "InclusiveBounds",
			args:         args{records: records, start: "2024-02-01", end: "2024-02-29", external: 260},
			wantApp:      260,
			wantDiff:     0,
			wantStatus:   reconcile.StatusMatch,
			wantAccuracy: &hundred,
			wantDays:     3,
		},
		{
			name:       "Under",
			args:       args{records: records, start: "2024-02-15", end: "2024-02-15", external: 150},
			wantApp:    120,
			wantDiff:   -30,
			wantStatus: reconcile.StatusUnder,
			wantDays:   1,
		},
		{
			name:       "EmptyRecords",
			args:       args{records: nil, start: "2024-02-01", end: "2024-02-29", external: 75},
			wantApp:    0,
			wantDiff:   -75,
			wantStatus: reconcile.StatusUnder,
			wantDays:   0,
		},
		{
			name:       "BothZero",
			args:       args{records: records, start: "2025-01-01", end: "2025-01-31", external: 0},
			wantApp:    0,
			wantDiff:   0,
			wantStatus: reconcile.StatusMatch,
			wantDays:   0,
		},
		{
			name:       "ReversedRange",
			args:       args{records: records, start: "2024-03-01", end: "2024-01-01", external: 10},
			wantApp:    0,
			wantDiff:   -10,
			wantStatus: reconcile.StatusUnder,
			wantDays:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile.Reconcile(tt.args.records, day(tt.args.start), day(tt.args.end), tt.args.external)

			assert.Equal(t, tt.wantApp, got.AppTotal)
			assert.Equal(t, tt.wantDiff, got.Difference)
			assert.Equal(t, got.AppTotal-tt.args.external, got.Difference)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Len(t, got.Daily, tt.wantDays)

			if tt.wantAccuracy != nil {
				require.NotNil(t, got.Accuracy)
				assert.InDelta(t, *tt.wantAccuracy, *got.Accuracy, 1e-9)
			}
		})
	}
}

func TestReconcile_AccuracyGuard(t *testing.T) {
	got := reconcile.Reconcile(nil, day("2024-01-01"), day("2024-01-31"), 0)
	assert.Nil(t, got.Accuracy)

	got = reconcile.Reconcile(nil, day("2024-01-01"), day("2024-01-31"), 40)
	require.NotNil(t, got.Accuracy)
	assert.Zero(t, *got.Accuracy)
}

func TestReconcile_InvoiceAmount(t *testing.T) {
	records := []workday.Record{rec("2024-01-01", 90, "0")}

	got := reconcile.Reconcile(records, day("2024-01-01"), day("2024-01-07"), 90,
		reconcile.WithInvoiceAmount(decimal.RequireFromString("170")))

	require.NotNil(t, got.InvoiceAmount)
	require.NotNil(t, got.EarningsDifference)
	assert.True(t, got.EarningsDifference.Equal(decimal.RequireFromString("8.20")), "got %s", got.EarningsDifference)

	plain := reconcile.Reconcile(records, day("2024-01-01"), day("2024-01-07"), 90)
	assert.Nil(t, plain.InvoiceAmount)
	assert.Nil(t, plain.EarningsDifference)
}
