package view_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/cmd/tui/internal/view"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestTimeframe_Range(t *testing.T) {
	type args struct {
		frame view.Timeframe
		today civil.Date
	}

	type testCase struct {
		name      string
		args      args
		wantStart civil.Date
		wantEnd   civil.Date
	}

	tests := []testCase{
		{
			name:      "this week from a wednesday",
			args:      args{frame: view.TimeframeThisWeek, today: date(2024, 5, 15)},
			wantStart: date(2024, 5, 13),
			wantEnd:   date(2024, 5, 15),
		},
		{
			name:      "this week from a sunday",
			args:      args{frame: view.TimeframeThisWeek, today: date(2024, 5, 19)},
			wantStart: date(2024, 5, 13),
			wantEnd:   date(2024, 5, 19),
		},
		{
			name:      "last week",
			args:      args{frame: view.TimeframeLastWeek, today: date(2024, 5, 15)},
			wantStart: date(2024, 5, 6),
			wantEnd:   date(2024, 5, 12),
		},
		{
			name:      "this month",
			args:      args{frame: view.TimeframeThisMonth, today: date(2024, 5, 15)},
			wantStart: date(2024, 5, 1),
			wantEnd:   date(2024, 5, 15),
		},
		{
			name:      "last month across a year boundary",
			args:      args{frame: view.TimeframeLastMonth, today: date(2024, 1, 10)},
			wantStart: date(2023, 12, 1),
			wantEnd:   date(2023, 12, 31),
		},
		{
			name:      "last month in a leap year",
			args:      args{frame: view.TimeframeLastMonth, today: date(2024, 3, 31)},
			wantStart: date(2024, 2, 1),
			wantEnd:   date(2024, 2, 29),
		},
		{
			name: "all time is unbounded",
			args: args{frame: view.TimeframeAll, today: date(2024, 5, 15)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.args.frame.Range(tt.args.today)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTimeframeSelectedMsg_Contains(t *testing.T) {
	sel := view.TimeframeSelectedMsg{Start: date(2024, 5, 6), End: date(2024, 5, 12)}

	assert.True(t, sel.Contains(date(2024, 5, 6)))
	assert.True(t, sel.Contains(date(2024, 5, 12)))
	assert.False(t, sel.Contains(date(2024, 5, 5)))
	assert.False(t, sel.Contains(date(2024, 5, 13)))

	all := view.TimeframeSelectedMsg{All: true}
	assert.True(t, all.Contains(date(1999, 1, 1)))
	assert.Equal(t, "all time", all.Describe("02/01/2006"))
	assert.Equal(t, "06/05/2024 to 12/05/2024", sel.Describe("02/01/2006"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    civil.Date
		wantErr bool
	}{
		{name: "configured layout", input: "15/05/2024", want: date(2024, 5, 15)},
		{name: "iso fallback", input: "2024-05-15", want: date(2024, 5, 15)},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.ParseDate(tt.input, "02/01/2006")
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "232.60", view.FormatMoney(decimal.RequireFromString("232.6")))
	assert.Equal(t, "0.00", view.FormatMoney(decimal.Zero))
}
