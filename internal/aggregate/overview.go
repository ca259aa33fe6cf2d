package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

const recentDays = 7

// Stats is the dashboard overview. Pointer fields are nil when there is no
// data to compute them from.
type Stats struct {
	TotalEarnings decimal.Decimal  `json:"totalEarnings"`
	TotalStops    int              `json:"totalStops"`
	TotalDays     int              `json:"totalDays"`
	AverageStops  *float64         `json:"averageStops"`
	AveragePay    *decimal.Decimal `json:"averagePay"`
	BestDay       *workday.Record  `json:"bestDay"`
	Recent        []workday.Record `json:"recent"`
}

func Overview(records []workday.Record) Stats {
	stats := Stats{TotalEarnings: decimal.Zero, Recent: []workday.Record{}}

	if len(records) == 0 {
		return stats
	}

	var best workday.Record

	for i, r := range records {
		stats.TotalEarnings = stats.TotalEarnings.Add(r.Total)
		stats.TotalStops += r.Stops

		if i == 0 || r.Stops > best.Stops {
			best = r
		}
	}

	stats.TotalDays = len(records)
	stats.BestDay = &best

	avg := float64(stats.TotalStops) / float64(stats.TotalDays)
	stats.AverageStops = &avg

	pay := stats.TotalEarnings.Div(decimal.NewFromInt(int64(stats.TotalDays))).Round(2)
	stats.AveragePay = &pay

	byDate := slices.Clone(records)
	slices.SortStableFunc(byDate, func(a, b workday.Record) int { return a.Date.Compare(b.Date) })
	stats.Recent = byDate[max(len(byDate)-recentDays, 0):]

	return stats
}
