// Package aggregate summarises day records for display. Every function is pure
// and leaves its input untouched.
package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

// Period identifies the group a record falls into.
type Period struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Start civil.Date `json:"start"`

	rank int
}

// PeriodFunc maps a calendar date to its period.
type PeriodFunc func(civil.Date) Period

var ErrUnknownPeriod = errors.New("unknown period")

// PeriodByName resolves "week", "month" or "weekday".
func PeriodByName(name string) (PeriodFunc, error) {
	switch name {
	case "week", "":
		return ByWeek, nil
	case "month":
		return ByMonth, nil
	case "weekday":
		return ByWeekday, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// Summary is the reduction of every record sharing a Period.
type Summary struct {
	Period

	TotalStops    int             `json:"totalStops"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	AverageStops  float64         `json:"averageStops"`
	Count         int             `json:"count"`
	DaysWorked    int             `json:"daysWorked"`
}

// ISOWeek returns the ISO 8601 week-year and week of d, evaluated in UTC so
// the result never depends on the local zone.
func ISOWeek(d civil.Date) (year, week int) {
	return d.In(time.UTC).ISOWeek()
}

func isoWeekday(d civil.Date) int {
	wd := int(d.In(time.UTC).Weekday())
	if wd == 0 {
		return 7
	}

	return wd
}

// ByWeek groups by ISO week. The key carries the week-year so that late
// December and early January never collide.
func ByWeek(d civil.Date) Period {
	year, week := ISOWeek(d)
	start := d.AddDays(1 - isoWeekday(d))

	return Period{
		Key:   fmt.Sprintf("%04d-W%02d", year, week),
		Label: "Week of " + start.In(time.UTC).Format("2 Jan 2006"),
		Start: start,
	}
}

func ByMonth(d civil.Date) Period {
	start := civil.Date{Year: d.Year, Month: d.Month, Day: 1}

	return Period{
		Key:   fmt.Sprintf("%04d-%02d", d.Year, int(d.Month)),
		Label: fmt.Sprintf("%s %d", d.Month, d.Year),
		Start: start,
	}
}

// ByWeekday groups by day of the week. Weekday periods have no start date and
// are ordered Monday first.
func ByWeekday(d civil.Date) Period {
	name := d.In(time.UTC).Weekday().String()

	return Period{Key: name, Label: name, rank: isoWeekday(d)}
}

func GroupByPeriod(records []workday.Record, fn PeriodFunc) map[string]Summary {
	groups := make(map[string]*Summary)
	days := make(map[string]map[civil.Date]struct{})

	for _, r := range records {
		p := fn(r.Date)

		s, ok := groups[p.Key]
		if !ok {
			s = &Summary{Period: p, TotalEarnings: decimal.Zero}
			groups[p.Key] = s
			days[p.Key] = make(map[civil.Date]struct{})
		}

		s.TotalStops += r.Stops
		s.TotalEarnings = s.TotalEarnings.Add(r.Total)
		s.Count++
		days[p.Key][r.Date] = struct{}{}
	}

	out := make(map[string]Summary, len(groups))

	for key, s := range groups {
		s.DaysWorked = len(days[key])
		if s.Count > 0 {
			s.AverageStops = float64(s.TotalStops) / float64(s.Count)
		}

		out[key] = *s
	}

	return out
}

// Sorted orders summaries newest period first. Weekday summaries, which have
// no start date, come out Monday to Sunday.
func Sorted(groups map[string]Summary) []Summary {
	out := make([]Summary, 0, len(groups))
	for _, s := range groups {
		out = append(out, s)
	}

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.Start.Compare(a.Start); c != 0 {
			return c
		}

		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}

		return cmp.Compare(a.Key, b.Key)
	})

	return out
}

// Trend returns the n most recent periods oldest first, for charting.
func Trend(records []workday.Record, fn PeriodFunc, n int) []Summary {
	sorted := Sorted(GroupByPeriod(records, fn))
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	slices.Reverse(sorted)

	return sorted
}
