// Package reconcile compares logged stops against the totals on an invoice.
package reconcile

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

type Status string

const (
	StatusMatch Status = "match"
	StatusOver  Status = "over"
	StatusUnder Status = "under"
)

type DayStops struct {
	Date  civil.Date `json:"date"`
	Stops int        `json:"stops"`
}

// Comparison is never persisted. Accuracy is nil when both totals are zero.
type Comparison struct {
	Start         civil.Date `json:"start"`
	End           civil.Date `json:"end"`
	ExternalTotal int        `json:"externalTotal"`
	AppTotal      int        `json:"appTotal"`
	Difference    int        `json:"difference"`
	Accuracy      *float64   `json:"accuracy"`
	Status        Status     `json:"status"`
	Daily         []DayStops `json:"daily"`

	AppEarnings        decimal.Decimal  `json:"appEarnings"`
	InvoiceAmount      *decimal.Decimal `json:"invoiceAmount,omitempty"`
	EarningsDifference *decimal.Decimal `json:"earningsDifference,omitempty"`
}

type Option func(*Comparison)

// WithInvoiceAmount also compares logged earnings with the amount paid.
func WithInvoiceAmount(amount decimal.Decimal) Option {
	return func(c *Comparison) {
		diff := c.AppEarnings.Sub(amount)
		c.InvoiceAmount = &amount
		c.EarningsDifference = &diff
	}
}

// Reconcile sums the stops of records dated within [start, end] and compares
// them to externalTotal. Difference is positive when more stops were logged
// than reported.
func Reconcile(records []workday.Record, start, end civil.Date, externalTotal int, opts ...Option) Comparison {
	c := Comparison{
		Start:         start,
		End:           end,
		ExternalTotal: externalTotal,
		AppEarnings:   decimal.Zero,
		Daily:         []DayStops{},
	}

	for _, r := range records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}

		c.AppTotal += r.Stops
		c.AppEarnings = c.AppEarnings.Add(r.Total)
		c.Daily = append(c.Daily, DayStops{Date: r.Date, Stops: r.Stops})
	}

	slices.SortStableFunc(c.Daily, func(a, b DayStops) int { return a.Date.Compare(b.Date) })

	c.Difference = c.AppTotal - externalTotal
	c.Accuracy = accuracy(c.AppTotal, externalTotal)

	switch {
	case c.Difference > 0:
		c.Status = StatusOver
	case c.Difference < 0:
		c.Status = StatusUnder
	default:
		c.Status = StatusMatch
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func accuracy(a, b int) *float64 {
	hi := max(a, b)
	if hi == 0 {
		return nil
	}

	pct := float64(min(a, b)) / float64(hi) * 100

	return &pct
}
