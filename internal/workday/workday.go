package workday

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("workday not found")
	ErrMissingStops = errors.New("please enter the number of stops")
	ErrInvalidStops = errors.New("stops must be a non-negative whole number")
	ErrInvalidExtra = errors.New("extra pay must not be negative")
)

// Record is one logged work day. Total is derived by the rate engine when the
// record is created and is never recomputed.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Date      civil.Date      `json:"date"`
	Stops     int             `json:"stops"`
	Extra     decimal.Decimal `json:"extra"`
	Total     decimal.Decimal `json:"total"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SortField string

const (
	SortByDate  SortField = "date"
	SortByStops SortField = "stops"
	SortByTotal SortField = "total"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

const DefaultPerPage = 20

type ListOptions struct {
	SortBy  SortField
	Order   Order
	Page    int
	PerPage int
}

// Page is one slice of the sorted collection. Page numbers start at 1.
type Page struct {
	Records    []Record `json:"records"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
}
