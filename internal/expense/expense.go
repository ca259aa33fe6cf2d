package expense

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("expense not found")
	ErrMissingCategory = errors.New("please choose a category")
	ErrMissingAmount   = errors.New("please enter an amount")
	ErrInvalidAmount   = errors.New("amount must not be negative")
)

// Category is one of the predefined categories or free text.
type Category string

const (
	CategoryFuel        Category = "Fuel"
	CategoryMaintenance Category = "Vehicle Maintenance"
	CategoryInsurance   Category = "Insurance"
	CategoryVehicle     Category = "Vehicle Payment"
	CategoryPhone       Category = "Phone/Data"
	CategoryEquipment   Category = "Equipment"
	CategoryOther       Category = "Other"
)

func Categories() []Category {
	return []Category{
		CategoryFuel,
		CategoryMaintenance,
		CategoryInsurance,
		CategoryVehicle,
		CategoryPhone,
		CategoryEquipment,
		CategoryOther,
	}
}

type Record struct {
	ID          uuid.UUID       `json:"id"`
	Date        civil.Date      `json:"date"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CategoryTotal is the per-category line of a Summary.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

type Summary struct {
	Categories []CategoryTotal `json:"categories"`
	Total      decimal.Decimal `json:"total"`
}
