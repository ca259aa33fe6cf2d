package rate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidConfig = errors.New("invalid rate config")

// Config is a tiered per-stop pay schedule.
type Config struct {
	CutoffPoint      int             `json:"cutoffPoint"`
	RateBeforeCutoff decimal.Decimal `json:"rateBeforeCutoff"`
	RateAfterCutoff  decimal.Decimal `json:"rateAfterCutoff"`
}

// DefaultConfig is used when no config has been saved for a scope.
func DefaultConfig() Config {
	return Config{
		CutoffPoint:      110,
		RateBeforeCutoff: decimal.RequireFromString("1.98"),
		RateAfterCutoff:  decimal.RequireFromString("1.48"),
	}
}

// Validate reports whether every field is non-negative. The two rates may be
// in any order.
func (c Config) Validate() error {
	if c.CutoffPoint < 0 {
		return fmt.Errorf("%w: cutoff point must not be negative", ErrInvalidConfig)
	}

	if c.RateBeforeCutoff.IsNegative() {
		return fmt.Errorf("%w: rate before cutoff must not be negative", ErrInvalidConfig)
	}

	if c.RateAfterCutoff.IsNegative() {
		return fmt.Errorf("%w: rate after cutoff must not be negative", ErrInvalidConfig)
	}

	return nil
}

type Preset struct {
	Name   string `json:"name"`
	Config Config `json:"config"`
}

func Presets() []Preset {
	return []Preset{
		{Name: "110 Stops", Config: DefaultConfig()},
		{
			Name: "125 Stops",
			Config: Config{
				CutoffPoint:      125,
				RateBeforeCutoff: decimal.RequireFromString("2.10"),
				RateAfterCutoff:  decimal.RequireFromString("1.60"),
			},
		},
	}
}

// ComputeTotal returns the pay for the given stop count. Stops at or under the
// cutoff are paid at RateBeforeCutoff, the rest at RateAfterCutoff.
//
// Negative counts are not clamped; callers validate input first.
func ComputeTotal(stops int, cfg Config) decimal.Decimal {
	s := decimal.NewFromInt(int64(stops))
	if stops <= cfg.CutoffPoint {
		return s.Mul(cfg.RateBeforeCutoff)
	}

	cutoff := decimal.NewFromInt(int64(cfg.CutoffPoint))

	return cutoff.Mul(cfg.RateBeforeCutoff).Add(s.Sub(cutoff).Mul(cfg.RateAfterCutoff))
}

// DayTotal is ComputeTotal plus any extra pay for the day.
func DayTotal(stops int, extra decimal.Decimal, cfg Config) decimal.Decimal {
	return ComputeTotal(stops, cfg).Add(extra)
}
