package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads "1.234,56" style values when decimalComma is set and
// "1,234.56" style values otherwise. Currency symbols are ignored.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.Trim(s, "€$£ "))

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
