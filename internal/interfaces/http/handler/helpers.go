package handler

import (
	"errors"

	"github.com/shopspring/decimal"
)

// errInvalidDateRange is returned when a date filter fails to parse
var errInvalidDateRange = errors.New("invalid date, expected YYYY-MM-DD")

// toDecimalPtr converts a float64 to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
