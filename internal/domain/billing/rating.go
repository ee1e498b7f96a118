package billing

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateOrder prices an order from its measures, rates, and ordered
// adjustments.
//
// The base charge is rate_kg * actual weight for actual-weight orders
// and rate_cbm * volume for volumetric orders, where volume is derived
// from the package dimensions in centimeters. Adjustments are then
// applied in list order against the running subtotal: amount
// adjustments add or subtract a flat value, percentage adjustments add
// or subtract a share of the subtotal as it stands at their position.
// The result is rounded to 2 decimals once at the end and never drops
// below zero.
func RateOrder(o *Order) decimal.Decimal {
	var base decimal.Decimal
	if o.WeightType == WeightTypeActual {
		base = o.RateKg.Mul(o.ActualWeight)
	} else {
		volume := o.WidthCm.Mul(o.DepthCm).Mul(o.HeightCm).Div(decimal.NewFromInt(1_000_000))
		base = o.RateCbm.Mul(volume)
	}

	subtotal := base
	for _, adj := range o.Adjustments {
		var delta decimal.Decimal
		switch adj.Mode {
		case AdjustmentModePercentage:
			delta = subtotal.Mul(adj.Value).Div(decimal.NewFromInt(100))
		default:
			delta = adj.Value
		}
		if adj.Kind == AdjustmentKindDiscount {
			delta = delta.Neg()
		}
		subtotal = subtotal.Add(delta)
	}

	total := subtotal.Round(2)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// RateInvoice prices an invoice from aggregate measures and the
// invoice-level rates: rate_kg * total weight + rate_cbm * total
// volume, rounded to 2 decimals.
func RateInvoice(rateKg, rateCbm, totalWeight, totalVolume decimal.Decimal) (decimal.Decimal, error) {
	if rateKg.IsNegative() || rateCbm.IsNegative() {
		return decimal.Zero, shared.NewDomainError("VALIDATION_ERROR", "rates cannot be negative")
	}
	if rateKg.IsZero() && rateCbm.IsZero() {
		return decimal.Zero, shared.NewDomainError("VALIDATION_ERROR", "at least one rate must be positive")
	}
	if totalWeight.IsNegative() || totalVolume.IsNegative() {
		return decimal.Zero, shared.NewDomainError("VALIDATION_ERROR", "measures cannot be negative")
	}
	total := rateKg.Mul(totalWeight).Add(rateCbm.Mul(totalVolume))
	return total.Round(2), nil
}
