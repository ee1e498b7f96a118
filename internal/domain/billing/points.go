package billing

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerPoints tracks a customer's redeemable loyalty points. Each
// point is worth a company-wide value configured at the platform level
// and snapshotted onto invoices at issue time.
type CustomerPoints struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID
	Available  int64
}

// NewCustomerPoints creates a points balance for a customer
func NewCustomerPoints(customerID uuid.UUID) (*CustomerPoints, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "customer ID is required")
	}
	return &CustomerPoints{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
	}, nil
}

// ClampRedemption bounds a requested redemption to what the customer
// holds and to what the invoice total can absorb. Returns the number
// of points that may actually be redeemed; never negative.
func (cp *CustomerPoints) ClampRedemption(requested int64, invoiceTotal, pointValue decimal.Decimal) int64 {
	if requested <= 0 || !pointValue.IsPositive() {
		return 0
	}
	points := requested
	if points > cp.Available {
		points = cp.Available
	}
	coverable := invoiceTotal.Div(pointValue).Floor().IntPart()
	if points > coverable {
		points = coverable
	}
	if points < 0 {
		return 0
	}
	return points
}

// Redeem deducts points from the balance
func (cp *CustomerPoints) Redeem(points int64) error {
	if points < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}
	if points > cp.Available {
		return shared.ErrInsufficientPoints
	}
	cp.Available -= points
	cp.IncrementVersion()
	return nil
}

// Refund returns previously redeemed points to the balance
func (cp *CustomerPoints) Refund(points int64) error {
	if points < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}
	cp.Available += points
	cp.IncrementVersion()
	return nil
}

// Grant adds earned points to the balance
func (cp *CustomerPoints) Grant(points int64) error {
	if points < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}
	cp.Available += points
	cp.IncrementVersion()
	return nil
}
