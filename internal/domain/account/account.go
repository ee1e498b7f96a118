package account

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// balanceEpsilon is the comparison slack for 2-decimal amounts
var balanceEpsilon = decimal.NewFromFloat(0.005)

// Account is a money container held by an owner in a single currency.
// Its balance is the materialized sum of the signed ledger entries
// posted against it; an account never has entries of its own removed,
// only offset by reversal entries.
type Account struct {
	shared.BaseAggregateRoot
	Owner           OwnerRef
	Currency        valueobject.Currency
	Balance         decimal.Decimal
	PaymentMethodID *uuid.UUID
	IsActive        bool
}

// NewAccount creates a new account for an owner in the given currency
func NewAccount(owner OwnerRef, currency valueobject.Currency, paymentMethodID *uuid.UUID) (*Account, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	acc := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Owner:             owner,
		Currency:          currency,
		Balance:           decimal.Zero,
		PaymentMethodID:   paymentMethodID,
		IsActive:          true,
	}
	acc.AddDomainEvent(NewAccountCreatedEvent(acc))
	return acc, nil
}

// ApplyMovement adds a signed amount to the balance. Called only from
// ledger posting, which owns the entry records the balance mirrors.
// Posting against an inactive account is allowed for reversals; the
// activity check for new business movements happens upstream.
func (a *Account) ApplyMovement(signedAmount decimal.Decimal) {
	a.Balance = a.Balance.Add(signedAmount)
	a.IncrementVersion()
}

// HasZeroBalance reports whether the balance is zero within the
// 2-decimal epsilon.
func (a *Account) HasZeroBalance() bool {
	return a.Balance.Abs().LessThan(balanceEpsilon)
}

// Deactivate closes the account for new movements. Accounts carrying a
// balance cannot be deactivated; they are never hard-deleted either.
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return nil
	}
	if !a.HasZeroBalance() {
		return shared.ErrBalanceNotZero
	}
	a.IsActive = false
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountDeactivatedEvent(a))
	return nil
}

// Activate reopens the account
func (a *Account) Activate() {
	if a.IsActive {
		return
	}
	a.IsActive = true
	a.IncrementVersion()
}

// AssignPaymentMethod links the account to a payment method
func (a *Account) AssignPaymentMethod(paymentMethodID uuid.UUID) error {
	if paymentMethodID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "payment method ID is required")
	}
	a.PaymentMethodID = &paymentMethodID
	a.IncrementVersion()
	return nil
}
