package account

import (
	"strings"

	"github.com/cargomesh/backend/internal/domain/shared"
)

// PaymentMethodKind classifies how funds move through a payment method
type PaymentMethodKind string

const (
	PaymentMethodCash   PaymentMethodKind = "cash"
	PaymentMethodBank   PaymentMethodKind = "bank"
	PaymentMethodWallet PaymentMethodKind = "wallet"
)

// IsValid checks if the payment method kind is valid
func (k PaymentMethodKind) IsValid() bool {
	switch k {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodWallet:
		return true
	}
	return false
}

// PaymentMethod is a named channel through which payments settle.
// Accounts reference a payment method; a payment transaction requires
// the paying account's method to resolve to an active one.
type PaymentMethod struct {
	shared.BaseAggregateRoot
	Name     string
	Kind     PaymentMethodKind
	IsActive bool
}

// NewPaymentMethod creates a new payment method
func NewPaymentMethod(name string, kind PaymentMethodKind) (*PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "payment method name is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid payment method kind")
	}
	return &PaymentMethod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Kind:              kind,
		IsActive:          true,
	}, nil
}

// Deactivate takes the method out of service. Existing account links
// stay; new payments through it are refused.
func (pm *PaymentMethod) Deactivate() {
	if !pm.IsActive {
		return
	}
	pm.IsActive = false
	pm.IncrementVersion()
}

// Activate puts the method back in service
func (pm *PaymentMethod) Activate() {
	if pm.IsActive {
		return
	}
	pm.IsActive = true
	pm.IncrementVersion()
}
