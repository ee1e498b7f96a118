package partner

import (
	"strings"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PartnerType classifies external logistics partners
type PartnerType string

const (
	PartnerTypeShipper   PartnerType = "shipper"
	PartnerTypeConsignee PartnerType = "consignee"
	PartnerTypeFreelance PartnerType = "freelance"
	PartnerTypeAgent     PartnerType = "agent"
)

// IsValid checks if the partner type is valid
func (t PartnerType) IsValid() bool {
	switch t {
	case PartnerTypeShipper, PartnerTypeConsignee, PartnerTypeFreelance, PartnerTypeAgent:
		return true
	}
	return false
}

// Partner is an external party the company settles with outside the
// customer billing flow. CurrentBalance carries the running position:
// positive means the company owes the partner, negative means the
// partner owes the company.
type Partner struct {
	shared.BaseAggregateRoot
	Type           PartnerType
	Name           string
	CurrencyCode   valueobject.Currency
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	ContactPhone   string
	ContactEmail   string
	IsActive       bool
}

// NewPartner creates a new partner with an opening balance
func NewPartner(partnerType PartnerType, name string, currency valueobject.Currency, openingBalance decimal.Decimal) (*Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "partner name is required")
	}
	if !partnerType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid partner type")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	opening := openingBalance.Round(2)
	return &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              partnerType,
		Name:              name,
		CurrencyCode:      currency,
		OpeningBalance:    opening,
		CurrentBalance:    opening,
		IsActive:          true,
	}, nil
}

// ApplyMovement adds a signed amount to the running balance
func (p *Partner) ApplyMovement(signedAmount decimal.Decimal) {
	p.CurrentBalance = p.CurrentBalance.Add(signedAmount).Round(2)
	p.IncrementVersion()
}

// Deactivate closes the partner for new transactions
func (p *Partner) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.IncrementVersion()
}

// Activate reopens the partner
func (p *Partner) Activate() {
	if p.IsActive {
		return
	}
	p.IsActive = true
	p.IncrementVersion()
}
