package models

import (
	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate.
type AccountModel struct {
	AggregateModel
	OwnerType       account.OwnerType    `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_owner_currency,priority:1"`
	OwnerPartyID    *uuid.UUID           `gorm:"type:uuid;uniqueIndex:idx_account_owner_currency,priority:2"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_account_owner_currency,priority:3"`
	Balance         decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethodID *uuid.UUID           `gorm:"type:uuid;index"`
	IsActive        bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account aggregate.
func (m *AccountModel) ToDomain() *account.Account {
	a := &account.Account{
		Owner: account.OwnerRef{
			Type:    m.OwnerType,
			PartyID: m.OwnerPartyID,
		},
		Currency:        m.Currency,
		Balance:         m.Balance,
		PaymentMethodID: m.PaymentMethodID,
		IsActive:        m.IsActive,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Account aggregate.
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.OwnerType = a.Owner.Type
	m.OwnerPartyID = a.Owner.PartyID
	m.Currency = a.Currency
	m.Balance = a.Balance
	m.PaymentMethodID = a.PaymentMethodID
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account aggregate.
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// PaymentMethodModel is the persistence model for the PaymentMethod aggregate.
type PaymentMethodModel struct {
	AggregateModel
	Name     string                    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Kind     account.PaymentMethodKind `gorm:"type:varchar(20);not null"`
	IsActive bool                      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod aggregate.
func (m *PaymentMethodModel) ToDomain() *account.PaymentMethod {
	pm := &account.PaymentMethod{
		Name:     m.Name,
		Kind:     m.Kind,
		IsActive: m.IsActive,
	}
	m.PopulateAggregateRoot(&pm.BaseAggregateRoot)
	return pm
}

// FromDomain populates the persistence model from a domain PaymentMethod aggregate.
func (m *PaymentMethodModel) FromDomain(pm *account.PaymentMethod) {
	m.FromDomainAggregateRoot(pm.BaseAggregateRoot)
	m.Name = pm.Name
	m.Kind = pm.Kind
	m.IsActive = pm.IsActive
}

// PaymentMethodModelFromDomain creates a new persistence model from a domain PaymentMethod aggregate.
func PaymentMethodModelFromDomain(pm *account.PaymentMethod) *PaymentMethodModel {
	m := &PaymentMethodModel{}
	m.FromDomain(pm)
	return m
}
