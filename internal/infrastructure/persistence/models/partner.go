package models

import (
	"time"

	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerModel is the persistence model for the Partner aggregate.
type PartnerModel struct {
	AggregateModel
	Type           partner.PartnerType  `gorm:"type:varchar(20);not null;index"`
	Name           string               `gorm:"type:varchar(200);not null"`
	CurrencyCode   valueobject.Currency `gorm:"type:varchar(3);not null"`
	OpeningBalance decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBalance decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	ContactPhone   string               `gorm:"type:varchar(50)"`
	ContactEmail   string               `gorm:"type:varchar(200)"`
	IsActive       bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner aggregate.
func (m *PartnerModel) ToDomain() *partner.Partner {
	p := &partner.Partner{
		Type:           m.Type,
		Name:           m.Name,
		CurrencyCode:   m.CurrencyCode,
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		ContactPhone:   m.ContactPhone,
		ContactEmail:   m.ContactEmail,
		IsActive:       m.IsActive,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Partner aggregate.
func (m *PartnerModel) FromDomain(p *partner.Partner) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Type = p.Type
	m.Name = p.Name
	m.CurrencyCode = p.CurrencyCode
	m.OpeningBalance = p.OpeningBalance
	m.CurrentBalance = p.CurrentBalance
	m.ContactPhone = p.ContactPhone
	m.ContactEmail = p.ContactEmail
	m.IsActive = p.IsActive
}

// PartnerModelFromDomain creates a new persistence model from a domain Partner aggregate.
func PartnerModelFromDomain(p *partner.Partner) *PartnerModel {
	m := &PartnerModel{}
	m.FromDomain(p)
	return m
}

// PartnerTransactionModel is the persistence model for partner ledger records.
type PartnerTransactionModel struct {
	AggregateModel
	PartnerID        uuid.UUID                        `gorm:"type:uuid;not null;index"`
	TxType           partner.PartnerTransactionType   `gorm:"type:varchar(30);not null;index"`
	Status           partner.PartnerTransactionStatus `gorm:"type:varchar(20);not null;index"`
	Movement         decimal.Decimal                  `gorm:"type:decimal(18,2);not null"`
	Payment          decimal.Decimal                  `gorm:"type:decimal(18,2);not null"`
	CurrencyCode     valueobject.Currency             `gorm:"type:varchar(3);not null"`
	BalanceBefore    decimal.Decimal                  `gorm:"type:decimal(18,2);not null"`
	BalanceAfter     decimal.Decimal                  `gorm:"type:decimal(18,2);not null"`
	AdminAccountID   *uuid.UUID                       `gorm:"type:uuid;index"`
	CounterPartnerID *uuid.UUID                       `gorm:"type:uuid;index"`
	ReversalOfID     *uuid.UUID                       `gorm:"type:uuid;index"`
	LedgerTxID       *uuid.UUID                       `gorm:"type:uuid;index"`
	Note             string                           `gorm:"type:text"`
	VoidReason       string                           `gorm:"type:text"`
	VoidedAt         *time.Time
	CreatedBy        uuid.UUID `gorm:"type:uuid;not null"`
	TransactionDate  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PartnerTransactionModel) TableName() string {
	return "partner_transactions"
}

// ToDomain converts the persistence model to a domain PartnerTransaction aggregate.
func (m *PartnerTransactionModel) ToDomain() *partner.PartnerTransaction {
	t := &partner.PartnerTransaction{
		PartnerID:        m.PartnerID,
		TxType:           m.TxType,
		Status:           m.Status,
		Movement:         m.Movement,
		Payment:          m.Payment,
		CurrencyCode:     m.CurrencyCode,
		BalanceBefore:    m.BalanceBefore,
		BalanceAfter:     m.BalanceAfter,
		AdminAccountID:   m.AdminAccountID,
		CounterPartnerID: m.CounterPartnerID,
		ReversalOfID:     m.ReversalOfID,
		LedgerTxID:       m.LedgerTxID,
		Note:             m.Note,
		VoidReason:       m.VoidReason,
		VoidedAt:         m.VoidedAt,
		CreatedBy:        m.CreatedBy,
		TransactionDate:  m.TransactionDate,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain PartnerTransaction aggregate.
func (m *PartnerTransactionModel) FromDomain(t *partner.PartnerTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.PartnerID = t.PartnerID
	m.TxType = t.TxType
	m.Status = t.Status
	m.Movement = t.Movement
	m.Payment = t.Payment
	m.CurrencyCode = t.CurrencyCode
	m.BalanceBefore = t.BalanceBefore
	m.BalanceAfter = t.BalanceAfter
	m.AdminAccountID = t.AdminAccountID
	m.CounterPartnerID = t.CounterPartnerID
	m.ReversalOfID = t.ReversalOfID
	m.LedgerTxID = t.LedgerTxID
	m.Note = t.Note
	m.VoidReason = t.VoidReason
	m.VoidedAt = t.VoidedAt
	m.CreatedBy = t.CreatedBy
	m.TransactionDate = t.TransactionDate
}

// PartnerTransactionModelFromDomain creates a new persistence model from a domain PartnerTransaction aggregate.
func PartnerTransactionModelFromDomain(t *partner.PartnerTransaction) *PartnerTransactionModel {
	m := &PartnerTransactionModel{}
	m.FromDomain(t)
	return m
}
