package models

import (
	"time"

	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the ledger Transaction aggregate.
type TransactionModel struct {
	AggregateModel
	Type           ledger.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status         ledger.TransactionStatus `gorm:"type:varchar(20);not null;index"`
	Amount         decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Currency       valueobject.Currency     `gorm:"type:varchar(3);not null"`
	FromAccountID  *uuid.UUID               `gorm:"type:uuid;index"`
	ToAccountID    *uuid.UUID               `gorm:"type:uuid;index"`
	InvoiceID      *uuid.UUID               `gorm:"type:uuid;index"`
	RefundReason   *string                  `gorm:"type:varchar(30)"`
	Title          string                   `gorm:"type:varchar(200)"`
	Note           string                   `gorm:"type:text"`
	PaymentDate    time.Time                `gorm:"not null;index"`
	BranchID       *uuid.UUID               `gorm:"type:uuid;index"`
	CreatedBy      uuid.UUID                `gorm:"type:uuid;not null"`
	CanceledReason string                   `gorm:"type:text"`
	CanceledAt     *time.Time
	CanceledBy     *uuid.UUID   `gorm:"type:uuid"`
	Entries        []EntryModel `gorm:"foreignKey:TransactionID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction aggregate.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	t := &ledger.Transaction{
		Type:           m.Type,
		Status:         m.Status,
		Amount:         m.Amount,
		Currency:       m.Currency,
		FromAccountID:  m.FromAccountID,
		ToAccountID:    m.ToAccountID,
		InvoiceID:      m.InvoiceID,
		Title:          m.Title,
		Note:           m.Note,
		PaymentDate:    m.PaymentDate,
		BranchID:       m.BranchID,
		CreatedBy:      m.CreatedBy,
		CanceledReason: m.CanceledReason,
		CanceledAt:     m.CanceledAt,
		CanceledBy:     m.CanceledBy,
	}
	if m.RefundReason != nil {
		reason := ledger.RefundReason(*m.RefundReason)
		t.RefundReason = &reason
	}
	if len(m.Entries) > 0 {
		t.Entries = make([]ledger.Entry, len(m.Entries))
		for i := range m.Entries {
			t.Entries[i] = *m.Entries[i].ToDomain()
		}
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Transaction aggregate.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Type = t.Type
	m.Status = t.Status
	m.Amount = t.Amount
	m.Currency = t.Currency
	m.FromAccountID = t.FromAccountID
	m.ToAccountID = t.ToAccountID
	m.InvoiceID = t.InvoiceID
	m.Title = t.Title
	m.Note = t.Note
	m.PaymentDate = t.PaymentDate
	m.BranchID = t.BranchID
	m.CreatedBy = t.CreatedBy
	m.CanceledReason = t.CanceledReason
	m.CanceledAt = t.CanceledAt
	m.CanceledBy = t.CanceledBy
	if t.RefundReason != nil {
		reason := string(*t.RefundReason)
		m.RefundReason = &reason
	} else {
		m.RefundReason = nil
	}
	m.Entries = make([]EntryModel, len(t.Entries))
	for i := range t.Entries {
		m.Entries[i].FromDomain(&t.Entries[i])
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction aggregate.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// EntryModel is the persistence model for the ledger Entry entity.
// Entries are append-only; the repository never updates or deletes rows.
type EntryModel struct {
	BaseModel
	TransactionID uuid.UUID            `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	Kind          ledger.EntryKind     `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "entries"
}

// ToDomain converts the persistence model to a domain Entry entity.
func (m *EntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseEntity:    m.BaseModel.ToDomain(),
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Kind:          m.Kind,
	}
}

// FromDomain populates the persistence model from a domain Entry entity.
func (m *EntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TransactionID = e.TransactionID
	m.AccountID = e.AccountID
	m.Amount = e.Amount
	m.Currency = e.Currency
	m.Kind = e.Kind
}
