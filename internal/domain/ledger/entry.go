package ledger

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes original postings from their offsets
type EntryKind string

const (
	EntryKindNormal   EntryKind = "normal"
	EntryKindReversal EntryKind = "reversal"
)

// IsValid checks if the entry kind is valid
func (k EntryKind) IsValid() bool {
	return k == EntryKindNormal || k == EntryKindReversal
}

// Entry is a single signed balance movement on an account. Entries are
// immutable facts: they are never updated or deleted after posting.
// Undoing a movement means posting a reversal entry with the opposite
// sign, so an account's balance is always the sum of all its entries.
type Entry struct {
	shared.BaseEntity
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        decimal.Decimal // signed
	Currency      valueobject.Currency
	Kind          EntryKind
}

// NewEntry creates a normal posting entry
func NewEntry(transactionID, accountID uuid.UUID, signedAmount decimal.Decimal, currency valueobject.Currency) (*Entry, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "transaction ID is required")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account ID is required")
	}
	if signedAmount.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "entry amount cannot be zero")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		AccountID:     accountID,
		Amount:        signedAmount.Round(2),
		Currency:      currency,
		Kind:          EntryKindNormal,
	}, nil
}

// Reversal returns a new entry that exactly offsets this one
func (e *Entry) Reversal() *Entry {
	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Amount:        e.Amount.Neg(),
		Currency:      e.Currency,
		Kind:          EntryKindReversal,
	}
}

// IsReversal reports whether this entry offsets an earlier one
func (e *Entry) IsReversal() bool {
	return e.Kind == EntryKindReversal
}
