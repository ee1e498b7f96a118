package ledger

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCreatedEvent is raised when a ledger transaction is posted
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID            `json:"transaction_id"`
	Type          TransactionType      `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      valueobject.Currency `json:"currency"`
	InvoiceID     *uuid.UUID           `json:"invoice_id,omitempty"`
}

// EventType returns the event type name
func (e *TransactionCreatedEvent) EventType() string {
	return "TransactionCreated"
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionCreated", "Transaction", t.ID),
		TransactionID:   t.ID,
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		InvoiceID:       t.InvoiceID,
	}
}

// TransactionCanceledEvent is raised when a transaction is soft-canceled
type TransactionCanceledEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
}

// EventType returns the event type name
func (e *TransactionCanceledEvent) EventType() string {
	return "TransactionCanceled"
}

// NewTransactionCanceledEvent creates a new TransactionCanceledEvent
func NewTransactionCanceledEvent(t *Transaction, reason string) *TransactionCanceledEvent {
	return &TransactionCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionCanceled", "Transaction", t.ID),
		TransactionID:   t.ID,
		Type:            t.Type,
		Amount:          t.Amount,
		Reason:          reason,
		InvoiceID:       t.InvoiceID,
	}
}
