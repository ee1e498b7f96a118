package billing

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceIssuedEvent is raised when an invoice is issued
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID            `json:"invoice_id"`
	InvoiceNo  string               `json:"invoice_no"`
	CustomerID uuid.UUID            `json:"customer_id"`
	BranchID   uuid.UUID            `json:"branch_id"`
	Total      decimal.Decimal      `json:"total"`
	DueTotal   decimal.Decimal      `json:"due_total"`
	Currency   valueobject.Currency `json:"currency"`
	PointsUsed int64                `json:"points_used"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return "InvoiceIssued"
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceIssued", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		CustomerID:      inv.CustomerID,
		BranchID:        inv.BranchID,
		Total:           inv.Total,
		DueTotal:        inv.DueTotal,
		Currency:        inv.Currency,
		PointsUsed:      inv.PointsUsed,
	}
}

// InvoicePaidEvent is raised when the due total reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	InvoiceNo string          `json:"invoice_no"`
	Total     decimal.Decimal `json:"total"`
	PaidTotal decimal.Decimal `json:"paid_total"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		Total:           inv.Total,
		PaidTotal:       inv.PaidTotal,
	}
}

// InvoiceVoidedEvent is raised when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	InvoiceNo string    `json:"invoice_no"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceVoidedEvent) EventType() string {
	return "InvoiceVoided"
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, reason string) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceVoided", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		Reason:          reason,
	}
}
