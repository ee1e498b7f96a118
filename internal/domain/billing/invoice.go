package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

// IsValid checks if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// IsTerminal returns true for states that accept no further payments
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusVoid
}

// PaymentApplicationStatus tracks whether an applied payment still counts
type PaymentApplicationStatus string

const (
	PaymentApplicationActive   PaymentApplicationStatus = "active"
	PaymentApplicationReleased PaymentApplicationStatus = "released"
)

// PaymentApplication records one ledger payment applied to the invoice
type PaymentApplication struct {
	ID            uuid.UUID                `json:"id"`
	TransactionID uuid.UUID                `json:"transaction_id"`
	Amount        decimal.Decimal          `json:"amount"`
	AppliedAt     time.Time                `json:"applied_at"`
	Status        PaymentApplicationStatus `json:"status"`
	ReleasedAt    *time.Time               `json:"released_at,omitempty"`
	ReleaseReason string                   `json:"release_reason,omitempty"`
}

// IsActive returns true if the application still counts toward paid totals
func (p *PaymentApplication) IsActive() bool {
	return p.Status == PaymentApplicationActive
}

// PaymentApplications is stored as a JSONB column
type PaymentApplications []PaymentApplication

// Value implements driver.Valuer for JSONB storage
func (p PaymentApplications) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentApplications) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentApplications{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentApplications: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentApplications{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// InvoiceItem snapshots one order onto an invoice at issue time
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID uuid.UUID
	OrderID   uuid.UUID
	OrderNo   string
	Weight    decimal.Decimal // billable weight snapshot, kg
	Volume    decimal.Decimal // billable volume snapshot, cbm
	Amount    decimal.Decimal // order total snapshot
}

// Invoice is the aggregate root for customer billing. Its due total
// always satisfies due = max(0, total - paid - points*point_value);
// every mutation funnels through recompute to keep that true.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNo   string
	CustomerID  uuid.UUID
	BranchID    uuid.UUID
	Currency    valueobject.Currency
	RateKg      decimal.Decimal
	RateCbm     decimal.Decimal
	TotalWeight decimal.Decimal
	TotalVolume decimal.Decimal
	Total       decimal.Decimal
	PaidTotal   decimal.Decimal
	DueTotal    decimal.Decimal
	PointsUsed  int64
	PointsValue decimal.Decimal // per-point value snapshotted at issue time
	Status      InvoiceStatus
	Note        string
	IssuedAt    time.Time
	PaidAt      *time.Time
	VoidedAt    *time.Time
	VoidReason  string
	Items       []InvoiceItem
	Payments    PaymentApplications
}

// InvoiceSpec carries the validated inputs for issuing an invoice.
// Items must already be branch-checked and point redemption clamped by
// the caller.
type InvoiceSpec struct {
	InvoiceNo   string
	CustomerID  uuid.UUID
	BranchID    uuid.UUID
	Currency    valueobject.Currency
	RateKg      decimal.Decimal
	RateCbm     decimal.Decimal
	Orders      []*Order
	PointsUsed  int64
	PointsValue decimal.Decimal
	Note        string
}

// NewInvoice issues an invoice over a set of orders
func NewInvoice(spec InvoiceSpec) (*Invoice, error) {
	if strings.TrimSpace(spec.InvoiceNo) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invoice number is required")
	}
	if spec.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "customer ID is required")
	}
	if spec.BranchID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "branch ID is required")
	}
	if !spec.Currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if len(spec.Orders) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "at least one order is required")
	}
	if spec.PointsUsed < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNo:         strings.TrimSpace(spec.InvoiceNo),
		CustomerID:        spec.CustomerID,
		BranchID:          spec.BranchID,
		Currency:          spec.Currency,
		RateKg:            spec.RateKg,
		RateCbm:           spec.RateCbm,
		PaidTotal:         decimal.Zero,
		PointsUsed:        spec.PointsUsed,
		PointsValue:       spec.PointsValue,
		Note:              strings.TrimSpace(spec.Note),
		IssuedAt:          time.Now(),
		Payments:          PaymentApplications{},
	}

	if err := inv.setItems(spec.Orders); err != nil {
		return nil, err
	}
	if err := inv.recompute(); err != nil {
		return nil, err
	}
	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return inv, nil
}

func (inv *Invoice) setItems(orders []*Order) error {
	items := make([]InvoiceItem, 0, len(orders))
	for _, o := range orders {
		if o.CustomerID != inv.CustomerID {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("order %s belongs to another customer", o.OrderNo))
		}
		if o.BranchID != inv.BranchID {
			return shared.ErrBranchMismatch
		}
		items = append(items, InvoiceItem{
			BaseEntity: shared.NewBaseEntity(),
			InvoiceID:  inv.ID,
			OrderID:    o.ID,
			OrderNo:    o.OrderNo,
			Weight:     o.BillableWeight(),
			Volume:     o.BillableVolume(),
			Amount:     o.TotalPrice,
		})
	}
	inv.Items = items
	return nil
}

// recompute re-derives the aggregate measures, the total, the due
// total, and the status from current state.
func (inv *Invoice) recompute() error {
	weight := decimal.Zero
	volume := decimal.Zero
	for _, item := range inv.Items {
		weight = weight.Add(item.Weight)
		volume = volume.Add(item.Volume)
	}
	inv.TotalWeight = weight.Round(3)
	inv.TotalVolume = volume.Round(3)

	total, err := RateInvoice(inv.RateKg, inv.RateCbm, inv.TotalWeight, inv.TotalVolume)
	if err != nil {
		return err
	}
	inv.Total = total
	inv.refreshDueAndStatus()
	return nil
}

func (inv *Invoice) refreshDueAndStatus() {
	pointsCredit := decimal.NewFromInt(inv.PointsUsed).Mul(inv.PointsValue)
	due := inv.Total.Sub(inv.PaidTotal).Sub(pointsCredit).Round(2)
	if due.IsNegative() {
		due = decimal.Zero
	}
	inv.DueTotal = due

	if inv.Status == InvoiceStatusVoid {
		return
	}
	switch {
	case due.IsZero():
		if inv.Status != InvoiceStatusPaid {
			now := time.Now()
			inv.PaidAt = &now
		}
		inv.Status = InvoiceStatusPaid
	case inv.PaidTotal.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
		inv.PaidAt = nil
	default:
		inv.Status = InvoiceStatusIssued
		inv.PaidAt = nil
	}
}

// ActivePaymentTransactionIDs returns the ledger transactions whose
// payments still count toward the paid total
func (inv *Invoice) ActivePaymentTransactionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		if p.IsActive() {
			ids = append(ids, p.TransactionID)
		}
	}
	return ids
}

// ApplyPayment applies a ledger payment against the due total.
// The amount must not exceed what is still due.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal, transactionID uuid.UUID) error {
	if inv.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "cannot apply a payment to a void invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "payment amount must be positive")
	}
	if transactionID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "transaction ID is required")
	}
	amount = amount.Round(2)
	if amount.GreaterThan(inv.DueTotal) {
		return shared.ErrAmountExceedsDue
	}

	inv.Payments = append(inv.Payments, PaymentApplication{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Amount:        amount,
		AppliedAt:     time.Now(),
		Status:        PaymentApplicationActive,
	})
	inv.PaidTotal = inv.PaidTotal.Add(amount).Round(2)
	inv.refreshDueAndStatus()
	inv.IncrementVersion()
	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}
	return nil
}

// ReleasePayment backs out a previously applied payment after its
// ledger transaction was canceled. The due total and status roll back
// to what the remaining active payments support.
func (inv *Invoice) ReleasePayment(transactionID uuid.UUID, reason string) error {
	if inv.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "cannot release a payment on a void invoice")
	}
	for i := range inv.Payments {
		p := &inv.Payments[i]
		if p.TransactionID != transactionID || !p.IsActive() {
			continue
		}
		now := time.Now()
		p.Status = PaymentApplicationReleased
		p.ReleasedAt = &now
		p.ReleaseReason = reason
		inv.PaidTotal = inv.PaidTotal.Sub(p.Amount).Round(2)
		if inv.PaidTotal.IsNegative() {
			inv.PaidTotal = decimal.Zero
		}
		inv.refreshDueAndStatus()
		inv.IncrementVersion()
		return nil
	}
	return shared.NewDomainError("NOT_FOUND", "no active payment application for this transaction")
}

// CanAmend reports whether line membership and points may still change
func (inv *Invoice) CanAmend() bool {
	return inv.Status != InvoiceStatusVoid && inv.PaidTotal.IsZero()
}

// Amend replaces the invoiced orders, currency, note, and point
// redemption. Only possible before any payment lands.
func (inv *Invoice) Amend(orders []*Order, currency valueobject.Currency, note string, pointsUsed int64) error {
	if inv.Status == InvoiceStatusVoid {
		return shared.ErrAlreadyCanceled
	}
	if !inv.CanAmend() {
		return shared.NewDomainError("INVALID_STATE", "cannot amend an invoice with payments applied")
	}
	if !currency.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if len(orders) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "at least one order is required")
	}
	if pointsUsed < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}

	if err := inv.setItems(orders); err != nil {
		return err
	}
	inv.Currency = currency
	inv.Note = strings.TrimSpace(note)
	inv.PointsUsed = pointsUsed
	if err := inv.recompute(); err != nil {
		return err
	}
	inv.IncrementVersion()
	return nil
}

// Void soft-cancels the invoice. Applied payments are detached, not
// canceled: their ledger transactions stay active and can be canceled
// separately. The caller releases the orders and refunds the points in
// the same unit of work.
func (inv *Invoice) Void(reason string) ([]uuid.UUID, error) {
	if inv.Status == InvoiceStatusVoid {
		return nil, shared.ErrAlreadyCanceled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "void reason is required")
	}

	detached := inv.ActivePaymentTransactionIDs()
	now := time.Now()
	for i := range inv.Payments {
		p := &inv.Payments[i]
		if !p.IsActive() {
			continue
		}
		p.Status = PaymentApplicationReleased
		p.ReleasedAt = &now
		p.ReleaseReason = reason
	}

	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.PaidTotal = decimal.Zero
	inv.DueTotal = decimal.Zero
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, reason))
	return detached, nil
}

// Regenerate re-derives the totals from the orders' current measures
// without changing line membership. Used after post-issuance weight
// corrections. The new total may not fall below what was already paid.
func (inv *Invoice) Regenerate(orders []*Order) error {
	if inv.Status == InvoiceStatusVoid {
		return shared.ErrAlreadyCanceled
	}
	byID := make(map[uuid.UUID]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	for i := range inv.Items {
		o, ok := byID[inv.Items[i].OrderID]
		if !ok {
			return shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("order %s missing for totals regeneration", inv.Items[i].OrderNo))
		}
		inv.Items[i].Weight = o.BillableWeight()
		inv.Items[i].Volume = o.BillableVolume()
		inv.Items[i].Amount = o.TotalPrice
	}

	weight := decimal.Zero
	volume := decimal.Zero
	for _, item := range inv.Items {
		weight = weight.Add(item.Weight)
		volume = volume.Add(item.Volume)
	}
	total, err := RateInvoice(inv.RateKg, inv.RateCbm, weight.Round(3), volume.Round(3))
	if err != nil {
		return err
	}
	if total.LessThan(inv.PaidTotal) {
		return shared.ErrAmountExceedsDue
	}

	inv.TotalWeight = weight.Round(3)
	inv.TotalVolume = volume.Round(3)
	inv.Total = total
	inv.refreshDueAndStatus()
	inv.IncrementVersion()
	return nil
}
