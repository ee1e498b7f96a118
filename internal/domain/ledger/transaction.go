package ledger

import (
	"strings"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger movement
type TransactionType string

const (
	// Two-sided types move money between a pair of accounts
	TransactionTypePayment         TransactionType = "payment"
	TransactionTypeRefund          TransactionType = "refund"
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeAdminSettlement TransactionType = "admin_settlement"

	// Single-sided types move money on one account only
	TransactionTypeCharge     TransactionType = "charge"
	TransactionTypeDiscount   TransactionType = "discount"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypeDeposit,
		TransactionTypeAdminSettlement, TransactionTypeCharge,
		TransactionTypeDiscount, TransactionTypeAdjustment:
		return true
	}
	return false
}

// IsTwoSided reports whether the type moves money between two accounts
func (t TransactionType) IsTwoSided() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRefund, TransactionTypeDeposit, TransactionTypeAdminSettlement:
		return true
	}
	return false
}

// RequiresElevatedRole reports whether only privileged operators may
// create this type of transaction
func (t TransactionType) RequiresElevatedRole() bool {
	return t == TransactionTypeCharge || t == TransactionTypeDiscount
}

// TransactionStatus represents the lifecycle state of a transaction
type TransactionStatus string

const (
	TransactionStatusActive   TransactionStatus = "active"
	TransactionStatusCanceled TransactionStatus = "canceled"
)

// IsValid checks if the status is valid
func (s TransactionStatus) IsValid() bool {
	return s == TransactionStatusActive || s == TransactionStatusCanceled
}

// RefundReason is the mandatory classification on refund transactions
type RefundReason string

const (
	RefundReasonDamaged       RefundReason = "damaged"
	RefundReasonLost          RefundReason = "lost"
	RefundReasonOvercharge    RefundReason = "overcharge"
	RefundReasonOrderCanceled RefundReason = "order_canceled"
	RefundReasonOther         RefundReason = "other"
)

// IsValid checks if the refund reason is valid
func (r RefundReason) IsValid() bool {
	switch r {
	case RefundReasonDamaged, RefundReasonLost, RefundReasonOvercharge,
		RefundReasonOrderCanceled, RefundReasonOther:
		return true
	}
	return false
}

// Transaction is the aggregate root for a ledger movement. It owns the
// entry rows that carry the actual signed amounts. Cancellation never
// removes anything: it posts reversal entries and flips the status, so
// the full history stays visible.
type Transaction struct {
	shared.BaseAggregateRoot
	Type           TransactionType
	Status         TransactionStatus
	Amount         decimal.Decimal // positive magnitude
	Currency       valueobject.Currency
	FromAccountID  *uuid.UUID
	ToAccountID    *uuid.UUID
	InvoiceID      *uuid.UUID
	RefundReason   *RefundReason
	Title          string
	Note           string
	PaymentDate    time.Time
	BranchID       *uuid.UUID
	CreatedBy      uuid.UUID
	CanceledReason string
	CanceledAt     *time.Time
	CanceledBy     *uuid.UUID
	Entries        []Entry
}

func newTransaction(txType TransactionType, amount decimal.Decimal, currency valueobject.Currency, createdBy uuid.UUID) (*Transaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid transaction type")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "transaction amount must be positive")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "creator is required")
	}
	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              txType,
		Status:            TransactionStatusActive,
		Amount:            amount.Round(2),
		Currency:          currency,
		PaymentDate:       time.Now(),
		CreatedBy:         createdBy,
	}, nil
}

// TransferSpec carries the inputs for a two-sided transaction
type TransferSpec struct {
	Type          TransactionType
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	InvoiceID     *uuid.UUID
	RefundReason  *RefundReason
	Note          string
	PaymentDate   *time.Time
	BranchID      *uuid.UUID
	CreatedBy     uuid.UUID
}

// NewTransfer creates a two-sided transaction that debits the source
// account and credits the destination account by the same amount.
func NewTransfer(spec TransferSpec) (*Transaction, error) {
	if !spec.Type.IsTwoSided() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "transaction type does not move money between accounts")
	}
	if spec.FromAccountID == uuid.Nil || spec.ToAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "both accounts are required")
	}
	if spec.FromAccountID == spec.ToAccountID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "source and destination accounts must differ")
	}
	if spec.Type == TransactionTypeRefund {
		if spec.RefundReason == nil || !spec.RefundReason.IsValid() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "a valid refund reason is required")
		}
	}
	if spec.InvoiceID != nil && spec.Type != TransactionTypePayment {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "only payments can target an invoice")
	}

	tx, err := newTransaction(spec.Type, spec.Amount, spec.Currency, spec.CreatedBy)
	if err != nil {
		return nil, err
	}
	tx.FromAccountID = &spec.FromAccountID
	tx.ToAccountID = &spec.ToAccountID
	tx.InvoiceID = spec.InvoiceID
	tx.RefundReason = spec.RefundReason
	tx.Note = strings.TrimSpace(spec.Note)
	tx.BranchID = spec.BranchID
	if spec.PaymentDate != nil {
		tx.PaymentDate = *spec.PaymentDate
	}

	out, err := NewEntry(tx.ID, spec.FromAccountID, tx.Amount.Neg(), tx.Currency)
	if err != nil {
		return nil, err
	}
	in, err := NewEntry(tx.ID, spec.ToAccountID, tx.Amount, tx.Currency)
	if err != nil {
		return nil, err
	}
	tx.Entries = []Entry{*out, *in}
	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))
	return tx, nil
}

// NewCharge creates a single-sided transaction that increases what a
// customer owes. Restricted to privileged operators at the service
// boundary.
func NewCharge(accountID uuid.UUID, amount decimal.Decimal, currency valueobject.Currency, note string, branchID *uuid.UUID, createdBy uuid.UUID) (*Transaction, error) {
	return newSingleSided(TransactionTypeCharge, accountID, amount, currency, note, branchID, createdBy)
}

// NewDiscount creates a single-sided transaction that decreases what a
// customer owes. Restricted to privileged operators at the service
// boundary.
func NewDiscount(accountID uuid.UUID, amount decimal.Decimal, currency valueobject.Currency, note string, branchID *uuid.UUID, createdBy uuid.UUID) (*Transaction, error) {
	return newSingleSided(TransactionTypeDiscount, accountID, amount, currency, note, branchID, createdBy)
}

func newSingleSided(txType TransactionType, accountID uuid.UUID, amount decimal.Decimal, currency valueobject.Currency, note string, branchID *uuid.UUID, createdBy uuid.UUID) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account ID is required")
	}
	tx, err := newTransaction(txType, amount, currency, createdBy)
	if err != nil {
		return nil, err
	}
	tx.ToAccountID = &accountID
	tx.Note = strings.TrimSpace(note)
	tx.BranchID = branchID

	signed := tx.Amount
	if txType == TransactionTypeDiscount {
		signed = signed.Neg()
	}
	entry, err := NewEntry(tx.ID, accountID, signed, tx.Currency)
	if err != nil {
		return nil, err
	}
	tx.Entries = []Entry{*entry}
	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))
	return tx, nil
}

// NewAdjustment creates a single-sided correction with an explicit
// sign. Used by account adjustments and always succeeds on an active
// account regardless of the resulting balance.
func NewAdjustment(accountID uuid.UUID, signedAmount decimal.Decimal, currency valueobject.Currency, title, note string, date *time.Time, createdBy uuid.UUID) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account ID is required")
	}
	if signedAmount.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "adjustment amount cannot be zero")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "adjustment title is required")
	}
	tx, err := newTransaction(TransactionTypeAdjustment, signedAmount.Abs(), currency, createdBy)
	if err != nil {
		return nil, err
	}
	tx.ToAccountID = &accountID
	tx.Title = strings.TrimSpace(title)
	tx.Note = strings.TrimSpace(note)
	if date != nil {
		tx.PaymentDate = *date
	}

	entry, err := NewEntry(tx.ID, accountID, signedAmount.Round(2), tx.Currency)
	if err != nil {
		return nil, err
	}
	tx.Entries = []Entry{*entry}
	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))
	return tx, nil
}

// IsActive reports whether the transaction still counts toward invoice
// paid totals
func (t *Transaction) IsActive() bool {
	return t.Status == TransactionStatusActive
}

// ActiveEntries returns the original posting entries
func (t *Transaction) ActiveEntries() []Entry {
	entries := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Kind == EntryKindNormal {
			entries = append(entries, e)
		}
	}
	return entries
}

// DetachInvoice clears the invoice linkage after the invoice is
// voided. The transaction itself stays active and cancellable.
func (t *Transaction) DetachInvoice() {
	if t.InvoiceID == nil {
		return
	}
	t.InvoiceID = nil
	t.IncrementVersion()
}

// Cancel soft-cancels the transaction. It appends reversal entries that
// exactly offset the original postings and returns them so the caller
// can apply the balance movements in the same unit of work. Canceling
// an already-canceled transaction fails without side effects.
func (t *Transaction) Cancel(canceledBy uuid.UUID, reason string) ([]Entry, error) {
	if t.Status == TransactionStatusCanceled {
		return nil, shared.ErrAlreadyCanceled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "cancellation reason is required")
	}
	if canceledBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "canceling operator is required")
	}

	reversals := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Kind != EntryKindNormal {
			continue
		}
		reversals = append(reversals, *e.Reversal())
	}
	t.Entries = append(t.Entries, reversals...)

	now := time.Now()
	t.Status = TransactionStatusCanceled
	t.CanceledReason = reason
	t.CanceledAt = &now
	t.CanceledBy = &canceledBy
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionCanceledEvent(t, reason))
	return reversals, nil
}
