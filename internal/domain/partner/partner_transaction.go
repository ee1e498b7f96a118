package partner

import (
	"strings"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerTransactionType represents the type of partner ledger movement
type PartnerTransactionType string

const (
	// PartnerTxWePayPartner records funds leaving the company toward a partner
	PartnerTxWePayPartner PartnerTransactionType = "WE_PAY_PARTNER"
	// PartnerTxPartnerPaysUs records funds arriving from a partner
	PartnerTxPartnerPaysUs PartnerTransactionType = "PARTNER_PAYS_US"
	// PartnerTxTransfer moves a position between two partners
	PartnerTxTransfer PartnerTransactionType = "PARTNER_TO_PARTNER_TRANSFER"
	// PartnerTxAdjustment is a direct signed correction without account movement
	PartnerTxAdjustment PartnerTransactionType = "ADJUSTMENT"
	// PartnerTxReversal offsets a previously posted transaction
	PartnerTxReversal PartnerTransactionType = "REVERSAL"
)

// String returns the string representation of PartnerTransactionType
func (t PartnerTransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t PartnerTransactionType) IsValid() bool {
	switch t {
	case PartnerTxWePayPartner, PartnerTxPartnerPaysUs, PartnerTxTransfer,
		PartnerTxAdjustment, PartnerTxReversal:
		return true
	}
	return false
}

// RequiresAdminAccount reports whether the type moves company funds
// and therefore needs a company account to post against
func (t PartnerTransactionType) RequiresAdminAccount() bool {
	return t == PartnerTxWePayPartner || t == PartnerTxPartnerPaysUs
}

// PartnerTransactionStatus represents the lifecycle of a partner transaction
type PartnerTransactionStatus string

const (
	PartnerTxStatusPosted PartnerTransactionStatus = "posted"
	PartnerTxStatusVoided PartnerTransactionStatus = "voided"
)

// IsValid checks if the status is valid
func (s PartnerTransactionStatus) IsValid() bool {
	return s == PartnerTxStatusPosted || s == PartnerTxStatusVoided
}

// PartnerTransaction records one movement on a partner's ledger.
// Records are never edited after posting; voiding one posts a REVERSAL
// record with the opposite movement and marks the original voided.
type PartnerTransaction struct {
	shared.BaseAggregateRoot
	PartnerID        uuid.UUID
	TxType           PartnerTransactionType
	Status           PartnerTransactionStatus
	Movement         decimal.Decimal // signed, from the primary partner's perspective
	Payment          decimal.Decimal // absolute amount moved
	CurrencyCode     valueobject.Currency
	BalanceBefore    decimal.Decimal // primary partner balance before posting
	BalanceAfter     decimal.Decimal // primary partner balance after posting
	AdminAccountID   *uuid.UUID      // company account the funds moved through
	CounterPartnerID *uuid.UUID      // other side of a transfer
	ReversalOfID     *uuid.UUID      // original transaction a REVERSAL offsets
	LedgerTxID       *uuid.UUID      // ledger transaction carrying the account movement
	Note             string
	VoidReason       string
	VoidedAt         *time.Time
	CreatedBy        uuid.UUID
	TransactionDate  time.Time
}

func newPartnerTransaction(
	partnerID uuid.UUID,
	txType PartnerTransactionType,
	movement decimal.Decimal,
	currency valueobject.Currency,
	balanceBefore decimal.Decimal,
	createdBy uuid.UUID,
) (*PartnerTransaction, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "partner ID is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid partner transaction type")
	}
	if movement.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "movement cannot be zero")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "creator is required")
	}
	movement = movement.Round(2)
	return &PartnerTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		TxType:            txType,
		Status:            PartnerTxStatusPosted,
		Movement:          movement,
		Payment:           movement.Abs(),
		CurrencyCode:      currency,
		BalanceBefore:     balanceBefore.Round(2),
		BalanceAfter:      balanceBefore.Add(movement).Round(2),
		CreatedBy:         createdBy,
		TransactionDate:   time.Now(),
	}, nil
}

// NewWePayPartnerTransaction records the company paying a partner.
// Funds leave the company account; the partner's position moves toward
// the partner-owes-company side.
func NewWePayPartnerTransaction(p *Partner, amount decimal.Decimal, adminAccountID uuid.UUID, note string, createdBy uuid.UUID) (*PartnerTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	if adminAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "company account is required")
	}
	tx, err := newPartnerTransaction(p.ID, PartnerTxWePayPartner, amount.Neg(), p.CurrencyCode, p.CurrentBalance, createdBy)
	if err != nil {
		return nil, err
	}
	tx.AdminAccountID = &adminAccountID
	tx.Note = strings.TrimSpace(note)
	return tx, nil
}

// NewPartnerPaysUsTransaction records a partner paying the company.
// Funds enter the company account; the partner's position moves toward
// the company-owes-partner side.
func NewPartnerPaysUsTransaction(p *Partner, amount decimal.Decimal, adminAccountID uuid.UUID, note string, createdBy uuid.UUID) (*PartnerTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	if adminAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "company account is required")
	}
	tx, err := newPartnerTransaction(p.ID, PartnerTxPartnerPaysUs, amount, p.CurrencyCode, p.CurrentBalance, createdBy)
	if err != nil {
		return nil, err
	}
	tx.AdminAccountID = &adminAccountID
	tx.Note = strings.TrimSpace(note)
	return tx, nil
}

// NewTransferTransaction moves a position from one partner to another.
// The movement is recorded from the source partner's perspective; the
// caller applies the opposite movement to the counter partner.
func NewTransferTransaction(from, to *Partner, amount decimal.Decimal, note string, createdBy uuid.UUID) (*PartnerTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	if from.ID == to.ID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "cannot transfer between the same partner")
	}
	if from.CurrencyCode != to.CurrencyCode {
		return nil, shared.ErrCurrencyMismatch
	}
	tx, err := newPartnerTransaction(from.ID, PartnerTxTransfer, amount.Neg(), from.CurrencyCode, from.CurrentBalance, createdBy)
	if err != nil {
		return nil, err
	}
	tx.CounterPartnerID = &to.ID
	tx.Note = strings.TrimSpace(note)
	return tx, nil
}

// NewAdjustmentTransaction records a direct signed correction on a
// partner balance without any company account movement
func NewAdjustmentTransaction(p *Partner, signedAmount decimal.Decimal, note string, createdBy uuid.UUID) (*PartnerTransaction, error) {
	tx, err := newPartnerTransaction(p.ID, PartnerTxAdjustment, signedAmount, p.CurrencyCode, p.CurrentBalance, createdBy)
	if err != nil {
		return nil, err
	}
	tx.Note = strings.TrimSpace(note)
	return tx, nil
}

// WithLedgerTx links the ledger transaction that carried the company
// account movement for this record
func (t *PartnerTransaction) WithLedgerTx(ledgerTxID uuid.UUID) *PartnerTransaction {
	t.LedgerTxID = &ledgerTxID
	return t
}

// IsVoided reports whether the transaction has been voided
func (t *PartnerTransaction) IsVoided() bool {
	return t.Status == PartnerTxStatusVoided
}

// Void marks the transaction voided and returns the REVERSAL record
// that offsets it. The reversal carries the opposite movement from the
// same partner's perspective; for transfers the caller also reverses
// the counter partner. Voiding a voided transaction fails without side
// effects, and a REVERSAL itself can never be voided.
func (t *PartnerTransaction) Void(balanceBefore decimal.Decimal, reason string, voidedBy uuid.UUID) (*PartnerTransaction, error) {
	if t.Status == PartnerTxStatusVoided {
		return nil, shared.ErrAlreadyCanceled
	}
	if t.TxType == PartnerTxReversal {
		return nil, shared.NewDomainError("INVALID_STATE", "reversal transactions cannot be voided")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "void reason is required")
	}

	reversal, err := newPartnerTransaction(t.PartnerID, PartnerTxReversal, t.Movement.Neg(), t.CurrencyCode, balanceBefore, voidedBy)
	if err != nil {
		return nil, err
	}
	reversal.ReversalOfID = &t.ID
	reversal.AdminAccountID = t.AdminAccountID
	reversal.CounterPartnerID = t.CounterPartnerID
	reversal.Note = reason

	now := time.Now()
	t.Status = PartnerTxStatusVoided
	t.VoidReason = reason
	t.VoidedAt = &now
	t.IncrementVersion()
	return reversal, nil
}
