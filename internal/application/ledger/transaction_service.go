package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService orchestrates ledger postings: it loads the
// accounts, builds the domain transaction, applies the balance
// movements, and settles any linked invoice, all inside one unit of
// work.
type TransactionService struct {
	uow         shared.UnitOfWork
	txRepo      ledger.TransactionRepository
	entryRepo   ledger.EntryRepository
	accountRepo account.AccountRepository
	methodRepo  account.PaymentMethodRepository
	invoiceRepo billing.InvoiceRepository
	logger      *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	uow shared.UnitOfWork,
	txRepo ledger.TransactionRepository,
	entryRepo ledger.EntryRepository,
	accountRepo account.AccountRepository,
	methodRepo account.PaymentMethodRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		uow:         uow,
		txRepo:      txRepo,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		methodRepo:  methodRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// CreateTransactionRequest represents a request to post a ledger transaction
type CreateTransactionRequest struct {
	Type          ledger.TransactionType
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	InvoiceID     *uuid.UUID
	RefundReason  *ledger.RefundReason
	Note          string
	PaymentDate   *time.Time
	Operator      shared.Operator
}

// CreateTransactionResult represents the outcome of a posting
type CreateTransactionResult struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Entries       int             `json:"entries"`
	InvoiceStatus *string         `json:"invoice_status,omitempty"`
}

// CreateTransaction posts a new ledger transaction. Every call creates
// exactly one transaction; duplicate submission protection lives at the
// HTTP layer via idempotency keys, never here.
func (s *TransactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResult, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid transaction type")
	}
	if req.Type == ledger.TransactionTypeAdjustment {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "adjustments are posted through the account adjust operation")
	}
	if req.Type.RequiresElevatedRole() && !req.Operator.Role.IsElevated() {
		return nil, shared.ErrUnauthorized
	}

	var result *CreateTransactionResult
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var tx *ledger.Transaction
		var err error
		if req.Type.IsTwoSided() {
			tx, err = s.buildTransfer(ctx, req)
		} else {
			tx, err = s.buildSingleSided(ctx, req)
		}
		if err != nil {
			return err
		}

		var invoiceStatus *string
		if tx.InvoiceID != nil {
			status, err := s.applyToInvoice(ctx, tx)
			if err != nil {
				return err
			}
			invoiceStatus = &status
		}

		if err := s.applyEntries(ctx, tx.ActiveEntries()); err != nil {
			return err
		}
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		s.logger.Info("transaction posted",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("type", string(tx.Type)),
			zap.String("amount", tx.Amount.String()),
			zap.String("currency", string(tx.Currency)),
		)

		result = &CreateTransactionResult{
			TransactionID: tx.ID,
			Status:        string(tx.Status),
			Amount:        tx.Amount,
			Entries:       len(tx.Entries),
			InvoiceStatus: invoiceStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TransactionService) buildTransfer(ctx context.Context, req CreateTransactionRequest) (*ledger.Transaction, error) {
	if req.FromAccountID == nil || req.ToAccountID == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "both accounts are required")
	}

	from, err := s.loadActiveAccount(ctx, *req.FromAccountID, req.Currency)
	if err != nil {
		return nil, err
	}
	to, err := s.loadActiveAccount(ctx, *req.ToAccountID, req.Currency)
	if err != nil {
		return nil, err
	}

	if req.Type == ledger.TransactionTypePayment {
		if err := s.checkPaymentMethod(ctx, from); err != nil {
			return nil, err
		}
	}

	return ledger.NewTransfer(ledger.TransferSpec{
		Type:          req.Type,
		Amount:        req.Amount,
		Currency:      req.Currency,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		InvoiceID:     req.InvoiceID,
		RefundReason:  req.RefundReason,
		Note:          req.Note,
		PaymentDate:   req.PaymentDate,
		BranchID:      req.Operator.BranchID,
		CreatedBy:     req.Operator.UserID,
	})
}

func (s *TransactionService) buildSingleSided(ctx context.Context, req CreateTransactionRequest) (*ledger.Transaction, error) {
	if req.ToAccountID == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account is required")
	}
	acc, err := s.loadActiveAccount(ctx, *req.ToAccountID, req.Currency)
	if err != nil {
		return nil, err
	}
	if acc.Owner.Type != account.OwnerTypeCustomer {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "charges and discounts apply to customer accounts only")
	}

	if req.Type == ledger.TransactionTypeCharge {
		return ledger.NewCharge(acc.ID, req.Amount, req.Currency, req.Note, req.Operator.BranchID, req.Operator.UserID)
	}
	return ledger.NewDiscount(acc.ID, req.Amount, req.Currency, req.Note, req.Operator.BranchID, req.Operator.UserID)
}

func (s *TransactionService) loadActiveAccount(ctx context.Context, id uuid.UUID, currency valueobject.Currency) (*account.Account, error) {
	acc, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !acc.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "account is deactivated")
	}
	if acc.Currency != currency {
		return nil, shared.ErrCurrencyMismatch
	}
	return acc, nil
}

func (s *TransactionService) checkPaymentMethod(ctx context.Context, acc *account.Account) error {
	if acc.PaymentMethodID == nil {
		return shared.NewDomainError("VALIDATION_ERROR", "paying account has no payment method")
	}
	method, err := s.methodRepo.FindByID(ctx, *acc.PaymentMethodID)
	if err != nil {
		return fmt.Errorf("failed to load payment method: %w", err)
	}
	if !method.IsActive {
		return shared.NewDomainError("INVALID_STATE", "payment method is deactivated")
	}
	return nil
}

func (s *TransactionService) applyToInvoice(ctx context.Context, tx *ledger.Transaction) (string, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, *tx.InvoiceID)
	if err != nil {
		return "", fmt.Errorf("failed to load invoice: %w", err)
	}
	if err := invoice.ApplyPayment(tx.Amount, tx.ID); err != nil {
		return "", err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return "", fmt.Errorf("failed to save invoice: %w", err)
	}
	return string(invoice.Status), nil
}

// applyEntries mirrors a batch of signed entries onto the account balances
func (s *TransactionService) applyEntries(ctx context.Context, entries []ledger.Entry) error {
	for _, e := range entries {
		acc, err := s.accountRepo.FindByID(ctx, e.AccountID)
		if err != nil {
			return fmt.Errorf("failed to load account for entry: %w", err)
		}
		acc.ApplyMovement(e.Amount)
		if err := s.accountRepo.SaveWithLock(ctx, acc); err != nil {
			return fmt.Errorf("failed to save account balance: %w", err)
		}
	}
	return nil
}

// CancelTransactionRequest represents a request to soft-cancel a transaction
type CancelTransactionRequest struct {
	TransactionID uuid.UUID
	Reason        string
	Operator      shared.Operator
}

// CancelTransaction soft-cancels a posted transaction: reversal entries
// are appended, account balances restored, and any linked invoice
// recomputed from its remaining active payments. The original rows stay
// visible forever.
func (s *TransactionService) CancelTransaction(ctx context.Context, req CancelTransactionRequest) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		tx, err := s.txRepo.FindByID(ctx, req.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		reversals, err := tx.Cancel(req.Operator.UserID, req.Reason)
		if err != nil {
			return err
		}

		if err := s.applyEntries(ctx, reversals); err != nil {
			return err
		}

		if tx.InvoiceID != nil && tx.Type == ledger.TransactionTypePayment {
			invoice, err := s.invoiceRepo.FindByID(ctx, *tx.InvoiceID)
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}
			if err := invoice.ReleasePayment(tx.ID, req.Reason); err != nil {
				return err
			}
			if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
				return fmt.Errorf("failed to save invoice: %w", err)
			}
		}

		if err := s.txRepo.SaveWithLock(ctx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		s.logger.Info("transaction canceled",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("reason", req.Reason),
		)
		return nil
	})
}

// GetTransaction returns a transaction with its entries
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	return s.txRepo.FindByID(ctx, id)
}

// ListTransactions returns transactions matching the filter
func (s *TransactionService) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) (*shared.Paginated[ledger.Transaction], error) {
	items, err := s.txRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.txRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListEntries returns the account statement: every signed entry posted
// against the account, reversals included
func (s *TransactionService) ListEntries(ctx context.Context, accountID uuid.UUID, filter ledger.EntryFilter) (*shared.Paginated[ledger.Entry], error) {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	items, err := s.entryRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	total, err := s.entryRepo.CountByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
