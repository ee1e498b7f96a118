package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService manages account lifecycle and adjustments
type AccountService struct {
	uow         shared.UnitOfWork
	accountRepo account.AccountRepository
	methodRepo  account.PaymentMethodRepository
	txRepo      ledger.TransactionRepository
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	uow shared.UnitOfWork,
	accountRepo account.AccountRepository,
	methodRepo account.PaymentMethodRepository,
	txRepo ledger.TransactionRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		uow:         uow,
		accountRepo: accountRepo,
		methodRepo:  methodRepo,
		txRepo:      txRepo,
		logger:      logger,
	}
}

// CreateAccountRequest represents a request to open an account
type CreateAccountRequest struct {
	Owner           account.OwnerRef
	Currency        valueobject.Currency
	PaymentMethodID *uuid.UUID
}

// CreateAccount opens an account for an owner. An owner holds at most
// one account per currency.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*account.Account, error) {
	if err := req.Owner.Validate(); err != nil {
		return nil, err
	}
	exists, err := s.accountRepo.ExistsForOwner(ctx, req.Owner, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}
	if req.PaymentMethodID != nil {
		if _, err := s.methodRepo.FindByID(ctx, *req.PaymentMethodID); err != nil {
			return nil, fmt.Errorf("failed to resolve payment method: %w", err)
		}
	}

	acc, err := account.NewAccount(req.Owner, req.Currency, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("account_id", acc.ID.String()),
		zap.String("owner_type", string(acc.Owner.Type)),
		zap.String("currency", string(acc.Currency)),
	)
	return acc, nil
}

// GetAccount returns an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

// GetBalance returns the current balance of an account
func (s *AccountService) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, valueobject.Currency, error) {
	acc, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, "", err
	}
	return acc.Balance, acc.Currency, nil
}

// ListAccounts returns accounts matching the filter
func (s *AccountService) ListAccounts(ctx context.Context, filter account.AccountFilter) (*shared.Paginated[account.Account], error) {
	items, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	total, err := s.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SetActive activates or deactivates an account. Deactivation requires
// a zero balance.
func (s *AccountService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	acc, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if active {
		acc.Activate()
	} else {
		if err := acc.Deactivate(); err != nil {
			return err
		}
	}
	if err := s.accountRepo.SaveWithLock(ctx, acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// AdjustRequest represents a manual balance correction
type AdjustRequest struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal // signed
	Title     string
	Date      *time.Time
	Note      string
	Operator  shared.Operator
}

// Adjust posts a signed correction to an active account. The movement
// is recorded as a regular ledger transaction so the balance stays the
// sum of the account's entries.
func (s *AccountService) Adjust(ctx context.Context, req AdjustRequest) (*ledger.Transaction, error) {
	var tx *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		acc, err := s.accountRepo.FindByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}
		if !acc.IsActive {
			return shared.NewDomainError("INVALID_STATE", "account is deactivated")
		}

		tx, err = ledger.NewAdjustment(acc.ID, req.Amount, acc.Currency, req.Title, req.Note, req.Date, req.Operator.UserID)
		if err != nil {
			return err
		}

		acc.ApplyMovement(req.Amount.Round(2))
		if err := s.accountRepo.SaveWithLock(ctx, acc); err != nil {
			return fmt.Errorf("failed to save account balance: %w", err)
		}
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save adjustment: %w", err)
		}

		s.logger.Info("account adjusted",
			zap.String("account_id", acc.ID.String()),
			zap.String("amount", req.Amount.String()),
			zap.String("title", req.Title),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CreatePaymentMethod registers a new payment method
func (s *AccountService) CreatePaymentMethod(ctx context.Context, name string, kind account.PaymentMethodKind) (*account.PaymentMethod, error) {
	method, err := account.NewPaymentMethod(name, kind)
	if err != nil {
		return nil, err
	}
	if err := s.methodRepo.Save(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to save payment method: %w", err)
	}
	return method, nil
}

// ListPaymentMethods returns all payment methods
func (s *AccountService) ListPaymentMethods(ctx context.Context, filter shared.Filter) ([]account.PaymentMethod, error) {
	methods, err := s.methodRepo.FindAll(ctx, filter)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}
