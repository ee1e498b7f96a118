package partner

import (
	"context"
	"fmt"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartnerService manages partners and their settlement ledgers. Partner
// records that move company funds post a matching ledger transaction on
// the company account, so the account balance and the partner position
// stay in step.
type PartnerService struct {
	uow           shared.UnitOfWork
	partnerRepo   partner.PartnerRepository
	partnerTxRepo partner.PartnerTransactionRepository
	accountRepo   account.AccountRepository
	ledgerTxRepo  ledger.TransactionRepository
	logger        *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	uow shared.UnitOfWork,
	partnerRepo partner.PartnerRepository,
	partnerTxRepo partner.PartnerTransactionRepository,
	accountRepo account.AccountRepository,
	ledgerTxRepo ledger.TransactionRepository,
	logger *zap.Logger,
) *PartnerService {
	return &PartnerService{
		uow:           uow,
		partnerRepo:   partnerRepo,
		partnerTxRepo: partnerTxRepo,
		accountRepo:   accountRepo,
		ledgerTxRepo:  ledgerTxRepo,
		logger:        logger,
	}
}

// CreatePartnerRequest represents a request to register a partner
type CreatePartnerRequest struct {
	Type           partner.PartnerType
	Name           string
	Currency       valueobject.Currency
	OpeningBalance decimal.Decimal
	ContactPhone   string
	ContactEmail   string
	Operator       shared.Operator
}

// CreatePartner registers a settlement partner
func (s *PartnerService) CreatePartner(ctx context.Context, req CreatePartnerRequest) (*partner.Partner, error) {
	p, err := partner.NewPartner(req.Type, req.Name, req.Currency, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	p.ContactPhone = req.ContactPhone
	p.ContactEmail = req.ContactEmail
	if err := s.partnerRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}
	s.logger.Info("partner created",
		zap.String("partner_id", p.ID.String()),
		zap.String("name", p.Name),
		zap.String("type", string(p.Type)),
	)
	return p, nil
}

// SetPartnerActive opens or closes a partner for new transactions
func (s *PartnerService) SetPartnerActive(ctx context.Context, partnerID uuid.UUID, active bool) error {
	p, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("failed to load partner: %w", err)
	}
	if active {
		p.Activate()
	} else {
		p.Deactivate()
	}
	if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}
	return nil
}

// RecordPartnerTxRequest represents a request to post a movement on a
// partner's ledger
type RecordPartnerTxRequest struct {
	PartnerID        uuid.UUID
	TxType           partner.PartnerTransactionType
	Amount           decimal.Decimal // positive magnitude; ADJUSTMENT takes it signed
	AdminAccountID   *uuid.UUID
	CounterPartnerID *uuid.UUID
	Note             string
	Operator         shared.Operator
}

// RecordPartnerTxResult represents the outcome of posting a record
type RecordPartnerTxResult struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Movement      decimal.Decimal `json:"movement"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	LedgerTxID    *uuid.UUID      `json:"ledger_tx_id,omitempty"`
}

// RecordPartnerTx posts a movement on a partner's ledger. WE_PAY_PARTNER
// and PARTNER_PAYS_US also move the named company account through a
// ledger transaction; transfers touch two partners and no account.
func (s *PartnerService) RecordPartnerTx(ctx context.Context, req RecordPartnerTxRequest) (*RecordPartnerTxResult, error) {
	if !req.Operator.Role.IsElevated() {
		return nil, shared.ErrUnauthorized
	}
	if req.TxType == partner.PartnerTxReversal {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "reversals are posted by voiding the original transaction")
	}

	var result *RecordPartnerTxResult
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		p, err := s.loadActivePartner(ctx, req.PartnerID)
		if err != nil {
			return err
		}

		var tx *partner.PartnerTransaction
		var counter *partner.Partner

		switch req.TxType {
		case partner.PartnerTxWePayPartner, partner.PartnerTxPartnerPaysUs:
			if req.AdminAccountID == nil {
				return shared.NewDomainError("VALIDATION_ERROR", "company account is required")
			}
			if req.TxType == partner.PartnerTxWePayPartner {
				tx, err = partner.NewWePayPartnerTransaction(p, req.Amount, *req.AdminAccountID, req.Note, req.Operator.UserID)
			} else {
				tx, err = partner.NewPartnerPaysUsTransaction(p, req.Amount, *req.AdminAccountID, req.Note, req.Operator.UserID)
			}
			if err != nil {
				return err
			}
			ledgerTx, err := s.postAccountMovement(ctx, *req.AdminAccountID, tx, req.Operator.UserID)
			if err != nil {
				return err
			}
			tx.WithLedgerTx(ledgerTx.ID)

		case partner.PartnerTxTransfer:
			if req.CounterPartnerID == nil {
				return shared.NewDomainError("VALIDATION_ERROR", "counter partner is required")
			}
			counter, err = s.loadActivePartner(ctx, *req.CounterPartnerID)
			if err != nil {
				return err
			}
			tx, err = partner.NewTransferTransaction(p, counter, req.Amount, req.Note, req.Operator.UserID)
			if err != nil {
				return err
			}

		case partner.PartnerTxAdjustment:
			tx, err = partner.NewAdjustmentTransaction(p, req.Amount, req.Note, req.Operator.UserID)
			if err != nil {
				return err
			}

		default:
			return shared.NewDomainError("VALIDATION_ERROR", "invalid partner transaction type")
		}

		p.ApplyMovement(tx.Movement)
		if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save partner: %w", err)
		}
		if counter != nil {
			counter.ApplyMovement(tx.Movement.Neg())
			if err := s.partnerRepo.SaveWithLock(ctx, counter); err != nil {
				return fmt.Errorf("failed to save counter partner: %w", err)
			}
		}
		if err := s.partnerTxRepo.Save(ctx, tx); err != nil {
			return fmt.Errorf("failed to save partner transaction: %w", err)
		}

		s.logger.Info("partner transaction posted",
			zap.String("partner_tx_id", tx.ID.String()),
			zap.String("partner_id", p.ID.String()),
			zap.String("type", tx.TxType.String()),
			zap.String("movement", tx.Movement.String()),
		)

		result = &RecordPartnerTxResult{
			TransactionID: tx.ID,
			Movement:      tx.Movement,
			BalanceAfter:  tx.BalanceAfter,
			LedgerTxID:    tx.LedgerTxID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PartnerService) loadActivePartner(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	p, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner: %w", err)
	}
	if !p.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("partner %s is inactive", p.Name))
	}
	return p, nil
}

// postAccountMovement posts the company-account side of a partner
// record as a ledger adjustment and applies it to the account balance.
// The account movement carries the same sign as the partner movement:
// paying a partner drains the account, being paid fills it.
func (s *PartnerService) postAccountMovement(ctx context.Context, accountID uuid.UUID, tx *partner.PartnerTransaction, createdBy uuid.UUID) (*ledger.Transaction, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company account: %w", err)
	}
	if !acc.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "company account is inactive")
	}
	if !acc.Owner.IsAdmin() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "account is not a company account")
	}
	if acc.Currency != tx.CurrencyCode {
		return nil, shared.ErrCurrencyMismatch
	}

	title := fmt.Sprintf("Partner settlement %s", tx.TxType)
	ledgerTx, err := ledger.NewAdjustment(acc.ID, tx.Movement, acc.Currency, title, tx.Note, nil, createdBy)
	if err != nil {
		return nil, err
	}
	for _, e := range ledgerTx.ActiveEntries() {
		acc.ApplyMovement(e.Amount)
	}
	if err := s.accountRepo.SaveWithLock(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to save company account: %w", err)
	}
	if err := s.ledgerTxRepo.Save(ctx, ledgerTx); err != nil {
		return nil, fmt.Errorf("failed to save ledger transaction: %w", err)
	}
	return ledgerTx, nil
}

// VoidPartnerTxRequest represents a request to void a posted record
type VoidPartnerTxRequest struct {
	TransactionID uuid.UUID
	Reason        string
	Operator      shared.Operator
}

// VoidPartnerTx voids a posted partner transaction by appending a
// REVERSAL record with the opposite movement. Transfers reverse both
// partners; records that moved a company account get their linked
// ledger transaction canceled as well.
func (s *PartnerService) VoidPartnerTx(ctx context.Context, req VoidPartnerTxRequest) (*RecordPartnerTxResult, error) {
	if !req.Operator.Role.IsElevated() {
		return nil, shared.ErrUnauthorized
	}

	var result *RecordPartnerTxResult
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		tx, err := s.partnerTxRepo.FindByID(ctx, req.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to load partner transaction: %w", err)
		}
		p, err := s.partnerRepo.FindByID(ctx, tx.PartnerID)
		if err != nil {
			return fmt.Errorf("failed to load partner: %w", err)
		}

		reversal, err := tx.Void(p.CurrentBalance, req.Reason, req.Operator.UserID)
		if err != nil {
			return err
		}

		p.ApplyMovement(reversal.Movement)
		if err := s.partnerRepo.SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save partner: %w", err)
		}

		if tx.CounterPartnerID != nil {
			counter, err := s.partnerRepo.FindByID(ctx, *tx.CounterPartnerID)
			if err != nil {
				return fmt.Errorf("failed to load counter partner: %w", err)
			}
			counter.ApplyMovement(tx.Movement)
			if err := s.partnerRepo.SaveWithLock(ctx, counter); err != nil {
				return fmt.Errorf("failed to save counter partner: %w", err)
			}
		}

		if tx.LedgerTxID != nil {
			if err := s.cancelLinkedLedgerTx(ctx, *tx.LedgerTxID, req.Reason, req.Operator.UserID); err != nil {
				return err
			}
		}

		if err := s.partnerTxRepo.SaveWithLock(ctx, tx); err != nil {
			return fmt.Errorf("failed to save partner transaction: %w", err)
		}
		if err := s.partnerTxRepo.Save(ctx, reversal); err != nil {
			return fmt.Errorf("failed to save reversal: %w", err)
		}

		s.logger.Info("partner transaction voided",
			zap.String("partner_tx_id", tx.ID.String()),
			zap.String("reversal_id", reversal.ID.String()),
			zap.String("reason", req.Reason),
		)

		result = &RecordPartnerTxResult{
			TransactionID: reversal.ID,
			Movement:      reversal.Movement,
			BalanceAfter:  reversal.BalanceAfter,
			LedgerTxID:    tx.LedgerTxID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// cancelLinkedLedgerTx cancels the ledger transaction behind a partner
// record and applies its reversal entries to the company account
func (s *PartnerService) cancelLinkedLedgerTx(ctx context.Context, ledgerTxID uuid.UUID, reason string, canceledBy uuid.UUID) error {
	ledgerTx, err := s.ledgerTxRepo.FindByID(ctx, ledgerTxID)
	if err != nil {
		return fmt.Errorf("failed to load ledger transaction: %w", err)
	}
	reversals, err := ledgerTx.Cancel(canceledBy, reason)
	if err != nil {
		return err
	}
	for _, e := range reversals {
		acc, err := s.accountRepo.FindByID(ctx, e.AccountID)
		if err != nil {
			return fmt.Errorf("failed to load company account: %w", err)
		}
		acc.ApplyMovement(e.Amount)
		if err := s.accountRepo.SaveWithLock(ctx, acc); err != nil {
			return fmt.Errorf("failed to save company account: %w", err)
		}
	}
	if err := s.ledgerTxRepo.SaveWithLock(ctx, ledgerTx); err != nil {
		return fmt.Errorf("failed to save ledger transaction: %w", err)
	}
	return nil
}

// GetPartner returns a partner by ID
func (s *PartnerService) GetPartner(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	return s.partnerRepo.FindByID(ctx, id)
}

// ListPartners returns partners matching the filter
func (s *PartnerService) ListPartners(ctx context.Context, filter partner.PartnerFilter) (*shared.Paginated[partner.Partner], error) {
	items, err := s.partnerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	total, err := s.partnerRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count partners: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListPartnerTransactions returns the records on a partner's ledger
func (s *PartnerService) ListPartnerTransactions(ctx context.Context, partnerID uuid.UUID, filter partner.PartnerTransactionFilter) (*shared.Paginated[partner.PartnerTransaction], error) {
	items, err := s.partnerTxRepo.FindByPartner(ctx, partnerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner transactions: %w", err)
	}
	filter.PartnerID = &partnerID
	total, err := s.partnerTxRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count partner transactions: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
