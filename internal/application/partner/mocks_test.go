package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
)

// MockUnitOfWork runs the callback directly
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// MockPartnerRepository is a mock implementation of PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAll(ctx context.Context, filter partner.PartnerFilter) ([]partner.Partner, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) SaveWithLock(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Count(ctx context.Context, filter partner.PartnerFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPartnerTransactionRepository is a mock implementation of PartnerTransactionRepository
type MockPartnerTransactionRepository struct {
	mock.Mock
}

func (m *MockPartnerTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.PartnerTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.PartnerTransaction), args.Error(1)
}

func (m *MockPartnerTransactionRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID, filter partner.PartnerTransactionFilter) ([]partner.PartnerTransaction, error) {
	args := m.Called(ctx, partnerID, filter)
	return args.Get(0).([]partner.PartnerTransaction), args.Error(1)
}

func (m *MockPartnerTransactionRepository) FindAll(ctx context.Context, filter partner.PartnerTransactionFilter) ([]partner.PartnerTransaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.PartnerTransaction), args.Error(1)
}

func (m *MockPartnerTransactionRepository) Save(ctx context.Context, tx *partner.PartnerTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPartnerTransactionRepository) SaveWithLock(ctx context.Context, tx *partner.PartnerTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPartnerTransactionRepository) Count(ctx context.Context, filter partner.PartnerTransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByOwner(ctx context.Context, owner account.OwnerRef, currency valueobject.Currency) (*account.Account, error) {
	args := m.Called(ctx, owner, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter account.AccountFilter) ([]account.Account, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]account.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) Count(ctx context.Context, filter account.AccountFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ExistsForOwner(ctx context.Context, owner account.OwnerRef, currency valueobject.Currency) (bool, error) {
	args := m.Called(ctx, owner, currency)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter ledger.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
