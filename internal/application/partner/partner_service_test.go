package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
)

type partnerServiceMocks struct {
	uow           *MockUnitOfWork
	partnerRepo   *MockPartnerRepository
	partnerTxRepo *MockPartnerTransactionRepository
	accountRepo   *MockAccountRepository
	ledgerTxRepo  *MockTransactionRepository
}

func newTestPartnerService() (*PartnerService, *partnerServiceMocks) {
	m := &partnerServiceMocks{
		uow:           new(MockUnitOfWork),
		partnerRepo:   new(MockPartnerRepository),
		partnerTxRepo: new(MockPartnerTransactionRepository),
		accountRepo:   new(MockAccountRepository),
		ledgerTxRepo:  new(MockTransactionRepository),
	}
	svc := NewPartnerService(m.uow, m.partnerRepo, m.partnerTxRepo, m.accountRepo, m.ledgerTxRepo, zap.NewNop())
	return svc, m
}

func adminOperator() shared.Operator {
	return shared.Operator{
		UserID: uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Role:   shared.RoleAdmin,
	}
}

func newActivePartner(t *testing.T, opening string) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(partner.PartnerTypeShipper, "Gulf Freight LLC", valueobject.USD, decimal.RequireFromString(opening))
	require.NoError(t, err)
	return p
}

func newCompanyAccount(t *testing.T, currency valueobject.Currency) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.AdminOwner(), currency, nil)
	require.NoError(t, err)
	return acc
}

func TestPartnerService_CreatePartner_Success(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	m.partnerRepo.On("Save", ctx, mock.AnythingOfType("*partner.Partner")).Return(nil)

	p, err := svc.CreatePartner(ctx, CreatePartnerRequest{
		Type:           partner.PartnerTypeAgent,
		Name:           "  Horizon Cargo Agency  ",
		Currency:       valueobject.AED,
		OpeningBalance: decimal.RequireFromString("-120.00"),
		ContactPhone:   "+971-4-5550100",
		ContactEmail:   "accounts@horizoncargo.example",
		Operator:       adminOperator(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Horizon Cargo Agency", p.Name)
	assert.True(t, p.CurrentBalance.Equal(decimal.RequireFromString("-120.00")))
	assert.Equal(t, "+971-4-5550100", p.ContactPhone)
	assert.True(t, p.IsActive)
	m.partnerRepo.AssertExpectations(t)
}

func TestPartnerService_CreatePartner_InvalidType(t *testing.T) {
	svc, m := newTestPartnerService()

	_, err := svc.CreatePartner(context.Background(), CreatePartnerRequest{
		Type:     partner.PartnerType("broker"),
		Name:     "Broker LLC",
		Currency: valueobject.USD,
		Operator: adminOperator(),
	})

	assert.Error(t, err)
	m.partnerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartnerService_SetPartnerActive(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "0")
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
	m.partnerRepo.On("SaveWithLock", ctx, p).Return(nil)

	require.NoError(t, svc.SetPartnerActive(ctx, p.ID, false))
	assert.False(t, p.IsActive)

	require.NoError(t, svc.SetPartnerActive(ctx, p.ID, true))
	assert.True(t, p.IsActive)
}

func TestPartnerService_RecordPartnerTx_WePayPartner(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "100.00")
	acc := newCompanyAccount(t, valueobject.USD)

	m.uow.On("Execute", ctx)
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
	m.accountRepo.On("FindByID", ctx, acc.ID).Return(acc, nil)
	m.accountRepo.On("SaveWithLock", ctx, acc).Return(nil)
	m.ledgerTxRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	m.partnerRepo.On("SaveWithLock", ctx, p).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	result, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
		PartnerID:      p.ID,
		TxType:         partner.PartnerTxWePayPartner,
		Amount:         decimal.RequireFromString("40.00"),
		AdminAccountID: &acc.ID,
		Note:           "june settlement",
		Operator:       adminOperator(),
	})

	require.NoError(t, err)
	assert.True(t, result.Movement.Equal(decimal.RequireFromString("-40.00")))
	assert.True(t, result.BalanceAfter.Equal(decimal.RequireFromString("60.00")))
	require.NotNil(t, result.LedgerTxID)

	assert.True(t, p.CurrentBalance.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("-40.00")))
	m.ledgerTxRepo.AssertExpectations(t)
	m.partnerTxRepo.AssertExpectations(t)
}

func TestPartnerService_RecordPartnerTx_PartnerPaysUs(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "-30.00")
	acc := newCompanyAccount(t, valueobject.USD)

	m.uow.On("Execute", ctx)
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
	m.accountRepo.On("FindByID", ctx, acc.ID).Return(acc, nil)
	m.accountRepo.On("SaveWithLock", ctx, acc).Return(nil)
	m.ledgerTxRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	m.partnerRepo.On("SaveWithLock", ctx, p).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	result, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
		PartnerID:      p.ID,
		TxType:         partner.PartnerTxPartnerPaysUs,
		Amount:         decimal.RequireFromString("30.00"),
		AdminAccountID: &acc.ID,
		Operator:       adminOperator(),
	})

	require.NoError(t, err)
	assert.True(t, result.Movement.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, result.BalanceAfter.IsZero())
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("30.00")))
}

func TestPartnerService_RecordPartnerTx_Transfer(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	source := newActivePartner(t, "80.00")
	dest, err := partner.NewPartner(partner.PartnerTypeConsignee, "Delta Consignments", valueobject.USD, decimal.Zero)
	require.NoError(t, err)

	m.uow.On("Execute", ctx)
	m.partnerRepo.On("FindByID", ctx, source.ID).Return(source, nil)
	m.partnerRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
	m.partnerRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*partner.Partner")).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	result, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
		PartnerID:        source.ID,
		TxType:           partner.PartnerTxTransfer,
		Amount:           decimal.RequireFromString("50.00"),
		CounterPartnerID: &dest.ID,
		Operator:         adminOperator(),
	})

	require.NoError(t, err)
	assert.True(t, result.Movement.Equal(decimal.RequireFromString("-50.00")))
	assert.Nil(t, result.LedgerTxID)
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, dest.CurrentBalance.Equal(decimal.RequireFromString("50.00")))
	m.partnerRepo.AssertNumberOfCalls(t, "SaveWithLock", 2)
	m.accountRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPartnerService_RecordPartnerTx_Adjustment(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "20.00")

	m.uow.On("Execute", ctx)
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
	m.partnerRepo.On("SaveWithLock", ctx, p).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	result, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
		PartnerID: p.ID,
		TxType:    partner.PartnerTxAdjustment,
		Amount:    decimal.RequireFromString("-5.25"),
		Note:      "opening balance correction",
		Operator:  adminOperator(),
	})

	require.NoError(t, err)
	assert.True(t, result.Movement.Equal(decimal.RequireFromString("-5.25")))
	assert.True(t, p.CurrentBalance.Equal(decimal.RequireFromString("14.75")))
	m.accountRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPartnerService_RecordPartnerTx_Guards(t *testing.T) {
	t.Run("requires elevated role", func(t *testing.T) {
		svc, m := newTestPartnerService()

		_, err := svc.RecordPartnerTx(context.Background(), RecordPartnerTxRequest{
			PartnerID: uuid.New(),
			TxType:    partner.PartnerTxAdjustment,
			Amount:    decimal.NewFromInt(1),
			Operator:  shared.Operator{UserID: uuid.New(), Role: shared.RoleStaff},
		})

		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		m.uow.AssertNotCalled(t, "Execute", mock.Anything)
	})

	t.Run("reversal type rejected", func(t *testing.T) {
		svc, _ := newTestPartnerService()

		_, err := svc.RecordPartnerTx(context.Background(), RecordPartnerTxRequest{
			PartnerID: uuid.New(),
			TxType:    partner.PartnerTxReversal,
			Amount:    decimal.NewFromInt(1),
			Operator:  adminOperator(),
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "voiding the original")
	})

	t.Run("settlement without company account", func(t *testing.T) {
		svc, m := newTestPartnerService()
		ctx := context.Background()
		p := newActivePartner(t, "0")

		m.uow.On("Execute", ctx)
		m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
			PartnerID: p.ID,
			TxType:    partner.PartnerTxWePayPartner,
			Amount:    decimal.NewFromInt(10),
			Operator:  adminOperator(),
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "company account is required")
	})

	t.Run("non-company account rejected", func(t *testing.T) {
		svc, m := newTestPartnerService()
		ctx := context.Background()
		p := newActivePartner(t, "0")
		owner, err := account.NewOwnerRef(account.OwnerTypeCustomer, uuid.New())
		require.NoError(t, err)
		acc, err := account.NewAccount(owner, valueobject.USD, nil)
		require.NoError(t, err)

		m.uow.On("Execute", ctx)
		m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
		m.accountRepo.On("FindByID", ctx, acc.ID).Return(acc, nil)

		_, err = svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
			PartnerID:      p.ID,
			TxType:         partner.PartnerTxWePayPartner,
			Amount:         decimal.NewFromInt(10),
			AdminAccountID: &acc.ID,
			Operator:       adminOperator(),
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a company account")
	})

	t.Run("account currency mismatch", func(t *testing.T) {
		svc, m := newTestPartnerService()
		ctx := context.Background()
		p := newActivePartner(t, "0")
		acc := newCompanyAccount(t, valueobject.EUR)

		m.uow.On("Execute", ctx)
		m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
		m.accountRepo.On("FindByID", ctx, acc.ID).Return(acc, nil)

		_, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
			PartnerID:      p.ID,
			TxType:         partner.PartnerTxWePayPartner,
			Amount:         decimal.NewFromInt(10),
			AdminAccountID: &acc.ID,
			Operator:       adminOperator(),
		})

		assert.ErrorIs(t, err, shared.ErrCurrencyMismatch)
	})

	t.Run("inactive partner", func(t *testing.T) {
		svc, m := newTestPartnerService()
		ctx := context.Background()
		p := newActivePartner(t, "0")
		p.Deactivate()

		m.uow.On("Execute", ctx)
		m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.RecordPartnerTx(ctx, RecordPartnerTxRequest{
			PartnerID: p.ID,
			TxType:    partner.PartnerTxAdjustment,
			Amount:    decimal.NewFromInt(1),
			Operator:  adminOperator(),
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "inactive")
	})
}

func TestPartnerService_VoidPartnerTx(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "100.00")
	acc := newCompanyAccount(t, valueobject.USD)
	op := adminOperator()

	tx, err := partner.NewWePayPartnerTransaction(p, decimal.RequireFromString("40.00"), acc.ID, "june settlement", op.UserID)
	require.NoError(t, err)
	ledgerTx, err := ledger.NewAdjustment(acc.ID, tx.Movement, acc.Currency, "Partner settlement WE_PAY_PARTNER", tx.Note, nil, op.UserID)
	require.NoError(t, err)
	tx.WithLedgerTx(ledgerTx.ID)

	// balances as the original posting left them
	p.ApplyMovement(tx.Movement)
	for _, e := range ledgerTx.ActiveEntries() {
		acc.ApplyMovement(e.Amount)
	}
	require.True(t, p.CurrentBalance.Equal(decimal.RequireFromString("60.00")))

	m.uow.On("Execute", ctx)
	m.partnerTxRepo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)
	m.partnerRepo.On("SaveWithLock", ctx, p).Return(nil)
	m.ledgerTxRepo.On("FindByID", ctx, ledgerTx.ID).Return(ledgerTx, nil)
	m.accountRepo.On("FindByID", ctx, acc.ID).Return(acc, nil)
	m.accountRepo.On("SaveWithLock", ctx, acc).Return(nil)
	m.ledgerTxRepo.On("SaveWithLock", ctx, ledgerTx).Return(nil)
	m.partnerTxRepo.On("SaveWithLock", ctx, tx).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	result, err := svc.VoidPartnerTx(ctx, VoidPartnerTxRequest{
		TransactionID: tx.ID,
		Reason:        "duplicate settlement",
		Operator:      op,
	})

	require.NoError(t, err)
	assert.True(t, result.Movement.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, result.BalanceAfter.Equal(decimal.RequireFromString("100.00")))

	assert.Equal(t, partner.PartnerTxStatusVoided, tx.Status)
	assert.Equal(t, ledger.TransactionStatusCanceled, ledgerTx.Status)
	assert.True(t, p.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, acc.Balance.IsZero())
	m.partnerTxRepo.AssertExpectations(t)
}

func TestPartnerService_VoidPartnerTx_Transfer(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	source := newActivePartner(t, "80.00")
	dest, err := partner.NewPartner(partner.PartnerTypeFreelance, "Nadia Haddad", valueobject.USD, decimal.Zero)
	require.NoError(t, err)
	op := adminOperator()

	tx, err := partner.NewTransferTransaction(source, dest, decimal.RequireFromString("50.00"), "", op.UserID)
	require.NoError(t, err)
	source.ApplyMovement(tx.Movement)
	dest.ApplyMovement(tx.Movement.Neg())

	m.uow.On("Execute", ctx)
	m.partnerTxRepo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	m.partnerRepo.On("FindByID", ctx, source.ID).Return(source, nil)
	m.partnerRepo.On("FindByID", ctx, dest.ID).Return(dest, nil)
	m.partnerRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*partner.Partner")).Return(nil)
	m.partnerTxRepo.On("SaveWithLock", ctx, tx).Return(nil)
	m.partnerTxRepo.On("Save", ctx, mock.AnythingOfType("*partner.PartnerTransaction")).Return(nil)

	_, err = svc.VoidPartnerTx(ctx, VoidPartnerTxRequest{
		TransactionID: tx.ID,
		Reason:        "sent to the wrong partner",
		Operator:      op,
	})

	require.NoError(t, err)
	assert.True(t, source.CurrentBalance.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, dest.CurrentBalance.IsZero())
}

func TestPartnerService_VoidPartnerTx_AlreadyVoided(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	p := newActivePartner(t, "20.00")
	op := adminOperator()
	tx, err := partner.NewAdjustmentTransaction(p, decimal.NewFromInt(5), "correction", op.UserID)
	require.NoError(t, err)
	p.ApplyMovement(tx.Movement)
	_, err = tx.Void(p.CurrentBalance, "first void", op.UserID)
	require.NoError(t, err)

	m.uow.On("Execute", ctx)
	m.partnerTxRepo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	m.partnerRepo.On("FindByID", ctx, p.ID).Return(p, nil)

	_, err = svc.VoidPartnerTx(ctx, VoidPartnerTxRequest{
		TransactionID: tx.ID,
		Reason:        "second void",
		Operator:      op,
	})

	assert.ErrorIs(t, err, shared.ErrAlreadyCanceled)
	m.partnerTxRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartnerService_ListPartnerTransactions(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	partnerID := uuid.New()
	filter := partner.PartnerTransactionFilter{Filter: shared.Filter{Page: 1, PageSize: 20}}

	m.partnerTxRepo.On("FindByPartner", ctx, partnerID, filter).Return([]partner.PartnerTransaction{{}, {}}, nil)
	m.partnerTxRepo.On("Count", ctx, mock.AnythingOfType("partner.PartnerTransactionFilter")).Return(int64(2), nil)

	page, err := svc.ListPartnerTransactions(ctx, partnerID, filter)

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestPartnerService_ListPartners(t *testing.T) {
	svc, m := newTestPartnerService()
	ctx := context.Background()

	filter := partner.PartnerFilter{Filter: shared.Filter{Page: 1, PageSize: 20}}
	m.partnerRepo.On("FindAll", ctx, filter).Return([]partner.Partner{{}}, nil)
	m.partnerRepo.On("Count", ctx, filter).Return(int64(1), nil)

	page, err := svc.ListPartners(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
