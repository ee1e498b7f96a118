package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/cargomesh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner finds the account an owner holds in a currency
func (r *GormAccountRepository) FindByOwner(ctx context.Context, owner account.OwnerRef, currency valueobject.Currency) (*account.Account, error) {
	var model models.AccountModel
	query := r.conn(ctx).Where("owner_type = ? AND currency = ?", owner.Type, currency)
	if owner.PartyID != nil {
		query = query.Where("owner_party_id = ?", *owner.PartyID)
	} else {
		query = query.Where("owner_party_id IS NULL")
	}
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForOwner checks whether an owner already holds an account in a currency
func (r *GormAccountRepository) ExistsForOwner(ctx context.Context, owner account.OwnerRef, currency valueobject.Currency) (bool, error) {
	var count int64
	query := r.conn(ctx).Model(&models.AccountModel{}).
		Where("owner_type = ? AND currency = ?", owner.Type, currency)
	if owner.PartyID != nil {
		query = query.Where("owner_party_id = ?", *owner.PartyID)
	} else {
		query = query.Where("owner_party_id IS NULL")
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds accounts with filtering
func (r *GormAccountRepository) FindAll(ctx context.Context, filter account.AccountFilter) ([]account.Account, error) {
	var accountModels []models.AccountModel

	query := r.applyFilter(r.conn(ctx).Model(&models.AccountModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, AccountSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]account.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Count counts accounts matching the filter
func (r *GormAccountRepository) Count(ctx context.Context, filter account.AccountFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.conn(ctx).Model(&models.AccountModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, a *account.Account) error {
	model := models.AccountModelFromDomain(a)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The in-memory aggregate
// has already advanced its version; the update only lands if the stored
// row is still behind it.
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, a *account.Account) error {
	model := models.AccountModelFromDomain(a)
	model.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.AccountModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"balance":           model.Balance,
			"payment_method_id": model.PaymentMethodID,
			"is_active":         model.IsActive,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.conn(ctx).Model(&models.AccountModel{}).
			Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormAccountRepository) applyFilter(query *gorm.DB, filter account.AccountFilter) *gorm.DB {
	if filter.OwnerType != nil {
		query = query.Where("owner_type = ?", *filter.OwnerType)
	}
	if filter.PartyID != nil {
		query = query.Where("owner_party_id = ?", *filter.PartyID)
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// Ensure GormAccountRepository implements AccountRepository
var _ account.AccountRepository = (*GormAccountRepository)(nil)

// GormPaymentMethodRepository implements PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

func (r *GormPaymentMethodRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a payment method by ID
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds payment methods with filtering
func (r *GormPaymentMethodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]account.PaymentMethod, error) {
	var methodModels []models.PaymentMethodModel

	query := r.conn(ctx).Model(&models.PaymentMethodModel{})
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if err := query.Order("name ASC").Find(&methodModels).Error; err != nil {
		return nil, err
	}

	methods := make([]account.PaymentMethod, len(methodModels))
	for i := range methodModels {
		methods[i] = *methodModels[i].ToDomain()
	}
	return methods, nil
}

// Save creates or updates a payment method
func (r *GormPaymentMethodRepository) Save(ctx context.Context, method *account.PaymentMethod) error {
	model := models.PaymentMethodModelFromDomain(method)
	return r.conn(ctx).Save(model).Error
}

// Ensure GormPaymentMethodRepository implements PaymentMethodRepository
var _ account.PaymentMethodRepository = (*GormPaymentMethodRepository)(nil)
