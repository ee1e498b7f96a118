package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerPointsRepository implements CustomerPointsRepository using GORM
type GormCustomerPointsRepository struct {
	db *gorm.DB
}

// NewGormCustomerPointsRepository creates a new GormCustomerPointsRepository
func NewGormCustomerPointsRepository(db *gorm.DB) *GormCustomerPointsRepository {
	return &GormCustomerPointsRepository{db: db}
}

func (r *GormCustomerPointsRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByCustomer finds the points balance for a customer
func (r *GormCustomerPointsRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*billing.CustomerPoints, error) {
	var model models.CustomerPointsModel
	if err := r.conn(ctx).Where("customer_id = ?", customerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a points balance
func (r *GormCustomerPointsRepository) Save(ctx context.Context, points *billing.CustomerPoints) error {
	model := models.CustomerPointsModelFromDomain(points)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCustomerPointsRepository) SaveWithLock(ctx context.Context, points *billing.CustomerPoints) error {
	model := models.CustomerPointsModelFromDomain(points)
	model.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.CustomerPointsModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"available":  model.Available,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.conn(ctx).Model(&models.CustomerPointsModel{}).
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

// Ensure GormCustomerPointsRepository implements CustomerPointsRepository
var _ billing.CustomerPointsRepository = (*GormCustomerPointsRepository)(nil)
