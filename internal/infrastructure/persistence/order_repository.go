package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var model models.OrderModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds a batch of orders by ID
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.Order, error) {
	var orderModels []models.OrderModel
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]billing.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindByInvoice finds the orders attached to an invoice
func (r *GormOrderRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Order, error) {
	var orderModels []models.OrderModel
	if err := r.conn(ctx).Where("invoice_id = ?", invoiceID).
		Order("received_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]billing.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindAll finds orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter billing.OrderFilter) ([]billing.Order, error) {
	var orderModels []models.OrderModel

	query := r.applyFilter(r.conn(ctx).Model(&models.OrderModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "received_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]billing.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter billing.OrderFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.conn(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.conn(ctx).Save(model).Error; err != nil {
		// GenerateOrderNumber races under concurrent creates; the
		// unique index on order_no turns the loser into a retry
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *billing.Order) error {
	model := models.OrderModelFromDomain(order)
	model.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"weight_type":   model.WeightType,
			"actual_weight": model.ActualWeight,
			"width_cm":      model.WidthCm,
			"depth_cm":      model.DepthCm,
			"height_cm":     model.HeightCm,
			"rate_kg":       model.RateKg,
			"rate_cbm":      model.RateCbm,
			"adjustments":   model.Adjustments,
			"total_price":   model.TotalPrice,
			"invoice_id":    model.InvoiceID,
			"note":          model.Note,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.conn(ctx).Model(&models.OrderModel{}).
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

// GenerateOrderNumber produces the next order number for a branch.
// Numbers are branch-scoped and dense enough for humans; uniqueness is
// enforced by the column index.
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, branchID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("ORD-%s-", branchCode(branchID))
	var count int64
	if err := r.conn(ctx).Model(&models.OrderModel{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}

// branchCode derives a short human-readable code from a branch ID
func branchCode(branchID uuid.UUID) string {
	s := branchID.String()
	return s[:8]
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter billing.OrderFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Invoiced != nil {
		if *filter.Invoiced {
			query = query.Where("invoice_id IS NOT NULL")
		} else {
			query = query.Where("invoice_id IS NULL")
		}
	}
	if filter.FromDate != nil {
		query = query.Where("received_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("received_at <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ billing.OrderRepository = (*GormOrderRepository)(nil)
