package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartnerTransactionRepository implements PartnerTransactionRepository using GORM
type GormPartnerTransactionRepository struct {
	db *gorm.DB
}

// NewGormPartnerTransactionRepository creates a new GormPartnerTransactionRepository
func NewGormPartnerTransactionRepository(db *gorm.DB) *GormPartnerTransactionRepository {
	return &GormPartnerTransactionRepository{db: db}
}

func (r *GormPartnerTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a partner transaction by ID
func (r *GormPartnerTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.PartnerTransaction, error) {
	var model models.PartnerTransactionModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPartner finds transactions on a partner's ledger
func (r *GormPartnerTransactionRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID, filter partner.PartnerTransactionFilter) ([]partner.PartnerTransaction, error) {
	filter.PartnerID = &partnerID
	return r.FindAll(ctx, filter)
}

// FindAll finds partner transactions with filtering
func (r *GormPartnerTransactionRepository) FindAll(ctx context.Context, filter partner.PartnerTransactionFilter) ([]partner.PartnerTransaction, error) {
	var txModels []models.PartnerTransactionModel

	query := r.applyFilter(r.conn(ctx).Model(&models.PartnerTransactionModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, PartnerTransactionSortFields, "transaction_date")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}

	txs := make([]partner.PartnerTransaction, len(txModels))
	for i := range txModels {
		txs[i] = *txModels[i].ToDomain()
	}
	return txs, nil
}

// Count counts partner transactions matching the filter
func (r *GormPartnerTransactionRepository) Count(ctx context.Context, filter partner.PartnerTransactionFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.conn(ctx).Model(&models.PartnerTransactionModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a partner transaction
func (r *GormPartnerTransactionRepository) Save(ctx context.Context, tx *partner.PartnerTransaction) error {
	model := models.PartnerTransactionModelFromDomain(tx)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. Only the void fields ever
// change after posting; everything else on a record is immutable.
func (r *GormPartnerTransactionRepository) SaveWithLock(ctx context.Context, tx *partner.PartnerTransaction) error {
	model := models.PartnerTransactionModelFromDomain(tx)
	model.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.PartnerTransactionModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"void_reason": model.VoidReason,
			"voided_at":   model.VoidedAt,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.conn(ctx).Model(&models.PartnerTransactionModel{}).
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
func (r *GormPartnerTransactionRepository) applyFilter(query *gorm.DB, filter partner.PartnerTransactionFilter) *gorm.DB {
	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.TxType != nil {
		query = query.Where("tx_type = ?", *filter.TxType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormPartnerTransactionRepository implements PartnerTransactionRepository
var _ partner.PartnerTransactionRepository = (*GormPartnerTransactionRepository)(nil)
