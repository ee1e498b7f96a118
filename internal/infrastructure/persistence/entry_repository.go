package persistence

import (
	"context"

	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEntryRepository implements the read side for posted entries.
// Entries are written only through the transaction aggregate; this
// repository never inserts, updates, or deletes rows.
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

func (r *GormEntryRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByAccount returns the entries posted against an account
func (r *GormEntryRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter ledger.EntryFilter) ([]ledger.Entry, error) {
	var entryModels []models.EntryModel

	query := r.applyFilter(r.conn(ctx).Model(&models.EntryModel{}), accountID, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]ledger.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// SumByAccount returns the signed sum of all entries for an account
func (r *GormEntryRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.conn(ctx).Model(&models.EntryModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("account_id = ?", accountID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByAccount counts entries for an account
func (r *GormEntryRepository) CountByAccount(ctx context.Context, accountID uuid.UUID, filter ledger.EntryFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.conn(ctx).Model(&models.EntryModel{}), accountID, filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// applyFilter applies filter options to the query
func (r *GormEntryRepository) applyFilter(query *gorm.DB, accountID uuid.UUID, filter ledger.EntryFilter) *gorm.DB {
	query = query.Where("account_id = ?", accountID)
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormEntryRepository implements EntryRepository
var _ ledger.EntryRepository = (*GormEntryRepository)(nil)
