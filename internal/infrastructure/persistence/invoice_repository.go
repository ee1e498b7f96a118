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

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an invoice with its items by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).Preload("Items").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNo finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNo(ctx context.Context, invoiceNo string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).Preload("Items").Where("invoice_no = ?", invoiceNo).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel

	query := r.applyFilter(r.conn(ctx).Model(&models.InvoiceModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "issued_at")
	query = query.Preload("Items").Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	var total int64
	query := r.applyFilter(r.conn(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates an invoice together with its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.conn(ctx).Save(model).Error; err != nil {
		// Concurrent creates can race GenerateInvoiceNumber to the same
		// number; the unique index wins and the loser retries on 409.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking. Item snapshots are
// replaced wholesale: amendments and regeneration rebuild the full
// line set.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	model.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"currency":     model.Currency,
			"total_weight": model.TotalWeight,
			"total_volume": model.TotalVolume,
			"total":        model.Total,
			"paid_total":   model.PaidTotal,
			"due_total":    model.DueTotal,
			"points_used":  model.PointsUsed,
			"status":       model.Status,
			"note":         model.Note,
			"paid_at":      model.PaidAt,
			"voided_at":    model.VoidedAt,
			"void_reason":  model.VoidReason,
			"payments":     model.Payments,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.conn(ctx).Model(&models.InvoiceModel{}).
			Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	if err := r.conn(ctx).Where("invoice_id = ?", model.ID).
		Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	if len(model.Items) > 0 {
		for i := range model.Items {
			model.Items[i].InvoiceID = model.ID
		}
		if err := r.conn(ctx).Create(&model.Items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateInvoiceNumber produces the next invoice number for a branch
// and year, e.g. INV-1a2b3c4d-2026-000042
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, branchID uuid.UUID, year int) (string, error) {
	var count int64
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)
	if err := r.conn(ctx).Model(&models.InvoiceModel{}).
		Where("branch_id = ? AND issued_at >= ? AND issued_at < ?", branchID, yearStart, yearEnd).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%d-%06d", branchCode(branchID), year, count+1), nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("issued_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issued_at <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
