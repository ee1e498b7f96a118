package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService orchestrates the invoice lifecycle: issuing over a
// set of orders, amending before payment, voiding, and regenerating
// totals after weight corrections.
type InvoiceService struct {
	uow         shared.UnitOfWork
	invoiceRepo billing.InvoiceRepository
	orderRepo   billing.OrderRepository
	pointsRepo  billing.CustomerPointsRepository
	txRepo      ledger.TransactionRepository
	pointValue  decimal.Decimal // company-wide value of one loyalty point
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	uow shared.UnitOfWork,
	invoiceRepo billing.InvoiceRepository,
	orderRepo billing.OrderRepository,
	pointsRepo billing.CustomerPointsRepository,
	txRepo ledger.TransactionRepository,
	pointValue decimal.Decimal,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		pointsRepo:  pointsRepo,
		txRepo:      txRepo,
		pointValue:  pointValue,
		logger:      logger,
	}
}

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID
	BranchID   uuid.UUID
	OrderIDs   []uuid.UUID
	RateKg     decimal.Decimal
	RateCbm    decimal.Decimal
	Currency   valueobject.Currency
	PointsUsed int64
	Note       string
	Operator   shared.Operator
}

// CreateInvoiceResult represents the outcome of issuing an invoice
type CreateInvoiceResult struct {
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	InvoiceNo  string          `json:"invoice_no"`
	Total      decimal.Decimal `json:"total"`
	DueTotal   decimal.Decimal `json:"due_total"`
	PointsUsed int64           `json:"points_used"`
	Status     string          `json:"status"`
}

// CreateInvoice issues an invoice over un-invoiced orders of one
// customer and branch. The whole operation is atomic: a failing check
// leaves no order attached and no points redeemed.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*CreateInvoiceResult, error) {
	if len(req.OrderIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "at least one order is required")
	}

	var result *CreateInvoiceResult
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		orders, err := s.loadOrdersForInvoicing(ctx, req.OrderIDs, req.CustomerID, req.BranchID, nil)
		if err != nil {
			return err
		}

		total, err := s.provisionalTotal(req.RateKg, req.RateCbm, orders)
		if err != nil {
			return err
		}

		points, clamped, err := s.redeemPoints(ctx, req.CustomerID, req.PointsUsed, total)
		if err != nil {
			return err
		}

		invoiceNo, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, req.BranchID, time.Now().Year())
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}

		inv, err := billing.NewInvoice(billing.InvoiceSpec{
			InvoiceNo:   invoiceNo,
			CustomerID:  req.CustomerID,
			BranchID:    req.BranchID,
			Currency:    req.Currency,
			RateKg:      req.RateKg,
			RateCbm:     req.RateCbm,
			Orders:      orders,
			PointsUsed:  clamped,
			PointsValue: s.pointValue,
			Note:        req.Note,
		})
		if err != nil {
			return err
		}

		for _, o := range orders {
			if err := o.AttachToInvoice(inv.ID); err != nil {
				return err
			}
			if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
				return fmt.Errorf("failed to attach order: %w", err)
			}
		}
		if points != nil {
			if err := s.pointsRepo.SaveWithLock(ctx, points); err != nil {
				return fmt.Errorf("failed to save points balance: %w", err)
			}
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		s.logger.Info("invoice issued",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_no", inv.InvoiceNo),
			zap.String("total", inv.Total.String()),
			zap.Int64("points_used", inv.PointsUsed),
		)

		result = &CreateInvoiceResult{
			InvoiceID:  inv.ID,
			InvoiceNo:  inv.InvoiceNo,
			Total:      inv.Total,
			DueTotal:   inv.DueTotal,
			PointsUsed: inv.PointsUsed,
			Status:     string(inv.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadOrdersForInvoicing loads and validates the orders for invoice
// membership. Orders already attached to allowedInvoice are accepted;
// any other attachment, customer, or branch mismatch fails the whole
// batch before anything is mutated.
func (s *InvoiceService) loadOrdersForInvoicing(ctx context.Context, ids []uuid.UUID, customerID, branchID uuid.UUID, allowedInvoice *uuid.UUID) ([]*billing.Order, error) {
	found, err := s.orderRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(found) != len(ids) {
		return nil, shared.NewDomainError("NOT_FOUND", "one or more orders do not exist")
	}

	orders := make([]*billing.Order, 0, len(found))
	for i := range found {
		o := &found[i]
		if o.CustomerID != customerID {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("order %s belongs to another customer", o.OrderNo))
		}
		if o.BranchID != branchID {
			return nil, shared.ErrBranchMismatch
		}
		if o.InvoiceID != nil && (allowedInvoice == nil || *o.InvoiceID != *allowedInvoice) {
			return nil, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("order %s is already invoiced", o.OrderNo))
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *InvoiceService) provisionalTotal(rateKg, rateCbm decimal.Decimal, orders []*billing.Order) (decimal.Decimal, error) {
	weight := decimal.Zero
	volume := decimal.Zero
	for _, o := range orders {
		weight = weight.Add(o.BillableWeight())
		volume = volume.Add(o.BillableVolume())
	}
	return billing.RateInvoice(rateKg, rateCbm, weight.Round(3), volume.Round(3))
}

// redeemPoints clamps a requested redemption and deducts it. Returns
// the (possibly new) points balance to persist and the clamped count.
func (s *InvoiceService) redeemPoints(ctx context.Context, customerID uuid.UUID, requested int64, total decimal.Decimal) (*billing.CustomerPoints, int64, error) {
	if requested < 0 {
		return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "points cannot be negative")
	}
	if requested == 0 {
		return nil, 0, nil
	}

	points, err := s.pointsRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to load points balance: %w", err)
	}

	clamped := points.ClampRedemption(requested, total, s.pointValue)
	if clamped == 0 {
		return nil, 0, nil
	}
	if err := points.Redeem(clamped); err != nil {
		return nil, 0, err
	}
	return points, clamped, nil
}

// UpdateInvoiceRequest represents a request to amend an unpaid invoice
type UpdateInvoiceRequest struct {
	InvoiceID  uuid.UUID
	OrderIDs   []uuid.UUID
	Currency   valueobject.Currency
	PointsUsed int64
	Note       string
	Operator   shared.Operator
}

// UpdateInvoice amends an invoice that has no payments yet: line
// membership, currency, note, and point redemption are re-derived the
// same way creation derives them.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, req UpdateInvoiceRequest) (*billing.Invoice, error) {
	var updated *billing.Invoice
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindByID(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if inv.Status == billing.InvoiceStatusVoid {
			return shared.ErrAlreadyCanceled
		}
		if !inv.CanAmend() {
			return shared.NewDomainError("INVALID_STATE", "cannot amend an invoice with payments applied")
		}

		orders, err := s.loadOrdersForInvoicing(ctx, req.OrderIDs, inv.CustomerID, inv.BranchID, &inv.ID)
		if err != nil {
			return err
		}

		// Settle the point delta: return the old redemption, then
		// clamp and redeem against the new total.
		if inv.PointsUsed > 0 {
			if err := s.refundPoints(ctx, inv.CustomerID, inv.PointsUsed); err != nil {
				return err
			}
		}
		total, err := s.provisionalTotal(inv.RateKg, inv.RateCbm, orders)
		if err != nil {
			return err
		}
		points, clamped, err := s.redeemPoints(ctx, inv.CustomerID, req.PointsUsed, total)
		if err != nil {
			return err
		}
		if points != nil {
			if err := s.pointsRepo.SaveWithLock(ctx, points); err != nil {
				return fmt.Errorf("failed to save points balance: %w", err)
			}
		}

		// Detach orders dropped from the invoice, attach new ones.
		current, err := s.orderRepo.FindByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoiced orders: %w", err)
		}
		keep := make(map[uuid.UUID]bool, len(req.OrderIDs))
		for _, id := range req.OrderIDs {
			keep[id] = true
		}
		for i := range current {
			o := &current[i]
			if keep[o.ID] {
				continue
			}
			o.DetachFromInvoice()
			if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
				return fmt.Errorf("failed to detach order: %w", err)
			}
		}
		for _, o := range orders {
			if o.InvoiceID != nil {
				continue
			}
			if err := o.AttachToInvoice(inv.ID); err != nil {
				return err
			}
			if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
				return fmt.Errorf("failed to attach order: %w", err)
			}
		}

		if err := inv.Amend(orders, req.Currency, req.Note, clamped); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *InvoiceService) refundPoints(ctx context.Context, customerID uuid.UUID, pointsUsed int64) error {
	points, err := s.pointsRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			points, err = billing.NewCustomerPoints(customerID)
			if err != nil {
				return err
			}
		} else {
			return fmt.Errorf("failed to load points balance: %w", err)
		}
	}
	if err := points.Refund(pointsUsed); err != nil {
		return err
	}
	if err := s.pointsRepo.Save(ctx, points); err != nil {
		return fmt.Errorf("failed to save points balance: %w", err)
	}
	return nil
}

// VoidInvoice soft-cancels an invoice: orders go back to un-invoiced,
// redeemed points return to the customer, and active payments are
// detached from the invoice without being canceled.
func (s *InvoiceService) VoidInvoice(ctx context.Context, invoiceID uuid.UUID, reason string, op shared.Operator) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}

		detachedTxs, err := inv.Void(reason)
		if err != nil {
			return err
		}

		for _, txID := range detachedTxs {
			tx, err := s.txRepo.FindByID(ctx, txID)
			if err != nil {
				return fmt.Errorf("failed to load payment transaction: %w", err)
			}
			tx.DetachInvoice()
			if err := s.txRepo.SaveWithLock(ctx, tx); err != nil {
				return fmt.Errorf("failed to detach payment transaction: %w", err)
			}
		}

		orders, err := s.orderRepo.FindByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoiced orders: %w", err)
		}
		for i := range orders {
			orders[i].DetachFromInvoice()
			if err := s.orderRepo.SaveWithLock(ctx, &orders[i]); err != nil {
				return fmt.Errorf("failed to release order: %w", err)
			}
		}

		if inv.PointsUsed > 0 {
			if err := s.refundPoints(ctx, inv.CustomerID, inv.PointsUsed); err != nil {
				return err
			}
		}

		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		s.logger.Info("invoice voided",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_no", inv.InvoiceNo),
			zap.String("reason", reason),
		)
		return nil
	})
}

// RegenerateInvoiceTotals recomputes the invoice totals from the
// current order measures without changing line membership
func (s *InvoiceService) RegenerateInvoiceTotals(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	var inv *billing.Invoice
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		orders, err := s.orderRepo.FindByInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("failed to load invoiced orders: %w", err)
		}
		refs := make([]*billing.Order, len(orders))
		for i := range orders {
			refs[i] = &orders[i]
		}
		if err := inv.Regenerate(refs); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoice returns an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (*shared.Paginated[billing.Invoice], error) {
	items, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
