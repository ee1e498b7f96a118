package billing

import (
	"context"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter defines filtering options for order queries
type OrderFilter struct {
	shared.Filter
	CustomerID *uuid.UUID   // Filter by customer
	BranchID   *uuid.UUID   // Filter by branch
	Status     *OrderStatus // Filter by fulfillment status
	Invoiced   *bool        // Filter by invoice attachment
	FromDate   *time.Time   // Filter by receipt date range start
	ToDate     *time.Time   // Filter by receipt date range end
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDs finds a batch of orders by ID. Missing IDs are not an
	// error; callers compare lengths.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error)

	// FindByInvoice finds the orders attached to an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// GenerateOrderNumber produces the next order number for a branch,
	// e.g. ORD-DXB-000317
	GenerateOrderNumber(ctx context.Context, branchID uuid.UUID) (string, error)
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID     // Filter by customer
	BranchID   *uuid.UUID     // Filter by branch
	Status     *InvoiceStatus // Filter by lifecycle status
	FromDate   *time.Time     // Filter by issue date range start
	ToDate     *time.Time     // Filter by issue date range end
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNo finds an invoice by its number
	FindByInvoiceNo(ctx context.Context, invoiceNo string) (*Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice together with its items
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// GenerateInvoiceNumber produces the next invoice number for a
	// branch and year, e.g. INV-DXB-2026-000042
	GenerateInvoiceNumber(ctx context.Context, branchID uuid.UUID, year int) (string, error)
}

// CustomerPointsRepository defines the interface for points persistence
type CustomerPointsRepository interface {
	// FindByCustomer finds the points balance for a customer,
	// returning shared.ErrNotFound when none exists yet
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerPoints, error)

	// Save creates or updates a points balance
	Save(ctx context.Context, points *CustomerPoints) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, points *CustomerPoints) error
}
