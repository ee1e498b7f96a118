package ledger

import (
	"context"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	Type      *TransactionType   // Filter by transaction type
	Status    *TransactionStatus // Filter by lifecycle status
	AccountID *uuid.UUID         // Filter by either side of the movement
	InvoiceID *uuid.UUID         // Filter by linked invoice
	BranchID  *uuid.UUID         // Filter by branch
	FromDate  *time.Time         // Filter by payment date range start
	ToDate    *time.Time         // Filter by payment date range end
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction with its entries by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByInvoice finds all transactions linked to an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Transaction, error)

	// FindAll finds transactions with filtering
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// Save creates a transaction together with its entries
	Save(ctx context.Context, tx *Transaction) error

	// SaveWithLock saves with optimistic locking (version check) and
	// appends any entries not yet persisted
	SaveWithLock(ctx context.Context, tx *Transaction) error

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
}

// EntryFilter defines filtering options for account statement queries
type EntryFilter struct {
	shared.Filter
	Kind     *EntryKind // Filter by entry kind
	FromDate *time.Time // Filter by posting date range start
	ToDate   *time.Time // Filter by posting date range end
}

// EntryRepository defines the read-side interface for posted entries
type EntryRepository interface {
	// FindByAccount returns the entries posted against an account
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter EntryFilter) ([]Entry, error)

	// SumByAccount returns the signed sum of all entries for an account
	SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)

	// CountByAccount counts entries for an account
	CountByAccount(ctx context.Context, accountID uuid.UUID, filter EntryFilter) (int64, error)
}
