package partner

import (
	"context"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PartnerFilter defines filtering options for partner queries
type PartnerFilter struct {
	shared.Filter
	Type     *PartnerType // Filter by partner type
	IsActive *bool        // Filter by active flag
}

// PartnerRepository defines the interface for partner persistence
type PartnerRepository interface {
	// FindByID finds a partner by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)

	// FindAll finds partners with filtering
	FindAll(ctx context.Context, filter PartnerFilter) ([]Partner, error)

	// Save creates or updates a partner
	Save(ctx context.Context, partner *Partner) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, partner *Partner) error

	// Count counts partners matching the filter
	Count(ctx context.Context, filter PartnerFilter) (int64, error)
}

// PartnerTransactionFilter defines filtering options for partner transaction queries
type PartnerTransactionFilter struct {
	shared.Filter
	PartnerID *uuid.UUID                // Filter by partner
	TxType    *PartnerTransactionType   // Filter by transaction type
	Status    *PartnerTransactionStatus // Filter by lifecycle status
	FromDate  *time.Time                // Filter by transaction date range start
	ToDate    *time.Time                // Filter by transaction date range end
}

// PartnerTransactionRepository defines the interface for partner transaction persistence
type PartnerTransactionRepository interface {
	// FindByID finds a partner transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PartnerTransaction, error)

	// FindByPartner finds transactions on a partner's ledger
	FindByPartner(ctx context.Context, partnerID uuid.UUID, filter PartnerTransactionFilter) ([]PartnerTransaction, error)

	// FindAll finds partner transactions with filtering
	FindAll(ctx context.Context, filter PartnerTransactionFilter) ([]PartnerTransaction, error)

	// Save creates or updates a partner transaction
	Save(ctx context.Context, tx *PartnerTransaction) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, tx *PartnerTransaction) error

	// Count counts partner transactions matching the filter
	Count(ctx context.Context, filter PartnerTransactionFilter) (int64, error)
}
