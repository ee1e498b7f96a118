package account

import (
	"context"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AccountFilter defines filtering options for account queries
type AccountFilter struct {
	shared.Filter
	OwnerType *OwnerType            // Filter by owner type
	PartyID   *uuid.UUID            // Filter by owning party
	Currency  *valueobject.Currency // Filter by currency
	IsActive  *bool                 // Filter by active flag
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByOwner finds the account an owner holds in a currency
	FindByOwner(ctx context.Context, owner OwnerRef, currency valueobject.Currency) (*Account, error)

	// FindAll finds accounts with filtering
	FindAll(ctx context.Context, filter AccountFilter) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *Account) error

	// Count counts accounts matching the filter
	Count(ctx context.Context, filter AccountFilter) (int64, error)

	// ExistsForOwner checks whether an owner already holds an account in a currency
	ExistsForOwner(ctx context.Context, owner OwnerRef, currency valueobject.Currency) (bool, error)
}

// PaymentMethodRepository defines the interface for payment method persistence
type PaymentMethodRepository interface {
	// FindByID finds a payment method by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)

	// FindAll finds payment methods with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]PaymentMethod, error)

	// Save creates or updates a payment method
	Save(ctx context.Context, method *PaymentMethod) error
}
