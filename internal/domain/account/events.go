package account

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountCreatedEvent is raised when a new account is opened
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID            `json:"account_id"`
	Owner     OwnerRef             `json:"owner"`
	Currency  valueobject.Currency `json:"currency"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "AccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountCreated", "Account", a.ID),
		AccountID:       a.ID,
		Owner:           a.Owner,
		Currency:        a.Currency,
	}
}

// AccountDeactivatedEvent is raised when an account is closed for new movements
type AccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *AccountDeactivatedEvent) EventType() string {
	return "AccountDeactivated"
}

// NewAccountDeactivatedEvent creates a new AccountDeactivatedEvent
func NewAccountDeactivatedEvent(a *Account) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountDeactivated", "Account", a.ID),
		AccountID:       a.ID,
		Balance:         a.Balance,
	}
}
