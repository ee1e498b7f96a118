package account

import (
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnerType identifies what kind of party holds an account
type OwnerType string

const (
	OwnerTypeAdmin    OwnerType = "admin"
	OwnerTypeBranch   OwnerType = "branch"
	OwnerTypeCustomer OwnerType = "customer"
	OwnerTypeSupplier OwnerType = "supplier"
	OwnerTypeStaff    OwnerType = "staff"
)

// IsValid checks if the owner type is valid
func (t OwnerType) IsValid() bool {
	switch t {
	case OwnerTypeAdmin, OwnerTypeBranch, OwnerTypeCustomer, OwnerTypeSupplier, OwnerTypeStaff:
		return true
	}
	return false
}

// OwnerRef identifies the party behind an account. The admin owner is a
// singleton and carries no ID; every other owner type references a
// concrete party record.
type OwnerRef struct {
	Type    OwnerType  `json:"type"`
	PartyID *uuid.UUID `json:"party_id,omitempty"`
}

// NewOwnerRef creates an owner reference for a concrete party
func NewOwnerRef(ownerType OwnerType, partyID uuid.UUID) (OwnerRef, error) {
	if !ownerType.IsValid() {
		return OwnerRef{}, shared.NewDomainError("VALIDATION_ERROR", "invalid owner type")
	}
	if ownerType == OwnerTypeAdmin {
		return OwnerRef{}, shared.NewDomainError("VALIDATION_ERROR", "admin owner does not reference a party")
	}
	if partyID == uuid.Nil {
		return OwnerRef{}, shared.NewDomainError("VALIDATION_ERROR", "party ID is required")
	}
	return OwnerRef{Type: ownerType, PartyID: &partyID}, nil
}

// AdminOwner returns the company-level owner reference
func AdminOwner() OwnerRef {
	return OwnerRef{Type: OwnerTypeAdmin}
}

// IsAdmin reports whether this is the company-level owner
func (o OwnerRef) IsAdmin() bool {
	return o.Type == OwnerTypeAdmin
}

// Validate checks the internal consistency of the reference
func (o OwnerRef) Validate() error {
	if !o.Type.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "invalid owner type")
	}
	if o.Type == OwnerTypeAdmin {
		if o.PartyID != nil {
			return shared.NewDomainError("VALIDATION_ERROR", "admin owner must not reference a party")
		}
		return nil
	}
	if o.PartyID == nil || *o.PartyID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "party ID is required")
	}
	return nil
}

// Equals compares two owner references
func (o OwnerRef) Equals(other OwnerRef) bool {
	if o.Type != other.Type {
		return false
	}
	if o.PartyID == nil && other.PartyID == nil {
		return true
	}
	if o.PartyID == nil || other.PartyID == nil {
		return false
	}
	return *o.PartyID == *other.PartyID
}
