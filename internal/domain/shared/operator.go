package shared

import "github.com/google/uuid"

// Role is the coarse permission level carried in the auth token
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleMainBranch Role = "main_branch"
	RoleBranch     Role = "branch"
	RoleStaff      Role = "staff"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleMainBranch, RoleBranch, RoleStaff:
		return true
	}
	return false
}

// IsElevated reports whether the role may create privileged ledger
// movements such as charges and discounts
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleMainBranch
}

// Operator identifies the authenticated user performing an operation
type Operator struct {
	UserID   uuid.UUID
	Role     Role
	BranchID *uuid.UUID
}
