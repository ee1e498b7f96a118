package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
)

// Ledger and billing errors
var (
	ErrAlreadyCanceled    = NewDomainError("ALREADY_CANCELED", "Record has already been canceled")
	ErrBalanceNotZero     = NewDomainError("BALANCE_NOT_ZERO", "Account balance must be zero")
	ErrBranchMismatch     = NewDomainError("BRANCH_MISMATCH", "Records belong to different branches")
	ErrAmountExceedsDue   = NewDomainError("AMOUNT_EXCEEDS_DUE", "Amount exceeds the outstanding due total")
	ErrInsufficientPoints = NewDomainError("INSUFFICIENT_POINTS", "Insufficient loyalty points available")
	ErrCurrencyMismatch   = NewDomainError("CURRENCY_MISMATCH", "Currencies do not match")
)
