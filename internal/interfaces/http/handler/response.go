package handler

import "github.com/cargomesh/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	OK   bool      `json:"ok"`
	Data T         `json:"data,omitempty"`
	Meta *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	OK    bool   `json:"ok" example:"false"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a simple success API response for OpenAPI documentation
// @Description Simple success response without data
type SuccessResponse struct {
	OK bool `json:"ok" example:"true"`
}

// BalanceData represents balance data in response
// @Description Balance data
type BalanceData struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

// CountData represents count data in response
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}
