package handler

import (
	"time"

	ledgerapp "github.com/cargomesh/backend/internal/application/ledger"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles ledger transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	txService *ledgerapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txService *ledgerapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
	}
}

// CreateTransactionRequest represents a request to post a ledger transaction
// @Description Request body for posting a ledger transaction
type CreateTransactionRequest struct {
	Type          string  `json:"type" binding:"required,oneof=payment refund deposit admin_settlement charge discount" example:"payment"`
	Amount        float64 `json:"amount" binding:"required,gt=0" example:"1250.00"`
	Currency      string  `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	FromAccountID *string `json:"from_account_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ToAccountID   *string `json:"to_account_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	InvoiceID     *string `json:"invoice_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	RefundReason  *string `json:"refund_reason" binding:"omitempty,oneof=damaged lost overcharge order_canceled other" example:"overcharge"`
	Note          string  `json:"note" binding:"max=500" example:"Payment for invoice INV-001"`
	PaymentDate   *string `json:"payment_date" binding:"omitempty" example:"2026-01-24"`
}

// CancelTransactionRequest represents a request to cancel a posted transaction
// @Description Request body for canceling a transaction
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Posted against the wrong account"`
}

// TransactionListFilter represents filter options for transaction list
// @Description Filter options for listing transactions
type TransactionListFilter struct {
	Type      string `form:"type" binding:"omitempty,oneof=payment refund deposit admin_settlement charge discount adjustment" example:"payment"`
	Status    string `form:"status" binding:"omitempty,oneof=active canceled" example:"active"`
	AccountID string `form:"account_id" binding:"omitempty,uuid"`
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	BranchID  string `form:"branch_id" binding:"omitempty,uuid"`
	DateFrom  string `form:"date_from" example:"2026-01-01"`
	DateTo    string `form:"date_to" example:"2026-01-31"`
	Page      int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// TransactionResponse represents a ledger transaction in API responses
// @Description Ledger transaction response
type TransactionResponse struct {
	ID            string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type          string  `json:"type" example:"payment"`
	Status        string  `json:"status" example:"active"`
	Amount        float64 `json:"amount" example:"1250.00"`
	Currency      string  `json:"currency" example:"USD"`
	FromAccountID *string `json:"from_account_id,omitempty"`
	ToAccountID   *string `json:"to_account_id,omitempty"`
	InvoiceID     *string `json:"invoice_id,omitempty"`
	Note          string  `json:"note" example:"Payment for invoice INV-001"`
	PaymentDate   string  `json:"payment_date" example:"2026-01-24T00:00:00Z"`
	CreatedAt     string  `json:"created_at" example:"2026-01-24T10:00:00Z"`
}

// parseDate parses a YYYY-MM-DD form value
func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// parseUUIDPtr parses an optional UUID string
func parseUUIDPtr(value *string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Create godoc
// @ID           createTransaction
// @Summary      Post a ledger transaction
// @Description  Post a payment, refund, deposit, settlement, charge, or discount between accounts
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        request body CreateTransactionRequest true "Transaction request"
// @Success      201 {object} APIResponse[ledgerapp.CreateTransactionResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fromID, err := parseUUIDPtr(req.FromAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid from account ID format")
		return
	}
	toID, err := parseUUIDPtr(req.ToAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid to account ID format")
		return
	}
	invoiceID, err := parseUUIDPtr(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var refundReason *ledger.RefundReason
	if req.RefundReason != nil {
		reason := ledger.RefundReason(*req.RefundReason)
		refundReason = &reason
	}

	var paymentDate *time.Time
	if req.PaymentDate != nil {
		d, ok := parseDate(*req.PaymentDate)
		if !ok {
			h.BadRequest(c, "Invalid payment date, expected YYYY-MM-DD")
			return
		}
		paymentDate = d
	}

	result, err := h.txService.CreateTransaction(c.Request.Context(), ledgerapp.CreateTransactionRequest{
		Type:          ledger.TransactionType(req.Type),
		Amount:        toDecimal(req.Amount),
		Currency:      valueobject.Currency(req.Currency),
		FromAccountID: fromID,
		ToAccountID:   toID,
		InvoiceID:     invoiceID,
		RefundReason:  refundReason,
		Note:          req.Note,
		PaymentDate:   paymentDate,
		Operator:      op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Cancel godoc
// @ID           cancelTransaction
// @Summary      Cancel a transaction
// @Description  Soft-cancel a posted transaction, restoring balances through reversal entries
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body CancelTransactionRequest true "Cancel request"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err = h.txService.CancelTransaction(c.Request.Context(), ledgerapp.CancelTransactionRequest{
		TransactionID: txID,
		Reason:        req.Reason,
		Operator:      op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Get godoc
// @ID           getTransaction
// @Summary      Get transaction by ID
// @Description  Get a specific ledger transaction with its entries
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.txService.GetTransaction(c.Request.Context(), txID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Description  List ledger transactions with optional filtering
// @Tags         transactions
// @Produce      json
// @Param        type query string false "Transaction type" Enums(payment, refund, deposit, admin_settlement, charge, discount, adjustment)
// @Param        status query string false "Lifecycle status" Enums(active, canceled)
// @Param        account_id query string false "Account on either side" format(uuid)
// @Param        invoice_id query string false "Linked invoice" format(uuid)
// @Param        branch_id query string false "Branch" format(uuid)
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var filter TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter, err := filter.toDomain()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.txService.ListTransactions(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// toDomain converts the query filter to its domain counterpart
func (f TransactionListFilter) toDomain() (ledger.TransactionFilter, error) {
	filter := ledger.TransactionFilter{}
	filter.Page = f.Page
	filter.PageSize = f.PageSize

	if f.Type != "" {
		t := ledger.TransactionType(f.Type)
		filter.Type = &t
	}
	if f.Status != "" {
		s := ledger.TransactionStatus(f.Status)
		filter.Status = &s
	}
	if f.AccountID != "" {
		id, err := uuid.Parse(f.AccountID)
		if err != nil {
			return filter, err
		}
		filter.AccountID = &id
	}
	if f.InvoiceID != "" {
		id, err := uuid.Parse(f.InvoiceID)
		if err != nil {
			return filter, err
		}
		filter.InvoiceID = &id
	}
	if f.BranchID != "" {
		id, err := uuid.Parse(f.BranchID)
		if err != nil {
			return filter, err
		}
		filter.BranchID = &id
	}

	from, ok := parseDate(f.DateFrom)
	if !ok {
		return filter, errInvalidDateRange
	}
	filter.FromDate = from

	to, ok := parseDate(f.DateTo)
	if !ok {
		return filter, errInvalidDateRange
	}
	filter.ToDate = to

	return filter, nil
}
