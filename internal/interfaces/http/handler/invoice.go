package handler

import (
	billingapp "github.com/cargomesh/backend/internal/application/billing"
	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// CreateInvoiceRequest represents a request to issue an invoice
// @Description Request body for issuing an invoice over un-invoiced orders
type CreateInvoiceRequest struct {
	CustomerID string   `json:"customer_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BranchID   string   `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	OrderIDs   []string `json:"order_ids" binding:"required,min=1,dive,uuid"`
	RateKg     float64  `json:"rate_kg" binding:"omitempty,gte=0" example:"2.50"`
	RateCbm    float64  `json:"rate_cbm" binding:"omitempty,gte=0" example:"180.00"`
	Currency   string   `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	PointsUsed int64    `json:"points_used" binding:"omitempty,gte=0" example:"100"`
	Note       string   `json:"note" binding:"max=500"`
}

// UpdateInvoiceRequest represents a request to amend an unpaid invoice
// @Description Request body for amending an invoice that has no payments yet
type UpdateInvoiceRequest struct {
	OrderIDs   []string `json:"order_ids" binding:"required,min=1,dive,uuid"`
	Currency   string   `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	PointsUsed int64    `json:"points_used" binding:"omitempty,gte=0" example:"50"`
	Note       string   `json:"note" binding:"max=500"`
}

// VoidInvoiceRequest represents a request to void an invoice
// @Description Request body for voiding an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Issued to the wrong customer"`
}

// InvoiceListFilter represents filter options for invoice list
// @Description Filter options for listing invoices
type InvoiceListFilter struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	BranchID   string `form:"branch_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=draft issued partially_paid paid void" example:"issued"`
	DateFrom   string `form:"date_from" example:"2026-01-01"`
	DateTo     string `form:"date_to" example:"2026-01-31"`
	Page       int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// InvoiceResponse represents an invoice in API responses
// @Description Invoice response
type InvoiceResponse struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNo  string  `json:"invoice_no" example:"INV-20260124-0001"`
	CustomerID string  `json:"customer_id"`
	BranchID   string  `json:"branch_id"`
	Status     string  `json:"status" example:"issued"`
	Total      float64 `json:"total" example:"1250.00"`
	DueTotal   float64 `json:"due_total" example:"1150.00"`
	PointsUsed int64   `json:"points_used" example:"100"`
	Currency   string  `json:"currency" example:"USD"`
	IssuedAt   string  `json:"issued_at" example:"2026-01-24T10:00:00Z"`
}

// parseUUIDList parses a list of UUID strings
func parseUUIDList(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create godoc
// @ID           createInvoice
// @Summary      Issue an invoice
// @Description  Issue an invoice over un-invoiced orders of one customer and branch, optionally redeeming points
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice request"
// @Success      201 {object} APIResponse[billingapp.CreateInvoiceResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID format")
		return
	}
	orderIDs, err := parseUUIDList(req.OrderIDs)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), billingapp.CreateInvoiceRequest{
		CustomerID: customerID,
		BranchID:   branchID,
		OrderIDs:   orderIDs,
		RateKg:     toDecimal(req.RateKg),
		RateCbm:    toDecimal(req.RateCbm),
		Currency:   valueobject.Currency(req.Currency),
		PointsUsed: req.PointsUsed,
		Note:       req.Note,
		Operator:   op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Amend an invoice
// @Description  Amend an invoice that has no payments yet: line membership, currency, and point redemption
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body UpdateInvoiceRequest true "Update request"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderIDs, err := parseUUIDList(req.OrderIDs)
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), billingapp.UpdateInvoiceRequest{
		InvoiceID:  invoiceID,
		OrderIDs:   orderIDs,
		Currency:   valueobject.Currency(req.Currency),
		PointsUsed: req.PointsUsed,
		Note:       req.Note,
		Operator:   op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Void godoc
// @ID           voidInvoice
// @Summary      Void an invoice
// @Description  Void an invoice, releasing its orders, refunding redeemed points, and canceling applied payments
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body VoidInvoiceRequest true "Void request"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Void(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.invoiceService.VoidInvoice(c.Request.Context(), invoiceID, req.Reason, op); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Regenerate godoc
// @ID           regenerateInvoiceTotals
// @Summary      Regenerate invoice totals
// @Description  Recompute an invoice's lines and totals from the current state of its orders
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/regenerate [post]
func (h *InvoiceHandler) Regenerate(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.RegenerateInvoiceTotals(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get invoice by ID
// @Description  Get a specific invoice with its line items
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  List invoices with optional filtering
// @Tags         invoices
// @Produce      json
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        branch_id query string false "Branch" format(uuid)
// @Param        status query string false "Lifecycle status" Enums(draft, issued, partially_paid, paid, void)
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter InvoiceListFilter
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

	domainFilter := billing.InvoiceFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		domainFilter.CustomerID = &id
	}
	if filter.BranchID != "" {
		id, err := uuid.Parse(filter.BranchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch ID format")
			return
		}
		domainFilter.BranchID = &id
	}
	if filter.Status != "" {
		st := billing.InvoiceStatus(filter.Status)
		domainFilter.Status = &st
	}

	from, ok := parseDate(filter.DateFrom)
	if !ok {
		h.BadRequest(c, errInvalidDateRange.Error())
		return
	}
	domainFilter.FromDate = from
	to, ok := parseDate(filter.DateTo)
	if !ok {
		h.BadRequest(c, errInvalidDateRange.Error())
		return
	}
	domainFilter.ToDate = to

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
