package handler

import (
	partnerapp "github.com/cargomesh/backend/internal/application/partner"
	"github.com/cargomesh/backend/internal/domain/partner"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartnerHandler handles settlement partner API endpoints
type PartnerHandler struct {
	BaseHandler
	partnerService *partnerapp.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *partnerapp.PartnerService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
	}
}

// CreatePartnerRequest represents a request to register a partner
// @Description Request body for registering a settlement partner
type CreatePartnerRequest struct {
	Type           string  `json:"type" binding:"required,oneof=shipper consignee freelance agent" example:"agent"`
	Name           string  `json:"name" binding:"required,min=1,max=200" example:"Falcon Logistics LLC"`
	Currency       string  `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"AED"`
	OpeningBalance float64 `json:"opening_balance" example:"0.00"`
	ContactPhone   string  `json:"contact_phone" binding:"max=50" example:"+971501234567"`
	ContactEmail   string  `json:"contact_email" binding:"omitempty,email,max=200" example:"ops@falcon.example"`
}

// SetPartnerActiveRequest represents an activation toggle
// @Description Request body for activating or deactivating a partner
type SetPartnerActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required" example:"false"`
}

// RecordPartnerTxRequest represents a request to post a partner movement
// @Description Request body for posting a movement on a partner's ledger
type RecordPartnerTxRequest struct {
	TxType           string  `json:"tx_type" binding:"required,oneof=WE_PAY_PARTNER PARTNER_PAYS_US PARTNER_TO_PARTNER_TRANSFER ADJUSTMENT" example:"WE_PAY_PARTNER"`
	Amount           float64 `json:"amount" binding:"required" example:"500.00"`
	AdminAccountID   *string `json:"admin_account_id" binding:"omitempty,uuid"`
	CounterPartnerID *string `json:"counter_partner_id" binding:"omitempty,uuid"`
	Note             string  `json:"note" binding:"max=500" example:"Weekly settlement"`
}

// VoidPartnerTxRequest represents a request to void a posted record
// @Description Request body for voiding a partner transaction
type VoidPartnerTxRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Duplicate settlement entry"`
}

// PartnerListFilter represents filter options for partner list
// @Description Filter options for listing partners
type PartnerListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=shipper consignee freelance agent" example:"agent"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// PartnerTxListFilter represents filter options for partner transaction list
// @Description Filter options for listing partner transactions
type PartnerTxListFilter struct {
	TxType   string `form:"tx_type" binding:"omitempty,oneof=WE_PAY_PARTNER PARTNER_PAYS_US PARTNER_TO_PARTNER_TRANSFER ADJUSTMENT REVERSAL" example:"WE_PAY_PARTNER"`
	Status   string `form:"status" binding:"omitempty,oneof=posted voided" example:"posted"`
	DateFrom string `form:"date_from" example:"2026-01-01"`
	DateTo   string `form:"date_to" example:"2026-01-31"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// PartnerResponse represents a partner in API responses
// @Description Settlement partner response
type PartnerResponse struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type         string  `json:"type" example:"agent"`
	Name         string  `json:"name" example:"Falcon Logistics LLC"`
	Currency     string  `json:"currency" example:"AED"`
	Balance      float64 `json:"balance" example:"-500.00"`
	ContactPhone string  `json:"contact_phone,omitempty"`
	ContactEmail string  `json:"contact_email,omitempty"`
	IsActive     bool    `json:"is_active" example:"true"`
	CreatedAt    string  `json:"created_at" example:"2026-01-24T10:00:00Z"`
}

// Create godoc
// @ID           createPartner
// @Summary      Register a partner
// @Description  Register a settlement partner with an optional opening balance
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        request body CreatePartnerRequest true "Partner request"
// @Success      201 {object} APIResponse[PartnerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners [post]
func (h *PartnerHandler) Create(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	p, err := h.partnerService.CreatePartner(c.Request.Context(), partnerapp.CreatePartnerRequest{
		Type:           partner.PartnerType(req.Type),
		Name:           req.Name,
		Currency:       valueobject.Currency(req.Currency),
		OpeningBalance: toDecimal(req.OpeningBalance),
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		Operator:       op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, p)
}

// Get godoc
// @ID           getPartner
// @Summary      Get partner by ID
// @Description  Get a specific settlement partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} APIResponse[PartnerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners/{id} [get]
func (h *PartnerHandler) Get(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	p, err := h.partnerService.GetPartner(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, p)
}

// List godoc
// @ID           listPartners
// @Summary      List partners
// @Description  List settlement partners with optional filtering
// @Tags         partners
// @Produce      json
// @Param        type query string false "Partner type" Enums(shipper, consignee, freelance, agent)
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]PartnerResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners [get]
func (h *PartnerHandler) List(c *gin.Context) {
	var filter PartnerListFilter
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

	domainFilter := partner.PartnerFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Type != "" {
		t := partner.PartnerType(filter.Type)
		domainFilter.Type = &t
	}
	domainFilter.IsActive = filter.IsActive

	result, err := h.partnerService.ListPartners(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// SetActive godoc
// @ID           setPartnerActive
// @Summary      Activate or deactivate a partner
// @Description  Toggle a partner's active flag; deactivation requires a settled balance
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Param        request body SetPartnerActiveRequest true "Activation request"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners/{id}/active [patch]
func (h *PartnerHandler) SetActive(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	var req SetPartnerActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.partnerService.SetPartnerActive(c.Request.Context(), partnerID, *req.IsActive); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordTransaction godoc
// @ID           recordPartnerTransaction
// @Summary      Post a partner movement
// @Description  Post a settlement movement on a partner's ledger; payments also move the named company account
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key for safe retries"
// @Param        id path string true "Partner ID" format(uuid)
// @Param        request body RecordPartnerTxRequest true "Movement request"
// @Success      201 {object} APIResponse[partnerapp.RecordPartnerTxResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners/{id}/transactions [post]
func (h *PartnerHandler) RecordTransaction(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	var req RecordPartnerTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	adminAccountID, err := parseUUIDPtr(req.AdminAccountID)
	if err != nil {
		h.BadRequest(c, "Invalid admin account ID format")
		return
	}
	counterPartnerID, err := parseUUIDPtr(req.CounterPartnerID)
	if err != nil {
		h.BadRequest(c, "Invalid counter partner ID format")
		return
	}

	result, err := h.partnerService.RecordPartnerTx(c.Request.Context(), partnerapp.RecordPartnerTxRequest{
		PartnerID:        partnerID,
		TxType:           partner.PartnerTransactionType(req.TxType),
		Amount:           toDecimal(req.Amount),
		AdminAccountID:   adminAccountID,
		CounterPartnerID: counterPartnerID,
		Note:             req.Note,
		Operator:         op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// VoidTransaction godoc
// @ID           voidPartnerTransaction
// @Summary      Void a partner transaction
// @Description  Void a posted partner record by appending a reversal with the opposite movement
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id path string true "Partner transaction ID" format(uuid)
// @Param        request body VoidPartnerTxRequest true "Void request"
// @Success      200 {object} APIResponse[partnerapp.RecordPartnerTxResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners/transactions/{id} [delete]
func (h *PartnerHandler) VoidTransaction(c *gin.Context) {
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

	var req VoidPartnerTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.partnerService.VoidPartnerTx(c.Request.Context(), partnerapp.VoidPartnerTxRequest{
		TransactionID: txID,
		Reason:        req.Reason,
		Operator:      op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTransactions godoc
// @ID           listPartnerTransactions
// @Summary      List partner transactions
// @Description  List the movements posted on a partner's ledger
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Param        tx_type query string false "Transaction type" Enums(WE_PAY_PARTNER, PARTNER_PAYS_US, PARTNER_TO_PARTNER_TRANSFER, ADJUSTMENT, REVERSAL)
// @Param        status query string false "Lifecycle status" Enums(posted, voided)
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]partner.PartnerTransaction]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /partners/{id}/transactions [get]
func (h *PartnerHandler) ListTransactions(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid partner ID format")
		return
	}

	var filter PartnerTxListFilter
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

	domainFilter := partner.PartnerTransactionFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.TxType != "" {
		t := partner.PartnerTransactionType(filter.TxType)
		domainFilter.TxType = &t
	}
	if filter.Status != "" {
		s := partner.PartnerTransactionStatus(filter.Status)
		domainFilter.Status = &s
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

	result, err := h.partnerService.ListPartnerTransactions(c.Request.Context(), partnerID, domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
