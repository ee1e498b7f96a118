package handler

import (
	"time"

	accountapp "github.com/cargomesh/backend/internal/application/account"
	ledgerapp "github.com/cargomesh/backend/internal/application/ledger"
	"github.com/cargomesh/backend/internal/domain/account"
	"github.com/cargomesh/backend/internal/domain/ledger"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles account-related API endpoints
type AccountHandler struct {
	BaseHandler
	accountService *accountapp.AccountService
	txService      *ledgerapp.TransactionService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *accountapp.AccountService, txService *ledgerapp.TransactionService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		txService:      txService,
	}
}

// CreateAccountRequest represents a request to open an account
// @Description Request body for opening an account
type CreateAccountRequest struct {
	OwnerType       string  `json:"owner_type" binding:"required,oneof=admin branch customer supplier staff" example:"customer"`
	PartyID         *string `json:"party_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Currency        string  `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	PaymentMethodID *string `json:"payment_method_id" binding:"omitempty,uuid"`
}

// AdjustBalanceRequest represents a manual balance correction
// @Description Request body for adjusting an account balance
type AdjustBalanceRequest struct {
	Amount float64 `json:"amount" binding:"required" example:"-50.00"`
	Title  string  `json:"title" binding:"required,min=1,max=200" example:"Opening balance correction"`
	Date   *string `json:"date" binding:"omitempty" example:"2026-01-24"`
	Note   string  `json:"note" binding:"max=500" example:"Migrated from the old book"`
}

// SetAccountActiveRequest represents an activation toggle
// @Description Request body for activating or deactivating an account
type SetAccountActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required" example:"false"`
}

// CreatePaymentMethodRequest represents a request to register a payment method
// @Description Request body for registering a payment method
type CreatePaymentMethodRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" example:"Main cash drawer"`
	Kind string `json:"kind" binding:"required,oneof=cash bank wallet" example:"cash"`
}

// AccountListFilter represents filter options for account list
// @Description Filter options for listing accounts
type AccountListFilter struct {
	OwnerType string `form:"owner_type" binding:"omitempty,oneof=admin branch customer supplier staff" example:"customer"`
	PartyID   string `form:"party_id" binding:"omitempty,uuid"`
	Currency  string `form:"currency" binding:"omitempty,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// EntryListFilter represents filter options for account entry list
// @Description Filter options for listing account entries
type EntryListFilter struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=normal reversal" example:"normal"`
	DateFrom string `form:"date_from" example:"2026-01-01"`
	DateTo   string `form:"date_to" example:"2026-01-31"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// AccountResponse represents an account in API responses
// @Description Account response
type AccountResponse struct {
	ID        string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OwnerType string  `json:"owner_type" example:"customer"`
	PartyID   *string `json:"party_id,omitempty"`
	Currency  string  `json:"currency" example:"USD"`
	Balance   float64 `json:"balance" example:"1500.00"`
	IsActive  bool    `json:"is_active" example:"true"`
	CreatedAt string  `json:"created_at" example:"2026-01-24T10:00:00Z"`
}

// Create godoc
// @ID           createAccount
// @Summary      Open an account
// @Description  Open a financial account for an owner; one account per owner and currency
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account request"
// @Success      201 {object} APIResponse[AccountResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	partyID, err := parseUUIDPtr(req.PartyID)
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}
	methodID, err := parseUUIDPtr(req.PaymentMethodID)
	if err != nil {
		h.BadRequest(c, "Invalid payment method ID format")
		return
	}

	owner := account.OwnerRef{
		Type:    account.OwnerType(req.OwnerType),
		PartyID: partyID,
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), accountapp.CreateAccountRequest{
		Owner:           owner,
		Currency:        valueobject.Currency(req.Currency),
		PaymentMethodID: methodID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, acc)
}

// Get godoc
// @ID           getAccount
// @Summary      Get account by ID
// @Description  Get a specific account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[AccountResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, acc)
}

// GetBalance godoc
// @ID           getAccountBalance
// @Summary      Get account balance
// @Description  Get the current balance of an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[BalanceData]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	balance, currency, err := h.accountService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, map[string]interface{}{
		"account_id": accountID,
		"balance":    balance,
		"currency":   currency,
	})
}

// List godoc
// @ID           listAccounts
// @Summary      List accounts
// @Description  List accounts with optional filtering
// @Tags         accounts
// @Produce      json
// @Param        owner_type query string false "Owner type" Enums(admin, branch, customer, supplier, staff)
// @Param        party_id query string false "Owning party" format(uuid)
// @Param        currency query string false "Currency" Enums(USD, EUR, GBP, AED, CNY, TRY)
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]AccountResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var filter AccountListFilter
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

	domainFilter := account.AccountFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.OwnerType != "" {
		ot := account.OwnerType(filter.OwnerType)
		domainFilter.OwnerType = &ot
	}
	if filter.PartyID != "" {
		id, err := uuid.Parse(filter.PartyID)
		if err != nil {
			h.BadRequest(c, "Invalid party ID format")
			return
		}
		domainFilter.PartyID = &id
	}
	if filter.Currency != "" {
		cur := valueobject.Currency(filter.Currency)
		domainFilter.Currency = &cur
	}
	domainFilter.IsActive = filter.IsActive

	result, err := h.accountService.ListAccounts(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListEntries godoc
// @ID           listAccountEntries
// @Summary      List account entries
// @Description  List the posted entries of an account, newest first
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        kind query string false "Entry kind" Enums(normal, reversal)
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]ledger.Entry]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id}/entries [get]
func (h *AccountHandler) ListEntries(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var filter EntryListFilter
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

	domainFilter := ledger.EntryFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Kind != "" {
		k := ledger.EntryKind(filter.Kind)
		domainFilter.Kind = &k
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

	result, err := h.txService.ListEntries(c.Request.Context(), accountID, domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Adjust godoc
// @ID           adjustAccountBalance
// @Summary      Adjust account balance
// @Description  Post a signed manual correction to an account, recorded as a regular transaction
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body AdjustBalanceRequest true "Adjust request"
// @Success      201 {object} APIResponse[TransactionResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id}/adjust [post]
func (h *AccountHandler) Adjust(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var date *time.Time
	if req.Date != nil {
		d, ok := parseDate(*req.Date)
		if !ok {
			h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = d
	}

	tx, err := h.accountService.Adjust(c.Request.Context(), accountapp.AdjustRequest{
		AccountID: accountID,
		Amount:    toDecimal(req.Amount),
		Title:     req.Title,
		Date:      date,
		Note:      req.Note,
		Operator:  op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tx)
}

// SetActive godoc
// @ID           setAccountActive
// @Summary      Activate or deactivate an account
// @Description  Toggle an account's active flag; deactivation requires a zero balance
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body SetAccountActiveRequest true "Activation request"
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /accounts/{id}/active [patch]
func (h *AccountHandler) SetActive(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req SetAccountActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.accountService.SetActive(c.Request.Context(), accountID, *req.IsActive); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreatePaymentMethod godoc
// @ID           createPaymentMethod
// @Summary      Register a payment method
// @Description  Register a named payment method for company accounts
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentMethodRequest true "Payment method request"
// @Success      201 {object} APIResponse[account.PaymentMethod]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payment-methods [post]
func (h *AccountHandler) CreatePaymentMethod(c *gin.Context) {
	var req CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	method, err := h.accountService.CreatePaymentMethod(c.Request.Context(), req.Name, account.PaymentMethodKind(req.Kind))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, method)
}

// ListPaymentMethods godoc
// @ID           listPaymentMethods
// @Summary      List payment methods
// @Description  List registered payment methods
// @Tags         payment-methods
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]account.PaymentMethod]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payment-methods [get]
func (h *AccountHandler) ListPaymentMethods(c *gin.Context) {
	var listReq struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if listReq.Page <= 0 {
		listReq.Page = 1
	}
	if listReq.PageSize <= 0 {
		listReq.PageSize = 20
	}

	methods, err := h.accountService.ListPaymentMethods(c.Request.Context(), shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, methods)
}
