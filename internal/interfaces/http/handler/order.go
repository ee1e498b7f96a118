package handler

import (
	"time"

	billingapp "github.com/cargomesh/backend/internal/application/billing"
	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles freight order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *billingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *billingapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// AdjustmentRequest represents a pricing adjustment line
// @Description Pricing adjustment applied on top of the base freight price
type AdjustmentRequest struct {
	Label string  `json:"label" binding:"required,min=1,max=100" example:"Packing fee"`
	Kind  string  `json:"kind" binding:"required,oneof=cost discount" example:"cost"`
	Mode  string  `json:"mode" binding:"required,oneof=amount percentage" example:"amount"`
	Value float64 `json:"value" binding:"required,gt=0" example:"25.00"`
}

// CreateOrderRequest represents a request to register a freight order
// @Description Request body for registering a freight order
type CreateOrderRequest struct {
	CustomerID   string              `json:"customer_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BranchID     string              `json:"branch_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	WeightType   string              `json:"weight_type" binding:"required,oneof=actual volumetric" example:"actual"`
	ActualWeight float64             `json:"actual_weight" binding:"omitempty,gte=0" example:"120.5"`
	WidthCm      float64             `json:"width_cm" binding:"omitempty,gte=0" example:"80"`
	DepthCm      float64             `json:"depth_cm" binding:"omitempty,gte=0" example:"60"`
	HeightCm     float64             `json:"height_cm" binding:"omitempty,gte=0" example:"50"`
	RateKg       float64             `json:"rate_kg" binding:"omitempty,gte=0" example:"2.50"`
	RateCbm      float64             `json:"rate_cbm" binding:"omitempty,gte=0" example:"180.00"`
	Currency     string              `json:"currency" binding:"required,oneof=USD EUR GBP AED CNY TRY" example:"USD"`
	Adjustments  []AdjustmentRequest `json:"adjustments" binding:"omitempty,dive"`
	ReceivedAt   *string             `json:"received_at" binding:"omitempty" example:"2026-01-24"`
	Note         string              `json:"note" binding:"max=500" example:"Fragile cargo"`
}

// UpdateOrderRequest represents a request to correct an order
// @Description Request body for correcting an order; omitted fields are left unchanged
type UpdateOrderRequest struct {
	WeightType   *string             `json:"weight_type" binding:"omitempty,oneof=actual volumetric" example:"volumetric"`
	ActualWeight *float64            `json:"actual_weight" binding:"omitempty,gte=0" example:"130.0"`
	WidthCm      *float64            `json:"width_cm" binding:"omitempty,gte=0"`
	DepthCm      *float64            `json:"depth_cm" binding:"omitempty,gte=0"`
	HeightCm     *float64            `json:"height_cm" binding:"omitempty,gte=0"`
	RateKg       *float64            `json:"rate_kg" binding:"omitempty,gte=0"`
	RateCbm      *float64            `json:"rate_cbm" binding:"omitempty,gte=0"`
	Adjustments  []AdjustmentRequest `json:"adjustments" binding:"omitempty,dive"`
	Status       *string             `json:"status" binding:"omitempty,oneof=received in_transit delivered" example:"in_transit"`
	Note         *string             `json:"note" binding:"omitempty,max=500"`
}

// OrderListFilter represents filter options for order list
// @Description Filter options for listing orders
type OrderListFilter struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	BranchID   string `form:"branch_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=received in_transit delivered" example:"received"`
	Invoiced   *bool  `form:"invoiced"`
	DateFrom   string `form:"date_from" example:"2026-01-01"`
	DateTo     string `form:"date_to" example:"2026-01-31"`
	Page       int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// OrderResponse represents a freight order in API responses
// @Description Freight order response
type OrderResponse struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderNo    string  `json:"order_no" example:"ORD-20260124-0001"`
	CustomerID string  `json:"customer_id"`
	BranchID   string  `json:"branch_id"`
	WeightType string  `json:"weight_type" example:"actual"`
	TotalPrice float64 `json:"total_price" example:"326.25"`
	Currency   string  `json:"currency" example:"USD"`
	Status     string  `json:"status" example:"received"`
	InvoiceID  *string `json:"invoice_id,omitempty"`
	ReceivedAt string  `json:"received_at" example:"2026-01-24T00:00:00Z"`
	CreatedAt  string  `json:"created_at" example:"2026-01-24T10:00:00Z"`
}

// toAdjustments converts request adjustment lines to their domain form
func toAdjustments(reqs []AdjustmentRequest) []billing.Adjustment {
	if len(reqs) == 0 {
		return nil
	}
	adjustments := make([]billing.Adjustment, 0, len(reqs))
	for _, r := range reqs {
		adjustments = append(adjustments, billing.Adjustment{
			Label: r.Label,
			Kind:  billing.AdjustmentKind(r.Kind),
			Mode:  billing.AdjustmentMode(r.Mode),
			Value: toDecimal(r.Value),
		})
	}
	return adjustments
}

// Create godoc
// @ID           createOrder
// @Summary      Register a freight order
// @Description  Register an order and price it up front from weight, dimensions, and rates
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Order request"
// @Success      201 {object} APIResponse[OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateOrderRequest
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

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		d, ok := parseDate(*req.ReceivedAt)
		if !ok {
			h.BadRequest(c, "Invalid received date, expected YYYY-MM-DD")
			return
		}
		receivedAt = *d
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), billingapp.CreateOrderRequest{
		CustomerID:   customerID,
		BranchID:     branchID,
		WeightType:   billing.WeightType(req.WeightType),
		ActualWeight: toDecimal(req.ActualWeight),
		WidthCm:      toDecimal(req.WidthCm),
		DepthCm:      toDecimal(req.DepthCm),
		HeightCm:     toDecimal(req.HeightCm),
		RateKg:       toDecimal(req.RateKg),
		RateCbm:      toDecimal(req.RateCbm),
		Currency:     valueobject.Currency(req.Currency),
		Adjustments:  toAdjustments(req.Adjustments),
		ReceivedAt:   receivedAt,
		Note:         req.Note,
		Operator:     op,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// Update godoc
// @ID           updateOrder
// @Summary      Correct an order
// @Description  Correct an order's measures, rates, adjustments, or status and reprice it
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body UpdateOrderRequest true "Update request"
// @Success      200 {object} APIResponse[OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	op, err := getOperator(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	update := billingapp.UpdateOrderRequest{
		OrderID:  orderID,
		Operator: op,
		Note:     req.Note,
	}
	if req.WeightType != nil {
		wt := billing.WeightType(*req.WeightType)
		update.WeightType = &wt
	}
	if req.ActualWeight != nil {
		update.ActualWeight = toDecimalPtr(*req.ActualWeight)
	}
	if req.WidthCm != nil {
		update.WidthCm = toDecimalPtr(*req.WidthCm)
	}
	if req.DepthCm != nil {
		update.DepthCm = toDecimalPtr(*req.DepthCm)
	}
	if req.HeightCm != nil {
		update.HeightCm = toDecimalPtr(*req.HeightCm)
	}
	if req.RateKg != nil {
		update.RateKg = toDecimalPtr(*req.RateKg)
	}
	if req.RateCbm != nil {
		update.RateCbm = toDecimalPtr(*req.RateCbm)
	}
	if req.Adjustments != nil {
		update.Adjustments = toAdjustments(req.Adjustments)
	}
	if req.Status != nil {
		st := billing.OrderStatus(*req.Status)
		update.Status = &st
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), update)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Get godoc
// @ID           getOrder
// @Summary      Get order by ID
// @Description  Get a specific freight order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  List freight orders with optional filtering
// @Tags         orders
// @Produce      json
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        branch_id query string false "Branch" format(uuid)
// @Param        status query string false "Fulfillment status" Enums(received, in_transit, delivered)
// @Param        invoiced query bool false "Invoice attachment"
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to query string false "End date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]OrderResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter OrderListFilter
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

	domainFilter := billing.OrderFilter{}
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
		st := billing.OrderStatus(filter.Status)
		domainFilter.Status = &st
	}
	domainFilter.Invoiced = filter.Invoiced

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

	result, err := h.orderService.ListOrders(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
