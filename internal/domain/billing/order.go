package billing

import (
	"strings"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeightType selects which measure an order is billed by
type WeightType string

const (
	WeightTypeActual     WeightType = "actual"
	WeightTypeVolumetric WeightType = "volumetric"
)

// IsValid checks if the weight type is valid
func (w WeightType) IsValid() bool {
	return w == WeightTypeActual || w == WeightTypeVolumetric
}

// OrderStatus tracks fulfillment, which billing only observes
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusInTransit, OrderStatusDelivered:
		return true
	}
	return false
}

// Order carries the billing view of a freight order: the measures and
// rates that price it, the ordered adjustments, and the derived total.
// TotalPrice is recomputed whenever any pricing input changes.
type Order struct {
	shared.BaseAggregateRoot
	OrderNo      string
	CustomerID   uuid.UUID
	BranchID     uuid.UUID
	Status       OrderStatus
	WeightType   WeightType
	ActualWeight decimal.Decimal // kg, 3 decimals
	WidthCm      decimal.Decimal
	DepthCm      decimal.Decimal
	HeightCm     decimal.Decimal
	RateKg       decimal.Decimal
	RateCbm      decimal.Decimal
	Adjustments  Adjustments
	TotalPrice   decimal.Decimal // derived, 2 decimals
	Currency     valueobject.Currency
	InvoiceID    *uuid.UUID
	ReceivedAt   time.Time
	Note         string
}

// OrderSpec carries the inputs for creating an order
type OrderSpec struct {
	OrderNo      string
	CustomerID   uuid.UUID
	BranchID     uuid.UUID
	WeightType   WeightType
	ActualWeight decimal.Decimal
	WidthCm      decimal.Decimal
	DepthCm      decimal.Decimal
	HeightCm     decimal.Decimal
	RateKg       decimal.Decimal
	RateCbm      decimal.Decimal
	Adjustments  []Adjustment
	Currency     valueobject.Currency
	ReceivedAt   time.Time
	Note         string
}

// NewOrder creates a new order and prices it
func NewOrder(spec OrderSpec) (*Order, error) {
	if strings.TrimSpace(spec.OrderNo) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "order number is required")
	}
	if spec.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "customer ID is required")
	}
	if spec.BranchID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "branch ID is required")
	}
	if !spec.WeightType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "invalid weight type")
	}
	if !spec.Currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if spec.ActualWeight.IsNegative() || spec.WidthCm.IsNegative() || spec.DepthCm.IsNegative() || spec.HeightCm.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "measures cannot be negative")
	}
	if spec.RateKg.IsNegative() || spec.RateCbm.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "rates cannot be negative")
	}
	for _, adj := range spec.Adjustments {
		if err := adj.Validate(); err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
		}
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNo:           strings.TrimSpace(spec.OrderNo),
		CustomerID:        spec.CustomerID,
		BranchID:          spec.BranchID,
		Status:            OrderStatusReceived,
		WeightType:        spec.WeightType,
		ActualWeight:      spec.ActualWeight.Round(3),
		WidthCm:           spec.WidthCm,
		DepthCm:           spec.DepthCm,
		HeightCm:          spec.HeightCm,
		RateKg:            spec.RateKg,
		RateCbm:           spec.RateCbm,
		Adjustments:       spec.Adjustments,
		Currency:          spec.Currency,
		ReceivedAt:        spec.ReceivedAt,
		Note:              strings.TrimSpace(spec.Note),
	}
	if o.ReceivedAt.IsZero() {
		o.ReceivedAt = time.Now()
	}
	o.TotalPrice = RateOrder(o)
	return o, nil
}

// BillableWeight returns the weight the order is billed by, in kg.
// Zero for volumetric orders.
func (o *Order) BillableWeight() decimal.Decimal {
	if o.WeightType == WeightTypeActual {
		return o.ActualWeight.Round(3)
	}
	return decimal.Zero
}

// BillableVolume returns the volume the order is billed by, in cbm.
// Zero for actual-weight orders.
func (o *Order) BillableVolume() decimal.Decimal {
	if o.WeightType == WeightTypeVolumetric {
		return o.WidthCm.Mul(o.DepthCm).Mul(o.HeightCm).
			Div(decimal.NewFromInt(1_000_000)).Round(3)
	}
	return decimal.Zero
}

// IsInvoiced reports whether the order is attached to an invoice
func (o *Order) IsInvoiced() bool {
	return o.InvoiceID != nil
}

// UpdateMeasures changes the pricing inputs and reprices the order.
// Allowed even after invoicing; the invoice catches up via a totals
// regeneration.
func (o *Order) UpdateMeasures(weightType WeightType, actualWeight, widthCm, depthCm, heightCm decimal.Decimal) error {
	if !weightType.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "invalid weight type")
	}
	if actualWeight.IsNegative() || widthCm.IsNegative() || depthCm.IsNegative() || heightCm.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "measures cannot be negative")
	}
	o.WeightType = weightType
	o.ActualWeight = actualWeight.Round(3)
	o.WidthCm = widthCm
	o.DepthCm = depthCm
	o.HeightCm = heightCm
	o.TotalPrice = RateOrder(o)
	o.IncrementVersion()
	return nil
}

// UpdateRates changes the unit rates and reprices the order
func (o *Order) UpdateRates(rateKg, rateCbm decimal.Decimal) error {
	if rateKg.IsNegative() || rateCbm.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "rates cannot be negative")
	}
	o.RateKg = rateKg
	o.RateCbm = rateCbm
	o.TotalPrice = RateOrder(o)
	o.IncrementVersion()
	return nil
}

// UpdateAdjustments replaces the adjustment list and reprices the order
func (o *Order) UpdateAdjustments(adjustments []Adjustment) error {
	for _, adj := range adjustments {
		if err := adj.Validate(); err != nil {
			return shared.NewDomainError("VALIDATION_ERROR", err.Error())
		}
	}
	o.Adjustments = adjustments
	o.TotalPrice = RateOrder(o)
	o.IncrementVersion()
	return nil
}

// AttachToInvoice links the order to an invoice
func (o *Order) AttachToInvoice(invoiceID uuid.UUID) error {
	if o.InvoiceID != nil {
		return shared.NewDomainError("INVALID_STATE", "order is already invoiced")
	}
	o.InvoiceID = &invoiceID
	o.IncrementVersion()
	return nil
}

// DetachFromInvoice releases the order back to un-invoiced
func (o *Order) DetachFromInvoice() {
	if o.InvoiceID == nil {
		return
	}
	o.InvoiceID = nil
	o.IncrementVersion()
}

// SetStatus moves the order through fulfillment
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "invalid order status")
	}
	o.Status = status
	o.IncrementVersion()
	return nil
}
