package models

import (
	"time"

	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the billing Order aggregate.
type OrderModel struct {
	AggregateModel
	OrderNo      string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	BranchID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status       billing.OrderStatus  `gorm:"type:varchar(20);not null;default:'received'"`
	WeightType   billing.WeightType   `gorm:"type:varchar(20);not null"`
	ActualWeight decimal.Decimal      `gorm:"type:decimal(12,3);not null;default:0"`
	WidthCm      decimal.Decimal      `gorm:"type:decimal(12,3);not null;default:0"`
	DepthCm      decimal.Decimal      `gorm:"type:decimal(12,3);not null;default:0"`
	HeightCm     decimal.Decimal      `gorm:"type:decimal(12,3);not null;default:0"`
	RateKg       decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	RateCbm      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Adjustments  billing.Adjustments  `gorm:"type:jsonb"`
	TotalPrice   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null"`
	InvoiceID    *uuid.UUID           `gorm:"type:uuid;index"`
	ReceivedAt   time.Time            `gorm:"not null;index"`
	Note         string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *billing.Order {
	o := &billing.Order{
		OrderNo:      m.OrderNo,
		CustomerID:   m.CustomerID,
		BranchID:     m.BranchID,
		Status:       m.Status,
		WeightType:   m.WeightType,
		ActualWeight: m.ActualWeight,
		WidthCm:      m.WidthCm,
		DepthCm:      m.DepthCm,
		HeightCm:     m.HeightCm,
		RateKg:       m.RateKg,
		RateCbm:      m.RateCbm,
		Adjustments:  m.Adjustments,
		TotalPrice:   m.TotalPrice,
		Currency:     m.Currency,
		InvoiceID:    m.InvoiceID,
		ReceivedAt:   m.ReceivedAt,
		Note:         m.Note,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *billing.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNo = o.OrderNo
	m.CustomerID = o.CustomerID
	m.BranchID = o.BranchID
	m.Status = o.Status
	m.WeightType = o.WeightType
	m.ActualWeight = o.ActualWeight
	m.WidthCm = o.WidthCm
	m.DepthCm = o.DepthCm
	m.HeightCm = o.HeightCm
	m.RateKg = o.RateKg
	m.RateCbm = o.RateCbm
	m.Adjustments = o.Adjustments
	m.TotalPrice = o.TotalPrice
	m.Currency = o.Currency
	m.InvoiceID = o.InvoiceID
	m.ReceivedAt = o.ReceivedAt
	m.Note = o.Note
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *billing.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate.
// Items are child rows loaded with the invoice; payment applications
// live in a JSONB column since they are only ever read through the
// aggregate.
type InvoiceModel struct {
	AggregateModel
	InvoiceNo   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	BranchID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Currency    valueobject.Currency  `gorm:"type:varchar(3);not null"`
	RateKg      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	RateCbm     decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalWeight decimal.Decimal       `gorm:"type:decimal(12,3);not null;default:0"`
	TotalVolume decimal.Decimal       `gorm:"type:decimal(12,3);not null;default:0"`
	Total       decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PaidTotal   decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	DueTotal    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	PointsUsed  int64                 `gorm:"not null;default:0"`
	PointsValue decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status      billing.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	Note        string                `gorm:"type:text"`
	IssuedAt    time.Time             `gorm:"not null;index"`
	PaidAt      *time.Time
	VoidedAt    *time.Time
	VoidReason  string                      `gorm:"type:text"`
	Items       []InvoiceItemModel          `gorm:"foreignKey:InvoiceID"`
	Payments    billing.PaymentApplications `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNo:   m.InvoiceNo,
		CustomerID:  m.CustomerID,
		BranchID:    m.BranchID,
		Currency:    m.Currency,
		RateKg:      m.RateKg,
		RateCbm:     m.RateCbm,
		TotalWeight: m.TotalWeight,
		TotalVolume: m.TotalVolume,
		Total:       m.Total,
		PaidTotal:   m.PaidTotal,
		DueTotal:    m.DueTotal,
		PointsUsed:  m.PointsUsed,
		PointsValue: m.PointsValue,
		Status:      m.Status,
		Note:        m.Note,
		IssuedAt:    m.IssuedAt,
		PaidAt:      m.PaidAt,
		VoidedAt:    m.VoidedAt,
		VoidReason:  m.VoidReason,
		Payments:    m.Payments,
	}
	if len(m.Items) > 0 {
		inv.Items = make([]billing.InvoiceItem, len(m.Items))
		for i := range m.Items {
			inv.Items[i] = *m.Items[i].ToDomain()
		}
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNo = inv.InvoiceNo
	m.CustomerID = inv.CustomerID
	m.BranchID = inv.BranchID
	m.Currency = inv.Currency
	m.RateKg = inv.RateKg
	m.RateCbm = inv.RateCbm
	m.TotalWeight = inv.TotalWeight
	m.TotalVolume = inv.TotalVolume
	m.Total = inv.Total
	m.PaidTotal = inv.PaidTotal
	m.DueTotal = inv.DueTotal
	m.PointsUsed = inv.PointsUsed
	m.PointsValue = inv.PointsValue
	m.Status = inv.Status
	m.Note = inv.Note
	m.IssuedAt = inv.IssuedAt
	m.PaidAt = inv.PaidAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.Payments = inv.Payments
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for invoice line snapshots.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNo   string          `gorm:"type:varchar(50);not null"`
	Weight    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Volume    decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		OrderID:    m.OrderID,
		OrderNo:    m.OrderNo,
		Weight:     m.Weight,
		Volume:     m.Volume,
		Amount:     m.Amount,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem entity.
func (m *InvoiceItemModel) FromDomain(item *billing.InvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.OrderID = item.OrderID
	m.OrderNo = item.OrderNo
	m.Weight = item.Weight
	m.Volume = item.Volume
	m.Amount = item.Amount
}

// CustomerPointsModel is the persistence model for customer point balances.
type CustomerPointsModel struct {
	AggregateModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Available  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerPointsModel) TableName() string {
	return "customer_points"
}

// ToDomain converts the persistence model to a domain CustomerPoints aggregate.
func (m *CustomerPointsModel) ToDomain() *billing.CustomerPoints {
	cp := &billing.CustomerPoints{
		CustomerID: m.CustomerID,
		Available:  m.Available,
	}
	m.PopulateAggregateRoot(&cp.BaseAggregateRoot)
	return cp
}

// FromDomain populates the persistence model from a domain CustomerPoints aggregate.
func (m *CustomerPointsModel) FromDomain(cp *billing.CustomerPoints) {
	m.FromDomainAggregateRoot(cp.BaseAggregateRoot)
	m.CustomerID = cp.CustomerID
	m.Available = cp.Available
}

// CustomerPointsModelFromDomain creates a new persistence model from a domain CustomerPoints aggregate.
func CustomerPointsModelFromDomain(cp *billing.CustomerPoints) *CustomerPointsModel {
	m := &CustomerPointsModel{}
	m.FromDomain(cp)
	return m
}
