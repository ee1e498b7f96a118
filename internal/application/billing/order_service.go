package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/cargomesh/backend/internal/domain/billing"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService manages freight orders and their pricing
type OrderService struct {
	uow       shared.UnitOfWork
	orderRepo billing.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(uow shared.UnitOfWork, orderRepo billing.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		uow:       uow,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// CreateOrderRequest represents a request to register an order
type CreateOrderRequest struct {
	CustomerID   uuid.UUID
	BranchID     uuid.UUID
	WeightType   billing.WeightType
	ActualWeight decimal.Decimal
	WidthCm      decimal.Decimal
	DepthCm      decimal.Decimal
	HeightCm     decimal.Decimal
	RateKg       decimal.Decimal
	RateCbm      decimal.Decimal
	Currency     valueobject.Currency
	Adjustments  []billing.Adjustment
	ReceivedAt   time.Time
	Note         string
	Operator     shared.Operator
}

// CreateOrder registers a freight order and prices it up front
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*billing.Order, error) {
	var order *billing.Order
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		orderNo, err := s.orderRepo.GenerateOrderNumber(ctx, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		order, err = billing.NewOrder(billing.OrderSpec{
			OrderNo:      orderNo,
			CustomerID:   req.CustomerID,
			BranchID:     req.BranchID,
			WeightType:   req.WeightType,
			ActualWeight: req.ActualWeight,
			WidthCm:      req.WidthCm,
			DepthCm:      req.DepthCm,
			HeightCm:     req.HeightCm,
			RateKg:       req.RateKg,
			RateCbm:      req.RateCbm,
			Currency:     req.Currency,
			Adjustments:  req.Adjustments,
			ReceivedAt:   req.ReceivedAt,
			Note:         req.Note,
		})
		if err != nil {
			return err
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		s.logger.Info("order created",
			zap.String("order_id", order.ID.String()),
			zap.String("order_no", order.OrderNo),
			zap.String("total_price", order.TotalPrice.String()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderRequest represents a request to correct an order's
// measures or adjustments. Nil fields are left unchanged.
type UpdateOrderRequest struct {
	OrderID      uuid.UUID
	WeightType   *billing.WeightType
	ActualWeight *decimal.Decimal
	WidthCm      *decimal.Decimal
	DepthCm      *decimal.Decimal
	HeightCm     *decimal.Decimal
	RateKg       *decimal.Decimal
	RateCbm      *decimal.Decimal
	Adjustments  []billing.Adjustment
	Status       *billing.OrderStatus
	Note         *string
	Operator     shared.Operator
}

// UpdateOrder corrects an order's measures, rates, or adjustments and
// reprices it. An invoiced order can still be corrected; the invoice
// catches up through the regenerate operation.
func (s *OrderService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*billing.Order, error) {
	var order *billing.Order
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}

		if req.WeightType != nil || req.ActualWeight != nil || req.WidthCm != nil || req.DepthCm != nil || req.HeightCm != nil {
			weightType := order.WeightType
			weight := order.ActualWeight
			width, depth, height := order.WidthCm, order.DepthCm, order.HeightCm
			if req.WeightType != nil {
				weightType = *req.WeightType
			}
			if req.ActualWeight != nil {
				weight = *req.ActualWeight
			}
			if req.WidthCm != nil {
				width = *req.WidthCm
			}
			if req.DepthCm != nil {
				depth = *req.DepthCm
			}
			if req.HeightCm != nil {
				height = *req.HeightCm
			}
			if err := order.UpdateMeasures(weightType, weight, width, depth, height); err != nil {
				return err
			}
		}
		if req.RateKg != nil || req.RateCbm != nil {
			rateKg, rateCbm := order.RateKg, order.RateCbm
			if req.RateKg != nil {
				rateKg = *req.RateKg
			}
			if req.RateCbm != nil {
				rateCbm = *req.RateCbm
			}
			if err := order.UpdateRates(rateKg, rateCbm); err != nil {
				return err
			}
		}
		if req.Adjustments != nil {
			if err := order.UpdateAdjustments(req.Adjustments); err != nil {
				return err
			}
		}
		if req.Status != nil {
			if err := order.SetStatus(*req.Status); err != nil {
				return err
			}
		}
		if req.Note != nil {
			order.Note = *req.Note
		}

		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders returns orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, filter billing.OrderFilter) (*shared.Paginated[billing.Order], error) {
	items, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
