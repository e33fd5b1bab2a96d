package orders

import (
	"context"

	"kamesan/internal/core/apperror"
	appctx "kamesan/internal/core/context"
	"kamesan/internal/core/id"
	"kamesan/internal/core/tx"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/numbering"
	"kamesan/pkg/logger"
)

// DiscountEngine picks the best applicable discount for an order.
// Implemented by the promotions service; nil disables discounts.
type DiscountEngine interface {
	// BestDiscount returns the discount amount and the promotion code that
	// produced it. Zero amount and empty code mean nothing applies.
	BestDiscount(ctx context.Context, order *Order) (types.Money, string, error)
}

// Service implements sales order and sales return use cases.
type Service struct {
	orders    Repository
	returns   ReturnRepository
	numerator numbering.Generator
	txManager tx.Manager
	discounts DiscountEngine
}

// NewService creates an orders service. discounts may be nil.
func NewService(
	orders Repository,
	returns ReturnRepository,
	numerator numbering.Generator,
	txManager tx.Manager,
	discounts DiscountEngine,
) *Service {
	return &Service{
		orders:    orders,
		returns:   returns,
		numerator: numerator,
		txManager: txManager,
		discounts: discounts,
	}
}

// CreateOrder validates, prices, numbers and persists a new sales order.
func (s *Service) CreateOrder(ctx context.Context, order *Order) error {
	if err := order.Validate(ctx); err != nil {
		return err
	}

	if s.discounts != nil {
		amount, code, err := s.discounts.BestDiscount(ctx, order)
		if err != nil {
			logger.Warn(ctx, "discount evaluation failed, continuing without discount",
				"error", err)
		} else if amount.IsPositive() {
			order.ApplyDiscount(amount, code)
		}
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		order.CreatedBy = userID
		order.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Number inside the transaction so the counter increment rolls back
		// together with the order on failure.
		if order.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypeSalesOrder)
			if err != nil {
				return err
			}
			order.Number = number
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}

		logger.Info(ctx, "sales order created",
			"order_id", order.ID.String(),
			"number", order.Number,
			"total", order.TotalAmount.String())
		return nil
	})
}

// GetOrder loads an order with items.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListOrders returns orders matching the filter with total count.
func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, int, error) {
	return s.orders.List(ctx, filter)
}

// SetOrderStatus moves an order through its lifecycle.
func (s *Service) SetOrderStatus(ctx context.Context, orderID id.ID, target OrderStatus) (*Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		order.UpdatedBy = userID
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateReturn registers a sales return against an existing order.
// The parent order must be paid or completed.
func (s *Service) CreateReturn(ctx context.Context, ret *SalesReturn) error {
	order, err := s.orders.GetByID(ctx, ret.OrderID)
	if err != nil {
		return err
	}
	if order.Status != OrderPaid && order.Status != OrderCompleted {
		return apperror.NewBusinessRule("RETURN_NOT_ALLOWED",
			"returns are only accepted for paid or completed orders").
			WithDetail("orderStatus", string(order.Status))
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		ret.CreatedBy = userID
		ret.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if ret.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypeSalesReturn)
			if err != nil {
				return err
			}
			ret.Number = number
		}
		if err := s.returns.Create(ctx, ret); err != nil {
			return err
		}
		logger.Info(ctx, "sales return created",
			"return_id", ret.ID.String(),
			"number", ret.Number,
			"order_number", order.Number)
		return nil
	})
}

// SetReturnStatus moves a sales return through its lifecycle.
func (s *Service) SetReturnStatus(ctx context.Context, returnID id.ID, target ReturnStatus) (*SalesReturn, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if err := ret.TransitionTo(target); err != nil {
		return nil, err
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		ret.UpdatedBy = userID
	}
	if err := s.returns.UpdateStatus(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ListReturns returns all returns filed against an order.
func (s *Service) ListReturns(ctx context.Context, orderID id.ID) ([]SalesReturn, error) {
	return s.returns.ListByOrder(ctx, orderID)
}
