package purchases

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

// ReceiptLine is a received quantity against a purchase order line.
type ReceiptLine struct {
	OrderLineID id.ID          `json:"orderLineId"`
	Quantity    types.Quantity `json:"quantity"`
}

// Service implements purchasing use cases.
type Service struct {
	orders    OrderRepository
	receipts  ReceiptRepository
	returns   ReturnRepository
	numerator numbering.Generator
	txManager tx.Manager
}

// NewService creates a purchases service.
func NewService(
	orders OrderRepository,
	receipts ReceiptRepository,
	returns ReturnRepository,
	numerator numbering.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		orders:    orders,
		receipts:  receipts,
		returns:   returns,
		numerator: numerator,
		txManager: txManager,
	}
}

// CreateOrder validates, numbers and persists a purchase order.
func (s *Service) CreateOrder(ctx context.Context, order *PurchaseOrder) error {
	if err := order.Validate(ctx); err != nil {
		return err
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		order.CreatedBy = userID
		order.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if order.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypePurchaseOrder)
			if err != nil {
				return err
			}
			order.Number = number
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		logger.Info(ctx, "purchase order created",
			"order_id", order.ID.String(),
			"number", order.Number,
			"supplier_id", order.SupplierID.String())
		return nil
	})
}

// GetOrder loads a purchase order with items.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ListOrders returns purchase orders matching the filter with total count.
func (s *Service) ListOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int, error) {
	return s.orders.List(ctx, filter)
}

// SetOrderStatus moves a purchase order through its lifecycle.
func (s *Service) SetOrderStatus(ctx context.Context, orderID id.ID, target PurchaseOrderStatus) (*PurchaseOrder, error) {
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
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ConvertSuggestions turns replenishment suggestions into purchase orders,
// one per supplier, atomically. All orders are numbered and persisted inside
// a single transaction: if anything fails nothing is committed, counter
// increments included.
func (s *Service) ConvertSuggestions(ctx context.Context, lines []SuggestionLine) ([]*PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("no suggestion lines provided").
			WithDetail("field", "lines")
	}

	// Group by supplier preserving first-seen order so output is stable.
	supplierOrder := make([]id.ID, 0)
	grouped := make(map[id.ID][]SuggestionLine)
	for i, line := range lines {
		if id.IsNil(line.SupplierID) {
			return nil, apperror.NewValidation("suggestion line missing supplier").
				WithDetail("index", i)
		}
		if !line.Quantity.IsPositive() {
			return nil, apperror.NewValidation("suggestion quantity must be positive").
				WithDetail("index", i)
		}
		if _, seen := grouped[line.SupplierID]; !seen {
			supplierOrder = append(supplierOrder, line.SupplierID)
		}
		grouped[line.SupplierID] = append(grouped[line.SupplierID], line)
	}

	userID := appctx.GetUserEntityID(ctx)

	created := make([]*PurchaseOrder, 0, len(supplierOrder))
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, supplierID := range supplierOrder {
			order := NewPurchaseOrder(supplierID)
			for _, line := range grouped[supplierID] {
				order.AddItem(line.ProductID, line.Quantity, line.UnitCost)
			}
			if userID != nil {
				order.CreatedBy = userID
				order.UpdatedBy = userID
			}

			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypePurchaseOrder)
			if err != nil {
				return err
			}
			order.Number = number

			if err := s.orders.Create(ctx, order); err != nil {
				return err
			}
			created = append(created, order)
		}

		logger.Info(ctx, "suggestions converted to purchase orders",
			"lines", len(lines),
			"orders", len(created))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReceiveGoods records a delivery against a purchase order. Received
// quantities accumulate on the order lines and the order status moves to
// partially received or received.
func (s *Service) ReceiveGoods(ctx context.Context, orderID id.ID, lines []ReceiptLine) (*GoodsReceipt, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("no receipt lines provided").
			WithDetail("field", "lines")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != PurchaseSubmitted && order.Status != PurchasePartiallyReceived {
		return nil, apperror.NewBusinessRule("RECEIPT_NOT_ALLOWED",
			"goods can only be received against submitted orders").
			WithDetail("orderStatus", string(order.Status))
	}

	orderLines := make(map[id.ID]*PurchaseOrderItem, len(order.Items))
	for i := range order.Items {
		orderLines[order.Items[i].LineID] = &order.Items[i]
	}

	receipt := NewGoodsReceipt(order.ID, order.SupplierID)
	for i, line := range lines {
		item, ok := orderLines[line.OrderLineID]
		if !ok {
			return nil, apperror.NewValidation("receipt line references unknown order line").
				WithDetail("index", i)
		}
		if !line.Quantity.IsPositive() {
			return nil, apperror.NewValidation("received quantity must be positive").
				WithDetail("index", i)
		}
		remaining := item.Quantity - item.ReceivedQty
		if line.Quantity > remaining {
			return nil, apperror.NewBusinessRule("OVER_RECEIPT",
				"received quantity exceeds outstanding quantity").
				WithDetail("orderLineId", line.OrderLineID.String()).
				WithDetail("outstanding", remaining.String())
		}
		item.ReceivedQty += line.Quantity
		receipt.Items = append(receipt.Items, GoodsReceiptItem{
			LineID:         id.New(),
			GoodsReceiptID: receipt.ID,
			OrderLineID:    line.OrderLineID,
			ProductID:      item.ProductID,
			Quantity:       line.Quantity,
		})
	}

	fullyReceived := true
	for _, item := range order.Items {
		if item.ReceivedQty < item.Quantity {
			fullyReceived = false
			break
		}
	}
	target := PurchasePartiallyReceived
	if fullyReceived {
		target = PurchaseReceived
	}
	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		receipt.CreatedBy = userID
		receipt.UpdatedBy = userID
		order.UpdatedBy = userID
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypeGoodsReceipt)
		if err != nil {
			return err
		}
		receipt.Number = number

		if err := s.receipts.Create(ctx, receipt); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, order); err != nil {
			return err
		}
		logger.Info(ctx, "goods receipt created",
			"receipt_id", receipt.ID.String(),
			"number", receipt.Number,
			"order_number", order.Number,
			"order_status", string(order.Status))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ListReceipts returns goods receipts for a purchase order.
func (s *Service) ListReceipts(ctx context.Context, orderID id.ID) ([]GoodsReceipt, error) {
	return s.receipts.ListByOrder(ctx, orderID)
}

// CreateReturn numbers and persists a purchase return.
func (s *Service) CreateReturn(ctx context.Context, ret *PurchaseReturn) error {
	if id.IsNil(ret.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		ret.CreatedBy = userID
		ret.UpdatedBy = userID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if ret.Number == "" {
			number, err := s.numerator.GenerateNumber(ctx, numbering.DocTypePurchaseReturn)
			if err != nil {
				return err
			}
			ret.Number = number
		}
		if err := s.returns.Create(ctx, ret); err != nil {
			return err
		}
		logger.Info(ctx, "purchase return created",
			"return_id", ret.ID.String(),
			"number", ret.Number)
		return nil
	})
}
