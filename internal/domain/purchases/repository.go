package purchases

import (
	"context"

	"kamesan/internal/core/id"
)

// PurchaseOrderFilter narrows List results.
type PurchaseOrderFilter struct {
	SupplierID *id.ID
	Status     *PurchaseOrderStatus
	Limit      int
	Offset     int
}

// OrderRepository persists purchase orders.
type OrderRepository interface {
	// GetByID loads a purchase order with its items.
	// Returns AppError with CodeNotFound if absent.
	GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)

	// Create inserts the order header and all items.
	Create(ctx context.Context, order *PurchaseOrder) error

	// Update persists header changes (status, received quantities).
	Update(ctx context.Context, order *PurchaseOrder) error

	// List returns purchase orders matching the filter with total count.
	List(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int, error)
}

// ReceiptRepository persists goods receipts.
type ReceiptRepository interface {
	GetByID(ctx context.Context, receiptID id.ID) (*GoodsReceipt, error)
	Create(ctx context.Context, receipt *GoodsReceipt) error
	ListByOrder(ctx context.Context, orderID id.ID) ([]GoodsReceipt, error)
}

// ReturnRepository persists purchase returns.
type ReturnRepository interface {
	GetByID(ctx context.Context, returnID id.ID) (*PurchaseReturn, error)
	Create(ctx context.Context, ret *PurchaseReturn) error
	ListBySupplier(ctx context.Context, supplierID id.ID) ([]PurchaseReturn, error)
}
