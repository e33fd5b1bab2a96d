package orders

import (
	"context"

	"kamesan/internal/core/id"
)

// OrderFilter narrows List results.
type OrderFilter struct {
	Status        *OrderStatus
	PaymentMethod *PaymentMethod
	NumberLike    string
	Limit         int
	Offset        int
}

// Repository persists sales orders.
type Repository interface {
	// GetByID loads an order with its items.
	// Returns AppError with CodeNotFound if absent.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetByNumber loads an order by its document number.
	GetByNumber(ctx context.Context, number string) (*Order, error)

	// Create inserts the order header and all items.
	Create(ctx context.Context, order *Order) error

	// UpdateStatus persists a status change.
	UpdateStatus(ctx context.Context, order *Order) error

	// List returns orders matching the filter, newest first, with total count.
	List(ctx context.Context, filter OrderFilter) ([]Order, int, error)
}

// ReturnRepository persists sales returns.
type ReturnRepository interface {
	GetByID(ctx context.Context, returnID id.ID) (*SalesReturn, error)
	Create(ctx context.Context, ret *SalesReturn) error
	UpdateStatus(ctx context.Context, ret *SalesReturn) error
	ListByOrder(ctx context.Context, orderID id.ID) ([]SalesReturn, error)
}
