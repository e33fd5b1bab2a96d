package stock

import (
	"context"

	"kamesan/internal/core/id"
)

// CountRepository persists stock counts.
type CountRepository interface {
	// GetByID loads a count with its items.
	// Returns AppError with CodeNotFound if absent.
	GetByID(ctx context.Context, countID id.ID) (*StockCount, error)

	Create(ctx context.Context, count *StockCount) error

	// Update persists header and item changes.
	Update(ctx context.Context, count *StockCount) error

	ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockCount, error)

	// LatestCompleted returns the most recent completed count for a
	// warehouse with its items, or nil when the warehouse has never been
	// counted.
	LatestCompleted(ctx context.Context, warehouseID id.ID) (*StockCount, error)
}

// TransferRepository persists stock transfers.
type TransferRepository interface {
	GetByID(ctx context.Context, transferID id.ID) (*StockTransfer, error)
	Create(ctx context.Context, transfer *StockTransfer) error
	UpdateStatus(ctx context.Context, transfer *StockTransfer) error
	ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockTransfer, error)
}
