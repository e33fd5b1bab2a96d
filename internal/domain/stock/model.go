// Package stock provides stock count and stock transfer documents.
package stock

import (
	"context"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/entity"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
)

// CountStatus is the lifecycle state of a stock count.
type CountStatus string

const (
	CountDraft      CountStatus = "DRAFT"
	CountInProgress CountStatus = "IN_PROGRESS"
	CountCompleted  CountStatus = "COMPLETED"
	CountCancelled  CountStatus = "CANCELLED"
)

var countTransitions = map[CountStatus][]CountStatus{
	CountDraft:      {CountInProgress, CountCancelled},
	CountInProgress: {CountCompleted, CountCancelled},
}

// StockCount is a physical inventory count in a warehouse.
type StockCount struct {
	entity.Document

	WarehouseID id.ID       `db:"warehouse_id" json:"warehouseId"`
	Status      CountStatus `db:"status" json:"status"`

	Items []StockCountItem `db:"-" json:"items"`
}

// StockCountItem compares expected stock with the counted quantity.
type StockCountItem struct {
	LineID      id.ID          `db:"line_id" json:"lineId"`
	CountID     id.ID          `db:"count_id" json:"countId"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ExpectedQty types.Quantity `db:"expected_qty" json:"expectedQty"`
	CountedQty  types.Quantity `db:"counted_qty" json:"countedQty"`
	Counted     bool           `db:"counted" json:"counted"`
}

// Variance is counted minus expected. Negative means shrinkage.
func (i StockCountItem) Variance() types.Quantity {
	return i.CountedQty - i.ExpectedQty
}

// NewStockCount creates a draft count for a warehouse.
func NewStockCount(warehouseID id.ID) *StockCount {
	return &StockCount{
		Document:    entity.NewDocument(),
		WarehouseID: warehouseID,
		Status:      CountDraft,
		Items:       make([]StockCountItem, 0),
	}
}

// AddItem registers a product to count with its expected quantity.
func (c *StockCount) AddItem(productID id.ID, expected types.Quantity) {
	c.Items = append(c.Items, StockCountItem{
		LineID:      id.New(),
		CountID:     c.ID,
		ProductID:   productID,
		ExpectedQty: expected,
	})
}

// Validate implements entity.Validatable.
func (c *StockCount) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(c.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(c.Items) == 0 {
		return apperror.NewValidation("stock count must have at least one item").
			WithDetail("field", "items")
	}
	return nil
}

// TransitionTo moves the count to a new status.
func (c *StockCount) TransitionTo(target CountStatus) error {
	for _, allowed := range countTransitions[c.Status] {
		if allowed == target {
			c.Status = target
			c.Touch()
			return nil
		}
	}
	return apperror.NewInvalidStatus("stock count", string(c.Status), string(target))
}

// --- Stock transfers ---

// TransferStatus is the lifecycle state of a stock transfer.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "DRAFT"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferDraft:     {TransferInTransit, TransferCancelled},
	TransferInTransit: {TransferCompleted, TransferCancelled},
}

// StockTransfer moves goods between warehouses.
type StockTransfer struct {
	entity.Document

	FromWarehouseID id.ID          `db:"from_warehouse_id" json:"fromWarehouseId"`
	ToWarehouseID   id.ID          `db:"to_warehouse_id" json:"toWarehouseId"`
	Status          TransferStatus `db:"status" json:"status"`

	Items []StockTransferItem `db:"-" json:"items"`
}

// StockTransferItem is a transferred product line.
type StockTransferItem struct {
	LineID     id.ID          `db:"line_id" json:"lineId"`
	TransferID id.ID          `db:"transfer_id" json:"transferId"`
	ProductID  id.ID          `db:"product_id" json:"productId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockTransfer creates a draft transfer between warehouses.
func NewStockTransfer(from, to id.ID) *StockTransfer {
	return &StockTransfer{
		Document:        entity.NewDocument(),
		FromWarehouseID: from,
		ToWarehouseID:   to,
		Status:          TransferDraft,
		Items:           make([]StockTransferItem, 0),
	}
}

// AddItem appends a product line.
func (t *StockTransfer) AddItem(productID id.ID, quantity types.Quantity) {
	t.Items = append(t.Items, StockTransferItem{
		LineID:     id.New(),
		TransferID: t.ID,
		ProductID:  productID,
		Quantity:   quantity,
	})
}

// Validate implements entity.Validatable.
func (t *StockTransfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(t.FromWarehouseID) || id.IsNil(t.ToWarehouseID) {
		return apperror.NewValidation("both warehouses are required").
			WithDetail("field", "warehouseId")
	}
	if t.FromWarehouseID == t.ToWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ").
			WithDetail("field", "toWarehouseId")
	}
	if len(t.Items) == 0 {
		return apperror.NewValidation("transfer must have at least one item").
			WithDetail("field", "items")
	}
	for i, item := range t.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
	}
	return nil
}

// TransitionTo moves the transfer to a new status.
func (t *StockTransfer) TransitionTo(target TransferStatus) error {
	for _, allowed := range transferTransitions[t.Status] {
		if allowed == target {
			t.Status = target
			t.Touch()
			return nil
		}
	}
	return apperror.NewInvalidStatus("stock transfer", string(t.Status), string(target))
}
