package dto

import (
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/stock"
)

// CountItemRequest registers a product to count.
type CountItemRequest struct {
	ProductID   string  `json:"productId" binding:"required,uuid"`
	ExpectedQty float64 `json:"expectedQty" binding:"min=0"`
}

// CreateStockCountRequest creates a stock count.
type CreateStockCountRequest struct {
	WarehouseID string             `json:"warehouseId" binding:"required,uuid"`
	Notes       string             `json:"notes"`
	Items       []CountItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a stock count entity.
func (r CreateStockCountRequest) ToEntity() (*stock.StockCount, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouse id").
			WithDetail("field", "warehouseId")
	}

	count := stock.NewStockCount(warehouseID)
	count.Notes = r.Notes
	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		count.AddItem(productID, types.NewQuantityFromFloat64(item.ExpectedQty))
	}
	return count, nil
}

// RecordCountedQuantityRequest stores a counted quantity for one line.
type RecordCountedQuantityRequest struct {
	LineID     string  `json:"lineId" binding:"required,uuid"`
	CountedQty float64 `json:"countedQty" binding:"min=0"`
}

// CountItemResponse is one stock count line with its variance.
type CountItemResponse struct {
	LineID      string  `json:"lineId"`
	ProductID   string  `json:"productId"`
	ExpectedQty float64 `json:"expectedQty"`
	CountedQty  float64 `json:"countedQty"`
	Counted     bool    `json:"counted"`
	Variance    float64 `json:"variance"`
}

// StockCountResponse is the public view of a stock count.
type StockCountResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	WarehouseID string              `json:"warehouseId"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	Items       []CountItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// FromStockCount maps a stock count entity to its response.
func FromStockCount(c *stock.StockCount) StockCountResponse {
	items := make([]CountItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CountItemResponse{
			LineID:      item.LineID.String(),
			ProductID:   item.ProductID.String(),
			ExpectedQty: item.ExpectedQty.Float64(),
			CountedQty:  item.CountedQty.Float64(),
			Counted:     item.Counted,
			Variance:    item.Variance().Float64(),
		})
	}
	return StockCountResponse{
		ID:          c.ID.String(),
		Number:      c.Number,
		WarehouseID: c.WarehouseID.String(),
		Status:      string(c.Status),
		Notes:       c.Notes,
		Items:       items,
		CreatedAt:   c.CreatedAt,
	}
}

// TransferItemRequest is one line of a transfer.
type TransferItemRequest struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateStockTransferRequest creates a transfer between warehouses.
type CreateStockTransferRequest struct {
	FromWarehouseID string                `json:"fromWarehouseId" binding:"required,uuid"`
	ToWarehouseID   string                `json:"toWarehouseId" binding:"required,uuid"`
	Notes           string                `json:"notes"`
	Items           []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a stock transfer entity.
func (r CreateStockTransferRequest) ToEntity() (*stock.StockTransfer, error) {
	from, err := id.Parse(r.FromWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid source warehouse id").
			WithDetail("field", "fromWarehouseId")
	}
	to, err := id.Parse(r.ToWarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid destination warehouse id").
			WithDetail("field", "toWarehouseId")
	}

	transfer := stock.NewStockTransfer(from, to)
	transfer.Notes = r.Notes
	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		transfer.AddItem(productID, types.NewQuantityFromFloat64(item.Quantity))
	}
	return transfer, nil
}

// SetTransferStatusRequest moves a transfer to a new status.
type SetTransferStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransferItemResponse is one transferred line.
type TransferItemResponse struct {
	LineID    string  `json:"lineId"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// StockTransferResponse is the public view of a stock transfer.
type StockTransferResponse struct {
	ID              string                 `json:"id"`
	Number          string                 `json:"number"`
	FromWarehouseID string                 `json:"fromWarehouseId"`
	ToWarehouseID   string                 `json:"toWarehouseId"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []TransferItemResponse `json:"items"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// FromStockTransfer maps a stock transfer entity to its response.
func FromStockTransfer(t *stock.StockTransfer) StockTransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemResponse{
			LineID:    item.LineID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.Float64(),
		})
	}
	return StockTransferResponse{
		ID:              t.ID.String(),
		Number:          t.Number,
		FromWarehouseID: t.FromWarehouseID.String(),
		ToWarehouseID:   t.ToWarehouseID.String(),
		Status:          string(t.Status),
		Notes:           t.Notes,
		Items:           items,
		CreatedAt:       t.CreatedAt,
	}
}
