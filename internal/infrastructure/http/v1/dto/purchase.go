package dto

import (
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/purchases"
)

// PurchaseItemRequest is one line of a purchase order being created.
type PurchaseItemRequest struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost  string  `json:"unitCost" binding:"required"`
}

// CreatePurchaseOrderRequest creates a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                `json:"supplierId" binding:"required,uuid"`
	ExpectedDate *time.Time            `json:"expectedDate"`
	Notes        string                `json:"notes"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToEntity maps the request to a purchase order entity.
func (r CreatePurchaseOrderRequest) ToEntity() (*purchases.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplier id").
			WithDetail("field", "supplierId")
	}

	order := purchases.NewPurchaseOrder(supplierID)
	order.ExpectedDate = r.ExpectedDate
	order.Notes = r.Notes

	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		cost, err := types.NewMoneyFromString(item.UnitCost)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit cost").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		order.AddItem(productID, types.NewQuantityFromFloat64(item.Quantity), cost)
	}

	return order, nil
}

// SetPurchaseOrderStatusRequest moves a purchase order to a new status.
type SetPurchaseOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PurchaseItemResponse is one line of a purchase order.
type PurchaseItemResponse struct {
	LineID      string  `json:"lineId"`
	LineNo      int     `json:"lineNo"`
	ProductID   string  `json:"productId"`
	Quantity    float64 `json:"quantity"`
	ReceivedQty float64 `json:"receivedQty"`
	UnitCost    string  `json:"unitCost"`
	Amount      string  `json:"amount"`
}

// PurchaseOrderResponse is the public view of a purchase order.
type PurchaseOrderResponse struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	Date         time.Time              `json:"date"`
	SupplierID   string                 `json:"supplierId"`
	Status       string                 `json:"status"`
	ExpectedDate *time.Time             `json:"expectedDate,omitempty"`
	TotalAmount  string                 `json:"totalAmount"`
	Notes        string                 `json:"notes,omitempty"`
	Items        []PurchaseItemResponse `json:"items"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// FromPurchaseOrder maps a purchase order entity to its response.
func FromPurchaseOrder(o *purchases.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, PurchaseItemResponse{
			LineID:      item.LineID.String(),
			LineNo:      item.LineNo,
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity.Float64(),
			ReceivedQty: item.ReceivedQty.Float64(),
			UnitCost:    item.UnitCost.String(),
			Amount:      item.Amount.String(),
		})
	}

	return PurchaseOrderResponse{
		ID:           o.ID.String(),
		Number:       o.Number,
		Date:         o.Date,
		SupplierID:   o.SupplierID.String(),
		Status:       string(o.Status),
		ExpectedDate: o.ExpectedDate,
		TotalAmount:  o.TotalAmount.String(),
		Notes:        o.Notes,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}

// SuggestionLineRequest is one replenishment proposal.
type SuggestionLineRequest struct {
	SupplierID string  `json:"supplierId" binding:"required,uuid"`
	ProductID  string  `json:"productId" binding:"required,uuid"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost   string  `json:"unitCost" binding:"required"`
}

// ConvertSuggestionsRequest converts replenishment suggestions into
// purchase orders.
type ConvertSuggestionsRequest struct {
	Lines []SuggestionLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToLines maps the request to domain suggestion lines.
func (r ConvertSuggestionsRequest) ToLines() ([]purchases.SuggestionLine, error) {
	lines := make([]purchases.SuggestionLine, 0, len(r.Lines))
	for i, l := range r.Lines {
		supplierID, err := id.Parse(l.SupplierID)
		if err != nil {
			return nil, apperror.NewValidation("invalid supplier id").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		cost, err := types.NewMoneyFromString(l.UnitCost)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit cost").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		lines = append(lines, purchases.SuggestionLine{
			SupplierID: supplierID,
			ProductID:  productID,
			Quantity:   types.NewQuantityFromFloat64(l.Quantity),
			UnitCost:   cost,
		})
	}
	return lines, nil
}

// ReceiptLineRequest records a received quantity against an order line.
type ReceiptLineRequest struct {
	OrderLineID string  `json:"orderLineId" binding:"required,uuid"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
}

// ReceiveGoodsRequest records a delivery against a purchase order.
type ReceiveGoodsRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToLines maps the request to domain receipt lines.
func (r ReceiveGoodsRequest) ToLines() ([]purchases.ReceiptLine, error) {
	lines := make([]purchases.ReceiptLine, 0, len(r.Lines))
	for i, l := range r.Lines {
		lineID, err := id.Parse(l.OrderLineID)
		if err != nil {
			return nil, apperror.NewValidation("invalid order line id").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		lines = append(lines, purchases.ReceiptLine{
			OrderLineID: lineID,
			Quantity:    types.NewQuantityFromFloat64(l.Quantity),
		})
	}
	return lines, nil
}

// GoodsReceiptItemResponse is one received line.
type GoodsReceiptItemResponse struct {
	LineID      string  `json:"lineId"`
	OrderLineID string  `json:"orderLineId"`
	ProductID   string  `json:"productId"`
	Quantity    float64 `json:"quantity"`
}

// GoodsReceiptResponse is the public view of a goods receipt.
type GoodsReceiptResponse struct {
	ID              string                     `json:"id"`
	Number          string                     `json:"number"`
	PurchaseOrderID string                     `json:"purchaseOrderId"`
	SupplierID      string                     `json:"supplierId"`
	Items           []GoodsReceiptItemResponse `json:"items"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

// FromGoodsReceipt maps a goods receipt entity to its response.
func FromGoodsReceipt(gr *purchases.GoodsReceipt) GoodsReceiptResponse {
	items := make([]GoodsReceiptItemResponse, 0, len(gr.Items))
	for _, item := range gr.Items {
		items = append(items, GoodsReceiptItemResponse{
			LineID:      item.LineID.String(),
			OrderLineID: item.OrderLineID.String(),
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity.Float64(),
		})
	}
	return GoodsReceiptResponse{
		ID:              gr.ID.String(),
		Number:          gr.Number,
		PurchaseOrderID: gr.PurchaseOrderID.String(),
		SupplierID:      gr.SupplierID.String(),
		Items:           items,
		CreatedAt:       gr.CreatedAt,
	}
}

// CreatePurchaseReturnRequest sends goods back to a supplier.
type CreatePurchaseReturnRequest struct {
	SupplierID     string  `json:"supplierId" binding:"required,uuid"`
	GoodsReceiptID *string `json:"goodsReceiptId" binding:"omitempty,uuid"`
	Reason         string  `json:"reason" binding:"required"`
	TotalAmount    string  `json:"totalAmount" binding:"required"`
	Notes          string  `json:"notes"`
}

// ToEntity maps the request to a purchase return entity.
func (r CreatePurchaseReturnRequest) ToEntity() (*purchases.PurchaseReturn, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplier id").
			WithDetail("field", "supplierId")
	}
	total, err := types.NewMoneyFromString(r.TotalAmount)
	if err != nil {
		return nil, apperror.NewValidation("invalid total amount").
			WithDetail("field", "totalAmount")
	}

	ret := purchases.NewPurchaseReturn(supplierID, r.Reason, total)
	ret.Notes = r.Notes
	if r.GoodsReceiptID != nil {
		receiptID, err := id.Parse(*r.GoodsReceiptID)
		if err != nil {
			return nil, apperror.NewValidation("invalid goods receipt id").
				WithDetail("field", "goodsReceiptId")
		}
		ret.GoodsReceiptID = &receiptID
	}
	return ret, nil
}

// PurchaseReturnResponse is the public view of a purchase return.
type PurchaseReturnResponse struct {
	ID             string    `json:"id"`
	Number         string    `json:"number"`
	SupplierID     string    `json:"supplierId"`
	GoodsReceiptID *string   `json:"goodsReceiptId,omitempty"`
	Reason         string    `json:"reason"`
	TotalAmount    string    `json:"totalAmount"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromPurchaseReturn maps a purchase return entity to its response.
func FromPurchaseReturn(ret *purchases.PurchaseReturn) PurchaseReturnResponse {
	resp := PurchaseReturnResponse{
		ID:          ret.ID.String(),
		Number:      ret.Number,
		SupplierID:  ret.SupplierID.String(),
		Reason:      ret.Reason,
		TotalAmount: ret.TotalAmount.String(),
		Notes:       ret.Notes,
		CreatedAt:   ret.CreatedAt,
	}
	if ret.GoodsReceiptID != nil {
		s := ret.GoodsReceiptID.String()
		resp.GoodsReceiptID = &s
	}
	return resp
}
