// Package purchases provides purchase order, goods receipt and purchase
// return documents, plus conversion of replenishment suggestions into
// supplier purchase orders.
package purchases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/entity"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
)

// PurchaseOrderStatus is the lifecycle state of a purchase order.
type PurchaseOrderStatus string

const (
	PurchaseDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseSubmitted         PurchaseOrderStatus = "SUBMITTED"
	PurchasePartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseCancelled         PurchaseOrderStatus = "CANCELLED"
)

var purchaseTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseDraft:             {PurchaseSubmitted, PurchaseCancelled},
	PurchaseSubmitted:         {PurchasePartiallyReceived, PurchaseReceived, PurchaseCancelled},
	PurchasePartiallyReceived: {PurchasePartiallyReceived, PurchaseReceived},
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	entity.Document

	SupplierID   id.ID               `db:"supplier_id" json:"supplierId"`
	Status       PurchaseOrderStatus `db:"status" json:"status"`
	ExpectedDate *time.Time          `db:"expected_date" json:"expectedDate,omitempty"`
	TotalAmount  types.Money         `db:"total_amount" json:"totalAmount"`

	Items []PurchaseOrderItem `db:"-" json:"items"`
}

// PurchaseOrderItem is a line in a purchase order.
type PurchaseOrderItem struct {
	LineID          id.ID          `db:"line_id" json:"lineId"`
	PurchaseOrderID id.ID          `db:"purchase_order_id" json:"purchaseOrderId"`
	LineNo          int            `db:"line_no" json:"lineNo"`
	ProductID       id.ID          `db:"product_id" json:"productId"`
	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	ReceivedQty     types.Quantity `db:"received_qty" json:"receivedQty"`
	UnitCost        types.Money    `db:"unit_cost" json:"unitCost"`
	Amount          types.Money    `db:"amount" json:"amount"`
}

// NewPurchaseOrder creates a draft purchase order for a supplier.
func NewPurchaseOrder(supplierID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		Status:      PurchaseDraft,
		TotalAmount: decimal.Zero,
		Items:       make([]PurchaseOrderItem, 0),
	}
}

// AddItem appends a line and recalculates the total.
func (p *PurchaseOrder) AddItem(productID id.ID, quantity types.Quantity, unitCost types.Money) {
	amount := unitCost.Mul(decimal.NewFromFloat(quantity.Float64()))
	p.Items = append(p.Items, PurchaseOrderItem{
		LineID:          id.New(),
		PurchaseOrderID: p.ID,
		LineNo:          len(p.Items) + 1,
		ProductID:       productID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		Amount:          amount,
	})
	p.TotalAmount = p.TotalAmount.Add(amount)
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(p.Items) == 0 {
		return apperror.NewValidation("purchase order must have at least one item").
			WithDetail("field", "items")
	}
	for _, item := range p.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", item.LineNo)
		}
		if item.UnitCost.IsNegative() {
			return apperror.NewValidation("item cost cannot be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", item.LineNo)
		}
	}
	return nil
}

// TransitionTo moves the purchase order to a new status.
func (p *PurchaseOrder) TransitionTo(target PurchaseOrderStatus) error {
	for _, allowed := range purchaseTransitions[p.Status] {
		if allowed == target {
			p.Status = target
			p.Touch()
			return nil
		}
	}
	return apperror.NewInvalidStatus("purchase order", string(p.Status), string(target))
}

// --- Goods receipts ---

// GoodsReceipt records goods arriving against a purchase order.
type GoodsReceipt struct {
	entity.Document

	PurchaseOrderID id.ID `db:"purchase_order_id" json:"purchaseOrderId"`
	SupplierID      id.ID `db:"supplier_id" json:"supplierId"`

	Items []GoodsReceiptItem `db:"-" json:"items"`
}

// GoodsReceiptItem is a received line referencing a purchase order line.
type GoodsReceiptItem struct {
	LineID         id.ID          `db:"line_id" json:"lineId"`
	GoodsReceiptID id.ID          `db:"goods_receipt_id" json:"goodsReceiptId"`
	OrderLineID    id.ID          `db:"order_line_id" json:"orderLineId"`
	ProductID      id.ID          `db:"product_id" json:"productId"`
	Quantity       types.Quantity `db:"quantity" json:"quantity"`
}

// NewGoodsReceipt creates a receipt for a purchase order.
func NewGoodsReceipt(orderID, supplierID id.ID) *GoodsReceipt {
	return &GoodsReceipt{
		Document:        entity.NewDocument(),
		PurchaseOrderID: orderID,
		SupplierID:      supplierID,
		Items:           make([]GoodsReceiptItem, 0),
	}
}

// --- Purchase returns ---

// PurchaseReturn sends goods back to a supplier.
type PurchaseReturn struct {
	entity.Document

	SupplierID     id.ID       `db:"supplier_id" json:"supplierId"`
	GoodsReceiptID *id.ID      `db:"goods_receipt_id" json:"goodsReceiptId,omitempty"`
	Reason         string      `db:"reason" json:"reason"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
}

// NewPurchaseReturn creates a purchase return for a supplier.
func NewPurchaseReturn(supplierID id.ID, reason string, total types.Money) *PurchaseReturn {
	return &PurchaseReturn{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		Reason:      reason,
		TotalAmount: total,
	}
}

// --- Replenishment suggestions ---

// SuggestionLine is one replenishment proposal: order Quantity of
// ProductID from SupplierID at UnitCost.
type SuggestionLine struct {
	SupplierID id.ID          `json:"supplierId"`
	ProductID  id.ID          `json:"productId"`
	Quantity   types.Quantity `json:"quantity"`
	UnitCost   types.Money    `json:"unitCost"`
}
