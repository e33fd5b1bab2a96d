// Package orders provides sales order and sales return documents.
package orders

import (
	"context"

	"github.com/shopspring/decimal"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/entity"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
)

// OrderStatus is the lifecycle state of a sales order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod identifies how an order was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentMixed    PaymentMethod = "MIXED"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMixed:
		return true
	}
	return false
}

// orderTransitions lists the allowed status moves.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderCompleted, OrderCancelled},
}

// Order is a sales order document.
type Order struct {
	entity.Document

	CustomerID    *id.ID        `db:"customer_id" json:"customerId,omitempty"`
	Status        OrderStatus   `db:"status" json:"status"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	// Promotion applied at checkout, if any
	PromotionCode string `db:"promotion_code" json:"promotionCode,omitempty"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is a line in a sales order.
type OrderItem struct {
	LineID    id.ID          `db:"line_id" json:"lineId"`
	OrderID   id.ID          `db:"order_id" json:"orderId"`
	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// NewOrder creates a pending sales order.
func NewOrder(paymentMethod PaymentMethod) *Order {
	return &Order{
		Document:       entity.NewDocument(),
		Status:         OrderPending,
		PaymentMethod:  paymentMethod,
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		Items:          make([]OrderItem, 0),
	}
}

// AddItem appends a line and recalculates totals.
func (o *Order) AddItem(productID id.ID, quantity types.Quantity, unitPrice types.Money) {
	amount := unitPrice.Mul(decimal.NewFromFloat(quantity.Float64()))
	o.Items = append(o.Items, OrderItem{
		LineID:    id.New(),
		OrderID:   o.ID,
		LineNo:    len(o.Items) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	})
	o.recalculate()
}

// ApplyDiscount records a discount and recomputes the total.
func (o *Order) ApplyDiscount(amount types.Money, promotionCode string) {
	if amount.GreaterThan(o.Subtotal) {
		amount = o.Subtotal
	}
	o.DiscountAmount = amount
	o.PromotionCode = promotionCode
	o.TotalAmount = o.Subtotal.Sub(amount)
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Sub(o.DiscountAmount)
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}
	if !o.PaymentMethod.IsValid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(o.PaymentMethod))
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must have at least one item").
			WithDetail("field", "items")
	}
	for _, item := range o.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", item.LineNo)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("item price cannot be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", item.LineNo)
		}
	}
	return nil
}

// TransitionTo moves the order to a new status, enforcing the lifecycle.
func (o *Order) TransitionTo(target OrderStatus) error {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == target {
			o.Status = target
			o.Touch()
			return nil
		}
	}
	return apperror.NewInvalidStatus("order", string(o.Status), string(target))
}

// --- Sales returns ---

// ReturnStatus is the lifecycle state of a sales return.
type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "PENDING"
	ReturnApproved ReturnStatus = "APPROVED"
	ReturnRejected ReturnStatus = "REJECTED"
	ReturnRefunded ReturnStatus = "REFUNDED"
)

// ReturnReason categorizes why goods came back.
type ReturnReason string

const (
	ReasonDefective ReturnReason = "DEFECTIVE"
	ReasonWrongItem ReturnReason = "WRONG_ITEM"
	ReasonCustomer  ReturnReason = "CUSTOMER_CHANGE"
	ReasonOther     ReturnReason = "OTHER"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnPending:  {ReturnApproved, ReturnRejected},
	ReturnApproved: {ReturnRefunded},
}

// SalesReturn is a customer return against a completed order.
type SalesReturn struct {
	entity.Document

	OrderID      id.ID        `db:"order_id" json:"orderId"`
	Status       ReturnStatus `db:"status" json:"status"`
	Reason       ReturnReason `db:"reason" json:"reason"`
	RefundAmount types.Money  `db:"refund_amount" json:"refundAmount"`
}

// NewSalesReturn creates a pending sales return for an order.
func NewSalesReturn(orderID id.ID, reason ReturnReason, refund types.Money) *SalesReturn {
	return &SalesReturn{
		Document:     entity.NewDocument(),
		OrderID:      orderID,
		Status:       ReturnPending,
		Reason:       reason,
		RefundAmount: refund,
	}
}

// TransitionTo moves the return to a new status, enforcing the lifecycle.
func (r *SalesReturn) TransitionTo(target ReturnStatus) error {
	for _, allowed := range returnTransitions[r.Status] {
		if allowed == target {
			r.Status = target
			r.Touch()
			return nil
		}
	}
	return apperror.NewInvalidStatus("sales return", string(r.Status), string(target))
}
