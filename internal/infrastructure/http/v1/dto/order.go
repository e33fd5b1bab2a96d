package dto

import (
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/orders"
)

// OrderItemRequest is one line of an order being created.
type OrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice string  `json:"unitPrice" binding:"required"`
}

// CreateOrderRequest creates a sales order.
type CreateOrderRequest struct {
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	CustomerID    *string            `json:"customerId" binding:"omitempty,uuid"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToEntity maps the request to an order entity.
func (r CreateOrderRequest) ToEntity() (*orders.Order, error) {
	order := orders.NewOrder(orders.PaymentMethod(r.PaymentMethod))
	order.Notes = r.Notes

	if r.CustomerID != nil {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return nil, apperror.NewValidation("invalid customer id").
				WithDetail("field", "customerId")
		}
		order.CustomerID = &customerID
	}

	for i, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		price, err := types.NewMoneyFromString(item.UnitPrice)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit price").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		order.AddItem(productID, types.NewQuantityFromFloat64(item.Quantity), price)
	}

	return order, nil
}

// SetOrderStatusRequest moves an order to a new status.
type SetOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	LineID    string  `json:"lineId"`
	LineNo    int     `json:"lineNo"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitPrice string  `json:"unitPrice"`
	Amount    string  `json:"amount"`
}

// OrderResponse is the public view of a sales order.
type OrderResponse struct {
	ID             string              `json:"id"`
	Number         string              `json:"number"`
	Date           time.Time           `json:"date"`
	Status         string              `json:"status"`
	PaymentMethod  string              `json:"paymentMethod"`
	CustomerID     *string             `json:"customerId,omitempty"`
	Subtotal       string              `json:"subtotal"`
	DiscountAmount string              `json:"discountAmount"`
	TotalAmount    string              `json:"totalAmount"`
	PromotionCode  string              `json:"promotionCode,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// FromOrder maps an order entity to its response.
func FromOrder(o *orders.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			LineID:    item.LineID.String(),
			LineNo:    item.LineNo,
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.Float64(),
			UnitPrice: item.UnitPrice.String(),
			Amount:    item.Amount.String(),
		})
	}

	resp := OrderResponse{
		ID:             o.ID.String(),
		Number:         o.Number,
		Date:           o.Date,
		Status:         string(o.Status),
		PaymentMethod:  string(o.PaymentMethod),
		Subtotal:       o.Subtotal.String(),
		DiscountAmount: o.DiscountAmount.String(),
		TotalAmount:    o.TotalAmount.String(),
		PromotionCode:  o.PromotionCode,
		Notes:          o.Notes,
		Items:          items,
		CreatedAt:      o.CreatedAt,
	}
	if o.CustomerID != nil {
		s := o.CustomerID.String()
		resp.CustomerID = &s
	}
	return resp
}

// CreateSalesReturnRequest files a return against an order.
type CreateSalesReturnRequest struct {
	OrderID      string `json:"orderId" binding:"required,uuid"`
	Reason       string `json:"reason" binding:"required"`
	RefundAmount string `json:"refundAmount" binding:"required"`
	Notes        string `json:"notes"`
}

// ToEntity maps the request to a sales return entity.
func (r CreateSalesReturnRequest) ToEntity() (*orders.SalesReturn, error) {
	orderID, err := id.Parse(r.OrderID)
	if err != nil {
		return nil, apperror.NewValidation("invalid order id").
			WithDetail("field", "orderId")
	}
	refund, err := types.NewMoneyFromString(r.RefundAmount)
	if err != nil {
		return nil, apperror.NewValidation("invalid refund amount").
			WithDetail("field", "refundAmount")
	}

	ret := orders.NewSalesReturn(orderID, orders.ReturnReason(r.Reason), refund)
	ret.Notes = r.Notes
	return ret, nil
}

// SalesReturnResponse is the public view of a sales return.
type SalesReturnResponse struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"`
	OrderID      string    `json:"orderId"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason"`
	RefundAmount string    `json:"refundAmount"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromSalesReturn maps a sales return entity to its response.
func FromSalesReturn(ret *orders.SalesReturn) SalesReturnResponse {
	return SalesReturnResponse{
		ID:           ret.ID.String(),
		Number:       ret.Number,
		OrderID:      ret.OrderID.String(),
		Status:       string(ret.Status),
		Reason:       string(ret.Reason),
		RefundAmount: ret.RefundAmount.String(),
		Notes:        ret.Notes,
		CreatedAt:    ret.CreatedAt,
	}
}
