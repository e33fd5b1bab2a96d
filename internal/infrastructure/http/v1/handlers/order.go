package handlers

import (
	"github.com/gin-gonic/gin"

	"kamesan/internal/domain/orders"
	"kamesan/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles sales order and sales return endpoints.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service *orders.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create creates a sales order.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateOrder(c.Request.Context(), order); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(order))
}

// Get returns an order with its lines.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// List returns orders matching the filter.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := orders.OrderFilter{
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if status := c.Query("status"); status != "" {
		s := orders.OrderStatus(status)
		filter.Status = &s
	}
	if pm := c.Query("paymentMethod"); pm != "" {
		m := orders.PaymentMethod(pm)
		filter.PaymentMethod = &m
	}
	filter.NumberLike = c.Query("number")

	list, total, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromOrder(&list[i]))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}

// SetStatus moves an order through its lifecycle.
// POST /api/v1/orders/:id/status
func (h *OrderHandler) SetStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.SetOrderStatus(c.Request.Context(), orderID, orders.OrderStatus(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// CreateReturn files a return against a paid or completed order.
// POST /api/v1/returns
func (h *OrderHandler) CreateReturn(c *gin.Context) {
	var req dto.CreateSalesReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateReturn(c.Request.Context(), ret); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSalesReturn(ret))
}

// SetReturnStatus moves a return through its lifecycle.
// POST /api/v1/returns/:id/status
func (h *OrderHandler) SetReturnStatus(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.service.SetReturnStatus(c.Request.Context(), returnID, orders.ReturnStatus(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesReturn(ret))
}

// ListReturns returns all returns filed against an order.
// GET /api/v1/orders/:id/returns
func (h *OrderHandler) ListReturns(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListReturns(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.SalesReturnResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromSalesReturn(&list[i]))
	}

	h.OK(c, items)
}
