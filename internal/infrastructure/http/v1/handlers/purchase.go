package handlers

import (
	"github.com/gin-gonic/gin"

	"kamesan/internal/domain/purchases"
	"kamesan/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase order, goods receipt and purchase
// return endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchases.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(service *purchases.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create creates a purchase order in draft status.
// POST /api/v1/purchase-orders
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
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

	h.Created(c, dto.FromPurchaseOrder(order))
}

// Get returns a purchase order with its lines.
// GET /api/v1/purchase-orders/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// List returns purchase orders matching the filter.
// GET /api/v1/purchase-orders
func (h *PurchaseHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := purchases.PurchaseOrderFilter{
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if status := c.Query("status"); status != "" {
		s := purchases.PurchaseOrderStatus(status)
		filter.Status = &s
	}

	list, total, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromPurchaseOrder(&list[i]))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}

// SetStatus moves a purchase order through its lifecycle.
// POST /api/v1/purchase-orders/:id/status
func (h *PurchaseHandler) SetStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetPurchaseOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.SetOrderStatus(c.Request.Context(), orderID, purchases.PurchaseOrderStatus(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(order))
}

// ConvertSuggestions turns replenishment suggestions into purchase orders,
// one per supplier, in a single transaction.
// POST /api/v1/purchase-orders/convert-suggestions
func (h *PurchaseHandler) ConvertSuggestions(c *gin.Context) {
	var req dto.ConvertSuggestionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.ConvertSuggestions(c.Request.Context(), lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseOrderResponse, 0, len(created))
	for _, order := range created {
		items = append(items, dto.FromPurchaseOrder(order))
	}

	h.Created(c, items)
}

// ReceiveGoods records a delivery against a purchase order.
// POST /api/v1/purchase-orders/:id/receipts
func (h *PurchaseHandler) ReceiveGoods(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveGoodsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	receipt, err := h.service.ReceiveGoods(c.Request.Context(), orderID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromGoodsReceipt(receipt))
}

// ListReceipts returns all receipts recorded against a purchase order.
// GET /api/v1/purchase-orders/:id/receipts
func (h *PurchaseHandler) ListReceipts(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListReceipts(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.GoodsReceiptResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromGoodsReceipt(&list[i]))
	}

	h.OK(c, items)
}

// CreateReturn sends goods back to a supplier.
// POST /api/v1/purchase-returns
func (h *PurchaseHandler) CreateReturn(c *gin.Context) {
	var req dto.CreatePurchaseReturnRequest
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

	h.Created(c, dto.FromPurchaseReturn(ret))
}
