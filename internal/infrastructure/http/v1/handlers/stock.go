package handlers

import (
	"github.com/gin-gonic/gin"

	"kamesan/internal/core/types"
	"kamesan/internal/domain/stock"
	"kamesan/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock count and stock transfer endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// CreateCount creates a stock count in draft status.
// POST /api/v1/stock-counts
func (h *StockHandler) CreateCount(c *gin.Context) {
	var req dto.CreateStockCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	count, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateCount(c.Request.Context(), count); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromStockCount(count))
}

// GetCount returns a stock count with its lines.
// GET /api/v1/stock-counts/:id
func (h *StockHandler) GetCount(c *gin.Context) {
	countID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	count, err := h.service.GetCount(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockCount(count))
}

// StartCount moves a draft count to in progress.
// POST /api/v1/stock-counts/:id/start
func (h *StockHandler) StartCount(c *gin.Context) {
	countID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	count, err := h.service.StartCount(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockCount(count))
}

// RecordCounted stores a counted quantity for one line.
// POST /api/v1/stock-counts/:id/record
func (h *StockHandler) RecordCounted(c *gin.Context) {
	countID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordCountedQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lineID, err := parseRequestID(req.LineID, "lineId")
	if err != nil {
		h.Error(c, err)
		return
	}

	count, err := h.service.RecordCountedQuantity(c.Request.Context(), countID, lineID, types.NewQuantityFromFloat64(req.CountedQty))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockCount(count))
}

// CompleteCount finalizes a count once every line is counted.
// POST /api/v1/stock-counts/:id/complete
func (h *StockHandler) CompleteCount(c *gin.Context) {
	countID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	count, err := h.service.CompleteCount(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockCount(count))
}

// CancelCount cancels a count.
// POST /api/v1/stock-counts/:id/cancel
func (h *StockHandler) CancelCount(c *gin.Context) {
	countID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	count, err := h.service.CancelCount(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockCount(count))
}

// ListCounts returns counts for a warehouse.
// GET /api/v1/warehouses/:id/stock-counts
func (h *StockHandler) ListCounts(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListCounts(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockCountResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromStockCount(&list[i]))
	}

	h.OK(c, items)
}

// CreateTransfer creates a transfer between warehouses.
// POST /api/v1/stock-transfers
func (h *StockHandler) CreateTransfer(c *gin.Context) {
	var req dto.CreateStockTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	transfer, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateTransfer(c.Request.Context(), transfer); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromStockTransfer(transfer))
}

// GetTransfer returns a transfer with its lines.
// GET /api/v1/stock-transfers/:id
func (h *StockHandler) GetTransfer(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.service.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockTransfer(transfer))
}

// SetTransferStatus moves a transfer through its lifecycle.
// POST /api/v1/stock-transfers/:id/status
func (h *StockHandler) SetTransferStatus(c *gin.Context) {
	transferID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetTransferStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	transfer, err := h.service.SetTransferStatus(c.Request.Context(), transferID, stock.TransferStatus(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockTransfer(transfer))
}

// ListTransfers returns transfers touching a warehouse on either side.
// GET /api/v1/warehouses/:id/stock-transfers
func (h *StockHandler) ListTransfers(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListTransfers(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockTransferResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromStockTransfer(&list[i]))
	}

	h.OK(c, items)
}
