package handlers

import (
	"github.com/gin-gonic/gin"

	"kamesan/internal/domain/promotions"
	"kamesan/internal/infrastructure/http/v1/dto"
)

// PromotionHandler handles promotion management endpoints.
type PromotionHandler struct {
	*BaseHandler
	service *promotions.Service
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(service *promotions.Service) *PromotionHandler {
	return &PromotionHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create registers a discount rule. The condition expression is
// compiled and type checked before the rule is accepted.
// POST /api/v1/promotions
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.CreatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	promo, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), promo); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromPromotion(promo))
}

// Get returns a promotion by ID.
// GET /api/v1/promotions/:id
func (h *PromotionHandler) Get(c *gin.Context) {
	promoID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	promo, err := h.service.Get(c.Request.Context(), promoID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(promo))
}

// List returns all promotions.
// GET /api/v1/promotions
func (h *PromotionHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PromotionResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromPromotion(&list[i]))
	}

	h.OK(c, items)
}

// Update patches a promotion.
// PATCH /api/v1/promotions/:id
func (h *PromotionHandler) Update(c *gin.Context) {
	promoID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	promo, err := h.service.Get(c.Request.Context(), promoID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(promo); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(c.Request.Context(), promo); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(promo))
}

// Delete removes a promotion.
// DELETE /api/v1/promotions/:id
func (h *PromotionHandler) Delete(c *gin.Context) {
	promoID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), promoID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
