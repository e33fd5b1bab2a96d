package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/infrastructure/http/v1/dto"
	"kamesan/internal/infrastructure/storage/postgres"
)

// AuditHistoryReader loads recorded changes for an entity, newest first.
type AuditHistoryReader interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// NumberingHandler handles numbering rule administration and previews.
type NumberingHandler struct {
	*BaseHandler
	service *numbering.Service
	history AuditHistoryReader
}

// NewNumberingHandler creates a new numbering handler.
func NewNumberingHandler(service *numbering.Service, history AuditHistoryReader) *NumberingHandler {
	return &NumberingHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		history:     history,
	}
}

// CreateRule registers a numbering rule for a document type.
// POST /api/v1/numbering/rules
func (h *NumberingHandler) CreateRule(c *gin.Context) {
	var req dto.CreateNumberingRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule := req.ToEntity()
	if err := h.service.CreateRule(c.Request.Context(), rule); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromNumberingRule(rule))
}

// GetRule returns a rule by ID.
// GET /api/v1/numbering/rules/:id
func (h *NumberingHandler) GetRule(c *gin.Context) {
	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rule, err := h.service.GetRuleByID(c.Request.Context(), ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromNumberingRule(rule))
}

// ListRules returns rules matching the filter.
// GET /api/v1/numbering/rules
func (h *NumberingHandler) ListRules(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := numbering.RuleFilter{
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if dt := c.Query("documentType"); dt != "" {
		docType := numbering.DocumentType(dt)
		filter.DocumentType = &docType
	}

	rules, total, err := h.service.ListRules(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.NumberingRuleResponse, 0, len(rules))
	for _, rule := range rules {
		items = append(items, dto.FromNumberingRule(rule))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int(total),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}

// UpdateRule patches an existing rule.
// PATCH /api/v1/numbering/rules/:id
func (h *NumberingHandler) UpdateRule(c *gin.Context) {
	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateNumberingRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule, err := h.service.GetRuleByID(c.Request.Context(), ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(rule)
	if err := h.service.UpdateRule(c.Request.Context(), rule); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromNumberingRule(rule))
}

// DeleteRule removes a rule. Existing counters and issued numbers are kept.
// DELETE /api/v1/numbering/rules/:id
func (h *NumberingHandler) DeleteRule(c *gin.Context) {
	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), ruleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RuleHistory returns recorded changes for a rule, newest first. History
// survives rule deletion, so the rule itself is not required to exist.
// GET /api/v1/numbering/rules/:id/history
func (h *NumberingHandler) RuleHistory(c *gin.Context) {
	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.history.GetEntityHistory(c.Request.Context(), numbering.AuditEntityRule, ruleID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.FromAuditEntry(entry))
	}

	h.OK(c, items)
}

// Preview shows the next number for a document type without consuming it.
// GET /api/v1/numbering/preview/:documentType
func (h *NumberingHandler) Preview(c *gin.Context) {
	docType := numbering.DocumentType(c.Param("documentType"))
	if !docType.IsValid() {
		h.Error(c, apperror.NewValidation("unknown document type").
			WithDetail("documentType", string(docType)))
		return
	}

	sample, next, err := h.service.PreviewNextNumber(c.Request.Context(), docType)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NumberPreviewResponse{
		DocumentType: string(docType),
		Sample:       sample,
		Next:         next,
	})
}

// InitDefaults seeds the canonical rule set for all document types.
// POST /api/v1/numbering/rules/init-defaults
func (h *NumberingHandler) InitDefaults(c *gin.Context) {
	created, err := h.service.InitDefaults(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.InitDefaultsResponse{Created: created})
}
