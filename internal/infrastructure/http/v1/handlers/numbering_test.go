package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kamesan/internal/core/id"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/infrastructure/http/v1/dto"
	"kamesan/internal/infrastructure/http/v1/middleware"
	"kamesan/internal/infrastructure/storage/postgres"
)

type fakeHistoryReader struct {
	entityType string
	entityID   id.ID
	limit      int
	entries    []postgres.AuditEntry
	err        error
}

func (r *fakeHistoryReader) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	r.entityType = entityType
	r.entityID = entityID
	r.limit = limit
	return r.entries, r.err
}

func newHistoryRouter(reader *fakeHistoryReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	handler := NewNumberingHandler(nil, reader)
	router.GET("/numbering/rules/:id/history", handler.RuleHistory)
	return router
}

func TestRuleHistoryReturnsEntries(t *testing.T) {
	ruleID := id.New()
	reader := &fakeHistoryReader{
		entries: []postgres.AuditEntry{
			{
				ID:         id.New(),
				EntityType: numbering.AuditEntityRule,
				EntityID:   ruleID,
				Action:     "update",
				UserEmail:  "admin@kamesan.local",
				Changes:    json.RawMessage(`{"prefix":"SO"}`),
				CreatedAt:  time.Now().UTC(),
			},
			{
				ID:         id.New(),
				EntityType: numbering.AuditEntityRule,
				EntityID:   ruleID,
				Action:     "create",
				CreatedAt:  time.Now().UTC().Add(-time.Hour),
			},
		},
	}
	router := newHistoryRouter(reader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/numbering/rules/"+ruleID.String()+"/history?limit=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, numbering.AuditEntityRule, reader.entityType)
	assert.Equal(t, ruleID, reader.entityID)
	assert.Equal(t, 10, reader.limit)

	var items []dto.AuditEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "update", items[0].Action)
	assert.Equal(t, "admin@kamesan.local", items[0].UserEmail)
	assert.JSONEq(t, `{"prefix":"SO"}`, string(items[0].Changes))
	assert.Equal(t, "create", items[1].Action)
}

func TestRuleHistoryDefaultLimit(t *testing.T) {
	reader := &fakeHistoryReader{}
	router := newHistoryRouter(reader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/numbering/rules/"+id.New().String()+"/history", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, reader.limit)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRuleHistoryRejectsMalformedID(t *testing.T) {
	router := newHistoryRouter(&fakeHistoryReader{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/numbering/rules/not-a-uuid/history", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
