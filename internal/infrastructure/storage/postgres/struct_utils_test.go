package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kamesan/internal/core/entity"
	"kamesan/internal/core/id"
)

type mockDocument struct {
	entity.Document
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Status      string `db:"status" json:"status"`
	Items       []int  `db:"-" json:"items"`
}

func TestExtractDBColumns_EmbeddedDocument(t *testing.T) {
	cols := ExtractDBColumns[mockDocument]()

	expectedCols := []string{
		"id", "created_at", "updated_at", "created_by", "updated_by",
		"number", "date", "notes", "warehouse_id", "status",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_EmbeddedDocument(t *testing.T) {
	userID := id.New()
	doc := mockDocument{
		Document:    entity.NewDocument(),
		WarehouseID: id.New(),
		Status:      "DRAFT",
		Items:       []int{1, 2, 3},
	}
	doc.Number = "SC202501010001"
	doc.Notes = "annual count"
	doc.CreatedBy = &userID

	m := StructToMap(doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, "SC202501010001", m["number"])
	assert.Equal(t, "annual count", m["notes"])
	assert.Equal(t, &userID, m["created_by"])
	assert.Equal(t, doc.WarehouseID, m["warehouse_id"])
	assert.Equal(t, "DRAFT", m["status"])
	assert.NotContains(t, m, "-")
	assert.NotContains(t, m, "items")
	assert.IsType(t, time.Time{}, m["date"])
}
