package dto

import (
	"encoding/json"
	"time"

	"kamesan/internal/infrastructure/storage/postgres"
)

// AuditEntryResponse is one recorded change of an entity.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	UserEmail string          `json:"userEmail,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromAuditEntry maps a stored audit entry to its response.
func FromAuditEntry(entry postgres.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID.String(),
		Action:    entry.Action,
		UserID:    entry.UserID,
		UserEmail: entry.UserEmail,
		Changes:   entry.Changes,
		CreatedAt: entry.CreatedAt,
	}
}
