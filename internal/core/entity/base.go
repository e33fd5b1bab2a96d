// Package entity provides base types shared by catalogs and documents.
package entity

import (
	"context"
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Base contains common fields for all persistent entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with generated ID and current timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Audited extends Base with user attribution fields.
type Audited struct {
	Base

	CreatedBy *id.ID `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy *id.ID `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewAudited creates an Audited base.
func NewAudited() Audited {
	return Audited{Base: NewBase()}
}

// Document is the base type for business documents (orders, receipts,
// counts, transfers). Every document carries a generated number.
type Document struct {
	Audited

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Notes is an optional user comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document with generated ID and current date.
func NewDocument() Document {
	return Document{
		Audited: NewAudited(),
		Date:    time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
