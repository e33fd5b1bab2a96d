package dto

import (
	"time"

	"kamesan/internal/domain/numbering"
)

// CreateNumberingRuleRequest configures numbering for a document type.
type CreateNumberingRuleRequest struct {
	DocumentType   string `json:"documentType" binding:"required"`
	Prefix         string `json:"prefix" binding:"required,max=10"`
	DateFormat     string `json:"dateFormat" binding:"required"`
	SequenceDigits int    `json:"sequenceDigits" binding:"required,min=3,max=10"`
	ResetPeriod    string `json:"resetPeriod" binding:"required"`
}

// ToEntity maps the request to a rule entity.
func (r CreateNumberingRuleRequest) ToEntity() *numbering.Rule {
	return numbering.NewRule(
		numbering.DocumentType(r.DocumentType),
		r.Prefix,
		numbering.DateFormat(r.DateFormat),
		r.SequenceDigits,
		numbering.ResetPeriod(r.ResetPeriod),
	)
}

// UpdateNumberingRuleRequest modifies an existing rule.
type UpdateNumberingRuleRequest struct {
	Prefix         *string `json:"prefix" binding:"omitempty,max=10"`
	DateFormat     *string `json:"dateFormat"`
	SequenceDigits *int    `json:"sequenceDigits" binding:"omitempty,min=3,max=10"`
	ResetPeriod    *string `json:"resetPeriod"`
	IsActive       *bool   `json:"isActive"`
}

// ApplyTo patches the entity with the provided fields.
func (r UpdateNumberingRuleRequest) ApplyTo(rule *numbering.Rule) {
	if r.Prefix != nil {
		rule.Prefix = *r.Prefix
	}
	if r.DateFormat != nil {
		rule.DateFormat = numbering.DateFormat(*r.DateFormat)
	}
	if r.SequenceDigits != nil {
		rule.SequenceDigits = *r.SequenceDigits
	}
	if r.ResetPeriod != nil {
		rule.ResetPeriod = numbering.ResetPeriod(*r.ResetPeriod)
	}
	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
}

// NumberingRuleResponse is the public view of a rule.
type NumberingRuleResponse struct {
	ID             string    `json:"id"`
	DocumentType   string    `json:"documentType"`
	Prefix         string    `json:"prefix"`
	DateFormat     string    `json:"dateFormat"`
	SequenceDigits int       `json:"sequenceDigits"`
	ResetPeriod    string    `json:"resetPeriod"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FromNumberingRule maps a rule entity to its response.
func FromNumberingRule(rule *numbering.Rule) NumberingRuleResponse {
	return NumberingRuleResponse{
		ID:             rule.ID.String(),
		DocumentType:   string(rule.DocumentType),
		Prefix:         rule.Prefix,
		DateFormat:     string(rule.DateFormat),
		SequenceDigits: rule.SequenceDigits,
		ResetPeriod:    string(rule.ResetPeriod),
		IsActive:       rule.IsActive,
		CreatedAt:      rule.CreatedAt,
		UpdatedAt:      rule.UpdatedAt,
	}
}

// NumberPreviewResponse shows the shape of upcoming numbers without
// consuming a sequence value.
type NumberPreviewResponse struct {
	DocumentType string `json:"documentType"`
	Sample       string `json:"sample"`
	Next         string `json:"next"`
}

// InitDefaultsResponse reports how many default rules were installed.
type InitDefaultsResponse struct {
	Created int `json:"created"`
}
