// Package promotions provides discount rules with CEL eligibility
// conditions, evaluated at checkout.
package promotions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/entity"
	"kamesan/internal/core/types"
)

// DiscountType determines how DiscountValue is interpreted.
type DiscountType string

const (
	// DiscountPercentage treats DiscountValue as a percentage of the subtotal.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixed treats DiscountValue as an absolute amount.
	DiscountFixed DiscountType = "FIXED"
)

// Promotion is a discount rule. Condition is a CEL expression over the
// checkout facts (see Facts); an empty condition always matches.
type Promotion struct {
	entity.Audited

	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	Condition string `db:"condition" json:"condition"`

	DiscountType  DiscountType `db:"discount_type" json:"discountType"`
	DiscountValue types.Money  `db:"discount_value" json:"discountValue"`

	StartsAt *time.Time `db:"starts_at" json:"startsAt,omitempty"`
	EndsAt   *time.Time `db:"ends_at" json:"endsAt,omitempty"`
	IsActive bool       `db:"is_active" json:"isActive"`
}

// NewPromotion creates an active promotion.
func NewPromotion(code, name string, discountType DiscountType, value types.Money) *Promotion {
	return &Promotion{
		Audited:       entity.NewAudited(),
		Code:          code,
		Name:          name,
		DiscountType:  discountType,
		DiscountValue: value,
		IsActive:      true,
	}
}

// Validate implements entity.Validatable.
func (p *Promotion) Validate(ctx context.Context) error {
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	switch p.DiscountType {
	case DiscountPercentage:
		if p.DiscountValue.LessThanOrEqual(decimal.Zero) || p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return apperror.NewValidation("percentage must be between 0 and 100").
				WithDetail("field", "discountValue")
		}
	case DiscountFixed:
		if p.DiscountValue.LessThanOrEqual(decimal.Zero) {
			return apperror.NewValidation("fixed discount must be positive").
				WithDetail("field", "discountValue")
		}
	default:
		return apperror.NewValidation("invalid discount type").
			WithDetail("field", "discountType").
			WithDetail("value", string(p.DiscountType))
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return apperror.NewValidation("end date must be after start date").
			WithDetail("field", "endsAt")
	}
	return nil
}

// InWindow reports whether the promotion is active at the given time.
func (p *Promotion) InWindow(at time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && at.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && at.After(*p.EndsAt) {
		return false
	}
	return true
}

// DiscountFor computes the discount amount for a subtotal. The result is
// never larger than the subtotal.
func (p *Promotion) DiscountFor(subtotal types.Money) types.Money {
	var amount types.Money
	switch p.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(p.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		amount = p.DiscountValue
	default:
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
