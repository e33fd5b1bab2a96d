package dto

import (
	"time"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/promotions"
)

// CreatePromotionRequest creates a discount rule.
type CreatePromotionRequest struct {
	Code          string     `json:"code" binding:"required,max=30"`
	Name          string     `json:"name" binding:"required"`
	Description   string     `json:"description"`
	Condition     string     `json:"condition"`
	DiscountType  string     `json:"discountType" binding:"required"`
	DiscountValue string     `json:"discountValue" binding:"required"`
	StartsAt      *time.Time `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt"`
}

// ToEntity maps the request to a promotion entity.
func (r CreatePromotionRequest) ToEntity() (*promotions.Promotion, error) {
	value, err := types.NewMoneyFromString(r.DiscountValue)
	if err != nil {
		return nil, apperror.NewValidation("invalid discount value").
			WithDetail("field", "discountValue")
	}

	promo := promotions.NewPromotion(r.Code, r.Name, promotions.DiscountType(r.DiscountType), value)
	promo.Description = r.Description
	promo.Condition = r.Condition
	promo.StartsAt = r.StartsAt
	promo.EndsAt = r.EndsAt
	return promo, nil
}

// UpdatePromotionRequest modifies an existing promotion.
type UpdatePromotionRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Condition     *string    `json:"condition"`
	DiscountType  *string    `json:"discountType"`
	DiscountValue *string    `json:"discountValue"`
	StartsAt      *time.Time `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt"`
	IsActive      *bool      `json:"isActive"`
}

// ApplyTo patches the entity with the provided fields.
func (r UpdatePromotionRequest) ApplyTo(promo *promotions.Promotion) error {
	if r.Name != nil {
		promo.Name = *r.Name
	}
	if r.Description != nil {
		promo.Description = *r.Description
	}
	if r.Condition != nil {
		promo.Condition = *r.Condition
	}
	if r.DiscountType != nil {
		promo.DiscountType = promotions.DiscountType(*r.DiscountType)
	}
	if r.DiscountValue != nil {
		value, err := types.NewMoneyFromString(*r.DiscountValue)
		if err != nil {
			return apperror.NewValidation("invalid discount value").
				WithDetail("field", "discountValue")
		}
		promo.DiscountValue = value
	}
	if r.StartsAt != nil {
		promo.StartsAt = r.StartsAt
	}
	if r.EndsAt != nil {
		promo.EndsAt = r.EndsAt
	}
	if r.IsActive != nil {
		promo.IsActive = *r.IsActive
	}
	return nil
}

// PromotionResponse is the public view of a promotion.
type PromotionResponse struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Condition     string     `json:"condition,omitempty"`
	DiscountType  string     `json:"discountType"`
	DiscountValue string     `json:"discountValue"`
	StartsAt      *time.Time `json:"startsAt,omitempty"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// FromPromotion maps a promotion entity to its response.
func FromPromotion(p *promotions.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		Condition:     p.Condition,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue.String(),
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}
