package promotions

import (
	"context"
	"time"

	"kamesan/internal/core/id"
)

// Repository persists promotions.
type Repository interface {
	// GetByID returns AppError with CodeNotFound if absent.
	GetByID(ctx context.Context, promoID id.ID) (*Promotion, error)

	GetByCode(ctx context.Context, code string) (*Promotion, error)

	// ListActive returns active promotions whose window contains at.
	ListActive(ctx context.Context, at time.Time) ([]Promotion, error)

	// List returns all promotions, active or not.
	List(ctx context.Context) ([]Promotion, error)

	Create(ctx context.Context, promo *Promotion) error
	Update(ctx context.Context, promo *Promotion) error
	Delete(ctx context.Context, promoID id.ID) error

	ExistsByCode(ctx context.Context, code string) (bool, error)
}
