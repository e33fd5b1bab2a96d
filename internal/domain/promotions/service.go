package promotions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kamesan/internal/core/apperror"
	appctx "kamesan/internal/core/context"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/orders"
	"kamesan/pkg/logger"
)

// Service manages promotions and evaluates them at checkout.
type Service struct {
	repo      Repository
	evaluator *Evaluator
	clock     func() time.Time
}

// Ensure the service can plug into order creation.
var _ orders.DiscountEngine = (*Service)(nil)

// NewService creates a promotions service. clock may be nil (wall clock UTC).
func NewService(repo Repository, evaluator *Evaluator, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, evaluator: evaluator, clock: clock}
}

// Create validates the promotion, including condition compilation, and
// persists it.
func (s *Service) Create(ctx context.Context, promo *Promotion) error {
	if err := promo.Validate(ctx); err != nil {
		return err
	}
	if err := s.evaluator.Check(promo.Condition); err != nil {
		return err
	}

	exists, err := s.repo.ExistsByCode(ctx, promo.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("promotion", "code", promo.Code)
	}

	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		promo.CreatedBy = userID
		promo.UpdatedBy = userID
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		return err
	}
	logger.Info(ctx, "promotion created", "code", promo.Code, "name", promo.Name)
	return nil
}

// Update revalidates and persists changes to a promotion.
func (s *Service) Update(ctx context.Context, promo *Promotion) error {
	if err := promo.Validate(ctx); err != nil {
		return err
	}
	if err := s.evaluator.Check(promo.Condition); err != nil {
		return err
	}
	if userID := appctx.GetUserEntityID(ctx); userID != nil {
		promo.UpdatedBy = userID
	}
	promo.Touch()
	return s.repo.Update(ctx, promo)
}

// Get loads a promotion by ID.
func (s *Service) Get(ctx context.Context, promoID id.ID) (*Promotion, error) {
	return s.repo.GetByID(ctx, promoID)
}

// GetByCode loads a promotion by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns all promotions.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.repo.List(ctx)
}

// Delete removes a promotion.
func (s *Service) Delete(ctx context.Context, promoID id.ID) error {
	return s.repo.Delete(ctx, promoID)
}

// BestDiscount implements orders.DiscountEngine: it evaluates all active
// promotions against the order and returns the largest discount. A
// promotion whose condition fails to evaluate is skipped, not fatal.
func (s *Service) BestDiscount(ctx context.Context, order *orders.Order) (types.Money, string, error) {
	now := s.clock()
	active, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return decimal.Zero, "", err
	}

	facts := Facts{
		Subtotal:      order.Subtotal.InexactFloat64(),
		ItemCount:     len(order.Items),
		PaymentMethod: string(order.PaymentMethod),
		Hour:          now.Hour(),
		Weekday:       isoWeekday(now),
	}

	best := decimal.Zero
	bestCode := ""
	for _, promo := range active {
		if !promo.InWindow(now) {
			continue
		}
		matched, err := s.evaluator.Eval(promo.Condition, facts)
		if err != nil {
			logger.Warn(ctx, "promotion condition skipped",
				"code", promo.Code, "error", err)
			continue
		}
		if !matched {
			continue
		}
		amount := promo.DiscountFor(order.Subtotal)
		if amount.GreaterThan(best) {
			best = amount
			bestCode = promo.Code
		}
	}
	return best, bestCode, nil
}

// isoWeekday maps Go's Sunday=0 convention to ISO 8601 (Monday=1, Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
