package numbering

import (
	"context"

	"kamesan/internal/core/id"
)

// RuleFilter narrows rule listings.
type RuleFilter struct {
	DocumentType *DocumentType
	IsActive     *bool
	Limit        int
	Offset       int
}

// RuleRepository persists numbering rules.
type RuleRepository interface {
	// GetActive returns the active rule for the type.
	// Returns apperror NotFound when no active rule exists.
	GetActive(ctx context.Context, docType DocumentType) (*Rule, error)

	GetByID(ctx context.Context, ruleID id.ID) (*Rule, error)
	Create(ctx context.Context, rule *Rule) error
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, ruleID id.ID) error
	List(ctx context.Context, filter RuleFilter) ([]*Rule, int64, error)

	// ExistsForType reports whether any rule (active or not) is configured
	// for the type. At most one rule per type is allowed.
	ExistsForType(ctx context.Context, docType DocumentType) (bool, error)
}

// SequenceRepository persists per-(type, period) counters.
//
// Increment must be atomic: concurrent callers for the same key must each
// observe a distinct, gap-free value, and the first-time creation of a key
// must not fail under a racing insert. When the context carries an open
// transaction the increment joins it, so values issued inside one
// transaction are visible to subsequent calls before commit.
type SequenceRepository interface {
	// Increment advances the counter for (docType, periodKey) by one and
	// returns the new value, creating the row at 1 when absent.
	Increment(ctx context.Context, docType DocumentType, periodKey string) (int64, error)

	// Current returns the counter value without modifying it,
	// zero when no row exists yet.
	Current(ctx context.Context, docType DocumentType, periodKey string) (int64, error)
}
