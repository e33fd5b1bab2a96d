package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/pkg/logger"
)

// Generator issues document numbers. Document services depend on this
// interface; the concrete Service below is the production implementation.
type Generator interface {
	// GenerateNumber issues the next number for the type. Never fails for a
	// missing rule (falls back to default numbering); persistence failures
	// propagate as NUMBER_ALLOCATION_FAILED.
	GenerateNumber(ctx context.Context, docType DocumentType) (string, error)

	// PreviewNextNumber returns (sample, next) without touching the counter.
	// sample shows the shape with sequence 1, next is what GenerateNumber
	// would return right now.
	PreviewNextNumber(ctx context.Context, docType DocumentType) (string, string, error)
}

// Clock supplies the current time. Injected so period rollover is testable
// without sleeping real time.
type Clock func() time.Time

// Auditor records configuration changes. Nil disables auditing.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service implements Generator and rule administration on top of the
// repositories. It holds no in-process counter state: all shared mutable
// state lives in the sequence table.
type Service struct {
	rules     RuleRepository
	sequences SequenceRepository
	clock     Clock
	audit     Auditor
}

// Ensure compile-time interface compliance.
var _ Generator = (*Service)(nil)

// NewService creates a numbering service. clock may be nil (wall clock UTC).
func NewService(rules RuleRepository, sequences SequenceRepository, clock Clock, audit Auditor) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		rules:     rules,
		sequences: sequences,
		clock:     clock,
		audit:     audit,
	}
}

// GenerateNumber issues the next formatted number for the document type.
//
// When the context carries an open transaction the counter increment joins
// it, so a batch creating several documents sees each increment before the
// batch commits and every document still gets a distinct number.
func (s *Service) GenerateNumber(ctx context.Context, docType DocumentType) (string, error) {
	rule, err := s.rules.GetActive(ctx, docType)
	if err != nil {
		if apperror.IsNotFound(err) {
			return s.generateDefaultNumber(docType), nil
		}
		return "", apperror.NewNumberAllocation(string(docType), err)
	}

	now := s.clock()
	periodKey := rule.PeriodKey(now)

	seq, err := s.sequences.Increment(ctx, docType, periodKey)
	if err != nil {
		return "", apperror.NewNumberAllocation(string(docType), err)
	}

	return rule.FormatNumber(seq, now), nil
}

// PreviewNextNumber computes (sample, next) without mutating the counter.
func (s *Service) PreviewNextNumber(ctx context.Context, docType DocumentType) (string, string, error) {
	rule, err := s.rules.GetActive(ctx, docType)
	if err != nil {
		if apperror.IsNotFound(err) {
			sample := s.generateDefaultNumber(docType)
			return sample, sample, nil
		}
		return "", "", err
	}

	now := s.clock()
	periodKey := rule.PeriodKey(now)

	current, err := s.sequences.Current(ctx, docType, periodKey)
	if err != nil {
		return "", "", err
	}

	sample := rule.FormatNumber(1, now)
	next := rule.FormatNumber(current+1, now)
	return sample, next, nil
}

// generateDefaultNumber is the safety net for unconfigured types:
// fixed prefix + second-precision timestamp + random hex suffix.
// Uniqueness here is best-effort, not a hard invariant.
func (s *Service) generateDefaultNumber(docType DocumentType) string {
	now := s.clock()
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("%s%s%s", docType.FallbackPrefix(), now.Format("20060102150405"), suffix)
}

// --- Rule administration ---

// AuditEntityRule is the audit log entity type for numbering rules.
const AuditEntityRule = "numbering_rule"

// GetRule returns the active rule for a type, or NotFound.
func (s *Service) GetRule(ctx context.Context, docType DocumentType) (*Rule, error) {
	return s.rules.GetActive(ctx, docType)
}

// GetRuleByID returns a rule by its ID.
func (s *Service) GetRuleByID(ctx context.Context, ruleID id.ID) (*Rule, error) {
	return s.rules.GetByID(ctx, ruleID)
}

// ListRules returns rules matching the filter with a total count.
func (s *Service) ListRules(ctx context.Context, filter RuleFilter) ([]*Rule, int64, error) {
	return s.rules.List(ctx, filter)
}

// CreateRule registers a numbering rule for a document type.
// Only one rule per type is allowed.
func (s *Service) CreateRule(ctx context.Context, rule *Rule) error {
	if err := rule.Validate(ctx); err != nil {
		return err
	}

	exists, err := s.rules.ExistsForType(ctx, rule.DocumentType)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("numbering rule", "document type", string(rule.DocumentType))
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return err
	}

	s.logRuleChange(ctx, rule, "create")
	logger.Info(ctx, "numbering rule created",
		"document_type", rule.DocumentType,
		"prefix", rule.Prefix)
	return nil
}

// UpdateRule modifies an existing rule.
func (s *Service) UpdateRule(ctx context.Context, rule *Rule) error {
	if err := rule.Validate(ctx); err != nil {
		return err
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return err
	}

	s.logRuleChange(ctx, rule, "update")
	return nil
}

// DeleteRule removes a rule. Counters for the type are kept: history stays
// intact and number generation falls back to the default format.
func (s *Service) DeleteRule(ctx context.Context, ruleID id.ID) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return err
	}

	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return err
	}

	s.logRuleChange(ctx, rule, "delete")
	return nil
}

// InitDefaults seeds the canonical rule set, skipping types that already
// have a rule. Returns the number of rules created.
func (s *Service) InitDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, rule := range DefaultRules() {
		exists, err := s.rules.ExistsForType(ctx, rule.DocumentType)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := s.rules.Create(ctx, rule); err != nil {
			return created, err
		}
		s.logRuleChange(ctx, rule, "create")
		created++
	}

	logger.Info(ctx, "default numbering rules initialized", "created", created)
	return created, nil
}

func (s *Service) logRuleChange(ctx context.Context, rule *Rule, action string) {
	if s.audit == nil {
		return
	}
	err := s.audit.LogChange(ctx, AuditEntityRule, rule.ID, action, map[string]any{
		"document_type":   rule.DocumentType,
		"prefix":          rule.Prefix,
		"date_format":     rule.DateFormat,
		"sequence_digits": rule.SequenceDigits,
		"reset_period":    rule.ResetPeriod,
		"is_active":       rule.IsActive,
	})
	if err != nil {
		logger.Warn(ctx, "audit log failed", "entity", AuditEntityRule, "error", err)
	}
}
