package numbering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
)

// --- In-memory fakes ---

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[DocumentType]*Rule
	err   error
}

func newFakeRuleRepo(rules ...*Rule) *fakeRuleRepo {
	r := &fakeRuleRepo{rules: make(map[DocumentType]*Rule)}
	for _, rule := range rules {
		r.rules[rule.DocumentType] = rule
	}
	return r
}

func (r *fakeRuleRepo) GetActive(ctx context.Context, docType DocumentType) (*Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rule, ok := r.rules[docType]
	if !ok || !rule.IsActive {
		return nil, apperror.NewNotFound("numbering rule", string(docType))
	}
	return rule, nil
}

func (r *fakeRuleRepo) GetByID(ctx context.Context, ruleID id.ID) (*Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == ruleID {
			return rule, nil
		}
	}
	return nil, apperror.NewNotFound("numbering rule", ruleID.String())
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.DocumentType] = rule
	return nil
}

func (r *fakeRuleRepo) Update(ctx context.Context, rule *Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.DocumentType] = rule
	return nil
}

func (r *fakeRuleRepo) Delete(ctx context.Context, ruleID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for docType, rule := range r.rules {
		if rule.ID == ruleID {
			delete(r.rules, docType)
			return nil
		}
	}
	return apperror.NewNotFound("numbering rule", ruleID.String())
}

func (r *fakeRuleRepo) List(ctx context.Context, filter RuleFilter) ([]*Rule, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Rule
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRuleRepo) ExistsForType(ctx context.Context, docType DocumentType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rules[docType]
	return ok, nil
}

// fakeSequenceRepo mimics the atomic upsert: each Increment returns a
// distinct value even under concurrent callers.
type fakeSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: make(map[string]int64)}
}

func seqKey(docType DocumentType, periodKey string) string {
	return string(docType) + ":" + periodKey
}

func (r *fakeSequenceRepo) Increment(ctx context.Context, docType DocumentType, periodKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	key := seqKey(docType, periodKey)
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeSequenceRepo) Current(ctx context.Context, docType DocumentType, periodKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return r.counters[seqKey(docType, periodKey)], nil
}

type auditCall struct {
	entityType string
	entityID   id.ID
	action     string
	changes    map[string]any
}

type fakeAuditor struct {
	mu    sync.Mutex
	err   error
	calls []auditCall
}

func (a *fakeAuditor) LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, auditCall{entityType, entityID, action, changes})
	return a.err
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

// --- Tests ---

func TestGenerateNumberWithRule(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	seqs := newFakeSequenceRepo()
	svc := NewService(rules, seqs, fixedClock(midJanuary), nil)
	ctx := context.Background()

	num, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, "SO202501150001", num)

	num, err = svc.GenerateNumber(ctx, DocTypeSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, "SO202501150002", num)
}

func TestGenerateNumberUniqueUnderConcurrency(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	seqs := newFakeSequenceRepo()
	svc := NewService(rules, seqs, fixedClock(midJanuary), nil)
	ctx := context.Background()

	const n = 100
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
			if assert.NoError(t, err) {
				results <- num
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		assert.False(t, seen[num], "duplicate number issued: %s", num)
		seen[num] = true
	}
	require.Len(t, seen, n)

	// Gap-free: every value 1..n was issued exactly once.
	for i := 1; i <= n; i++ {
		expected := fmt.Sprintf("SO20250115%04d", i)
		assert.True(t, seen[expected], "missing %s", expected)
	}
}

func TestGenerateNumberPeriodRollover(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	seqs := newFakeSequenceRepo()

	now := midJanuary
	svc := NewService(rules, seqs, func() time.Time { return now }, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
		require.NoError(t, err)
	}

	// Next day: visible sequence restarts at 1.
	now = now.AddDate(0, 0, 1)
	num, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, "SO202501160001", num)

	// Yesterday's counter is untouched.
	prev, err := seqs.Current(ctx, DocTypeSalesOrder, "20250115")
	require.NoError(t, err)
	assert.Equal(t, int64(3), prev)
}

func TestGenerateNumberNeverResetKeepsIncrementing(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeStockCount, "SC", DateFormatNone, 3, ResetNever))
	seqs := newFakeSequenceRepo()

	now := midJanuary
	svc := NewService(rules, seqs, func() time.Time { return now }, nil)
	ctx := context.Background()

	num, err := svc.GenerateNumber(ctx, DocTypeStockCount)
	require.NoError(t, err)
	assert.Equal(t, "SC001", num)

	// Ten years later the same global counter continues.
	now = now.AddDate(10, 0, 0)
	num, err = svc.GenerateNumber(ctx, DocTypeStockCount)
	require.NoError(t, err)
	assert.Equal(t, "SC002", num)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	seqs := newFakeSequenceRepo()
	svc := NewService(rules, seqs, fixedClock(midJanuary), nil)
	ctx := context.Background()

	_, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
	require.NoError(t, err)

	var next string
	for i := 0; i < 5; i++ {
		var sample string
		var err error
		sample, next, err = svc.PreviewNextNumber(ctx, DocTypeSalesOrder)
		require.NoError(t, err)
		assert.Equal(t, "SO202501150001", sample)
		assert.Equal(t, "SO202501150002", next)
	}

	// The previewed number is exactly what generation returns.
	num, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, next, num)
}

func TestGenerateNumberFallbackWithoutRule(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), nil)
	ctx := context.Background()

	num, err := svc.GenerateNumber(ctx, DocTypePurchaseOrder)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(num, "PO"), "got %s", num)
	// PO + 14-digit timestamp + 6-char suffix
	assert.Len(t, num, 2+14+6)
	assert.Contains(t, num, "20250115103000")
}

func TestFallbackCollisionResistance(t *testing.T) {
	// Fixed clock simulates 10k calls within the same second; the random
	// suffix keeps collisions extremely rare (best-effort, not absolute).
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), nil)
	ctx := context.Background()

	const n = 10_000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		num, err := svc.GenerateNumber(ctx, DocTypeSalesOrder)
		require.NoError(t, err)
		seen[num] = true
	}
	assert.GreaterOrEqual(t, len(seen), n-20, "too many fallback collisions")
}

func TestFallbackRapidCallsDistinct(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), nil)
	ctx := context.Background()

	first, err := svc.GenerateNumber(ctx, DocTypeGoodsReceipt)
	require.NoError(t, err)
	second, err := svc.GenerateNumber(ctx, DocTypeGoodsReceipt)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGenerateNumberPersistenceFailure(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	seqs := newFakeSequenceRepo()
	seqs.err = errors.New("connection refused")
	svc := NewService(rules, seqs, fixedClock(midJanuary), nil)

	_, err := svc.GenerateNumber(context.Background(), DocTypeSalesOrder)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNumberAllocation, appErr.Code)
}

func TestPreviewWithoutRuleReturnsSample(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), nil)

	sample, next, err := svc.PreviewNextNumber(context.Background(), DocTypeStockTransfer)
	require.NoError(t, err)
	assert.Equal(t, sample, next)
	assert.True(t, strings.HasPrefix(sample, "ST"))
}

func TestInactiveRuleUsesFallback(t *testing.T) {
	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily)
	rule.IsActive = false
	svc := NewService(newFakeRuleRepo(rule), newFakeSequenceRepo(), fixedClock(midJanuary), nil)

	num, err := svc.GenerateNumber(context.Background(), DocTypeSalesOrder)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(num, "ORD"), "inactive rule must fall back, got %s", num)
}

func TestCreateRuleRejectsDuplicateType(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	svc := NewService(rules, newFakeSequenceRepo(), fixedClock(midJanuary), nil)

	err := svc.CreateRule(context.Background(), NewRule(DocTypeSalesOrder, "SLS", DateFormatYYYY, 5, ResetYearly))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestRuleChangesAreAudited(t *testing.T) {
	auditor := &fakeAuditor{}
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), auditor)
	ctx := context.Background()

	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily)
	require.NoError(t, svc.CreateRule(ctx, rule))

	prefix := "SLS"
	rule.Prefix = prefix
	require.NoError(t, svc.UpdateRule(ctx, rule))

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))

	require.Len(t, auditor.calls, 3)
	actions := []string{"create", "update", "delete"}
	for i, call := range auditor.calls {
		assert.Equal(t, AuditEntityRule, call.entityType)
		assert.Equal(t, rule.ID, call.entityID)
		assert.Equal(t, actions[i], call.action)
	}
	assert.Equal(t, "SO", auditor.calls[0].changes["prefix"])
	assert.Equal(t, prefix, auditor.calls[1].changes["prefix"])
	assert.Equal(t, DocTypeSalesOrder, auditor.calls[0].changes["document_type"])
}

func TestInitDefaultsAuditsEachCreatedRule(t *testing.T) {
	auditor := &fakeAuditor{}
	svc := NewService(newFakeRuleRepo(), newFakeSequenceRepo(), fixedClock(midJanuary), auditor)

	created, err := svc.InitDefaults(context.Background())
	require.NoError(t, err)
	require.Len(t, auditor.calls, created)
	for _, call := range auditor.calls {
		assert.Equal(t, AuditEntityRule, call.entityType)
		assert.Equal(t, "create", call.action)
	}
}

func TestAuditFailureDoesNotBlockRuleChange(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("audit store unavailable")}
	rules := newFakeRuleRepo()
	svc := NewService(rules, newFakeSequenceRepo(), fixedClock(midJanuary), auditor)
	ctx := context.Background()

	rule := NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily)
	require.NoError(t, svc.CreateRule(ctx, rule))
	require.Len(t, auditor.calls, 1)

	// The rule was persisted despite the audit failure.
	stored, err := svc.GetRule(ctx, DocTypeSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, stored.ID)
}

func TestInitDefaultsSkipsExisting(t *testing.T) {
	rules := newFakeRuleRepo(NewRule(DocTypeSalesOrder, "SO", DateFormatYYYYMMDD, 4, ResetDaily))
	svc := NewService(rules, newFakeSequenceRepo(), fixedClock(midJanuary), nil)
	ctx := context.Background()

	created, err := svc.InitDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DocumentTypes())-1, created)

	// Second run creates nothing.
	created, err = svc.InitDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
}
