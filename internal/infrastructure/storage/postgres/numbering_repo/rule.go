// Package numbering_repo provides PostgreSQL persistence for numbering
// rules and sequence counters.
package numbering_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/infrastructure/storage/postgres"
)

const ruleTable = "numbering_rules"

// RuleRepo implements numbering.RuleRepository.
type RuleRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// Ensure compile-time interface compliance.
var _ numbering.RuleRepository = (*RuleRepo)(nil)

// NewRuleRepo creates a rule repository.
func NewRuleRepo(txm *postgres.TxManager) *RuleRepo {
	return &RuleRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[numbering.Rule](),
	}
}

func (r *RuleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *RuleRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(ruleTable)
}

// GetActive returns the active rule for a document type.
func (r *RuleRepo) GetActive(ctx context.Context, docType numbering.DocumentType) (*numbering.Rule, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"document_type": docType}).
		Where(squirrel.Eq{"is_active": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rule := &numbering.Rule{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, rule, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("numbering rule", string(docType))
		}
		return nil, fmt.Errorf("get active rule: %w", err)
	}

	return rule, nil
}

// GetByID returns a rule by primary key.
func (r *RuleRepo) GetByID(ctx context.Context, ruleID id.ID) (*numbering.Rule, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": ruleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rule := &numbering.Rule{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, rule, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("numbering rule", ruleID.String())
		}
		return nil, fmt.Errorf("get rule by id: %w", err)
	}

	return rule, nil
}

// Create inserts a new rule.
func (r *RuleRepo) Create(ctx context.Context, rule *numbering.Rule) error {
	data := postgres.StructToMap(rule)

	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().Insert(ruleTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", ruleTable, err)
	}

	return nil
}

// Update modifies an existing rule.
func (r *RuleRepo) Update(ctx context.Context, rule *numbering.Rule) error {
	data := postgres.StructToMap(rule)

	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if col == "id" || col == "created_at" || col == "created_by" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder().
		Update(ruleTable).
		SetMap(filtered).
		Where(squirrel.Eq{"id": rule.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", ruleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("numbering rule", rule.ID.String())
	}

	return nil
}

// Delete removes a rule. Sequence rows for the type are intentionally
// left in place.
func (r *RuleRepo) Delete(ctx context.Context, ruleID id.ID) error {
	q := r.builder().
		Delete(ruleTable).
		Where(squirrel.Eq{"id": ruleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", ruleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("numbering rule", ruleID.String())
	}

	return nil
}

// List returns rules matching the filter plus the total count.
func (r *RuleRepo) List(ctx context.Context, filter numbering.RuleFilter) ([]*numbering.Rule, int64, error) {
	q := r.baseSelect()

	if filter.DocumentType != nil {
		q = q.Where(squirrel.Eq{"document_type": *filter.DocumentType})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rules: %w", err)
	}

	q = q.OrderBy("document_type")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rules []*numbering.Rule
	if err := pgxscan.Select(ctx, querier, &rules, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list rules: %w", err)
	}

	return rules, total, nil
}

// ExistsForType reports whether any rule exists for the type.
func (r *RuleRepo) ExistsForType(ctx context.Context, docType numbering.DocumentType) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM numbering_rules WHERE document_type = $1)`

	querier := r.txm.GetQuerier(ctx)
	var exists bool
	if err := querier.QueryRow(ctx, sql, docType).Scan(&exists); err != nil {
		return false, fmt.Errorf("check rule exists: %w", err)
	}

	return exists, nil
}
