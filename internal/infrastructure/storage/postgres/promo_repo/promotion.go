// Package promo_repo provides PostgreSQL persistence for promotions.
package promo_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/promotions"
	"kamesan/internal/infrastructure/storage/postgres"
)

const promoTable = "promotions"

// PromoRepo implements promotions.Repository.
type PromoRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// Ensure compile-time interface compliance.
var _ promotions.Repository = (*PromoRepo)(nil)

// NewPromoRepo creates a promotions repository.
func NewPromoRepo(txm *postgres.TxManager) *PromoRepo {
	return &PromoRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[promotions.Promotion](),
	}
}

func (r *PromoRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID returns a promotion by primary key.
func (r *PromoRepo) GetByID(ctx context.Context, promoID id.ID) (*promotions.Promotion, error) {
	return r.getOne(ctx, squirrel.Eq{"id": promoID}, promoID.String())
}

// GetByCode returns a promotion by its unique code.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*promotions.Promotion, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *PromoRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*promotions.Promotion, error) {
	q := r.builder().Select(r.cols...).From(promoTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	promo := &promotions.Promotion{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, promo, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("promotion", key)
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}

	return promo, nil
}

// ListActive returns active promotions whose window contains at.
func (r *PromoRepo) ListActive(ctx context.Context, at time.Time) ([]promotions.Promotion, error) {
	q := r.builder().Select(r.cols...).From(promoTable).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"starts_at": nil},
			squirrel.LtOrEq{"starts_at": at},
		}).
		Where(squirrel.Or{
			squirrel.Eq{"ends_at": nil},
			squirrel.GtOrEq{"ends_at": at},
		}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []promotions.Promotion
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}

	return result, nil
}

// List returns all promotions.
func (r *PromoRepo) List(ctx context.Context) ([]promotions.Promotion, error) {
	q := r.builder().Select(r.cols...).From(promoTable).OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []promotions.Promotion
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	return result, nil
}

// Create inserts a new promotion.
func (r *PromoRepo) Create(ctx context.Context, promo *promotions.Promotion) error {
	data := postgres.StructToMap(promo)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(promoTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", promoTable, err)
	}

	return nil
}

// Update modifies an existing promotion.
func (r *PromoRepo) Update(ctx context.Context, promo *promotions.Promotion) error {
	data := postgres.StructToMap(promo)
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
		Update(promoTable).
		SetMap(filtered).
		Where(squirrel.Eq{"id": promo.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", promoTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("promotion", promo.ID.String())
	}

	return nil
}

// Delete removes a promotion.
func (r *PromoRepo) Delete(ctx context.Context, promoID id.ID) error {
	q := r.builder().Delete(promoTable).Where(squirrel.Eq{"id": promoID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", promoTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("promotion", promoID.String())
	}

	return nil
}

// ExistsByCode reports whether a promotion with the code exists.
func (r *PromoRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	sql := `SELECT EXISTS (SELECT 1 FROM promotions WHERE code = $1)`

	querier := r.txm.GetQuerier(ctx)
	var exists bool
	if err := querier.QueryRow(ctx, sql, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check promotion exists: %w", err)
	}

	return exists, nil
}
