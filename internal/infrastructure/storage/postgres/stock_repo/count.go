// Package stock_repo provides PostgreSQL persistence for stock counts and
// stock transfers.
package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/stock"
	"kamesan/internal/infrastructure/storage/postgres"
)

const (
	countTable     = "stock_counts"
	countItemTable = "stock_count_items"
)

// CountRepo implements stock.CountRepository.
type CountRepo struct {
	txm      *postgres.TxManager
	cols     []string
	itemCols []string
}

// Ensure compile-time interface compliance.
var _ stock.CountRepository = (*CountRepo)(nil)

// NewCountRepo creates a stock count repository.
func NewCountRepo(txm *postgres.TxManager) *CountRepo {
	return &CountRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[stock.StockCount](),
		itemCols: postgres.ExtractDBColumns[stock.StockCountItem](),
	}
}

func (r *CountRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID loads a count with its items.
func (r *CountRepo) GetByID(ctx context.Context, countID id.ID) (*stock.StockCount, error) {
	q := r.builder().Select(r.cols...).From(countTable).
		Where(squirrel.Eq{"id": countID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	count := &stock.StockCount{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, count, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock count", countID.String())
		}
		return nil, fmt.Errorf("get stock count: %w", err)
	}

	if err := r.loadItems(ctx, count); err != nil {
		return nil, err
	}

	return count, nil
}

func (r *CountRepo) loadItems(ctx context.Context, count *stock.StockCount) error {
	q := r.builder().Select(r.itemCols...).From(countItemTable).
		Where(squirrel.Eq{"count_id": count.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	var items []stock.StockCountItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return fmt.Errorf("load stock count items: %w", err)
	}
	count.Items = items

	return nil
}

// Create inserts the count header and all items.
func (r *CountRepo) Create(ctx context.Context, count *stock.StockCount) error {
	data := postgres.StructToMap(count)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(countTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", countTable, err)
	}

	return r.insertItems(ctx, count.Items)
}

// Update persists the header and replaces item rows so counted quantities
// stay in sync.
func (r *CountRepo) Update(ctx context.Context, count *stock.StockCount) error {
	data := postgres.StructToMap(count)
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
		Update(countTable).
		SetMap(filtered).
		Where(squirrel.Eq{"id": count.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", countTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock count", count.ID.String())
	}

	if len(count.Items) > 0 {
		del := r.builder().Delete(countItemTable).
			Where(squirrel.Eq{"count_id": count.ID})
		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build items delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete %s: %w", countItemTable, err)
		}
		return r.insertItems(ctx, count.Items)
	}

	return nil
}

func (r *CountRepo) insertItems(ctx context.Context, items []stock.StockCountItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder().Insert(countItemTable).Columns(r.itemCols...)
	for _, item := range items {
		itemData := postgres.StructToMap(&item)
		row := make([]any, 0, len(r.itemCols))
		for _, col := range r.itemCols {
			row = append(row, itemData[col])
		}
		q = q.Values(row...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", countItemTable, err)
	}

	return nil
}

// LatestCompleted returns the most recent completed count for a warehouse
// with its items. Returns nil without error when none exists.
func (r *CountRepo) LatestCompleted(ctx context.Context, warehouseID id.ID) (*stock.StockCount, error) {
	q := r.builder().Select(r.cols...).From(countTable).
		Where(squirrel.Eq{
			"warehouse_id": warehouseID,
			"status":       stock.CountCompleted,
		}).
		OrderBy("updated_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	count := &stock.StockCount{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, count, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest completed count: %w", err)
	}

	if err := r.loadItems(ctx, count); err != nil {
		return nil, err
	}

	return count, nil
}

// ListByWarehouse returns counts for a warehouse, newest first.
func (r *CountRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]stock.StockCount, error) {
	q := r.builder().Select(r.cols...).From(countTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []stock.StockCount
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock counts: %w", err)
	}

	return result, nil
}
