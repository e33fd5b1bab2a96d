package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/orders"
	"kamesan/internal/infrastructure/storage/postgres"
)

const returnTable = "sales_returns"

// ReturnRepo implements orders.ReturnRepository.
type ReturnRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// Ensure compile-time interface compliance.
var _ orders.ReturnRepository = (*ReturnRepo)(nil)

// NewReturnRepo creates a sales return repository.
func NewReturnRepo(txm *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[orders.SalesReturn](),
	}
}

func (r *ReturnRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID returns a sales return by primary key.
func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*orders.SalesReturn, error) {
	q := r.builder().Select(r.cols...).From(returnTable).
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	ret := &orders.SalesReturn{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, ret, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sales return", returnID.String())
		}
		return nil, fmt.Errorf("get sales return: %w", err)
	}

	return ret, nil
}

// Create inserts a new sales return.
func (r *ReturnRepo) Create(ctx context.Context, ret *orders.SalesReturn) error {
	data := postgres.StructToMap(ret)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(returnTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", returnTable, err)
	}

	return nil
}

// UpdateStatus persists a status change.
func (r *ReturnRepo) UpdateStatus(ctx context.Context, ret *orders.SalesReturn) error {
	q := r.builder().
		Update(returnTable).
		Set("status", ret.Status).
		Set("updated_at", ret.UpdatedAt).
		Set("updated_by", ret.UpdatedBy).
		Where(squirrel.Eq{"id": ret.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", returnTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sales return", ret.ID.String())
	}

	return nil
}

// ListByOrder returns all returns filed against an order.
func (r *ReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]orders.SalesReturn, error) {
	q := r.builder().Select(r.cols...).From(returnTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []orders.SalesReturn
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales returns: %w", err)
	}

	return result, nil
}
