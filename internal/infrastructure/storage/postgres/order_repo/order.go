// Package order_repo provides PostgreSQL persistence for sales orders and
// sales returns.
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

const (
	orderTable     = "sales_orders"
	orderItemTable = "sales_order_items"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txm      *postgres.TxManager
	cols     []string
	itemCols []string
}

// Ensure compile-time interface compliance.
var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a sales order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[orders.Order](),
		itemCols: postgres.ExtractDBColumns[orders.OrderItem](),
	}
}

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID loads an order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"id": orderID}, orderID.String())
}

// GetByNumber loads an order by document number.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"number": number}, number)
}

func (r *OrderRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*orders.Order, error) {
	q := r.builder().Select(r.cols...).From(orderTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	order := &orders.Order{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", key)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orderID id.ID) ([]orders.OrderItem, error) {
	q := r.builder().Select(r.itemCols...).From(orderItemTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []orders.OrderItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return items, nil
}

// Create inserts the order header and all items.
func (r *OrderRepo) Create(ctx context.Context, order *orders.Order) error {
	data := postgres.StructToMap(order)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(orderTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", orderTable, err)
	}

	if len(order.Items) > 0 {
		q := r.builder().Insert(orderItemTable).Columns(r.itemCols...)
		for _, item := range order.Items {
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
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert %s: %w", orderItemTable, err)
		}
	}

	return nil
}

// UpdateStatus persists status, attribution and timestamp changes.
func (r *OrderRepo) UpdateStatus(ctx context.Context, order *orders.Order) error {
	q := r.builder().
		Update(orderTable).
		Set("status", order.Status).
		Set("updated_at", order.UpdatedAt).
		Set("updated_by", order.UpdatedBy).
		Where(squirrel.Eq{"id": order.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", orderTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", order.ID.String())
	}

	return nil
}

// List returns orders matching the filter, newest first, with total count.
// Items are not loaded for list views.
func (r *OrderRepo) List(ctx context.Context, filter orders.OrderFilter) ([]orders.Order, int, error) {
	q := r.builder().Select(r.cols...).From(orderTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.PaymentMethod != nil {
		q = q.Where(squirrel.Eq{"payment_method": *filter.PaymentMethod})
	}
	if filter.NumberLike != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.NumberLike + "%"})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var result []orders.Order
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return result, total, nil
}
