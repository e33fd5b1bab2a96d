// Package purchase_repo provides PostgreSQL persistence for purchase
// orders, goods receipts and purchase returns.
package purchase_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/domain/purchases"
	"kamesan/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrderTable     = "purchase_orders"
	purchaseOrderItemTable = "purchase_order_items"
)

// OrderRepo implements purchases.OrderRepository.
type OrderRepo struct {
	txm      *postgres.TxManager
	cols     []string
	itemCols []string
}

// Ensure compile-time interface compliance.
var _ purchases.OrderRepository = (*OrderRepo)(nil)

// NewOrderRepo creates a purchase order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[purchases.PurchaseOrder](),
		itemCols: postgres.ExtractDBColumns[purchases.PurchaseOrderItem](),
	}
}

func (r *OrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID loads a purchase order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*purchases.PurchaseOrder, error) {
	q := r.builder().Select(r.cols...).From(purchaseOrderTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	order := &purchases.PurchaseOrder{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", orderID.String())
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	itemsQ := r.builder().Select(r.itemCols...).From(purchaseOrderItemTable).
		Where(squirrel.Eq{"purchase_order_id": orderID}).
		OrderBy("line_no")

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchases.PurchaseOrderItem
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	order.Items = items

	return order, nil
}

// Create inserts the order header and all items.
func (r *OrderRepo) Create(ctx context.Context, order *purchases.PurchaseOrder) error {
	data := postgres.StructToMap(order)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(purchaseOrderTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", purchaseOrderTable, err)
	}

	return r.insertItems(ctx, order.Items)
}

// Update persists the header and replaces item rows so received
// quantities stay in sync.
func (r *OrderRepo) Update(ctx context.Context, order *purchases.PurchaseOrder) error {
	data := postgres.StructToMap(order)
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
		Update(purchaseOrderTable).
		SetMap(filtered).
		Where(squirrel.Eq{"id": order.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", purchaseOrderTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", order.ID.String())
	}

	if len(order.Items) > 0 {
		del := r.builder().Delete(purchaseOrderItemTable).
			Where(squirrel.Eq{"purchase_order_id": order.ID})
		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build items delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete %s: %w", purchaseOrderItemTable, err)
		}
		return r.insertItems(ctx, order.Items)
	}

	return nil
}

func (r *OrderRepo) insertItems(ctx context.Context, items []purchases.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder().Insert(purchaseOrderItemTable).Columns(r.itemCols...)
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
		return fmt.Errorf("insert %s: %w", purchaseOrderItemTable, err)
	}

	return nil
}

// List returns purchase orders matching the filter with total count.
func (r *OrderRepo) List(ctx context.Context, filter purchases.PurchaseOrderFilter) ([]purchases.PurchaseOrder, int, error) {
	q := r.builder().Select(r.cols...).From(purchaseOrderTable)

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var result []purchases.PurchaseOrder
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}

	return result, total, nil
}
