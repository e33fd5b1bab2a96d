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
	receiptTable     = "goods_receipts"
	receiptItemTable = "goods_receipt_items"
)

// ReceiptRepo implements purchases.ReceiptRepository.
type ReceiptRepo struct {
	txm      *postgres.TxManager
	cols     []string
	itemCols []string
}

// Ensure compile-time interface compliance.
var _ purchases.ReceiptRepository = (*ReceiptRepo)(nil)

// NewReceiptRepo creates a goods receipt repository.
func NewReceiptRepo(txm *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[purchases.GoodsReceipt](),
		itemCols: postgres.ExtractDBColumns[purchases.GoodsReceiptItem](),
	}
}

func (r *ReceiptRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID loads a receipt with its items.
func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*purchases.GoodsReceipt, error) {
	q := r.builder().Select(r.cols...).From(receiptTable).
		Where(squirrel.Eq{"id": receiptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	receipt := &purchases.GoodsReceipt{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, receipt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("goods receipt", receiptID.String())
		}
		return nil, fmt.Errorf("get goods receipt: %w", err)
	}

	itemsQ := r.builder().Select(r.itemCols...).From(receiptItemTable).
		Where(squirrel.Eq{"goods_receipt_id": receiptID})

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchases.GoodsReceiptItem
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load goods receipt items: %w", err)
	}
	receipt.Items = items

	return receipt, nil
}

// Create inserts the receipt header and all items.
func (r *ReceiptRepo) Create(ctx context.Context, receipt *purchases.GoodsReceipt) error {
	data := postgres.StructToMap(receipt)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(receiptTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", receiptTable, err)
	}

	if len(receipt.Items) > 0 {
		q := r.builder().Insert(receiptItemTable).Columns(r.itemCols...)
		for _, item := range receipt.Items {
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
			return fmt.Errorf("insert %s: %w", receiptItemTable, err)
		}
	}

	return nil
}

// ListByOrder returns receipts for a purchase order, newest first.
func (r *ReceiptRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]purchases.GoodsReceipt, error) {
	q := r.builder().Select(r.cols...).From(receiptTable).
		Where(squirrel.Eq{"purchase_order_id": orderID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []purchases.GoodsReceipt
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list goods receipts: %w", err)
	}

	return result, nil
}
