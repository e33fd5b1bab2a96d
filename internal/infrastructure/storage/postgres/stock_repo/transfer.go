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
	transferTable     = "stock_transfers"
	transferItemTable = "stock_transfer_items"
)

// TransferRepo implements stock.TransferRepository.
type TransferRepo struct {
	txm      *postgres.TxManager
	cols     []string
	itemCols []string
}

// Ensure compile-time interface compliance.
var _ stock.TransferRepository = (*TransferRepo)(nil)

// NewTransferRepo creates a stock transfer repository.
func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[stock.StockTransfer](),
		itemCols: postgres.ExtractDBColumns[stock.StockTransferItem](),
	}
}

func (r *TransferRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID loads a transfer with its items.
func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*stock.StockTransfer, error) {
	q := r.builder().Select(r.cols...).From(transferTable).
		Where(squirrel.Eq{"id": transferID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	transfer := &stock.StockTransfer{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, transfer, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock transfer", transferID.String())
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}

	itemsQ := r.builder().Select(r.itemCols...).From(transferItemTable).
		Where(squirrel.Eq{"transfer_id": transferID})

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []stock.StockTransferItem
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load stock transfer items: %w", err)
	}
	transfer.Items = items

	return transfer, nil
}

// Create inserts the transfer header and all items.
func (r *TransferRepo) Create(ctx context.Context, transfer *stock.StockTransfer) error {
	data := postgres.StructToMap(transfer)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(transferTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", transferTable, err)
	}

	if len(transfer.Items) > 0 {
		q := r.builder().Insert(transferItemTable).Columns(r.itemCols...)
		for _, item := range transfer.Items {
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
			return fmt.Errorf("insert %s: %w", transferItemTable, err)
		}
	}

	return nil
}

// UpdateStatus persists a status change.
func (r *TransferRepo) UpdateStatus(ctx context.Context, transfer *stock.StockTransfer) error {
	q := r.builder().
		Update(transferTable).
		Set("status", transfer.Status).
		Set("updated_at", transfer.UpdatedAt).
		Set("updated_by", transfer.UpdatedBy).
		Where(squirrel.Eq{"id": transfer.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", transferTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock transfer", transfer.ID.String())
	}

	return nil
}

// ListByWarehouse returns transfers where the warehouse is source or
// destination, newest first.
func (r *TransferRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]stock.StockTransfer, error) {
	q := r.builder().Select(r.cols...).From(transferTable).
		Where(squirrel.Or{
			squirrel.Eq{"from_warehouse_id": warehouseID},
			squirrel.Eq{"to_warehouse_id": warehouseID},
		}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []stock.StockTransfer
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}

	return result, nil
}
