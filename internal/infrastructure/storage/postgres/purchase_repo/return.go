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

const purchaseReturnTable = "purchase_returns"

// ReturnRepo implements purchases.ReturnRepository.
type ReturnRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// Ensure compile-time interface compliance.
var _ purchases.ReturnRepository = (*ReturnRepo)(nil)

// NewReturnRepo creates a purchase return repository.
func NewReturnRepo(txm *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[purchases.PurchaseReturn](),
	}
}

func (r *ReturnRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetByID returns a purchase return by primary key.
func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*purchases.PurchaseReturn, error) {
	q := r.builder().Select(r.cols...).From(purchaseReturnTable).
		Where(squirrel.Eq{"id": returnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	ret := &purchases.PurchaseReturn{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, ret, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase return", returnID.String())
		}
		return nil, fmt.Errorf("get purchase return: %w", err)
	}

	return ret, nil
}

// Create inserts a new purchase return.
func (r *ReturnRepo) Create(ctx context.Context, ret *purchases.PurchaseReturn) error {
	data := postgres.StructToMap(ret)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(purchaseReturnTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", purchaseReturnTable, err)
	}

	return nil
}

// ListBySupplier returns purchase returns for a supplier, newest first.
func (r *ReturnRepo) ListBySupplier(ctx context.Context, supplierID id.ID) ([]purchases.PurchaseReturn, error) {
	q := r.builder().Select(r.cols...).From(purchaseReturnTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []purchases.PurchaseReturn
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchase returns: %w", err)
	}

	return result, nil
}
