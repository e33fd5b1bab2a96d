package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kamesan/internal/core/apperror"
	"kamesan/internal/core/id"
	"kamesan/internal/core/types"
	"kamesan/internal/domain/numbering"
)

type fakeCountRepo struct {
	mu     sync.Mutex
	counts map[id.ID]*StockCount
}

func newFakeCountRepo() *fakeCountRepo {
	return &fakeCountRepo{counts: make(map[id.ID]*StockCount)}
}

func (r *fakeCountRepo) GetByID(ctx context.Context, countID id.ID) (*StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counts[countID]
	if !ok {
		return nil, apperror.NewNotFound("stock count", countID)
	}
	copied := *c
	copied.Items = append([]StockCountItem(nil), c.Items...)
	return &copied, nil
}

func (r *fakeCountRepo) Create(ctx context.Context, count *StockCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *count
	copied.Items = append([]StockCountItem(nil), count.Items...)
	r.counts[count.ID] = &copied
	return nil
}

func (r *fakeCountRepo) Update(ctx context.Context, count *StockCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.counts[count.ID]; !ok {
		return apperror.NewNotFound("stock count", count.ID)
	}
	copied := *count
	copied.Items = append([]StockCountItem(nil), count.Items...)
	r.counts[count.ID] = &copied
	return nil
}

func (r *fakeCountRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StockCount, 0)
	for _, c := range r.counts {
		if c.WarehouseID == warehouseID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCountRepo) LatestCompleted(ctx context.Context, warehouseID id.ID) (*StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *StockCount
	for _, c := range r.counts {
		if c.WarehouseID != warehouseID || c.Status != CountCompleted {
			continue
		}
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	copied.Items = append([]StockCountItem(nil), latest.Items...)
	return &copied, nil
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[id.ID]*StockTransfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[id.ID]*StockTransfer)}
}

func (r *fakeTransferRepo) GetByID(ctx context.Context, transferID id.ID) (*StockTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.transfers[transferID]
	if !ok {
		return nil, apperror.NewNotFound("stock transfer", transferID)
	}
	copied := *tr
	copied.Items = append([]StockTransferItem(nil), tr.Items...)
	return &copied, nil
}

func (r *fakeTransferRepo) Create(ctx context.Context, transfer *StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *transfer
	copied.Items = append([]StockTransferItem(nil), transfer.Items...)
	r.transfers[transfer.ID] = &copied
	return nil
}

func (r *fakeTransferRepo) UpdateStatus(ctx context.Context, transfer *StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transfers[transfer.ID]
	if !ok {
		return apperror.NewNotFound("stock transfer", transfer.ID)
	}
	stored.Status = transfer.Status
	return nil
}

func (r *fakeTransferRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]StockTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StockTransfer, 0)
	for _, tr := range r.transfers {
		if tr.FromWarehouseID == warehouseID || tr.ToWarehouseID == warehouseID {
			out = append(out, *tr)
		}
	}
	return out, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newStockService() *Service {
	return NewService(newFakeCountRepo(), newFakeTransferRepo(),
		&numbering.MockGenerator{}, noopTxManager{})
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestCreateCountAssignsNumber(t *testing.T) {
	svc := newStockService()

	count := NewStockCount(id.New())
	count.AddItem(id.New(), qty(100))
	require.NoError(t, svc.CreateCount(context.Background(), count))

	assert.Equal(t, "SC-000001", count.Number)
	assert.Equal(t, CountDraft, count.Status)
}

func TestCountLifecycleWithVariance(t *testing.T) {
	svc := newStockService()

	count := NewStockCount(id.New())
	count.AddItem(id.New(), qty(100))
	count.AddItem(id.New(), qty(50))
	require.NoError(t, svc.CreateCount(context.Background(), count))

	_, err := svc.StartCount(context.Background(), count.ID)
	require.NoError(t, err)

	// Completing with uncounted lines is rejected
	_, err = svc.CompleteCount(context.Background(), count.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.GetCode(err))

	_, err = svc.RecordCountedQuantity(context.Background(), count.ID, count.Items[0].LineID, qty(97))
	require.NoError(t, err)
	_, err = svc.RecordCountedQuantity(context.Background(), count.ID, count.Items[1].LineID, qty(50))
	require.NoError(t, err)

	completed, err := svc.CompleteCount(context.Background(), count.ID)
	require.NoError(t, err)
	assert.Equal(t, CountCompleted, completed.Status)
	assert.Equal(t, qty(-3), completed.Items[0].Variance())
	assert.Equal(t, qty(0), completed.Items[1].Variance())
}

func TestRecordCountedQuantityRequiresInProgress(t *testing.T) {
	svc := newStockService()

	count := NewStockCount(id.New())
	count.AddItem(id.New(), qty(10))
	require.NoError(t, svc.CreateCount(context.Background(), count))

	_, err := svc.RecordCountedQuantity(context.Background(), count.ID, count.Items[0].LineID, qty(9))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.GetCode(err))
}

func TestCreateTransferAssignsNumber(t *testing.T) {
	svc := newStockService()

	transfer := NewStockTransfer(id.New(), id.New())
	transfer.AddItem(id.New(), qty(5))
	require.NoError(t, svc.CreateTransfer(context.Background(), transfer))

	assert.Equal(t, "ST-000001", transfer.Number)
}

func TestCreateTransferRejectsSameWarehouse(t *testing.T) {
	svc := newStockService()

	warehouse := id.New()
	transfer := NewStockTransfer(warehouse, warehouse)
	transfer.AddItem(id.New(), qty(5))

	err := svc.CreateTransfer(context.Background(), transfer)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestShipTransferChecksCountedStock(t *testing.T) {
	counts := newFakeCountRepo()
	svc := NewService(counts, newFakeTransferRepo(), &numbering.MockGenerator{}, noopTxManager{})
	ctx := context.Background()

	warehouse := id.New()
	product := id.New()

	// Completed count establishes 10 on hand for the product.
	count := NewStockCount(warehouse)
	count.AddItem(product, qty(12))
	require.NoError(t, svc.CreateCount(ctx, count))
	_, err := svc.StartCount(ctx, count.ID)
	require.NoError(t, err)
	_, err = svc.RecordCountedQuantity(ctx, count.ID, count.Items[0].LineID, qty(10))
	require.NoError(t, err)
	_, err = svc.CompleteCount(ctx, count.ID)
	require.NoError(t, err)

	transfer := NewStockTransfer(warehouse, id.New())
	transfer.AddItem(product, qty(25))
	require.NoError(t, svc.CreateTransfer(ctx, transfer))

	_, err = svc.SetTransferStatus(ctx, transfer.ID, TransferInTransit)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.GetCode(err))

	// The transfer stays in draft after the rejected shipment.
	stored, err := svc.GetTransfer(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, TransferDraft, stored.Status)

	// A transfer within the counted quantity ships.
	smaller := NewStockTransfer(warehouse, id.New())
	smaller.AddItem(product, qty(10))
	require.NoError(t, svc.CreateTransfer(ctx, smaller))
	updated, err := svc.SetTransferStatus(ctx, smaller.ID, TransferInTransit)
	require.NoError(t, err)
	assert.Equal(t, TransferInTransit, updated.Status)
}

func TestShipTransferSkipsUncountedProducts(t *testing.T) {
	counts := newFakeCountRepo()
	svc := NewService(counts, newFakeTransferRepo(), &numbering.MockGenerator{}, noopTxManager{})
	ctx := context.Background()

	warehouse := id.New()

	count := NewStockCount(warehouse)
	count.AddItem(id.New(), qty(5))
	require.NoError(t, svc.CreateCount(ctx, count))
	_, err := svc.StartCount(ctx, count.ID)
	require.NoError(t, err)
	_, err = svc.RecordCountedQuantity(ctx, count.ID, count.Items[0].LineID, qty(5))
	require.NoError(t, err)
	_, err = svc.CompleteCount(ctx, count.ID)
	require.NoError(t, err)

	// A product absent from the snapshot has no quantity to verify.
	transfer := NewStockTransfer(warehouse, id.New())
	transfer.AddItem(id.New(), qty(100))
	require.NoError(t, svc.CreateTransfer(ctx, transfer))

	updated, err := svc.SetTransferStatus(ctx, transfer.ID, TransferInTransit)
	require.NoError(t, err)
	assert.Equal(t, TransferInTransit, updated.Status)
}

func TestTransferLifecycle(t *testing.T) {
	svc := newStockService()

	transfer := NewStockTransfer(id.New(), id.New())
	transfer.AddItem(id.New(), qty(5))
	require.NoError(t, svc.CreateTransfer(context.Background(), transfer))

	updated, err := svc.SetTransferStatus(context.Background(), transfer.ID, TransferInTransit)
	require.NoError(t, err)
	assert.Equal(t, TransferInTransit, updated.Status)

	updated, err = svc.SetTransferStatus(context.Background(), transfer.ID, TransferCompleted)
	require.NoError(t, err)
	assert.Equal(t, TransferCompleted, updated.Status)

	_, err = svc.SetTransferStatus(context.Background(), transfer.ID, TransferCancelled)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidStatus, apperror.GetCode(err))
}
