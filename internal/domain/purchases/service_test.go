package purchases

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

type fakePurchaseOrderRepo struct {
	mu        sync.Mutex
	orders    map[id.ID]*PurchaseOrder
	failAfter int // fail Create after this many successes, 0 disables
	creates   int
}

func newFakePurchaseOrderRepo() *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{orders: make(map[id.ID]*PurchaseOrder)}
}

func (r *fakePurchaseOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", orderID)
	}
	copied := *o
	copied.Items = append([]PurchaseOrderItem(nil), o.Items...)
	return &copied, nil
}

func (r *fakePurchaseOrderRepo) Create(ctx context.Context, order *PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter > 0 && r.creates >= r.failAfter {
		return apperror.NewInternal(assert.AnError)
	}
	r.creates++
	copied := *order
	copied.Items = append([]PurchaseOrderItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakePurchaseOrderRepo) Update(ctx context.Context, order *PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return apperror.NewNotFound("purchase order", order.ID)
	}
	copied := *order
	copied.Items = append([]PurchaseOrderItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakePurchaseOrderRepo) List(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PurchaseOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.SupplierID != nil && o.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[id.ID]*GoodsReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[id.ID]*GoodsReceipt)}
}

func (r *fakeReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*GoodsReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gr, ok := r.receipts[receiptID]
	if !ok {
		return nil, apperror.NewNotFound("goods receipt", receiptID)
	}
	copied := *gr
	return &copied, nil
}

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *GoodsReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *receipt
	r.receipts[receipt.ID] = &copied
	return nil
}

func (r *fakeReceiptRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]GoodsReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GoodsReceipt, 0)
	for _, gr := range r.receipts {
		if gr.PurchaseOrderID == orderID {
			out = append(out, *gr)
		}
	}
	return out, nil
}

type fakePurchaseReturnRepo struct {
	mu      sync.Mutex
	returns map[id.ID]*PurchaseReturn
}

func newFakePurchaseReturnRepo() *fakePurchaseReturnRepo {
	return &fakePurchaseReturnRepo{returns: make(map[id.ID]*PurchaseReturn)}
}

func (r *fakePurchaseReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.returns[returnID]
	if !ok {
		return nil, apperror.NewNotFound("purchase return", returnID)
	}
	copied := *ret
	return &copied, nil
}

func (r *fakePurchaseReturnRepo) Create(ctx context.Context, ret *PurchaseReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ret
	r.returns[ret.ID] = &copied
	return nil
}

func (r *fakePurchaseReturnRepo) ListBySupplier(ctx context.Context, supplierID id.ID) ([]PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PurchaseReturn, 0)
	for _, ret := range r.returns {
		if ret.SupplierID == supplierID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newPurchaseService(orders *fakePurchaseOrderRepo) *Service {
	return NewService(orders, newFakeReceiptRepo(), newFakePurchaseReturnRepo(),
		&numbering.MockGenerator{}, noopTxManager{})
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestCreatePurchaseOrderAssignsNumber(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	order := NewPurchaseOrder(id.New())
	order.AddItem(id.New(), qty(10), types.MustMoney("5.50"))

	require.NoError(t, svc.CreateOrder(context.Background(), order))
	assert.Equal(t, "PO-000001", order.Number)
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("55.00")))
}

func TestConvertSuggestionsGroupsBySupplier(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	supplierA := id.New()
	supplierB := id.New()
	lines := []SuggestionLine{
		{SupplierID: supplierA, ProductID: id.New(), Quantity: qty(10), UnitCost: types.MustMoney("2.00")},
		{SupplierID: supplierB, ProductID: id.New(), Quantity: qty(5), UnitCost: types.MustMoney("3.00")},
		{SupplierID: supplierA, ProductID: id.New(), Quantity: qty(4), UnitCost: types.MustMoney("1.25")},
	}

	created, err := svc.ConvertSuggestions(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, created, 2)

	// First-seen supplier order is preserved
	assert.Equal(t, supplierA, created[0].SupplierID)
	assert.Equal(t, supplierB, created[1].SupplierID)
	assert.Len(t, created[0].Items, 2)
	assert.Len(t, created[1].Items, 1)
	assert.True(t, created[0].TotalAmount.Equal(types.MustMoney("25.00")))

	// Every order in the batch gets a distinct number
	assert.Equal(t, "PO-000001", created[0].Number)
	assert.Equal(t, "PO-000002", created[1].Number)
}

func TestConvertSuggestionsDistinctNumbersLargeBatch(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	lines := make([]SuggestionLine, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, SuggestionLine{
			SupplierID: id.New(),
			ProductID:  id.New(),
			Quantity:   qty(1),
			UnitCost:   types.MustMoney("1.00"),
		})
	}

	created, err := svc.ConvertSuggestions(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, created, 50)

	numbers := make(map[string]struct{}, len(created))
	for _, order := range created {
		numbers[order.Number] = struct{}{}
	}
	assert.Len(t, numbers, 50)
}

func TestConvertSuggestionsFailurePropagates(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	repo.failAfter = 1
	svc := newPurchaseService(repo)

	lines := []SuggestionLine{
		{SupplierID: id.New(), ProductID: id.New(), Quantity: qty(1), UnitCost: types.MustMoney("1.00")},
		{SupplierID: id.New(), ProductID: id.New(), Quantity: qty(1), UnitCost: types.MustMoney("1.00")},
	}

	created, err := svc.ConvertSuggestions(context.Background(), lines)
	require.Error(t, err)
	assert.Nil(t, created)
}

func TestConvertSuggestionsRejectsEmptyInput(t *testing.T) {
	svc := newPurchaseService(newFakePurchaseOrderRepo())

	_, err := svc.ConvertSuggestions(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestReceiveGoodsPartialThenFull(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	order := NewPurchaseOrder(id.New())
	order.AddItem(id.New(), qty(10), types.MustMoney("2.00"))
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	_, err := svc.SetOrderStatus(context.Background(), order.ID, PurchaseSubmitted)
	require.NoError(t, err)

	lineID := order.Items[0].LineID

	receipt, err := svc.ReceiveGoods(context.Background(), order.ID,
		[]ReceiptLine{{OrderLineID: lineID, Quantity: qty(4)}})
	require.NoError(t, err)
	assert.Equal(t, "GR-000001", receipt.Number)

	reloaded, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PurchasePartiallyReceived, reloaded.Status)
	assert.Equal(t, qty(4), reloaded.Items[0].ReceivedQty)

	receipt, err = svc.ReceiveGoods(context.Background(), order.ID,
		[]ReceiptLine{{OrderLineID: lineID, Quantity: qty(6)}})
	require.NoError(t, err)
	assert.Equal(t, "GR-000002", receipt.Number)

	reloaded, err = svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PurchaseReceived, reloaded.Status)
}

func TestReceiveGoodsRejectsOverReceipt(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	order := NewPurchaseOrder(id.New())
	order.AddItem(id.New(), qty(3), types.MustMoney("2.00"))
	require.NoError(t, svc.CreateOrder(context.Background(), order))
	_, err := svc.SetOrderStatus(context.Background(), order.ID, PurchaseSubmitted)
	require.NoError(t, err)

	_, err = svc.ReceiveGoods(context.Background(), order.ID,
		[]ReceiptLine{{OrderLineID: order.Items[0].LineID, Quantity: qty(5)}})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.GetCode(err))
}

func TestReceiveGoodsRejectsDraftOrder(t *testing.T) {
	repo := newFakePurchaseOrderRepo()
	svc := newPurchaseService(repo)

	order := NewPurchaseOrder(id.New())
	order.AddItem(id.New(), qty(3), types.MustMoney("2.00"))
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	_, err := svc.ReceiveGoods(context.Background(), order.ID,
		[]ReceiptLine{{OrderLineID: order.Items[0].LineID, Quantity: qty(1)}})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.GetCode(err))
}

func TestCreatePurchaseReturn(t *testing.T) {
	svc := newPurchaseService(newFakePurchaseOrderRepo())

	ret := NewPurchaseReturn(id.New(), "damaged in transit", types.MustMoney("30.00"))
	require.NoError(t, svc.CreateReturn(context.Background(), ret))
	assert.Equal(t, "PR-000001", ret.Number)
}
