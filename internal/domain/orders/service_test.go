package orders

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

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[id.ID]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[id.ID]*Order)}
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("order", number)
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return apperror.NewNotFound("order", order.ID)
	}
	stored.Status = order.Status
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter OrderFilter) ([]Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

type fakeReturnRepo struct {
	mu      sync.Mutex
	returns map[id.ID]*SalesReturn
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{returns: make(map[id.ID]*SalesReturn)}
}

func (r *fakeReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*SalesReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.returns[returnID]
	if !ok {
		return nil, apperror.NewNotFound("sales return", returnID)
	}
	copied := *ret
	return &copied, nil
}

func (r *fakeReturnRepo) Create(ctx context.Context, ret *SalesReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ret
	r.returns[ret.ID] = &copied
	return nil
}

func (r *fakeReturnRepo) UpdateStatus(ctx context.Context, ret *SalesReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.returns[ret.ID]
	if !ok {
		return apperror.NewNotFound("sales return", ret.ID)
	}
	stored.Status = ret.Status
	return nil
}

func (r *fakeReturnRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]SalesReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SalesReturn, 0)
	for _, ret := range r.returns {
		if ret.OrderID == orderID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

// noopTxManager runs the function without a real transaction.
type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedDiscount struct {
	amount types.Money
	code   string
	err    error
}

func (d fixedDiscount) BestDiscount(ctx context.Context, order *Order) (types.Money, string, error) {
	return d.amount, d.code, d.err
}

func newTestOrder() *Order {
	order := NewOrder(PaymentCash)
	order.AddItem(id.New(), types.NewQuantityFromFloat64(2), types.MustMoney("100.00"))
	order.AddItem(id.New(), types.NewQuantityFromFloat64(1), types.MustMoney("49.90"))
	return order
}

func TestCreateOrderAssignsNumber(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewService(repo, newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	assert.Equal(t, "ORD-000001", order.Number)
	assert.Equal(t, OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("249.90")))

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Number, stored.Number)
}

func TestCreateOrderKeepsExplicitNumber(t *testing.T) {
	svc := NewService(newFakeOrderRepo(), newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := newTestOrder()
	order.Number = "SO202501150042"
	require.NoError(t, svc.CreateOrder(context.Background(), order))
	assert.Equal(t, "SO202501150042", order.Number)
}

func TestCreateOrderAppliesBestDiscount(t *testing.T) {
	discounts := fixedDiscount{amount: types.MustMoney("25.00"), code: "SUMMER10"}
	svc := NewService(newFakeOrderRepo(), newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, discounts)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	assert.Equal(t, "SUMMER10", order.PromotionCode)
	assert.True(t, order.DiscountAmount.Equal(types.MustMoney("25.00")))
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("224.90")))
}

func TestCreateOrderSurvivesDiscountFailure(t *testing.T) {
	discounts := fixedDiscount{err: assert.AnError}
	svc := NewService(newFakeOrderRepo(), newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, discounts)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	assert.Empty(t, order.PromotionCode)
	assert.True(t, order.TotalAmount.Equal(types.MustMoney("249.90")))
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc := NewService(newFakeOrderRepo(), newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := NewOrder(PaymentCard)
	err := svc.CreateOrder(context.Background(), order)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
}

func TestOrderStatusLifecycle(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewService(repo, newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	updated, err := svc.SetOrderStatus(context.Background(), order.ID, OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, OrderPaid, updated.Status)

	updated, err = svc.SetOrderStatus(context.Background(), order.ID, OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, OrderCompleted, updated.Status)

	// Completed is terminal
	_, err = svc.SetOrderStatus(context.Background(), order.ID, OrderCancelled)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidStatus, apperror.GetCode(err))
}

func TestCreateReturnForPaidOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewService(repo, newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))
	_, err := svc.SetOrderStatus(context.Background(), order.ID, OrderPaid)
	require.NoError(t, err)

	ret := NewSalesReturn(order.ID, ReasonDefective, types.MustMoney("100.00"))
	require.NoError(t, svc.CreateReturn(context.Background(), ret))

	assert.Equal(t, "RTN-000001", ret.Number)
	assert.Equal(t, ReturnPending, ret.Status)

	listed, err := svc.ListReturns(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCreateReturnRejectedForPendingOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewService(repo, newFakeReturnRepo(), &numbering.MockGenerator{}, noopTxManager{}, nil)

	order := newTestOrder()
	require.NoError(t, svc.CreateOrder(context.Background(), order))

	ret := NewSalesReturn(order.ID, ReasonWrongItem, types.MustMoney("49.90"))
	err := svc.CreateReturn(context.Background(), ret)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.GetCode(err))
}
