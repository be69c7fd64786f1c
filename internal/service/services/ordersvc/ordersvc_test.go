package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/ideliveryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/jersey-shop/internal/dal/memory"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func withUnitOfWork(fn func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = fn
	}
}

type fixture struct {
	store    *memory.Store
	svc      *OrderService
	userID   int64
	products []int64
}

// newFixture seeds one user and one product per stock value.
func newFixture(t *testing.T, stock ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	work := store.NewUnitOfWork()

	u, err := work.UserRepository().Insert(ctx, user.User{Email: "client@exemple.fr", Role: user.RoleUser})
	require.NoError(t, err)
	c, err := work.CategoryRepository().Insert(ctx, category.Category{Name: "Maillots"})
	require.NoError(t, err)
	tm, err := work.TeamRepository().Insert(ctx, team.Team{Name: "OM", Color: "#2FAEE0"})
	require.NoError(t, err)
	b, err := work.BrandRepository().Insert(ctx, brand.Brand{Name: "Puma"})
	require.NoError(t, err)

	f := &fixture{store: store, userID: u.ID}
	for _, q := range stock {
		p, err := work.ProductRepository().Insert(ctx, product.Product{
			Name:       "Maillot",
			CategoryID: c.ID,
			TeamID:     tm.ID,
			BrandID:    b.ID,
			Variation:  product.VariationHome,
			Price:      decimal.NewFromInt(80),
			Quantity:   q,
		})
		require.NoError(t, err)
		f.products = append(f.products, p.ID)
	}

	f.svc = MustNewOrderService(withUnitOfWork(func() unitOfWork {
		return store.NewUnitOfWork()
	}))

	return f
}

func (f *fixture) withUOW(fn func() unitOfWork, opts ...option) {
	f.svc = MustNewOrderService(append(opts, withUnitOfWork(fn))...)
}

func items(pairs ...int64) ParsedOrder {
	var li []lineitem.LineItem
	for i := 0; i < len(pairs); i += 2 {
		li = append(li, lineitem.LineItem{
			ProductID: pairs[i],
			Name:      "Maillot",
			UnitPrice: decimal.RequireFromString("19.99"),
			Quantity:  int(pairs[i+1]),
		})
	}

	return ParsedOrder{Address: "1 rue de la Paix", Items: li, Total: lineitem.Total(li)}
}

func (f *fixture) assertStock(t *testing.T, id int64, quantity, sold int) {
	t.Helper()
	q, s := f.store.Stock(id)
	assert.Equal(t, quantity, q, "quantity of product %d", id)
	assert.Equal(t, sold, s, "sold of product %d", id)
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, 5, 10)
	p1, p2 := f.products[0], f.products[1]

	o, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p1, 2, p2, 10))
	require.NoError(t, err)

	assert.NotZero(t, o.ID)
	assert.Equal(t, f.userID, o.UserID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Len(t, o.Products, 2)
	assert.True(t, decimal.RequireFromString("239.88").Equal(o.TotalPrice), "got %s", o.TotalPrice)

	f.assertStock(t, p1, 3, 2)
	f.assertStock(t, p2, 0, 10)
	assert.Equal(t, 1, f.store.DeliveryCount())
}

func TestCreateOrderIgnoresClientTotal(t *testing.T) {
	f := newFixture(t, 5)
	body := `{"address":"1 rue","totalPrice":1,"products":[{"id":` +
		jsonInt(f.products[0]) + `,"name":"Maillot","price":"50","quantity":2}]}`

	var p order.Payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	o, err := f.svc.CreateOrder(context.Background(), f.userID, p)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(o.TotalPrice))
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)

	return string(b)
}

func TestCreateOrderMalformedWritesNothing(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.svc.CreateOrder(context.Background(), f.userID, order.Payload{
		Address:  "1 rue",
		Products: json.RawMessage(`"not a list"`),
	})
	require.ErrorIs(t, err, ErrMalformedPayload)
	assert.Equal(t, 0, f.store.DeliveryCount())
	f.assertStock(t, f.products[0], 5, 0)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newFixture(t, 5, 1)
	p1, p2 := f.products[0], f.products[1]

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p1, 1, p2, 2))
	require.ErrorIs(t, err, ErrInsufficientStock)

	var serr *InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, p2, serr.ProductID)
	assert.Equal(t, 1, serr.Available)
	assert.Equal(t, 2, serr.Requested)

	assert.Equal(t, 0, f.store.DeliveryCount())
	f.assertStock(t, p1, 5, 0)
	f.assertStock(t, p2, 1, 0)
}

func TestPlaceOrderAggregatesDuplicateItems(t *testing.T) {
	f := newFixture(t, 5)
	p := f.products[0]

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p, 3, p, 3))
	require.ErrorIs(t, err, ErrInsufficientStock)
	f.assertStock(t, p, 5, 0)

	_, err = f.svc.PlaceOrder(context.Background(), f.userID, items(p, 2, p, 3))
	require.NoError(t, err)
	f.assertStock(t, p, 0, 5)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(999, 1))
	var serr *InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, int64(999), serr.ProductID)
	assert.Equal(t, 0, serr.Available)
}

func TestPlaceOrderConcurrentLastUnits(t *testing.T) {
	f := newFixture(t, 5)
	p := f.products[0]

	var (
		g         errgroup.Group
		succeeded atomic.Int32
		short     atomic.Int32
	)
	for range 2 {
		g.Go(func() error {
			_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p, 3))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				short.Add(1)
			default:
				return err
			}

			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(1), short.Load())
	f.assertStock(t, p, 2, 3)
	assert.Equal(t, 1, f.store.DeliveryCount())
}

func TestPlaceOrderManyConcurrentBuyers(t *testing.T) {
	f := newFixture(t, 7)
	p := f.products[0]

	var (
		g         errgroup.Group
		succeeded atomic.Int32
	)
	for range 25 {
		g.Go(func() error {
			_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p, 1))
			if err == nil {
				succeeded.Add(1)

				return nil
			}
			if errors.Is(err, ErrInsufficientStock) {
				return nil
			}

			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(7), succeeded.Load())
	f.assertStock(t, p, 0, 7)
	assert.Equal(t, 7, f.store.DeliveryCount())
}

// hookUOW wraps the memory unit of work to simulate races and failures.
type hookUOW struct {
	*memory.UnitOfWork
	staleStock  map[int64]int
	onInsert    func(ctx context.Context)
	onDecrement func(ctx context.Context) error
}

func (u *hookUOW) ProductRepository() iproductrepo.Repository {
	return &hookProducts{Repository: u.UnitOfWork.ProductRepository(), u: u}
}

func (u *hookUOW) DeliveryRepository() ideliveryrepo.Repository {
	return &hookDeliveries{Repository: u.UnitOfWork.DeliveryRepository(), u: u}
}

type hookProducts struct {
	iproductrepo.Repository
	u *hookUOW
}

func (r *hookProducts) QueryStock(ctx context.Context, ids []int64) (map[int64]int, error) {
	if r.u.staleStock != nil {
		return r.u.staleStock, nil
	}

	return r.Repository.QueryStock(ctx, ids)
}

func (r *hookProducts) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	if r.u.onDecrement != nil {
		if err := r.u.onDecrement(ctx); err != nil {
			return false, err
		}
	}

	return r.Repository.DecrementStock(ctx, id, qty)
}

type hookDeliveries struct {
	ideliveryrepo.Repository
	u *hookUOW
}

func (r *hookDeliveries) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	if r.u.onInsert != nil {
		r.u.onInsert(ctx)
	}

	return r.Repository.Insert(ctx, o)
}

func TestPlaceOrderRaceLostAtDecrement(t *testing.T) {
	f := newFixture(t, 1)
	p := f.products[0]

	// the oracle saw 5 units, but only 1 is left when the update runs
	f.withUOW(func() unitOfWork {
		return &hookUOW{UnitOfWork: f.store.NewUnitOfWork(), staleStock: map[int64]int{p: 5}}
	})

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p, 3))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, f.store.DeliveryCount(), "order row rolled back")
	f.assertStock(t, p, 1, 0)
}

func TestPlaceOrderRollsBackPartialDecrement(t *testing.T) {
	f := newFixture(t, 5, 5)
	p1, p2 := f.products[0], f.products[1]

	calls := 0
	f.withUOW(func() unitOfWork {
		return &hookUOW{
			UnitOfWork: f.store.NewUnitOfWork(),
			onDecrement: func(ctx context.Context) error {
				calls++
				if calls == 2 {
					return errors.New("deadlock detected")
				}

				return nil
			},
		}
	})

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(p1, 2, p2, 2))
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, 0, f.store.DeliveryCount())
	f.assertStock(t, p1, 5, 0)
	f.assertStock(t, p2, 5, 0)
}

func TestPlaceOrderInsertFailure(t *testing.T) {
	f := newFixture(t, 5)
	f.store.FailOn(memory.OpInsertDelivery, errors.New("check constraint violated"))

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(f.products[0], 1))
	require.ErrorIs(t, err, ErrTransactionFailed)
	f.assertStock(t, f.products[0], 5, 0)
}

func TestPlaceOrderCommitFailure(t *testing.T) {
	f := newFixture(t, 5)
	f.store.FailOn(memory.OpCommit, errors.New("connection reset"))

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(f.products[0], 4))
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, 0, f.store.DeliveryCount())
	f.assertStock(t, f.products[0], 5, 0)
}

func TestPlaceOrderStorageUnavailable(t *testing.T) {
	f := newFixture(t, 5)
	f.store.FailOn(memory.OpQueryStock, errors.New("connection refused"))

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(f.products[0], 1))
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 0, f.store.DeliveryCount())
}

func TestPlaceOrderSurvivesClientDisconnect(t *testing.T) {
	f := newFixture(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.withUOW(func() unitOfWork {
		return &hookUOW{
			UnitOfWork: f.store.NewUnitOfWork(),
			onInsert:   func(context.Context) { cancel() },
		}
	})

	o, err := f.svc.PlaceOrder(ctx, f.userID, items(f.products[0], 2))
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	require.Error(t, ctx.Err())
	f.assertStock(t, f.products[0], 3, 2)
}

func TestPlaceOrderTransactionTimeout(t *testing.T) {
	f := newFixture(t, 5)

	f.withUOW(func() unitOfWork {
		return &hookUOW{
			UnitOfWork: f.store.NewUnitOfWork(),
			onDecrement: func(ctx context.Context) error {
				<-ctx.Done()

				return ctx.Err()
			},
		}
	}, WithTxTimeout(20*time.Millisecond))

	_, err := f.svc.PlaceOrder(context.Background(), f.userID, items(f.products[0], 2))
	require.ErrorIs(t, err, ErrTransactionFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.store.DeliveryCount())
	f.assertStock(t, f.products[0], 5, 0)
}

func TestRepeatedOrdersAreDistinct(t *testing.T) {
	f := newFixture(t, 5)
	req := items(f.products[0], 1)

	a, err := f.svc.PlaceOrder(context.Background(), f.userID, req)
	require.NoError(t, err)
	b, err := f.svc.PlaceOrder(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	f.assertStock(t, f.products[0], 3, 2)
}

func TestDeliveryQueries(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, f.userID, items(f.products[0], 1))
	require.NoError(t, err)

	got, err := f.svc.GetUserOrder(ctx, f.userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetUserOrder(ctx, f.userID+100, o.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.svc.UpdateStatus(ctx, o.ID, "Livrée"))
	got, err = f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)

	require.ErrorIs(t, f.svc.UpdateStatus(ctx, o.ID, "lost"), apperr.ErrInvalidInput)
	require.ErrorIs(t, f.svc.UpdateStatus(ctx, 12345, "pending"), apperr.ErrNotFound)

	list, err := f.svc.GetOrders(ctx, order.QueryOrdersModel{UserIDs: []int64{f.userID}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSalesTotal(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, f.userID, items(f.products[0], 2))
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, f.userID, items(f.products[0], 1))
	require.NoError(t, err)

	total, err := f.svc.SalesTotal(ctx, SalesToday)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("59.97").Equal(total), "got %s", total)

	total, err = f.svc.SalesTotal(ctx, SalesYesterday)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	y, m, _ := time.Now().Date()
	f.svc.now = func() time.Time { return time.Date(y, m+1, 1, 12, 0, 0, 0, time.Local) }
	total, err = f.svc.SalesTotal(ctx, SalesLastMonth)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("59.97").Equal(total))

	_, err = f.svc.SalesTotal(ctx, "decade")
	require.Error(t, err)
}
