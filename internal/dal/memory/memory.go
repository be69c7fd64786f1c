// Package memory implements the repositories in process memory with
// transaction semantics: a unit of work holds the store lock from Begin to
// Commit or Rollback, and Rollback restores the state seen at Begin.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/ibrandrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/icategoryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/ideliveryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iteamrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/corray333/jersey-shop/internal/service/models/user"
)

// Operation names accepted by FailOn.
const (
	OpBegin          = "Begin"
	OpCommit         = "Commit"
	OpQueryStock     = "QueryStock"
	OpDecrementStock = "DecrementStock"
	OpInsertDelivery = "InsertDelivery"
)

var ErrTxActive = errors.New("transaction already started")

type state struct {
	seq        int64
	products   map[int64]product.Product
	deliveries map[int64]order.Order
	users      map[int64]user.User
	categories map[int64]category.Category
	brands     map[int64]brand.Brand
	teams      map[int64]team.Team
}

func newState() *state {
	return &state{
		products:   map[int64]product.Product{},
		deliveries: map[int64]order.Order{},
		users:      map[int64]user.User{},
		categories: map[int64]category.Category{},
		brands:     map[int64]brand.Brand{},
		teams:      map[int64]team.Team{},
	}
}

func (s *state) nextID() int64 {
	s.seq++

	return s.seq
}

func (s *state) clone() *state {
	c := &state{
		seq:        s.seq,
		products:   make(map[int64]product.Product, len(s.products)),
		deliveries: make(map[int64]order.Order, len(s.deliveries)),
		users:      make(map[int64]user.User, len(s.users)),
		categories: make(map[int64]category.Category, len(s.categories)),
		brands:     make(map[int64]brand.Brand, len(s.brands)),
		teams:      make(map[int64]team.Team, len(s.teams)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.deliveries {
		v.Products = slices.Clone(v.Products)
		c.deliveries[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.brands {
		c.brands[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}

	return c
}

// Store is the shared in-memory database.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults sync.Map
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

// FailOn makes every following call of op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	if err == nil {
		s.faults.Delete(op)

		return
	}
	s.faults.Store(op, err)
}

func (s *Store) fault(op string) error {
	if v, ok := s.faults.Load(op); ok {
		return v.(error)
	}

	return nil
}

// Stock returns the current available quantity and sold units of a product.
func (s *Store) Stock(id int64) (quantity, sold int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.data.products[id]

	return p.Quantity, p.Sold
}

// DeliveryCount returns the number of stored orders.
func (s *Store) DeliveryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.data.deliveries)
}

// NewUnitOfWork returns a unit of work bound to the store.
func (s *Store) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{store: s}
}

// UnitOfWork mirrors the Postgres unit of work over a Store.
type UnitOfWork struct {
	store    *Store
	snapshot *state
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return ErrTxActive
	}
	if err := u.store.fault(OpBegin); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	u.snapshot = u.store.data.clone()

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.snapshot == nil {
		return nil
	}
	if err := u.store.fault(OpCommit); err != nil {
		u.release(true)

		return err
	}
	u.release(false)

	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.snapshot == nil {
		return nil
	}
	u.release(true)

	return nil
}

func (u *UnitOfWork) release(restore bool) {
	if restore {
		u.store.data = u.snapshot
	}
	u.snapshot = nil
	u.store.mu.Unlock()
}

// with runs fn on the store state, taking the lock unless a transaction holds it.
func (u *UnitOfWork) with(fn func(s *state) error) error {
	if u.snapshot != nil {
		return fn(u.store.data)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	return fn(u.store.data)
}

func (u *UnitOfWork) ProductRepository() iproductrepo.Repository {
	return &productRepo{u: u}
}

func (u *UnitOfWork) DeliveryRepository() ideliveryrepo.Repository {
	return &deliveryRepo{u: u}
}

func (u *UnitOfWork) UserRepository() iuserrepo.Repository {
	return &userRepo{u: u}
}

func (u *UnitOfWork) CategoryRepository() icategoryrepo.Repository {
	return &categoryRepo{u: u}
}

func (u *UnitOfWork) BrandRepository() ibrandrepo.Repository {
	return &brandRepo{u: u}
}

func (u *UnitOfWork) TeamRepository() iteamrepo.Repository {
	return &teamRepo{u: u}
}

func paginate[T any](items []T, p page.Page) []T {
	if p.Offset >= uint64(len(items)) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < uint64(len(items)) {
		items = items[:p.Limit]
	}

	return items
}

func sortedByID[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}

	return out
}

func cloneItems(items []lineitem.LineItem) []lineitem.LineItem {
	if items == nil {
		return []lineitem.LineItem{}
	}

	return slices.Clone(items)
}
