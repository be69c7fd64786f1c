package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/shopspring/decimal"
)

type productRepo struct{ u *UnitOfWork }

func (r *productRepo) QueryStock(ctx context.Context, ids []int64) (map[int64]int, error) {
	if err := r.u.store.fault(OpQueryStock); err != nil {
		return nil, err
	}
	stock := make(map[int64]int, len(ids))
	err := r.u.with(func(s *state) error {
		for _, id := range ids {
			if p, ok := s.products[id]; ok {
				stock[id] = p.Quantity
			}
		}

		return nil
	})

	return stock, err
}

func (r *productRepo) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	if err := r.u.store.fault(OpDecrementStock); err != nil {
		return false, err
	}
	var ok bool
	err := r.u.with(func(s *state) error {
		p, found := s.products[id]
		if !found || p.Quantity < qty {
			return nil
		}
		p.Quantity -= qty
		p.Sold += qty
		s.products[id] = p
		ok = true

		return nil
	})

	return ok, err
}

func checkReferences(s *state, p product.Product) error {
	if _, ok := s.categories[p.CategoryID]; !ok {
		return apperr.Invalid("category", "unknown reference")
	}
	if _, ok := s.teams[p.TeamID]; !ok {
		return apperr.Invalid("team", "unknown reference")
	}
	if _, ok := s.brands[p.BrandID]; !ok {
		return apperr.Invalid("brand", "unknown reference")
	}

	return nil
}

func (r *productRepo) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	err := r.u.with(func(s *state) error {
		if err := checkReferences(s, p); err != nil {
			return err
		}
		p.ID = s.nextID()
		p.Sold = 0
		p.CreatedAt = time.Now()
		s.products[p.ID] = p

		return nil
	})

	return p, err
}

func (r *productRepo) Update(ctx context.Context, p product.Product) (product.Product, error) {
	err := r.u.with(func(s *state) error {
		old, ok := s.products[p.ID]
		if !ok {
			return fmt.Errorf("product %d: %w", p.ID, apperr.ErrNotFound)
		}
		if err := checkReferences(s, p); err != nil {
			return err
		}
		p.Sold = old.Sold
		p.CreatedAt = old.CreatedAt
		s.products[p.ID] = p

		return nil
	})

	return p, err
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.u.with(func(s *state) error {
		if _, ok := s.products[id]; !ok {
			return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}
		delete(s.products, id)

		return nil
	})
}

func (r *productRepo) Get(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product
	err := r.u.with(func(s *state) error {
		var ok bool
		if p, ok = s.products[id]; !ok {
			return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
		}

		return nil
	})

	return p, err
}

func (r *productRepo) Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	var out []product.Product
	err := r.u.with(func(s *state) error {
		for _, p := range sortedByID(s.products) {
			if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, p.ID) ||
				len(filter.CategoryIDs) > 0 && !slices.Contains(filter.CategoryIDs, p.CategoryID) ||
				len(filter.TeamIDs) > 0 && !slices.Contains(filter.TeamIDs, p.TeamID) ||
				len(filter.BrandIDs) > 0 && !slices.Contains(filter.BrandIDs, p.BrandID) {
				continue
			}
			out = append(out, p)
		}

		return nil
	})
	if filter.BestSellers {
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(b.Sold, a.Sold)
		})
	}

	return paginate(out, filter.Page), err
}

type deliveryRepo struct{ u *UnitOfWork }

func (r *deliveryRepo) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	if err := r.u.store.fault(OpInsertDelivery); err != nil {
		return order.Order{}, err
	}
	err := r.u.with(func(s *state) error {
		if _, ok := s.users[o.UserID]; !ok {
			return fmt.Errorf("user %d: unknown reference", o.UserID)
		}
		o.ID = s.nextID()
		o.CreatedAt = time.Now()
		if o.Status == "" {
			o.Status = order.StatusPending
		}
		o.Products = cloneItems(o.Products)
		s.deliveries[o.ID] = o

		return nil
	})

	return o, err
}

func (r *deliveryRepo) Get(ctx context.Context, id int64) (order.Order, error) {
	var o order.Order
	err := r.u.with(func(s *state) error {
		var ok bool
		if o, ok = s.deliveries[id]; !ok {
			return fmt.Errorf("delivery %d: %w", id, apperr.ErrNotFound)
		}
		o.Products = cloneItems(o.Products)

		return nil
	})

	return o, err
}

func (r *deliveryRepo) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	err := r.u.with(func(s *state) error {
		for _, o := range sortedByID(s.deliveries) {
			if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, o.ID) ||
				len(filter.UserIDs) > 0 && !slices.Contains(filter.UserIDs, o.UserID) {
				continue
			}
			o.Products = cloneItems(o.Products)
			out = append(out, o)
		}

		return nil
	})
	slices.SortStableFunc(out, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})

	return paginate(out, filter.Page), err
}

func (r *deliveryRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	return r.u.with(func(s *state) error {
		o, ok := s.deliveries[id]
		if !ok {
			return fmt.Errorf("delivery %d: %w", id, apperr.ErrNotFound)
		}
		o.Status = status
		s.deliveries[id] = o

		return nil
	})
}

func (r *deliveryRepo) SalesTotal(ctx context.Context, period order.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.u.with(func(s *state) error {
		for _, o := range s.deliveries {
			if !o.CreatedAt.Before(period.Start) && o.CreatedAt.Before(period.End) {
				total = total.Add(o.TotalPrice)
			}
		}

		return nil
	})

	return total, err
}

type userRepo struct{ u *UnitOfWork }

func emailTaken(s *state, email string, except int64) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != except {
			return true
		}
	}

	return false
}

func (r *userRepo) Insert(ctx context.Context, u user.User) (user.User, error) {
	err := r.u.with(func(s *state) error {
		if emailTaken(s, u.Email, 0) {
			return fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
		}
		u.ID = s.nextID()
		u.CreatedAt = time.Now()
		s.users[u.ID] = u

		return nil
	})

	return u, err
}

func (r *userRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	err := r.u.with(func(s *state) error {
		old, ok := s.users[u.ID]
		if !ok {
			return fmt.Errorf("user %d: %w", u.ID, apperr.ErrNotFound)
		}
		if emailTaken(s, u.Email, u.ID) {
			return fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
		}
		u.CreatedAt = old.CreatedAt
		u.LastLoginAt = old.LastLoginAt
		s.users[u.ID] = u

		return nil
	})

	return u, err
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.u.with(func(s *state) error {
		if _, ok := s.users[id]; !ok {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		for _, o := range s.deliveries {
			if o.UserID == id {
				return fmt.Errorf("user %d has orders: %w", id, apperr.ErrInUse)
			}
		}
		delete(s.users, id)

		return nil
	})
}

func (r *userRepo) Get(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := r.u.with(func(s *state) error {
		var ok bool
		if u, ok = s.users[id]; !ok {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}

		return nil
	})

	return u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var found user.User
	err := r.u.with(func(s *state) error {
		for _, u := range s.users {
			if u.Email == email {
				found = u

				return nil
			}
		}

		return fmt.Errorf("user %q: %w", email, apperr.ErrNotFound)
	})

	return found, err
}

func (r *userRepo) Query(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error) {
	var out []user.User
	err := r.u.with(func(s *state) error {
		for _, u := range sortedByID(s.users) {
			if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, u.ID) ||
				len(filter.Emails) > 0 && !slices.Contains(filter.Emails, u.Email) {
				continue
			}
			out = append(out, u)
		}

		return nil
	})
	if filter.Latest {
		slices.SortStableFunc(out, func(a, b user.User) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}

			return cmp.Compare(b.ID, a.ID)
		})
	}

	return paginate(out, filter.Page), err
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.u.with(func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		u.LastLoginAt = &at
		s.users[id] = u

		return nil
	})
}

type categoryRepo struct{ u *UnitOfWork }

func (r *categoryRepo) Insert(ctx context.Context, c category.Category) (category.Category, error) {
	err := r.u.with(func(s *state) error {
		c.ID = s.nextID()
		s.categories[c.ID] = c

		return nil
	})

	return c, err
}

func (r *categoryRepo) Update(ctx context.Context, c category.Category) (category.Category, error) {
	err := r.u.with(func(s *state) error {
		if _, ok := s.categories[c.ID]; !ok {
			return fmt.Errorf("category %d: %w", c.ID, apperr.ErrNotFound)
		}
		s.categories[c.ID] = c

		return nil
	})

	return c, err
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	return r.u.with(func(s *state) error {
		if _, ok := s.categories[id]; !ok {
			return fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
		}
		for _, p := range s.products {
			if p.CategoryID == id {
				return fmt.Errorf("category %d: %w", id, apperr.ErrInUse)
			}
		}
		delete(s.categories, id)

		return nil
	})
}

func (r *categoryRepo) Get(ctx context.Context, id int64) (category.Category, error) {
	var c category.Category
	err := r.u.with(func(s *state) error {
		var ok bool
		if c, ok = s.categories[id]; !ok {
			return fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
		}

		return nil
	})

	return c, err
}

func (r *categoryRepo) List(ctx context.Context, p page.Page) ([]category.Category, error) {
	var out []category.Category
	err := r.u.with(func(s *state) error {
		out = sortedByID(s.categories)

		return nil
	})

	return paginate(out, p), err
}

type brandRepo struct{ u *UnitOfWork }

func (r *brandRepo) Insert(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	err := r.u.with(func(s *state) error {
		b.ID = s.nextID()
		s.brands[b.ID] = b

		return nil
	})

	return b, err
}

func (r *brandRepo) Update(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	err := r.u.with(func(s *state) error {
		if _, ok := s.brands[b.ID]; !ok {
			return fmt.Errorf("brand %d: %w", b.ID, apperr.ErrNotFound)
		}
		s.brands[b.ID] = b

		return nil
	})

	return b, err
}

func (r *brandRepo) Delete(ctx context.Context, id int64) error {
	return r.u.with(func(s *state) error {
		if _, ok := s.brands[id]; !ok {
			return fmt.Errorf("brand %d: %w", id, apperr.ErrNotFound)
		}
		for _, p := range s.products {
			if p.BrandID == id {
				return fmt.Errorf("brand %d: %w", id, apperr.ErrInUse)
			}
		}
		delete(s.brands, id)

		return nil
	})
}

func (r *brandRepo) Get(ctx context.Context, id int64) (brand.Brand, error) {
	var b brand.Brand
	err := r.u.with(func(s *state) error {
		var ok bool
		if b, ok = s.brands[id]; !ok {
			return fmt.Errorf("brand %d: %w", id, apperr.ErrNotFound)
		}

		return nil
	})

	return b, err
}

func (r *brandRepo) List(ctx context.Context, p page.Page) ([]brand.Brand, error) {
	var out []brand.Brand
	err := r.u.with(func(s *state) error {
		out = sortedByID(s.brands)

		return nil
	})

	return paginate(out, p), err
}

type teamRepo struct{ u *UnitOfWork }

func (r *teamRepo) Insert(ctx context.Context, t team.Team) (team.Team, error) {
	err := r.u.with(func(s *state) error {
		t.ID = s.nextID()
		s.teams[t.ID] = t

		return nil
	})

	return t, err
}

func (r *teamRepo) Update(ctx context.Context, t team.Team) (team.Team, error) {
	err := r.u.with(func(s *state) error {
		if _, ok := s.teams[t.ID]; !ok {
			return fmt.Errorf("team %d: %w", t.ID, apperr.ErrNotFound)
		}
		s.teams[t.ID] = t

		return nil
	})

	return t, err
}

func (r *teamRepo) Delete(ctx context.Context, id int64) error {
	return r.u.with(func(s *state) error {
		if _, ok := s.teams[id]; !ok {
			return fmt.Errorf("team %d: %w", id, apperr.ErrNotFound)
		}
		for _, p := range s.products {
			if p.TeamID == id {
				return fmt.Errorf("team %d: %w", id, apperr.ErrInUse)
			}
		}
		delete(s.teams, id)

		return nil
	})
}

func (r *teamRepo) Get(ctx context.Context, id int64) (team.Team, error) {
	var t team.Team
	err := r.u.with(func(s *state) error {
		var ok bool
		if t, ok = s.teams[id]; !ok {
			return fmt.Errorf("team %d: %w", id, apperr.ErrNotFound)
		}

		return nil
	})

	return t, err
}

func (r *teamRepo) List(ctx context.Context, p page.Page) ([]team.Team, error) {
	var out []team.Team
	err := r.u.with(func(s *state) error {
		out = sortedByID(s.teams)

		return nil
	})

	return paginate(out, p), err
}
