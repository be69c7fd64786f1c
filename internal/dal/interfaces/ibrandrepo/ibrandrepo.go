package ibrandrepo

import (
	"context"

	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/page"
)

type Repository interface {
	Insert(ctx context.Context, b brand.Brand) (brand.Brand, error)
	Update(ctx context.Context, b brand.Brand) (brand.Brand, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (brand.Brand, error)
	List(ctx context.Context, p page.Page) ([]brand.Brand, error)
}
