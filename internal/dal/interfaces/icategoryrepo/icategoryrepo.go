package icategoryrepo

import (
	"context"

	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/page"
)

type Repository interface {
	Insert(ctx context.Context, c category.Category) (category.Category, error)
	Update(ctx context.Context, c category.Category) (category.Category, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (category.Category, error)
	List(ctx context.Context, p page.Page) ([]category.Category, error)
}
