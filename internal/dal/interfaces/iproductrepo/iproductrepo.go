package iproductrepo

import (
	"context"

	"github.com/corray333/jersey-shop/internal/service/models/product"
)

// StockReader reads available quantities.
type StockReader interface {
	// QueryStock returns the available quantity of every listed product that exists.
	// Missing products are absent from the map.
	QueryStock(ctx context.Context, ids []int64) (map[int64]int, error)
}

// Repository is an interface for product repository.
type Repository interface {
	StockReader
	// DecrementStock moves qty units from quantity to sold. It reports false
	// and changes nothing when fewer than qty units are left.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)

	Insert(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, p product.Product) (product.Product, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}
