package ideliveryrepo

import (
	"context"

	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// Repository is an interface for the deliveries (orders) repository.
type Repository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Get(ctx context.Context, id int64) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
	// SalesTotal sums total_price of orders created within period.
	SalesTotal(ctx context.Context, period order.Period) (decimal.Decimal, error)
}
