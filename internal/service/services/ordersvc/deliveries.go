package ordersvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// SalesPeriod names a reporting window for SalesTotal.
type SalesPeriod string

const (
	SalesToday     SalesPeriod = "today"
	SalesYesterday SalesPeriod = "yesterday"
	SalesLastMonth SalesPeriod = "lastmonth"
)

// GetOrders lists orders matching filter, newest first.
func (s *OrderService) GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	return s.newUOW().DeliveryRepository().Query(ctx, &filter)
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	return s.newUOW().DeliveryRepository().Get(ctx, id)
}

// GetUserOrder returns an order only if it belongs to userID.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, id int64) (order.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	if o.UserID != userID {
		return order.Order{}, fmt.Errorf("delivery %d: %w", id, apperr.ErrNotFound)
	}

	return o, nil
}

// UpdateStatus sets the status of an order. status may be a stored value
// or one of the front-end labels.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return apperr.Invalid("status", "must be pending or shipped")
	}

	return s.newUOW().DeliveryRepository().UpdateStatus(ctx, id, parsed)
}

// SalesTotal sums order totals over a calendar period in server local time.
func (s *OrderService) SalesTotal(ctx context.Context, period SalesPeriod) (decimal.Decimal, error) {
	now := s.now()

	var p order.Period
	switch period {
	case SalesToday:
		p = order.Today(now)
	case SalesYesterday:
		p = order.Yesterday(now)
	case SalesLastMonth:
		p = order.LastMonth(now)
	default:
		return decimal.Zero, errors.New("unknown sales period " + string(period))
	}

	return s.newUOW().DeliveryRepository().SalesTotal(ctx, p)
}
