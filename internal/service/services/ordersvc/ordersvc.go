package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/ideliveryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/dal/uow"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTxTimeout = 10 * time.Second
	rollbackTimeout  = 5 * time.Second
)

var tracer = otel.Tracer("ordersvc")

// OrderService is a service for placing and managing orders.
type OrderService struct {
	pgClient  *postgres.Client
	newUOW    func() unitOfWork
	txTimeout time.Duration
	now       func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.Repository
	DeliveryRepository() ideliveryrepo.Repository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		txTimeout: defaultTxTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		if s.pgClient == nil {
			panic("ordersvc: postgres client is required")
		}
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithTxTimeout bounds the order transaction once it has begun.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTxTimeout(d time.Duration) option {
	return func(s *OrderService) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// CreateOrder validates the payload and places the order for userID.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, payload order.Payload) (order.Order, error) {
	parsed, err := ParseOrder(payload)
	if err != nil {
		return order.Order{}, err
	}

	return s.PlaceOrder(ctx, userID, parsed)
}

// PlaceOrder checks stock, then inserts the order and moves stock from
// available to sold in one transaction. Each product is decremented with a
// conditional update, so a concurrent order that took the stock first makes
// this one fail with ErrInsufficientStock instead of overselling.
//
// Once the transaction has begun it no longer follows ctx cancellation; it is
// bounded by the configured transaction timeout and always ends in commit or
// rollback.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, parsed ParsedOrder) (_ order.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	demand := lineitem.Demand(parsed.Items)
	ids := make([]int64, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	// ascending ids keep row lock order stable across concurrent orders
	slices.Sort(ids)
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int("order.products", len(ids)))

	work := s.newUOW()

	stock, err := work.ProductRepository().QueryStock(ctx, ids)
	if err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	for _, id := range ids {
		if stock[id] < demand[id] {
			return order.Order{}, &InsufficientStockError{
				ProductID: id,
				Available: stock[id],
				Requested: demand[id],
			}
		}
	}

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()

	if err := work.Begin(txCtx); err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbCtx, rbCancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer rbCancel()
		if rbErr := work.Rollback(rbCtx); rbErr != nil {
			slog.Error("Failed to roll back order transaction", "user_id", userID, "error", rbErr)
		}
	}()

	created, err := work.DeliveryRepository().Insert(txCtx, order.Order{
		UserID:     userID,
		Address:    parsed.Address,
		Products:   parsed.Items,
		TotalPrice: parsed.Total,
		Status:     order.StatusPending,
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	for _, id := range ids {
		ok, err := work.ProductRepository().DecrementStock(txCtx, id, demand[id])
		if err != nil {
			return order.Order{}, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
		}
		if !ok {
			available := 0
			if current, err := work.ProductRepository().QueryStock(txCtx, []int64{id}); err == nil {
				available = current[id]
			}

			return order.Order{}, &InsufficientStockError{
				ProductID: id,
				Available: available,
				Requested: demand[id],
			}
		}
	}

	if err := work.Commit(txCtx); err != nil {
		return order.Order{}, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	committed = true

	slog.Info("Order placed",
		"order_id", created.ID,
		"user_id", userID,
		"total", created.TotalPrice.String(),
	)

	return created, nil
}
