package deliveries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/services/ordersvc"
	"github.com/corray333/jersey-shop/internal/transport/http/params"
	"github.com/corray333/jersey-shop/pkg/http/response"
	"github.com/shopspring/decimal"
)

type service interface {
	CreateOrder(ctx context.Context, userID int64, payload order.Payload) (order.Order, error)
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	GetUserOrder(ctx context.Context, userID, id int64) (order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SalesTotal(ctx context.Context, period ordersvc.SalesPeriod) (decimal.Decimal, error)
}

type createOrderResponse struct {
	Message    string          `json:"message"`
	ID         int64           `json:"id"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Products   json.RawMessage `json:"products" swaggertype:"array,object"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// writeError maps order placement failures to their status codes and
// defers everything else to response.FromError.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stock *ordersvc.InsufficientStockError

	switch {
	case errors.As(err, &stock):
		response.Error(w, http.StatusConflict, "insufficient stock",
			fmt.Sprintf("product %d: %d available, %d requested", stock.ProductID, stock.Available, stock.Requested))
	case errors.Is(err, ordersvc.ErrMalformedPayload),
		errors.Is(err, ordersvc.ErrInvalidLineItem),
		errors.Is(err, ordersvc.ErrInvalidAddress):
		response.BadRequest(w, err)
	case errors.Is(err, ordersvc.ErrStorageUnavailable):
		slog.Error("Storage unavailable", "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusServiceUnavailable, "server error", "")
	case errors.Is(err, ordersvc.ErrTransactionFailed):
		slog.Error("Order transaction failed", "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "server error", "")
	default:
		response.FromError(w, r, err)
	}
}

// Create places an order for the caller.
//
// @Summary  Place an order
// @Tags     deliveries
// @Accept   json
// @Produce  json
// @Param    order body     order.Payload true "Shipping address and line items"
// @Success  200   {object} createOrderResponse
// @Failure  400   {object} response.ErrorBody
// @Failure  409   {object} response.ErrorBody
// @Failure  413   {object} response.ErrorBody
// @Failure  503   {object} response.ErrorBody
// @Security BearerAuth
// @Router   /deliveries/create [post]
func Create(w http.ResponseWriter, r *http.Request, service service) {
	var payload order.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", ordersvc.ErrMalformedPayload, err))
		return
	}

	created, err := service.CreateOrder(r.Context(), params.UserID(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, createOrderResponse{
		Message:    "order created",
		ID:         created.ID,
		TotalPrice: created.TotalPrice,
		Products:   payload.Products,
	})
}

func list(w http.ResponseWriter, r *http.Request, service service, filter order.QueryOrdersModel) {
	p, err := params.Page(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Page = p

	orders, err := service.GetOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	response.JSON(w, http.StatusOK, orders)
}

// List returns every order, newest first.
//
// @Summary  List orders
// @Tags     deliveries
// @Produce  json
// @Param    limit  query int false "Page size"
// @Param    offset query int false "Rows to skip"
// @Success  200 {array} order.Order
// @Security BearerAuth
// @Router   /deliveries [get]
func List(w http.ResponseWriter, r *http.Request, service service) {
	list(w, r, service, order.QueryOrdersModel{})
}

// ListForUser returns the orders of one user.
//
// @Summary  List a user's orders
// @Tags     deliveries
// @Produce  json
// @Param    userId path int true "User id"
// @Success  200 {array} order.Order
// @Security BearerAuth
// @Router   /deliveries/from/{userId} [get]
func ListForUser(w http.ResponseWriter, r *http.Request, service service) {
	userID, err := params.ID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	list(w, r, service, order.QueryOrdersModel{UserIDs: []int64{userID}})
}

// ListOwn returns the caller's orders.
//
// @Summary  List my orders
// @Tags     deliveries
// @Produce  json
// @Success  200 {array} order.Order
// @Security BearerAuth
// @Router   /deliveries/profile [get]
func ListOwn(w http.ResponseWriter, r *http.Request, service service) {
	list(w, r, service, order.QueryOrdersModel{UserIDs: []int64{params.UserID(r)}})
}

// Get returns one order.
//
// @Summary  Get an order
// @Tags     deliveries
// @Produce  json
// @Param    id path int true "Order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /deliveries/{id} [get]
func Get(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, o)
}

// GetOwn returns one of the caller's orders.
//
// @Summary  Get one of my orders
// @Tags     deliveries
// @Produce  json
// @Param    id path int true "Order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /deliveries/profile/{id} [get]
func GetOwn(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := service.GetUserOrder(r.Context(), params.UserID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, o)
}

// UpdateStatus changes the status of an order.
//
// @Summary  Update order status
// @Tags     deliveries
// @Accept   json
// @Produce  json
// @Param    id     path int                 true "Order id"
// @Param    status body updateStatusRequest true "pending or shipped"
// @Success  200 {object} response.MessageBody
// @Failure  400 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /deliveries/update/{id} [put]
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, "order updated")
}

var salesKeys = map[ordersvc.SalesPeriod]string{
	ordersvc.SalesToday:     "total_today",
	ordersvc.SalesYesterday: "total_yesterday",
	ordersvc.SalesLastMonth: "total_last_month",
}

// SalesTotal reports the sum of order totals over period.
//
// @Summary  Sales total
// @Tags     deliveries
// @Produce  json
// @Success  200 {object} map[string]string
// @Security BearerAuth
// @Router   /deliveries/today [get]
// @Router   /deliveries/yesterday [get]
// @Router   /deliveries/lastmonth [get]
func SalesTotal(w http.ResponseWriter, r *http.Request, service service, period ordersvc.SalesPeriod) {
	total, err := service.SalesTotal(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{salesKeys[period]: total.StringFixed(2)})
}
