package postgresrepo

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func TestInsert(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresDeliveryRepository(mock)

	items := []lineitem.LineItem{
		{ProductID: 1, Name: "Maillot OM", UnitPrice: decimal.RequireFromString("80"), Quantity: 2},
	}
	raw := []byte(`[{"id":1,"name":"Maillot OM","price":"80","quantity":2}]`)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO deliveries \(user_id,address,products,total_price,status\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING`).
		WithArgs(int64(3), "1 rue de la Paix", raw, decimal.RequireFromString("160"), "pending").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(11), int64(3), "1 rue de la Paix", raw, decimal.RequireFromString("160"), "pending", now))

	got, err := repo.Insert(context.Background(), order.Order{
		UserID:     3,
		Address:    "1 rue de la Paix",
		Products:   items,
		TotalPrice: decimal.RequireFromString("160"),
		Status:     order.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 2, got.Products[0].Quantity)
	assert.True(t, got.Products[0].UnitPrice.Equal(decimal.NewFromInt(80)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesTotal(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresDeliveryRepository(mock)

	period := order.Today(time.Now())
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_price\), 0\) FROM deliveries WHERE created_at >= \$1 AND created_at < \$2`).
		WithArgs(period.Start, period.End).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(decimal.RequireFromString("240.50")))

	total, err := repo.SalesTotal(context.Background(), period)
	require.NoError(t, err)
	assert.Equal(t, "240.5", total.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresDeliveryRepository(mock)

	mock.ExpectExec(`UPDATE deliveries SET status = \$1 WHERE id = \$2`).
		WithArgs("shipped", int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), 4, order.StatusShipped)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQueryByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresDeliveryRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM deliveries WHERE user_id IN \(\$1\) ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(2), int64(3), "a", []byte(`[]`), decimal.Zero, "shipped", time.Now()).
			AddRow(int64(1), int64(3), "a", []byte(`[]`), decimal.Zero, "pending", time.Now()))

	orders, err := repo.Query(context.Background(), &order.QueryOrdersModel{UserIDs: []int64{3}})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order.StatusShipped, orders[0].Status)
	assert.Empty(t, orders[0].Products)
}
