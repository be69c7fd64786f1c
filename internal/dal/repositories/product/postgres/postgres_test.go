package postgresrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestQueryStock(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	mock.ExpectQuery(`SELECT id, quantity FROM products WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).
			AddRow(int64(1), 5).
			AddRow(int64(2), 0))

	stock, err := repo.QueryStock(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 5, 2: 0}, stock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryStockEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	stock, err := repo.QueryStock(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryStockFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	mock.ExpectQuery(`SELECT id, quantity FROM products`).
		WithArgs([]int64{1}).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.QueryStock(context.Background(), []int64{1})
	require.ErrorContains(t, err, "connection refused")
}

func TestDecrementStock(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "enough stock", affected: 1, want: true},
		{name: "race lost", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewPostgresProductRepository(mock)

			mock.ExpectExec(`UPDATE products SET quantity = quantity - \$1, sold = sold \+ \$2 WHERE id = \$3 AND quantity >= \$4`).
				WithArgs(3, 3, int64(7), 3).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			ok, err := repo.DecrementStock(context.Background(), 7, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQueryBestSellers(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM products ORDER BY sold DESC, id LIMIT 3`).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(4), "Maillot PSG", "Domicile 2024", int64(1), int64(2), "Domicile", int64(3),
				"2024", "M", decimal.RequireFromString("89.90"), 10, 42, "", "", now))

	filter := &product.QueryProductsModel{BestSellers: true}
	filter.Limit = 3
	products, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 42, products[0].Sold)
	assert.True(t, decimal.RequireFromString("89.9").Equal(products[0].Price))
	assert.Equal(t, product.VariationHome, products[0].Variation)
}

func TestInsertUnknownReference(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "products_team_fkey"})

	_, err := repo.Insert(context.Background(), product.Product{Name: "x", Variation: product.VariationAway})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	var fe *apperr.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "team", fe.Field)
}

func TestDeleteNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresProductRepository(mock)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, repo.Delete(context.Background(), 5), apperr.ErrNotFound)
}
