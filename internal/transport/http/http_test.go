package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/internal/service/services/ordersvc"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	orderService
	placedBy int64
}

func (s *stubOrders) CreateOrder(ctx context.Context, userID int64, payload order.Payload) (order.Order, error) {
	s.placedBy = userID

	return order.Order{ID: 1, TotalPrice: decimal.NewFromInt(10)}, nil
}

func (s *stubOrders) GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrders) SalesTotal(ctx context.Context, period ordersvc.SalesPeriod) (decimal.Decimal, error) {
	return decimal.NewFromInt(42), nil
}

type stubUsers struct{ userService }

func (stubUsers) GetUser(ctx context.Context, id int64) (user.User, error) {
	return user.User{ID: id}, nil
}

func (stubUsers) GetLatestUsers(ctx context.Context) ([]user.User, error) {
	return nil, nil
}

type stubCatalog struct{ catalogService }

func (stubCatalog) GetProducts(ctx context.Context, filter product.QueryProductsModel) ([]product.Product, error) {
	return nil, nil
}

func (stubCatalog) GetBestSellers(ctx context.Context) ([]product.Product, error) {
	return nil, nil
}

func (stubCatalog) GetCategories(ctx context.Context, p page.Page) ([]category.Category, error) {
	return nil, nil
}

func (stubCatalog) GetCategory(ctx context.Context, id int64) (category.Category, error) {
	return category.Category{ID: id, Name: "Maillots"}, nil
}

type env struct {
	handler http.Handler
	orders  *stubOrders
	user    string
	admin   string
	dir     string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	viper.Set("uploads.dir", dir)
	t.Cleanup(func() { viper.Set("uploads.dir", "") })

	issuer := auth.NewIssuer([]byte("key"), time.Hour)
	userToken, err := issuer.Issue(7, "user")
	require.NoError(t, err)
	adminToken, err := issuer.Issue(1, "admin")
	require.NoError(t, err)

	orders := &stubOrders{}
	tr := NewHTTPTransport(orders, stubUsers{}, stubCatalog{}, issuer)
	tr.RegisterRoutes()

	return &env{handler: tr.Handler(), orders: orders, user: userToken, admin: adminToken, dir: dir}
}

func (e *env) do(method, target, token, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)

	return rec
}

func TestRouteAccess(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		status int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"public products", http.MethodGet, "/api/products", "", http.StatusOK},
		{"public categories", http.MethodGet, "/api/categories", "", http.StatusOK},
		{"category needs admin", http.MethodGet, "/api/categories/3", e.user, http.StatusUnauthorized},
		{"category as admin", http.MethodGet, "/api/categories/3", e.admin, http.StatusOK},
		{"best sellers anonymous", http.MethodGet, "/api/products/best", "", http.StatusUnauthorized},
		{"best sellers as user", http.MethodGet, "/api/products/best", e.user, http.StatusUnauthorized},
		{"best sellers as admin", http.MethodGet, "/api/products/best", e.admin, http.StatusOK},
		{"profile anonymous", http.MethodGet, "/api/users/profile", "", http.StatusUnauthorized},
		{"profile", http.MethodGet, "/api/users/profile", e.user, http.StatusOK},
		{"latest as user", http.MethodGet, "/api/users/latest", e.user, http.StatusUnauthorized},
		{"latest as admin", http.MethodGet, "/api/users/latest", e.admin, http.StatusOK},
		{"own orders", http.MethodGet, "/api/deliveries/profile", e.user, http.StatusOK},
		{"all orders as user", http.MethodGet, "/api/deliveries", e.user, http.StatusUnauthorized},
		{"sales as admin", http.MethodGet, "/api/deliveries/today", e.admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.target, tt.token, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestForbiddenBody(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/deliveries/yesterday", e.user, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden."}`, rec.Body.String())
}

func TestCreateOrderUsesTokenUser(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/api/deliveries/create", e.user,
		`{"address":"1 rue","products":[{"id":1,"name":"Maillot","price":10,"quantity":1}]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(7), e.orders.placedBy)
}

func TestUploadsServed(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "123.png"), []byte("png"), 0o644))

	rec := e.do(http.MethodGet, "/uploads/123.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = e.do(http.MethodGet, "/uploads/", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func bigOrder(items int) string {
	item := `{"id":1,"name":"Maillot","price":10,"quantity":1}`
	return `{"address":"1 rue","products":[` + strings.TrimSuffix(strings.Repeat(item+",", items), ",") + `]}`
}

func TestCreateOrderBodyTooLarge(t *testing.T) {
	e := newEnv(t)
	body := bigOrder(3000)
	require.Greater(t, len(body), defaultMaxBodyBytes)

	rec := e.do(http.MethodPost, "/api/deliveries/create", e.user, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Zero(t, e.orders.placedBy)
}

func TestCreateOrderUnderBodyLimit(t *testing.T) {
	e := newEnv(t)
	body := bigOrder(100)
	require.Less(t, len(body), defaultMaxBodyBytes)

	rec := e.do(http.MethodPost, "/api/deliveries/create", e.user, body)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoginBodyTooLarge(t *testing.T) {
	e := newEnv(t)
	body := `{"email":"a@b.fr","password":"` + strings.Repeat("x", defaultMaxBodyBytes) + `"}`

	rec := e.do(http.MethodPost, "/api/users/login", "", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}
