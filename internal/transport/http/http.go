package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "github.com/corray333/jersey-shop/docs"
	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/internal/service/services/catalogsvc"
	"github.com/corray333/jersey-shop/internal/service/services/ordersvc"
	"github.com/corray333/jersey-shop/internal/service/services/usersvc"
	"github.com/corray333/jersey-shop/internal/transport/http/deliveries"
	"github.com/corray333/jersey-shop/internal/transport/http/products"
	"github.com/corray333/jersey-shop/internal/transport/http/taxonomy"
	"github.com/corray333/jersey-shop/internal/transport/http/users"
	"github.com/corray333/jersey-shop/pkg/auth"
	authmw "github.com/corray333/jersey-shop/pkg/http/middleware/auth"
	"github.com/corray333/jersey-shop/pkg/http/middleware/trace"
	"github.com/corray333/jersey-shop/pkg/http/response"
	"github.com/corray333/jersey-shop/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type orderService interface {
	CreateOrder(ctx context.Context, userID int64, payload order.Payload) (order.Order, error)
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	GetUserOrder(ctx context.Context, userID, id int64) (order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	SalesTotal(ctx context.Context, period ordersvc.SalesPeriod) (decimal.Decimal, error)
}

type userService interface {
	Register(ctx context.Context, p usersvc.Profile) (user.User, error)
	Login(ctx context.Context, email, password string) (usersvc.Session, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUsers(ctx context.Context, p page.Page) ([]user.User, error)
	GetLatestUsers(ctx context.Context) ([]user.User, error)
	UpdateProfile(ctx context.Context, id int64, p usersvc.Profile) (user.User, error)
	UpdateUser(ctx context.Context, id int64, p usersvc.Profile, role string) (user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type catalogService interface {
	GetProducts(ctx context.Context, filter product.QueryProductsModel) ([]product.Product, error)
	GetBestSellers(ctx context.Context) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	CreateProduct(ctx context.Context, in catalogsvc.ProductInput, img *catalogsvc.Image) (product.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalogsvc.ProductInput, img *catalogsvc.Image) (product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetCategories(ctx context.Context, p page.Page) ([]category.Category, error)
	GetCategory(ctx context.Context, id int64) (category.Category, error)
	CreateCategory(ctx context.Context, in catalogsvc.NameInput) (category.Category, error)
	UpdateCategory(ctx context.Context, id int64, in catalogsvc.NameInput) (category.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	GetBrands(ctx context.Context, p page.Page) ([]brand.Brand, error)
	GetBrand(ctx context.Context, id int64) (brand.Brand, error)
	CreateBrand(ctx context.Context, in catalogsvc.NameInput) (brand.Brand, error)
	UpdateBrand(ctx context.Context, id int64, in catalogsvc.NameInput) (brand.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	GetTeams(ctx context.Context, p page.Page) ([]team.Team, error)
	GetTeam(ctx context.Context, id int64) (team.Team, error)
	CreateTeam(ctx context.Context, in catalogsvc.TeamInput) (team.Team, error)
	UpdateTeam(ctx context.Context, id int64, in catalogsvc.TeamInput) (team.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
}

type tokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// defaultMaxBodyBytes caps JSON request bodies when
// server.http.max_body_bytes is unset.
const defaultMaxBodyBytes = 100 << 10

type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	orders     orderService
	users      userService
	catalog    catalogService
	tokens     tokenParser
	uploadsDir string
	maxBody    int64
}

func NewHTTPTransport(
	orders orderService,
	users userService,
	catalog catalogService,
	tokens tokenParser,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	maxBody := viper.GetInt64("server.http.max_body_bytes")
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &HTTPTransport{
		server:     server,
		router:     router,
		orders:     orders,
		users:      users,
		catalog:    catalog,
		tokens:     tokens,
		uploadsDir: viper.GetString("uploads.dir"),
		maxBody:    maxBody,
	}
}

func (h *HTTPTransport) Run() error {
	slog.Info("Starting HTTP server", "address", h.server.Addr)

	return h.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if h.uploadsDir != "" {
		h.router.Handle(catalogsvc.PublicPrefix+"*", http.StripPrefix(catalogsvc.PublicPrefix, noListing(http.FileServer(http.Dir(h.uploadsDir)))))
	}

	authed := authmw.NewAuthMiddleware(h.tokens)
	// product forms carry images and are bounded in the products package
	limitJSON := middleware.RequestSize(h.maxBody)

	h.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Use(limitJSON)
			r.Post("/login", h.login)
			r.Post("/create", h.register)

			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Get("/profile", h.profile)
				r.Put("/profile/update", h.updateProfile)
				r.Delete("/profile/delete", h.deleteProfile)

				r.Group(func(r chi.Router) {
					r.Use(authmw.RequireAdmin)
					r.Get("/", h.listUsers)
					r.Get("/latest", h.latestUsers)
					r.Get("/{id}", h.getUser)
					r.Put("/update/{id}", h.updateUser)
					r.Delete("/delete/{id}", h.deleteUser)
				})
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)

			r.Group(func(r chi.Router) {
				r.Use(authed, authmw.RequireAdmin)
				r.Get("/best", h.bestProducts)
				r.Post("/create", h.createProduct)
				r.Put("/update/{id}", h.updateProduct)
				r.Delete("/delete/{id}", h.deleteProduct)
			})
		})

		mountTaxonomy(r, "/categories", authed, limitJSON, taxonomy.Resource[category.Category, catalogsvc.NameInput]{
			Name:   "category",
			List:   h.catalog.GetCategories,
			Get:    h.catalog.GetCategory,
			Create: h.catalog.CreateCategory,
			Update: h.catalog.UpdateCategory,
			Delete: h.catalog.DeleteCategory,
		})
		mountTaxonomy(r, "/brands", authed, limitJSON, taxonomy.Resource[brand.Brand, catalogsvc.NameInput]{
			Name:   "brand",
			List:   h.catalog.GetBrands,
			Get:    h.catalog.GetBrand,
			Create: h.catalog.CreateBrand,
			Update: h.catalog.UpdateBrand,
			Delete: h.catalog.DeleteBrand,
		})
		mountTaxonomy(r, "/teams", authed, limitJSON, taxonomy.Resource[team.Team, catalogsvc.TeamInput]{
			Name:   "team",
			List:   h.catalog.GetTeams,
			Get:    h.catalog.GetTeam,
			Create: h.catalog.CreateTeam,
			Update: h.catalog.UpdateTeam,
			Delete: h.catalog.DeleteTeam,
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Use(authed, limitJSON)
			r.Post("/create", h.createOrder)
			r.Get("/profile", h.ownOrders)
			r.Get("/profile/{id}", h.ownOrder)

			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAdmin)
				r.Get("/", h.listOrders)
				r.Get("/today", h.sales(ordersvc.SalesToday))
				r.Get("/yesterday", h.sales(ordersvc.SalesYesterday))
				r.Get("/lastmonth", h.sales(ordersvc.SalesLastMonth))
				r.Get("/from/{userId}", h.userOrders)
				r.Get("/{id}", h.getOrder)
				r.Put("/update/{id}", h.updateOrderStatus)
			})
		})
	})
}

func mountTaxonomy[T, In any](r chi.Router, pattern string, authed, limit func(http.Handler) http.Handler, res taxonomy.Resource[T, In]) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", res.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(authed, authmw.RequireAdmin, limit)
			r.Get("/{id}", res.HandleGet)
			r.Post("/create", res.HandleCreate)
			r.Put("/update/{id}", res.HandleUpdate)
			r.Delete("/delete/{id}", res.HandleDelete)
		})
	})
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	users.Login(w, r, h.users)
}

func (h *HTTPTransport) register(w http.ResponseWriter, r *http.Request) {
	users.Register(w, r, h.users)
}

func (h *HTTPTransport) profile(w http.ResponseWriter, r *http.Request) {
	users.Profile(w, r, h.users)
}

func (h *HTTPTransport) updateProfile(w http.ResponseWriter, r *http.Request) {
	users.UpdateProfile(w, r, h.users)
}

func (h *HTTPTransport) deleteProfile(w http.ResponseWriter, r *http.Request) {
	users.DeleteProfile(w, r, h.users)
}

func (h *HTTPTransport) listUsers(w http.ResponseWriter, r *http.Request) {
	users.List(w, r, h.users)
}

func (h *HTTPTransport) latestUsers(w http.ResponseWriter, r *http.Request) {
	users.Latest(w, r, h.users)
}

func (h *HTTPTransport) getUser(w http.ResponseWriter, r *http.Request) {
	users.Get(w, r, h.users)
}

func (h *HTTPTransport) updateUser(w http.ResponseWriter, r *http.Request) {
	users.Update(w, r, h.users)
}

func (h *HTTPTransport) deleteUser(w http.ResponseWriter, r *http.Request) {
	users.Delete(w, r, h.users)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products.List(w, r, h.catalog)
}

func (h *HTTPTransport) bestProducts(w http.ResponseWriter, r *http.Request) {
	products.Best(w, r, h.catalog)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	products.Get(w, r, h.catalog)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	products.Create(w, r, h.catalog)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	products.Update(w, r, h.catalog)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	products.Delete(w, r, h.catalog)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	deliveries.Create(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	deliveries.List(w, r, h.orders)
}

func (h *HTTPTransport) userOrders(w http.ResponseWriter, r *http.Request) {
	deliveries.ListForUser(w, r, h.orders)
}

func (h *HTTPTransport) ownOrders(w http.ResponseWriter, r *http.Request) {
	deliveries.ListOwn(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	deliveries.Get(w, r, h.orders)
}

func (h *HTTPTransport) ownOrder(w http.ResponseWriter, r *http.Request) {
	deliveries.GetOwn(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	deliveries.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) sales(period ordersvc.SalesPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deliveries.SalesTotal(w, r, h.orders, period)
	}
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   viper.GetStringSlice("server.http.cors.allowed_origins"),
		AllowedMethods:   viper.GetStringSlice("server.http.cors.allowed_methods"),
		AllowedHeaders:   viper.GetStringSlice("server.http.cors.allowed_headers"),
		ExposedHeaders:   viper.GetStringSlice("server.http.cors.exposed_headers"),
		AllowCredentials: viper.GetBool("server.http.cors.allow_credentials"),
		MaxAge:           viper.GetInt("server.http.cors.max_age"),
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(viper.GetInt("server.http.read_timeout_seconds")) * time.Second,
		WriteTimeout:      time.Duration(viper.GetInt("server.http.write_timeout_seconds")) * time.Second,
	}
}
