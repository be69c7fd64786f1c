package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/otel"
	"github.com/corray333/jersey-shop/internal/service/services/catalogsvc"
	"github.com/corray333/jersey-shop/internal/service/services/ordersvc"
	"github.com/corray333/jersey-shop/internal/service/services/usersvc"
	grpctransport "github.com/corray333/jersey-shop/internal/transport/grpc"
	httptransport "github.com/corray333/jersey-shop/internal/transport/http"
	"github.com/corray333/jersey-shop/internal/worker/health"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	userSvc        *usersvc.UserService
	catalogSvc     *catalogsvc.CatalogService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	healthWorker   *health.Worker
	postgresClient *postgres.Client
	otel           *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	issuer := auth.MustNewIssuer()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithTxTimeout(time.Duration(viper.GetInt("order.tx_timeout_seconds"))*time.Second),
	)
	userSvc := usersvc.MustNewUserService(
		usersvc.WithPostgresClient(postgresClient),
		usersvc.WithTokenIssuer(issuer),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
		catalogsvc.WithUploadsDir(viper.GetString("uploads.dir")),
	)

	mustEnsureAdmin(userSvc)

	httpTransport := httptransport.NewHTTPTransport(orderSvc, userSvc, catalogSvc, issuer)
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport()

	return &App{
		orderSvc:       orderSvc,
		userSvc:        userSvc,
		catalogSvc:     catalogSvc,
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		healthWorker:   health.NewWorker(postgresClient, grpcTransport),
		postgresClient: postgresClient,
		otel:           otelController,
	}
}

// mustEnsureAdmin creates the administrator named by SHOP_ADMIN_EMAIL and
// SHOP_ADMIN_PASSWORD when both are set.
func mustEnsureAdmin(svc *usersvc.UserService) {
	email, password := os.Getenv("SHOP_ADMIN_EMAIL"), os.Getenv("SHOP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := svc.EnsureAdmin(ctx, email, password); err != nil {
		panic("failed to create administrator: " + err.Error())
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.healthWorker.Start(gctx)
		return nil
	})

	<-gctx.Done()
	slog.Info("Shutdown signal received")

	a.shutdown()

	if err := g.Wait(); err != nil {
		slog.Error("Application stopped with error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.healthWorker.Stop()

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
