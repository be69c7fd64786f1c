package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name the shop reports its health under. The empty
// name covers the whole server.
const ServiceName = "jersey-shop"

// GRPCTransport serves the standard gRPC health protocol.
type GRPCTransport struct {
	server   *grpc.Server
	listener net.Listener
	health   *health.Server
}

// NewGRPCTransport creates a new GRPCTransport. Services report NOT_SERVING
// until SetServing is called.
func NewGRPCTransport() *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	return newGRPCTransport(listener)
}

func newGRPCTransport(listener net.Listener) *GRPCTransport {
	g := &GRPCTransport{
		server:   newGRPCServer(),
		listener: listener,
		health:   health.NewServer(),
	}
	g.SetServing(false)

	return g
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// SetServing updates the status reported by the health service.
func (g *GRPCTransport) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	healthpb.RegisterHealthServer(g.server, g.health)
	reflection.Register(g.server)
}

// keepaliveConfig mirrors server.grpc.keepalive. Idle and age are in
// minutes, the rest in seconds.
type keepaliveConfig struct {
	MaxConnectionIdle     int  `mapstructure:"max_connection_idle"`
	MaxConnectionAge      int  `mapstructure:"max_connection_age"`
	MaxConnectionAgeGrace int  `mapstructure:"max_connection_age_grace"`
	Time                  int  `mapstructure:"time"`
	Timeout               int  `mapstructure:"timeout"`
	MinTime               int  `mapstructure:"min_time"`
	PermitWithoutStream   bool `mapstructure:"permit_without_stream"`
}

func loadKeepalive() keepaliveConfig {
	cfg := keepaliveConfig{
		MaxConnectionIdle:     15,
		MaxConnectionAge:      30,
		MaxConnectionAgeGrace: 5,
		Time:                  5,
		Timeout:               1,
		MinTime:               5,
	}
	if err := viper.UnmarshalKey("server.grpc.keepalive", &cfg); err != nil {
		slog.Error("Invalid gRPC keepalive config, using defaults", "error", err)
	}

	return cfg
}

func newGRPCServer() *grpc.Server {
	cfg := loadKeepalive()

	return grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Duration(cfg.MaxConnectionIdle) * time.Minute,
			MaxConnectionAge:      time.Duration(cfg.MaxConnectionAge) * time.Minute,
			MaxConnectionAgeGrace: time.Duration(cfg.MaxConnectionAgeGrace) * time.Second,
			Time:                  time.Duration(cfg.Time) * time.Second,
			Timeout:               time.Duration(cfg.Timeout) * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             time.Duration(cfg.MinTime) * time.Second,
			PermitWithoutStream: cfg.PermitWithoutStream,
		}),
	)
}
