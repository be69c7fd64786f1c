package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/corray333/jersey-shop/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	// Secrets may come from the environment directly, so a missing .env is fine.
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/jersey-shop")
	viper.AddConfigPath(".")
	SetDefaults()
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

// SetDefaults registers the values used when config.yaml omits a key.
func SetDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.read_timeout_seconds", 15)
	viper.SetDefault("server.http.write_timeout_seconds", 30)
	viper.SetDefault("server.http.max_body_bytes", 102400)
	viper.SetDefault("server.grpc.port", "9090")
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("order.tx_timeout_seconds", 10)
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("uploads.dir", "./uploads")
	viper.SetDefault("otel.service_name", "jersey-shop")
	viper.SetDefault("otel.jaeger_endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("health.poll_interval_seconds", 10)
	viper.SetDefault("log.level", "info")
}

func SetupLogger() {
	handler := logger.NewHandler(&logger.Options{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
