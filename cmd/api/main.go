package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mfontenla/easyshop-api/internal/auth"
	"github.com/mfontenla/easyshop-api/internal/categories"
	"github.com/mfontenla/easyshop-api/internal/config"
	"github.com/mfontenla/easyshop-api/internal/messaging"
	"github.com/mfontenla/easyshop-api/internal/orders"
	"github.com/mfontenla/easyshop-api/internal/products"
	"github.com/mfontenla/easyshop-api/internal/telemetry"
	"github.com/mfontenla/easyshop-api/internal/users"
)

const serviceName = "easyshop-api"
const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var createdPub, cancelledPub orders.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		created := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CreatedTopic)
		defer func() { _ = created.Close() }()
		cancelled := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CancelledTopic)
		defer func() { _ = cancelled.Close() }()
		createdPub, cancelledPub = created, cancelled
	}

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	exemptions := append(auth.DefaultExemptions(), auth.Exemption{Method: http.MethodGet, Prefix: "/metrics"})
	gate := auth.NewGate(tokens, exemptions, logger)

	orderHandler := orders.NewHandler(orders.NewOrderRepository(db), createdPub, cancelledPub, logger)
	productHandler := products.NewHandler(products.NewProductRepository(db), logger)
	categoryHandler := categories.NewHandler(categories.NewCategoryRepository(db), logger)
	userHandler := users.NewHandler(users.NewUserRepository(db), tokens, logger)

	route := telemetry.WithHTTPRoute
	admin := gate.RequireAdmin

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metricsHandler)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	mux.HandleFunc("POST /api/v1/user/signup", route(userHandler.HandleSignup))
	mux.HandleFunc("POST /api/v1/user/login", route(userHandler.HandleLogin))
	mux.HandleFunc("GET /api/v1/user/{userId}", route(userHandler.HandleGet))

	mux.HandleFunc("GET /api/v1/categories", route(categoryHandler.HandleList))
	mux.HandleFunc("GET /api/v1/categories/{categoryId}", route(categoryHandler.HandleGet))
	mux.HandleFunc("POST /api/v1/categories", route(admin(categoryHandler.HandleCreate)))
	mux.HandleFunc("PUT /api/v1/categories/{categoryId}", route(admin(categoryHandler.HandleUpdate)))
	mux.HandleFunc("DELETE /api/v1/categories/{categoryId}", route(admin(categoryHandler.HandleDelete)))

	mux.HandleFunc("GET /api/v1/products", route(productHandler.HandleList))
	mux.HandleFunc("GET /api/v1/products/{productId}", route(productHandler.HandleGet))
	mux.HandleFunc("POST /api/v1/products", route(admin(productHandler.HandleCreate)))
	mux.HandleFunc("PUT /api/v1/products/{productId}", route(admin(productHandler.HandleUpdate)))
	mux.HandleFunc("DELETE /api/v1/products/{productId}", route(admin(productHandler.HandleDelete)))

	mux.HandleFunc("GET /api/v1/orders", route(admin(orderHandler.HandleList)))
	mux.HandleFunc("POST /api/v1/orders", route(orderHandler.HandleCreate))
	mux.HandleFunc("GET /api/v1/orders/get/total-sales", route(admin(orderHandler.HandleTotalSales)))
	mux.HandleFunc("GET /api/v1/orders/user/{userId}", route(orderHandler.HandleListByUser))
	mux.HandleFunc("GET /api/v1/orders/{orderId}", route(orderHandler.HandleGet))
	mux.HandleFunc("PATCH /api/v1/orders/{orderId}", route(admin(orderHandler.HandleUpdateStatus)))
	mux.HandleFunc("DELETE /api/v1/orders/{orderId}", route(orderHandler.HandleDelete))

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: otelhttp.NewHandler(gate.Authenticate(mux), serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api service", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
