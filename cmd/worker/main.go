package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mfontenla/easyshop-api/internal/config"
	"github.com/mfontenla/easyshop-api/internal/messaging"
	"github.com/mfontenla/easyshop-api/internal/notify"
	"github.com/mfontenla/easyshop-api/internal/telemetry"
)

const serviceName = "easyshop-worker"
const serviceVersion = "0.1.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Error("kafka brokers are required (EASYSHOP_KAFKA_BROKERS)")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	var mailer notify.Mailer
	if cfg.Worker.EmailServiceURL != "" {
		mailer = notify.NewHTTPMailer(cfg.Worker.EmailServiceURL, &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
	} else {
		mailer = notify.NewLogMailer(logger)
	}

	handler := notify.NewHandler(mailer, logger)

	createdConsumer := messaging.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.CreatedTopic, cfg.Kafka.GroupID)
	defer func() { _ = createdConsumer.Close() }()
	cancelledConsumer := messaging.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.CancelledTopic, cfg.Kafka.GroupID)
	defer func() { _ = cancelledConsumer.Close() }()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("consuming order created events", "topic", cfg.Kafka.CreatedTopic)
		errCh <- createdConsumer.Consume(ctx, handler.HandleOrderCreated)
	}()
	go func() {
		logger.Info("consuming order cancelled events", "topic", cfg.Kafka.CancelledTopic)
		errCh <- cancelledConsumer.Consume(ctx, handler.HandleOrderCancelled)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer error", "error", err)
			os.Exit(1)
		}
	}
}
