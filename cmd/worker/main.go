package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auth_service/internal/config"
	"auth_service/internal/observability"
	"auth_service/internal/queue"
	"auth_service/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// A non-zero exit lets the supervisor restart the worker
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Auth event worker stopped")
	}
	logrus.Info("Auth event worker exited")
}

func run() error {
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if !cfg.EventsEnabled() {
		return errors.New("RABBITMQ_URL is required to run the auth event worker")
	}

	conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	consumerChannel, err := queue.CreateChannel(conn)
	if err != nil {
		return err
	}

	if _, err := queue.DeclareQueue(consumerChannel, cfg.RabbitMQ.Queue); err != nil {
		consumerChannel.Close()
		return err
	}

	if err := consumerChannel.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ channel: %w", err)
	}

	// Initialize Prometheus metrics
	metrics := observability.InitMetrics()
	logrus.Info("Metrics initialized")

	// Start metrics HTTP server for Prometheus scraping
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: ":" + cfg.Worker.MetricsPort, Handler: mux}
	go func() {
		logrus.Infof("Worker metrics server started on :%s", cfg.Worker.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start metrics server")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Failed to stop metrics server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers := worker.DefaultHandlers()
	return worker.RunPool(ctx, cfg.Worker.Count, func(ctx context.Context, id int) error {
		w := &worker.Worker{
			ID:        id,
			QueueName: cfg.RabbitMQ.Queue,
			Handlers:  handlers,
			Metrics:   metrics,
		}
		return w.Run(ctx, conn)
	})
}
