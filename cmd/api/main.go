package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_service/internal/cache"
	"auth_service/internal/config"
	"auth_service/internal/db"
	"auth_service/internal/handler"
	"auth_service/internal/observability"
	"auth_service/internal/queue"
	"auth_service/internal/store"
	"auth_service/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithError(err).Warn("Invalid LOG_LEVEL, using info")
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize Prometheus metrics
	metrics := observability.InitMetrics()
	logrus.Info("Metrics initialized")

	repo, closeRepo, err := setupRepository(ctx, cfg, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize user store")
	}
	defer closeRepo()

	publisher, closePublisher, err := setupPublisher(cfg, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize event publisher")
	}
	defer closePublisher()

	r := handler.SetupHandler(repo, publisher, metrics, cfg)

	// Expose /metrics endpoint for Prometheus to scrape
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	logrus.Info("Metrics endpoint exposed at /metrics")

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logrus.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
	logrus.Info("Server exited")
}

// setupRepository builds the user store selected by STORE_DRIVER, optionally behind the Redis cache.
func setupRepository(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (user.UserRepositoryInterface, func(), error) {
	var repo user.UserRepositoryInterface
	var closers []func()

	switch cfg.Store.Driver {
	case "file":
		repo = user.NewFileRepository(store.NewJSONFile(cfg.Store.DataFile), metrics)
		logrus.WithField("path", cfg.Store.DataFile).Info("Using JSON file user store")
	case "memory":
		repo = user.NewMemoryRepository(metrics)
		logrus.Warn("Using in-memory user store, users are lost on restart")
	case "postgres":
		conn, err := db.Init(ctx, &cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, closeDB(conn))
		if err := db.EnsureSchema(ctx, conn); err != nil {
			runClosers(closers)
			return nil, nil, err
		}
		repo = user.NewPostgresRepository(conn, metrics)
		logrus.Info("Using PostgreSQL user store")
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	if cfg.Redis.Enabled {
		rdb, err := cache.SetupRedis(ctx, &cfg.Redis)
		if err != nil {
			runClosers(closers)
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close redis connection")
			}
		})
		repo = user.NewCachedRepository(repo, cache.NewUserCache(rdb, cfg.Redis.UserCacheTTL), metrics)
		logrus.Info("Redis user cache enabled")
	}

	return repo, func() { runClosers(closers) }, nil
}

func setupPublisher(cfg *config.Config, metrics *observability.Metrics) (queue.Publisher, func(), error) {
	if !cfg.EventsEnabled() {
		logrus.Info("RABBITMQ_URL not set, auth events disabled")
		return queue.NoopPublisher{}, func() {}, nil
	}

	conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := queue.NewRabbitPublisher(conn, cfg.RabbitMQ.Queue, metrics)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ channel")
		}
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}, nil
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}
}

// runClosers releases resources in reverse order of acquisition.
func runClosers(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
