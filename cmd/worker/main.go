package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"filesmanager/internal/config"
	"filesmanager/internal/database"
	"filesmanager/internal/database/migration"
	handlers "filesmanager/internal/http/handler"
	"filesmanager/internal/logger"
	"filesmanager/internal/otel"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository/postgres"
	"filesmanager/internal/storage"
	"filesmanager/internal/thumbnail"
)

const serviceName = "filesmanager-worker"

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("worker stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, serviceName, zl)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database, serviceName)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, zl, cfg.Database.Host); err != nil {
		return err
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	blobs, err := storage.New(cfg.Storage, cfg.MinIO)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := thumbnail.NewMetrics(reg)
	if err != nil {
		return err
	}

	processor := thumbnail.NewProcessor(postgres.NewFilePostgres(db), blobs, cfg.Worker.RetryAttempts, metrics, zl)
	jobs := queue.NewRedisQueue(rdb, cfg.Worker.Queue, cfg.Worker.BlockTimeout())
	worker := thumbnail.NewWorker(jobs, processor, cfg.Worker.Concurrency, metrics, zl)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})
	app.Get("/healthz", handlers.LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	go func() {
		if err := app.Listen(":" + cfg.Worker.MetricsPort); err != nil {
			zl.Error("metrics server stopped", zap.Error(err))
		}
	}()
	defer app.ShutdownWithTimeout(5 * time.Second) //nolint:errcheck

	zl.Info("worker started",
		zap.String("queue", cfg.Worker.Queue),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("storage", cfg.Storage.Backend),
	)
	return worker.Run(ctx)
}
