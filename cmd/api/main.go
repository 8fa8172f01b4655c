package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"filesmanager/internal/blob"
	"filesmanager/internal/config"
	"filesmanager/internal/database"
	"filesmanager/internal/database/migration"
	handlers "filesmanager/internal/http/handler"
	"filesmanager/internal/http/middleware"
	"filesmanager/internal/logger"
	"filesmanager/internal/otel"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository/postgres"
	"filesmanager/internal/service"
	"filesmanager/internal/session"
	"filesmanager/internal/storage"
)

const serviceName = "filesmanager-api"

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("api stopped", zap.Error(err))
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

	users := postgres.NewUserPostgres(db)
	files := postgres.NewFilePostgres(db)
	sessions := session.NewRedisStore(rdb, cfg.Session.TTL(), cfg.Session.ResolveTimeout(), zl)
	jobs := queue.NewRedisQueue(rdb, cfg.Worker.Queue, cfg.Worker.BlockTimeout())

	fileSvc, err := service.NewFileService(users, files, blob.NewPlacer(blobs), jobs, cfg.Storage.FolderPath, zl, reg)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(users, sessions, zl)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
		BodyLimit:             50 * 1024 * 1024,
	})
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:       db,
		Sessions: sessions,
		Auth:     authSvc,
		Files:    fileSvc,
		Gatherer: reg,
	})

	errCh := make(chan error, 1)
	go func() {
		zl.Info("api listening", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage.Backend))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
