package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"focus-tracker/internal/auth"
	"focus-tracker/internal/config"
	apphttp "focus-tracker/internal/http"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/service"
	"focus-tracker/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	trackerRepo := sqlite.NewTrackerRepository(db)

	store, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	exports := service.NewExportService(userRepo, taskRepo, trackerRepo, store, service.ExportConfig{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Location:  loc,
	}, logger)

	services := apphttp.Services{
		Auth:     service.NewAuthService(userRepo, auth.NewCodec(cfg.Auth.JWTSecret, cfg.TokenTTL())),
		Users:    service.NewUserService(userRepo, service.UserHooks{Renamed: exports.Relocate, Deleted: exports.Purge}),
		Tasks:    service.NewTaskService(taskRepo),
		Trackers: service.NewTrackerService(trackerRepo, taskRepo),
		Stats:    service.NewStatsService(trackerRepo, nil),
		Exports:  exports,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(services, apphttp.Options{
		Logger:         logger,
		Location:       loc,
		AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
		AuthBurst:      cfg.RateLimit.AuthBurst,
		Ping:           db.PingContext,
		StorageEnabled: store != nil,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// buildStorage returns nil when no bucket is configured; exports then work
// as downloads only.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if strings.TrimSpace(cfg.Storage.Bucket) == "" {
		logger.Info("no storage bucket configured, export archiving disabled")
		return nil, nil
	}

	store, err := storage.Open(ctx, storage.Options{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return store, nil
}
