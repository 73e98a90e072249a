package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"focus-tracker/internal/config"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/seed"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

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

	logger.Infof("seeding %s", cfg.Database.Path)
	res, err := seed.Run(ctx, db, time.Now(), logger)
	if err != nil {
		logger.Fatalf("seed: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"users":    res.Users,
		"tasks":    res.Tasks,
		"trackers": res.Trackers,
	}).Info("database seeding completed")
}
