package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/NandiniGupta213/crm/internal/cli"
	"github.com/NandiniGupta213/crm/internal/config"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/logging"
	"github.com/NandiniGupta213/crm/internal/metrics"
	"github.com/NandiniGupta213/crm/internal/notify"
	"github.com/NandiniGupta213/crm/internal/server"
	"github.com/NandiniGupta213/crm/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// CRM_CONFIG optionally names a YAML file; env vars override it.
	cfg, err := config.Load(os.Getenv("CRM_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	database, err := db.Open(cfg.Database.Path, db.Options{BusyTimeout: cfg.Database.LockWait()})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	m := metrics.New()
	opts := []service.Option{
		service.WithStoreTimeout(cfg.Database.StoreTimeout),
		service.WithCodeAttempts(cfg.Codegen.MaxAttempts),
		service.WithObserver(service.MultiObserver{service.NewLogUseCaseObserver(logger), m}),
	}

	// History fan-out is optional; without NATS the audit trail stays local.
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		opts = append(opts, service.WithPublisher(notify.NewPublisher(nc, cfg.NATS.SubjectPrefix)))
	}

	app := &cli.App{
		Config:   cfg,
		Logger:   logger,
		DB:       database,
		Services: service.NewServices(database, db.NewSQLiteUnitOfWork(database), opts...),
		Metrics:  m,
	}
	if cfg.Auth.JWTSecret != "" {
		if app.Auth, err = server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer); err != nil {
			return err
		}
	}

	return cli.NewRootCmd(app).Execute()
}
