package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"store-admin/internal/adapters/cli"
	"store-admin/internal/app"
	"store-admin/internal/config"
	"store-admin/internal/db"
	"store-admin/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	deps := cli.Deps{
		Service: func(ctx context.Context) (app.ApplicationService, func(), error) {
			ds, closeStore, err := db.OpenStore(ctx, cfg, log)
			if err != nil {
				return nil, nil, err
			}
			settings, err := app.NewSettings(cfg)
			if err != nil {
				closeStore()
				return nil, nil, err
			}
			return app.NewAppService(ds, settings, log), closeStore, nil
		},
		JWTSecret: cfg.Auth.JWTSecret,
	}
	if cfg.Store.Driver == config.DriverPostgres {
		deps.Migrate = func() (uint, error) { return db.Migrate(cfg.DB.URL) }
	}

	if err := cli.NewRootCommand(deps).ExecuteContext(context.Background()); err != nil {
		log.Debug("command failed", zap.Error(err))
		os.Exit(1)
	}
}
