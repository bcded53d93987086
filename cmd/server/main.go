package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	webAdapter "store-admin/internal/adapters/web"
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

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, closeStore, err := db.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	settings, err := app.NewSettings(cfg)
	if err != nil {
		return err
	}
	svc := app.NewAppService(ds, settings, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, cfg.Auth.JWTSecret, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
