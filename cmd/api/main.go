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

	"go.uber.org/multierr"

	_ "cartflow/docs"
	"cartflow/pkg/backend"
	"cartflow/pkg/cart"
	"cartflow/pkg/config"
	"cartflow/pkg/logger"
	"cartflow/pkg/otel"
)

// @title Cartflow API
// @version 1.0
// @description Local shopping cart for a UI shell
// @host localhost:8443
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.App.LogLevel), "cartflow", otel.GetTraceID)
	defer log.Sync()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: "cartflow",
		Host:        cfg.Tracing.Host,
		Probability: cfg.Tracing.Probability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { err = multierr.Append(err, shutdownTracing(context.Background())) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() { err = multierr.Append(err, closeStorage()) }()

	store := cart.NewStore(storage, cart.WithKey(cfg.Storage.Key), cart.WithLogger(log))
	if err := store.Load(ctx); err != nil {
		log.Error(ctx, "loading cart, starting empty", "error", err)
	}

	srv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     newRouter(store, log, tp.Tracer("cartflow")),
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTP.Addr, "backend", cfg.Storage.Backend, "tls", cfg.HTTP.TLS())
		if cfg.HTTP.TLS() {
			serveErr <- srv.ListenAndServeTLS(cfg.HTTP.CertFile, cfg.HTTP.KeyFile)
			return
		}
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server closed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	return srv.Shutdown(shutdownCtx)
}
