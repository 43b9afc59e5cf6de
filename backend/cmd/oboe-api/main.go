package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oboe-board/oboe/backend/internal/router"
	"github.com/oboe-board/oboe/backend/internal/setup"
	"github.com/oboe-board/oboe/shared/config"
	"github.com/oboe-board/oboe/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:    cfg.Public.Addr,
		Handler: router.New(deps.Handler, router.Options{AllowedOrigins: cfg.Public.AllowedOrigins, RequestTimeout: cfg.Public.RequestTimeout}),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", cfg.Public.Addr,
			"store", cfg.Public.StoreBackend, "counters", cfg.Public.CounterBackend)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			deps.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", "error", err)
		}
	}
}
