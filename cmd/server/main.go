package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"brewbook/internal/config"
	"brewbook/internal/db"
	applog "brewbook/internal/log"
	"brewbook/internal/server"
	"brewbook/internal/store"
	"brewbook/internal/undo"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		applog.Error(ctx, "invalid log level", "error", err)
		os.Exit(1)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		os.Exit(1)
	}

	registry := store.NewRegistry(database)
	if err := registry.Load(ctx); err != nil {
		if !cfg.Server.ContinueOnLoadError {
			applog.Error(ctx, "failed to load object stores; set CONTINUE_ON_LOAD_ERROR=1 to start degraded", "error", err)
			os.Exit(1)
		}
		applog.Warn(ctx, "starting degraded with partially loaded stores", "error", err)
	}

	srv, err := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Registry: registry,
		Stack:    undo.NewStack(),
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		os.Exit(1)
	}

	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	applog.Info(ctx, "shutting down http server")
	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
