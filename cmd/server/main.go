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
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/mapveto-backend/internal/config"
	"github.com/DoyleJ11/mapveto-backend/internal/httpapi"
	"github.com/DoyleJ11/mapveto-backend/internal/hub"
	"github.com/DoyleJ11/mapveto-backend/internal/i18n"
	"github.com/DoyleJ11/mapveto-backend/internal/mapimages"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second

	shutdownDeadline = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mapveto:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	catalog, err := i18n.New(cfg.DefaultLanguage, logger)
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	images, err := mapimages.Load()
	if err != nil {
		return fmt.Errorf("load map images: %w", err)
	}

	h := hub.NewHub(ctx, store, logger)
	// Restore the default session so vetoresult.json is served right away.
	if _, err := h.Session(ctx, hub.DefaultCode); err != nil {
		return fmt.Errorf("start default session: %w", err)
	}

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:     h,
		Images:  images,
		Catalog: catalog,
		Logger:  logger,
	})

	// No WriteTimeout: /ws streams for as long as the overlay is open.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// Cancelling ctx stops the hub and its sessions.
	stop()
	logger.Info("server stopped")
	return nil
}

// openStore picks postgres when DATABASE_URL is set, the state directory
// otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		gs, err := storage.OpenPostgres(ctx, cfg.DatabaseURL, logger.Named("store"))
		if err != nil {
			return nil, nil, err
		}
		return gs, func() {
			if err := gs.Close(); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}, nil
	}

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("state dir: %w", err)
	}
	logger.Info("file store ready", zap.String("dir", cfg.StateDir))
	return storage.NewFileStore(cfg.StateDir), func() {}, nil
}
