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

	"github.com/lysyi3m/syndic/app/api"
	"github.com/lysyi3m/syndic/app/cfg"
	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/download"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/logger"
	"github.com/lysyi3m/syndic/app/parser"
	"github.com/lysyi3m/syndic/app/tasks"
	"golang.org/x/sync/errgroup"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	if err := logger.Init(logger.Config{
		Level:      appCfg.EffectiveLogLevel(),
		File:       appCfg.LogFile,
		MaxSize:    appCfg.LogMaxSize,
		MaxBackups: appCfg.LogMaxBackups,
		MaxAge:     appCfg.LogMaxAge,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(appCfg); err != nil {
		logger.L.Errorw("Server terminated", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	logger.L.Infow("Starting Syndic server", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.L.Infow("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}
	logger.L.Infow("Feed configurations loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	feedRepo := database.NewFeedRepository(db)
	downloader := download.New(download.Config{
		Timeout:   time.Duration(appCfg.FetchTimeout) * time.Second,
		UserAgent: appCfg.UserAgent,
	})
	feedParser := parser.NewParser()

	logger.L.Infow("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, feedRepo, downloader, feedParser, tasks.SchedulerOptions{
		Interval:    time.Duration(appCfg.SchedulerInterval) * time.Second,
		WorkerCount: appCfg.WorkerCount,
	})
	scheduler.Start()
	defer func() {
		scheduler.Stop()
		logger.L.Info("Background scheduler stopped")
	}()

	handler := api.NewHandler(configCache, feedRepo, scheduler, downloader, feedParser)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.L.Infow("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.L.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		logger.L.Info("HTTP server stopped")
		return nil
	})

	return group.Wait()
}
