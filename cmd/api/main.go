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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/hse-epd/lut-studio/config"
	"github.com/hse-epd/lut-studio/internal/backup"
	"github.com/hse-epd/lut-studio/internal/bootstrap"
	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/kvstore"
	"github.com/hse-epd/lut-studio/internal/logging"
	"github.com/hse-epd/lut-studio/internal/projects/repository"
	"github.com/hse-epd/lut-studio/internal/projects/service"
	"github.com/hse-epd/lut-studio/internal/telemetry"
)

const serviceName = "lut-studio"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lut-studio:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return err
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	registry := drivers.NewRegistry()
	if cfg.Drivers.File != "" {
		n, err := registry.LoadYAML(cfg.Drivers.File)
		if err != nil {
			return fmt.Errorf("load drivers: %w", err)
		}
		logger.Info().Int("count", n).Str("file", cfg.Drivers.File).Msg("driver definitions loaded")
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := telemetry.NewPrometheusCollector(promReg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := bootstrap.CloseStore(store); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()
	logger.Info().Str("backend", cfg.Store.Backend).Msg("store ready")

	repo := repository.Open(ctx, store,
		repository.WithLogger(logger.With().Str("component", "projects").Logger()),
		repository.WithCollector(collector),
	)
	projects := service.NewProjectService(repo, registry)

	sched, err := startBackups(cfg.Backup, store, logger, collector)
	if err != nil {
		return err
	}
	if sched != nil {
		defer sched.Stop()
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Backend:        cfg.Store.Backend,
		Store:          store,
		Projects:       projects,
		Registry:       registry,
		Logger:         logger,
		Collector:      collector,
		Gatherer:       promReg,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.App.Environment).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server exited gracefully")
	return nil
}

func startBackups(cfg config.BackupConfig, src kvstore.Store, logger zerolog.Logger, collector telemetry.Collector) (*backup.Scheduler, error) {
	if cfg.Schedule == "" {
		return nil, nil
	}
	dst, err := kvstore.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}
	sched := backup.NewScheduler(src, dst, backup.Options{
		Schedule:  cfg.Schedule,
		Key:       repository.StorageKey,
		Logger:    logger.With().Str("component", "backup").Logger(),
		Collector: collector,
	})
	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}
