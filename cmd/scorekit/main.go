package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scorekit/api"
	"github.com/rushteam/scorekit/config"
	_ "github.com/rushteam/scorekit/config/builders"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/predict"
)

func main() {
	configPath := flag.String("config", "scorekit.yaml", "path to YAML or JSON config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "scorekit: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st core.Store
	if cfg.Model.StoreKey != "" {
		st, err = config.BuildStore(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		defer st.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := predict.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	svc, err := config.BuildPredictor(ctx, cfg, st, logger, metrics)
	if err != nil {
		return err
	}

	handler := api.NewHandler(svc, logger)
	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(handler, api.RouterConfig{
			Timeout:     time.Duration(cfg.Server.RequestTimeout) * time.Second,
			CORSOrigins: cfg.Server.CORSOrigins,
			Gatherer:    reg,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout+5) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("scorekit started",
			slog.String("addr", cfg.Server.Addr),
			slog.String("model", svc.ModelName()),
			slog.Int("teams", svc.Teams().Len()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return svc.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("scorekit stopped")
	return nil
}
