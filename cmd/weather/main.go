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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvad-hq/samvad-weather/internal/app"
	"github.com/samvad-hq/samvad-weather/internal/config"
	"github.com/samvad-hq/samvad-weather/internal/logger"
	"github.com/samvad-hq/samvad-weather/pkg/httpclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "weather reporter failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("weather reporter starting", "config", map[string]any{
		"app_name":          cfg.AppName,
		"app_env":           cfg.Env,
		"weather_base_url":  cfg.WeatherBaseURL,
		"locations_file":    cfg.LocationsFile,
		"sinks_file":        cfg.SinksFile,
		"report_interval":   cfg.ReportInterval.String(),
		"request_timeout":   cfg.RequestTimeout.String(),
		"fetch_concurrency": cfg.FetchConcurrency,
		"metrics_addr":      cfg.MetricsAddr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []app.Option
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, app.WithMetrics(httpclient.NewMetrics("weather", reg)))

		srv := startMetricsServer(cfg.MetricsAddr, reg, log)
		defer shutdownMetricsServer(srv, log)
	}

	reporter, err := app.NewReporter(ctx, cfg, log, opts...)
	if err != nil {
		logger.ErrorObj("failed to initialize reporter", "error", err)
		return err
	}

	if err := reporter.Run(ctx); err != nil {
		return fmt.Errorf("reporter run: %w", err)
	}

	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.InfoObj("metrics server listening", "metrics_addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorObj("metrics server failed", "error", err)
		}
	}()
	return srv
}

func shutdownMetricsServer(srv *http.Server, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorObj("metrics server shutdown failed", "error", err)
	}
}
