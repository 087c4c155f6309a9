package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samvad-hq/samvad-weather/internal/collector"
	"github.com/samvad-hq/samvad-weather/internal/config"
	"github.com/samvad-hq/samvad-weather/internal/logger"
	"github.com/samvad-hq/samvad-weather/internal/weather"
	"github.com/samvad-hq/samvad-weather/pkg/httpclient"
	"github.com/samvad-hq/samvad-weather/pkg/publishers"
)

// Reporter represents the weather reporting runtime. It owns the request helper,
// the location list, and the sinks, and runs collection passes over them.
type Reporter struct {
	cfg            *config.Config
	locations      []weather.Location
	pubs           []publishers.Publisher
	fanout         *publishers.Fanout
	collector      *collector.Service
	reportInterval time.Duration
	log            logger.Logger
}

// Option customizes reporter construction.
type Option func(*options)

type options struct {
	metrics   *httpclient.Metrics
	transport http.RoundTripper
}

// WithMetrics records outbound request metrics on m.
func WithMetrics(m *httpclient.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTransport replaces the round tripper used for weather requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// NewReporter builds a reporter runtime from config and the optional files it names.
func NewReporter(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Reporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := newRequestClient(cfg, log, o)
	if err != nil {
		return nil, fmt.Errorf("init http client: %w", err)
	}
	weatherClient := weather.NewClient(client, cfg.WeatherBaseURL, cfg.WeatherAPIKey)
	if cfg.WeatherAPIKey == "" {
		log.WarnObj("weather api key is empty; requests will likely be rejected", "weather_base_url", cfg.WeatherBaseURL)
	}

	locs, err := loadLocations(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}
	locIDs := make([]string, 0, len(locs))
	for _, l := range locs {
		locIDs = append(locIDs, l.ID)
	}
	log.InfoObj("locations loaded", "locations_meta", map[string]any{
		"count": len(locIDs),
		"ids":   locIDs,
	})

	sinkCfgs, err := loadSinks(cfg.SinksFile)
	if err != nil {
		return nil, err
	}
	if len(sinkCfgs) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), sinkCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubs, log)
	publisherSummaries := make([]map[string]string, 0, len(sinkCfgs))
	for _, pubCfg := range sinkCfgs {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return &Reporter{
		cfg:            cfg,
		locations:      locs,
		pubs:           pubs,
		fanout:         fanout,
		collector:      collector.NewService(weatherClient, fanout, log, cfg.FetchConcurrency),
		reportInterval: cfg.ReportInterval,
		log:            log,
	}, nil
}

func newRequestClient(cfg *config.Config, log logger.Logger, o options) (*httpclient.Client, error) {
	headers := httpclient.DefaultGlobalHeaders()
	if cfg.DeviceID != "" {
		headers["device_id"] = cfg.DeviceID
	}
	trust := httpclient.TrustStandard
	if cfg.InsecureSkipVerify {
		trust = httpclient.TrustAcceptAll
	}
	return httpclient.NewClient(httpclient.Options{
		DefaultTimeout: cfg.RequestTimeout,
		GlobalHeaders:  headers,
		Trust:          trust,
		Transport:      o.transport,
		Logger:         log,
		Metrics:        o.metrics,
	})
}

func loadLocations(path string) ([]weather.Location, error) {
	if path == "" {
		return []weather.Location{weather.DefaultLocation}, nil
	}
	reg, err := weather.LoadLocations(path)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	return reg.All(), nil
}

func loadSinks(path string) ([]publishers.PublisherConfig, error) {
	if path == "" {
		return publishers.DefaultConfigs(), nil
	}
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	return reg.Enabled(), nil
}

// Run performs one pass, then repeats every report interval until the context is
// cancelled. With no interval it returns the result of the single pass.
func (r *Reporter) Run(ctx context.Context) error {
	if r == nil || r.collector == nil {
		return fmt.Errorf("reporter is not initialized")
	}
	defer r.closePublishers()

	r.log.InfoObj("reporter starting", "reporter_state", map[string]any{
		"locations_count":  len(r.locations),
		"publishers_count": r.fanout.Size(),
		"report_interval":  r.reportInterval.String(),
	})

	if r.reportInterval <= 0 {
		return r.runOnce(ctx)
	}

	if err := r.runOnce(ctx); err != nil {
		r.log.ErrorObj("initial report failed", "error", err)
	}

	ticker := time.NewTicker(r.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("reporter loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				r.log.ErrorObj("scheduled report failed", "error", err)
			}
		}
	}
}

// runOnce performs a single collection pass across all locations.
func (r *Reporter) runOnce(ctx context.Context) error {
	start := time.Now()
	r.log.InfoObj("report started", "report_meta", map[string]any{
		"locations_count": len(r.locations),
		"started_at":      start.UTC(),
	})
	if err := r.collector.Run(ctx, r.locations); err != nil {
		return err
	}
	r.log.InfoObj("report completed", "report_meta", map[string]any{
		"locations_count": len(r.locations),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})
	return nil
}

// closePublishers releases sinks that hold client resources.
func (r *Reporter) closePublishers() {
	for _, p := range r.pubs {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			r.log.ErrorObj("publisher close failed", "publisher_error", map[string]any{
				"publisher_id": p.ID(),
				"error":        err.Error(),
			})
		}
	}
}
