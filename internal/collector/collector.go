package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-weather/internal/logger"
	"github.com/samvad-hq/samvad-weather/internal/weather"
	"github.com/samvad-hq/samvad-weather/pkg/publishers"
)

const defaultConcurrency = 4

// Service runs a collection pass across locations.
type Service struct {
	processor   *LocationProcessor
	concurrency int
	log         logger.Logger
}

// NewService wires a collector with the weather fetcher and the event publisher.
func NewService(fetcher weather.Fetcher, pub EventPublisher, log logger.Logger, concurrency int) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		processor:   NewLocationProcessor(fetcher, pub, log),
		concurrency: concurrency,
		log:         log,
	}
}

// Run fetches and publishes every location once. Failures do not stop the pass;
// they are joined into the returned error.
func (s *Service) Run(ctx context.Context, locs []weather.Location) error {
	if s == nil || s.processor == nil || s.processor.fetcher == nil {
		return fmt.Errorf("collector service is not initialized")
	}
	if len(locs) == 0 {
		return fmt.Errorf("no locations configured for collection")
	}

	errs := s.runAll(ctx, locs)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, locs []weather.Location) []error {
	results := make([]error, len(locs))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

loop:
	for i, loc := range locs {
		if ctx.Err() != nil {
			s.skipRemaining(ctx, locs[i:], results[i:])
			break
		}
		select {
		case <-ctx.Done():
			s.skipRemaining(ctx, locs[i:], results[i:])
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, loc weather.Location) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.processor.Process(ctx, loc); err != nil {
				results[i] = err
				s.log.ErrorObj("location collection failed", "location_error", map[string]any{
					"location_id": loc.ID,
					"error":       err.Error(),
				})
			}
		}(i, loc)
	}

	wg.Wait()
	return collectErrors(results)
}

// skipRemaining records a cancellation error for every location the pass never started.
func (s *Service) skipRemaining(ctx context.Context, locs []weather.Location, results []error) {
	for j, loc := range locs {
		results[j] = fmt.Errorf("collect location %s: %w", loc.ID, ctx.Err())
	}
	s.log.WarnObj("collection pass cancelled", "collection_cancelled", map[string]any{
		"skipped_locations": len(locs),
		"error":             ctx.Err().Error(),
	})
}

func collectErrors(results []error) []error {
	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// LocationProcessor handles one location: fetch, wrap, publish.
type LocationProcessor struct {
	fetcher weather.Fetcher
	pub     EventPublisher
	log     logger.Logger
}

// NewLocationProcessor builds a processor; a nil publisher drops events.
func NewLocationProcessor(fetcher weather.Fetcher, pub EventPublisher, log logger.Logger) *LocationProcessor {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &LocationProcessor{fetcher: fetcher, pub: pub, log: log}
}

// Process fetches the current conditions for loc and publishes them.
func (p *LocationProcessor) Process(ctx context.Context, loc weather.Location) error {
	start := time.Now()
	obs, err := p.fetcher.Current(ctx, loc)
	if err != nil {
		return fmt.Errorf("fetch location %s: %w", loc.ID, err)
	}

	p.log.InfoObj("location collected", "location_result", map[string]any{
		"location_id":   loc.ID,
		"temperature_c": obs.TemperatureC,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})

	if p.pub == nil {
		return nil
	}
	delivered, err := p.pub.Publish(ctx, publishers.NewEvent(loc.ID, loc.Name, obs))
	if err != nil {
		return fmt.Errorf("publish location %s (%d delivered): %w", loc.ID, delivered, err)
	}
	return nil
}
