package publishers

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Fanout dispatches events to all configured publishers concurrently.
type Fanout struct {
	publishers []Publisher
	log        Logger
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher, log Logger) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp, log: ensureLogger(log)}
}

// Publish forwards the event to every publisher and waits for all of them.
// It returns the number of publishers that handled the event; failures are joined
// in publisher order.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	errs := make([]error, len(f.publishers))
	var wg sync.WaitGroup
	for i, p := range f.publishers {
		wg.Add(1)
		go func(i int, p Publisher) {
			defer wg.Done()
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err)
				f.log.WarnObj("publish failed", "publish_error", map[string]any{
					"publisher_id":   p.ID(),
					"publisher_type": p.Type(),
					"location_id":    evt.LocationID,
					"error":          err.Error(),
				})
			}
		}(i, p)
	}
	wg.Wait()

	successful := 0
	for _, err := range errs {
		if err == nil {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}
