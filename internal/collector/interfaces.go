package collector

import (
	"context"

	"github.com/samvad-hq/samvad-weather/pkg/publishers"
)

// EventPublisher publishes observations downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
