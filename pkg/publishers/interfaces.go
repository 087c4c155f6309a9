package publishers

import "context"

// Publisher sends events to a downstream sink (log, HTTP, SQS, etc).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
