package httpclient

import "context"

// Requester issues a single request and returns its outcome.
// Callers depend on this so tests can inject fakes instead of a live client.
type Requester interface {
	Do(ctx context.Context, desc Descriptor) Outcome
}

// AsyncRequester issues requests without blocking the caller.
type AsyncRequester interface {
	Request(ctx context.Context, desc Descriptor, cb Callback)
	Go(ctx context.Context, desc Descriptor) <-chan Outcome
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
