package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-weather/pkg/httpclient"
)

type httpPublisher struct {
	id     string
	method httpclient.Method
	url    string
	client httpclient.Requester
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	cfg = sanitizePublisherConfig(cfg)

	headers := cfg.HTTP.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	trust := httpclient.TrustStandard
	if cfg.HTTP.InsecureSkipVerify {
		trust = httpclient.TrustAcceptAll
	}

	client, err := httpclient.NewClient(httpclient.Options{
		DefaultTimeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		GlobalHeaders:  headers,
		Trust:          trust,
		Logger:         ensureLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("publisher %q http client: %w", cfg.ID, err)
	}

	return &httpPublisher{
		id:     cfg.ID,
		method: httpclient.Method(cfg.HTTP.Method),
		url:    cfg.HTTP.URL,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	fields, err := evt.Fields()
	if err != nil {
		return err
	}

	out := h.client.Do(ctx, httpclient.Descriptor{
		Method:   h.method,
		URL:      h.url,
		Params:   httpclient.Params(fields),
		Encoding: httpclient.JSON,
	})
	if out.Err != nil {
		return fmt.Errorf("http request: %w", out.Err)
	}
	if out.Meta == nil {
		return fmt.Errorf("http request to %s was not sent", h.url)
	}
	if out.Meta.StatusCode < http.StatusOK || out.Meta.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http response status %d: %s", out.Meta.StatusCode, readBodySnippet(out.Body))
	}

	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"status":       out.Meta.StatusCode,
	})
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
