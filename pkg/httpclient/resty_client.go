package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a request when neither the client nor the call sets one.
const DefaultTimeout = 60 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL resolves relative request paths. Optional.
	BaseURL string
	// DefaultTimeout applies when a Descriptor carries no timeout.
	DefaultTimeout time.Duration
	// GlobalHeaders seed the client's header map. Nil selects DefaultGlobalHeaders.
	GlobalHeaders map[string]string
	// Trust selects certificate validation. Zero value is TrustStandard.
	Trust TrustPolicy
	// RawEncoding joins query and form pairs without percent-encoding.
	RawEncoding bool
	// Transport replaces the underlying round tripper. An *http.Transport is cloned
	// and given the TrustAcceptAll settings; other round trippers own their TLS.
	Transport http.RoundTripper
	Logger    Logger
	Metrics   *Metrics
}

// DefaultGlobalHeaders returns the device headers sent on every request.
func DefaultGlobalHeaders() map[string]string {
	return map[string]string{
		"device_id": "-",
		"device_os": runtime.GOOS + "_" + runtime.GOARCH,
	}
}

// Client issues one HTTP request per call over a persistent resty client.
// It is safe for concurrent use.
type Client struct {
	client         *resty.Client
	baseURL        *url.URL
	defaultTimeout time.Duration
	rawEncoding    bool
	trust          TrustPolicy
	log            Logger
	metrics        *Metrics

	mu            sync.RWMutex
	globalHeaders map[string]string
}

// NewClient creates a Client from opts.
func NewClient(opts Options) (*Client, error) {
	log := ensureLogger(opts.Logger)

	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var base *url.URL
	if raw := strings.TrimSpace(opts.BaseURL); raw != "" {
		u, err := parseAbsolute(raw)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		base = u
	}

	headers := opts.GlobalHeaders
	if headers == nil {
		headers = DefaultGlobalHeaders()
	}
	global := make(map[string]string, len(headers))
	for k, v := range headers {
		if key := strings.TrimSpace(k); key != "" {
			global[http.CanonicalHeaderKey(key)] = v
		}
	}

	if opts.Trust == TrustAcceptAll {
		if trustApplies(opts.Transport) {
			log.WarnObj("certificate validation disabled for http client", "tls_trust", map[string]any{
				"trust_policy": opts.Trust.String(),
				"base_url":     opts.BaseURL,
			})
		} else {
			log.WarnObj("trust policy not applied to custom transport", "tls_trust", map[string]any{
				"trust_policy": opts.Trust.String(),
				"transport":    fmt.Sprintf("%T", opts.Transport),
			})
		}
	}

	return &Client{
		client:         newRestyBaseClient(opts, log),
		baseURL:        base,
		defaultTimeout: timeout,
		rawEncoding:    opts.RawEncoding,
		trust:          opts.Trust,
		log:            log,
		metrics:        opts.Metrics,
		globalHeaders:  global,
	}, nil
}

// newRestyBaseClient creates the resty.Client shared by every request.
func newRestyBaseClient(opts Options, log Logger) *resty.Client {
	c := resty.New()
	c.SetLogger(restyLogger{log: log})
	switch t := opts.Transport.(type) {
	case nil:
		c.SetTLSClientConfig(opts.Trust.tlsConfig(log))
	case *http.Transport:
		if opts.Trust == TrustAcceptAll {
			t = t.Clone()
			t.TLSClientConfig = opts.Trust.tlsConfig(log)
		}
		c.SetTransport(t)
	default:
		c.SetTransport(opts.Transport)
	}
	c.SetRetryCount(0)
	c.SetAllowGetMethodPayload(true)
	return c
}

// trustApplies reports whether the trust policy reaches the given transport.
// Only *http.Transport exposes its TLS settings.
func trustApplies(rt http.RoundTripper) bool {
	if rt == nil {
		return true
	}
	_, ok := rt.(*http.Transport)
	return ok
}

// DefaultTimeout returns the timeout applied when a call sets none.
func (c *Client) DefaultTimeout() time.Duration { return c.defaultTimeout }

// Trust returns the certificate policy the client was built with.
func (c *Client) Trust() TrustPolicy { return c.trust }

// SetGlobalHeader sets a header sent on every subsequent request.
func (c *Client) SetGlobalHeader(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	c.globalHeaders[http.CanonicalHeaderKey(key)] = value
	c.mu.Unlock()
}

// RemoveGlobalHeader drops a global header.
func (c *Client) RemoveGlobalHeader(key string) {
	c.mu.Lock()
	delete(c.globalHeaders, http.CanonicalHeaderKey(strings.TrimSpace(key)))
	c.mu.Unlock()
}

// GlobalHeaders returns a copy of the global header map.
func (c *Client) GlobalHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.globalHeaders))
	for k, v := range c.globalHeaders {
		out[k] = v
	}
	return out
}

// Request issues desc on a background goroutine and reports to cb when the
// transfer completes or fails. An unparsable URL invokes cb immediately with
// all arguments nil and performs no I/O.
func (c *Client) Request(ctx context.Context, desc Descriptor, cb Callback) {
	if cb == nil {
		cb = func([]byte, error, *ResponseMeta) {}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p, ok := c.prepare(desc)
	if !ok {
		cb(nil, nil, nil)
		return
	}

	go func() {
		out := c.execute(ctx, p)
		cb(out.Body, out.Err, out.Meta)
	}()
}

// Go is Request with the outcome delivered on a channel that receives exactly one value.
func (c *Client) Go(ctx context.Context, desc Descriptor) <-chan Outcome {
	ch := make(chan Outcome, 1)
	c.Request(ctx, desc, func(body []byte, err error, meta *ResponseMeta) {
		ch <- Outcome{Body: body, Err: err, Meta: meta}
	})
	return ch
}

// Do issues desc and blocks until it completes.
func (c *Client) Do(ctx context.Context, desc Descriptor) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	p, ok := c.prepare(desc)
	if !ok {
		return Outcome{}
	}
	return c.execute(ctx, p)
}

// prepared is a request ready to hand to resty.
type prepared struct {
	method  string
	url     string
	headers map[string]string
	body    []byte
	timeout time.Duration
}

func (c *Client) prepare(desc Descriptor) (prepared, bool) {
	target, err := c.resolveURL(desc.URL)
	if err != nil {
		c.log.ErrorObj("request url invalid; no request sent", "request_error", map[string]any{
			"url":   desc.URL,
			"error": err.Error(),
		})
		return prepared{}, false
	}

	enc, err := encodeParams(target, desc.Params, desc.Encoding, c.rawEncoding)
	if err != nil {
		c.log.ErrorObj("request payload not serializable; sending without body", "request_error", map[string]any{
			"url":      target.String(),
			"encoding": desc.Encoding.String(),
			"error":    err.Error(),
		})
	}

	headers := c.mergeHeaders(desc.Headers)
	headers["Content-Type"] = enc.contentType
	if len(enc.body) > 0 {
		headers["Content-Length"] = strconv.Itoa(len(enc.body))
	}
	headers["Cache-Control"] = "no-cache"
	headers["Pragma"] = "no-cache"

	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	return prepared{
		method:  desc.Method.normalize(),
		url:     enc.url,
		headers: headers,
		body:    enc.body,
		timeout: timeout,
	}, true
}

// mergeHeaders layers per-call headers over the global ones.
func (c *Client) mergeHeaders(overrides map[string]string) map[string]string {
	c.mu.RLock()
	out := make(map[string]string, len(c.globalHeaders)+len(overrides)+4)
	for k, v := range c.globalHeaders {
		out[k] = v
	}
	c.mu.RUnlock()

	for k, v := range overrides {
		if key := strings.TrimSpace(k); key != "" {
			out[http.CanonicalHeaderKey(key)] = v
		}
	}
	return out
}

func (c *Client) execute(ctx context.Context, p prepared) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := c.client.R().
		SetContext(ctx).
		SetHeaders(p.headers)
	if len(p.body) > 0 {
		req.SetBody(p.body)
	}

	done := c.metrics.begin(p.method)
	resp, err := req.Execute(p.method, p.url)
	out := toOutcome(resp, err)
	if out.Err != nil {
		out.Err = fmt.Errorf("%s %s: %w", p.method, p.url, out.Err)
	}
	done(out)

	if out.Err != nil {
		c.log.WarnObj("http request failed", "request_error", map[string]any{
			"method": p.method,
			"url":    p.url,
			"error":  out.Err.Error(),
		})
	} else {
		c.log.DebugObj("http request completed", "request_result", map[string]any{
			"method":     p.method,
			"url":        p.url,
			"status":     out.Meta.StatusCode,
			"body_bytes": len(out.Body),
		})
	}
	return out
}

// toOutcome maps a resty result onto the tri-state outcome. Every received
// response, whatever its status, is delivered with a nil error.
func toOutcome(resp *resty.Response, err error) Outcome {
	if err != nil {
		return Outcome{Err: err}
	}
	if resp == nil || resp.RawResponse == nil {
		return Outcome{Err: fmt.Errorf("no response received")}
	}

	meta := &ResponseMeta{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header().Clone(),
	}
	if resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		meta.URL = resp.RawResponse.Request.URL.String()
	}

	var body []byte
	if b := resp.Body(); len(b) > 0 {
		body = b
	}
	return Outcome{Body: body, Meta: meta}
}

func (c *Client) resolveURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if c.baseURL != nil && !u.IsAbs() {
		u = c.baseURL.ResolveReference(u)
	}
	return validateAbsolute(u)
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return validateAbsolute(u)
}

func validateAbsolute(u *url.URL) (*url.URL, error) {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return nil, fmt.Errorf("url %q has no scheme", u.String())
	default:
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", u.String())
	}
	return u, nil
}

// restyLogger routes resty's internal diagnostics to the client logger.
type restyLogger struct {
	log Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.ErrorObj("resty error", "resty", fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.WarnObj("resty warning", "resty", fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.DebugObj("resty debug", "resty", fmt.Sprintf(format, v...))
}
