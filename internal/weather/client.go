// Package weather fetches current conditions for configured locations.
package weather

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/samvad-hq/samvad-weather/internal/domain"
	"github.com/samvad-hq/samvad-weather/pkg/httpclient"
)

// Fetcher returns the current conditions for a location.
type Fetcher interface {
	Current(ctx context.Context, loc Location) (domain.Observation, error)
}

// Client fetches current conditions from a Weatherbit-compatible API.
type Client struct {
	requester httpclient.Requester
	baseURL   string
	apiKey    string
}

// NewClient builds a weather client issuing requests through requester.
func NewClient(requester httpclient.Requester, baseURL, apiKey string) *Client {
	return &Client{
		requester: requester,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:    strings.TrimSpace(apiKey),
	}
}

// Current fetches the latest observation for loc.
func (c *Client) Current(ctx context.Context, loc Location) (domain.Observation, error) {
	if c == nil || c.requester == nil {
		return domain.Observation{}, fmt.Errorf("weather client is not initialized")
	}

	params := map[string]any{
		"lat": strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(loc.Lon, 'f', -1, 64),
	}
	if c.apiKey != "" {
		params["key"] = c.apiKey
	}
	include := loc.Include
	if include == "" {
		include = defaultInclude
	}
	params["include"] = include

	out := c.requester.Do(ctx, httpclient.Descriptor{
		Method:   httpclient.MethodGet,
		URL:      c.baseURL + "/current",
		Params:   httpclient.Params(params),
		Encoding: httpclient.PathParameter,
	})
	if out.Err != nil {
		return domain.Observation{}, fmt.Errorf("fetch current weather for %s: %w", loc.ID, out.Err)
	}
	if out.Meta == nil {
		return domain.Observation{}, fmt.Errorf("fetch current weather for %s: no response", loc.ID)
	}
	if out.Meta.StatusCode < http.StatusOK || out.Meta.StatusCode >= http.StatusMultipleChoices {
		return domain.Observation{}, fmt.Errorf("current weather for %s returned status %d body: %s",
			loc.ID, out.Meta.StatusCode, responseSnippet(out.Body))
	}

	obs, err := parseCurrent(out.Body)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("decode current weather for %s: %w", loc.ID, err)
	}
	return obs, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
