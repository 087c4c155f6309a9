package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-weather/pkg/httpclient"
)

const sampleCurrent = `{
  "count": 1,
  "data": [{
    "city_name": "Raleigh",
    "country_code": "US",
    "lat": 35.7796,
    "lon": -78.6382,
    "temp": 21.5,
    "app_temp": 22.1,
    "rh": 64,
    "wind_spd": 3.6,
    "wind_cdir": "SW",
    "pres": 1009.5,
    "ob_time": "2021-04-05 16:45",
    "weather": {"icon": "c02d", "code": 802, "description": "Scattered clouds"}
  }],
  "minutely": [{"precip": 0.25}, {"precip": 0.5}, {"precip": 0}]
}`

// fakeRequester records the descriptor and returns a canned outcome.
type fakeRequester struct {
	got httpclient.Descriptor
	out httpclient.Outcome
}

func (f *fakeRequester) Do(_ context.Context, desc httpclient.Descriptor) httpclient.Outcome {
	f.got = desc
	return f.out
}

func okOutcome(body string) httpclient.Outcome {
	return httpclient.Outcome{
		Body: []byte(body),
		Meta: &httpclient.ResponseMeta{StatusCode: http.StatusOK},
	}
}

func TestCurrentBuildsQueryRequest(t *testing.T) {
	req := &fakeRequester{out: okOutcome(sampleCurrent)}
	client := NewClient(req, "https://api.weatherbit.io/v2.0/", "secret")

	obs, err := client.Current(context.Background(), DefaultLocation)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if req.got.Method != httpclient.MethodGet || req.got.Encoding != httpclient.PathParameter {
		t.Fatalf("unexpected descriptor %+v", req.got)
	}
	if req.got.URL != "https://api.weatherbit.io/v2.0/current" {
		t.Fatalf("URL = %q", req.got.URL)
	}
	params := req.got.Params.Values()
	if params["lat"] != "35.7796" || params["lon"] != "-78.6382" || params["key"] != "secret" || params["include"] != "minutely" {
		t.Fatalf("params = %#v", params)
	}
	if obs.City != "Raleigh" || obs.TemperatureC != 21.5 {
		t.Fatalf("unexpected observation %+v", obs)
	}
}

func TestCurrentReturnsErrorOnNon2xx(t *testing.T) {
	req := &fakeRequester{out: httpclient.Outcome{
		Body: []byte(`{"error":"API key not valid"}`),
		Meta: &httpclient.ResponseMeta{StatusCode: http.StatusForbidden},
	}}
	_, err := NewClient(req, "https://example.com", "").Current(context.Background(), DefaultLocation)
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestCurrentWrapsTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	req := &fakeRequester{out: httpclient.Outcome{Err: boom}}
	_, err := NewClient(req, "https://example.com", "").Current(context.Background(), DefaultLocation)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestCurrentHandlesMissingResponse(t *testing.T) {
	req := &fakeRequester{out: httpclient.Outcome{}}
	_, err := NewClient(req, "not a url", "").Current(context.Background(), DefaultLocation)
	if err == nil || !strings.Contains(err.Error(), "no response") {
		t.Fatalf("expected no response error, got %v", err)
	}
}

func TestParseCurrentExtractsFields(t *testing.T) {
	obs, err := parseCurrent([]byte(sampleCurrent))
	if err != nil {
		t.Fatalf("parseCurrent: %v", err)
	}
	if obs.CountryCode != "US" || obs.Description != "Scattered clouds" || obs.WindDirection != "SW" {
		t.Fatalf("unexpected text fields %+v", obs)
	}
	if obs.FeelsLikeC != 22.1 || obs.HumidityPct != 64 || obs.PressureMB != 1009.5 {
		t.Fatalf("unexpected numeric fields %+v", obs)
	}
	if obs.PrecipNextHourMM != 0.75 {
		t.Fatalf("PrecipNextHourMM = %v", obs.PrecipNextHourMM)
	}
	want := time.Date(2021, time.April, 5, 16, 45, 0, 0, time.UTC)
	if !obs.ObservedAt.Equal(want) {
		t.Fatalf("ObservedAt = %v", obs.ObservedAt)
	}
}

func TestParseCurrentRejectsBadPayloads(t *testing.T) {
	for _, body := range []string{"", "not json", `{"data": []}`, `{"count": 0}`} {
		if _, err := parseCurrent([]byte(body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestCurrentOverHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2.0/current" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("lat") != "35.7796" {
			http.Error(w, "bad lat", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCurrent))
	}))
	defer srv.Close()

	hc, err := httpclient.NewClient(httpclient.Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	obs, err := NewClient(hc, srv.URL+"/v2.0", "k").Current(context.Background(), DefaultLocation)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if obs.City != "Raleigh" {
		t.Fatalf("City = %q", obs.City)
	}
}
