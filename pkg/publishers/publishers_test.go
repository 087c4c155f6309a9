package publishers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-weather/internal/domain"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sinks.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
      method: put
  - id: stdout
    type: log
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "stdout" {
		t.Fatalf("expected http2 and stdout enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != "PUT" {
		t.Fatalf("method should be upper-cased, got %q", enabled[0].HTTP.Method)
	}
	if enabled[0].HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", enabled[0].HTTP.TimeoutSeconds)
	}
	if cfg, ok := reg.ByID("http1"); !ok || cfg.EnabledValue() {
		t.Fatalf("http1 should be present and disabled")
	}
}

func TestLoadRegistryJSONWithAWSCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sinks.json")
	raw := `{"publishers":[
  {"id":"queue","type":"sqs","sqs":{"uri":" https://sqs.us-east-1.amazonaws.com/1/q ","region":"us-east-1","access_key_id":"AKID","secret_access_key":"secret"}},
  {"id":"topic","type":"sns","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:t","region":"us-east-1"}},
  {"id":"gcp","type":"pubsub","pubsub":{"project_id":"p","topic":"weather"}}
]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	queue, ok := reg.ByID("queue")
	if !ok {
		t.Fatalf("queue missing")
	}
	if queue.SQS.QueueURL != "https://sqs.us-east-1.amazonaws.com/1/q" {
		t.Fatalf("queue url not trimmed: %q", queue.SQS.QueueURL)
	}
	if queue.SQS.AccessKeyID != "AKID" || queue.SQS.SecretAccessKey != "secret" {
		t.Fatalf("inline credentials not decoded: %+v", queue.SQS.AWSCredentials)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 publishers, got %d", len(reg.All()))
	}
}

func TestLoadRegistryRejectsEmptyAndMissing(t *testing.T) {
	if _, err := LoadRegistry(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("publishers: []\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for file without publishers")
	}
}

func TestNewConfigRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewConfigRegistry(
		PublisherConfig{ID: "a", Type: TypeLog},
		PublisherConfig{ID: "a", Type: TypeLog},
	)
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing id":      {Type: TypeLog},
		"missing type":    {ID: "x"},
		"unknown type":    {ID: "x", Type: "smtp"},
		"missing http":    {ID: "h1", Type: TypeHTTP},
		"bad http method": {ID: "h1", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x", Method: "GET"}},
		"sqs no region":   {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		"sns no topic":    {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		"pubsub no topic": {ID: "p", Type: TypePubSub, PubSub: &GCPQueueConfig{ProjectID: "p"}},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(sanitizePublisherConfig(cfg)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestEventFieldsUsesJSONKeys(t *testing.T) {
	observed := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	evt := NewEvent("raleigh", "Raleigh", domain.Observation{City: "Raleigh", ObservedAt: observed})

	fields, err := evt.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if fields["location_id"] != "raleigh" {
		t.Fatalf("unexpected location_id %v", fields["location_id"])
	}
	obs, ok := fields["observation"].(map[string]any)
	if !ok {
		t.Fatalf("observation should be an object, got %T", fields["observation"])
	}
	if obs["observed_at"] != "2024-05-01T12:30:00Z" {
		t.Fatalf("observed_at should be RFC3339, got %v", obs["observed_at"])
	}
	if evt.CollectedAt.IsZero() {
		t.Fatalf("collected_at should be stamped")
	}
}
