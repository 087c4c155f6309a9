package httpclient

import (
	"net/url"
	"testing"
)

func TestJoinPairsEscapesByDefault(t *testing.T) {
	got := joinPairs(map[string]any{"a b": "c&d", "n": 3}, false)
	if got != "a+b=c%26d&n=3" {
		t.Fatalf("joinPairs = %q", got)
	}
}

func TestJoinPairsRawKeepsLiterals(t *testing.T) {
	got := joinPairs(map[string]any{"a b": "c&d", "nil": nil}, true)
	if got != "a b=c&d&nil=" {
		t.Fatalf("joinPairs raw = %q", got)
	}
}

func TestEncodeParamsIgnoresListForQueryModes(t *testing.T) {
	target, _ := url.Parse("https://example.com/p")
	list := ParamList([]map[string]any{{"a": 1}})

	for _, enc := range []Encoding{PathParameter, FormURLEncoded} {
		out, err := encodeParams(target, list, enc, false)
		if err != nil {
			t.Fatalf("%s: %v", enc, err)
		}
		if out.url != "https://example.com/p" || out.body != nil {
			t.Fatalf("%s: list payload leaked into request: %+v", enc, out)
		}
	}
}

func TestEncodeParamsEmptyPayloads(t *testing.T) {
	target, _ := url.Parse("https://example.com/p")

	out, err := encodeParams(target, NoParams(), JSON, false)
	if err != nil || out.body != nil || out.contentType != contentTypeJSON {
		t.Fatalf("json empty: %+v err=%v", out, err)
	}

	out, _ = encodeParams(target, Params(map[string]any{}), PathParameter, false)
	if out.url != "https://example.com/p" {
		t.Fatalf("empty query should not add '?': %q", out.url)
	}
}

func TestParamsNilIsEmpty(t *testing.T) {
	if Params(nil).Kind() != PayloadEmpty || ParamList(nil).Kind() != PayloadEmpty {
		t.Fatalf("nil payloads should be empty")
	}
}

func TestDecodeJSON(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["ok"] != true {
		t.Fatalf("decoded = %#v", v)
	}
	if _, err := DecodeJSON(nil); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestMethodNormalize(t *testing.T) {
	if Method("").normalize() != "GET" || Method("TRACE").normalize() != "GET" {
		t.Fatalf("unknown methods should fall back to GET")
	}
	if MethodPatch.normalize() != "PATCH" {
		t.Fatalf("PATCH not preserved")
	}
}

func TestParseTrustPolicy(t *testing.T) {
	if ParseTrustPolicy("accept_all") != TrustAcceptAll || ParseTrustPolicy("") != TrustStandard {
		t.Fatalf("ParseTrustPolicy mismatch")
	}
}
