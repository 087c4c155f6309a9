package httpclient

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// encoded is the wire form of a descriptor's parameters.
type encoded struct {
	url         string
	contentType string
	body        []byte
}

// encodeParams places p into the URL or body according to enc. A non-nil error
// means the JSON payload could not be serialized; the returned request is still
// usable and simply carries no body.
func encodeParams(target *url.URL, p Payload, enc Encoding, raw bool) (encoded, error) {
	out := encoded{url: target.String()}

	switch enc {
	case JSON:
		out.contentType = contentTypeJSON
		var v any
		switch p.Kind() {
		case PayloadKeyValues:
			v = p.Values()
		case PayloadList:
			v = p.List()
		default:
			return out, nil
		}
		body, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode json payload: %w", err)
		}
		out.body = body

	case FormURLEncoded:
		out.contentType = contentTypeForm
		if p.Kind() == PayloadKeyValues {
			out.body = []byte(joinPairs(p.Values(), raw))
		}

	default:
		// The JSON content type is kept for query requests as well; servers we
		// talk to expect it on every call.
		out.contentType = contentTypeJSON
		if p.Kind() != PayloadKeyValues {
			return out, nil
		}
		query := joinPairs(p.Values(), raw)
		if query == "" {
			return out, nil
		}
		u := *target
		if u.RawQuery == "" {
			u.RawQuery = query
		} else {
			u.RawQuery += "&" + query
		}
		out.url = u.String()
	}

	return out, nil
}

// joinPairs renders values as k=v pairs joined by '&', sorted by key. With raw
// set, keys and values are interpolated verbatim without percent-encoding,
// which is not safe for arbitrary input.
func joinPairs(values map[string]any, raw bool) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := stringify(values[k])
		if raw {
			pairs = append(pairs, k+"="+v)
			continue
		}
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	return strings.Join(pairs, "&")
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// DecodeJSON parses a response body into generic JSON values.
func DecodeJSON(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("decode json: empty body")
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}
