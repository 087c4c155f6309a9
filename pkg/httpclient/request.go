package httpclient

import (
	"net/http"
	"time"
)

// Method is one of the REST verbs the client issues.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// normalize maps unknown verbs to GET.
func (m Method) normalize() string {
	switch m {
	case MethodPost, MethodPut, MethodPatch, MethodDelete:
		return string(m)
	default:
		return http.MethodGet
	}
}

// Encoding selects where request parameters are placed.
type Encoding int

const (
	// PathParameter appends key-value pairs to the URL as a query string.
	PathParameter Encoding = iota
	// JSON serializes the payload as the request body.
	JSON
	// FormURLEncoded serializes key-value pairs as a urlencoded body.
	FormURLEncoded
)

func (e Encoding) String() string {
	switch e {
	case JSON:
		return "JSON"
	case FormURLEncoded:
		return "FormURLEncoded"
	default:
		return "PathParameter"
	}
}

// PayloadKind tags the Payload variant.
type PayloadKind int

const (
	PayloadEmpty PayloadKind = iota
	PayloadKeyValues
	PayloadList
)

// Payload carries request parameters. The zero value is empty.
type Payload struct {
	kind   PayloadKind
	values map[string]any
	list   []map[string]any
}

// NoParams returns an empty payload.
func NoParams() Payload { return Payload{} }

// Params wraps a key-value map. A nil map yields an empty payload.
func Params(values map[string]any) Payload {
	if values == nil {
		return Payload{}
	}
	return Payload{kind: PayloadKeyValues, values: values}
}

// ParamList wraps a list of key-value maps. A nil list yields an empty payload.
func ParamList(list []map[string]any) Payload {
	if list == nil {
		return Payload{}
	}
	return Payload{kind: PayloadList, list: list}
}

// Kind reports which variant p holds.
func (p Payload) Kind() PayloadKind { return p.kind }

// Values returns the key-value map, or nil for other variants.
func (p Payload) Values() map[string]any { return p.values }

// List returns the list of maps, or nil for other variants.
func (p Payload) List() []map[string]any { return p.list }

// Descriptor describes a single request. Build a fresh one per call.
type Descriptor struct {
	Method   Method
	URL      string
	Params   Payload
	Headers  map[string]string
	Encoding Encoding
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// ResponseMeta is the status line and headers of a received response.
type ResponseMeta struct {
	StatusCode int
	Status     string
	Header     http.Header
	URL        string
}

// Outcome is the result of one request. Absent parts are nil.
//
// A response with any status code is reported with a nil Err; callers
// inspect Meta.StatusCode to tell failure from success.
type Outcome struct {
	Body []byte
	Err  error
	Meta *ResponseMeta
}

// Callback receives the outcome of an asynchronous request.
type Callback func(body []byte, err error, meta *ResponseMeta)
