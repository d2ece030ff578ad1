package ir

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TargetKind identifies what a fixture target stubs.
type TargetKind string

const (
	// TargetMethod stubs a method or function registered under Type#method.
	TargetMethod TargetKind = "method"

	// TargetEnv stubs an environment variable lookup.
	TargetEnv TargetKind = "env"

	// TargetConst stubs a named constant.
	TargetConst TargetKind = "const"

	// TargetHTTP stubs an outbound HTTP request (method + host/path).
	TargetHTTP TargetKind = "http"
)

// TakesArguments reports whether calls to targets of this kind carry an
// argument signature. Environment and constant lookups never do.
func (k TargetKind) TakesArguments() bool {
	return k == TargetMethod || k == TargetHTTP
}

// TargetKey is the stable identity of a target, e.g. "method:Payment#pay"
// or "http:GET www.example.com/foo".
type TargetKey string

// Target is a parsed target descriptor.
type Target struct {
	Kind TargetKind `json:"kind"`

	// Name is the kind-specific identity: "Payment#pay", "FOO",
	// "TIMEOUT", or "GET www.example.com/foo".
	Name string `json:"name"`

	// Descriptor is the text as written in the fixture document.
	Descriptor string `json:"descriptor,omitempty"`
}

// Key returns the target key. The name is NFC-normalized, so a name
// spelled with combining marks and its precomposed form are one target.
func (t Target) Key() TargetKey {
	return TargetKey(string(t.Kind) + ":" + norm.NFC.String(t.Name))
}

// HTTPTarget returns the target for a request with the given method and
// URL. The scheme is ignored, the method upper-cased, the host
// lower-cased and an empty path becomes "/". The raw query is kept.
//
// Example: HTTPTarget("get", "https://WWW.example.com/foo") has key
// "http:GET www.example.com/foo".
func HTTPTarget(method string, u *url.URL) Target {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	name := strings.ToUpper(method) + " " + strings.ToLower(u.Host) + path
	if u.RawQuery != "" {
		name += "?" + u.RawQuery
	}
	return Target{Kind: TargetHTTP, Name: name}
}

// Args is the argument list of one call: positional values plus an
// optional trailing options bag.
type Args struct {
	Positional IRArray
	Options    IRObject
}

// NoArgs is the empty argument list used by environment and constant
// lookups.
var NoArgs = Args{}

// NewArgs builds positional-only Args from IR values.
func NewArgs(positional ...IRValue) Args {
	return Args{Positional: IRArray(positional)}
}

// WithOptions returns a copy of a with the options bag replaced.
func (a Args) WithOptions(opts IRObject) Args {
	a.Options = opts
	return a
}

// Predicate selects which calls a clause applies to.
// It is a closed sum type: Exact or Universal.
type Predicate interface {
	predicate()
}

// Exact matches calls whose normalized arguments equal Args.
type Exact struct {
	Args Args
}

func (Exact) predicate() {}

// Universal matches every call not claimed by an Exact clause.
type Universal struct{}

func (Universal) predicate() {}

// ErrorSpec describes the error a raise action produces.
type ErrorSpec struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ActionEntry is one declared outcome of a call.
// Exactly one of Return and Raise is set; an explicit nil return is
// represented by IRNull, never by a nil Return.
type ActionEntry struct {
	Return IRValue
	Raise  *ErrorSpec

	// Count is how many consecutive invocations this entry covers
	// before the sequence advances. Always >= 1 after compilation.
	Count int
}

// IsRaise reports whether the entry raises instead of returning.
func (a ActionEntry) IsRaise() bool {
	return a.Raise != nil
}

// Clause pairs a predicate with its ordered action sequence.
type Clause struct {
	Predicate Predicate
	Actions   []ActionEntry

	// Line is the 1-based source line, or 0 when unknown.
	Line int
}

// TargetSpec is every clause declared for one target.
type TargetSpec struct {
	Target  Target
	Clauses []Clause
	Line    int

	// Headers are the request header names the target's clauses match
	// on, lower-cased and sorted. HTTP targets only.
	Headers []string
}

// Document is a parsed fixture document in declaration order.
type Document struct {
	Source  string
	Targets []TargetSpec
}

// Response is the structured return value of an HTTP target.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// ResponseFromValue decodes an HTTP return value.
//
// Accepted shape: {status: int, headers: {name: scalar}, body: any}.
// Status defaults to 200. A non-string body is encoded as JSON.
func ResponseFromValue(v IRValue) (Response, error) {
	obj, ok := v.(IRObject)
	if !ok {
		return Response{}, fmt.Errorf("http response must be a mapping, got %T", v)
	}

	resp := Response{Status: http.StatusOK}
	for _, key := range obj.SortedKeys() {
		val := obj[key]
		switch key {
		case "status":
			n, ok := val.(IRInt)
			if !ok {
				return Response{}, fmt.Errorf("http response status must be an integer, got %T", val)
			}
			if n < 100 || n > 599 {
				return Response{}, fmt.Errorf("http response status %d out of range", n)
			}
			resp.Status = int(n)
		case "headers":
			headers, ok := val.(IRObject)
			if !ok {
				return Response{}, fmt.Errorf("http response headers must be a mapping, got %T", val)
			}
			resp.Headers = make(map[string]string, len(headers))
			for name, hv := range headers {
				s, err := scalarString(hv)
				if err != nil {
					return Response{}, fmt.Errorf("header %q: %w", name, err)
				}
				resp.Headers[http.CanonicalHeaderKey(name)] = s
			}
		case "body":
			switch b := val.(type) {
			case IRString:
				resp.Body = string(b)
			case IRNull:
			default:
				data, err := MarshalIRValue(b)
				if err != nil {
					return Response{}, fmt.Errorf("http response body: %w", err)
				}
				resp.Body = string(data)
			}
		default:
			return Response{}, fmt.Errorf("unknown http response key %q", key)
		}
	}
	return resp, nil
}

func scalarString(v IRValue) (string, error) {
	switch s := v.(type) {
	case IRString:
		return string(s), nil
	case IRInt:
		return strconv.FormatInt(int64(s), 10), nil
	case IRBool:
		return strconv.FormatBool(bool(s)), nil
	default:
		return "", fmt.Errorf("must be a scalar, got %T", v)
	}
}
