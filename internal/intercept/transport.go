package intercept

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coderberry/fixturama/internal/engine"
	"github.com/coderberry/fixturama/internal/fixture"
	"github.com/coderberry/fixturama/internal/ir"
)

// Transport is an http.RoundTripper that answers declared requests from
// an installed scope and sends every other request through Base.
//
// Requests are keyed "http:METHOD host/path[?query]"; the scheme is
// ignored. The request body and the headers the target's clauses name
// become the call signature {"body": ..., "headers": {...}}; undeclared
// headers never affect matching.
type Transport struct {
	// Base handles requests the fixture does not declare.
	// Default: http.DefaultTransport.
	Base http.RoundTripper

	slot
}

// NewTransport creates a Transport over base. A nil base means
// http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base}
}

// Install routes the fixture's http targets through scope.
func (t *Transport) Install(scope *engine.Scope) (restore func()) {
	return t.install(scope)
}

// Client returns an *http.Client using t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	target := ir.HTTPTarget(req.Method, req.URL)
	key := target.Key()

	scope := t.current()
	if scope == nil || !scope.Stubs(key) {
		slog.Debug("http passthrough", "target", key)
		return t.base().RoundTrip(req)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	table, _ := scope.Fixture().Table(key)
	headers := matchedHeaders(req.Header, table.Headers())

	action, err := scope.Resolve(key, fixture.RequestArgs(body, headers))
	if err != nil {
		return nil, err
	}
	if action.IsRaise() {
		return nil, action.Raise
	}

	resp, err := ir.ResponseFromValue(action.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return buildResponse(req, resp), nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func readBody(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return "", nil
	}
	defer req.Body.Close()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// matchedHeaders picks the named headers present on the request.
// Repeated values are joined with ", ".
func matchedHeaders(h http.Header, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if values := h.Values(name); len(values) > 0 {
			out[name] = strings.Join(values, ", ")
		}
	}
	return out
}

func buildResponse(req *http.Request, r ir.Response) *http.Response {
	header := make(http.Header, len(r.Headers))
	for k, v := range r.Headers {
		header.Set(k, v)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
