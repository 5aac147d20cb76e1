package devkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goliatone/go-hashgate/core"
)

type TransportScript struct {
	Response core.TransportResponse
	Err      error
}

// FakeTransportAdapter answers requests from per-endpoint scripts. Each
// endpoint consumes its scripts in order and repeats the last one; endpoints
// without scripts answer 404.
type FakeTransportAdapter struct {
	mu       sync.Mutex
	routes   map[string][]TransportScript
	served   map[string]int
	requests []core.TransportRequest
}

func NewFakeTransportAdapter() *FakeTransportAdapter {
	return &FakeTransportAdapter{
		routes: map[string][]TransportScript{},
		served: map[string]int{},
	}
}

// On appends scripts for endpoint, e.g. core.EndpointUserGet.
func (a *FakeTransportAdapter) On(endpoint string, scripts ...TransportScript) *FakeTransportAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := normalizeEndpoint(endpoint)
	a.routes[key] = append(a.routes[key], scripts...)
	return a
}

// Reply is shorthand for a scripted JSON response.
func Reply(status int, body string) TransportScript {
	return TransportScript{Response: core.TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}}
}

// Fail is shorthand for a scripted transport failure.
func Fail(err error) TransportScript {
	return TransportScript{Err: err}
}

func (a *FakeTransportAdapter) Kind() string {
	return "fake"
}

func (a *FakeTransportAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, fmt.Errorf("devkit: fake transport adapter is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, cloneTransportRequest(req))
	key := matchRoute(a.routes, req.URL)
	scripts := a.routes[key]
	if len(scripts) == 0 {
		return core.TransportResponse{
			StatusCode: http.StatusNotFound,
			Headers:    map[string]string{},
			Body:       []byte(`{"wasSuccessful":false,"message":"no script"}`),
		}, nil
	}
	index := a.served[key]
	a.served[key] = index + 1
	if index >= len(scripts) {
		index = len(scripts) - 1
	}
	script := scripts[index]
	return cloneTransportResponse(script.Response), script.Err
}

func (a *FakeTransportAdapter) Requests() []core.TransportRequest {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(a.requests))
	for _, item := range a.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

// Calls counts requests sent to endpoint.
func (a *FakeTransportAdapter) Calls(endpoint string) int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := normalizeEndpoint(endpoint)
	count := 0
	for _, req := range a.requests {
		if endpointMatches(req.URL, key) {
			count++
		}
	}
	return count
}

func matchRoute(routes map[string][]TransportScript, rawURL string) string {
	best := ""
	for key := range routes {
		if endpointMatches(rawURL, key) && len(key) > len(best) {
			best = key
		}
	}
	return best
}

func endpointMatches(rawURL string, endpoint string) bool {
	if endpoint == "" {
		return false
	}
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}
	path = strings.TrimSuffix(path, "/")
	return path == endpoint || strings.HasSuffix(path, "/"+endpoint)
}

func normalizeEndpoint(endpoint string) string {
	return strings.Trim(strings.TrimSpace(endpoint), "/")
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              map[string]string{},
		Query:                map[string]string{},
		Body:                 append([]byte(nil), in.Body...),
		Metadata:             map[string]any{},
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Query {
		out.Query[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

func cloneTransportResponse(in core.TransportResponse) core.TransportResponse {
	out := core.TransportResponse{
		StatusCode: in.StatusCode,
		Headers:    map[string]string{},
		Body:       append([]byte(nil), in.Body...),
		Metadata:   map[string]any{},
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	for key, value := range in.Metadata {
		out.Metadata[key] = value
	}
	return out
}

var _ core.TransportAdapter = (*FakeTransportAdapter)(nil)
