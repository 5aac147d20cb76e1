package core

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testBaseURL      = "http://gateway.test/api/"
	testClientID     = "6f1c1a52-6a4b-4d8f-9a39-4b2f3f9b6a11"
	testClientSecret = "client-secret"
)

type scriptedResponse struct {
	status int
	body   string
	err    error
}

func reply(status int, body string) scriptedResponse {
	return scriptedResponse{status: status, body: body}
}

func authOK(token string) scriptedResponse {
	return reply(200, `{"token":"`+token+`","wasSuccessful":true}`)
}

// scriptedTransport answers each endpoint from a queue. The last response of a
// queue repeats once the queue is drained.
type scriptedTransport struct {
	mu     sync.Mutex
	routes map[string][]scriptedResponse
	calls  []TransportRequest
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{routes: map[string][]scriptedResponse{}}
}

func (s *scriptedTransport) on(endpoint string, responses ...scriptedResponse) *scriptedTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[endpoint] = append(s.routes[endpoint], responses...)
	return s
}

func (s *scriptedTransport) Kind() string { return "scripted" }

func (s *scriptedTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	endpoint := strings.TrimPrefix(req.URL, testBaseURL)
	queue := s.routes[endpoint]
	if len(queue) == 0 {
		return TransportResponse{StatusCode: 404, Body: []byte(`{"wasSuccessful":false,"message":"no route"}`)}, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		s.routes[endpoint] = queue[1:]
	}
	if next.err != nil {
		return TransportResponse{}, next.err
	}
	return TransportResponse{StatusCode: next.status, Body: []byte(next.body)}, nil
}

func (s *scriptedTransport) callsTo(endpoint string) []TransportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []TransportRequest{}
	for _, call := range s.calls {
		if strings.TrimPrefix(call.URL, testBaseURL) == endpoint {
			out = append(out, call)
		}
	}
	return out
}

func (s *scriptedTransport) count(endpoint string) int {
	return len(s.callsTo(endpoint))
}

func (s *scriptedTransport) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func bearerTokens(calls []TransportRequest) []string {
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, strings.TrimPrefix(call.Headers["Authorization"], "Bearer "))
	}
	return out
}

func decodeBody(t *testing.T, req TransportRequest) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(req.Body, &out); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return out
}

func testConfig() Config {
	return Config{
		BaseURL:      testBaseURL,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}
}

func testOptions(transport TransportAdapter, opts ...Option) []Option {
	base := []Option{
		WithTransport(transport),
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}
	return append(base, opts...)
}

// newTestClient builds an authenticated client. The transport must answer
// client/auth.
func newTestClient(t *testing.T, transport *scriptedTransport, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), testConfig(), testOptions(transport, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// newUnauthenticatedClient builds a client without running client/auth.
func newUnauthenticatedClient(t *testing.T, transport *scriptedTransport, opts ...Option) *Client {
	t.Helper()
	client, err := buildClient(context.Background(), testConfig(), testOptions(transport, opts...)...)
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return client
}

type countingIssuer struct {
	mu    sync.Mutex
	store *credentialStore
	calls int
	next  string
	err   error
	delay time.Duration
}

func (i *countingIssuer) Authenticate(context.Context) (SessionToken, error) {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	if i.delay > 0 {
		time.Sleep(i.delay)
	}
	if i.err != nil {
		return SessionToken{}, i.err
	}
	token := SessionToken{Value: i.next, AcquiredAt: time.Now().UTC()}
	i.store.SetToken(token)
	return token, nil
}

func (i *countingIssuer) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type captureActivitySink struct {
	mu      sync.Mutex
	entries []ActivityEntry
	err     error
}

func (s *captureActivitySink) Record(_ context.Context, entry ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *captureActivitySink) snapshot() []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActivityEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
