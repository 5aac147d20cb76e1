package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-hashgate/core"
)

func TestRESTAdapter_SendsHeadersAndBody(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   string
		gotHeader http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"wasSuccessful":true}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: "post",
		URL:    server.URL + "/api/user/get",
		Headers: map[string]string{
			"Authorization": "Bearer tok-1",
			"Content-Type":  "application/json",
		},
		Body: []byte(`{"userId":"u1"}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.StatusCode != http.StatusCreated || string(res.Body) != `{"wasSuccessful":true}` {
		t.Fatalf("unexpected response %d %s", res.StatusCode, res.Body)
	}
	if res.Headers["Content-Type"] != "application/json" {
		t.Fatalf("expected flattened response headers, got %v", res.Headers)
	}
	if res.Metadata["kind"] != KindREST {
		t.Fatalf("expected kind metadata, got %v", res.Metadata)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/user/get" {
		t.Fatalf("unexpected request line %s %s", gotMethod, gotPath)
	}
	if gotBody != `{"userId":"u1"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
	if gotHeader.Get("Authorization") != "Bearer tok-1" || gotHeader.Get("User-Agent") != defaultUserAgent {
		t.Fatalf("unexpected headers %v", gotHeader)
	}
}

func TestRESTAdapter_DoesNotRetryUnauthorized(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	res, err := NewRESTAdapter(server.Client()).Do(context.Background(), core.TransportRequest{
		Method: http.MethodGet,
		URL:    server.URL + "/api/pool/info",
		Query:  map[string]string{"verbose": "1"},
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.StatusCode != http.StatusUnauthorized || calls != 1 {
		t.Fatalf("expected a single 401 exchange, got status %d after %d calls", res.StatusCode, calls)
	}
}

func TestRESTAdapter_RejectsRelativeURL(t *testing.T) {
	_, err := NewRESTAdapter(nil).Do(context.Background(), core.TransportRequest{URL: "user/get"})
	if !core.HasErrorCode(err, core.ErrorRequestFailed) {
		t.Fatalf("expected request failure for relative url, got %v", err)
	}
}

func TestRESTAdapter_RequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewRESTAdapter(server.Client()).Do(context.Background(), core.TransportRequest{
		Method:  http.MethodGet,
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})
	if !core.IsRequestError(err) {
		t.Fatalf("expected request error on timeout, got %v", err)
	}
}

func TestFactory_UsesSuppliedClient(t *testing.T) {
	client := &http.Client{Timeout: time.Second}
	adapter, ok := Factory()(client).(*RESTAdapter)
	if !ok {
		t.Fatalf("expected rest adapter")
	}
	if adapter.Client != client {
		t.Fatalf("expected supplied http client to be used")
	}
}
