package devkit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-hashgate/core"
)

func TestFakeTransportAdapter_RoutesByEndpoint(t *testing.T) {
	adapter := NewFakeTransportAdapter().
		On(core.EndpointUserGet,
			Reply(http.StatusUnauthorized, ``),
			Reply(http.StatusOK, `{"wasSuccessful":true}`),
		).
		On(core.EndpointUserGetByToken, Fail(errors.New("reset")))

	first, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodPost, URL: "http://gw.test/api/user/get"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected scripted 401, got %d", first.StatusCode)
	}
	for index := 0; index < 2; index++ {
		next, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodPost, URL: "http://gw.test/api/user/get"})
		if err != nil {
			t.Fatalf("repeat call: %v", err)
		}
		if next.StatusCode != http.StatusOK {
			t.Fatalf("expected last script repeated, got %d", next.StatusCode)
		}
	}

	if _, err := adapter.Do(context.Background(), core.TransportRequest{URL: "http://gw.test/api/user/get-by-token"}); err == nil {
		t.Fatalf("expected scripted transport failure")
	}
	missing, err := adapter.Do(context.Background(), core.TransportRequest{URL: "http://gw.test/api/pool/info"})
	if err != nil || missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unscripted endpoint, got %d %v", missing.StatusCode, err)
	}

	if adapter.Calls(core.EndpointUserGet) != 3 {
		t.Fatalf("expected 3 user/get calls, got %d", adapter.Calls(core.EndpointUserGet))
	}
	if len(adapter.Requests()) != 5 {
		t.Fatalf("expected 5 captured requests, got %d", len(adapter.Requests()))
	}
}

func TestValidateTransportAdapterConformance(t *testing.T) {
	adapter := NewFakeTransportAdapter().On(core.EndpointPoolInfo, Reply(http.StatusOK, `{}`))
	if err := ValidateTransportAdapterConformance(context.Background(), adapter, core.TransportRequest{
		Method: http.MethodGet,
		URL:    "http://gw.test/api/pool/info",
	}); err != nil {
		t.Fatalf("validate transport adapter conformance: %v", err)
	}
	if err := ValidateTransportAdapterConformance(context.Background(), nil, core.TransportRequest{}); err == nil {
		t.Fatalf("expected nil adapter error")
	}
}

func TestMemoryActivityStore_Conformance(t *testing.T) {
	if err := ValidateActivityStoreConformance(context.Background(), NewMemoryActivityStore(), "client-a"); err != nil {
		t.Fatalf("validate activity store conformance: %v", err)
	}
}

func TestMemoryActivityStore_PruneAndPaging(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryActivityStore()
	store.Now = func() time.Time { return now }
	ctx := context.Background()

	for index := 0; index < 4; index++ {
		_ = store.Record(ctx, core.ActivityEntry{
			Operation: core.OperationGetPool,
			CreatedAt: now.Add(-time.Duration(index) * time.Hour),
		})
	}

	page, err := store.List(ctx, core.ActivityFilter{PerPage: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 || !page.HasNext || page.NextCursor != "3" {
		t.Fatalf("unexpected page %+v", page)
	}

	deleted, err := store.Prune(ctx, core.ActivityRetentionPolicy{TTL: 150 * time.Minute, RowCap: 2})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	remaining := store.Snapshot()
	if len(remaining) != 2 || !remaining[1].CreatedAt.Equal(now) {
		t.Fatalf("expected the two newest entries, got %+v", remaining)
	}
}
