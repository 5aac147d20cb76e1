package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-hashgate/core"
	sqlstore "github.com/goliatone/go-hashgate/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"hashgate_activity_entries",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "hashgate_activity_entries" {
		t.Fatalf("expected hashgate_activity_entries table, got %q", tableName)
	}
}

func TestOpen_RejectsUnknownDriverAndMissingDSN(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), sqlstore.PersistenceConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(context.Background(), sqlstore.PersistenceConfig{Driver: sqlstore.DriverSQLite}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestActivityStore_RecordAndListWithFilters(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newActivityStore(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []core.ActivityEntry{
		{ClientID: "client-a", Operation: core.OperationGetUser, Status: core.ActivityStatusOK, StatusCode: 200, Attempts: 1, CreatedAt: base},
		{ClientID: "client-a", Operation: core.OperationGetUser, Status: core.ActivityStatusError, StatusCode: 200, Attempts: 2, Reauthenticated: true, ErrorCode: core.ErrorUserNotFound, CreatedAt: base.Add(time.Minute)},
		{ClientID: "client-a", Operation: core.OperationSignIn, Status: core.ActivityStatusOK, StatusCode: 200, Attempts: 1, CreatedAt: base.Add(2 * time.Minute)},
		{ClientID: "client-b", Operation: core.OperationGetUser, Status: core.ActivityStatusOK, StatusCode: 200, Attempts: 1, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := store.List(ctx, core.ActivityFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 4 || len(all.Items) != 4 {
		t.Fatalf("expected 4 entries, got total=%d items=%d", all.Total, len(all.Items))
	}
	if all.Items[0].ClientID != "client-b" {
		t.Fatalf("expected newest entry first, got %+v", all.Items[0])
	}
	for _, item := range all.Items {
		if item.ID == "" {
			t.Fatalf("expected generated id, got %+v", item)
		}
	}

	failures, err := store.List(ctx, core.ActivityFilter{
		ClientID:  "client-a",
		Operation: core.OperationGetUser,
		Status:    core.ActivityStatusError,
	})
	if err != nil {
		t.Fatalf("list failures: %v", err)
	}
	if failures.Total != 1 {
		t.Fatalf("expected one failure, got %d", failures.Total)
	}
	failure := failures.Items[0]
	if failure.ErrorCode != core.ErrorUserNotFound || failure.Attempts != 2 || !failure.Reauthenticated {
		t.Fatalf("unexpected failure entry %+v", failure)
	}
}

func TestActivityStore_Pagination(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newActivityStore(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for index := 0; index < 5; index++ {
		if err := store.Record(ctx, core.ActivityEntry{
			ID:        fmt.Sprintf("entry-%d", index),
			ClientID:  "client-a",
			Operation: core.OperationGetPool,
			CreatedAt: base.Add(time.Duration(index) * time.Second),
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	first, err := store.List(ctx, core.ActivityFilter{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Items) != 2 || !first.HasNext || first.NextCursor != "2" || first.Total != 5 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Items[0].ID != "entry-4" {
		t.Fatalf("expected newest entry first, got %q", first.Items[0].ID)
	}

	last, err := store.List(ctx, core.ActivityFilter{Page: 3, PerPage: 2})
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last.Items) != 1 || last.HasNext || last.NextCursor != "" {
		t.Fatalf("unexpected last page %+v", last)
	}
	if last.Items[0].Status != core.ActivityStatusOK {
		t.Fatalf("expected default ok status, got %q", last.Items[0].Status)
	}
}

func TestActivityStore_RedactsSensitiveMetadata(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newActivityStore(t)
	defer cleanup()

	if err := store.Record(ctx, core.ActivityEntry{
		ID:        "redacted",
		ClientID:  "client-a",
		Operation: core.OperationCompleteVerification,
		Metadata: map[string]any{
			"verification_code": "123456",
			"error":             "gateway rejected",
			"nested":            map[string]any{"reset_token": "abc"},
		},
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	page, err := store.List(ctx, core.ActivityFilter{ClientID: "client-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected one entry, got %d", len(page.Items))
	}
	metadata := page.Items[0].Metadata
	if metadata["verification_code"] != "[REDACTED]" {
		t.Fatalf("expected verification code redacted, got %v", metadata)
	}
	if metadata["error"] != "gateway rejected" {
		t.Fatalf("expected plain metadata kept, got %v", metadata)
	}
	nested, ok := metadata["nested"].(map[string]any)
	if !ok || nested["reset_token"] != "[REDACTED]" {
		t.Fatalf("expected nested token redacted, got %v", metadata["nested"])
	}
}

func TestActivityStore_RecordRequiresOperation(t *testing.T) {
	store, cleanup := newActivityStore(t)
	defer cleanup()

	if err := store.Record(context.Background(), core.ActivityEntry{ClientID: "client-a"}); err == nil {
		t.Fatalf("expected error for entry without operation")
	}
}

func TestActivityStore_PruneByTTLAndRowCap(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newActivityStore(t)
	defer cleanup()

	stale := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Now().UTC()
	records := []core.ActivityEntry{
		{ID: "stale-1", Operation: core.OperationGetUser, CreatedAt: stale},
		{ID: "stale-2", Operation: core.OperationGetUser, CreatedAt: stale.Add(time.Minute)},
		{ID: "fresh-1", Operation: core.OperationGetUser, CreatedAt: fresh.Add(-3 * time.Second)},
		{ID: "fresh-2", Operation: core.OperationGetUser, CreatedAt: fresh.Add(-2 * time.Second)},
		{ID: "fresh-3", Operation: core.OperationGetUser, CreatedAt: fresh.Add(-time.Second)},
	}
	for _, record := range records {
		if err := store.Record(ctx, record); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	deleted, err := store.Prune(ctx, core.ActivityRetentionPolicy{TTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("prune ttl: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 stale rows deleted, got %d", deleted)
	}

	deleted, err = store.Prune(ctx, core.ActivityRetentionPolicy{RowCap: 2})
	if err != nil {
		t.Fatalf("prune row cap: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 row trimmed, got %d", deleted)
	}

	page, err := store.List(ctx, core.ActivityFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || page.Items[0].ID != "fresh-3" || page.Items[1].ID != "fresh-2" {
		t.Fatalf("expected newest rows kept, got %+v", page.Items)
	}
}

func TestOperationalActivitySink_PersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newActivityStore(t)
	defer cleanup()

	sink, err := core.NewOperationalActivitySink(store, nil, core.ActivityRetentionPolicy{RowCap: 10}, 8)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	for index := 0; index < 3; index++ {
		if err := sink.Record(ctx, core.ActivityEntry{ClientID: "client-a", Operation: core.OperationSignIn}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	sink.Close()

	page, err := sink.List(ctx, core.ActivityFilter{ClientID: "client-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 persisted entries, got %d", page.Total)
	}
	if _, err := sink.EnforceRetention(ctx); err != nil {
		t.Fatalf("enforce retention: %v", err)
	}
}

func TestRepositoryFactory_ResolvesPersistenceClient(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if factory.ActivityStore() == nil || factory.DB() == nil {
		t.Fatalf("expected activity store and db from factory")
	}
	if _, err := sqlstore.NewRepositoryFactoryFromDB(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
	if err := sqlstore.NewRepositoryFactory().BuildStores("not a client"); err == nil {
		t.Fatalf("expected error for unsupported client type")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:hashgate-test-%d?mode=memory&cache=shared",
		time.Now().UnixNano(),
	)
	client, err := sqlstore.Open(context.Background(), sqlstore.PersistenceConfig{
		Driver:         sqlstore.DriverSQLite,
		DSN:            dsn,
		PingTimeout:    time.Second,
		OtelIdentifier: "go-hashgate-tests",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}

func newActivityStore(t *testing.T) (*sqlstore.ActivityStore, func()) {
	t.Helper()

	client, cleanup := newSQLiteClient(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		cleanup()
		t.Fatalf("new repository factory: %v", err)
	}
	return factory.ActivityStore(), cleanup
}
