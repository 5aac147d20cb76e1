package hashgate_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	hashgate "github.com/goliatone/go-hashgate"
	hgcommand "github.com/goliatone/go-hashgate/command"
	"github.com/goliatone/go-hashgate/core"
	"github.com/goliatone/go-hashgate/devkit"
	hgprom "github.com/goliatone/go-hashgate/metrics/prometheus"
	hgquery "github.com/goliatone/go-hashgate/query"
	sqlstore "github.com/goliatone/go-hashgate/store/sql"
)

func TestFacade_EndToEndAgainstMockGateway(t *testing.T) {
	ctx := context.Background()
	gateway := devkit.NewMockGateway(devkit.WithPoolName("members")).Start()
	defer gateway.Close()

	persistenceClient, err := sqlstore.Open(ctx, sqlstore.PersistenceConfig{
		Driver: sqlstore.DriverSQLite,
		DSN:    fmt.Sprintf("file:hashgate-root-%d?mode=memory&cache=shared", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = persistenceClient.Close() }()
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(persistenceClient)
	if err != nil {
		t.Fatalf("repository factory: %v", err)
	}

	sink, err := hashgate.NewOperationalActivitySink(factory.ActivityStore(), devkit.NewMemoryActivityStore(), hashgate.ActivityRetentionPolicy{RowCap: 100}, 64)
	if err != nil {
		t.Fatalf("activity sink: %v", err)
	}
	recorder, err := hgprom.NewRecorder(nil)
	if err != nil {
		t.Fatalf("prometheus recorder: %v", err)
	}

	client, err := hashgate.NewClient(ctx, hashgate.Config{
		BaseURL:      gateway.URL(),
		ClientID:     gateway.ClientID().String(),
		ClientSecret: gateway.ClientSecret(),
	}, hashgate.WithActivitySink(sink), hashgate.WithMetricsRecorder(recorder))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	facade, err := hashgate.NewFacade(client, hashgate.WithRepositoryFactory(factory), hashgate.WithActivityRetention(sink))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	registered := gocmd.NewResult[core.RegisteredUser]()
	if err := facade.Commands().RegisterUser.Execute(gocmd.ContextWithResult(ctx, registered), hgcommand.RegisterUserMessage{
		Request: hashgate.UserRegistrationRequest{Username: "ada", Password: "first-pass"},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	created, ok := registered.Load()
	if !ok || created.User == nil {
		t.Fatalf("expected registered user, got %+v", created)
	}
	userID := created.User.ID

	if err := facade.Commands().SetAttribute.Execute(ctx, hgcommand.SetAttributeMessage{UserID: userID, Key: "plan", Value: "pro"}); err != nil {
		t.Fatalf("set attribute: %v", err)
	}
	value, err := facade.Queries().GetAttribute.Query(ctx, hgquery.GetAttributeMessage{UserID: userID, Key: "plan"})
	if err != nil || string(value) != `"pro"` {
		t.Fatalf("get attribute: %s %v", value, err)
	}

	session := gocmd.NewResult[core.VerificationSession]()
	if err := facade.Commands().InitVerification.Execute(gocmd.ContextWithResult(ctx, session), hgcommand.InitVerificationMessage{UserID: userID}); err != nil {
		t.Fatalf("init verification: %v", err)
	}
	started, _ := session.Load()
	code, _ := gateway.VerificationCode(started.SessionID)
	verified := gocmd.NewResult[hgcommand.VerificationResult]()
	if err := facade.Commands().CompleteVerification.Execute(gocmd.ContextWithResult(ctx, verified), hgcommand.CompleteVerificationMessage{
		SessionID: started.SessionID,
		Code:      code,
	}); err != nil {
		t.Fatalf("complete verification: %v", err)
	}
	if result, _ := verified.Load(); !result.Verified {
		t.Fatalf("expected verification to succeed")
	}
	user, err := facade.Queries().GetUser.Query(ctx, hgquery.GetUserMessage{UserID: userID})
	if err != nil || !user.IsVerified {
		t.Fatalf("expected verified user, got %+v %v", user, err)
	}

	pool, err := facade.Queries().GetPool.Query(ctx, hgquery.GetPoolMessage{})
	if err != nil || pool.PoolName != "members" {
		t.Fatalf("get pool: %+v %v", pool, err)
	}

	sink.Close()
	page, err := facade.Queries().ListActivity.Query(ctx, hgquery.ListActivityMessage{
		Filter: hashgate.ActivityFilter{ClientID: gateway.ClientID().String(), Operation: core.OperationSetAttribute},
	})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if page.Total != 1 || page.Items[0].Status != core.ActivityStatusOK {
		t.Fatalf("expected persisted set_attribute entry, got %+v", page)
	}

	server := httptest.NewServer(recorder.Handler())
	defer server.Close()
	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `hashgate_operation_total{operation="register_user",status="success"} 1`) {
		t.Fatalf("expected register_user counter in scrape:\n%s", body)
	}
}

func TestNewClient_TransportOverride(t *testing.T) {
	fake := devkit.NewFakeTransportAdapter().
		On(core.EndpointClientAuth, devkit.Reply(http.StatusOK, `{"token":"tok-1","wasSuccessful":true}`)).
		On(core.EndpointPoolInfo, devkit.Reply(http.StatusOK, `{"pool":{"poolId":"0b8f7d7e-5d7c-4c41-9a4e-0d3c1b2a9f10","poolName":"fake","creationDate":"2026-01-01T00:00:00"},"wasSuccessful":true}`))

	client, err := hashgate.NewClient(context.Background(), hashgate.Config{
		BaseURL:      "http://gateway.test/api/",
		ClientID:     "5c1d3a52-6f0e-4d4b-9d6c-3f5b8f0a1e22",
		ClientSecret: "secret",
	}, hashgate.WithTransport(fake))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	pool, err := client.GetPool(context.Background())
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if pool.PoolName != "fake" || fake.Calls(core.EndpointClientAuth) != 1 {
		t.Fatalf("expected fake transport to serve the client, got %+v", pool)
	}
}

func TestNewClient_RejectsBadCredentials(t *testing.T) {
	gateway := devkit.NewMockGateway().Start()
	defer gateway.Close()

	_, err := hashgate.NewClient(context.Background(), hashgate.Config{
		BaseURL:      gateway.URL(),
		ClientID:     gateway.ClientID().String(),
		ClientSecret: "wrong",
	})
	if !hashgate.IsFailedSignIn(err) {
		t.Fatalf("expected failed sign in, got %v", err)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := hashgate.NewFacade(nil); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestNewFacade_WithoutActivityStore(t *testing.T) {
	facade, err := hashgate.NewFacade(&core.Client{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if _, err := facade.Queries().ListActivity.Query(context.Background(), hgquery.ListActivityMessage{}); err == nil {
		t.Fatalf("expected missing activity reader error")
	}
	if err := facade.Commands().PruneActivity.Execute(context.Background(), hgcommand.PruneActivityMessage{}); err == nil {
		t.Fatalf("expected missing retention error")
	}
}
