package core

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNewClient_AuthenticatesOnConstruction(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth, authOK("tok-1"))
	client := newTestClient(t, transport)

	if !client.HasToken() {
		t.Fatalf("expected token after construction")
	}
	if transport.count(EndpointClientAuth) != 1 {
		t.Fatalf("expected one auth call, got %d", transport.count(EndpointClientAuth))
	}
	if got := client.ClientID().String(); got != testClientID {
		t.Fatalf("expected client id %s, got %s", testClientID, got)
	}
	if got := client.Config().ClientSecret; got != "[REDACTED]" {
		t.Fatalf("expected redacted secret, got %q", got)
	}
	if got := client.EndpointURL(EndpointUserGet); got != testBaseURL+EndpointUserGet {
		t.Fatalf("unexpected endpoint url %q", got)
	}
}

func TestNewClient_AuthenticationFailureAbortsConstruction(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth, reply(http.StatusUnauthorized, `{"wasSuccessful":false}`))

	client, err := NewClient(context.Background(), testConfig(), testOptions(transport)...)
	if !IsFailedSignIn(err) {
		t.Fatalf("expected failed sign in, got %v", err)
	}
	if client != nil {
		t.Fatalf("expected no client on failure")
	}
}

func TestNewClient_MissingCredentialsIsFailedConfig(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth, authOK("tok-1"))

	for name, cfg := range map[string]Config{
		"missing id":     {BaseURL: testBaseURL, ClientSecret: testClientSecret},
		"missing secret": {BaseURL: testBaseURL, ClientID: testClientID},
	} {
		_, err := NewClient(context.Background(), cfg, testOptions(transport)...)
		if !HasErrorCode(err, ErrorFailedConfig) {
			t.Fatalf("%s: expected failed config, got %v", name, err)
		}
	}
	if transport.total() != 0 {
		t.Fatalf("expected zero network calls, got %d", transport.total())
	}
}

func TestNewClient_MalformedClientID(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth, authOK("tok-1"))
	cfg := testConfig()
	cfg.ClientID = "not-a-uuid"

	_, err := NewClient(context.Background(), cfg, testOptions(transport)...)
	if !HasErrorCode(err, ErrorInvalidIdentifier) {
		t.Fatalf("expected invalid identifier, got %v", err)
	}
	if transport.total() != 0 {
		t.Fatalf("expected zero network calls")
	}
}

func TestNewClient_TransportFactoryReceivesTimeout(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth, authOK("tok-1"))
	var seen *http.Client

	_, err := NewClient(context.Background(), testConfig(),
		WithLogger(stubLogger{}),
		WithRequestTimeout(5*time.Second),
		WithTransportFactory(func(client *http.Client) TransportAdapter {
			seen = client
			return transport
		}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if seen == nil || seen.Timeout != 5*time.Second {
		t.Fatalf("expected http client with 5s timeout, got %+v", seen)
	}
}

func TestNewClient_WithoutTransportFails(t *testing.T) {
	_, err := NewClient(context.Background(), testConfig(), WithLogger(stubLogger{}))
	if !HasErrorCode(err, ErrorFailedConfig) {
		t.Fatalf("expected failed config without transport, got %v", err)
	}
}

func TestSetup_ReadsEnvironment(t *testing.T) {
	t.Setenv("HASHGATE_CLIENT_ID", testClientID)
	t.Setenv("HASHGATE_CLIENT_SECRET", "from-env")
	t.Setenv("HASHGATE_BASE_URL", testBaseURL)
	transport := newScriptedTransport().on(EndpointClientAuth, authOK("tok-env"))

	client, err := Setup(context.Background(), Config{}, testOptions(transport)...)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !client.HasToken() {
		t.Fatalf("expected authenticated client")
	}
	body := decodeBody(t, transport.callsTo(EndpointClientAuth)[0])
	if body["clientSecret"] != "from-env" {
		t.Fatalf("expected secret from environment, got %v", body["clientSecret"])
	}
}

func TestClient_ReauthenticateKeepsTokenOnFailure(t *testing.T) {
	transport := newScriptedTransport().on(EndpointClientAuth,
		authOK("tok-1"),
		reply(http.StatusInternalServerError, ``),
	)
	client := newTestClient(t, transport)

	if err := client.Reauthenticate(context.Background()); !IsFailedSignIn(err) {
		t.Fatalf("expected failed sign in, got %v", err)
	}
	if token, _ := client.credentials.Token(); token.Value != "tok-1" {
		t.Fatalf("expected previous token kept, got %q", token.Value)
	}
}

func TestClient_OperationsWithoutTokenMakeNoCalls(t *testing.T) {
	transport := newScriptedTransport()
	client := newUnauthenticatedClient(t, transport)

	if _, err := client.GetPool(context.Background()); !IsNoClientToken(err) {
		t.Fatalf("expected no client token, got %v", err)
	}
	if err := client.SetAttribute(context.Background(), userIDForTest(), "plan", "pro"); !IsNoClientToken(err) {
		t.Fatalf("expected no client token from set attribute, got %v", err)
	}
	if transport.total() != 0 {
		t.Fatalf("expected zero network calls, got %d", transport.total())
	}
}
