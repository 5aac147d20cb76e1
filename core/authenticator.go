package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TokenIssuer exchanges the client identity for a new session token and
// stores it as the current token.
type TokenIssuer interface {
	Authenticate(ctx context.Context) (SessionToken, error)
}

type Authenticator struct {
	transport TransportAdapter
	endpoints *endpointResolver
	store     *credentialStore
	logger    Logger
	now       func() time.Time
}

func newAuthenticator(
	transport TransportAdapter,
	endpoints *endpointResolver,
	store *credentialStore,
	logger Logger,
	now func() time.Time,
) *Authenticator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Authenticator{
		transport: transport,
		endpoints: endpoints,
		store:     store,
		logger:    logger,
		now:       now,
	}
}

// Authenticate posts the client credentials to client/auth. Success needs a
// 2xx status and a token in the body; anything else is FailedSignIn and the
// stored token is left untouched.
func (a *Authenticator) Authenticate(ctx context.Context) (SessionToken, error) {
	if a == nil || a.transport == nil || a.store == nil {
		return SessionToken{}, newKindError("hashgate: authenticator is not configured", goerrors.CategoryInternal, ErrorInternal)
	}
	identity := a.store.Identity()
	payload, err := json.Marshal(ClientAuthRequest{
		ClientID:     identity.ClientID.String(),
		ClientSecret: identity.ClientSecret,
	})
	if err != nil {
		return SessionToken{}, RequestError(err, "hashgate: encode client auth request")
	}

	response, err := a.transport.Do(ctx, TransportRequest{
		Method:  http.MethodPost,
		URL:     a.endpoints.URL(EndpointClientAuth),
		Headers: jsonHeaders(""),
		Body:    payload,
	})
	if err != nil {
		return SessionToken{}, RequestError(err, "hashgate: client auth request failed")
	}
	if !isSuccessStatus(response.StatusCode) {
		a.logDebug(ctx, "client auth rejected", "status_code", response.StatusCode)
		return SessionToken{}, FailedSignInError(
			fmt.Sprintf("hashgate: client auth returned status %d", response.StatusCode),
		)
	}

	var body AuthResponse
	if err := json.Unmarshal(response.Body, &body); err != nil {
		return SessionToken{}, FailedSignInError("hashgate: client auth response is malformed")
	}
	if body.Token == nil || strings.TrimSpace(*body.Token) == "" {
		return SessionToken{}, FailedSignInError("hashgate: client auth response has no token")
	}

	token := SessionToken{Value: *body.Token, AcquiredAt: a.now()}
	a.store.SetToken(token)
	a.logDebug(ctx, "client authenticated", "client_id", identity.ClientID.String())
	return token, nil
}

func (a *Authenticator) logDebug(ctx context.Context, message string, args ...any) {
	if a == nil || a.logger == nil {
		return
	}
	logger := a.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Debug(message, args...)
}

func jsonHeaders(token string) map[string]string {
	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	if strings.TrimSpace(token) != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

func isSuccessStatus(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
