package core

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/singleflight"
)

// ExecutionResult is the outcome of one authenticated call. Attempts is 1 or
// 2; Reauthenticated reports whether a 401 triggered a token refresh.
type ExecutionResult struct {
	Response        TransportResponse
	Attempts        int
	Reauthenticated bool
}

// Executor sends attempts with the current bearer token and, on a 401,
// refreshes the token once and replays the attempt exactly once.
type Executor struct {
	store           *credentialStore
	issuer          TokenIssuer
	logger          Logger
	metricsRecorder MetricsRecorder
	refreshes       singleflight.Group
}

func newExecutor(store *credentialStore, issuer TokenIssuer, logger Logger, metrics MetricsRecorder) *Executor {
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &Executor{
		store:           store,
		issuer:          issuer,
		logger:          logger,
		metricsRecorder: metrics,
	}
}

func (e *Executor) Execute(ctx context.Context, attempt AttemptFunc) (ExecutionResult, error) {
	if e == nil || attempt == nil {
		return ExecutionResult{}, newKindError("hashgate: executor is not configured", goerrors.CategoryInternal, ErrorInternal)
	}
	current, ok := e.store.Token()
	if !ok {
		return ExecutionResult{}, NoClientTokenError()
	}

	response, err := attempt(ctx, current.Value)
	if err != nil {
		return ExecutionResult{Attempts: 1}, asRequestError(err)
	}
	if response.StatusCode != http.StatusUnauthorized {
		return ExecutionResult{Response: response, Attempts: 1}, nil
	}

	refreshed, err := e.refresh(ctx, current.Value)
	if err != nil {
		return ExecutionResult{Response: response, Attempts: 1, Reauthenticated: true}, err
	}

	response, err = attempt(ctx, refreshed.Value)
	result := ExecutionResult{Response: response, Attempts: 2, Reauthenticated: true}
	if err != nil {
		return result, asRequestError(err)
	}
	return result, nil
}

// refresh collapses concurrent refreshes for the same stale token. A caller
// whose stale token has already been replaced gets the replacement without a
// gateway call. The shared exchange ignores the first caller's cancellation;
// each caller stops waiting when its own context ends.
func (e *Executor) refresh(ctx context.Context, stale string) (SessionToken, error) {
	return e.sharedRefresh(ctx, stale, true)
}

func (e *Executor) sharedRefresh(ctx context.Context, stale string, countReauth bool) (SessionToken, error) {
	detached := context.WithoutCancel(ctx)
	flight := e.refreshes.DoChan(stale, func() (any, error) {
		if current, ok := e.store.Token(); ok && current.Value != stale {
			return current, nil
		}
		if e.issuer == nil {
			return SessionToken{}, FailedSignInError("hashgate: no authenticator configured")
		}
		if countReauth {
			e.metricsRecorder.IncCounter(detached, MetricReauthTotal, 1, map[string]string{})
		}
		return e.issuer.Authenticate(detached)
	})

	var outcome singleflight.Result
	select {
	case <-ctx.Done():
		e.logDebug(ctx, "token refresh abandoned", "error", ctx.Err().Error())
		return SessionToken{}, RequestError(ctx.Err(), "hashgate: token refresh abandoned")
	case outcome = <-flight:
	}
	if outcome.Err != nil {
		e.logDebug(ctx, "token refresh failed", "shared", outcome.Shared, "error", outcome.Err.Error())
		return SessionToken{}, outcome.Err
	}
	token, _ := outcome.Val.(SessionToken)
	if token.IsZero() {
		return SessionToken{}, FailedSignInError("hashgate: refreshed token is empty")
	}
	e.logDebug(ctx, "token refreshed", "shared", outcome.Shared)
	return token, nil
}

// reauthenticate forces a refresh of the current token, joining any refresh
// already in flight for it.
func (e *Executor) reauthenticate(ctx context.Context) (SessionToken, error) {
	if e == nil || e.store == nil {
		return SessionToken{}, newKindError("hashgate: executor is not configured", goerrors.CategoryInternal, ErrorInternal)
	}
	current, _ := e.store.Token()
	return e.sharedRefresh(ctx, current.Value, false)
}

// refreshFailed reports an execution that stopped at the token refresh,
// before the retry was sent.
func refreshFailed(result ExecutionResult) bool {
	return result.Reauthenticated && result.Attempts == 1
}

func (e *Executor) logDebug(ctx context.Context, message string, args ...any) {
	if e == nil || e.logger == nil {
		return
	}
	logger := e.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	logger.Debug(message, args...)
}

// asRequestError keeps HashGate envelopes and wraps everything else as a
// RequestError.
func asRequestError(err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(ErrorTextCode(err), "HASHGATE_") {
		return err
	}
	return RequestError(err, "hashgate: request failed")
}
