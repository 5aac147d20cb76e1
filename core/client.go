package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Client is an authenticated HashGate client. It owns the client identity,
// the current bearer token and the executor that refreshes it on 401.
type Client struct {
	config          Config
	identity        ClientIdentity
	credentials     *credentialStore
	transport       TransportAdapter
	endpoints       *endpointResolver
	executor        *Executor
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	activitySink    ActivitySink
	validator       RequestValidator
	now             func() time.Time
}

// NewClient resolves configuration, validates it and authenticates before
// returning. Any failure aborts construction.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := buildClient(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.Reauthenticate(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Setup builds a client whose configuration is read from HASHGATE_*
// environment variables, overlaid by cfg.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	withEnv := make([]Option, 0, len(opts)+1)
	withEnv = append(withEnv, WithConfigProvider(NewEnvConfigProvider()))
	withEnv = append(withEnv, opts...)
	return NewClient(ctx, cfg, withEnv...)
}

func buildClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("hashgate", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("hashgate"); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.validator == nil {
		builder.validator = NewStructValidator()
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(ctx, defaults)
	if err != nil {
		return nil, configError(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, configError(err)
	}
	if err := finalConfig.Validate(); err != nil {
		return nil, configError(err)
	}

	rawID := strings.TrimSpace(finalConfig.ClientID)
	clientID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, InvalidIdentifierError(err, rawID)
	}
	endpoints, err := newEndpointResolver(finalConfig.BaseURL)
	if err != nil {
		return nil, err
	}

	transport := builder.transport
	if transport == nil {
		if builder.transportNew == nil {
			return nil, FailedConfigError("hashgate: transport is required")
		}
		httpClient := builder.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: builder.requestTimeout}
		}
		transport = builder.transportNew(httpClient)
		if transport == nil {
			return nil, FailedConfigError("hashgate: transport factory returned nil")
		}
	}

	identity := ClientIdentity{ClientID: clientID, ClientSecret: finalConfig.ClientSecret}
	credentials := newCredentialStore(identity)
	authenticator := newAuthenticator(transport, endpoints, credentials, logger, builder.now)

	return &Client{
		config:          finalConfig,
		identity:        identity,
		credentials:     credentials,
		transport:       transport,
		endpoints:       endpoints,
		executor:        newExecutor(credentials, authenticator, logger, builder.metricsRecorder),
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		activitySink:    builder.activitySink,
		validator:       builder.validator,
		now:             builder.now,
	}, nil
}

// Config returns the resolved configuration with the secret redacted.
func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	cfg := c.config
	if cfg.ClientSecret != "" {
		cfg.ClientSecret = "[REDACTED]"
	}
	return cfg
}

func (c *Client) ClientID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.identity.ClientID
}

func (c *Client) HasToken() bool {
	if c == nil {
		return false
	}
	_, ok := c.credentials.Token()
	return ok
}

func (c *Client) Logger() Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

// Reauthenticate exchanges the client credentials for a new token. It shares
// the executor's refresh, so it never races a 401-driven refresh into a second
// client/auth call. On failure the previous token, if any, is kept.
func (c *Client) Reauthenticate(ctx context.Context) (err error) {
	if c == nil || c.executor == nil {
		return newKindError("hashgate: client is not configured", goerrors.CategoryInternal, ErrorInternal)
	}
	startedAt := c.clock()
	defer func() {
		c.observeOperation(ctx, startedAt, OperationAuthenticate, ExecutionResult{Attempts: 1}, err)
	}()
	_, err = c.executor.reauthenticate(ctx)
	return err
}

// send validates payload, encodes it and runs it through the executor.
func (c *Client) send(ctx context.Context, method string, endpoint string, payload any) (ExecutionResult, error) {
	if c == nil || c.executor == nil || c.transport == nil {
		return ExecutionResult{}, newKindError("hashgate: client is not configured", goerrors.CategoryInternal, ErrorInternal)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var body []byte
	if payload != nil {
		if c.validator != nil {
			if err := c.validator.ValidateRequest(payload); err != nil {
				return ExecutionResult{}, err
			}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return ExecutionResult{}, BadInputError("hashgate: encode request: " + err.Error())
		}
		body = encoded
	}
	url := c.endpoints.URL(endpoint)
	return c.executor.Execute(ctx, func(ctx context.Context, token string) (TransportResponse, error) {
		return c.transport.Do(ctx, TransportRequest{
			Method:  method,
			URL:     url,
			Headers: jsonHeaders(token),
			Body:    body,
		})
	})
}

func (c *Client) clock() time.Time {
	if c == nil || c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}

func decodeResponse[T any](response TransportResponse) (T, error) {
	var out T
	if err := json.Unmarshal(response.Body, &out); err != nil {
		return out, RequestError(err, "hashgate: decode gateway response")
	}
	return out, nil
}

// gatewayStatusError maps a non-2xx response to ServerError, keeping the
// gateway message when the body carries one.
func gatewayStatusError(response TransportResponse) error {
	var body StatusResponse
	if len(response.Body) > 0 {
		_ = json.Unmarshal(response.Body, &body)
	}
	return ServerError(response.StatusCode, messageOf(body.Message))
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(ErrorTextCode(err), "HASHGATE_") {
		return err
	}
	return wrapKindError(err, goerrors.CategoryBadInput, "hashgate: resolve configuration", ErrorFailedConfig)
}
