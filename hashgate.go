package hashgate

import (
	"context"

	"github.com/goliatone/go-hashgate/core"
	"github.com/goliatone/go-hashgate/transport"
)

type Config = core.Config

type Option = core.Option

type Client = core.Client

type User = core.User
type Pool = core.Pool
type RegisteredUser = core.RegisteredUser
type VerificationSession = core.VerificationSession
type VerifyEmailResult = core.VerifyEmailResult
type GatewayTime = core.GatewayTime

type UserRegistrationRequest = core.UserRegistrationRequest
type InitPasswordResetRequest = core.InitPasswordResetRequest

type ActivityEntry = core.ActivityEntry
type ActivityFilter = core.ActivityFilter
type ActivityPage = core.ActivityPage
type ActivitySink = core.ActivitySink
type ActivityStore = core.ActivityStore
type ActivityRetentionPolicy = core.ActivityRetentionPolicy

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithTransport              = core.WithTransport
	WithTransportFactory       = core.WithTransportFactory
	WithHTTPClient             = core.WithHTTPClient
	WithRequestTimeout         = core.WithRequestTimeout
	WithActivitySink           = core.WithActivitySink
	WithRequestValidator       = core.WithRequestValidator
	WithClock                  = core.WithClock
	NewOperationalActivitySink = core.NewOperationalActivitySink
)

var (
	IsFailedSignIn         = core.IsFailedSignIn
	IsFailedConfig         = core.IsFailedConfig
	IsNoClientToken        = core.IsNoClientToken
	IsUserNotFound         = core.IsUserNotFound
	IsAttributeNotFound    = core.IsAttributeNotFound
	IsServerError          = core.IsServerError
	IsCouldNotSetAttribute = core.IsCouldNotSetAttribute
	IsUsernameTaken        = core.IsUsernameTaken
	IsVerificationFailed   = core.IsVerificationFailed
	IsRequestError         = core.IsRequestError
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewClient authenticates against the gateway over the REST transport. A
// WithTransport or WithTransportFactory option overrides it.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	return core.NewClient(ctx, cfg, withDefaultTransport(opts)...)
}

// Setup is NewClient with HASHGATE_* environment variables layered under cfg.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	return core.Setup(ctx, cfg, withDefaultTransport(opts)...)
}

func withDefaultTransport(opts []Option) []Option {
	out := make([]Option, 0, len(opts)+1)
	out = append(out, core.WithTransportFactory(transport.Factory()))
	return append(out, opts...)
}
