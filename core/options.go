package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"github.com/sethvargo/go-envconfig"
)

const defaultRequestTimeout = 30 * time.Second

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type clientBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       TransportAdapter
	transportNew    TransportFactory
	httpClient      *http.Client
	requestTimeout  time.Duration
	activitySink    ActivitySink
	validator       RequestValidator
	now             func() time.Time
}

type Option func(*clientBuilder)

// TransportFactory builds the transport when none is supplied with
// WithTransport. The client passed in carries the configured timeout.
type TransportFactory func(client *http.Client) TransportAdapter

func WithLogger(logger Logger) Option {
	return func(b *clientBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *clientBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *clientBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *clientBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *clientBuilder) {
		b.optionsResolver = resolver
	}
}

// WithTransport replaces the HTTP transport used for every gateway call.
func WithTransport(adapter TransportAdapter) Option {
	return func(b *clientBuilder) {
		b.transport = adapter
	}
}

func WithTransportFactory(factory TransportFactory) Option {
	return func(b *clientBuilder) {
		b.transportNew = factory
	}
}

// WithHTTPClient sets the client used by the default REST transport.
func WithHTTPClient(client *http.Client) Option {
	return func(b *clientBuilder) {
		b.httpClient = client
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(b *clientBuilder) {
		b.requestTimeout = timeout
	}
}

func WithActivitySink(sink ActivitySink) Option {
	return func(b *clientBuilder) {
		b.activitySink = sink
	}
}

func WithRequestValidator(validator RequestValidator) Option {
	return func(b *clientBuilder) {
		b.validator = validator
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *clientBuilder) {
		b.now = now
	}
}

func defaultClientBuilder(runtime Config) clientBuilder {
	loggerProvider, logger := glog.Resolve("hashgate", nil, nil)
	return clientBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		requestTimeout:  defaultRequestTimeout,
		validator:       NewStructValidator(),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type envSettings struct {
	BaseURL      string `env:"HASHGATE_BASE_URL"`
	ClientID     string `env:"HASHGATE_CLIENT_ID"`
	ClientSecret string `env:"HASHGATE_CLIENT_SECRET"`
}

// EnvConfigLoader reads HASHGATE_* variables. Unset variables are omitted so
// they do not shadow defaults.
type EnvConfigLoader struct {
	Lookuper envconfig.Lookuper
}

func NewEnvConfigLoader(lookuper envconfig.Lookuper) *EnvConfigLoader {
	return &EnvConfigLoader{Lookuper: lookuper}
}

func (l *EnvConfigLoader) LoadRaw(ctx context.Context) (map[string]any, error) {
	var settings envSettings
	envCfg := &envconfig.Config{Target: &settings}
	if l != nil && l.Lookuper != nil {
		envCfg.Lookuper = l.Lookuper
	}
	if err := envconfig.ProcessWith(ctx, envCfg); err != nil {
		return nil, FailedConfigError(fmt.Sprintf("hashgate: read environment: %v", err))
	}

	raw := map[string]any{}
	if value := strings.TrimSpace(settings.BaseURL); value != "" {
		raw["base_url"] = value
	}
	if value := strings.TrimSpace(settings.ClientID); value != "" {
		raw["client_id"] = value
	}
	if value := strings.TrimSpace(settings.ClientSecret); value != "" {
		raw["client_secret"] = value
	}
	return raw, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// NewEnvConfigProvider loads configuration from the process environment.
func NewEnvConfigProvider() *CfgxConfigProvider {
	return NewCfgxConfigProvider(NewEnvConfigLoader(nil))
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).validateShape),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).validateShape),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.BaseURL) != "" {
		layer["base_url"] = strings.TrimSpace(cfg.BaseURL)
	}
	if includeZero || strings.TrimSpace(cfg.ClientID) != "" {
		layer["client_id"] = strings.TrimSpace(cfg.ClientID)
	}
	if includeZero || cfg.ClientSecret != "" {
		layer["client_secret"] = cfg.ClientSecret
	}
	return layer
}
