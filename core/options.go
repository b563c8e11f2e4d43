package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type runtimeBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	registry          Registry
	auditRecorder     AuditRecorder
	auditReader       AuditReader
	auditPruner       AuditPruner
	jobEnqueuer       JobEnqueuer
}

type Option func(*runtimeBuilder)

func WithLogger(logger Logger) Option {
	return func(b *runtimeBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *runtimeBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *runtimeBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *runtimeBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *runtimeBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *runtimeBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *runtimeBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *runtimeBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *runtimeBuilder) {
		b.optionsResolver = resolver
	}
}

func WithRegistry(registry Registry) Option {
	return func(b *runtimeBuilder) {
		b.registry = registry
	}
}

// WithAuditStore sets recorder, reader and pruner from a single store.
func WithAuditStore(store AuditStore) Option {
	return func(b *runtimeBuilder) {
		b.auditRecorder = store
		b.auditReader = store
		b.auditPruner = store
	}
}

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(b *runtimeBuilder) {
		b.auditRecorder = recorder
	}
}

func WithAuditReader(reader AuditReader) Option {
	return func(b *runtimeBuilder) {
		b.auditReader = reader
	}
}

func WithJobEnqueuer(enqueuer JobEnqueuer) Option {
	return func(b *runtimeBuilder) {
		b.jobEnqueuer = enqueuer
	}
}

func defaultRuntimeBuilder(runtime Config) runtimeBuilder {
	loggerProvider, logger := glog.Resolve("cryptoproviders", nil, nil)
	return runtimeBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return cryptoErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
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

// NewStaticConfigLoader returns a RawConfigLoader backed by a fixed map.
func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
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
		cfgx.WithValidator[Config]((*Config).Validate),
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
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap only emits non-zero values for the config and runtime
// layers so they override defaults field by field.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ChainName) != "" {
		layer["chain_name"] = cfg.ChainName
	}

	shim := map[string]any{}
	if includeZero || cfg.Shim.Disabled {
		shim["disabled"] = cfg.Shim.Disabled
	}
	if includeZero || strings.TrimSpace(cfg.Shim.NamePrefix) != "" {
		shim["name_prefix"] = cfg.Shim.NamePrefix
	}
	if includeZero || cfg.Shim.Position > 0 {
		shim["position"] = cfg.Shim.Position
	}
	if includeZero || cfg.Shim.SkipHostProbe {
		shim["skip_host_probe"] = cfg.Shim.SkipHostProbe
	}
	if len(shim) > 0 {
		layer["shim"] = shim
	}

	if includeZero || cfg.Certified.ApprovedOnly {
		layer["certified"] = map[string]any{
			"approved_only": cfg.Certified.ApprovedOnly,
		}
	}
	if includeZero || cfg.Legacy.Disabled {
		layer["legacy"] = map[string]any{
			"disabled": cfg.Legacy.Disabled,
		}
	}

	audit := map[string]any{}
	if includeZero || cfg.Audit.Enabled {
		audit["enabled"] = cfg.Audit.Enabled
	}
	if includeZero || cfg.Audit.RecordAll {
		audit["record_all"] = cfg.Audit.RecordAll
	}
	if includeZero || cfg.Audit.RetentionHours > 0 {
		audit["retention_hours"] = cfg.Audit.RetentionHours
	}
	if includeZero || cfg.Audit.RowCap > 0 {
		audit["row_cap"] = cfg.Audit.RowCap
	}
	if len(audit) > 0 {
		layer["audit"] = audit
	}
	return layer
}
