package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Runtime struct {
	config            Config
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

type RuntimeDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Registry          Registry
	AuditRecorder     AuditRecorder
	AuditReader       AuditReader
	AuditPruner       AuditPruner
	JobEnqueuer       JobEnqueuer
}

func NewRuntime(cfg Config, opts ...Option) (*Runtime, error) {
	builder := defaultRuntimeBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("cryptoproviders", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("cryptoproviders"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		chain, err := NewProviderChain()
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
		builder.registry = chain
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.auditRecorder == nil && builder.repositoryFactory != nil {
		if factory, ok := builder.repositoryFactory.(AuditStoreFactory); ok {
			store, buildErr := factory.BuildAuditStore(builder.persistenceClient, finalConfig.ChainName)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if store != nil {
				builder.auditRecorder = store
				if builder.auditReader == nil {
					builder.auditReader = store
				}
				if builder.auditPruner == nil {
					builder.auditPruner = store
				}
			}
		}
	}
	if builder.auditRecorder == nil && finalConfig.Audit.Enabled {
		store := NewMemoryAuditStore()
		builder.auditRecorder = store
		builder.auditReader = store
		builder.auditPruner = store
	}
	if builder.auditReader == nil {
		if reader, ok := builder.auditRecorder.(AuditReader); ok {
			builder.auditReader = reader
		}
	}
	if builder.auditPruner == nil {
		if pruner, ok := builder.auditRecorder.(AuditPruner); ok {
			builder.auditPruner = pruner
		}
	}

	return &Runtime{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		registry:          builder.registry,
		auditRecorder:     builder.auditRecorder,
		auditReader:       builder.auditReader,
		auditPruner:       builder.auditPruner,
		jobEnqueuer:       builder.jobEnqueuer,
	}, nil
}

func (r *Runtime) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.config
}

func (r *Runtime) Registry() Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Runtime) Dependencies() RuntimeDependencies {
	if r == nil {
		return RuntimeDependencies{}
	}
	return RuntimeDependencies{
		Logger:            r.logger,
		LoggerProvider:    r.loggerProvider,
		MetricsRecorder:   r.metricsRecorder,
		ErrorFactory:      r.errorFactory,
		ErrorMapper:       r.errorMapper,
		PersistenceClient: r.persistenceClient,
		RepositoryFactory: r.repositoryFactory,
		ConfigProvider:    r.configProvider,
		OptionsResolver:   r.optionsResolver,
		Registry:          r.registry,
		AuditRecorder:     r.auditRecorder,
		AuditReader:       r.auditReader,
		AuditPruner:       r.auditPruner,
		JobEnqueuer:       r.jobEnqueuer,
	}
}

// Lookup resolves a service through the provider chain. A resolved service
// whose algorithm is neither the requested name nor one of its aliases is
// reported as a substitution.
func (r *Runtime) Lookup(ctx context.Context, req LookupRequest) (svc *Service, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"category":  req.Category,
		"algorithm": req.Algorithm,
	}
	defer func() {
		r.observeOperation(ctx, startedAt, "lookup", err, fields)
	}()

	if r == nil || r.registry == nil {
		return nil, r.mapError(fmt.Errorf("core: provider registry is required"))
	}
	category, algorithm := req.Category, req.Algorithm
	if strings.TrimSpace(category) == "" {
		return nil, r.mapError(fmt.Errorf("core: category is required"))
	}
	if strings.TrimSpace(algorithm) == "" {
		return nil, r.mapError(fmt.Errorf("core: algorithm is required"))
	}

	svc, err = r.registry.Lookup(category, algorithm)
	if err != nil {
		fields["outcome"] = string(LookupOutcomeNotFound)
		r.audit(ctx, LookupEvent{
			Category:           category,
			RequestedAlgorithm: algorithm,
			Outcome:            LookupOutcomeNotFound,
		})
		return nil, r.mapError(err)
	}

	outcome := LookupOutcomeResolved
	if IsSubstitution(algorithm, svc) {
		outcome = LookupOutcomeSubstituted
	}
	fields["outcome"] = string(outcome)
	fields["provider"] = svc.Provider
	fields["resolved_algorithm"] = svc.Algorithm
	if outcome == LookupOutcomeSubstituted {
		r.logInfo(ctx, "lookup substituted", cloneFields(fields))
	}
	r.audit(ctx, LookupEvent{
		Category:           category,
		RequestedAlgorithm: algorithm,
		ResolvedAlgorithm:  svc.Algorithm,
		ProviderName:       svc.Provider,
		Outcome:            outcome,
	})
	return svc, nil
}

func (r *Runtime) NewSecureRandom(ctx context.Context, algorithm string) (SecureRandom, error) {
	svc, err := r.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: algorithm})
	if err != nil {
		return nil, err
	}
	random, err := NewSecureRandom(svc)
	if err != nil {
		return nil, r.mapError(err)
	}
	return random, nil
}

func (r *Runtime) InsertProvider(ctx context.Context, req InsertProviderRequest) (position int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"position": req.Position}
	defer func() {
		r.observeOperation(ctx, startedAt, "insert_provider", err, fields)
	}()

	if r == nil || r.registry == nil {
		return 0, r.mapError(fmt.Errorf("core: provider registry is required"))
	}
	if req.Provider == nil {
		return 0, r.mapError(fmt.Errorf("core: provider is required"))
	}
	fields["provider"] = req.Provider.Name()
	position, err = r.registry.Insert(req.Provider, req.Position)
	if err != nil {
		return 0, r.mapError(err)
	}
	fields["position"] = position
	return position, nil
}

func (r *Runtime) RemoveProvider(ctx context.Context, name string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"provider": name}
	defer func() {
		r.observeOperation(ctx, startedAt, "remove_provider", err, fields)
	}()

	if r == nil || r.registry == nil {
		return r.mapError(fmt.Errorf("core: provider registry is required"))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return r.mapError(fmt.Errorf("core: provider name is required"))
	}
	if !r.registry.Remove(name) {
		return r.mapError(fmt.Errorf("%w: %s", ErrProviderNotFound, name))
	}
	return nil
}

func (r *Runtime) Providers(context.Context) []ProviderInfo {
	if r == nil || r.registry == nil {
		return nil
	}
	providers := r.registry.List()
	out := make([]ProviderInfo, 0, len(providers))
	for idx, provider := range providers {
		out = append(out, DescribeProvider(provider, idx+1))
	}
	return out
}

func (r *Runtime) ListLookupAudit(ctx context.Context, filter AuditFilter) (AuditPage, error) {
	if r == nil || r.auditReader == nil {
		return AuditPage{}, r.mapError(fmt.Errorf("core: audit reader is required"))
	}
	page, err := r.auditReader.List(ctx, filter)
	if err != nil {
		return AuditPage{}, r.mapError(err)
	}
	return page, nil
}

func (r *Runtime) audit(ctx context.Context, event LookupEvent) {
	if r == nil || r.auditRecorder == nil || !r.config.Audit.Enabled {
		return
	}
	if !r.config.Audit.RecordAll && event.Outcome == LookupOutcomeResolved {
		return
	}
	if err := r.auditRecorder.Record(ctx, event); err != nil {
		r.logError(ctx, "lookup audit failed", map[string]any{
			"category":  event.Category,
			"algorithm": event.RequestedAlgorithm,
			"error":     err.Error(),
		})
	}
}

func (r *Runtime) mapError(err error) error {
	if err == nil {
		return nil
	}
	mapper := defaultErrorMapper
	if r != nil && r.errorMapper != nil {
		mapper = r.errorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

// IsSubstitution reports whether svc answers a request for algorithm under a
// different name.
func IsSubstitution(algorithm string, svc *Service) bool {
	if svc == nil {
		return false
	}
	for _, name := range svc.Names() {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(algorithm)) {
			return false
		}
	}
	return true
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
