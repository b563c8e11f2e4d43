package shim

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-cryptoproviders/core"
	"github.com/goliatone/go-cryptoproviders/fips"
	"github.com/goliatone/go-cryptoproviders/hostfips"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	DefaultNamePrefix = core.DefaultShimNamePrefix
	ProviderVersion   = "1"
	ProviderInfo      = "FIPS compatibility pseudo provider"

	LegacyAlgorithm  = "SHA1PRNG"
	DefaultAlgorithm = "DEFAULT"

	ApprovedModeSuffix = " Approved Mode"
	HostFIPSSuffix     = " FIPS-enabled host"
)

// ApprovedModeReporter is implemented by certified providers that know
// whether they run in approved-only mode.
type ApprovedModeReporter interface {
	ApprovedOnly() bool
}

type Provider struct {
	mu           sync.Mutex
	certified    core.Provider
	name         string
	approvedMode bool
	hostStatus   hostfips.Status
	logger       core.Logger
}

type providerBuilder struct {
	ctx          context.Context
	logger       core.Logger
	prober       hostfips.Prober
	namePrefix   string
	approvedMode func() bool
}

type Option func(*providerBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *providerBuilder) {
		b.logger = logger
	}
}

func WithHostProber(prober hostfips.Prober) Option {
	return func(b *providerBuilder) {
		b.prober = prober
	}
}

// WithoutHostProbe skips host detection; the host status is unsupported.
func WithoutHostProbe() Option {
	return WithHostProber(hostfips.Static(hostfips.StatusUnsupported))
}

func WithNamePrefix(prefix string) Option {
	return func(b *providerBuilder) {
		b.namePrefix = strings.TrimSpace(prefix)
	}
}

// WithApprovedModeReporter replaces the approved-only check made at
// construction.
func WithApprovedModeReporter(reporter func() bool) Option {
	return func(b *providerBuilder) {
		b.approvedMode = reporter
	}
}

// WithProbeContext bounds the host probe.
func WithProbeContext(ctx context.Context) Option {
	return func(b *providerBuilder) {
		b.ctx = ctx
	}
}

// NewProvider wraps certified. The approved-only flag and the host status are
// read once here and never re-evaluated.
func NewProvider(certified core.Provider, opts ...Option) (*Provider, error) {
	if certified == nil {
		return nil, fmt.Errorf("shim: certified provider is required")
	}
	builder := providerBuilder{
		ctx:        context.Background(),
		namePrefix: DefaultNamePrefix,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	if builder.namePrefix == "" {
		builder.namePrefix = DefaultNamePrefix
	}
	if builder.prober == nil {
		builder.prober = hostfips.DefaultProber()
	}
	if builder.approvedMode == nil {
		builder.approvedMode = defaultApprovedModeReporter(certified)
	}
	logger := glog.Ensure(builder.logger)

	approved := builder.approvedMode()
	status := hostfips.Detect(builder.ctx, logger, builder.prober)

	return &Provider{
		certified:    certified,
		name:         buildName(builder.namePrefix, certified, approved, status),
		approvedMode: approved,
		hostStatus:   status,
		logger:       logger,
	}, nil
}

func defaultApprovedModeReporter(certified core.Provider) func() bool {
	if reporter, ok := certified.(ApprovedModeReporter); ok {
		return reporter.ApprovedOnly
	}
	return fips.InApprovedOnlyMode
}

func buildName(prefix string, certified core.Provider, approved bool, status hostfips.Status) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("(")
	b.WriteString(core.DisplayName(certified))
	if approved {
		b.WriteString(ApprovedModeSuffix)
	}
	if status.Enabled() {
		b.WriteString(HostFIPSSuffix)
	}
	b.WriteString(")")
	return b.String()
}

func (p *Provider) Name() string    { return p.name }
func (p *Provider) Version() string { return ProviderVersion }
func (p *Provider) Info() string    { return ProviderInfo }

func (p *Provider) ApprovedMode() bool {
	return p.approvedMode
}

func (p *Provider) HostStatus() hostfips.Status {
	return p.hostStatus
}

func (p *Provider) Certified() core.Provider {
	return p.certified
}

// Service returns the certified DEFAULT secure random for SecureRandom
// SHA1PRNG and nil for every other pair. Names match exactly.
func (p *Provider) Service(category string, algorithm string) *core.Service {
	p.mu.Lock()
	defer p.mu.Unlock()

	if category != core.CategorySecureRandom || algorithm != LegacyAlgorithm {
		return nil
	}
	p.logger.Debug("returning DEFAULT secure random of certified provider instead of SHA1PRNG",
		"provider", p.certified.Name())
	return p.certified.Service(core.CategorySecureRandom, DefaultAlgorithm)
}
