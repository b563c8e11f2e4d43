package cryptoproviders

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-cryptoproviders/adapters/gologger"
	"github.com/goliatone/go-cryptoproviders/core"
	"github.com/goliatone/go-cryptoproviders/fips"
	"github.com/goliatone/go-cryptoproviders/hostfips"
	"github.com/goliatone/go-cryptoproviders/legacy"
	"github.com/goliatone/go-cryptoproviders/shim"
)

// Stack is an assembled provider chain. Shim and Legacy are nil when the
// configuration disables them.
type Stack struct {
	Runtime   *core.Runtime
	Certified *fips.Provider
	Legacy    *legacy.Provider
	Shim      *shim.Provider
}

type SetupOption func(*setupOptions)

type setupOptions struct {
	runtimeOpts []core.Option
	prober      hostfips.Prober
	entropy     io.Reader
	hooks       *ExtensionHooks
}

func WithRuntimeOptions(opts ...core.Option) SetupOption {
	return func(o *setupOptions) {
		o.runtimeOpts = append(o.runtimeOpts, opts...)
	}
}

// WithHostProber replaces the default host FIPS probe. It is ignored when
// shim.skip_host_probe is set.
func WithHostProber(prober hostfips.Prober) SetupOption {
	return func(o *setupOptions) {
		o.prober = prober
	}
}

// WithEntropy feeds both the certified DRBG and legacy SHA1PRNG seeding from
// r. Only tests should set it.
func WithEntropy(r io.Reader) SetupOption {
	return func(o *setupOptions) {
		o.entropy = r
	}
}

// WithExtensionHooks appends registered provider packs after the built-in
// providers.
func WithExtensionHooks(hooks *ExtensionHooks) SetupOption {
	return func(o *setupOptions) {
		o.hooks = hooks
	}
}

// Setup builds the runtime and installs the chain in order: GOFIPS, GOSTD,
// extension packs, then the shim at shim.position (1 by default, so it is
// consulted first).
func Setup(ctx context.Context, cfg Config, opts ...SetupOption) (*Stack, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := setupOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	runtime, err := core.NewRuntime(cfg, options.runtimeOpts...)
	if err != nil {
		return nil, err
	}
	resolved := runtime.Config()
	loggers := runtime.Dependencies().LoggerProvider
	logger := gologger.Component(loggers, "setup")

	mode := fips.ApprovedModeInherit
	if resolved.Certified.ApprovedOnly {
		mode = fips.ApprovedModeOn
	}
	certified, err := fips.New(fips.Config{
		ApprovedMode: mode,
		Entropy:      options.entropy,
		Logger:       gologger.Component(loggers, "fips"),
	})
	if err != nil {
		return nil, err
	}
	stack := &Stack{Runtime: runtime, Certified: certified}
	if _, err := runtime.InsertProvider(ctx, core.InsertProviderRequest{Provider: certified}); err != nil {
		return nil, err
	}

	if !resolved.Legacy.Disabled {
		legacyProvider, err := legacy.New(legacy.Config{Entropy: options.entropy})
		if err != nil {
			return nil, err
		}
		if _, err := runtime.InsertProvider(ctx, core.InsertProviderRequest{Provider: legacyProvider}); err != nil {
			return nil, err
		}
		stack.Legacy = legacyProvider
	}

	if options.hooks != nil {
		if err := options.hooks.ApplyProviderPacks(runtime.Registry()); err != nil {
			return nil, err
		}
	}

	if !resolved.Shim.Disabled {
		shimOpts := []shim.Option{
			shim.WithLogger(gologger.Component(loggers, "shim")),
			shim.WithNamePrefix(resolved.Shim.NamePrefix),
			shim.WithProbeContext(ctx),
		}
		switch {
		case resolved.Shim.SkipHostProbe:
			shimOpts = append(shimOpts, shim.WithoutHostProbe())
		case options.prober != nil:
			shimOpts = append(shimOpts, shim.WithHostProber(options.prober))
		}
		shimProvider, err := shim.NewProvider(certified, shimOpts...)
		if err != nil {
			return nil, err
		}
		position, err := runtime.InsertProvider(ctx, core.InsertProviderRequest{
			Provider: shimProvider,
			Position: resolved.Shim.Position,
		})
		if err != nil {
			return nil, err
		}
		stack.Shim = shimProvider
		logger.Info("compatibility shim installed",
			"name", shimProvider.Name(),
			"position", position,
			"host_fips", shimProvider.HostStatus().String(),
		)
	}

	return stack, nil
}

// SecureRandom resolves algorithm through the chain and returns a reader.
func (s *Stack) SecureRandom(ctx context.Context, algorithm string) (core.SecureRandom, error) {
	if s == nil || s.Runtime == nil {
		return nil, fmt.Errorf("cryptoproviders: stack is not configured")
	}
	return s.Runtime.NewSecureRandom(ctx, algorithm)
}

func (s *Stack) Providers(ctx context.Context) []core.ProviderInfo {
	if s == nil || s.Runtime == nil {
		return nil
	}
	return s.Runtime.Providers(ctx)
}
