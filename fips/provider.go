package fips

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"github.com/goliatone/go-cryptoproviders/core"
	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/crypto/sha3"
)

const (
	ProviderName    = "GOFIPS"
	ProviderVersion = "1.0"
	ProviderInfo    = "Go Cryptographic Module provider (DRBG, SHA-2, SHA-3, HMAC)"

	AlgorithmDefault    = "DEFAULT"
	AlgorithmNonceAndIV = "NONCEANDIV"
)

type Config struct {
	// ApprovedMode overrides the process-wide registrar for this instance.
	ApprovedMode ApprovedMode
	// Entropy replaces the module DRBG. Only tests should set it.
	Entropy io.Reader
	Logger  core.Logger
}

func DefaultConfig() Config {
	return Config{ApprovedMode: ApprovedModeInherit}
}

type Provider struct {
	mode    ApprovedMode
	entropy io.Reader
	logger  core.Logger
	table   *core.ServiceTable
}

func New(cfg Config) (*Provider, error) {
	switch cfg.ApprovedMode {
	case ApprovedModeInherit, ApprovedModeOn, ApprovedModeOff:
	default:
		return nil, fmt.Errorf("fips: approved mode is invalid: %q", cfg.ApprovedMode)
	}
	provider := &Provider{
		mode:    cfg.ApprovedMode,
		entropy: cfg.Entropy,
		logger:  glog.Ensure(cfg.Logger),
		table:   core.NewServiceTable(),
	}
	if err := provider.register(); err != nil {
		return nil, err
	}
	return provider, nil
}

func (p *Provider) Name() string    { return ProviderName }
func (p *Provider) Version() string { return ProviderVersion }
func (p *Provider) Info() string    { return ProviderInfo }

func (p *Provider) String() string {
	return ProviderName + " version " + ProviderVersion
}

// ApprovedOnly reports whether this instance currently hides non-approved
// services.
func (p *Provider) ApprovedOnly() bool {
	if p == nil {
		return false
	}
	switch p.mode {
	case ApprovedModeOn:
		return true
	case ApprovedModeOff:
		return false
	default:
		return InApprovedOnlyMode()
	}
}

func (p *Provider) Service(category string, algorithm string) *core.Service {
	if p == nil {
		return nil
	}
	svc := p.table.Get(category, algorithm)
	if svc == nil {
		return nil
	}
	if !svc.Approved && p.ApprovedOnly() {
		p.logger.Debug("fips: hiding non-approved service in approved-only mode",
			"category", svc.Category, "algorithm", svc.Algorithm)
		return nil
	}
	return svc
}

// Services lists the services visible in the current mode.
func (p *Provider) Services() []*core.Service {
	if p == nil {
		return nil
	}
	approvedOnly := p.ApprovedOnly()
	out := []*core.Service{}
	for _, svc := range p.table.List() {
		if approvedOnly && !svc.Approved {
			continue
		}
		out = append(out, svc)
	}
	return out
}

func (p *Provider) register() error {
	services := []*core.Service{
		core.NewService(core.CategorySecureRandom, AlgorithmDefault, ProviderName, p.randomFactory(AlgorithmDefault),
			core.WithApproved(true),
			core.WithAttribute("ImplementedIn", "Software"),
			core.WithAttribute("ThreadSafe", "true"),
		),
		core.NewService(core.CategorySecureRandom, AlgorithmNonceAndIV, ProviderName, p.randomFactory(AlgorithmNonceAndIV),
			core.WithApproved(true),
			core.WithAttribute("ThreadSafe", "true"),
		),
		digestService("SHA-256", sha256.New, true, "SHA256", "2.16.840.1.101.3.4.2.1"),
		digestService("SHA-384", sha512.New384, true, "SHA384", "2.16.840.1.101.3.4.2.2"),
		digestService("SHA-512", sha512.New, true, "SHA512", "2.16.840.1.101.3.4.2.3"),
		digestService("SHA3-256", func() hash.Hash { return sha3.New256() }, true, "2.16.840.1.101.3.4.2.8"),
		digestService("SHA3-512", func() hash.Hash { return sha3.New512() }, true, "2.16.840.1.101.3.4.2.10"),
		digestService("SHA-1", sha1.New, false, "SHA1", "SHA"),
		macService("HmacSHA256", sha256.New, "HMACSHA256"),
		macService("HmacSHA512", sha512.New, "HMACSHA512"),
	}
	for _, svc := range services {
		if err := p.table.Put(svc); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) randomFactory(algorithm string) core.ServiceFactory {
	return func() (any, error) {
		return newDRBGRandom(algorithm, p.entropy), nil
	}
}

func digestService(algorithm string, constructor func() hash.Hash, approved bool, aliases ...string) *core.Service {
	return core.NewService(core.CategoryMessageDigest, algorithm, ProviderName, func() (any, error) {
		return constructor(), nil
	}, core.WithApproved(approved), core.WithAliases(aliases...))
}

func macService(algorithm string, constructor func() hash.Hash, aliases ...string) *core.Service {
	return core.NewService(core.CategoryMac, algorithm, ProviderName, func() (any, error) {
		return core.MacConstructor(func(key []byte) (hash.Hash, error) {
			if len(key) < minimumMacKeyBytes {
				return nil, fmt.Errorf("fips: %s key must be at least %d bytes", algorithm, minimumMacKeyBytes)
			}
			return hmac.New(constructor, key), nil
		}), nil
	}, core.WithApproved(true), core.WithAliases(aliases...))
}

// minimumMacKeyBytes is the 112-bit security strength floor for HMAC keys.
const minimumMacKeyBytes = 14
