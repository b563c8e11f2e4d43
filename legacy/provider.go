package legacy

import (
	"crypto/md5"
	"crypto/sha1"
	"hash"
	"io"

	"github.com/goliatone/go-cryptoproviders/core"
)

const (
	ProviderName    = "GOSTD"
	ProviderVersion = "1.0"
	ProviderInfo    = "Go standard library provider (SHA1PRNG, SHA-1, MD5)"
)

type Config struct {
	// Entropy seeds new SHA1PRNG instances. Defaults to crypto/rand.
	Entropy io.Reader
}

type Provider struct {
	entropy io.Reader
	table   *core.ServiceTable
}

func New(cfg Config) (*Provider, error) {
	provider := &Provider{
		entropy: cfg.Entropy,
		table:   core.NewServiceTable(),
	}
	services := []*core.Service{
		core.NewService(core.CategorySecureRandom, AlgorithmSHA1PRNG, ProviderName, func() (any, error) {
			return newSHA1PRNG(provider.entropy), nil
		}, core.WithAttribute("ImplementedIn", "Software")),
		digest("SHA-1", sha1.New, "SHA1", "SHA"),
		digest("MD5", md5.New),
	}
	for _, svc := range services {
		if err := provider.table.Put(svc); err != nil {
			return nil, err
		}
	}
	return provider, nil
}

func (p *Provider) Name() string    { return ProviderName }
func (p *Provider) Version() string { return ProviderVersion }
func (p *Provider) Info() string    { return ProviderInfo }

func (p *Provider) String() string {
	return ProviderName + " version " + ProviderVersion
}

func (p *Provider) Service(category string, algorithm string) *core.Service {
	if p == nil {
		return nil
	}
	return p.table.Get(category, algorithm)
}

func digest(algorithm string, constructor func() hash.Hash, aliases ...string) *core.Service {
	return core.NewService(core.CategoryMessageDigest, algorithm, ProviderName, func() (any, error) {
		return constructor(), nil
	}, core.WithAliases(aliases...))
}
