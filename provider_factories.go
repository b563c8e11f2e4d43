package cryptoproviders

import (
	"github.com/goliatone/go-cryptoproviders/core"
	"github.com/goliatone/go-cryptoproviders/fips"
	"github.com/goliatone/go-cryptoproviders/legacy"
	"github.com/goliatone/go-cryptoproviders/shim"
)

func CertifiedProvider(cfg fips.Config) (core.Provider, error) {
	return fips.New(cfg)
}

func LegacyProvider(cfg legacy.Config) (core.Provider, error) {
	return legacy.New(cfg)
}

func ShimProvider(certified core.Provider, opts ...shim.Option) (core.Provider, error) {
	return shim.NewProvider(certified, opts...)
}
