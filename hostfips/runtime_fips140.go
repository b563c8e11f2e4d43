//go:build !boringcrypto

package hostfips

import (
	"context"
	"crypto/fips140"
)

// RuntimeProber reports whether the Go Cryptographic Module runs in FIPS
// 140-3 mode for this process.
type RuntimeProber struct{}

func (RuntimeProber) Probe(context.Context) (Status, error) {
	if fips140.Enabled() {
		return StatusEnabled, nil
	}
	return StatusDisabled, nil
}
