//go:build boringcrypto

package hostfips

import (
	"context"
	"crypto/boring"
)

// RuntimeProber reports whether BoringCrypto is the active backend.
type RuntimeProber struct{}

func (RuntimeProber) Probe(context.Context) (Status, error) {
	if boring.Enabled() {
		return StatusEnabled, nil
	}
	return StatusDisabled, nil
}
