//go:build !linux

package hostfips

import "context"

// KernelProber has no kernel flag to read on this platform.
type KernelProber struct {
	Path string
}

func (KernelProber) Probe(context.Context) (Status, error) {
	return StatusUnsupported, nil
}
