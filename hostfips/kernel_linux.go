//go:build linux

package hostfips

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultKernelFlagPath is where linux exposes the kernel FIPS switch.
const DefaultKernelFlagPath = "/proc/sys/crypto/fips_enabled"

// KernelProber reads the kernel FIPS flag. A missing flag file means the
// kernel was built without the facility.
type KernelProber struct {
	Path string
}

func (p KernelProber) Probe(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusUnsupported, err
	}
	path := p.Path
	if path == "" {
		path = DefaultKernelFlagPath
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return StatusUnsupported, nil
	}
	if err != nil {
		return StatusUnsupported, fmt.Errorf("hostfips: read %s: %w", path, err)
	}
	switch strings.TrimSpace(string(raw)) {
	case "1":
		return StatusEnabled, nil
	case "0":
		return StatusDisabled, nil
	default:
		return StatusUnsupported, fmt.Errorf("hostfips: unexpected value in %s: %q", path, strings.TrimSpace(string(raw)))
	}
}
