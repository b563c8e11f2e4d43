package fips

import (
	"crypto/fips140"
	"sync/atomic"
)

var approvedOnly atomic.Bool

func init() {
	approvedOnly.Store(fips140.Enabled())
}

// InApprovedOnlyMode reports the process-wide approved-only registrar flag.
func InApprovedOnlyMode() bool {
	return approvedOnly.Load()
}

// SetApprovedOnlyMode changes the process-wide flag and returns the previous
// value. Providers that were built with an explicit ApprovedMode ignore it.
func SetApprovedOnlyMode(enabled bool) bool {
	return approvedOnly.Swap(enabled)
}

// RuntimeFIPSEnabled reports whether the Go runtime itself runs the FIPS 140
// module in FIPS mode (GODEBUG=fips140=on or only).
func RuntimeFIPSEnabled() bool {
	return fips140.Enabled()
}

type ApprovedMode string

const (
	ApprovedModeInherit ApprovedMode = ""
	ApprovedModeOn      ApprovedMode = "on"
	ApprovedModeOff     ApprovedMode = "off"
)
