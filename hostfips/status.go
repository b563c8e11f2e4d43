package hostfips

import (
	"context"
	"errors"
	"fmt"

	glog "github.com/goliatone/go-logger/glog"
)

type Status string

const (
	StatusUnsupported Status = "unsupported"
	StatusEnabled     Status = "enabled"
	StatusDisabled    Status = "disabled"
)

func (s Status) Enabled() bool {
	return s == StatusEnabled
}

func (s Status) String() string {
	if s == "" {
		return string(StatusUnsupported)
	}
	return string(s)
}

// ParseStatus accepts the values produced by Status.String.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusEnabled, StatusDisabled, StatusUnsupported:
		return Status(value), nil
	case "":
		return StatusUnsupported, nil
	default:
		return StatusUnsupported, fmt.Errorf("hostfips: unknown status %q", value)
	}
}

type Prober interface {
	Probe(ctx context.Context) (Status, error)
}

type ProberFunc func(ctx context.Context) (Status, error)

func (f ProberFunc) Probe(ctx context.Context) (Status, error) {
	return f(ctx)
}

// Static always reports the same status.
func Static(status Status) Prober {
	return ProberFunc(func(context.Context) (Status, error) {
		return status, nil
	})
}

type compositeProber []Prober

// Composite merges several probes: enabled wins over disabled, disabled over
// unsupported. Errors are only returned when no probe gave an answer.
func Composite(probers ...Prober) Prober {
	out := make(compositeProber, 0, len(probers))
	for _, prober := range probers {
		if prober != nil {
			out = append(out, prober)
		}
	}
	return out
}

func (c compositeProber) Probe(ctx context.Context) (Status, error) {
	result := StatusUnsupported
	var errs []error
	for _, prober := range c {
		status, err := prober.Probe(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch status {
		case StatusEnabled:
			return StatusEnabled, nil
		case StatusDisabled:
			result = StatusDisabled
		}
	}
	if result == StatusUnsupported && len(errs) > 0 {
		return StatusUnsupported, errors.Join(errs...)
	}
	return result, nil
}

// DefaultProber checks the kernel flag and the Go runtime FIPS mode.
func DefaultProber() Prober {
	return Composite(KernelProber{}, RuntimeProber{})
}

// Detect runs prober and never fails: errors, panics and unknown answers all
// resolve to StatusUnsupported with a debug line on logger.
func Detect(ctx context.Context, logger glog.Logger, prober Prober) (status Status) {
	logger = glog.Ensure(logger)
	if prober == nil {
		prober = DefaultProber()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Debug("could not detect if FIPS is enabled from the host", "panic", fmt.Sprint(recovered))
			status = StatusUnsupported
		}
	}()

	status, err := prober.Probe(ctx)
	if err != nil {
		logger.Debug("could not detect if FIPS is enabled from the host", "error", err.Error())
		return StatusUnsupported
	}
	switch status {
	case StatusEnabled, StatusDisabled, StatusUnsupported:
		return status
	default:
		logger.Debug("could not detect if FIPS is enabled from the host", "status", string(status))
		return StatusUnsupported
	}
}
