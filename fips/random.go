package fips

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// drbgRandom serializes reads from the module DRBG so one instance can be
// shared across goroutines.
type drbgRandom struct {
	mu        sync.Mutex
	algorithm string
	source    io.Reader
}

func newDRBGRandom(algorithm string, source io.Reader) *drbgRandom {
	if source == nil {
		source = rand.Reader
	}
	return &drbgRandom{algorithm: algorithm, source: source}
}

func (r *drbgRandom) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := io.ReadFull(r.source, p)
	if err != nil {
		return n, fmt.Errorf("fips: %s read failed: %w", r.algorithm, err)
	}
	return n, nil
}

func (r *drbgRandom) Algorithm() string {
	return r.algorithm
}

func (r *drbgRandom) String() string {
	return ProviderName + " " + r.algorithm
}
