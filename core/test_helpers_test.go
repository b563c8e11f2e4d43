package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

type testProvider struct {
	name     string
	services map[string]string
	testErr  error
}

func (p testProvider) Name() string    { return p.name }
func (p testProvider) Version() string { return "1.0" }
func (p testProvider) Info() string    { return "test provider " + p.name }

func (p testProvider) Service(category string, algorithm string) *Service {
	for key, label := range p.services {
		parts := strings.SplitN(key, "/", 2)
		if len(parts) != 2 || parts[0] != category || !strings.EqualFold(parts[1], algorithm) {
			continue
		}
		return NewService(parts[0], parts[1], p.name, func() (any, error) {
			return &labelRandom{label: label, algorithm: parts[1]}, nil
		})
	}
	return nil
}

type selfTestingProvider struct {
	testProvider
}

func (p selfTestingProvider) SelfTest(context.Context) error {
	return p.testErr
}

// redirectingProvider answers one legacy name with a differently named
// service, the way the compatibility shim does.
type redirectingProvider struct {
	name      string
	from      string
	toService *Service
}

func (p redirectingProvider) Name() string    { return p.name }
func (p redirectingProvider) Version() string { return "1" }
func (p redirectingProvider) Info() string    { return "redirecting provider" }

func (p redirectingProvider) Service(category string, algorithm string) *Service {
	if category == CategorySecureRandom && algorithm == p.from {
		return p.toService
	}
	return nil
}

type labelRandom struct {
	label     string
	algorithm string
}

func (r *labelRandom) Read(p []byte) (int, error) {
	sum := sha256.Sum256([]byte(r.label))
	for idx := range p {
		p[idx] = sum[idx%len(sum)]
	}
	return len(p), nil
}

func (r *labelRandom) Algorithm() string { return r.algorithm }

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type capturingMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newCapturingMetrics() *capturingMetrics {
	return &capturingMetrics{counters: map[string]int64{}}
}

func (m *capturingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
	if outcome := tags["outcome"]; outcome != "" {
		m.counters[fmt.Sprintf("%s|%s", name, outcome)] += value
	}
}

func (m *capturingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func (m *capturingMetrics) count(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

type recordingEnqueuer struct {
	messages []*JobExecutionMessage
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, msg *JobExecutionMessage) error {
	e.messages = append(e.messages, msg)
	return nil
}

type fakeAuditFactory struct {
	store     *MemoryAuditStore
	client    any
	chainName string
}

func (f *fakeAuditFactory) BuildAuditStore(client any, chainName string) (AuditStore, error) {
	f.client = client
	f.chainName = chainName
	return f.store, nil
}
