package hostfips

import (
	"context"
	"errors"
	"sync"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Trace(string, ...any) {}
func (l *recordingLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Fatal(string, ...any) {}
func (l *recordingLogger) WithContext(context.Context) glog.Logger {
	return l
}

func failing(err error) Prober {
	return ProberFunc(func(context.Context) (Status, error) {
		return StatusUnsupported, err
	})
}

func TestComposite_EnabledWins(t *testing.T) {
	status, err := Composite(Static(StatusDisabled), failing(errors.New("boom")), Static(StatusEnabled)).Probe(context.Background())
	if err != nil {
		t.Fatalf("expected no error once a probe answered, got %v", err)
	}
	if status != StatusEnabled {
		t.Fatalf("expected enabled, got %s", status)
	}
}

func TestComposite_DisabledOverUnsupported(t *testing.T) {
	status, err := Composite(Static(StatusUnsupported), Static(StatusDisabled), nil).Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if status != StatusDisabled {
		t.Fatalf("expected disabled, got %s", status)
	}
}

func TestComposite_ErrorsOnlyWithoutAnswer(t *testing.T) {
	status, err := Composite(Static(StatusUnsupported), failing(errors.New("boom"))).Probe(context.Background())
	if err == nil {
		t.Fatalf("expected joined error when no probe answered")
	}
	if status != StatusUnsupported {
		t.Fatalf("expected unsupported, got %s", status)
	}
}

func TestDetect_ErrorDegradesToUnsupported(t *testing.T) {
	logger := &recordingLogger{}
	status := Detect(context.Background(), logger, failing(errors.New("permission denied")))
	if status != StatusUnsupported {
		t.Fatalf("expected unsupported, got %s", status)
	}
	if len(logger.messages) != 1 || logger.messages[0] != "could not detect if FIPS is enabled from the host" {
		t.Fatalf("expected one debug line, got %v", logger.messages)
	}
}

func TestDetect_PanicDegradesToUnsupported(t *testing.T) {
	logger := &recordingLogger{}
	status := Detect(context.Background(), logger, ProberFunc(func(context.Context) (Status, error) {
		panic("probe exploded")
	}))
	if status != StatusUnsupported {
		t.Fatalf("expected unsupported after panic, got %s", status)
	}
	if len(logger.messages) != 1 {
		t.Fatalf("expected panic to be logged at debug, got %v", logger.messages)
	}
}

func TestDetect_UnknownStatusDegradesToUnsupported(t *testing.T) {
	status := Detect(context.Background(), nil, Static(Status("maybe")))
	if status != StatusUnsupported {
		t.Fatalf("expected unsupported for unknown status, got %s", status)
	}
}

func TestDetect_PassesThroughAnswers(t *testing.T) {
	if got := Detect(context.Background(), nil, Static(StatusEnabled)); !got.Enabled() {
		t.Fatalf("expected enabled, got %s", got)
	}
	if got := Detect(context.Background(), nil, Static(StatusDisabled)); got != StatusDisabled {
		t.Fatalf("expected disabled, got %s", got)
	}
}

func TestDetect_DefaultProberNeverFails(t *testing.T) {
	status := Detect(context.Background(), nil, nil)
	if _, err := ParseStatus(status.String()); err != nil {
		t.Fatalf("expected a known status, got %q", status)
	}
}

func TestRuntimeProber_Answers(t *testing.T) {
	status, err := RuntimeProber{}.Probe(context.Background())
	if err != nil {
		t.Fatalf("runtime probe: %v", err)
	}
	if status != StatusEnabled && status != StatusDisabled {
		t.Fatalf("expected a definite runtime answer, got %s", status)
	}
}
