package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cryptoproviders/core"
	job "github.com/goliatone/go-job"
)

type scriptedExecutor struct {
	results []error
	seen    []string
}

func (e *scriptedExecutor) ExecuteJob(_ context.Context, msg *core.JobExecutionMessage) error {
	e.seen = append(e.seen, msg.JobID)
	if len(e.results) == 0 {
		return nil
	}
	next := e.results[0]
	e.results = e.results[1:]
	return next
}

func queued(messages ...*core.JobExecutionMessage) *stubQueueDequeuer {
	dequeuer := &stubQueueDequeuer{}
	for _, msg := range messages {
		dequeuer.deliveries = append(dequeuer.deliveries, &stubQueueDelivery{msg: ToExecutionMessage(msg)})
	}
	return dequeuer
}

func TestRunner_DrainAcksSuccessfulJobs(t *testing.T) {
	executor := &scriptedExecutor{}
	raw := queued(NewSelfTestMessage("edge"), NewAuditPruneMessage("edge", 1, 0))
	hook := &capturingHook{}
	runner, err := NewRunner(executor, NewDequeuerAdapter(raw, DefaultRetryPolicy()), WithRunnerHook(hook))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	processed, err := runner.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed jobs, got %d", processed)
	}
	if len(executor.seen) != 2 || executor.seen[0] != JobIDSelfTest || executor.seen[1] != JobIDAuditPrune {
		t.Fatalf("unexpected executed jobs %v", executor.seen)
	}
	for idx, delivery := range raw.handed {
		if !delivery.acked {
			t.Fatalf("expected delivery %d to be acked", idx)
		}
	}
	if len(hook.starts) != 2 || len(hook.successes) != 2 {
		t.Fatalf("expected start and success hooks, got %d/%d", len(hook.starts), len(hook.successes))
	}
}

func TestRunner_RetriesThenDeadLetters(t *testing.T) {
	failure := errors.New("kat mismatch")
	executor := &scriptedExecutor{results: []error{failure, failure}}
	msg := NewSelfTestMessage("edge")
	raw := queued(msg, msg)
	hook := &capturingHook{}
	policy := RetryPolicy{MaxAttempts: 2, MaxDelay: time.Second, DeadLetterOnMax: true}
	runner, err := NewRunner(executor, NewDequeuerAdapter(raw, policy),
		WithRunnerHook(hook),
		WithRunnerRetryPolicy(policy),
	)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if handled, err := runner.RunOnce(context.Background()); err != nil || !handled {
		t.Fatalf("first run: handled=%v err=%v", handled, err)
	}
	first := raw.handed[0]
	if !first.nacked || !first.nackOpts.Requeue || first.nackOpts.Delay != time.Second {
		t.Fatalf("expected bounded requeue on first failure, got %#v", first.nackOpts)
	}
	if len(hook.retries) != 1 {
		t.Fatalf("expected retry hook")
	}

	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := raw.handed[1]
	if second.nackOpts.Requeue || !second.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter on second failure, got %#v", second.nackOpts)
	}
	if len(hook.failures) != 1 || hook.failures[0].Attempt != 2 {
		t.Fatalf("expected failure hook on attempt 2, got %#v", hook.failures)
	}

	handled, err := runner.RunOnce(context.Background())
	if err != nil || handled {
		t.Fatalf("expected empty queue, got handled=%v err=%v", handled, err)
	}
}

func TestRunner_DeadLettersMissingMessage(t *testing.T) {
	raw := &stubQueueDequeuer{deliveries: []*stubQueueDelivery{{msg: (*job.ExecutionMessage)(nil)}}}
	runner, err := NewRunner(&scriptedExecutor{}, NewDequeuerAdapter(raw, RetryPolicy{}))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if !raw.handed[0].nackOpts.DeadLetter {
		t.Fatalf("expected message-less delivery to be dead lettered")
	}
}

func TestRunner_ExecutesAgainstRuntime(t *testing.T) {
	store := core.NewMemoryAuditStore()
	runtime, err := core.NewRuntime(core.Config{}, core.WithAuditStore(store))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	raw := queued(NewSelfTestMessage("cryptoproviders"), NewAuditPruneMessage("cryptoproviders", 0, 10))
	runner, err := NewRunner(runtime, NewDequeuerAdapter(raw, DefaultRetryPolicy()))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	processed, err := runner.Drain(context.Background())
	if err != nil || processed != 2 {
		t.Fatalf("drain: processed=%d err=%v", processed, err)
	}
	for idx, delivery := range raw.handed {
		if !delivery.acked {
			t.Fatalf("expected delivery %d to be acked", idx)
		}
	}
}

func TestNewRunner_RequiresDependencies(t *testing.T) {
	if _, err := NewRunner(nil, NewDequeuerAdapter(&stubQueueDequeuer{}, RetryPolicy{})); err == nil {
		t.Fatalf("expected missing executor error")
	}
	if _, err := NewRunner(&scriptedExecutor{}, nil); err == nil {
		t.Fatalf("expected missing dequeuer error")
	}
}
