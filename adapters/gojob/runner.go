package gojob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-cryptoproviders/core"
	glog "github.com/goliatone/go-logger/glog"
)

// ErrQueueEmpty is returned by dequeuers with nothing to deliver. RunOnce
// treats it as "no work" rather than a failure.
var ErrQueueEmpty = errors.New("gojob: queue is empty")

// JobExecutor runs one crypto maintenance job. core.Runtime implements it.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, msg *core.JobExecutionMessage) error
}

// Runner pulls self test and audit prune jobs from a queue and executes them
// against the runtime.
type Runner struct {
	executor JobExecutor
	dequeuer core.JobDequeuer
	hook     core.JobWorkerHook
	policy   RetryPolicy
	logger   core.Logger
	now      func() time.Time
	attempts map[string]int
}

type RunnerOption func(*Runner)

func WithRunnerHook(hook core.JobWorkerHook) RunnerOption {
	return func(r *Runner) {
		r.hook = hook
	}
}

func WithRunnerRetryPolicy(policy RetryPolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
	}
}

func WithRunnerLogger(logger core.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(executor JobExecutor, dequeuer core.JobDequeuer, opts ...RunnerOption) (*Runner, error) {
	if executor == nil {
		return nil, fmt.Errorf("gojob: job executor is required")
	}
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	runner := &Runner{
		executor: executor,
		dequeuer: dequeuer,
		policy:   DefaultRetryPolicy(),
		now:      time.Now,
		attempts: map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	runner.logger = glog.Ensure(runner.logger)
	return runner, nil
}

// RunOnce processes a single delivery. It returns false when the queue had
// nothing to deliver.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	delivery, err := r.dequeuer.Dequeue(ctx)
	if errors.Is(err, ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}
	msg := delivery.Message()
	if msg == nil {
		return true, delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: "missing message"})
	}

	key := msg.IdempotencyKey
	if key == "" {
		key = msg.JobID
	}
	r.attempts[key]++
	attempt := r.attempts[key]
	event := core.JobWorkerEvent{Message: msg, Attempt: attempt, StartedAt: r.now()}
	r.notify(ctx, "start", event)

	execErr := r.executor.ExecuteJob(ctx, msg)
	event.Duration = r.now().Sub(event.StartedAt)
	if execErr == nil {
		delete(r.attempts, key)
		r.notify(ctx, "success", event)
		return true, delivery.Ack(ctx)
	}

	event.Err = execErr
	nack := r.policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   retryDelay(attempt),
		Requeue: true,
		Reason:  execErr.Error(),
	}, attempt)
	event.Delay = nack.Delay
	if nack.Requeue {
		r.notify(ctx, "retry", event)
	} else {
		delete(r.attempts, key)
		r.notify(ctx, "failure", event)
	}
	r.logger.Warn("crypto maintenance job failed",
		"job_id", msg.JobID,
		"attempt", attempt,
		"requeue", nack.Requeue,
		"dead_letter", nack.DeadLetter,
		"error", execErr.Error(),
	)
	if attemptNacker, ok := delivery.(interface {
		NackForAttempt(context.Context, core.JobNackOptions, int) error
	}); ok {
		return true, attemptNacker.NackForAttempt(ctx, nack, attempt)
	}
	return true, delivery.Nack(ctx, nack)
}

// Drain processes deliveries until the queue is empty or ctx is done.
func (r *Runner) Drain(ctx context.Context) (int, error) {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		handled, err := r.RunOnce(ctx)
		if err != nil {
			return processed, err
		}
		if !handled {
			return processed, nil
		}
		processed++
	}
}

func (r *Runner) notify(ctx context.Context, stage string, event core.JobWorkerEvent) {
	if r.hook == nil {
		return
	}
	switch stage {
	case "start":
		r.hook.OnStart(ctx, event)
	case "success":
		r.hook.OnSuccess(ctx, event)
	case "retry":
		r.hook.OnRetry(ctx, event)
	case "failure":
		r.hook.OnFailure(ctx, event)
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return time.Duration(attempt*attempt) * time.Second
}

var _ JobExecutor = (*core.Runtime)(nil)
