package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	JobIDSelfTest   = "cryptoproviders.selftest"
	JobIDAuditPrune = "cryptoproviders.audit.prune"
)

// SelfTest runs known answer tests on every provider in the chain that
// implements SelfTester. All failures are joined into one error.
func (r *Runtime) SelfTest(ctx context.Context) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		r.observeOperation(ctx, startedAt, "self_test", err, fields)
	}()

	if r == nil || r.registry == nil {
		return r.mapError(fmt.Errorf("core: provider registry is required"))
	}
	tested := []string{}
	var failures []error
	for _, provider := range r.registry.List() {
		tester, ok := provider.(SelfTester)
		if !ok {
			continue
		}
		tested = append(tested, provider.Name())
		if testErr := tester.SelfTest(ctx); testErr != nil {
			failures = append(failures, fmt.Errorf("%w: %s: %v", ErrSelfTestFailed, provider.Name(), testErr))
		}
	}
	fields["providers"] = strings.Join(tested, ",")
	if len(failures) > 0 {
		return r.mapError(errors.Join(failures...))
	}
	return nil
}

func (r *Runtime) PruneLookupAudit(ctx context.Context, policy AuditRetentionPolicy) (deleted int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"ttl": policy.TTL.String(), "row_cap": policy.RowCap}
	defer func() {
		fields["deleted"] = deleted
		r.observeOperation(ctx, startedAt, "audit_prune", err, fields)
	}()

	if r == nil || r.auditPruner == nil {
		return 0, r.mapError(fmt.Errorf("core: audit pruner is required"))
	}
	deleted, err = r.auditPruner.Prune(ctx, policy)
	if err != nil {
		return deleted, r.mapError(err)
	}
	return deleted, nil
}

// ExecuteJob runs a queued job message against the runtime.
func (r *Runtime) ExecuteJob(ctx context.Context, msg *JobExecutionMessage) error {
	if msg == nil {
		return r.mapError(fmt.Errorf("core: job message is required"))
	}
	switch strings.TrimSpace(msg.JobID) {
	case JobIDSelfTest:
		return r.SelfTest(ctx)
	case JobIDAuditPrune:
		policy := r.Config().Audit.RetentionPolicy()
		if hours, ok := intParameter(msg.Parameters, "retention_hours"); ok {
			policy.TTL = hoursToDuration(hours)
		}
		if rowCap, ok := intParameter(msg.Parameters, "row_cap"); ok {
			policy.RowCap = rowCap
		}
		_, err := r.PruneLookupAudit(ctx, policy)
		return err
	default:
		return r.mapError(fmt.Errorf("core: job id is invalid: %q", msg.JobID))
	}
}

func (r *Runtime) EnqueueJob(ctx context.Context, jobID string, parameters map[string]any) error {
	if r == nil || r.jobEnqueuer == nil {
		return r.mapError(fmt.Errorf("core: job enqueuer is required"))
	}
	jobID = strings.TrimSpace(jobID)
	if jobID != JobIDSelfTest && jobID != JobIDAuditPrune {
		return r.mapError(fmt.Errorf("core: job id is invalid: %q", jobID))
	}
	msg := &JobExecutionMessage{
		JobID:          jobID,
		ScriptPath:     jobID,
		Parameters:     cloneFields(parameters),
		IdempotencyKey: jobIdempotencyKey(jobID, r.Config().ChainName, parameters),
		DedupPolicy:    "drop",
	}
	if err := r.jobEnqueuer.Enqueue(ctx, msg); err != nil {
		return r.mapError(err)
	}
	return nil
}

// jobIdempotencyKey is jobID:chain, plus a digest of the parameters when any
// are set, so jobs with different parameters are not deduplicated together.
func jobIdempotencyKey(jobID string, chainName string, parameters map[string]any) string {
	key := jobID + ":" + chainName
	if len(parameters) == 0 {
		return key
	}
	digest := sha256.New()
	for _, name := range slices.Sorted(maps.Keys(parameters)) {
		fmt.Fprintf(digest, "%s=%v;", name, parameters[name])
	}
	return key + ":" + hex.EncodeToString(digest.Sum(nil))[:16]
}

func intParameter(params map[string]any, key string) (int, bool) {
	value, ok := params[key]
	if !ok || value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}
