package gojob

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-cryptoproviders/core"
	job "github.com/goliatone/go-job"
)

const (
	JobIDSelfTest   = core.JobIDSelfTest
	JobIDAuditPrune = core.JobIDAuditPrune

	dedupDrop  = "drop"
	dedupMerge = "merge"
)

// NewSelfTestMessage builds a self test job for chainName. Repeated requests
// for the same chain collapse into one queued run.
func NewSelfTestMessage(chainName string) *core.JobExecutionMessage {
	return &core.JobExecutionMessage{
		JobID:          JobIDSelfTest,
		ScriptPath:     JobIDSelfTest,
		Parameters:     map[string]any{"chain_name": strings.TrimSpace(chainName)},
		IdempotencyKey: JobIDSelfTest + ":" + strings.TrimSpace(chainName),
		DedupPolicy:    dedupDrop,
	}
}

// NewAuditPruneMessage builds a prune job. Zero values fall back to the
// runtime audit configuration.
func NewAuditPruneMessage(chainName string, retentionHours int, rowCap int) *core.JobExecutionMessage {
	params := map[string]any{"chain_name": strings.TrimSpace(chainName)}
	if retentionHours > 0 {
		params["retention_hours"] = retentionHours
	}
	if rowCap > 0 {
		params["row_cap"] = rowCap
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDAuditPrune,
		ScriptPath:     JobIDAuditPrune,
		Parameters:     params,
		IdempotencyKey: JobIDAuditPrune + ":" + strings.TrimSpace(chainName) + ":" + strconv.Itoa(retentionHours) + ":" + strconv.Itoa(rowCap),
		DedupPolicy:    dedupMerge,
	}
}

// ToExecutionMessage maps a runtime job message to go-job.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message back into the runtime contract.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyAnyMap(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
