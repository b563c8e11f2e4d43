package command

import (
	"strings"

	"github.com/goliatone/go-cryptoproviders/core"
)

const (
	TypeInsertProvider   = "cryptoproviders.command.provider.insert"
	TypeRemoveProvider   = "cryptoproviders.command.provider.remove"
	TypeRunSelfTest      = "cryptoproviders.command.selftest.run"
	TypePruneLookupAudit = "cryptoproviders.command.audit.prune"
	TypeEnqueueJob       = "cryptoproviders.command.job.enqueue"
)

type InsertProviderMessage struct {
	Request core.InsertProviderRequest
}

func (InsertProviderMessage) Type() string { return TypeInsertProvider }

func (m InsertProviderMessage) Validate() error {
	if m.Request.Provider == nil {
		return commandValidationError("provider", "provider is required")
	}
	if strings.TrimSpace(m.Request.Provider.Name()) == "" {
		return commandValidationError("provider", "provider name is required")
	}
	if m.Request.Position < 0 {
		return commandValidationError("position", "position must be >= 0")
	}
	return nil
}

type RemoveProviderMessage struct {
	Name string
}

func (RemoveProviderMessage) Type() string { return TypeRemoveProvider }

func (m RemoveProviderMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return commandValidationError("name", "provider name is required")
	}
	return nil
}

type RunSelfTestMessage struct{}

func (RunSelfTestMessage) Type() string { return TypeRunSelfTest }

func (RunSelfTestMessage) Validate() error { return nil }

type PruneLookupAuditMessage struct {
	Policy core.AuditRetentionPolicy
}

func (PruneLookupAuditMessage) Type() string { return TypePruneLookupAudit }

func (m PruneLookupAuditMessage) Validate() error {
	if m.Policy.TTL < 0 {
		return commandValidationError("ttl", "ttl must be >= 0")
	}
	if m.Policy.RowCap < 0 {
		return commandValidationError("row_cap", "row_cap must be >= 0")
	}
	if m.Policy.TTL == 0 && m.Policy.RowCap == 0 {
		return commandValidationError("policy", "ttl or row_cap is required")
	}
	return nil
}

type EnqueueJobMessage struct {
	JobID      string
	Parameters map[string]any
}

func (EnqueueJobMessage) Type() string { return TypeEnqueueJob }

func (m EnqueueJobMessage) Validate() error {
	switch strings.TrimSpace(m.JobID) {
	case core.JobIDSelfTest, core.JobIDAuditPrune:
		return nil
	case "":
		return commandValidationError("job_id", "job id is required")
	default:
		return commandValidationError("job_id", "job id is not supported")
	}
}
