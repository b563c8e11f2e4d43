package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-cryptoproviders/core"
)

type MutatingRuntime interface {
	InsertProvider(ctx context.Context, req core.InsertProviderRequest) (int, error)
	RemoveProvider(ctx context.Context, name string) error
	SelfTest(ctx context.Context) error
	PruneLookupAudit(ctx context.Context, policy core.AuditRetentionPolicy) (int, error)
	EnqueueJob(ctx context.Context, jobID string, parameters map[string]any) error
}

type InsertProviderCommand struct {
	runtime MutatingRuntime
}

func NewInsertProviderCommand(runtime MutatingRuntime) *InsertProviderCommand {
	return &InsertProviderCommand{runtime: runtime}
}

// Execute stores the 1-based position the provider landed at.
func (c *InsertProviderCommand) Execute(ctx context.Context, msg InsertProviderMessage) error {
	if c == nil || c.runtime == nil {
		return commandDependencyError("command: insert provider runtime is required")
	}
	position, err := c.runtime.InsertProvider(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, position)
	return nil
}

type RemoveProviderCommand struct {
	runtime MutatingRuntime
}

func NewRemoveProviderCommand(runtime MutatingRuntime) *RemoveProviderCommand {
	return &RemoveProviderCommand{runtime: runtime}
}

func (c *RemoveProviderCommand) Execute(ctx context.Context, msg RemoveProviderMessage) error {
	if c == nil || c.runtime == nil {
		return commandDependencyError("command: remove provider runtime is required")
	}
	return c.runtime.RemoveProvider(ctx, msg.Name)
}

type RunSelfTestCommand struct {
	runtime MutatingRuntime
}

func NewRunSelfTestCommand(runtime MutatingRuntime) *RunSelfTestCommand {
	return &RunSelfTestCommand{runtime: runtime}
}

func (c *RunSelfTestCommand) Execute(ctx context.Context, _ RunSelfTestMessage) error {
	if c == nil || c.runtime == nil {
		return commandDependencyError("command: self test runtime is required")
	}
	return c.runtime.SelfTest(ctx)
}

type PruneLookupAuditCommand struct {
	runtime MutatingRuntime
}

func NewPruneLookupAuditCommand(runtime MutatingRuntime) *PruneLookupAuditCommand {
	return &PruneLookupAuditCommand{runtime: runtime}
}

// Execute stores the number of deleted audit rows.
func (c *PruneLookupAuditCommand) Execute(ctx context.Context, msg PruneLookupAuditMessage) error {
	if c == nil || c.runtime == nil {
		return commandDependencyError("command: audit prune runtime is required")
	}
	deleted, err := c.runtime.PruneLookupAudit(ctx, msg.Policy)
	if err != nil {
		return err
	}
	storeResult(ctx, deleted)
	return nil
}

type EnqueueJobCommand struct {
	runtime MutatingRuntime
}

func NewEnqueueJobCommand(runtime MutatingRuntime) *EnqueueJobCommand {
	return &EnqueueJobCommand{runtime: runtime}
}

func (c *EnqueueJobCommand) Execute(ctx context.Context, msg EnqueueJobMessage) error {
	if c == nil || c.runtime == nil {
		return commandDependencyError("command: enqueue job runtime is required")
	}
	return c.runtime.EnqueueJob(ctx, msg.JobID, msg.Parameters)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
