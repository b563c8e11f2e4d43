package cryptoproviders

import (
	"fmt"

	cryptocommand "github.com/goliatone/go-cryptoproviders/command"
	cryptoquery "github.com/goliatone/go-cryptoproviders/query"
)

// CommandQueryRuntime is the runtime surface the facade wraps.
type CommandQueryRuntime interface {
	cryptocommand.MutatingRuntime
	cryptoquery.ServiceResolver
	cryptoquery.ProviderLister
	cryptoquery.LookupAuditReader
}

type Commands struct {
	InsertProvider   *cryptocommand.InsertProviderCommand
	RemoveProvider   *cryptocommand.RemoveProviderCommand
	RunSelfTest      *cryptocommand.RunSelfTestCommand
	PruneLookupAudit *cryptocommand.PruneLookupAuditCommand
	EnqueueJob       *cryptocommand.EnqueueJobCommand
}

type Queries struct {
	LookupService   *cryptoquery.LookupServiceQuery
	ListProviders   *cryptoquery.ListProvidersQuery
	ListLookupAudit *cryptoquery.ListLookupAuditQuery
}

type Facade struct {
	runtime  CommandQueryRuntime
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	auditReader cryptoquery.LookupAuditReader
}

// WithLookupAuditReader serves ListLookupAudit from reader instead of the
// runtime.
func WithLookupAuditReader(reader cryptoquery.LookupAuditReader) FacadeOption {
	return func(options *facadeOptions) {
		options.auditReader = reader
	}
}

func NewFacade(runtime CommandQueryRuntime, opts ...FacadeOption) (*Facade, error) {
	if runtime == nil {
		return nil, fmt.Errorf("cryptoproviders: command/query runtime is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	reader := cfg.auditReader
	if reader == nil {
		reader = runtime
	}

	facade := &Facade{runtime: runtime}
	facade.commands = Commands{
		InsertProvider:   cryptocommand.NewInsertProviderCommand(runtime),
		RemoveProvider:   cryptocommand.NewRemoveProviderCommand(runtime),
		RunSelfTest:      cryptocommand.NewRunSelfTestCommand(runtime),
		PruneLookupAudit: cryptocommand.NewPruneLookupAuditCommand(runtime),
		EnqueueJob:       cryptocommand.NewEnqueueJobCommand(runtime),
	}
	facade.queries = Queries{
		LookupService:   cryptoquery.NewLookupServiceQuery(runtime),
		ListProviders:   cryptoquery.NewListProvidersQuery(runtime),
		ListLookupAudit: cryptoquery.NewListLookupAuditQuery(reader),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Runtime() CommandQueryRuntime {
	if f == nil {
		return nil
	}
	return f.runtime
}

var _ CommandQueryRuntime = (*Runtime)(nil)
