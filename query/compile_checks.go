package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-cryptoproviders/core"
)

var (
	_ gocmd.Querier[LookupServiceMessage, ServiceDescriptor]   = (*LookupServiceQuery)(nil)
	_ gocmd.Querier[ListProvidersMessage, []core.ProviderInfo] = (*ListProvidersQuery)(nil)
	_ gocmd.Querier[ListLookupAuditMessage, core.AuditPage]    = (*ListLookupAuditQuery)(nil)

	_ ServiceResolver   = (*core.Runtime)(nil)
	_ ProviderLister    = (*core.Runtime)(nil)
	_ LookupAuditReader = (*core.Runtime)(nil)
)
