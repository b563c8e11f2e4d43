package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-cryptoproviders/core"
)

var (
	_ gocmd.Commander[InsertProviderMessage]   = (*InsertProviderCommand)(nil)
	_ gocmd.Commander[RemoveProviderMessage]   = (*RemoveProviderCommand)(nil)
	_ gocmd.Commander[RunSelfTestMessage]      = (*RunSelfTestCommand)(nil)
	_ gocmd.Commander[PruneLookupAuditMessage] = (*PruneLookupAuditCommand)(nil)
	_ gocmd.Commander[EnqueueJobMessage]       = (*EnqueueJobCommand)(nil)

	_ MutatingRuntime = (*core.Runtime)(nil)
)
