package sqlstore

import "github.com/goliatone/go-cryptoproviders/core"

var (
	_ core.AuditStore        = (*LookupAuditStore)(nil)
	_ core.AuditStore        = (*CachedLookupAuditStore)(nil)
	_ core.AuditStoreFactory = (*RepositoryFactory)(nil)
)
