package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type lookupAuditRecord struct {
	bun.BaseModel `bun:"table:crypto_lookup_audit,alias:cla"`

	ID                 string    `bun:"id,pk"`
	ChainName          string    `bun:"chain_name,notnull"`
	Category           string    `bun:"category,notnull"`
	RequestedAlgorithm string    `bun:"requested_algorithm,notnull"`
	ResolvedAlgorithm  string    `bun:"resolved_algorithm,notnull"`
	ProviderName       string    `bun:"provider_name,notnull"`
	Outcome            string    `bun:"outcome,notnull"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
