package query

import (
	"strings"

	"github.com/goliatone/go-cryptoproviders/core"
)

const (
	TypeLookupService   = "cryptoproviders.query.service.lookup"
	TypeListProviders   = "cryptoproviders.query.provider.list"
	TypeListLookupAudit = "cryptoproviders.query.audit.list"
)

type LookupServiceMessage struct {
	Category  string
	Algorithm string
}

func (LookupServiceMessage) Type() string { return TypeLookupService }

func (m LookupServiceMessage) Validate() error {
	if strings.TrimSpace(m.Category) == "" {
		return queryValidationError("category", "category is required")
	}
	if strings.TrimSpace(m.Algorithm) == "" {
		return queryValidationError("algorithm", "algorithm is required")
	}
	return nil
}

type ListProvidersMessage struct{}

func (ListProvidersMessage) Type() string { return TypeListProviders }

func (ListProvidersMessage) Validate() error { return nil }

type ListLookupAuditMessage struct {
	Filter core.AuditFilter
}

func (ListLookupAuditMessage) Type() string { return TypeListLookupAudit }

func (m ListLookupAuditMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "per_page must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return queryValidationError("to", "to must not be before from")
	}
	switch m.Filter.Outcome {
	case "", core.LookupOutcomeResolved, core.LookupOutcomeSubstituted, core.LookupOutcomeNotFound:
		return nil
	default:
		return queryValidationError("outcome", "outcome is not supported")
	}
}
