package query

import (
	"context"

	"github.com/goliatone/go-cryptoproviders/core"
)

type ServiceResolver interface {
	Lookup(ctx context.Context, req core.LookupRequest) (*core.Service, error)
}

type ProviderLister interface {
	Providers(ctx context.Context) []core.ProviderInfo
}

type LookupAuditReader interface {
	ListLookupAudit(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error)
}

// ServiceDescriptor is the exported view of a resolved service.
type ServiceDescriptor struct {
	Category           string            `json:"category"`
	RequestedAlgorithm string            `json:"requested_algorithm"`
	Algorithm          string            `json:"algorithm"`
	Provider           string            `json:"provider"`
	Aliases            []string          `json:"aliases,omitempty"`
	Approved           bool              `json:"approved"`
	Substituted        bool              `json:"substituted"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

type LookupServiceQuery struct {
	resolver ServiceResolver
}

func NewLookupServiceQuery(resolver ServiceResolver) *LookupServiceQuery {
	return &LookupServiceQuery{resolver: resolver}
}

func (q *LookupServiceQuery) Query(ctx context.Context, msg LookupServiceMessage) (ServiceDescriptor, error) {
	if q == nil || q.resolver == nil {
		return ServiceDescriptor{}, queryDependencyError("query: service resolver is required")
	}
	svc, err := q.resolver.Lookup(ctx, core.LookupRequest{Category: msg.Category, Algorithm: msg.Algorithm})
	if err != nil {
		return ServiceDescriptor{}, err
	}
	return describeService(msg.Algorithm, svc), nil
}

type ListProvidersQuery struct {
	lister ProviderLister
}

func NewListProvidersQuery(lister ProviderLister) *ListProvidersQuery {
	return &ListProvidersQuery{lister: lister}
}

func (q *ListProvidersQuery) Query(ctx context.Context, _ ListProvidersMessage) ([]core.ProviderInfo, error) {
	if q == nil || q.lister == nil {
		return nil, queryDependencyError("query: provider lister is required")
	}
	return q.lister.Providers(ctx), nil
}

type ListLookupAuditQuery struct {
	reader LookupAuditReader
}

func NewListLookupAuditQuery(reader LookupAuditReader) *ListLookupAuditQuery {
	return &ListLookupAuditQuery{reader: reader}
}

func (q *ListLookupAuditQuery) Query(ctx context.Context, msg ListLookupAuditMessage) (core.AuditPage, error) {
	if q == nil || q.reader == nil {
		return core.AuditPage{}, queryDependencyError("query: lookup audit reader is required")
	}
	return q.reader.ListLookupAudit(ctx, msg.Filter)
}

func describeService(requested string, svc *core.Service) ServiceDescriptor {
	if svc == nil {
		return ServiceDescriptor{RequestedAlgorithm: requested}
	}
	attributes := map[string]string{}
	for key, value := range svc.Attributes {
		attributes[key] = value
	}
	return ServiceDescriptor{
		Category:           svc.Category,
		RequestedAlgorithm: requested,
		Algorithm:          svc.Algorithm,
		Provider:           svc.Provider,
		Aliases:            append([]string(nil), svc.Aliases...),
		Approved:           svc.Approved,
		Substituted:        core.IsSubstitution(requested, svc),
		Attributes:         attributes,
	}
}
