package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cryptoproviders/core"
	goerrors "github.com/goliatone/go-errors"
)

type stubResolver struct {
	lookupFn func(context.Context, core.LookupRequest) (*core.Service, error)
}

func (s stubResolver) Lookup(ctx context.Context, req core.LookupRequest) (*core.Service, error) {
	return s.lookupFn(ctx, req)
}

type stubLister struct {
	providers []core.ProviderInfo
}

func (s stubLister) Providers(context.Context) []core.ProviderInfo {
	return s.providers
}

type stubAuditReader struct {
	listFn func(context.Context, core.AuditFilter) (core.AuditPage, error)
}

func (s stubAuditReader) ListLookupAudit(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	return s.listFn(ctx, filter)
}

func TestLookupServiceQuery_DescribesSubstitution(t *testing.T) {
	resolver := stubResolver{
		lookupFn: func(_ context.Context, req core.LookupRequest) (*core.Service, error) {
			if req.Category != core.CategorySecureRandom || req.Algorithm != "SHA1PRNG" {
				t.Fatalf("unexpected lookup request %+v", req)
			}
			return core.NewService(core.CategorySecureRandom, "DEFAULT", "GOFIPS", nil,
				core.WithApproved(true),
				core.WithAttribute("ThreadSafe", "true"),
			), nil
		},
	}
	result, err := NewLookupServiceQuery(resolver).Query(context.Background(), LookupServiceMessage{
		Category:  core.CategorySecureRandom,
		Algorithm: "SHA1PRNG",
	})
	if err != nil {
		t.Fatalf("query lookup: %v", err)
	}
	if result.Algorithm != "DEFAULT" || result.Provider != "GOFIPS" {
		t.Fatalf("unexpected descriptor %#v", result)
	}
	if !result.Substituted || !result.Approved {
		t.Fatalf("expected approved substitution, got %#v", result)
	}
	if result.Attributes["ThreadSafe"] != "true" {
		t.Fatalf("expected attributes to be copied")
	}
}

func TestLookupServiceQuery_PropagatesErrors(t *testing.T) {
	sentinel := errors.New("no such algorithm")
	resolver := stubResolver{
		lookupFn: func(context.Context, core.LookupRequest) (*core.Service, error) {
			return nil, sentinel
		},
	}
	_, err := NewLookupServiceQuery(resolver).Query(context.Background(), LookupServiceMessage{Category: "Mac", Algorithm: "HmacMD5"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestListProvidersQuery_QueryDelegates(t *testing.T) {
	lister := stubLister{providers: []core.ProviderInfo{{Position: 1, Name: "SHIM(GOFIPS version 1.0)"}}}
	providers, err := NewListProvidersQuery(lister).Query(context.Background(), ListProvidersMessage{})
	if err != nil {
		t.Fatalf("query providers: %v", err)
	}
	if len(providers) != 1 || providers[0].Position != 1 {
		t.Fatalf("unexpected providers %#v", providers)
	}
}

func TestListLookupAuditQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubAuditReader{
		listFn: func(_ context.Context, filter core.AuditFilter) (core.AuditPage, error) {
			called = true
			if filter.Outcome != core.LookupOutcomeSubstituted {
				t.Fatalf("unexpected filter outcome %q", filter.Outcome)
			}
			return core.AuditPage{Total: 1, Items: []core.LookupEvent{{ID: "evt_1"}}}, nil
		},
	}
	page, err := NewListLookupAuditQuery(reader).Query(context.Background(), ListLookupAuditMessage{
		Filter: core.AuditFilter{Outcome: core.LookupOutcomeSubstituted},
	})
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	if !called || page.Total != 1 {
		t.Fatalf("unexpected page %#v", page)
	}
}

func TestMessages_Validate(t *testing.T) {
	err := (LookupServiceMessage{Category: core.CategorySecureRandom}).Validate()
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.CryptoErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", rich.TextCode)
	}

	from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	if err := (ListLookupAuditMessage{Filter: core.AuditFilter{From: &from, To: &to}}).Validate(); err == nil {
		t.Fatalf("expected inverted time range to fail validation")
	}
	if err := (ListLookupAuditMessage{Filter: core.AuditFilter{Outcome: "weird"}}).Validate(); err == nil {
		t.Fatalf("expected unknown outcome to fail validation")
	}
	if err := (ListLookupAuditMessage{Filter: core.AuditFilter{PerPage: 10}}).Validate(); err != nil {
		t.Fatalf("expected valid filter: %v", err)
	}
}

func TestQueries_NilDependenciesReturnRichErrors(t *testing.T) {
	var lookup *LookupServiceQuery
	_, err := lookup.Query(context.Background(), LookupServiceMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
}
