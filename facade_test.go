package cryptoproviders

import (
	"context"
	"testing"

	cryptocommand "github.com/goliatone/go-cryptoproviders/command"
	"github.com/goliatone/go-cryptoproviders/core"
	cryptoquery "github.com/goliatone/go-cryptoproviders/query"
)

func TestFacade_WiresCommandsAndQueries(t *testing.T) {
	ctx := context.Background()
	runtime, err := core.NewRuntime(Config{Audit: core.AuditConfig{Enabled: true, RecordAll: true}})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	facade, err := NewFacade(runtime)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	if err := facade.Commands().InsertProvider.Execute(ctx, cryptocommand.InsertProviderMessage{
		Request: core.InsertProviderRequest{Provider: extensionProvider{name: "HSM"}},
	}); err != nil {
		t.Fatalf("insert provider: %v", err)
	}
	providers, err := facade.Queries().ListProviders.Query(ctx, cryptoquery.ListProvidersMessage{})
	if err != nil {
		t.Fatalf("list providers: %v", err)
	}
	if len(providers) != 1 || providers[0].Name != "HSM" {
		t.Fatalf("unexpected providers %#v", providers)
	}

	if _, err := facade.Queries().LookupService.Query(ctx, cryptoquery.LookupServiceMessage{
		Category:  core.CategorySecureRandom,
		Algorithm: "SHA1PRNG",
	}); err == nil {
		t.Fatalf("expected lookup on a provider without services to fail")
	}
	page, err := facade.Queries().ListLookupAudit.Query(ctx, cryptoquery.ListLookupAuditMessage{})
	if err != nil {
		t.Fatalf("list lookup audit: %v", err)
	}
	if page.Total != 1 || page.Items[0].Outcome != core.LookupOutcomeNotFound {
		t.Fatalf("expected one not_found audit event, got %+v", page)
	}

	if err := facade.Commands().RemoveProvider.Execute(ctx, cryptocommand.RemoveProviderMessage{Name: "HSM"}); err != nil {
		t.Fatalf("remove provider: %v", err)
	}
	if facade.Runtime() != runtime {
		t.Fatalf("expected facade runtime accessor")
	}
}

func TestFacade_UsesAuditReaderOverride(t *testing.T) {
	runtime, err := core.NewRuntime(Config{})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	reader := &staticAuditReader{page: core.AuditPage{Total: 7}}
	facade, err := NewFacade(runtime, WithLookupAuditReader(reader))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	page, err := facade.Queries().ListLookupAudit.Query(context.Background(), cryptoquery.ListLookupAuditMessage{})
	if err != nil {
		t.Fatalf("list lookup audit: %v", err)
	}
	if page.Total != 7 || reader.calls != 1 {
		t.Fatalf("expected override reader to serve the query")
	}
}

func TestNewFacade_RequiresRuntime(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected missing runtime error")
	}
}

type staticAuditReader struct {
	page  core.AuditPage
	calls int
}

func (r *staticAuditReader) ListLookupAudit(context.Context, core.AuditFilter) (core.AuditPage, error) {
	r.calls++
	return r.page, nil
}
