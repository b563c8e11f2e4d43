package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newSubstitutingChain(t *testing.T) *ProviderChain {
	t.Helper()
	certified := testProvider{
		name:     "GOFIPS",
		services: map[string]string{"SecureRandom/DEFAULT": "drbg"},
	}
	redirect := redirectingProvider{
		name:      "SHIM",
		from:      "SHA1PRNG",
		toService: certified.Service(CategorySecureRandom, "DEFAULT"),
	}
	legacy := testProvider{
		name:     "GOSTD",
		services: map[string]string{"SecureRandom/SHA1PRNG": "legacy"},
	}
	chain, err := NewProviderChain(redirect, certified, legacy)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	return chain
}

func TestRuntime_LookupRecordsSubstitution(t *testing.T) {
	ctx := context.Background()
	metrics := newCapturingMetrics()
	runtime, err := NewRuntime(Config{Audit: AuditConfig{Enabled: true}},
		WithRegistry(newSubstitutingChain(t)),
		WithMetricsRecorder(metrics),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	svc, err := runtime.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: "SHA1PRNG"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if svc.Algorithm != "DEFAULT" || svc.Provider != "GOFIPS" {
		t.Fatalf("expected GOFIPS DEFAULT, got %s", svc)
	}
	if _, err := runtime.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: "DEFAULT"}); err != nil {
		t.Fatalf("lookup default: %v", err)
	}

	page, err := runtime.ListLookupAudit(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected only the substitution to be audited, got %d", page.Total)
	}
	event := page.Items[0]
	if event.Outcome != LookupOutcomeSubstituted {
		t.Fatalf("expected substituted outcome, got %q", event.Outcome)
	}
	if event.RequestedAlgorithm != "SHA1PRNG" || event.ResolvedAlgorithm != "DEFAULT" {
		t.Fatalf("unexpected event algorithms: %+v", event)
	}
	if event.ID == "" {
		t.Fatalf("expected event id to be assigned")
	}
	if got := metrics.count("cryptoproviders.lookup.total"); got != 2 {
		t.Fatalf("expected 2 lookup counter increments, got %d", got)
	}
	if got := metrics.count("cryptoproviders.lookup.total|substituted"); got != 1 {
		t.Fatalf("expected 1 substituted lookup, got %d", got)
	}
}

func TestRuntime_LookupRecordAllIncludesResolvedAndMisses(t *testing.T) {
	ctx := context.Background()
	runtime, err := NewRuntime(Config{Audit: AuditConfig{Enabled: true, RecordAll: true}},
		WithRegistry(newSubstitutingChain(t)),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	_, _ = runtime.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: "DEFAULT"})
	_, _ = runtime.Lookup(ctx, LookupRequest{Category: CategoryMac, Algorithm: "HmacMD5"})

	page, err := runtime.ListLookupAudit(ctx, AuditFilter{Outcome: LookupOutcomeNotFound})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if page.Total != 1 || page.Items[0].RequestedAlgorithm != "HmacMD5" {
		t.Fatalf("expected one not_found event, got %+v", page.Items)
	}
	page, _ = runtime.ListLookupAudit(ctx, AuditFilter{})
	if page.Total != 2 {
		t.Fatalf("expected resolved lookup to be recorded too, got %d", page.Total)
	}
}

func TestRuntime_NewSecureRandomReadsFromResolvedService(t *testing.T) {
	runtime, err := NewRuntime(Config{}, WithRegistry(newSubstitutingChain(t)))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	random, err := runtime.NewSecureRandom(context.Background(), "SHA1PRNG")
	if err != nil {
		t.Fatalf("new secure random: %v", err)
	}
	if random.Algorithm() != "DEFAULT" {
		t.Fatalf("expected DEFAULT instance, got %q", random.Algorithm())
	}
	buf := make([]byte, 16)
	if n, err := random.Read(buf); err != nil || n != len(buf) {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
}

func TestRuntime_InsertRemoveAndDescribeProviders(t *testing.T) {
	ctx := context.Background()
	runtime, err := NewRuntime(Config{})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if _, err := runtime.InsertProvider(ctx, InsertProviderRequest{Provider: testProvider{name: "GOSTD"}}); err != nil {
		t.Fatalf("insert GOSTD: %v", err)
	}
	position, err := runtime.InsertProvider(ctx, InsertProviderRequest{Provider: testProvider{name: "GOFIPS"}, Position: 1})
	if err != nil {
		t.Fatalf("insert GOFIPS: %v", err)
	}
	if position != 1 {
		t.Fatalf("expected GOFIPS at position 1, got %d", position)
	}

	providers := runtime.Providers(ctx)
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if providers[0].Name != "GOFIPS" || providers[0].Position != 1 {
		t.Fatalf("unexpected first provider: %+v", providers[0])
	}
	if providers[0].DisplayName != "GOFIPS version 1.0" {
		t.Fatalf("unexpected display name %q", providers[0].DisplayName)
	}

	if err := runtime.RemoveProvider(ctx, "GOFIPS"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(runtime.Providers(ctx)); got != 1 {
		t.Fatalf("expected 1 provider after remove, got %d", got)
	}
}

func TestRuntime_UsesAuditStoreFactory(t *testing.T) {
	store := NewMemoryAuditStore()
	factory := &fakeAuditFactory{store: store}
	client := &struct{}{}
	runtime, err := NewRuntime(Config{},
		WithRepositoryFactory(factory),
		WithPersistenceClient(client),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if factory.client != client {
		t.Fatalf("expected persistence client to be passed to the factory")
	}
	deps := runtime.Dependencies()
	if deps.AuditRecorder != store || deps.AuditReader != store || deps.AuditPruner != store {
		t.Fatalf("expected factory store to back recorder, reader and pruner")
	}
}

func TestRuntime_SelfTestJoinsFailures(t *testing.T) {
	ctx := context.Background()
	chain, _ := NewProviderChain(
		selfTestingProvider{testProvider{name: "GOOD"}},
		selfTestingProvider{testProvider{name: "BAD", testErr: errors.New("kat mismatch")}},
		testProvider{name: "PLAIN"},
	)
	runtime, err := NewRuntime(Config{}, WithRegistry(chain))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	err = runtime.SelfTest(ctx)
	assertTextCode(t, err, CryptoErrorSelfTestFailed)

	healthy, _ := NewProviderChain(selfTestingProvider{testProvider{name: "GOOD"}})
	runtime, _ = NewRuntime(Config{}, WithRegistry(healthy))
	if err := runtime.SelfTest(ctx); err != nil {
		t.Fatalf("expected healthy self test, got %v", err)
	}
}

func TestRuntime_ExecuteJobPrunesAudit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAuditStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	for idx := 0; idx < 5; idx++ {
		_ = store.Record(ctx, LookupEvent{
			Category:           CategorySecureRandom,
			RequestedAlgorithm: "SHA1PRNG",
			Outcome:            LookupOutcomeSubstituted,
			CreatedAt:          now.Add(-time.Duration(idx) * time.Hour),
		})
	}
	runtime, err := NewRuntime(Config{}, WithAuditStore(store))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	err = runtime.ExecuteJob(ctx, &JobExecutionMessage{
		JobID:      JobIDAuditPrune,
		Parameters: map[string]any{"retention_hours": 3, "row_cap": float64(2)},
	})
	if err != nil {
		t.Fatalf("execute prune job: %v", err)
	}
	page, _ := runtime.ListLookupAudit(ctx, AuditFilter{})
	if page.Total != 2 {
		t.Fatalf("expected 2 events after prune, got %d", page.Total)
	}

	err = runtime.ExecuteJob(ctx, &JobExecutionMessage{JobID: "unknown"})
	assertTextCode(t, err, CryptoErrorBadInput)
}

func TestRuntime_EnqueueJob(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	runtime, err := NewRuntime(Config{ChainName: "edge"}, WithJobEnqueuer(enqueuer))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if err := runtime.EnqueueJob(context.Background(), JobIDSelfTest, map[string]any{"reason": "boot"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(enqueuer.messages) != 1 {
		t.Fatalf("expected one enqueued message, got %d", len(enqueuer.messages))
	}
	msg := enqueuer.messages[0]
	if msg.JobID != JobIDSelfTest || !strings.HasPrefix(msg.IdempotencyKey, JobIDSelfTest+":edge:") {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Parameters["reason"] != "boot" {
		t.Fatalf("expected parameters to be forwarded")
	}
	if err := runtime.EnqueueJob(context.Background(), "nope", nil); err == nil {
		t.Fatalf("expected unknown job id to be rejected")
	}
}

func TestIsSubstitution(t *testing.T) {
	svc := NewService(CategorySecureRandom, "DEFAULT", "GOFIPS", nil, WithAliases("DRBG"))
	if IsSubstitution("default", svc) {
		t.Fatalf("expected case-insensitive canonical match")
	}
	if IsSubstitution("DRBG", svc) {
		t.Fatalf("expected alias match")
	}
	if !IsSubstitution("SHA1PRNG", svc) {
		t.Fatalf("expected SHA1PRNG -> DEFAULT to be a substitution")
	}
}

func TestRuntime_AuditDisabledSkipsInjectedStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAuditStore()
	runtime, err := NewRuntime(Config{Audit: AuditConfig{Enabled: false, RecordAll: true}},
		WithRegistry(newSubstitutingChain(t)),
		WithAuditStore(store),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if _, err := runtime.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: "SHA1PRNG"}); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := runtime.Lookup(ctx, LookupRequest{Category: CategorySecureRandom, Algorithm: "MISSING"}); err == nil {
		t.Fatalf("expected unknown algorithm to fail")
	}
	page, err := runtime.ListLookupAudit(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("list lookup audit: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no audit rows while audit is disabled, got %d", page.Total)
	}
}

func TestRuntime_PassesChainNameToAuditStoreFactory(t *testing.T) {
	factory := &fakeAuditFactory{store: NewMemoryAuditStore()}
	if _, err := NewRuntime(Config{ChainName: "edge"},
		WithRepositoryFactory(factory),
		WithPersistenceClient(&struct{}{}),
	); err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if factory.chainName != "edge" {
		t.Fatalf("expected resolved chain name to reach the factory, got %q", factory.chainName)
	}
}

func TestRuntime_EnqueueJobKeysOnParameters(t *testing.T) {
	ctx := context.Background()
	enqueuer := &recordingEnqueuer{}
	runtime, err := NewRuntime(Config{ChainName: "edge"}, WithJobEnqueuer(enqueuer))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	params := []map[string]any{
		nil,
		{"retention_hours": 24, "row_cap": 1000},
		{"retention_hours": 48, "row_cap": 1000},
		{"row_cap": 1000, "retention_hours": 24},
	}
	for _, p := range params {
		if err := runtime.EnqueueJob(ctx, JobIDAuditPrune, p); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	keys := make([]string, 0, len(enqueuer.messages))
	for _, msg := range enqueuer.messages {
		keys = append(keys, msg.IdempotencyKey)
	}
	if keys[0] != JobIDAuditPrune+":edge" {
		t.Fatalf("expected bare key without parameters, got %q", keys[0])
	}
	if keys[1] == keys[2] {
		t.Fatalf("expected different prune parameters to produce different keys, got %q", keys[1])
	}
	if keys[1] != keys[3] {
		t.Fatalf("expected identical parameters to share a key, got %q and %q", keys[1], keys[3])
	}
}
