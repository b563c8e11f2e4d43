package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"testing"
)

type stringerProvider struct {
	testProvider
}

func (p stringerProvider) String() string { return "CUSTOM display" }

func TestDisplayName(t *testing.T) {
	if got := DisplayName(testProvider{name: "GOSTD"}); got != "GOSTD version 1.0" {
		t.Fatalf("unexpected fallback display name %q", got)
	}
	if got := DisplayName(stringerProvider{testProvider{name: "X"}}); got != "CUSTOM display" {
		t.Fatalf("expected stringer form, got %q", got)
	}
	if got := DisplayName(nil); got != "" {
		t.Fatalf("expected empty display name for nil provider, got %q", got)
	}
}

func TestServiceTable_CaseInsensitiveWithAliases(t *testing.T) {
	table := NewServiceTable()
	digest := NewService(CategoryMessageDigest, "SHA-256", "GOFIPS", func() (any, error) {
		return sha256.New(), nil
	}, WithAliases("SHA256"), WithApproved(true))
	if err := table.Put(digest); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := table.Put(NewService(CategoryMessageDigest, "SHA-512", "GOFIPS", nil)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if table.Get("messagedigest", "sha-256") != digest {
		t.Fatalf("expected case-insensitive lookup")
	}
	if table.Get(CategoryMessageDigest, "SHA256") != digest {
		t.Fatalf("expected alias lookup")
	}
	if table.Get(CategoryMac, "SHA-256") != nil {
		t.Fatalf("expected category to scope the lookup")
	}
	algorithms := table.Algorithms(CategoryMessageDigest)
	if len(algorithms) != 2 || algorithms[0] != "SHA-256" {
		t.Fatalf("unexpected algorithms %v", algorithms)
	}
	if err := table.Put(NewService("", "X", "GOFIPS", nil)); err == nil {
		t.Fatalf("expected missing category to be rejected")
	}
}

func TestTypedServiceConstructors(t *testing.T) {
	digestSvc := NewService(CategoryMessageDigest, "SHA-256", "GOFIPS", func() (any, error) {
		return sha256.New(), nil
	})
	digest, err := NewDigest(digestSvc)
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	if digest.Size() != sha256.Size {
		t.Fatalf("unexpected digest size %d", digest.Size())
	}
	if _, err := NewSecureRandom(digestSvc); err == nil {
		t.Fatalf("expected category mismatch error")
	}

	macSvc := NewService(CategoryMac, "HmacSHA256", "GOFIPS", func() (any, error) {
		return MacConstructor(func(key []byte) (hash.Hash, error) {
			return hmac.New(sha256.New, key), nil
		}), nil
	})
	if _, err := NewMac(macSvc, nil); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
	mac, err := NewMac(macSvc, []byte("key"))
	if err != nil {
		t.Fatalf("new mac: %v", err)
	}
	if mac.Size() != sha256.Size {
		t.Fatalf("unexpected mac size %d", mac.Size())
	}

	if _, err := NewService(CategorySecureRandom, "DEFAULT", "GOFIPS", nil).NewInstance(); err == nil {
		t.Fatalf("expected missing factory error")
	}
}
