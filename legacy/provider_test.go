package legacy

import (
	"bytes"
	"crypto/md5"
	"testing"

	"github.com/goliatone/go-cryptoproviders/core"
)

func TestProvider_OffersLegacyNames(t *testing.T) {
	provider, err := New(Config{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.String() != "GOSTD version 1.0" {
		t.Fatalf("unexpected string form %q", provider.String())
	}
	svc := provider.Service(core.CategorySecureRandom, "SHA1PRNG")
	if svc == nil {
		t.Fatalf("expected SHA1PRNG service")
	}
	if svc.Approved {
		t.Fatalf("expected SHA1PRNG to not be approved")
	}
	if provider.Service(core.CategorySecureRandom, "DEFAULT") != nil {
		t.Fatalf("expected GOSTD to not offer DEFAULT")
	}
	digest, err := core.NewDigest(provider.Service(core.CategoryMessageDigest, "md5"))
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	digest.Write([]byte("abc"))
	want := md5.Sum([]byte("abc"))
	if !bytes.Equal(digest.Sum(nil), want[:]) {
		t.Fatalf("unexpected MD5 output")
	}
}

func TestSHA1PRNG_DeterministicForSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 20)
	first := newSHA1PRNG(bytes.NewReader(seed))
	second := newSHA1PRNG(bytes.NewReader(seed))

	a := make([]byte, 45)
	b := make([]byte, 45)
	if _, err := first.Read(a); err != nil {
		t.Fatalf("read first: %v", err)
	}
	if _, err := second.Read(b[:7]); err != nil {
		t.Fatalf("read second head: %v", err)
	}
	if _, err := second.Read(b[7:]); err != nil {
		t.Fatalf("read second tail: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected split reads to produce the same stream")
	}
	if bytes.Equal(a[:20], a[20:40]) {
		t.Fatalf("expected consecutive blocks to differ")
	}
}

func TestSHA1PRNG_ExplicitSeedSkipsEntropy(t *testing.T) {
	random := newSHA1PRNG(bytes.NewReader(nil))
	random.Seed([]byte("fixed"))
	buf := make([]byte, 8)
	if _, err := random.Read(buf); err != nil {
		t.Fatalf("expected explicit seed to avoid entropy reads: %v", err)
	}

	unseeded := newSHA1PRNG(bytes.NewReader(nil))
	if _, err := unseeded.Read(buf); err == nil {
		t.Fatalf("expected empty entropy source to fail self-seeding")
	}
}
