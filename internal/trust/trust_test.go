package trust

import "testing"

func TestStaticTrustedMatch(t *testing.T) {
	p := NewStatic([]string{"signer-a", "signer-b"})
	if !p.Trusted([]string{"signer-x", "signer-b"}) {
		t.Fatal("expected a match against signer-b to be trusted")
	}
}

func TestStaticUntrustedWhenNoOverlap(t *testing.T) {
	p := NewStatic([]string{"signer-a"})
	if p.Trusted([]string{"signer-z"}) {
		t.Fatal("expected no overlap to be untrusted")
	}
}

func TestStaticEmptyAllowlistTrustsNothing(t *testing.T) {
	p := NewStatic(nil)
	if p.Trusted([]string{"anyone"}) {
		t.Fatal("expected empty allowlist to trust nothing")
	}
}
