package token

import "testing"

func TestGenerate(t *testing.T) {
	raw1, hash1, err := Generate()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	raw2, _, err := Generate()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if raw1 == raw2 {
		t.Fatalf("expected distinct tokens")
	}
	if Hash(raw1) != hash1 {
		t.Fatalf("hash mismatch")
	}
	if len(hash1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(hash1))
	}
}
