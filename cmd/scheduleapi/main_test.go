package main

import "testing"

func TestRandomHex_Length(t *testing.T) {
	t.Parallel()

	token := randomHex(32)
	if len(token) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(token))
	}
}

func TestRandomHex_DefaultsOnInvalidSize(t *testing.T) {
	t.Parallel()

	token := randomHex(0)
	if len(token) != 32 {
		t.Fatalf("expected fallback to 16 bytes, got %d characters", len(token))
	}
}

func TestRandomHex_Unique(t *testing.T) {
	t.Parallel()

	if randomHex(16) == randomHex(16) {
		t.Fatalf("expected distinct tokens")
	}
}
