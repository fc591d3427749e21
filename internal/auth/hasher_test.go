package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashIsSaltedAndVerifies(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Errorf("expected different digests for the same password, got %q twice", first)
	}
	if first == "secret1" {
		t.Error("digest must not equal the plaintext")
	}
	if !h.Verify("secret1", first) || !h.Verify("secret1", second) {
		t.Error("expected both digests to verify against the plaintext")
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	digest, err := h.Hash("userOnePass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		digest   string
		want     bool
	}{
		{"match", "userOnePass", digest, true},
		{"wrong password", "userTwoPass", digest, false},
		{"empty digest", "userOnePass", "", false},
		{"malformed digest", "userOnePass", "$2a$not-a-hash", false},
		{"plaintext as digest", "userOnePass", "userOnePass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Verify(tt.password, tt.digest); got != tt.want {
				t.Errorf("Verify(%q, %q) = %v; want %v", tt.password, tt.digest, got, tt.want)
			}
		})
	}
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	h := NewHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d; want %d", h.cost, bcrypt.DefaultCost)
	}
}

func TestHasher_LongPasswords(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	long := strings.Repeat("a", 100)
	multibyte := strings.Repeat("é", 40) // 80 bytes

	for _, password := range []string{long, multibyte} {
		digest, err := h.Hash(password)
		if err != nil {
			t.Fatalf("Hash(%d bytes) returned error: %v", len(password), err)
		}
		if !h.Verify(password, digest) {
			t.Errorf("expected %d-byte password to verify", len(password))
		}
	}

	// Passwords that agree on the first 72 bytes must still differ.
	digest, err := h.Hash(long)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if h.Verify(strings.Repeat("a", 72)+"b", digest) {
		t.Error("expected a password differing after byte 72 not to verify")
	}
}
