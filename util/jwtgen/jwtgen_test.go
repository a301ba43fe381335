package jwtgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestSigner(t *testing.T, ttl time.Duration) *Signer {
	t.Helper()

	key, err := GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}

	signer, err := NewSigner(key, "jingletube-test", ttl)
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}

	return signer
}

func TestIssueAndVerifyToken(t *testing.T) {
	signer := newTestSigner(t, time.Hour)

	token, err := signer.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	userID, err := signer.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("VerifyToken() userID = %d, want 42", userID)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	signer := newTestSigner(t, -time.Minute)

	token, err := signer.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	if _, err := signer.VerifyToken(token); err == nil {
		t.Error("VerifyToken() accepted an expired token")
	}
}

func TestVerifyTokenRejectsForeignKey(t *testing.T) {
	signer := newTestSigner(t, time.Hour)
	other := newTestSigner(t, time.Hour)

	token, err := other.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	if _, err := signer.VerifyToken(token); err == nil {
		t.Error("VerifyToken() accepted a token signed by another key")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	signer := newTestSigner(t, time.Hour)

	if _, err := signer.VerifyToken("not.a.token"); err == nil {
		t.Error("VerifyToken() accepted garbage input")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwks.json")

	key, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey() failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("LoadOrCreateKey() did not persist the key: %v", err)
	}

	// a second load returns the same key
	again, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey() second call failed: %v", err)
	}
	if key.KeyID() != again.KeyID() {
		t.Errorf("LoadOrCreateKey() reloaded key ID = %v, want %v", again.KeyID(), key.KeyID())
	}
}

func TestJwksServesPublicKeyOnly(t *testing.T) {
	signer := newTestSigner(t, time.Hour)

	set := signer.Jwks()
	if len(set.Keys) != 1 {
		t.Fatalf("Jwks() has %d keys, want 1", len(set.Keys))
	}

	// the private "d" parameter must never appear in the served set
	if _, ok := set.Keys[0].Get("d"); ok {
		t.Error("Jwks() exposes the private key parameter")
	}
}
