package session

import (
	"testing"
	"time"

	"github.com/tanicerdas/seedbot-console/model"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("test-signing-key"), time.Hour)

	token, err := signer.Mint("sess-123", model.User{Username: "tono", Role: model.RoleFarmer})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	id, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != "sess-123" {
		t.Errorf("session id = %q, want sess-123", id)
	}
}

func TestTokenWrongKey(t *testing.T) {
	signer := NewTokenSigner([]byte("key-one"), time.Hour)
	other := NewTokenSigner([]byte("key-two"), time.Hour)

	token, err := signer.Mint("sess-123", model.User{Username: "tono", Role: model.RoleFarmer})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("token verified under the wrong key")
	}
}

func TestTokenExpired(t *testing.T) {
	signer := NewTokenSigner([]byte("test-signing-key"), -time.Minute)

	token, err := signer.Mint("sess-123", model.User{Username: "tono", Role: model.RoleFarmer})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := signer.Verify(token); err == nil {
		t.Error("expired token verified")
	}
}

func TestTokenGarbage(t *testing.T) {
	signer := NewTokenSigner([]byte("test-signing-key"), time.Hour)
	if _, err := signer.Verify("definitely-not-a-jwt"); err == nil {
		t.Error("garbage token verified")
	}
}
