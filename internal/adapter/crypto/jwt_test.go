package crypto

import (
	"context"
	"testing"
	"time"

	"gitlab.com/codeprep.net/internal/config"
)

func TestGenerateAndVerifyTokenHMAC(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(&config.JwtConfig{Secret: "test-secret", TokenTTL: time.Hour})
	ctx := context.Background()

	token, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{
		"sub":      "2b0c8f5e-6a5d-4c55-9f0e-0a7d8c3f8e11",
		"username": "alice",
	})
	if err != nil {
		t.Fatalf("GenerateTokenHMAC returned error: %v", err)
	}

	ok, err := svc.VerifyTokenHMAC(ctx, token, "HS256")
	if err != nil || !ok {
		t.Fatalf("expected valid token, got ok=%v err=%v", ok, err)
	}

	payload, err := svc.DecodeTokenPayload(ctx, token)
	if err != nil {
		t.Fatalf("DecodeTokenPayload returned error: %v", err)
	}
	if payload.Username != "alice" || payload.Subject != "2b0c8f5e-6a5d-4c55-9f0e-0a7d8c3f8e11" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestVerifyTokenHMACRejectsOtherSecret(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := NewJWTService(&config.JwtConfig{Secret: "secret-a", TokenTTL: time.Hour})
	verifier := NewJWTService(&config.JwtConfig{Secret: "secret-b", TokenTTL: time.Hour})

	token, err := issuer.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"sub": "x"})
	if err != nil {
		t.Fatalf("GenerateTokenHMAC returned error: %v", err)
	}
	if ok, err := verifier.VerifyTokenHMAC(ctx, token, "HS256"); ok || err == nil {
		t.Fatalf("expected verification failure, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyTokenHMACRejectsExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "secret", TokenTTL: time.Hour})
	token, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{
		"sub": "x",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("GenerateTokenHMAC returned error: %v", err)
	}
	if ok, _ := svc.VerifyTokenHMAC(ctx, token, "HS256"); ok {
		t.Fatalf("expired token must not verify")
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewJWTService(&config.JwtConfig{Secret: "secret"})

	hash, err := svc.EncryptPassword(ctx, "correct horse")
	if err != nil {
		t.Fatalf("EncryptPassword returned error: %v", err)
	}
	if ok, err := svc.VerifyPassword(ctx, hash, "correct horse"); !ok || err != nil {
		t.Fatalf("expected password to verify, got ok=%v err=%v", ok, err)
	}
	if ok, _ := svc.VerifyPassword(ctx, hash, "wrong"); ok {
		t.Fatalf("wrong password must not verify")
	}
}

func TestDecodeTokenPayloadRejectsMalformed(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(&config.JwtConfig{Secret: "secret"})
	if _, err := svc.DecodeTokenPayload(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
