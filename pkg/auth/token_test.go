package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "restopos",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	branchID := uuid.New()

	payload := AccessTokenPayload{
		User:      "wayan@itb.example",
		Role:      enums.StaffRoleWaiter,
		BranchIDs: []uuid.UUID{branchID},
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.User != payload.User {
		t.Fatalf("expected user %s, got %s", payload.User, claims.User)
	}
	if claims.Role != enums.StaffRoleWaiter {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if !claims.HasBranch(branchID) {
		t.Fatalf("branch grant not preserved")
	}
	if claims.HasBranch(uuid.New()) {
		t.Fatalf("unexpected branch grant")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAccessTokenRejectsInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "restopos",
		ExpirationMinutes: 30,
	}
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		User: "wayan@itb.example",
		Role: enums.StaffRole("barista"),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid staff role") {
		t.Fatalf("expected invalid role error, got %v", err)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "restopos",
		ExpirationMinutes: 10,
	}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		User: "kadek@itb.example",
		Role: enums.StaffRoleKitchen,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "restopos",
		ExpirationMinutes: 1,
	}
	past := time.Now().Add(-time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		User: "made@itb.example",
		Role: enums.StaffRoleCashier,
		JTI:  "fixed-jti",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("parse expired token: %v", err)
	}
	if claims.ID != "fixed-jti" {
		t.Fatalf("expected jti to survive, got %q", claims.ID)
	}
}
