package auth

import (
	"testing"
	"time"

	"civicreport/internal/config"
)

func newTestService(expiration time.Duration) *Service {
	cfg := &config.JWTConfig{
		Secret:     "test-secret",
		Expiration: expiration,
	}
	return NewService(cfg)
}

func TestHashPassword(t *testing.T) {
	svc := newTestService(24 * time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	if hash == password {
		t.Error("Hash should not equal the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := newTestService(24 * time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}

	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateToken(t *testing.T) {
	svc := newTestService(24 * time.Hour)

	token, jti, err := svc.GenerateToken(1, "officer@example.com", ActorOfficer, []string{"PUBLIC_RELATIONS"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Token should not be empty")
	}
	if jti == "" {
		t.Error("JTI should not be empty")
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(24 * time.Hour)

	token, _, err := svc.GenerateToken(7, "citizen@example.com", ActorCitizen, nil)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("Expected user ID 7, got %d", claims.UserID)
	}
	if claims.Email != "citizen@example.com" {
		t.Errorf("Expected email citizen@example.com, got %s", claims.Email)
	}
	if claims.Actor != ActorCitizen {
		t.Errorf("Expected actor %s, got %s", ActorCitizen, claims.Actor)
	}
}

func TestValidateTokenRoles(t *testing.T) {
	svc := newTestService(24 * time.Hour)

	token, _, err := svc.GenerateToken(3, "tech@example.com", ActorOfficer, []string{"TECHNICAL_STAFF"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if !claims.HasRole("TECHNICAL_STAFF") {
		t.Error("Expected TECHNICAL_STAFF role in claims")
	}
	if claims.HasRole("ADMINISTRATOR") {
		t.Error("Did not expect ADMINISTRATOR role in claims")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-1 * time.Hour)

	token, _, err := svc.GenerateToken(1, "citizen@example.com", ActorCitizen, nil)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Should reject expired token")
	}
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestService(24 * time.Hour)
	other := NewService(&config.JWTConfig{Secret: "other-secret", Expiration: 24 * time.Hour})

	token, _, err := other.GenerateToken(1, "citizen@example.com", ActorCitizen, nil)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Should reject token signed with a different secret")
	}
}
