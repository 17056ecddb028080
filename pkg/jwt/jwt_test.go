package jwt

import (
	"testing"
	"time"

	"smart-opd/config"

	"github.com/google/uuid"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := newTestService("test-secret")
	userID := uuid.New()

	token, tokenID, err := service.GenerateAccessToken(userID, "doctor@hospital.test", 2, "Cardiology")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if tokenID == "" {
		t.Fatal("expected non-empty token ID")
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "doctor@hospital.test" {
		t.Errorf("Email = %q, want %q", claims.Email, "doctor@hospital.test")
	}
	if claims.RoleID != 2 {
		t.Errorf("RoleID = %d, want 2", claims.RoleID)
	}
	if claims.Department != "Cardiology" {
		t.Errorf("Department = %q, want %q", claims.Department, "Cardiology")
	}
	if claims.TokenType != AccessToken {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, AccessToken)
	}
	if claims.TokenID != tokenID {
		t.Errorf("TokenID = %q, want %q", claims.TokenID, tokenID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := newTestService("secret-a")
	token, _, err := service.GenerateAccessToken(uuid.New(), "admin@hospital.test", 1, "")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	other := newTestService("secret-b")
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestRefreshTokenType(t *testing.T) {
	service := newTestService("test-secret")
	token, _, err := service.GenerateRefreshToken(uuid.New(), "admin@hospital.test", 1, "")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, RefreshToken)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	service := newTestService("test-secret")
	if _, err := service.ValidateToken("not.a.token"); err == nil {
		t.Error("expected validation to fail for a malformed token")
	}
}
