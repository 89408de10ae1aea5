package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(7, 3, "MANAGER", "secret", time.Hour, "sales-crm")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.EmpID != 7 || claims.CompanyID != 3 || claims.Role != "MANAGER" {
		t.Fatalf("claims=%+v", claims)
	}
	if claims.Issuer != "sales-crm" {
		t.Fatalf("issuer=%q", claims.Issuer)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _ := GenerateAccessToken(7, 3, "SALES", "secret", time.Hour, "sales-crm")

	_, err := ValidateToken(token, "other")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	token, _ := GenerateAccessToken(7, 3, "SALES", "secret", -time.Minute, "sales-crm")

	_, err := ValidateToken(token, "secret")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
