package utils

import (
	"testing"
	"time"

	"marketplace/models"
)

func TestParsePrincipal_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	want := models.Principal{ID: "u1", Role: models.RoleSeller, Name: "Ada"}

	token, err := GenerateToken(secret, want, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	got, err := ParsePrincipal(secret, token)
	if err != nil {
		t.Fatalf("ParsePrincipal: %v", err)
	}
	if got != want {
		t.Fatalf("principal = %+v; want %+v", got, want)
	}
}

func TestParsePrincipal_Rejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, _ := GenerateToken(secret, models.Principal{ID: "u1", Role: models.RoleBuyer}, -time.Minute)
	if _, err := ParsePrincipal(secret, expired); err == nil {
		t.Fatalf("expired token accepted")
	}

	other, _ := GenerateToken([]byte("other"), models.Principal{ID: "u1", Role: models.RoleBuyer}, time.Hour)
	if _, err := ParsePrincipal(secret, other); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}

	noRole, _ := GenerateToken(secret, models.Principal{ID: "u1", Role: "admin"}, time.Hour)
	if _, err := ParsePrincipal(secret, noRole); err == nil {
		t.Fatalf("token with unknown role accepted")
	}
}
