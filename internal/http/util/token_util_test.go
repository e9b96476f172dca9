package util

import (
	"errors"
	"testing"
	"time"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	s := NewTokenSigner([]byte("secret"), "powerqr")
	token, err := s.Issue("owner-1", time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	owner, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if owner != "owner-1" {
		t.Fatalf("expected owner-1, got %q", owner)
	}
}

func TestTokenSigner_Rejects(t *testing.T) {
	s := NewTokenSigner([]byte("secret"), "powerqr")
	other := NewTokenSigner([]byte("other"), "powerqr")
	wrongIssuer := NewTokenSigner([]byte("secret"), "someone-else")

	forged, _ := other.Issue("owner-1", time.Minute)
	foreign, _ := wrongIssuer.Issue("owner-1", time.Minute)
	stale, _ := s.Issue("owner-1", -time.Minute)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      stale,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Validate(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenSigner_MissingSecret(t *testing.T) {
	s := NewTokenSigner(nil, "")
	if _, err := s.Validate("x"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := s.Issue("owner-1", time.Minute); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}
