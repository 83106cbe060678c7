package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", 0); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error: %v", err)
	}
	if ts.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", ts.ttl, DefaultTTL)
	}
}

// =========================================================================
// ISSUE / VERIFY
// =========================================================================

func TestIssue_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, issued, err := ts.Issue("user-abc")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Issue() token %q does not look like a JWT", token)
	}

	got, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.UserID != "user-abc" {
		t.Errorf("UserID = %q, want %q", got.UserID, "user-abc")
	}
	if got.TokenID != issued.TokenID || got.TokenID == "" {
		t.Errorf("TokenID = %q, want %q", got.TokenID, issued.TokenID)
	}
}

func TestIssue_UniquePerLogin(t *testing.T) {
	ts := newTestTokenService(t)

	a, _, err := ts.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := ts.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two tokens for the same user should differ")
	}
}

func TestIssue_EmptyUser(t *testing.T) {
	ts := newTestTokenService(t)
	if _, _, err := ts.Issue(""); err == nil {
		t.Fatal("Issue() should reject an empty user ID")
	}
}

func TestVerify_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	issuedAt := time.Now()
	ts.now = func() time.Time { return issuedAt }
	token, _, err := ts.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}

	ts.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := ts.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	good, _, _ := ts.Issue("user-1")
	foreign, _, _ := other.Issue("user-1")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "tampered signature", token: good[:len(good)-3] + "xxx"},
		{name: "wrong secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
