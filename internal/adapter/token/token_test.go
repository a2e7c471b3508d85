package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerify(t *testing.T) {
	iss, err := New("secret", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tok, err := iss.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Errorf("expected 42, got %d", id)
	}
}

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New("", 0); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestVerify_Rejects(t *testing.T) {
	iss, _ := New("secret", time.Hour)
	other, _ := New("other", time.Hour)

	foreign, _ := other.Issue(1)

	expired, _ := New("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _ := expired.Issue(1)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"alg none", none},
		{"missing subject", noSubject},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := iss.Verify(tc.token); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
