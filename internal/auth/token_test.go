// ABOUTME: Unit tests for credential issuing and verification
// ABOUTME: Tests round trips, invalid tokens, expired tokens, and secret length

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret is a 32-byte secret that meets MinSecretLength.
var testSecret = []byte("token-codec-test-secret-32bytes!")

var alice = Identity{Username: "alice", Email: "alice@x.com", ID: "user-123"}

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(alice)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != alice {
		t.Errorf("Verify() = %+v, want %+v", got, alice)
	}
}

func TestTokenCodec_DefaultTTL(t *testing.T) {
	codec := newTestCodec(t)
	if codec.TTL() != 2*time.Hour {
		t.Errorf("TTL() = %v, want 2h", codec.TTL())
	}

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issuedAt }

	token, err := codec.Issue(alice)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var claims identityClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(issuedAt.Add(2 * time.Hour)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, issuedAt.Add(2*time.Hour))
	}
}

func TestTokenCodec_InvalidToken(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewTokenCodec(TokenConfig{Secret: []byte("a-completely-different-secret-32b")})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	foreign, _ := other.Issue(alice)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, identityClaims{
		Data: alice,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	missingData, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{name: "wrong secret", token: foreign},
		{name: "none algorithm", token: noneToken},
		{name: "missing data claim", token: missingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			if err == nil {
				t.Fatal("Verify() should have returned an error")
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
			if !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Verify() error = %v, want to match ErrInvalidCredential", err)
			}
		})
	}
}

func TestTokenCodec_ExpiredToken(t *testing.T) {
	codec := newTestCodec(t)
	codec.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	token, err := codec.Issue(alice)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	codec.now = time.Now
	_, err = codec.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
	if !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("Verify() error = %v, want to match ErrInvalidCredential", err)
	}
}

func TestTokenCodec_Issuer(t *testing.T) {
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, Issuer: "deep-thoughts"})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	plain := newTestCodec(t)

	token, _ := plain.Issue(alice)
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken for missing issuer", err)
	}

	token, _ = codec.Issue(alice)
	if _, err := codec.Verify(token); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestNewTokenCodec_ShortSecret(t *testing.T) {
	_, err := NewTokenCodec(TokenConfig{Secret: []byte("short")})
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewTokenCodec() error = %v, want ErrSecretTooShort", err)
	}
}
