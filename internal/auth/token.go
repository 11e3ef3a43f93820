// ABOUTME: Signed credential codec for user identities
// ABOUTME: Issues and verifies HS256 JWTs carrying {username, email, _id} with a fixed lifetime

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret length in bytes.
const MinSecretLength = 32

// DefaultTokenTTL is the credential lifetime used when TokenConfig.TTL is zero.
const DefaultTokenTTL = 2 * time.Hour

// Token errors. Both ErrInvalidToken and ErrExpiredToken match ErrInvalidCredential.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidToken      = fmt.Errorf("%w: invalid token", ErrInvalidCredential)
	ErrExpiredToken      = fmt.Errorf("%w: token expired", ErrInvalidCredential)
	ErrSecretTooShort    = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

// Identity is the decoded payload of a credential. It is never persisted.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       string `json:"_id"`
}

// TokenConfig configures a TokenCodec.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// TokenIssuer issues credentials for an identity.
type TokenIssuer interface {
	Issue(id Identity) (string, error)
}

// TokenVerifier decodes and checks a credential.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// identityClaims nests the identity under "data" next to the registered claims.
type identityClaims struct {
	Data Identity `json:"data"`
	jwt.RegisteredClaims
}

// TokenCodec implements TokenIssuer and TokenVerifier using HS256 signed JWTs.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec creates a codec from the given configuration.
// Returns ErrSecretTooShort if the secret is shorter than MinSecretLength.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{
		secret: cfg.Secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued credentials.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a credential for the identity that expires after the configured TTL.
func (c *TokenCodec) Issue(id Identity) (string, error) {
	now := c.now()
	claims := identityClaims{
		Data: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of the credential and returns its identity.
func (c *TokenCodec) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims identityClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Data.ID == "" || claims.Data.Username == "" {
		return Identity{}, fmt.Errorf("%w: missing identity claim", ErrInvalidToken)
	}

	return claims.Data, nil
}
