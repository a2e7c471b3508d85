// Package token issues and verifies HS256 bearer tokens carrying a user id.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"blog/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for tokens that fail signature, method or claim checks.
var ErrInvalid = errors.New("invalid token")

// Issuer signs tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ domain.TokenIssuer = (*Issuer)(nil)

// New returns an Issuer. A zero ttl issues tokens without an exp claim.
func New(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token whose subject is userID.
func (i *Issuer) Issue(userID int64) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its user id.
func (i *Issuer) Verify(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalid)
	}
	return id, nil
}
