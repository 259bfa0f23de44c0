package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by [Inspect] for opaque (non-JWT) bearer tokens.
var ErrNotJWT = errors.New("token is not a jwt")

// Claims is the subset of registered claims goConvert reads from a bearer token.
type Claims struct {
	jwt.RegisteredClaims
}

// Expired reports whether the token's exp is at or before now minus leeway.
// Tokens without exp never expire.
func (c *Claims) Expired(now time.Time, leeway time.Duration) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Add(-leeway).Before(c.ExpiresAt.Time)
}

// Inspect decodes tokenStr without verifying its signature.
func Inspect(tokenStr string) (*Claims, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of tokenStr when it is a JWT that carries one.
func ExpiresAt(tokenStr string) (time.Time, bool) {
	claims, err := Inspect(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
