package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims are the claims the storefront reads from a backend-issued token.
// The storefront never holds the signing key, so claims are informational only.
type AccessTokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// InspectAccessToken decodes the JWT without verifying its signature.
func InspectAccessToken(tokenString string) (*AccessTokenClaims, error) {
	tokenString = StripBearer(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}
	claims := &AccessTokenClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}
	return claims, nil
}

// RemainingTTL reports how long the token stays valid after now. The boolean is
// false when the token cannot be decoded, carries no exp claim, or has expired.
func RemainingTTL(tokenString string, now time.Time) (time.Duration, bool) {
	claims, err := InspectAccessToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return 0, false
	}
	ttl := claims.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

// StripBearer removes an optional "Bearer " scheme prefix.
func StripBearer(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
