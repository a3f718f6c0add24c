package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload of a session cookie. Cookie-backed sessions carry
// their values inline; server-side sessions only carry the session id in Subject.
type SessionClaims struct {
	Values map[string]string `json:"v,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs claims with the process secret, valid for duration.
func GenerateSessionToken(secret []byte, claims SessionClaims, now time.Time, duration time.Duration) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(duration))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken validates signature and expiry and returns the claims.
func ParseSessionToken(secret []byte, tokenStr string, now time.Time) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}
