// Package credential handles the bearer token the storefront forwards to the
// backend. Signature checks belong to the backend; the storefront only reads
// the subject to key audit rows and sessions.
package credential

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

var ErrMissingToken = errors.New("credential: missing or invalid token")

// Claims mirrors the claims issued by the food-ordering API.
type Claims struct {
	UserID uint   `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// FromHeader extracts the token of an "Authorization: Bearer <token>" header.
func FromHeader(h string) (string, error) {
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Header formats token as an Authorization header value.
func Header(token string) string {
	return bearerPrefix + token
}

// Subject returns the user the token was issued for without verifying it.
// Opaque or malformed tokens yield "".
func Subject(token string) string {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return ""
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	if claims.UserID != 0 {
		return strconv.FormatUint(uint64(claims.UserID), 10)
	}
	return ""
}

// Issue signs an HS256 token for subject. Used by the development backend.
func Issue(subject, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("credential: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks an HS256 token and returns its claims.
func Verify(token, secret string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("credential: verify: %w", ErrMissingToken)
	}
	return &claims, nil
}
