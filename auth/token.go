// Package auth issues and checks the HS256 bearer tokens shared by the pad
// and the classifier server.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

const (
	Subject  = "digitpad"
	TokenTTL = 5 * time.Minute
)

var ErrMissingToken = errors.New("missing bearer token")

// NewToken signs a short lived token with secret.
func NewToken(secret string, now time.Time) (string, error) {
	claims := jwt.StandardClaims{
		Subject:   Subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "can't sign token")
	}
	return signed, nil
}

// Verify checks a token produced by NewToken.
func Verify(secret, tokenString string) error {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return errors.Wrap(err, "invalid token")
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	if claims.Subject != Subject {
		return errors.Errorf("unexpected subject %q", claims.Subject)
	}
	return nil
}

// FromHeader extracts the token of an "Authorization: Bearer <token>" header.
func FromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}
