// Package auth issues and verifies the bearer session tokens handed out on
// login. Tokens are HS256 JWTs whose subject is the account username.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/vtnhan03/final-be/internal/common"
)

// Claims is the token payload: only the registered claims, with Subject
// holding the username.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for subject issued at now. A positive validity
// sets the expiry; zero or negative means the token never expires.
func GenerateToken(subject string, secretKey []byte, now time.Time, validityDuration time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject. Every
// failure (bad signature, malformed, expired, missing subject) is reported
// as common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

// Issuer mints and checks session tokens with a fixed secret and lifetime.
type Issuer struct {
	secret   []byte
	validity time.Duration
	clock    clockwork.Clock
}

// NewIssuer returns an Issuer. A nil clock uses the real clock.
func NewIssuer(secret string, validity time.Duration, clock clockwork.Clock) *Issuer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Issuer{secret: []byte(secret), validity: validity, clock: clock}
}

// Issue returns a signed token for username.
func (i *Issuer) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("empty subject")
	}
	return GenerateToken(username, i.secret, i.clock.Now(), i.validity)
}

// Verify returns the username carried by token.
func (i *Issuer) Verify(token string) (string, error) {
	return GetSubjectFromToken(token, i.secret, i.clock.Now)
}
