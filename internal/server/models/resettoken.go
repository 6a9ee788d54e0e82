package models

import "time"

// TokenType scopes which credential a reset token may overwrite.
type TokenType string

const (
	TokenTypePassword TokenType = "password"
	TokenTypePin      TokenType = "pin"
)

// Valid reports whether t is a known token type.
func (t TokenType) Valid() bool {
	return t == TokenTypePassword || t == TokenTypePin
}

// ResetToken is a single-use credential reset grant. It can be redeemed by
// its long Token (link flow) or by the owner's VerificationCode (manual flow).
type ResetToken struct {
	ID               int64
	UserID           int64
	Token            string
	VerificationCode string
	Type             TokenType
	ExpiresAt        time.Time
	Used             bool
}

// Expired reports whether the token is past its expiry at now.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
