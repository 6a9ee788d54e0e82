package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Flags(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasPin())
	assert.False(t, u.HasPassword())
	assert.Equal(t, "", u.EmailAddress())

	u.PinDigest = StringPtr("")
	assert.False(t, u.HasPin(), "empty digest is no digest")

	u.PinDigest = StringPtr("$2a$...")
	u.PasswordDigest = StringPtr("$2a$...")
	u.Email = StringPtr("a@x.com")
	assert.True(t, u.HasPin())
	assert.True(t, u.HasPassword())
	assert.Equal(t, "a@x.com", u.EmailAddress())
}

func TestTokenType_Valid(t *testing.T) {
	assert.True(t, TokenTypePassword.Valid())
	assert.True(t, TokenTypePin.Valid())
	assert.False(t, TokenType("email").Valid())
	assert.False(t, TokenType("").Valid())
}

func TestResetToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &ResetToken{ExpiresAt: now}

	assert.False(t, tok.Expired(now), "expiry instant itself is still valid")
	assert.False(t, tok.Expired(now.Add(-time.Second)))
	assert.True(t, tok.Expired(now.Add(time.Nanosecond)))
}
