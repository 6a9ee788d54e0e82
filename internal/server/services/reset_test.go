package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/server/credentials"
	"github.com/vtnhan03/final-be/internal/server/models"
)

func TestRequestReset_AntiEnumeration(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	msg, err := e.resets.RequestReset(ctx, "nobody@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	assert.Equal(t, MsgPasswordResetRequested, msg)

	msg, err = e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	assert.Equal(t, MsgPasswordResetRequested, msg)

	// alice has no PIN yet: no-op
	msg, err = e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePin)
	require.NoError(t, err)
	assert.Equal(t, MsgPinResetRequested, msg)

	msg, err = e.resets.RequestReset(ctx, "nobody@example.com", models.TokenTypePin)
	require.NoError(t, err)
	assert.Equal(t, MsgPinResetRequested, msg)

	require.Len(t, e.notifier.resets, 1)
	assert.Equal(t, models.TokenTypePassword, e.notifier.resets[0].Type)
	assert.Equal(t, "alice@example.com", e.notifier.resets[0].Email)
}

func TestRequestReset_IssuesToken(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)

	tokens, err := e.manager.ResetTokens(e.db).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	tok := tokens[0]
	assert.False(t, tok.Used)
	assert.Equal(t, models.TokenTypePassword, tok.Type)
	assert.Len(t, tok.VerificationCode, 6)
	assert.GreaterOrEqual(t, len(tok.Token), 43)
	assert.True(t, tok.ExpiresAt.Equal(e.clock.Now().Add(time.Hour)), "expires at %v", tok.ExpiresAt)
	assert.Equal(t, tok.VerificationCode, e.notifier.lastReset(t).Code)
}

func TestRequestReset_UnknownType(t *testing.T) {
	e := newEnv(t)
	_, err := e.resets.RequestReset(context.Background(), "a@example.com", models.TokenType("email"))
	assert.Error(t, err)
	assert.Equal(t, common.ErrorInternal, common.KindOf(err))
}

// TestPasswordResetByCode walks the full code-based reset: request, confirm,
// login with the new password, then a rejected second confirmation.
func TestPasswordResetByCode(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	code := e.notifier.lastReset(t).Code

	require.NoError(t, e.resets.ConfirmResetByCode(ctx, "alice@example.com", code, "NewSecret1", models.TokenTypePassword))

	_, err = e.accounts.Authenticate(ctx, "alice", "NewSecret1")
	assert.NoError(t, err)
	_, err = e.accounts.Authenticate(ctx, "alice", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = e.resets.ConfirmResetByCode(ctx, "alice@example.com", code, "Another12", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
}

func TestPasswordResetByToken(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	tokens, err := e.manager.ResetTokens(e.db).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	secret := tokens[0].Token

	// a password token cannot reset a PIN
	err = e.resets.ConfirmResetByToken(ctx, secret, "1234", models.TokenTypePin)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, e.resets.ConfirmResetByToken(ctx, secret, "NewSecret1", models.TokenTypePassword))
	_, err = e.accounts.Authenticate(ctx, "alice@example.com", "NewSecret1")
	assert.NoError(t, err)

	err = e.resets.ConfirmResetByToken(ctx, secret, "NewSecret2", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestPinResetByCode(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()
	require.NoError(t, e.accounts.SetPin(ctx, u, "1234"))

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePin)
	require.NoError(t, err)
	call := e.notifier.lastReset(t)
	assert.Equal(t, models.TokenTypePin, call.Type)

	require.NoError(t, e.resets.ConfirmResetByCode(ctx, "alice@example.com", call.Code, "9876", models.TokenTypePin))
	fresh := e.reload(t, u.ID)
	assert.True(t, e.accounts.VerifyPin(fresh, "9876"))
	assert.False(t, e.accounts.VerifyPin(fresh, "1234"))
}

func TestConfirmReset_ValidatesFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.resets.ConfirmResetByToken(ctx, "no-such-token", "weak", models.TokenTypePassword)
	assert.ErrorIs(t, err, credentials.ErrPasswordTooShort)

	err = e.resets.ConfirmResetByCode(ctx, "nobody@example.com", "000000", "12ab", models.TokenTypePin)
	assert.ErrorIs(t, err, credentials.ErrPinNotNumeric)

	err = e.resets.ConfirmResetByToken(ctx, "no-such-token", "Secret123", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	err = e.resets.ConfirmResetByCode(ctx, "nobody@example.com", "000000", "Secret123", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
}

func TestConfirmReset_Expired(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	code := e.notifier.lastReset(t).Code

	e.clock.Advance(time.Hour + time.Second)

	err = e.resets.ConfirmResetByCode(ctx, "alice@example.com", code, "NewSecret1", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)

	_, err = e.accounts.Authenticate(ctx, "alice", "Secret123")
	assert.NoError(t, err)
}

func TestConfirmReset_WrongEmailForCode(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Secret123", "alice@example.com")
	e.register(t, "bob", "Secret123", "bob@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)
	code := e.notifier.lastReset(t).Code

	err = e.resets.ConfirmResetByCode(ctx, "bob@example.com", code, "NewSecret1", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
}
