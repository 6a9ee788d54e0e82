package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/server/auth"
	"github.com/vtnhan03/final-be/internal/server/credentials"
	"github.com/vtnhan03/final-be/internal/server/google"
	"github.com/vtnhan03/final-be/internal/server/models"
)

func TestRegister_Success(t *testing.T) {
	e := newEnv(t)

	u := e.register(t, "alice", "Secret123", "alice@example.com")

	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.HasPin())
	assert.False(t, u.IsGoogleAccount)
	require.True(t, u.HasPassword())
	assert.NotEqual(t, "Secret123", *u.PasswordDigest)
	assert.Equal(t, []welcomeCall{{"alice@example.com", "alice"}}, e.notifier.welcomes)
}

func TestRegister_CheckOrder(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	// duplicate username wins over duplicate email and weak password
	_, err := e.accounts.Register(ctx, "alice", "weak", "alice@example.com")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.ErrorIs(t, err, common.ErrorConflict)

	// duplicate email wins over weak password
	_, err = e.accounts.Register(ctx, "bob", "weak", "alice@example.com")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = e.accounts.Register(ctx, "bob", "weak", "bob@example.com")
	assert.ErrorIs(t, err, credentials.ErrPasswordTooShort)
	assert.ErrorIs(t, err, common.ErrorValidation)

	assert.Len(t, e.notifier.welcomes, 1)
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	u, err := e.accounts.Authenticate(ctx, "alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	u, err = e.accounts.Authenticate(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, errWrong := e.accounts.Authenticate(ctx, "alice", "Secret124")
	_, errMissing := e.accounts.Authenticate(ctx, "nobody", "Secret123")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errMissing, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errMissing.Error())
}

func TestAuthenticate_UsernameBeforeEmail(t *testing.T) {
	e := newEnv(t)
	// bob's username is alice's email
	e.register(t, "alice", "Secret123", "alice@example.com")
	bob := e.register(t, "alice@example.com", "Other123", "bob@example.com")

	u, err := e.accounts.Authenticate(context.Background(), "alice@example.com", "Other123")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, u.ID)
}

func TestGoogleAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	profile := &google.Profile{Subject: "g-1", Email: "g@example.com", Name: "G User", GivenName: "G", FamilyName: "User", EmailVerified: true}

	u, err := e.accounts.RegisterOrFetchGoogleAccount(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", u.Username)
	assert.True(t, u.IsGoogleAccount)
	assert.False(t, u.HasPassword())
	require.NotNil(t, u.GoogleSubjectID)
	assert.Equal(t, "g-1", *u.GoogleSubjectID)

	again, err := e.accounts.RegisterOrFetchGoogleAccount(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Len(t, e.notifier.welcomes, 1)

	_, err = e.accounts.Authenticate(ctx, "g@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, e.accounts.ChangePassword(ctx, u, "x", "Secret123"), ErrGooglePasswordChange)
	assert.ErrorIs(t, e.accounts.VerifyPassword(u, "x"), ErrGooglePasswordVerify)
	assert.ErrorIs(t, e.accounts.ForceRemovePin(ctx, u, "x"), ErrGooglePasswordVerify)

	_, err = e.resets.RequestReset(ctx, "g@example.com", models.TokenTypePassword)
	assert.ErrorIs(t, err, ErrGooglePasswordReset)
	assert.ErrorIs(t, err, common.ErrorPrecondition)
}

func TestGoogleAccount_ExistingPasswordAccount(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "Secret123", "alice@example.com")

	u, err := e.accounts.RegisterOrFetchGoogleAccount(context.Background(), &google.Profile{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.False(t, u.IsGoogleAccount)
}

func TestVerifyPassword(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")

	assert.NoError(t, e.accounts.VerifyPassword(u, "Secret123"))
	assert.ErrorIs(t, e.accounts.VerifyPassword(u, "nope"), ErrInvalidPassword)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	assert.ErrorIs(t, e.accounts.ChangePassword(ctx, u, "wrong", "NewSecret1"), ErrIncorrectPassword)
	assert.ErrorIs(t, e.accounts.ChangePassword(ctx, u, "Secret123", "nouppercase1"), credentials.ErrPasswordNoUppercase)

	require.NoError(t, e.accounts.ChangePassword(ctx, u, "Secret123", "NewSecret1"))

	_, err := e.accounts.Authenticate(ctx, "alice", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.accounts.Authenticate(ctx, "alice", "NewSecret1")
	assert.NoError(t, err)
}

func TestPinLifecycle(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	assert.False(t, e.accounts.VerifyPin(u, "1234"))
	assert.ErrorIs(t, e.accounts.ChangePin(ctx, u, "1234", "5678"), ErrNoPinSet)
	assert.ErrorIs(t, e.accounts.RemovePin(ctx, u, "1234"), ErrNoPinSet)

	assert.ErrorIs(t, e.accounts.SetPin(ctx, u, "12a4"), credentials.ErrPinNotNumeric)
	assert.ErrorIs(t, e.accounts.SetPin(ctx, u, "123"), credentials.ErrPinLengthOutOfBounds)

	require.NoError(t, e.accounts.SetPin(ctx, u, "1234"))
	assert.True(t, e.reload(t, u.ID).HasPin())
	assert.True(t, e.accounts.VerifyPin(u, "1234"))
	assert.False(t, e.accounts.VerifyPin(u, "4321"))

	// set overwrites without a current-PIN check
	require.NoError(t, e.accounts.SetPin(ctx, u, "2222"))
	assert.True(t, e.accounts.VerifyPin(u, "2222"))

	assert.ErrorIs(t, e.accounts.ChangePin(ctx, u, "0000", "5678"), ErrIncorrectPin)
	assert.ErrorIs(t, e.accounts.ChangePin(ctx, u, "2222", "56789012"), credentials.ErrPinLengthOutOfBounds)
	require.NoError(t, e.accounts.ChangePin(ctx, u, "2222", "567890"))
	assert.True(t, e.accounts.VerifyPin(e.reload(t, u.ID), "567890"))

	assert.ErrorIs(t, e.accounts.RemovePin(ctx, u, "0000"), ErrInvalidPin)
	require.NoError(t, e.accounts.RemovePin(ctx, u, "567890"))
	assert.False(t, e.reload(t, u.ID).HasPin())
}

func TestForceRemovePin(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	assert.ErrorIs(t, e.accounts.ForceRemovePin(ctx, u, "Secret123"), ErrNoPinSet)

	require.NoError(t, e.accounts.SetPin(ctx, u, "1234"))
	assert.ErrorIs(t, e.accounts.ForceRemovePin(ctx, u, "wrong"), ErrInvalidPassword)
	require.NoError(t, e.accounts.ForceRemovePin(ctx, u, "Secret123"))
	assert.False(t, e.reload(t, u.ID).HasPin())
}

func TestDeleteAccount_RemovesResetTokens(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	_, err := e.resets.RequestReset(ctx, "alice@example.com", models.TokenTypePassword)
	require.NoError(t, err)

	require.NoError(t, e.accounts.DeleteAccount(ctx, u))

	_, err = e.manager.Users(e.db).GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	tokens, err := e.manager.ResetTokens(e.db).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestSessions(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	token, err := e.accounts.IssueSession(u)
	require.NoError(t, err)

	sub, err := auth.GetSubjectFromToken(token, []byte("test-secret"), e.clock.Now)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	got, err := e.accounts.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.accounts.ResolveSession(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	e.clock.Advance(31 * time.Minute)
	_, err = e.accounts.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveSession_DeletedAccount(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "Secret123", "alice@example.com")
	ctx := context.Background()

	token, err := e.accounts.IssueSession(u)
	require.NoError(t, err)
	require.NoError(t, e.accounts.DeleteAccount(ctx, u))

	_, err = e.accounts.ResolveSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
