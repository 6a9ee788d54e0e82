package services

import "github.com/vtnhan03/final-be/internal/common"

// Failures returned by AccountService and ResetService. Each one matches its
// kind through errors.Is and carries the message shown to the caller.
var (
	ErrDuplicateUsername = common.NewError(common.ErrorConflict, "Username already registered")
	ErrDuplicateEmail    = common.NewError(common.ErrorConflict, "Email already registered")

	ErrInvalidCredentials = common.NewError(common.ErrorUnauthorized, "Incorrect username/email or password")
	ErrIncorrectPassword  = common.NewError(common.ErrorUnauthorized, "Current password is incorrect")
	ErrInvalidPassword    = common.NewError(common.ErrorUnauthorized, "Invalid password")
	ErrIncorrectPin       = common.NewError(common.ErrorUnauthorized, "Current PIN is incorrect")
	ErrInvalidPin         = common.NewError(common.ErrorUnauthorized, "Invalid PIN")
	ErrInvalidSession     = common.NewError(common.ErrorUnauthorized, "Could not validate credentials")

	ErrNoPinSet             = common.NewError(common.ErrorPrecondition, "No PIN set for this user")
	ErrGooglePasswordChange = common.NewError(common.ErrorPrecondition, "This account uses Google authentication. Password cannot be changed.")
	ErrGooglePasswordReset  = common.NewError(common.ErrorPrecondition, "This account uses Google authentication. Please sign in with Google.")
	ErrGooglePasswordVerify = common.NewError(common.ErrorPrecondition, "This account uses Google authentication. Password verification is not available.")

	ErrInvalidResetToken       = common.NewError(common.ErrorUnauthorized, "Invalid or expired reset token")
	ErrInvalidVerificationCode = common.NewError(common.ErrorUnauthorized, "Invalid or expired verification code")

	ErrAccountNotFound = common.NewError(common.ErrorNotFound, "User not found")
)

// Acknowledgements returned by RequestReset. They do not depend on whether
// the account exists.
const (
	MsgPasswordResetRequested = "If the email exists, a password reset code has been sent"
	MsgPinResetRequested      = "If the email exists and has a PIN set, a PIN reset code has been sent"
)
