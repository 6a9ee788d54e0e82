package credentials

import (
	"unicode"

	"github.com/vtnhan03/final-be/internal/common"
)

// Minimum password length and the accepted PIN length range.
const (
	MinPasswordLength = 8
	MinPinLength      = 4
	MaxPinLength      = 6
)

var (
	ErrPasswordTooShort     = common.NewError(common.ErrorValidation, "Password must be at least 8 characters long")
	ErrPasswordNoUppercase  = common.NewError(common.ErrorValidation, "Password must contain at least one uppercase letter")
	ErrPasswordNoLowercase  = common.NewError(common.ErrorValidation, "Password must contain at least one lowercase letter")
	ErrPasswordNoDigit      = common.NewError(common.ErrorValidation, "Password must contain at least one number")
	ErrPinNotNumeric        = common.NewError(common.ErrorValidation, "PIN must contain only digits")
	ErrPinLengthOutOfBounds = common.NewError(common.ErrorValidation, "PIN must be 4-6 digits")
)

// ValidatePasswordStrength checks length, uppercase, lowercase and digit in
// that order and returns the first failure.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !containsFunc(password, unicode.IsUpper) {
		return ErrPasswordNoUppercase
	}
	if !containsFunc(password, unicode.IsLower) {
		return ErrPasswordNoLowercase
	}
	if !containsFunc(password, unicode.IsDigit) {
		return ErrPasswordNoDigit
	}
	return nil
}

// ValidatePinFormat accepts 4 to 6 ASCII digits.
func ValidatePinFormat(pin string) error {
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrPinNotNumeric
		}
	}
	if len(pin) < MinPinLength || len(pin) > MaxPinLength {
		return ErrPinLengthOutOfBounds
	}
	return nil
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}
