// Package models defines server-side data models persisted in the database.
package models

// User is an account. Optional columns are pointers; nil means NULL.
type User struct {
	ID              int64
	Username        string
	Email           *string
	PasswordDigest  *string
	PinDigest       *string
	GoogleSubjectID *string
	IsGoogleAccount bool
}

// HasPin reports whether the account has a PIN digest.
func (u *User) HasPin() bool { return u.PinDigest != nil && *u.PinDigest != "" }

// HasPassword reports whether the account has a local password digest.
func (u *User) HasPassword() bool { return u.PasswordDigest != nil && *u.PasswordDigest != "" }

// EmailAddress returns the email or "" when none is stored.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// StringPtr is a convenience for filling optional fields.
func StringPtr(s string) *string { return &s }
