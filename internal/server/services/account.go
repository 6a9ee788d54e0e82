// Package services contains server-side business logic. AccountService covers
// registration, login and credential management; ResetService covers the
// password and PIN reset flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/server/auth"
	"github.com/vtnhan03/final-be/internal/server/config"
	"github.com/vtnhan03/final-be/internal/server/credentials"
	"github.com/vtnhan03/final-be/internal/server/google"
	"github.com/vtnhan03/final-be/internal/server/models"
	"github.com/vtnhan03/final-be/internal/server/repositories/repomanager"
	"github.com/vtnhan03/final-be/internal/server/repositories/users"
)

// Notifier delivers account emails. Implementations must not block the
// caller and must swallow delivery failures.
type Notifier interface {
	Welcome(ctx context.Context, email, username string)
	ResetCode(ctx context.Context, email, code string, tokenType models.TokenType)
}

// AccountService provides account operations on top of the repositories.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *credentials.Hasher
	issuer      *auth.Issuer
	notifier    Notifier

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAccountService constructs an AccountService using repositories and
// server config. A nil clock uses the real clock.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, n Notifier, clock clockwork.Clock) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      credentials.NewHasher(cfg.BcryptCost),
		issuer:      auth.NewIssuer(cfg.SecretKey, cfg.AccessTokenValidityDuration, clock),
		notifier:    n,
	}
}

// Register creates a password account. Checks run in a fixed order:
// username, email, then password strength.
func (s *AccountService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching username: %w", err)
	}

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching email: %w", err)
	}

	if err := credentials.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Username:       username,
		Email:          models.StringPtr(email),
		PasswordDigest: models.StringPtr(digest),
	})
	if err != nil {
		return nil, mapCreateError(err)
	}

	s.notifier.Welcome(ctx, email, user.Username)
	return user, nil
}

// RegisterOrFetchGoogleAccount returns the account owning the profile's
// email, creating a Google account when there is none. Existing accounts are
// returned unchanged.
func (s *AccountService) RegisterOrFetchGoogleAccount(ctx context.Context, profile *google.Profile) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching email: %w", err)
	}

	u := &models.User{
		Username:        profile.Email,
		Email:           models.StringPtr(profile.Email),
		IsGoogleAccount: true,
	}
	if profile.Subject != "" {
		u.GoogleSubjectID = models.StringPtr(profile.Subject)
	}

	user, err = repo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// lost a race with a concurrent sign-in for the same email
			if existing, gerr := repo.GetByEmail(ctx, profile.Email); gerr == nil {
				return existing, nil
			}
		}
		return nil, mapCreateError(err)
	}

	s.notifier.Welcome(ctx, profile.Email, user.Username)
	return user, nil
}

// Authenticate resolves identifier as a username, then as an email, and
// checks the password. Every failure is ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, identifier)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = repo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !user.HasPassword() {
		s.hasher.Verify(password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, *user.PasswordDigest) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyPassword re-checks the password of an already authenticated account.
func (s *AccountService) VerifyPassword(user *models.User, password string) error {
	if user.IsGoogleAccount {
		return ErrGooglePasswordVerify
	}
	if !user.HasPassword() || !s.hasher.Verify(password, *user.PasswordDigest) {
		return ErrInvalidPassword
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if user.IsGoogleAccount {
		return ErrGooglePasswordChange
	}
	if !user.HasPassword() || !s.hasher.Verify(current, *user.PasswordDigest) {
		return ErrIncorrectPassword
	}
	if err := credentials.ValidatePasswordStrength(next); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdatePasswordDigest(ctx, user.ID, digest); err != nil {
		return mapUpdateError(err)
	}
	user.PasswordDigest = &digest
	return nil
}

// SetPin stores a PIN, replacing any existing one without checking it.
func (s *AccountService) SetPin(ctx context.Context, user *models.User, pin string) error {
	if err := credentials.ValidatePinFormat(pin); err != nil {
		return err
	}
	return s.storePin(ctx, user, pin)
}

// ChangePin replaces an existing PIN after checking the current one.
func (s *AccountService) ChangePin(ctx context.Context, user *models.User, current, next string) error {
	if !user.HasPin() {
		return ErrNoPinSet
	}
	if !s.hasher.Verify(current, *user.PinDigest) {
		return ErrIncorrectPin
	}
	if err := credentials.ValidatePinFormat(next); err != nil {
		return err
	}
	return s.storePin(ctx, user, next)
}

// RemovePin clears the PIN after checking it.
func (s *AccountService) RemovePin(ctx context.Context, user *models.User, current string) error {
	if !user.HasPin() {
		return ErrNoPinSet
	}
	if !s.hasher.Verify(current, *user.PinDigest) {
		return ErrInvalidPin
	}
	return s.clearPin(ctx, user)
}

// ForceRemovePin clears the PIN using the account password instead of the
// PIN itself.
func (s *AccountService) ForceRemovePin(ctx context.Context, user *models.User, password string) error {
	if user.IsGoogleAccount {
		return ErrGooglePasswordVerify
	}
	if !user.HasPin() {
		return ErrNoPinSet
	}
	if !user.HasPassword() || !s.hasher.Verify(password, *user.PasswordDigest) {
		return ErrInvalidPassword
	}
	return s.clearPin(ctx, user)
}

// VerifyPin reports whether pin matches. An account without a PIN never
// matches.
func (s *AccountService) VerifyPin(user *models.User, pin string) bool {
	if !user.HasPin() {
		return false
	}
	return s.hasher.Verify(pin, *user.PinDigest)
}

// DeleteAccount removes the account and all of its reset tokens in one
// transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, user *models.User) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.ResetTokens(tx).DeleteByUser(ctx, user.ID); err != nil {
			return fmt.Errorf("error deleting reset tokens: %w", err)
		}
		if err := s.repomanager.Users(tx).Delete(ctx, user.ID); err != nil {
			return mapUpdateError(err)
		}
		return nil
	})
}

// IssueSession returns a bearer token for the account.
func (s *AccountService) IssueSession(user *models.User) (string, error) {
	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("error issuing session: %w", err)
	}
	return token, nil
}

// ResolveSession verifies token and loads the account named by its subject.
// Bad tokens and vanished accounts both yield ErrInvalidSession.
func (s *AccountService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	username, err := s.issuer.Verify(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("error loading session account: %w", err)
	}
	return user, nil
}

// --- helpers below ---

func (s *AccountService) storePin(ctx context.Context, user *models.User, pin string) error {
	digest, err := s.hasher.Hash(pin)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdatePinDigest(ctx, user.ID, &digest); err != nil {
		return mapUpdateError(err)
	}
	user.PinDigest = &digest
	return nil
}

func (s *AccountService) clearPin(ctx context.Context, user *models.User) error {
	if err := s.repomanager.Users(s.db).UpdatePinDigest(ctx, user.ID, nil); err != nil {
		return mapUpdateError(err)
	}
	user.PinDigest = nil
	return nil
}

// dummy returns a digest to compare against when there is no account, so
// unknown identifiers cost the same as wrong passwords.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("dummy-password-for-timing")
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}

func mapCreateError(err error) error {
	switch {
	case errors.Is(err, users.ErrUsernameTaken):
		return ErrDuplicateUsername
	case errors.Is(err, users.ErrEmailTaken):
		return ErrDuplicateEmail
	}
	return fmt.Errorf("error creating user: %w", err)
}

func mapUpdateError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return ErrAccountNotFound
	}
	return fmt.Errorf("error updating user: %w", err)
}
