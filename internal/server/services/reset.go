package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/config"
	"github.com/vtnhan03/final-be/internal/server/credentials"
	"github.com/vtnhan03/final-be/internal/server/models"
	"github.com/vtnhan03/final-be/internal/server/repositories/repomanager"
	"github.com/vtnhan03/final-be/internal/server/repositories/resettokens"
)

// ResetService issues and redeems single-use password and PIN reset tokens.
// Each token has a long secret for links and a 6-digit code for manual entry.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *credentials.Hasher
	notifier    Notifier
	clock       clockwork.Clock
	validity    time.Duration
	logger      logging.Logger
}

// NewResetService constructs a ResetService. A nil clock uses the real clock.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, n Notifier, clock clockwork.Clock, l logging.Logger) *ResetService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	validity := cfg.ResetTokenValidityDuration
	if validity <= 0 {
		validity = time.Hour
	}
	return &ResetService{
		db:          db,
		repomanager: m,
		hasher:      credentials.NewHasher(cfg.BcryptCost),
		notifier:    n,
		clock:       clock,
		validity:    validity,
		logger:      l.With("module", "reset"),
	}
}

// RequestReset issues a reset token for the account owning email and mails
// its code. Unknown emails, and PIN requests for accounts without a PIN,
// are silent no-ops. Password requests for Google accounts fail with
// ErrGooglePasswordReset. The returned acknowledgement depends only on
// tokenType.
func (s *ResetService) RequestReset(ctx context.Context, email string, tokenType models.TokenType) (string, error) {
	if !tokenType.Valid() {
		return "", fmt.Errorf("unknown token type %q", tokenType)
	}
	ack := MsgPasswordResetRequested
	if tokenType == models.TokenTypePin {
		ack = MsgPinResetRequested
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ack, nil
		}
		return "", fmt.Errorf("error searching email: %w", err)
	}

	switch tokenType {
	case models.TokenTypePassword:
		if user.IsGoogleAccount {
			return "", ErrGooglePasswordReset
		}
	case models.TokenTypePin:
		if !user.HasPin() {
			return ack, nil
		}
	}

	token, err := s.issue(ctx, user.ID, tokenType)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "reset token issued", "user_id", user.ID, "type", string(tokenType), "token_id", token.ID)
	s.notifier.ResetCode(ctx, email, token.VerificationCode, tokenType)
	return ack, nil
}

// ConfirmResetByToken sets a new secret using the long reset secret.
func (s *ResetService) ConfirmResetByToken(ctx context.Context, secret, newSecret string, tokenType models.TokenType) error {
	if err := validateSecret(newSecret, tokenType); err != nil {
		return err
	}

	token, err := s.repomanager.ResetTokens(s.db).FindUnusedByToken(ctx, secret, tokenType)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}

	return s.redeem(ctx, token, newSecret, ErrInvalidResetToken)
}

// ConfirmResetByCode sets a new secret using the 6-digit code mailed to
// email.
func (s *ResetService) ConfirmResetByCode(ctx context.Context, email, code, newSecret string, tokenType models.TokenType) error {
	if err := validateSecret(newSecret, tokenType); err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidVerificationCode
		}
		return fmt.Errorf("error searching email: %w", err)
	}

	token, err := s.repomanager.ResetTokens(s.db).FindUnusedByCode(ctx, user.ID, code, tokenType)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrInvalidVerificationCode
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}

	return s.redeem(ctx, token, newSecret, ErrInvalidVerificationCode)
}

// --- helpers below ---

func (s *ResetService) issue(ctx context.Context, userID int64, tokenType models.TokenType) (*models.ResetToken, error) {
	secret, err := credentials.GenerateResetSecret()
	if err != nil {
		return nil, err
	}
	code, err := credentials.GenerateVerificationCode()
	if err != nil {
		return nil, err
	}

	token := &models.ResetToken{
		UserID:           userID,
		Token:            secret,
		VerificationCode: code,
		Type:             tokenType,
		ExpiresAt:        s.clock.Now().UTC().Add(s.validity),
	}
	if err := s.repomanager.ResetTokens(s.db).Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error creating reset token: %w", err)
	}
	return token, nil
}

// redeem checks expiry, loads the owner and, in one transaction, consumes the
// token and overwrites the digest. invalid is returned for expired or
// concurrently consumed tokens.
func (s *ResetService) redeem(ctx context.Context, token *models.ResetToken, newSecret string, invalid error) error {
	if token.Expired(s.clock.Now().UTC()) {
		return invalid
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	digest, err := s.hasher.Hash(newSecret)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ResetTokens(tx).MarkUsed(ctx, token.ID); err != nil {
			if errors.Is(err, resettokens.ErrAlreadyUsed) {
				return invalid
			}
			return fmt.Errorf("error consuming reset token: %w", err)
		}

		repo := s.repomanager.Users(tx)
		var uerr error
		if token.Type == models.TokenTypePin {
			uerr = repo.UpdatePinDigest(ctx, user.ID, &digest)
		} else {
			uerr = repo.UpdatePasswordDigest(ctx, user.ID, digest)
		}
		if uerr != nil {
			return mapUpdateError(uerr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "reset token redeemed", "user_id", user.ID, "type", string(token.Type), "token_id", token.ID)
	return nil
}

func validateSecret(secret string, tokenType models.TokenType) error {
	switch tokenType {
	case models.TokenTypePassword:
		return credentials.ValidatePasswordStrength(secret)
	case models.TokenTypePin:
		return credentials.ValidatePinFormat(secret)
	}
	return fmt.Errorf("unknown token type %q", tokenType)
}
