// Package resettokens declares the server-side repository contract for
// password and PIN reset tokens, plus its SQL implementation.
package resettokens

import (
	"context"

	"github.com/vtnhan03/final-be/internal/server/models"
)

// Repository defines operations for issuing, matching and consuming reset
// tokens. Expiry is not filtered here; callers compare ExpiresAt themselves.
type Repository interface {
	// Create stores a new unused token and fills in its ID.
	Create(ctx context.Context, token *models.ResetToken) error

	// FindUnusedByToken returns the unused token with the given secret and type.
	// Implementations return common.ErrorNotFound when nothing matches.
	FindUnusedByToken(ctx context.Context, token string, tokenType models.TokenType) (*models.ResetToken, error)

	// FindUnusedByCode returns the newest unused token of the user with the
	// given verification code and type, or common.ErrorNotFound.
	FindUnusedByCode(ctx context.Context, userID int64, code string, tokenType models.TokenType) (*models.ResetToken, error)

	// MarkUsed flips used from false to true. It returns ErrAlreadyUsed when
	// the token was consumed concurrently or does not exist.
	MarkUsed(ctx context.Context, id int64) error

	// DeleteByUser removes every token of a user and reports how many went away.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)

	// ListByUser returns all tokens of a user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.ResetToken, error)
}
