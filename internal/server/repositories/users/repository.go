// Package users declares the account repository contract and its SQL
// implementation.
package users

import (
	"context"
	"fmt"

	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/server/models"
)

// Unique-constraint violations reported by Create. All of them match
// common.ErrorAlreadyExists.
var (
	ErrUsernameTaken      = fmt.Errorf("username %w", common.ErrorAlreadyExists)
	ErrEmailTaken         = fmt.Errorf("email %w", common.ErrorAlreadyExists)
	ErrGoogleSubjectTaken = fmt.Errorf("google subject %w", common.ErrorAlreadyExists)
)

// Repository defines account persistence. Lookups return common.ErrorNotFound
// when no row matches; updates and deletes return it when the id is unknown.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePasswordDigest overwrites the password digest.
	UpdatePasswordDigest(ctx context.Context, id int64, digest string) error

	// UpdatePinDigest overwrites the PIN digest; nil clears it.
	UpdatePinDigest(ctx context.Context, id int64, digest *string) error

	// Delete removes the account row only. Callers remove dependent reset
	// tokens first.
	Delete(ctx context.Context, id int64) error
}
