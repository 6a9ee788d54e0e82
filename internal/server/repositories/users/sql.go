package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/server/models"
)

const pgUniqueViolation = "23505"

const selectUser = `SELECT id, username, email, password_digest, pin_digest, google_subject_id, is_google_account FROM users`

// SQLRepository implements Repository over dbx.DBTX. The queries use $N
// placeholders, understood by both pgx and modernc sqlite.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_digest, google_subject_id, is_google_account)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordDigest, user.GoogleSubjectID, user.IsGoogleAccount).Scan(&user.ID)

	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *SQLRepository) UpdatePasswordDigest(ctx context.Context, id int64, digest string) error {
	return r.execOne(ctx, `UPDATE users SET password_digest = $1 WHERE id = $2`, digest, id)
}

func (r *SQLRepository) UpdatePinDigest(ctx context.Context, id int64, digest *string) error {
	return r.execOne(ctx, `UPDATE users SET pin_digest = $1 WHERE id = $2`, digest, id)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordDigest,
		&user.PinDigest, &user.GoogleSubjectID, &user.IsGoogleAccount,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) execOne(ctx context.Context, query string, args ...any) error {
	n, err := dbx.ExecAffected(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// uniqueViolation maps PostgreSQL and SQLite unique-constraint errors to the
// package sentinels. It returns nil for any other error.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		case "users_google_subject_id_key":
			return ErrGoogleSubjectTaken
		}
		return common.ErrorAlreadyExists
	}

	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users.google_subject_id"):
		return ErrGoogleSubjectTaken
	}
	return common.ErrorAlreadyExists
}
