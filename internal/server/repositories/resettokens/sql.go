package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/vtnhan03/final-be/internal/common"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/server/models"
)

// ErrAlreadyUsed reports a lost race on single-use consumption.
var ErrAlreadyUsed = errors.New("reset token already used")

var tokenColumns = []string{"id", "user_id", "token", "verification_code", "token_type", "expires_at", "used"}

// SQLRepository implements Repository over dbx.DBTX (satisfied by *sql.DB
// or *sql.Tx). Lookups are built with squirrel using $N placeholders.
type SQLRepository struct {
	db dbx.DBTX
	sb sq.StatementBuilderType
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Create inserts a new reset token with used = FALSE.
func (r *SQLRepository) Create(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (user_id, token, verification_code, token_type, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		token.UserID, token.Token, token.VerificationCode, string(token.Type), token.ExpiresAt.UTC(),
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	token.Used = false
	return nil
}

// FindUnusedByToken matches on the token secret and type among unused rows.
func (r *SQLRepository) FindUnusedByToken(ctx context.Context, token string, tokenType models.TokenType) (*models.ResetToken, error) {
	q := r.sb.Select(tokenColumns...).
		From("reset_tokens").
		Where(sq.Eq{"token": token}).
		Where(sq.Eq{"token_type": string(tokenType)}).
		Where(sq.Eq{"used": false}).
		Limit(1)
	return r.findOne(ctx, q)
}

// FindUnusedByCode matches on owner, code and type among unused rows.
func (r *SQLRepository) FindUnusedByCode(ctx context.Context, userID int64, code string, tokenType models.TokenType) (*models.ResetToken, error) {
	q := r.sb.Select(tokenColumns...).
		From("reset_tokens").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"verification_code": code}).
		Where(sq.Eq{"token_type": string(tokenType)}).
		Where(sq.Eq{"used": false}).
		OrderBy("id DESC").
		Limit(1)
	return r.findOne(ctx, q)
}

// MarkUsed is a conditional update guarded by used = FALSE.
func (r *SQLRepository) MarkUsed(ctx context.Context, id int64) error {
	query := `
		UPDATE reset_tokens SET used = TRUE
		WHERE id = $1 AND used = FALSE
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return ErrAlreadyUsed
	}
	return nil
}

// DeleteByUser removes all reset tokens referencing userID.
func (r *SQLRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		DELETE FROM reset_tokens
		WHERE user_id = $1
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListByUser returns every token of userID, newest first.
func (r *SQLRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ResetToken, error) {
	query, args, err := r.sb.Select(tokenColumns...).
		From("reset_tokens").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.ResetToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) findOne(ctx context.Context, q sq.SelectBuilder) (*models.ResetToken, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	t, err := scanToken(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(s scanner) (*models.ResetToken, error) {
	t := &models.ResetToken{}
	if err := s.Scan(&t.ID, &t.UserID, &t.Token, &t.VerificationCode, &t.Type, &t.ExpiresAt, &t.Used); err != nil {
		return nil, err
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}
