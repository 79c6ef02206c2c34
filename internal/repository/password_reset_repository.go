package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PasswordResetRepo stores hashed one-time password reset tokens.
type PasswordResetRepo struct{ DB *sql.DB }

func NewPasswordResetRepo(db *sql.DB) *PasswordResetRepo { return &PasswordResetRepo{DB: db} }

// Store records a reset token hash for userID valid until exp.
func (r *PasswordResetRepo) Store(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (token_hash, user_id, expires_at) VALUES (?,?,?)",
		tokenHash, userID, exp.UTC())
	return err
}

// Consume marks a live token as used and returns its user id. The token is
// burned inside one transaction so it can be redeemed only once.
func (r *PasswordResetRepo) Consume(ctx context.Context, tokenHash string) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		userID    string
		expiresAt time.Time
		usedAt    sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, expires_at, used_at FROM password_resets WHERE token_hash=? FOR UPDATE",
		tokenHash).Scan(&userID, &expiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	if usedAt.Valid || time.Now().UTC().After(expiresAt) {
		return "", ErrTokenInvalid
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE password_resets SET used_at=UTC_TIMESTAMP() WHERE token_hash=?", tokenHash); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return userID, nil
}
