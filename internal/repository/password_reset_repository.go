package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// PasswordResetRepository persists one-time password reset codes.
type PasswordResetRepository struct {
	db *sqlx.DB
}

// NewPasswordResetRepository constructs the repository.
func NewPasswordResetRepository(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create stores a fresh reset code for the user.
func (r *PasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	const query = `INSERT INTO password_resets (user_id, token, expires_at, used, created_at)
VALUES ($1, $2, $3, FALSE, $4)
RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		reset.UserID, reset.Token, reset.ExpiresAt, reset.CreatedAt,
	).Scan(&reset.ID); err != nil {
		return translate(err, "create password reset")
	}
	return nil
}

// Redeem consumes an unused, unexpired code and swaps the user's password
// hash, all within one transaction. Returns sql.ErrNoRows when the code is
// unknown, already used or expired.
func (r *PasswordResetRepository) Redeem(ctx context.Context, token, newPasswordHash string, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin redeem reset token: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var userID int64
	const selectQuery = `SELECT user_id FROM password_resets
WHERE token = $1 AND used = FALSE AND expires_at > $2
FOR UPDATE`
	if err := tx.GetContext(ctx, &userID, selectQuery, token, now); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return translate(err, "lookup reset token")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, userID, newPasswordHash, now); err != nil {
		return translate(err, "reset password")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE password_resets SET used = TRUE WHERE token = $1`, token); err != nil {
		return translate(err, "consume reset token")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit redeem reset token: %w", err)
	}
	committed = true
	return nil
}
