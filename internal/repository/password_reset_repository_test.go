package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhom11/attendance-api/internal/models"
)

func TestPasswordResetCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPasswordResetRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO password_resets").
		WithArgs(int64(1), "482913", now.Add(15*time.Minute), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	reset := &models.PasswordReset{UserID: 1, Token: "482913", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now}
	err := repo.Create(context.Background(), reset)
	require.NoError(t, err)
	assert.Equal(t, int64(5), reset.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRedeem(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPasswordResetRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM password_resets").
		WithArgs("482913", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(int64(1), "newhash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE password_resets SET used = TRUE").
		WithArgs("482913").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Redeem(context.Background(), "482913", "newhash", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRedeemSpentCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPasswordResetRepository(db)

	// Used and expired codes fall out of the guarded select identically.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM password_resets").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Redeem(context.Background(), "482913", "newhash", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
