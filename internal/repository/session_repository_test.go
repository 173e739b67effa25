package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhom11/attendance-api/internal/models"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

func TestSessionCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO attendance_sessions").
		WithArgs(int64(5), "ATT-2025-09-01", now, now, models.SessionStatusActive, int64(2), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	session := &models.AttendanceSession{
		ClassSubjectID: 5,
		SessionCode:    "ATT-2025-09-01",
		Date:           now,
		StartTime:      now,
		Status:         models.SessionStatusActive,
		CreatedBy:      2,
		CreatedAt:      now,
	}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, int64(11), session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCreateSecondActiveConflicts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("INSERT INTO attendance_sessions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_sessions_one_active"})

	err := repo.Create(context.Background(), &models.AttendanceSession{ClassSubjectID: 5, Status: models.SessionStatusActive})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionClose(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	endTime := time.Now()
	mock.ExpectExec("UPDATE attendance_sessions").
		WithArgs(int64(11), endTime).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Close(context.Background(), 11, endTime)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCloseNotActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	// The status guard rejects sessions already CLOSED and missing ids alike.
	mock.ExpectExec("UPDATE attendance_sessions").
		WithArgs(int64(11), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Close(context.Background(), 11, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindActiveByClassSubject(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "class_subject_id", "session_code", "session_date", "start_time", "end_time", "status", "created_by", "created_at", "class_id", "class_code", "class_name", "subject_name"}).
		AddRow(int64(11), int64(5), "ATT-2025-09-01", now, now, nil, string(models.SessionStatusActive), int64(2), now, int64(8), "10A1", "Class 10A1", "Mathematics")
	mock.ExpectQuery("SELECT (.+) FROM attendance_sessions s").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	session, err := repo.FindActiveByClassSubject(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, int64(8), session.ClassID)
	assert.Equal(t, "Mathematics", session.SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
