package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhom11/attendance-api/internal/models"
)

func TestAttendanceUpsertInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WithArgs(int64(11), int64(7), models.AttendanceStatusPresent, nil, now, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "marked_at", "updated_at"}).AddRow(int64(1), now, nil))

	record := &models.AttendanceRecord{SessionID: 11, StudentID: 7, Status: models.AttendanceStatusPresent, MarkedAt: now}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Nil(t, record.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpsertKeepsFirstMarkTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	teacherID := int64(2)
	firstMark := time.Now().Add(-10 * time.Minute)
	correction := time.Now()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WithArgs(int64(11), int64(7), models.AttendanceStatusLate, nil, correction, &teacherID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "marked_at", "updated_at"}).AddRow(int64(1), firstMark, correction))

	record := &models.AttendanceRecord{SessionID: 11, StudentID: 7, Status: models.AttendanceStatusLate, MarkedAt: correction, UpdatedBy: &teacherID}
	err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, firstMark, record.MarkedAt)
	require.NotNil(t, record.UpdatedAt)
	assert.Equal(t, correction, *record.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListBySession(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "student_id", "status", "note", "marked_at", "updated_at", "updated_by", "student_code", "student_name"}).
		AddRow(int64(1), int64(11), int64(7), string(models.AttendanceStatusPresent), nil, now, nil, nil, "SV007", "Student Seven").
		AddRow(int64(2), int64(11), int64(9), string(models.AttendanceStatusAbsent), "sick", now, nil, nil, "SV009", "Student Nine")
	mock.ExpectQuery("SELECT (.+) FROM attendance_records ar").
		WithArgs(int64(11)).
		WillReturnRows(rows)

	records, err := repo.ListBySession(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SV007", records[0].StudentCode)
	assert.Equal(t, models.AttendanceStatusAbsent, records[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentHistory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"status", "note", "marked_at", "session_code", "session_date", "subject_name"}).
		AddRow(string(models.AttendanceStatusPresent), nil, now, "ATT-2025-09-02", now, "Physics").
		AddRow(string(models.AttendanceStatusLate), "bus", now.Add(-24*time.Hour), "ATT-2025-09-01", now.Add(-24*time.Hour), "Mathematics")
	mock.ExpectQuery("SELECT (.+) FROM attendance_records ar").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	history, err := repo.StudentHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Physics", history[0].SubjectName)
	assert.Equal(t, models.AttendanceStatusLate, history[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
