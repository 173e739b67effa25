package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhom11/attendance-api/internal/models"
)

func reportRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"class_id", "class_code", "class_name", "total_students", "total_sessions", "present_count", "absent_count", "late_count"}).
		AddRow(int64(1), "10A1", "Class 10A1", 30, 4, 110, 8, 2).
		AddRow(int64(2), "10A2", "Class 10A2", 28, 0, 0, 0, 0)
}

func TestSchoolReportUnbounded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT c.id AS class_id").WillReturnRows(reportRows())

	rows, err := repo.SchoolReport(context.Background(), models.ReportRange{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "10A1", rows[0].ClassCode)
	// Classes without closed sessions in range still come back at zero.
	assert.Equal(t, 0, rows[1].TotalSessions)
	assert.Equal(t, 28, rows[1].TotalStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolReportDateBounds(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(`ses\.session_date >= \$1 AND ses\.session_date <= \$2`).
		WithArgs("2025-09-01", "2025-09-30").
		WillReturnRows(reportRows())

	from, to := "2025-09-01", "2025-09-30"
	rows, err := repo.SchoolReport(context.Background(), models.ReportRange{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolReportFromOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(`ses\.session_date >= \$1`).
		WithArgs("2025-09-01").
		WillReturnRows(reportRows())

	from := "2025-09-01"
	_, err := repo.SchoolReport(context.Background(), models.ReportRange{From: &from})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
