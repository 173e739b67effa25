package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// ReportRepository aggregates attendance per class for the school report.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SchoolReport returns one row per class with enrollment, closed-session and
// status counts, optionally bounded by session date. Counting DISTINCT record
// ids keeps the enrollment join from inflating the per-status totals.
func (r *ReportRepository) SchoolReport(ctx context.Context, rng models.ReportRange) ([]models.ClassAttendanceReportRow, error) {
	query := `SELECT c.id AS class_id, c.code AS class_code, c.name AS class_name,
       COUNT(DISTINCT e.student_id) FILTER (WHERE e.status = 'Active') AS total_students,
       COUNT(DISTINCT ses.id) AS total_sessions,
       COUNT(DISTINCT ar.id) FILTER (WHERE ar.status = 'PRESENT') AS present_count,
       COUNT(DISTINCT ar.id) FILTER (WHERE ar.status IN ('ABSENT', 'ABSENT_EXCUSED')) AS absent_count,
       COUNT(DISTINCT ar.id) FILTER (WHERE ar.status = 'LATE') AS late_count
FROM classes c
LEFT JOIN enrollments e ON e.class_id = c.id
LEFT JOIN class_subjects cs ON cs.class_id = c.id
LEFT JOIN attendance_sessions ses ON ses.class_subject_id = cs.id AND ses.status = 'CLOSED'`

	// Date bounds belong inside the session join condition so classes with
	// no sessions in range still report zero counts.
	args := []interface{}{}
	if rng.From != nil {
		args = append(args, *rng.From)
		query += fmt.Sprintf(" AND ses.session_date >= $%d", len(args))
	}
	if rng.To != nil {
		args = append(args, *rng.To)
		query += fmt.Sprintf(" AND ses.session_date <= $%d", len(args))
	}

	query += `
LEFT JOIN attendance_records ar ON ar.session_id = ses.id
GROUP BY c.id, c.code, c.name
ORDER BY c.code ASC`

	var rows []models.ClassAttendanceReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, translate(err, "school attendance report")
	}
	return rows, nil
}
