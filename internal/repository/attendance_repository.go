package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the record keyed by (session_id, student_id). On
// conflict only status, note, updated_at and updated_by change; marked_at
// keeps the timestamp of the first mark.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance_records
(session_id, student_id, status, note, marked_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id, student_id) DO UPDATE SET
	status = EXCLUDED.status,
	note = EXCLUDED.note,
	updated_at = EXCLUDED.marked_at,
	updated_by = EXCLUDED.updated_by
RETURNING id, marked_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		record.SessionID, record.StudentID, record.Status, record.Note,
		record.MarkedAt, record.UpdatedBy,
	).Scan(&record.ID, &record.MarkedAt, &record.UpdatedAt)
	if err != nil {
		return translate(err, "upsert attendance record")
	}
	return nil
}

// ListBySession returns a session's records with student identity, ordered
// by student code.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecordRow, error) {
	const query = `SELECT ar.id, ar.session_id, ar.student_id, ar.status, ar.note,
       ar.marked_at, ar.updated_at, ar.updated_by,
       s.student_code, u.full_name AS student_name
FROM attendance_records ar
JOIN students s ON s.id = ar.student_id
JOIN users u ON u.id = s.user_id
WHERE ar.session_id = $1
ORDER BY s.student_code ASC`
	var records []models.SessionRecordRow
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, translate(err, "list records by session")
	}
	return records, nil
}

// StudentHistory returns a student's attendance across closed and open
// sessions, newest session first.
func (r *AttendanceRepository) StudentHistory(ctx context.Context, studentID int64) ([]models.StudentHistoryRow, error) {
	const query = `SELECT ar.status, ar.note, ar.marked_at,
       ses.session_code, ses.session_date, sub.name AS subject_name
FROM attendance_records ar
JOIN attendance_sessions ses ON ses.id = ar.session_id
JOIN class_subjects cs ON cs.id = ses.class_subject_id
JOIN subjects sub ON sub.id = cs.subject_id
WHERE ar.student_id = $1
ORDER BY ses.session_date DESC, ar.marked_at DESC`
	var rows []models.StudentHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, translate(err, "student attendance history")
	}
	return rows, nil
}
