package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// SessionRepository handles persistence of attendance sessions. The partial
// unique index on (class_subject_id) WHERE status = 'ACTIVE' is the
// single-active-session guarantee; concurrent opens surface as a unique
// violation here.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create opens a session in ACTIVE state. A second ACTIVE session for the
// same class-subject trips the partial unique index and comes back as
// ErrConflict.
func (r *SessionRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	const query = `INSERT INTO attendance_sessions
(class_subject_id, session_code, session_date, start_time, status, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		session.ClassSubjectID, session.SessionCode, session.Date, session.StartTime,
		session.Status, session.CreatedBy, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return translate(err, "create session")
	}
	return nil
}

// Close transitions an ACTIVE session to CLOSED and stamps its end time. The
// status guard in the WHERE clause makes the transition idempotent-safe: a
// session that is already CLOSED (or missing) reports sql.ErrNoRows.
func (r *SessionRepository) Close(ctx context.Context, id int64, endTime time.Time) error {
	const query = `UPDATE attendance_sessions
SET status = 'CLOSED', end_time = $2
WHERE id = $1 AND status = 'ACTIVE'`
	result, err := r.db.ExecContext(ctx, query, id, endTime)
	if err != nil {
		return translate(err, "close session")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const sessionColumns = `s.id, s.class_subject_id, s.session_code, s.session_date, s.start_time, s.end_time, s.status, s.created_by, s.created_at`

const sessionJoins = `FROM attendance_sessions s
JOIN class_subjects cs ON cs.id = s.class_subject_id
JOIN classes c ON c.id = cs.class_id
JOIN subjects sub ON sub.id = cs.subject_id`

const sessionDetailColumns = sessionColumns + `,
       cs.class_id, c.code AS class_code, c.name AS class_name, sub.name AS subject_name`

// FindByID returns a session with its class and subject context.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + "\n" + sessionJoins + `
WHERE s.id = $1`
	var session models.SessionDetail
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByClassSubject returns the ACTIVE session for a class-subject,
// or sql.ErrNoRows when none is open.
func (r *SessionRepository) FindActiveByClassSubject(ctx context.Context, classSubjectID int64) (*models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + "\n" + sessionJoins + `
WHERE s.class_subject_id = $1 AND s.status = 'ACTIVE'`
	var session models.SessionDetail
	if err := r.db.GetContext(ctx, &session, query, classSubjectID); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByClassSubject returns the session history of a class-subject, newest
// first.
func (r *SessionRepository) ListByClassSubject(ctx context.Context, classSubjectID int64) ([]models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + "\n" + sessionJoins + `
WHERE s.class_subject_id = $1
ORDER BY s.session_date DESC, s.start_time DESC`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, classSubjectID); err != nil {
		return nil, translate(err, "list sessions by class subject")
	}
	return sessions, nil
}

// ListActiveForStudent returns ACTIVE sessions of classes the student is
// actively enrolled in, for the self-service check-in screen.
func (r *SessionRepository) ListActiveForStudent(ctx context.Context, studentID int64) ([]models.SessionDetail, error) {
	query := `SELECT ` + sessionDetailColumns + "\n" + sessionJoins + `
JOIN enrollments e ON e.class_id = cs.class_id
WHERE e.student_id = $1 AND e.status = 'Active' AND s.status = 'ACTIVE'
ORDER BY s.start_time DESC`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, translate(err, "list active sessions for student")
	}
	return sessions, nil
}
