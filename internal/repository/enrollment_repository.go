package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments. Enrollments are
// the authoritative class membership; students.class_id is refreshed here as
// a denormalized cache.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create registers a student into a class and refreshes the class cache on
// the student profile in the same transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create enrollment: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO enrollments (student_id, class_id, enrolled_at, status)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := tx.QueryRowxContext(ctx, insert,
		enrollment.StudentID, enrollment.ClassID, enrollment.EnrolledAt, enrollment.Status,
	).Scan(&enrollment.ID); err != nil {
		return translate(err, "create enrollment")
	}

	if enrollment.Status == models.EnrollmentStatusActive {
		if _, err := tx.ExecContext(ctx, `UPDATE students SET class_id = $2 WHERE id = $1`, enrollment.StudentID, enrollment.ClassID); err != nil {
			return translate(err, "refresh student class cache")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create enrollment: %w", err)
	}
	committed = true
	return nil
}

// Cancel marks an enrollment Canceled and clears the student's class cache
// when it pointed at the canceled class.
func (r *EnrollmentRepository) Cancel(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel enrollment: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var enrollment models.Enrollment
	const lookup = `SELECT id, student_id, class_id, enrolled_at, status FROM enrollments WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &enrollment, lookup, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return translate(err, "lookup enrollment")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE enrollments SET status = $2 WHERE id = $1`, id, models.EnrollmentStatusCanceled); err != nil {
		return translate(err, "cancel enrollment")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE students SET class_id = NULL WHERE id = $1 AND class_id = $2`, enrollment.StudentID, enrollment.ClassID); err != nil {
		return translate(err, "clear student class cache")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel enrollment: %w", err)
	}
	committed = true
	return nil
}

const enrollmentDetailQuery = `SELECT e.id, e.student_id, e.class_id, e.enrolled_at, e.status,
       s.student_code, u.full_name AS student_name,
       c.code AS class_code, c.name AS class_name
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id
JOIN classes c ON c.id = e.class_id`

// ListByClass returns enrollments for a class.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailQuery + ` WHERE e.class_id = $1 ORDER BY s.student_code ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, translate(err, "list enrollments by class")
	}
	return enrollments, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailQuery + ` WHERE e.student_id = $1 ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, translate(err, "list enrollments by student")
	}
	return enrollments, nil
}

// IsActivelyEnrolled reports whether the student holds an Active enrollment
// in the class.
func (r *EnrollmentRepository) IsActivelyEnrolled(ctx context.Context, studentID, classID int64) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 AND status = 'Active')`
	var enrolled bool
	if err := r.db.GetContext(ctx, &enrolled, query, studentID, classID); err != nil {
		return false, translate(err, "check enrollment")
	}
	return enrolled, nil
}
