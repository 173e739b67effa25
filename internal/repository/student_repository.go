package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// StudentRepository manages persistence for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student profile by its identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_code, s.gender, s.class_id, s.note, u.full_name, u.email
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1 LIMIT 1`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find student by id")
	}
	return &student, nil
}

// FindByUserID resolves the student profile attached to a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID int64) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_code, s.gender, s.class_id, s.note, u.full_name, u.email
FROM students s
JOIN users u ON u.id = s.user_id
WHERE s.user_id = $1 LIMIT 1`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find student by user id")
	}
	return &student, nil
}

// ListByClass returns the class roster through active enrollments.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_code, s.gender, s.class_id, s.note, u.full_name, u.email
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id
WHERE e.class_id = $1 AND e.status = 'Active'
ORDER BY s.student_code ASC`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, translate(err, "list students in class")
	}
	return students, nil
}

// UpdateNote stores the optional free-form note on a student profile.
func (r *StudentRepository) UpdateNote(ctx context.Context, id int64, note *string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE students SET note = $2 WHERE id = $1`, id, note); err != nil {
		return translate(err, "update student note")
	}
	return nil
}
