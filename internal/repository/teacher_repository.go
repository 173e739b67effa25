package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// TeacherRepository manages persistence for teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID returns a teacher profile by its identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.teacher_code, u.full_name, u.email
FROM teachers t
JOIN users u ON u.id = t.user_id
WHERE t.id = $1 LIMIT 1`
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find teacher by id")
	}
	return &teacher, nil
}

// FindByUserID resolves the teacher profile attached to a user account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID int64) (*models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.teacher_code, u.full_name, u.email
FROM teachers t
JOIN users u ON u.id = t.user_id
WHERE t.user_id = $1 LIMIT 1`
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find teacher by user id")
	}
	return &teacher, nil
}

// List returns all teacher profiles with identity fields.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.teacher_code, u.full_name, u.email
FROM teachers t
JOIN users u ON u.id = t.user_id
ORDER BY t.teacher_code ASC`
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, translate(err, "list teachers")
	}
	return teachers, nil
}
