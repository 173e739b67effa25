package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts a class and fills in the generated id.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (code, name, homeroom_teacher_id, active)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		class.Code, class.Name, class.HomeroomTeacherID, class.Active,
	).Scan(&class.ID); err != nil {
		return translate(err, "create class")
	}
	return nil
}

// FindByID returns a class with homeroom teacher info.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	const query = `SELECT c.id, c.code, c.name, c.homeroom_teacher_id, c.active, u.full_name AS homeroom_teacher_name
FROM classes c
LEFT JOIN teachers t ON t.id = c.homeroom_teacher_id
LEFT JOIN users u ON u.id = t.user_id
WHERE c.id = $1 LIMIT 1`
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find class by id")
	}
	return &class, nil
}

// List returns all classes joined with their homeroom teacher names.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassDetail, error) {
	const query = `SELECT c.id, c.code, c.name, c.homeroom_teacher_id, c.active, u.full_name AS homeroom_teacher_name
FROM classes c
LEFT JOIN teachers t ON t.id = c.homeroom_teacher_id
LEFT JOIN users u ON u.id = t.user_id
ORDER BY c.code ASC`
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, translate(err, "list classes")
	}
	return classes, nil
}

// Update changes the mutable class attributes.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes SET name = :name, homeroom_teacher_id = :homeroom_teacher_id, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return translate(err, "update class")
	}
	return nil
}

// Delete removes a class; subject assignments and their sessions cascade.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
