package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject and fills in the generated id.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (code, name) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, subject.Code, subject.Name).Scan(&subject.ID); err != nil {
		return translate(err, "create subject")
	}
	return nil
}

// FindByID returns a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, `SELECT id, code, name FROM subjects WHERE id = $1 LIMIT 1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find subject by id")
	}
	return &subject, nil
}

// List returns all subjects ordered by code.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, `SELECT id, code, name FROM subjects ORDER BY code ASC`); err != nil {
		return nil, translate(err, "list subjects")
	}
	return subjects, nil
}

// Delete removes a subject; class assignments cascade.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
