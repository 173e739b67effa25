package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/nhom11/attendance-api/internal/models"
)

// ClassSubjectRepository manages class-subject-teacher assignments.
type ClassSubjectRepository struct {
	db *sqlx.DB
}

// NewClassSubjectRepository creates a new repository.
func NewClassSubjectRepository(db *sqlx.DB) *ClassSubjectRepository {
	return &ClassSubjectRepository{db: db}
}

const classSubjectColumns = `cs.id, cs.class_id, cs.subject_id, cs.teacher_id,
       c.code AS class_code, c.name AS class_name,
       sub.code AS subject_code, sub.name AS subject_name,
       u.full_name AS teacher_name`

const classSubjectJoins = `FROM class_subjects cs
JOIN classes c ON c.id = cs.class_id
JOIN subjects sub ON sub.id = cs.subject_id
JOIN teachers t ON t.id = cs.teacher_id
LEFT JOIN users u ON u.id = t.user_id`

// Create assigns a subject to a class under one teacher. The (class, subject)
// pair is unique.
func (r *ClassSubjectRepository) Create(ctx context.Context, cs *models.ClassSubject) error {
	const query = `INSERT INTO class_subjects (class_id, subject_id, teacher_id)
VALUES ($1, $2, $3)
RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, cs.ClassID, cs.SubjectID, cs.TeacherID).Scan(&cs.ID); err != nil {
		return translate(err, "create class subject")
	}
	return nil
}

// FindByID returns an assignment with display fields.
func (r *ClassSubjectRepository) FindByID(ctx context.Context, id int64) (*models.ClassSubjectDetail, error) {
	query := `SELECT ` + classSubjectColumns + ` ` + classSubjectJoins + ` WHERE cs.id = $1 LIMIT 1`
	var detail models.ClassSubjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, translate(err, "find class subject by id")
	}
	return &detail, nil
}

// ListByClass returns subject assignments for a class.
func (r *ClassSubjectRepository) ListByClass(ctx context.Context, classID int64) ([]models.ClassSubjectDetail, error) {
	query := `SELECT ` + classSubjectColumns + ` ` + classSubjectJoins + ` WHERE cs.class_id = $1 ORDER BY sub.name ASC`
	var assignments []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, translate(err, "list class subjects by class")
	}
	return assignments, nil
}

// ListByTeacher returns the teaching roster for a teacher.
func (r *ClassSubjectRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.ClassSubjectDetail, error) {
	query := `SELECT ` + classSubjectColumns + ` ` + classSubjectJoins + ` WHERE cs.teacher_id = $1 ORDER BY c.code ASC, sub.name ASC`
	var assignments []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, translate(err, "list class subjects by teacher")
	}
	return assignments, nil
}

// Delete removes an assignment; its attendance sessions cascade.
func (r *ClassSubjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_subjects WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete class subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
