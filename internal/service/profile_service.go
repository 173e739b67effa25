package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type teacherRepository interface {
	FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error)
	FindByUserID(ctx context.Context, userID int64) (*models.TeacherDetail, error)
	List(ctx context.Context) ([]models.TeacherDetail, error)
}

type studentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID int64) (*models.StudentDetail, error)
	UpdateNote(ctx context.Context, id int64, note *string) error
}

// ProfileService resolves teacher and student role profiles. Handlers use it
// to map the authenticated user onto its profile row.
type ProfileService struct {
	teachers teacherRepository
	students studentRepository
	logger   *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(teachers teacherRepository, students studentRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{teachers: teachers, students: students, logger: logger}
}

// TeacherByUser returns the teacher profile behind a user account.
func (s *ProfileService) TeacherByUser(ctx context.Context, userID int64) (*models.TeacherDetail, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	return teacher, nil
}

// StudentByUser returns the student profile behind a user account.
func (s *ProfileService) StudentByUser(ctx context.Context, userID int64) (*models.StudentDetail, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return student, nil
}

// Teacher returns a teacher profile by ID.
func (s *ProfileService) Teacher(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Teachers lists all teacher profiles.
func (s *ProfileService) Teachers(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Student returns a student profile by ID.
func (s *ProfileService) Student(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// UpdateStudentNote stores a free-form note on a student profile.
func (s *ProfileService) UpdateStudentNote(ctx context.Context, id int64, note *string) error {
	if err := s.students.UpdateNote(ctx, id, note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student note")
	}
	return nil
}
