package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/pkg/clock"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Cancel(ctx context.Context, id int64) error
	ListByClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	IsActivelyEnrolled(ctx context.Context, studentID, classID int64) (bool, error)
}

type enrollmentStudentReader interface {
	ListByClass(ctx context.Context, classID int64) ([]models.StudentDetail, error)
}

// EnrollRequest is the payload for enrolling a student into a class.
type EnrollRequest struct {
	StudentID int64 `json:"student_id" validate:"required"`
	ClassID   int64 `json:"class_id" validate:"required"`
}

// EnrollmentService manages class membership. Enrollments are authoritative;
// the students.class_id cache is refreshed by the repository.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentReader
	validator *validator.Validate
	logger    *zap.Logger
	now       clock.Clock
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, validate *validator.Validate, logger *zap.Logger, now clock.Clock) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, students: students, validator: validate, logger: logger, now: now}
}

// Enroll registers a student into a class with Active status.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enroll payload")
	}

	enrolled, err := s.repo.IsActivelyEnrolled(ctx, req.StudentID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this class")
	}

	enrollment := &models.Enrollment{
		StudentID:  req.StudentID,
		ClassID:    req.ClassID,
		EnrolledAt: s.now.Now(),
		Status:     models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			if appErr.Code == appErrors.ErrForeignKey.Code {
				return nil, appErrors.Clone(appErrors.ErrForeignKey, "student or class does not exist")
			}
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}

	s.logger.Info("student enrolled",
		zap.Int64("student_id", enrollment.StudentID),
		zap.Int64("class_id", enrollment.ClassID))
	return enrollment, nil
}

// Cancel marks an enrollment Canceled.
func (s *EnrollmentService) Cancel(ctx context.Context, id int64) error {
	if err := s.repo.Cancel(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}
	return nil
}

// ListForClass returns a class's enrollments.
func (s *EnrollmentService) ListForClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error) {
	items, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return items, nil
}

// ListForStudent returns a student's enrollments, newest first.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	items, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return items, nil
}

// StudentsInClass returns the roster of actively enrolled students with user
// identity.
func (s *EnrollmentService) StudentsInClass(ctx context.Context, classID int64) ([]models.StudentDetail, error) {
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	return students, nil
}
