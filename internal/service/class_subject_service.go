package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type classSubjectRepository interface {
	Create(ctx context.Context, cs *models.ClassSubject) error
	FindByID(ctx context.Context, id int64) (*models.ClassSubjectDetail, error)
	ListByClass(ctx context.Context, classID int64) ([]models.ClassSubjectDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.ClassSubjectDetail, error)
	Delete(ctx context.Context, id int64) error
}

// AssignSubjectRequest is the payload for assigning a subject to a class.
type AssignSubjectRequest struct {
	ClassID   int64 `json:"class_id" validate:"required"`
	SubjectID int64 `json:"subject_id" validate:"required"`
	TeacherID int64 `json:"teacher_id" validate:"required"`
}

// ClassSubjectService manages subject assignments to classes. A class takes
// a given subject from one teacher only.
type ClassSubjectService struct {
	repo      classSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassSubjectService constructs the service.
func NewClassSubjectService(repo classSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ClassSubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassSubjectService{repo: repo, validator: validate, logger: logger}
}

// Assign links a subject and teacher to a class. A duplicate (class, subject)
// pair reports ErrConflict; unknown references report ErrForeignKey.
func (s *ClassSubjectService) Assign(ctx context.Context, req AssignSubjectRequest) (*models.ClassSubjectDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	cs := &models.ClassSubject{
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
	}
	if err := s.repo.Create(ctx, cs); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject")
	}

	return s.Get(ctx, cs.ID)
}

// Get returns an assignment with its display fields.
func (s *ClassSubjectService) Get(ctx context.Context, id int64) (*models.ClassSubjectDetail, error) {
	cs, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subject")
	}
	return cs, nil
}

// ListForClass returns a class's subject assignments.
func (s *ClassSubjectService) ListForClass(ctx context.Context, classID int64) ([]models.ClassSubjectDetail, error) {
	items, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class subjects")
	}
	return items, nil
}

// ClassesForTeacher returns the teaching roster of a teacher.
func (s *ClassSubjectService) ClassesForTeacher(ctx context.Context, teacherID int64) ([]models.ClassSubjectDetail, error) {
	items, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher assignments")
	}
	return items, nil
}

// Remove deletes an assignment, cascading through its sessions.
func (s *ClassSubjectService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove class subject")
	}
	s.logger.Info("class subject removed", zap.Int64("class_subject_id", id))
	return nil
}
