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

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id int64) (*models.ClassDetail, error)
	List(ctx context.Context) ([]models.ClassDetail, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Code              string `json:"code" validate:"required,max=20"`
	Name              string `json:"name" validate:"required,max=100"`
	HomeroomTeacherID *int64 `json:"homeroom_teacher_id"`
}

// UpdateClassRequest is the payload for updating a class.
type UpdateClassRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	HomeroomTeacherID *int64 `json:"homeroom_teacher_id"`
	Active            *bool  `json:"active"`
}

// ClassService manages the class catalog.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// Create adds a class. Duplicate codes surface as ErrConflict, an unknown
// homeroom teacher as ErrForeignKey.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create class payload")
	}

	class := &models.Class{
		Code:              req.Code,
		Name:              req.Name,
		HomeroomTeacherID: req.HomeroomTeacherID,
		Active:            true,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	return s.Get(ctx, class.ID)
}

// Get returns a class with homeroom teacher name.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.ClassDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]models.ClassDetail, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Update modifies class attributes. The code is immutable.
func (s *ClassService) Update(ctx context.Context, id int64, req UpdateClassRequest) (*models.ClassDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update class payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	class := existing.Class
	class.Name = req.Name
	class.HomeroomTeacherID = req.HomeroomTeacherID
	if req.Active != nil {
		class.Active = *req.Active
	}

	if err := s.repo.Update(ctx, &class); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}

	return s.Get(ctx, id)
}

// Delete removes a class and, through cascades, its class-subjects, sessions
// and enrollments.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.logger.Info("class deleted", zap.Int64("class_id", id))
	return nil
}
