package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/pkg/clock"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.AttendanceSession) error
	Close(ctx context.Context, id int64, endTime time.Time) error
	FindByID(ctx context.Context, id int64) (*models.SessionDetail, error)
	FindActiveByClassSubject(ctx context.Context, classSubjectID int64) (*models.SessionDetail, error)
	ListByClassSubject(ctx context.Context, classSubjectID int64) ([]models.SessionDetail, error)
	ListActiveForStudent(ctx context.Context, studentID int64) ([]models.SessionDetail, error)
}

// OpenSessionRequest is the payload for opening an attendance session.
type OpenSessionRequest struct {
	ClassSubjectID int64  `json:"class_subject_id" validate:"required"`
	SessionCode    string `json:"session_code" validate:"required,max=50"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SessionService manages the attendance session lifecycle. A class-subject
// holds at most one ACTIVE session; the database partial unique index is the
// final arbiter under concurrent opens.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       clock.Clock
	metrics   *MetricsService
	onClosed  func(context.Context)
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger, now clock.Clock) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger, now: now}
}

// WithMetrics attaches session lifecycle counters.
func (s *SessionService) WithMetrics(m *MetricsService) *SessionService {
	s.metrics = m
	return s
}

// OnClosed registers a hook invoked after every successful close. Report
// caches hang off closed sessions, so the wiring uses this for invalidation.
func (s *SessionService) OnClosed(fn func(context.Context)) {
	s.onClosed = fn
}

// Open creates an ACTIVE session for a class-subject. An existing ACTIVE
// session or a duplicate session code surfaces as ErrConflict.
func (s *SessionService) Open(ctx context.Context, req OpenSessionRequest, creatorID int64) (*models.SessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid open session payload")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, clock.Location)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	session := &models.AttendanceSession{
		ClassSubjectID: req.ClassSubjectID,
		SessionCode:    req.SessionCode,
		Date:           date,
		StartTime:      s.now.Now(),
		Status:         models.SessionStatusActive,
		CreatedBy:      creatorID,
		CreatedAt:      s.now.Now(),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			if appErr.Code == appErrors.ErrConflict.Code {
				return nil, appErrors.Clone(appErrors.ErrConflict, "an active session already exists for this class subject")
			}
			if appErr.Code == appErrors.ErrForeignKey.Code {
				return nil, appErrors.Clone(appErrors.ErrForeignKey, "class subject does not exist")
			}
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open session")
	}

	s.metrics.SessionOpened()
	s.logger.Info("session opened",
		zap.Int64("session_id", session.ID),
		zap.Int64("class_subject_id", session.ClassSubjectID))

	return s.Get(ctx, session.ID)
}

// Close transitions a session from ACTIVE to CLOSED and stamps its end time.
// A session that is already CLOSED reports ErrSessionClosed; a missing one
// reports ErrNotFound.
func (s *SessionService) Close(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	if err := s.repo.Close(ctx, sessionID, s.now.Now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			session, lookupErr := s.repo.FindByID(ctx, sessionID)
			if lookupErr != nil {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
			}
			if session.Status == models.SessionStatusClosed {
				return nil, appErrors.Clone(appErrors.ErrSessionClosed, "session is already closed")
			}
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close session")
	}

	s.metrics.SessionClosed()
	s.logger.Info("session closed", zap.Int64("session_id", sessionID))
	if s.onClosed != nil {
		s.onClosed(ctx)
	}
	return s.Get(ctx, sessionID)
}

// Get returns a session with class and subject context.
func (s *SessionService) Get(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// OpenForClassSubject returns the single ACTIVE session of a class-subject.
func (s *SessionService) OpenForClassSubject(ctx context.Context, classSubjectID int64) (*models.SessionDetail, error) {
	session, err := s.repo.FindActiveByClassSubject(ctx, classSubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active session for this class subject")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active session")
	}
	return session, nil
}

// OpenForStudent lists ACTIVE sessions visible to an actively enrolled
// student.
func (s *SessionService) OpenForStudent(ctx context.Context, studentID int64) ([]models.SessionDetail, error) {
	sessions, err := s.repo.ListActiveForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions for student")
	}
	return sessions, nil
}

// ListForClassSubject returns the session history of a class-subject.
func (s *SessionService) ListForClassSubject(ctx context.Context, classSubjectID int64) ([]models.SessionDetail, error) {
	sessions, err := s.repo.ListByClassSubject(ctx, classSubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}
