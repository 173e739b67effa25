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

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecordRow, error)
	StudentHistory(ctx context.Context, studentID int64) ([]models.StudentHistoryRow, error)
}

type attendanceSessionReader interface {
	FindByID(ctx context.Context, id int64) (*models.SessionDetail, error)
}

type attendanceEnrollmentChecker interface {
	IsActivelyEnrolled(ctx context.Context, studentID, classID int64) (bool, error)
}

// MarkAttendanceRequest is the payload for a teacher marking a student.
type MarkAttendanceRequest struct {
	StudentID int64                   `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Note      *string                 `json:"note" validate:"omitempty,max=255"`
}

// SelfMarkRequest is the payload for a student checking in.
type SelfMarkRequest struct {
	SessionID int64   `json:"session_id" validate:"required"`
	Note      *string `json:"note" validate:"omitempty,max=255"`
}

// AttendanceService records attendance against sessions. Marks only land on
// ACTIVE sessions; re-marking the same student replaces status and note while
// the first marked_at timestamp survives.
type AttendanceService struct {
	records     attendanceRepository
	sessions    attendanceSessionReader
	enrollments attendanceEnrollmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
	now         clock.Clock
	metrics     *MetricsService
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(records attendanceRepository, sessions attendanceSessionReader, enrollments attendanceEnrollmentChecker, validate *validator.Validate, logger *zap.Logger, now clock.Clock) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		records:     records,
		sessions:    sessions,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
		now:         now,
	}
}

// WithMetrics attaches per-status mark counters.
func (s *AttendanceService) WithMetrics(m *MetricsService) *AttendanceService {
	s.metrics = m
	return s
}

// Mark upserts a student's attendance in a session on behalf of a teacher.
func (s *AttendanceService) Mark(ctx context.Context, sessionID int64, req MarkAttendanceRequest, teacherID int64) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}

	if _, err := s.requireActiveSession(ctx, sessionID); err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		SessionID: sessionID,
		StudentID: req.StudentID,
		Status:    req.Status,
		Note:      req.Note,
		MarkedAt:  s.now.Now(),
		UpdatedBy: &teacherID,
	}
	if err := s.upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SelfMark lets an actively enrolled student check themselves in as PRESENT.
// updated_by stays NULL so teacher corrections remain distinguishable.
func (s *AttendanceService) SelfMark(ctx context.Context, studentID int64, req SelfMarkRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid self mark payload")
	}

	session, err := s.requireActiveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsActivelyEnrolled(ctx, studentID, session.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this class")
	}

	record := &models.AttendanceRecord{
		SessionID: req.SessionID,
		StudentID: studentID,
		Status:    models.AttendanceStatusPresent,
		Note:      req.Note,
		MarkedAt:  s.now.Now(),
	}
	if err := s.upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SessionRecords returns the marks of a session with student identity.
func (s *AttendanceService) SessionRecords(ctx context.Context, sessionID int64) ([]models.SessionRecordRow, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	records, err := s.records.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session records")
	}
	return records, nil
}

// StudentHistory returns a student's attendance rows, newest session first.
func (s *AttendanceService) StudentHistory(ctx context.Context, studentID int64) ([]models.StudentHistoryRow, error) {
	rows, err := s.records.StudentHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return rows, nil
}

func (s *AttendanceService) requireActiveSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Status != models.SessionStatusActive {
		return nil, appErrors.Clone(appErrors.ErrSessionClosed, "attendance session is not active")
	}
	return session, nil
}

func (s *AttendanceService) upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if err := s.records.Upsert(ctx, record); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			if appErr.Code == appErrors.ErrForeignKey.Code {
				return appErrors.Clone(appErrors.ErrForeignKey, "session or student does not exist")
			}
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.MarkRecorded(string(record.Status))
	return nil
}
