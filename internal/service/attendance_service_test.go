package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/pkg/clock"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
)

type mockAttendanceRepo struct {
	upserted  []*models.AttendanceRecord
	upsertErr error
	records   []models.SessionRecordRow
	history   []models.StudentHistoryRow
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	record.ID = int64(len(m.upserted) + 1)
	m.upserted = append(m.upserted, record)
	return nil
}

func (m *mockAttendanceRepo) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecordRow, error) {
	return m.records, nil
}

func (m *mockAttendanceRepo) StudentHistory(ctx context.Context, studentID int64) ([]models.StudentHistoryRow, error) {
	return m.history, nil
}

type mockSessionReader struct {
	session *models.SessionDetail
}

func (m *mockSessionReader) FindByID(ctx context.Context, id int64) (*models.SessionDetail, error) {
	if m.session == nil || m.session.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.session, nil
}

type mockEnrollmentChecker struct {
	enrolled bool
}

func (m *mockEnrollmentChecker) IsActivelyEnrolled(ctx context.Context, studentID, classID int64) (bool, error) {
	return m.enrolled, nil
}

func activeSession() *models.SessionDetail {
	return &models.SessionDetail{
		AttendanceSession: models.AttendanceSession{ID: 11, ClassSubjectID: 5, Status: models.SessionStatusActive},
		ClassID:           1,
	}
}

func newAttendanceService(records *mockAttendanceRepo, sessions *mockSessionReader, enrollments *mockEnrollmentChecker, now clock.Clock) *AttendanceService {
	return NewAttendanceService(records, sessions, enrollments, validator.New(), zap.NewNop(), now)
}

func TestMarkAttendance(t *testing.T) {
	frozen := time.Date(2025, 9, 1, 7, 45, 0, 0, clock.Location)
	records := &mockAttendanceRepo{}
	svc := newAttendanceService(records, &mockSessionReader{session: activeSession()}, &mockEnrollmentChecker{}, clock.Fixed(frozen))

	record, err := svc.Mark(context.Background(), 11, MarkAttendanceRequest{StudentID: 7, Status: models.AttendanceStatusAbsent}, 2)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusAbsent, record.Status)
	assert.Equal(t, frozen, record.MarkedAt)
	require.NotNil(t, record.UpdatedBy)
	assert.Equal(t, int64(2), *record.UpdatedBy)
	assert.Len(t, records.upserted, 1)
}

func TestMarkAttendanceUnknownStatus(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{session: activeSession()}, &mockEnrollmentChecker{}, clock.System())

	_, err := svc.Mark(context.Background(), 11, MarkAttendanceRequest{StudentID: 7, Status: "MAYBE"}, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMarkAttendanceClosedSession(t *testing.T) {
	session := activeSession()
	session.Status = models.SessionStatusClosed
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{session: session}, &mockEnrollmentChecker{}, clock.System())

	_, err := svc.Mark(context.Background(), 11, MarkAttendanceRequest{StudentID: 7, Status: models.AttendanceStatusPresent}, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionClosed.Code, appErrors.FromError(err).Code)
}

func TestMarkAttendanceMissingSession(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{}, &mockEnrollmentChecker{}, clock.System())

	_, err := svc.Mark(context.Background(), 404, MarkAttendanceRequest{StudentID: 7, Status: models.AttendanceStatusPresent}, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSelfMark(t *testing.T) {
	records := &mockAttendanceRepo{}
	svc := newAttendanceService(records, &mockSessionReader{session: activeSession()}, &mockEnrollmentChecker{enrolled: true}, clock.System())

	record, err := svc.SelfMark(context.Background(), 7, SelfMarkRequest{SessionID: 11})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	assert.Nil(t, record.UpdatedBy)
	assert.Equal(t, int64(7), record.StudentID)
}

func TestSelfMarkNotEnrolled(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{session: activeSession()}, &mockEnrollmentChecker{enrolled: false}, clock.System())

	_, err := svc.SelfMark(context.Background(), 7, SelfMarkRequest{SessionID: 11})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSelfMarkClosedSession(t *testing.T) {
	session := activeSession()
	session.Status = models.SessionStatusClosed
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{session: session}, &mockEnrollmentChecker{enrolled: true}, clock.System())

	_, err := svc.SelfMark(context.Background(), 7, SelfMarkRequest{SessionID: 11})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionClosed.Code, appErrors.FromError(err).Code)
}

func TestSessionRecordsMissingSession(t *testing.T) {
	svc := newAttendanceService(&mockAttendanceRepo{}, &mockSessionReader{}, &mockEnrollmentChecker{}, clock.System())

	_, err := svc.SessionRecords(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMarkAttendanceBadReference(t *testing.T) {
	records := &mockAttendanceRepo{upsertErr: appErrors.Clone(appErrors.ErrForeignKey, "missing")}
	svc := newAttendanceService(records, &mockSessionReader{session: activeSession()}, &mockEnrollmentChecker{}, clock.System())

	_, err := svc.Mark(context.Background(), 11, MarkAttendanceRequest{StudentID: 999, Status: models.AttendanceStatusPresent}, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForeignKey.Code, appErrors.FromError(err).Code)
}
