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

type mockSessionRepo struct {
	sessions  map[int64]*models.SessionDetail
	createErr error
	closeErr  error
	created   *models.AttendanceSession
	closedAt  *time.Time
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.AttendanceSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	session.ID = 11
	m.created = session
	if m.sessions == nil {
		m.sessions = make(map[int64]*models.SessionDetail)
	}
	m.sessions[session.ID] = &models.SessionDetail{AttendanceSession: *session, ClassID: 1, ClassCode: "10A1", ClassName: "Class 10A1", SubjectName: "Mathematics"}
	return nil
}

func (m *mockSessionRepo) Close(ctx context.Context, id int64, endTime time.Time) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	session, ok := m.sessions[id]
	if !ok || session.Status != models.SessionStatusActive {
		return sql.ErrNoRows
	}
	session.Status = models.SessionStatusClosed
	session.EndTime = &endTime
	m.closedAt = &endTime
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id int64) (*models.SessionDetail, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return session, nil
}

func (m *mockSessionRepo) FindActiveByClassSubject(ctx context.Context, classSubjectID int64) (*models.SessionDetail, error) {
	for _, session := range m.sessions {
		if session.ClassSubjectID == classSubjectID && session.Status == models.SessionStatusActive {
			return session, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) ListByClassSubject(ctx context.Context, classSubjectID int64) ([]models.SessionDetail, error) {
	var out []models.SessionDetail
	for _, session := range m.sessions {
		if session.ClassSubjectID == classSubjectID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) ListActiveForStudent(ctx context.Context, studentID int64) ([]models.SessionDetail, error) {
	var out []models.SessionDetail
	for _, session := range m.sessions {
		if session.Status == models.SessionStatusActive {
			out = append(out, *session)
		}
	}
	return out, nil
}

func newSessionService(repo *mockSessionRepo, now clock.Clock) *SessionService {
	return NewSessionService(repo, validator.New(), zap.NewNop(), now)
}

func TestSessionOpen(t *testing.T) {
	frozen := time.Date(2025, 9, 1, 7, 30, 0, 0, clock.Location)
	repo := &mockSessionRepo{}
	svc := newSessionService(repo, clock.Fixed(frozen))

	session, err := svc.Open(context.Background(), OpenSessionRequest{ClassSubjectID: 5, SessionCode: "ATT-2025-09-01", Date: "2025-09-01"}, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, int64(2), repo.created.CreatedBy)
	assert.Equal(t, frozen, repo.created.StartTime)
	assert.Equal(t, 2025, repo.created.Date.Year())
	assert.Equal(t, time.September, repo.created.Date.Month())
}

func TestSessionOpenBadDate(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, clock.System())

	_, err := svc.Open(context.Background(), OpenSessionRequest{ClassSubjectID: 5, SessionCode: "ATT", Date: "01/09/2025"}, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionOpenSecondActive(t *testing.T) {
	repo := &mockSessionRepo{createErr: appErrors.Clone(appErrors.ErrConflict, "duplicate")}
	svc := newSessionService(repo, clock.System())

	_, err := svc.Open(context.Background(), OpenSessionRequest{ClassSubjectID: 5, SessionCode: "ATT-2", Date: "2025-09-01"}, 2)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "active session already exists")
}

func TestSessionClose(t *testing.T) {
	frozen := time.Date(2025, 9, 1, 9, 15, 0, 0, clock.Location)
	repo := &mockSessionRepo{}
	svc := newSessionService(repo, clock.Fixed(frozen))

	opened, err := svc.Open(context.Background(), OpenSessionRequest{ClassSubjectID: 5, SessionCode: "ATT-2025-09-01", Date: "2025-09-01"}, 2)
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), opened.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, frozen, *closed.EndTime)
}

func TestSessionCloseAlreadyClosed(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[int64]*models.SessionDetail{
		11: {AttendanceSession: models.AttendanceSession{ID: 11, Status: models.SessionStatusClosed}},
	}}
	svc := newSessionService(repo, clock.System())

	_, err := svc.Close(context.Background(), 11)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionClosed.Code, appErrors.FromError(err).Code)
}

func TestSessionCloseMissing(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, clock.System())

	_, err := svc.Close(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOpenForClassSubjectNone(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, clock.System())

	_, err := svc.OpenForClassSubject(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
