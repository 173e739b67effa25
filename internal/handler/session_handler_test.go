package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhom11/attendance-api/internal/middleware"
	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/internal/service"
	"github.com/nhom11/attendance-api/pkg/clock"
)

type sessionRepoMock struct {
	sessions map[int64]*models.SessionDetail
}

func (m *sessionRepoMock) Create(ctx context.Context, session *models.AttendanceSession) error {
	session.ID = 11
	if m.sessions == nil {
		m.sessions = make(map[int64]*models.SessionDetail)
	}
	m.sessions[session.ID] = &models.SessionDetail{AttendanceSession: *session, ClassID: 1, ClassCode: "10A1", ClassName: "Class 10A1", SubjectName: "Mathematics"}
	return nil
}

func (m *sessionRepoMock) Close(ctx context.Context, id int64, endTime time.Time) error {
	session, ok := m.sessions[id]
	if !ok || session.Status != models.SessionStatusActive {
		return sql.ErrNoRows
	}
	session.Status = models.SessionStatusClosed
	session.EndTime = &endTime
	return nil
}

func (m *sessionRepoMock) FindByID(ctx context.Context, id int64) (*models.SessionDetail, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return session, nil
}

func (m *sessionRepoMock) FindActiveByClassSubject(ctx context.Context, classSubjectID int64) (*models.SessionDetail, error) {
	return nil, sql.ErrNoRows
}

func (m *sessionRepoMock) ListByClassSubject(ctx context.Context, classSubjectID int64) ([]models.SessionDetail, error) {
	return nil, nil
}

func (m *sessionRepoMock) ListActiveForStudent(ctx context.Context, studentID int64) ([]models.SessionDetail, error) {
	var out []models.SessionDetail
	for _, session := range m.sessions {
		if session.Status == models.SessionStatusActive {
			out = append(out, *session)
		}
	}
	return out, nil
}

type teacherRepoMock struct {
	teacher *models.TeacherDetail
}

func (m *teacherRepoMock) FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	if m.teacher == nil {
		return nil, sql.ErrNoRows
	}
	return m.teacher, nil
}

func (m *teacherRepoMock) FindByUserID(ctx context.Context, userID int64) (*models.TeacherDetail, error) {
	if m.teacher == nil || m.teacher.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return m.teacher, nil
}

func (m *teacherRepoMock) List(ctx context.Context) ([]models.TeacherDetail, error) {
	return nil, nil
}

type studentRepoMock struct {
	student *models.StudentDetail
}

func (m *studentRepoMock) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *studentRepoMock) FindByUserID(ctx context.Context, userID int64) (*models.StudentDetail, error) {
	if m.student == nil || m.student.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *studentRepoMock) UpdateNote(ctx context.Context, id int64, note *string) error {
	return nil
}

func newSessionHandler(repo *sessionRepoMock, teacher *models.TeacherDetail, student *models.StudentDetail) *SessionHandler {
	sessions := service.NewSessionService(repo, nil, zap.NewNop(), clock.System())
	profiles := service.NewProfileService(&teacherRepoMock{teacher: teacher}, &studentRepoMock{student: student}, zap.NewNop())
	return NewSessionHandler(sessions, profiles)
}

func TestSessionHandlerOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{}
	teacher := &models.TeacherDetail{Teacher: models.Teacher{ID: 2, UserID: 4, TeacherCode: "GV002"}}
	handler := newSessionHandler(repo, teacher, nil)

	payload, _ := json.Marshal(service.OpenSessionRequest{ClassSubjectID: 5, SessionCode: "ATT-2025-09-01", Date: "2025-09-01"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 4, Role: models.RoleTeacher})

	handler.Open(c)
	require.Equal(t, http.StatusCreated, w.Code)

	// Sessions are created on behalf of the teacher profile, not the user.
	require.Equal(t, int64(2), repo.sessions[11].CreatedBy)
}

func TestSessionHandlerOpenNoTeacherProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSessionHandler(&sessionRepoMock{}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{}`)))
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 4, Role: models.RoleTeacher})

	handler.Open(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandlerCloseTwice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{sessions: map[int64]*models.SessionDetail{
		11: {AttendanceSession: models.AttendanceSession{ID: 11, Status: models.SessionStatusActive}},
	}}
	handler := newSessionHandler(repo, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions/11/close", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "11"}}
	handler.Close(c)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodPost, "/sessions/11/close", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "11"}}
	handler.Close(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandlerActiveForMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{sessions: map[int64]*models.SessionDetail{
		11: {AttendanceSession: models.AttendanceSession{ID: 11, Status: models.SessionStatusActive}},
	}}
	student := &models.StudentDetail{Student: models.Student{ID: 7, UserID: 9, StudentCode: "SV007"}}
	handler := newSessionHandler(repo, nil, student)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sessions/active", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 9, Role: models.RoleStudent})

	handler.ActiveForMe(c)
	require.Equal(t, http.StatusOK, w.Code)
}
