package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/service"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
	"github.com/nhom11/attendance-api/pkg/response"
)

// AttendanceHandler exposes attendance marking and query endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	profiles   *service.ProfileService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(attendance *service.AttendanceService, profiles *service.ProfileService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, profiles: profiles}
}

// Mark godoc
// @Summary Mark a student's attendance in a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param payload body service.MarkAttendanceRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/records [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sessionID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	teacher, err := h.profiles.TeacherByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.attendance.Mark(c.Request.Context(), sessionID, req, teacher.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// SelfMark godoc
// @Summary Check the authenticated student in as PRESENT
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SelfMarkRequest true "Self mark payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/self [post]
func (h *AttendanceHandler) SelfMark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.profiles.StudentByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.SelfMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.attendance.SelfMark(c.Request.Context(), student.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// SessionRecords godoc
// @Summary List the attendance records of a session
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/records [get]
func (h *AttendanceHandler) SessionRecords(c *gin.Context) {
	sessionID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.attendance.SessionRecords(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// StudentHistory godoc
// @Summary List a student's attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.StudentHistory(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// MyHistory godoc
// @Summary List the authenticated student's attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/history [get]
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.profiles.StudentByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.attendance.StudentHistory(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
