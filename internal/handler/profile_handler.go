package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/service"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
	"github.com/nhom11/attendance-api/pkg/response"
)

// ProfileHandler exposes teacher and student profile endpoints.
type ProfileHandler struct {
	profiles    *service.ProfileService
	assignments *service.ClassSubjectService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(profiles *service.ProfileService, assignments *service.ClassSubjectService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, assignments: assignments}
}

// ListTeachers godoc
// @Summary List teacher profiles
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *ProfileHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.profiles.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// GetTeacher godoc
// @Summary Get a teacher profile
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *ProfileHandler) GetTeacher(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.profiles.Teacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// MyAssignments godoc
// @Summary List the authenticated teacher's class-subject assignments
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teachers/me/assignments [get]
func (h *ProfileHandler) MyAssignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	teacher, err := h.profiles.TeacherByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.assignments.ClassesForTeacher(c.Request.Context(), teacher.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetStudent godoc
// @Summary Get a student profile
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *ProfileHandler) GetStudent(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.profiles.Student(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateStudentNote godoc
// @Summary Update the note on a student profile
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204
// @Router /students/{id}/note [put]
func (h *ProfileHandler) UpdateStudentNote(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Note *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.profiles.UpdateStudentNote(c.Request.Context(), id, req.Note); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
