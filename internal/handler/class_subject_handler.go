package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/service"
	appErrors "github.com/nhom11/attendance-api/pkg/errors"
	"github.com/nhom11/attendance-api/pkg/response"
)

// ClassSubjectHandler exposes subject assignment endpoints.
type ClassSubjectHandler struct {
	service  *service.ClassSubjectService
	sessions *service.SessionService
}

// NewClassSubjectHandler constructs a class-subject handler.
func NewClassSubjectHandler(svc *service.ClassSubjectService, sessions *service.SessionService) *ClassSubjectHandler {
	return &ClassSubjectHandler{service: svc, sessions: sessions}
}

// Assign godoc
// @Summary Assign a subject and teacher to a class
// @Tags ClassSubjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignSubjectRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /class-subjects [post]
func (h *ClassSubjectHandler) Assign(c *gin.Context) {
	var req service.AssignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cs, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cs)
}

// Get godoc
// @Summary Get a subject assignment
// @Tags ClassSubjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 200 {object} response.Envelope
// @Router /class-subjects/{id} [get]
func (h *ClassSubjectHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	cs, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cs, nil)
}

// ListForClass godoc
// @Summary List subject assignments of a class
// @Tags ClassSubjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/subjects [get]
func (h *ClassSubjectHandler) ListForClass(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListForClass(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Sessions godoc
// @Summary List the session history of a class subject
// @Tags ClassSubjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 200 {object} response.Envelope
// @Router /class-subjects/{id}/sessions [get]
func (h *ClassSubjectHandler) Sessions(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.sessions.ListForClassSubject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// ActiveSession godoc
// @Summary Get the ACTIVE session of a class subject
// @Tags ClassSubjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 200 {object} response.Envelope
// @Router /class-subjects/{id}/sessions/active [get]
func (h *ClassSubjectHandler) ActiveSession(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.sessions.OpenForClassSubject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Remove godoc
// @Summary Remove a subject assignment
// @Tags ClassSubjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 204
// @Router /class-subjects/{id} [delete]
func (h *ClassSubjectHandler) Remove(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
