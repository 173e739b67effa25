package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/internal/service"
	"github.com/nhom11/attendance-api/pkg/response"
)

// ReportHandler exposes the school attendance report.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

func reportRange(c *gin.Context) models.ReportRange {
	var rng models.ReportRange
	if from := c.Query("from"); from != "" {
		rng.From = &from
	}
	if to := c.Query("to"); to != "" {
		rng.To = &to
	}
	return rng
}

// School godoc
// @Summary Per-class attendance aggregate
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/school [get]
func (h *ReportHandler) School(c *gin.Context) {
	rows, err := h.service.SchoolReport(c.Request.Context(), reportRange(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportCSV godoc
// @Summary Download the attendance report as CSV
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /reports/school/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	payload, err := h.service.ExportCSV(c.Request.Context(), reportRange(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance_report.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Download the attendance report as PDF
// @Tags Reports
// @Produce application/pdf
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /reports/school/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	payload, err := h.service.ExportPDF(c.Request.Context(), reportRange(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="attendance_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
