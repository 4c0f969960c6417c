package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/service"
)

// ReportHandler streams attendance report downloads.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// MonthlyAttendance downloads one month as xlsx
// @Summary Monthly attendance report
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string false "Month, YYYY-MM (default: current)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /reports/attendance [get]
func (h *ReportHandler) MonthlyAttendance(c *gin.Context) {
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	buf, err := h.reports.MonthlyAttendance(c.Request.Context(), month)
	if err != nil {
		internalError(c, "attendance report", err)
		return
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
