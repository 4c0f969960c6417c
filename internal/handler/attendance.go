package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/middleware"
	"attendtrack/api/internal/service"
)

// AttendanceHandler exposes punch and history endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler creates an attendance handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Punch records a morning or evening attendance leg
// @Summary Punch attendance
// @Description Multipart form: image (file), optional timestamp, type, reason, field_images (files)
// @Tags Attendance
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Attendance
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /attendance/punch [post]
func (h *AttendanceHandler) Punch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	in := service.PunchInput{
		Username:  middleware.Username(c),
		Timestamp: c.PostForm("timestamp"),
		Type:      c.PostForm("type"),
		Reason:    c.PostForm("reason"),
	}

	if files := form.File["image"]; len(files) > 0 {
		data, err := readFormFile(files[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
			return
		}
		in.Image = data
	}
	for _, fh := range form.File["field_images"] {
		data, err := readFormFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable field image"})
			return
		}
		in.FieldImages = append(in.FieldImages, data)
	}

	record, err := h.attendance.RecordPunch(c.Request.Context(), &in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyMarked),
			errors.Is(err, service.ErrFieldImagesPending):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrImageRequired),
			errors.Is(err, service.ErrBadPunchTime),
			errors.Is(err, service.ErrEmptyImage),
			errors.Is(err, service.ErrNotAnImage),
			errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, "record punch", err)
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// Today returns the caller's record for the current date
// @Summary Today's attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Attendance
// @Failure 404 {object} map[string]string
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	record, err := h.attendance.Today(c.Request.Context(), middleware.Username(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attendance for today"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// History returns the caller's records for one month
// @Summary Attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month, YYYY-MM (default: current)"
// @Success 200 {object} map[string]interface{}
// @Router /attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	records, err := h.attendance.History(c.Request.Context(), middleware.Username(c), month)
	if err != nil {
		internalError(c, "attendance history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
