package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/middleware"
	"attendtrack/api/internal/model"
	"attendtrack/api/internal/service"
)

// LeaveHandler exposes leave and extra-work endpoints.
type LeaveHandler struct {
	leaves *service.LeaveService
}

// NewLeaveHandler creates a leave handler.
func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// CreateLeave records a leave request
// @Summary Request leave
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateLeaveRequest true "Leave request"
// @Success 201 {object} model.Leave
// @Failure 400 {object} map[string]string
// @Router /leaves [post]
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	var req model.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leave, err := h.leaves.CreateLeave(c.Request.Context(), middleware.Username(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrBadDateRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "create leave", err)
		return
	}
	c.JSON(http.StatusCreated, leave)
}

// ListLeaves returns the caller's leave requests
// @Summary List own leaves
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /leaves [get]
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	leaves, err := h.leaves.ListLeaves(c.Request.Context(), middleware.Username(c))
	if err != nil {
		internalError(c, "list leaves", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leaves})
}

// ListAllLeaves returns every user's leave requests
// @Summary List all leaves
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /leaves/all [get]
func (h *LeaveHandler) ListAllLeaves(c *gin.Context) {
	leaves, err := h.leaves.ListAllLeaves(c.Request.Context())
	if err != nil {
		internalError(c, "list all leaves", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leaves})
}

// CreateExtraWork logs extra work
// @Summary Log extra work
// @Description Multipart form: date, hours, description, optional image file
// @Tags Leave
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} model.ExtraWork
// @Failure 400 {object} map[string]string
// @Router /extra-work [post]
func (h *LeaveHandler) CreateExtraWork(c *gin.Context) {
	var req model.CreateExtraWorkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var image []byte
	if fh, err := c.FormFile("image"); err == nil {
		data, err := readFormFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
			return
		}
		image = data
	}

	entry, err := h.leaves.CreateExtraWork(c.Request.Context(), middleware.Username(c), &req, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDateRange),
			errors.Is(err, service.ErrNotAnImage),
			errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, "create extra work", err)
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListExtraWork returns the caller's extra-work entries
// @Summary List own extra work
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /extra-work [get]
func (h *LeaveHandler) ListExtraWork(c *gin.Context) {
	entries, err := h.leaves.ListExtraWork(c.Request.Context(), middleware.Username(c))
	if err != nil {
		internalError(c, "list extra work", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
