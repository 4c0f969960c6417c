package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/middleware"
	"attendtrack/api/internal/model"
	"attendtrack/api/internal/service"
)

// LocationHandler exposes GPS sample endpoints.
type LocationHandler struct {
	locations *service.LocationService
}

// NewLocationHandler creates a location handler.
func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Record appends a GPS sample for the caller
// @Summary Record location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RecordLocationRequest true "Sample"
// @Success 201 {object} model.LocationSample
// @Failure 400 {object} map[string]string
// @Router /locations [post]
func (h *LocationHandler) Record(c *gin.Context) {
	var req model.RecordLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := h.locations.Record(c.Request.Context(), middleware.Username(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrBadLocationTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "record location", err)
		return
	}

	c.JSON(http.StatusCreated, sample)
}

// GetAllLatest returns the latest sample per user
// @Summary All latest locations
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /locations/latest [get]
func (h *LocationHandler) GetAllLatest(c *gin.Context) {
	samples, err := h.locations.AllLatest(c.Request.Context())
	if err != nil {
		internalError(c, "all latest locations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": samples})
}

// GetLatest returns one user's latest sample
// @Summary Latest location for a user
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} model.LocationSample
// @Failure 404 {object} map[string]string
// @Router /locations/{username}/latest [get]
func (h *LocationHandler) GetLatest(c *gin.Context) {
	sample, err := h.locations.Latest(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location data"})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// GetHistory returns one user's full sample history, ordered by time
// @Summary Location history for a user
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param limit query int false "Limit" default(1000)
// @Success 200 {object} map[string]interface{}
// @Router /locations/{username}/history [get]
func (h *LocationHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	samples, err := h.locations.History(c.Request.Context(), c.Param("username"), limit)
	if err != nil {
		internalError(c, "location history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": samples})
}
