package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/service"
)

// ReferenceHandler serves the static lookup tables.
type ReferenceHandler struct {
	refs *service.ReferenceService
}

// NewReferenceHandler creates a reference handler.
func NewReferenceHandler(refs *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

// Districts lists all districts
// @Summary List districts
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /data/districts [get]
func (h *ReferenceHandler) Districts(c *gin.Context) {
	districts, err := h.refs.Districts(c.Request.Context())
	if err != nil {
		internalError(c, "list districts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": districts})
}

// Tehsils lists tehsils of one district
// @Summary List tehsils
// @Tags Reference
// @Produce json
// @Param district query string true "District name"
// @Success 200 {object} map[string]interface{}
// @Router /data/tehsils [get]
func (h *ReferenceHandler) Tehsils(c *gin.Context) {
	district := c.Query("district")
	if district == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "district is required"})
		return
	}

	tehsils, err := h.refs.Tehsils(c.Request.Context(), district)
	if err != nil {
		internalError(c, "list tehsils", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tehsils})
}

// OfficeNames lists known offices
// @Summary List office names
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /data/offices [get]
func (h *ReferenceHandler) OfficeNames(c *gin.Context) {
	offices, err := h.refs.OfficeNames(c.Request.Context())
	if err != nil {
		internalError(c, "list offices", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offices})
}

// WorkTypes lists the declared attendance types
// @Summary List work types
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /data/work-types [get]
func (h *ReferenceHandler) WorkTypes(c *gin.Context) {
	types, err := h.refs.WorkTypes(c.Request.Context())
	if err != nil {
		internalError(c, "list work types", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types})
}

// Holidays lists non-working dates
// @Summary List holidays
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /data/holidays [get]
func (h *ReferenceHandler) Holidays(c *gin.Context) {
	holidays, err := h.refs.Holidays(c.Request.Context())
	if err != nil {
		internalError(c, "list holidays", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": holidays})
}

// OfficeTime returns the official day boundaries
// @Summary Office time
// @Tags Reference
// @Produce json
// @Success 200 {object} model.OfficeTime
// @Router /data/office-time [get]
func (h *ReferenceHandler) OfficeTime(c *gin.Context) {
	ot, err := h.refs.OfficeTime(c.Request.Context())
	if err != nil {
		internalError(c, "office time", err)
		return
	}
	c.JSON(http.StatusOK, ot)
}
