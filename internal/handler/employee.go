package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/model"
	"attendtrack/api/internal/service"
)

// EmployeeHandler exposes onboarding and lookup endpoints.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler creates an employee handler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Create onboards an employee
// @Summary Create employee
// @Description Multipart form with the employee fields plus face and signature file parts
// @Tags Employees
// @Accept mpfd
// @Produce json
// @Success 201 {object} model.Employee
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /data/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req model.CreateEmployeeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	face, err := formFileBytes(c, "face")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "face image is required"})
		return
	}
	signature, err := formFileBytes(c, "signature")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature image is required"})
		return
	}

	employee, err := h.employees.Create(c.Request.Context(), &req, face, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdentityCardExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUnknownLocation),
			errors.Is(err, service.ErrNoUserForEmployee),
			errors.Is(err, service.ErrEmptyImage),
			errors.Is(err, service.ErrNotAnImage),
			errors.Is(err, service.ErrImageTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, "create employee", err)
		}
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// Get returns one employee
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} model.Employee
// @Failure 404 {object} map[string]string
// @Router /data/employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	employee, err := h.employees.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "get employee", err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// List returns employees, newest first
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Router /data/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	employees, total, err := h.employees.List(c.Request.Context(), limit, offset)
	if err != nil {
		internalError(c, "list employees", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": employees, "total": total})
}

// CheckIdentityCard reports whether an identity card number is taken
// @Summary Check identity card uniqueness
// @Tags Employees
// @Produce json
// @Param identity_card_no query string true "Identity card number"
// @Success 200 {object} map[string]bool
// @Router /data/employees/check [get]
func (h *EmployeeHandler) CheckIdentityCard(c *gin.Context) {
	identityCardNo := c.Query("identity_card_no")
	if identityCardNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity_card_no is required"})
		return
	}

	taken, err := h.employees.CheckIdentityCard(c.Request.Context(), identityCardNo)
	if err != nil {
		internalError(c, "check identity card", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": taken})
}

func formFileBytes(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readFormFile(fh)
}
