package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/api/internal/middleware"
	"attendtrack/api/internal/model"
	"attendtrack/api/internal/service"
)

// AuthHandler exposes signup, login and token validation.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *service.TokenService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

// Signup registers a new account
// @Summary Sign up
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.SignupRequest true "Signup payload"
// @Success 201 {object} model.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates an account
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.auth.Authenticate(c.Request.Context(), c.ClientIP(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			internalError(c, "login", err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Validate checks the bearer token on the request
// @Summary Validate bearer token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.TokenValidationResponse
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	username := middleware.Username(c)
	if username == "" {
		c.JSON(http.StatusOK, model.TokenValidationResponse{Valid: false, Error: "missing or invalid token"})
		return
	}
	c.JSON(http.StatusOK, model.TokenValidationResponse{Valid: true, Username: username})
}

// ValidateToken checks a token carried in the request body, for web
// clients that cannot set the Authorization header
// @Summary Validate a token by value
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Token"
// @Success 200 {object} model.TokenValidationResponse
// @Router /web/validate-token [post]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username, err := h.tokens.Validate(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusOK, model.TokenValidationResponse{Valid: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.TokenValidationResponse{Valid: true, Username: username})
}

// GetMe returns the authenticated identity
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": middleware.Username(c)})
}
