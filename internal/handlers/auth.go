package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hoc-admin-api/internal/dto"
	"github.com/yukikurage/hoc-admin-api/internal/observability"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	base
	authService *services.AuthService
	metrics     *observability.Prom
}

// NewAuthHandler creates a new AuthHandler. metrics may be nil.
func NewAuthHandler(authService *services.AuthService, metrics *observability.Prom, exposeInternal bool) *AuthHandler {
	return &AuthHandler{
		base:        base{exposeInternal: exposeInternal},
		authService: authService,
		metrics:     metrics,
	}
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	h.metrics.ObserveLogin(err == nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserDTO(*result.User),
	})
}

// Register creates an account. The route is restricted to ADMIN.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required,oneof=ADMIN AMMINISTRATORE RESPONSABILE OPERATORE"`
	}

	var req RegisterRequest
	if !BindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), caller.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
