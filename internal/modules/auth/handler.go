package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"yojeong/internal/domain"
	"yojeong/internal/middleware"
	"yojeong/internal/pkg/response"
)

// Handler serves the public pages and both login surfaces.
type Handler struct {
	service  *Service
	sessions *middleware.Sessions
}

func NewHandler(service *Service, sessions *middleware.Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// RegisterRoutes mounts the unguarded routes. limit wraps the credential posts.
func (h *Handler) RegisterRoutes(r gin.IRouter, limit gin.HandlerFunc) {
	r.GET("/", h.Home)
	r.POST("/signup", limit, h.Signup)
	r.GET("/login", h.LoginPage)
	r.POST("/login", limit, h.Login)
	r.GET("/admin/login", h.AdminLoginPage)
	r.POST("/admin/login", limit, h.AdminLogin)
	r.GET("/logout", h.Logout)
}

// Home
// @Summary  Landing page
// @Success  200 {object} map[string]interface{}
// @Router   / [GET]
func (h *Handler) Home(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page":      "home",
		"principal": middleware.CurrentPrincipal(c),
		"flash":     response.TakeFlash(c),
	})
}

// Signup creates a user account from the signup form.
// @Summary  Sign up
// @Param    name formData string true "Display name"
// @Param    email formData string true "Email"
// @Param    password formData string true "Password"
// @Param    confirm_password formData string false "Password confirmation"
// @Success  303 "Redirect to /login"
// @Router   /signup [POST]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RedirectWithFlash(c, "/login", ErrMissingFields.Message)
		return
	}

	_, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			response.RedirectWithFlash(c, "/login", verr.Message)
		case errors.Is(err, domain.ErrConflict):
			response.RedirectWithFlash(c, "/login", "Account already exists!")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create account")
		}
		return
	}

	response.RedirectWithFlash(c, "/login", "Account created. Please log in.")
}

func (h *Handler) LoginPage(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"page": "login", "flash": response.TakeFlash(c)})
}

func (h *Handler) AdminLoginPage(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"page": "admin_login", "flash": response.TakeFlash(c)})
}

// Login
// @Summary  User login
// @Success  303 "Redirect to /dashboard"
// @Failure  401 {object} map[string]interface{} "Invalid User Credentials"
// @Router   /login [POST]
func (h *Handler) Login(c *gin.Context) {
	h.login(c, domain.RoleUser, "/dashboard", "Invalid User Credentials")
}

// AdminLogin
// @Summary  Admin login
// @Success  303 "Redirect to /admin"
// @Failure  401 {object} map[string]interface{} "Invalid Admin Credentials"
// @Router   /admin/login [POST]
func (h *Handler) AdminLogin(c *gin.Context) {
	h.login(c, domain.RoleAdmin, "/admin", "Invalid Admin Credentials")
}

func (h *Handler) login(c *gin.Context, role domain.UserRole, next, failure string) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), req, role)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", failure)
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to log in")
		return
	}

	if err := h.sessions.Start(c, domain.PrincipalOf(user)); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to start session")
		return
	}
	response.Redirect(c, next)
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	response.Redirect(c, "/")
}
