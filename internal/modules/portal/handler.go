package portal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"yojeong/internal/domain"
	"yojeong/internal/middleware"
	"yojeong/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects r to be guarded for the user role.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/dashboard", h.Dashboard)
	r.POST("/book_session", h.BookSession)
	r.POST("/submit_feedback", h.SubmitFeedback)
}

// Dashboard
// @Summary  Records owned by the signed-in user
// @Success  200 {object} DashboardView
// @Failure  303 "Redirect to /login"
// @Router   /dashboard [GET]
func (h *Handler) Dashboard(c *gin.Context) {
	view, err := h.service.Dashboard(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "DASHBOARD_FAILED", "Failed to load dashboard")
		return
	}
	view.Flash = response.TakeFlash(c)
	response.Success(c, http.StatusOK, view)
}

// BookSession
// @Summary  Reserve a photography session
// @Param    session_date formData string true "YYYY-MM-DD, today or later"
// @Param    session_type formData string true "Event type"
// @Param    photographer formData string true "Photographer"
// @Param    session_time formData string true "Time slot"
// @Success  303 "Redirect to /dashboard"
// @Router   /book_session [POST]
func (h *Handler) BookSession(c *gin.Context) {
	var req BookSessionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, ErrBadForm)
		return
	}

	if _, err := h.service.BookSession(c.Request.Context(), middleware.CurrentPrincipal(c), req); err != nil {
		h.fail(c, err)
		return
	}
	response.RedirectWithFlash(c, "/dashboard", "Session booked. We will confirm it shortly.")
}

// SubmitFeedback
// @Summary  Leave a review
// @Param    service formData string false "Service reviewed"
// @Param    rating formData int true "1-5"
// @Param    comment formData string false "Comment"
// @Success  303 "Redirect to /dashboard"
// @Router   /submit_feedback [POST]
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, ErrBadForm)
		return
	}

	if _, err := h.service.SubmitFeedback(c.Request.Context(), middleware.CurrentPrincipal(c), req); err != nil {
		h.fail(c, err)
		return
	}
	response.RedirectWithFlash(c, "/dashboard", "Thank you for your feedback!")
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		response.RedirectWithFlash(c, "/dashboard", verr.Message)
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}
