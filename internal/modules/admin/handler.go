package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"yojeong/internal/domain"
	"yojeong/internal/middleware"
	"yojeong/internal/pkg/response"
)

const panelPath = "/admin"

type Handler struct {
	service  *Service
	events   EventStream
	upgrader websocket.Upgrader
}

func NewHandler(service *Service, events EventStream, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		events:  events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes mounts the panel on a page-guarded group and the mutations
// on an action-guarded group.
func (h *Handler) RegisterRoutes(pages, actions gin.IRouter) {
	pages.GET("/admin", h.Panel)

	actions.GET("/admin/approve/:id", h.Approve)
	actions.GET("/admin/reject/:id", h.Reject)
	actions.GET("/admin/confirm_session/:id", h.ConfirmSession)
	actions.GET("/admin/complete_session/:id", h.CompleteSession)
	actions.GET("/admin/cancel_session/:id", h.CancelSession)
	actions.POST("/edit_user", h.EditUser)
	actions.GET("/admin/delete_user/:email", h.DeleteUser)
	actions.GET("/admin/delete_feedback/:id", h.DeleteFeedback)
	actions.GET("/admin/events", h.Events)
}

// Panel
// @Summary  Admin tables with refreshed session statuses
// @Success  200 {object} PanelView
// @Failure  303 "Redirect to /admin/login"
// @Router   /admin [GET]
func (h *Handler) Panel(c *gin.Context) {
	view, err := h.service.Panel(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PANEL_FAILED", "Failed to load admin panel")
		return
	}
	view.Flash = response.TakeFlash(c)
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Approve(c *gin.Context) {
	h.withID(c, h.service.ApproveBooking)
}

func (h *Handler) Reject(c *gin.Context) {
	h.withID(c, h.service.RejectBooking)
}

func (h *Handler) ConfirmSession(c *gin.Context) {
	h.withID(c, h.service.ConfirmSession)
}

func (h *Handler) CompleteSession(c *gin.Context) {
	h.withID(c, h.service.CompleteSession)
}

func (h *Handler) CancelSession(c *gin.Context) {
	h.withID(c, h.service.CancelSession)
}

// EditUser
// @Summary  Rename and re-key a user
// @Param    old_email formData string true "Current email"
// @Param    new_name formData string true "New display name"
// @Param    new_email formData string true "New email"
// @Success  303 "Redirect to /admin"
// @Failure  403 {object} map[string]interface{} "Unauthorized"
// @Router   /edit_user [POST]
func (h *Handler) EditUser(c *gin.Context) {
	var req EditUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, ErrInvalidEdit, "")
		return
	}

	if err := h.service.EditUser(c.Request.Context(), req); err != nil {
		h.fail(c, err, "That email already belongs to another account.")
		return
	}
	response.Redirect(c, panelPath)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	actor := middleware.CurrentPrincipal(c)
	if err := h.service.DeleteUser(c.Request.Context(), actor, c.Param("email")); err != nil {
		h.fail(c, err, "User still has bookings, sessions or feedback and cannot be deleted.")
		return
	}
	response.Redirect(c, panelPath)
}

func (h *Handler) DeleteFeedback(c *gin.Context) {
	if err := h.service.DeleteFeedback(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "")
		return
	}
	response.Redirect(c, panelPath)
}

// Events upgrades to a websocket that streams portal notifications.
func (h *Handler) Events(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	h.events.ServeWS(conn, middleware.CurrentPrincipal(c).Email)
}

// withID runs a status action. A non-numeric id is treated like a missing one.
func (h *Handler) withID(c *gin.Context, action func(ctx context.Context, id int64) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Redirect(c, panelPath)
		return
	}
	if err := action(c.Request.Context(), id); err != nil {
		h.fail(c, err, "")
		return
	}
	response.Redirect(c, panelPath)
}

func (h *Handler) fail(c *gin.Context, err error, conflictMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.RedirectWithFlash(c, panelPath, verr.Message)
	case errors.Is(err, domain.ErrInvalidTransition):
		response.RedirectWithFlash(c, panelPath, "That status change is not allowed.")
	case errors.Is(err, domain.ErrConflict) && conflictMsg != "":
		response.RedirectWithFlash(c, panelPath, conflictMsg)
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "ADMIN_ACTION_FAILED", "Admin action failed")
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
