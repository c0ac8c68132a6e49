package upload

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"yojeong/internal/blob"
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

// RegisterRoutes mounts the upload on a user-guarded group and the download on
// a group open to users and admins.
func (h *Handler) RegisterRoutes(users, members gin.IRouter) {
	users.POST("/book", h.Book)
	members.GET("/download/:file_id", h.Download)
}

// Book
// @Summary  Upload a photo for retouching
// @Param    service formData string false "Retouch service"
// @Param    file formData file true "jpg, jpeg, png, gif or pdf up to 100 KB"
// @Success  303 "Redirect to /dashboard"
// @Router   /book [POST]
func (h *Handler) Book(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		response.Redirect(c, "/dashboard")
		return
	}

	var req BookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RedirectWithFlash(c, "/dashboard", "The form could not be read. Please try again.")
		return
	}

	src, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		response.RedirectWithFlash(c, "/dashboard", "Could not read the uploaded file.")
		return
	}
	defer src.Close()

	_, err = h.service.Book(c.Request.Context(), middleware.CurrentPrincipal(c), req, File{
		Name: fh.Filename,
		Size: fh.Size,
		Body: src,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RedirectWithFlash(c, "/dashboard", "Upload received. Your retouch request is pending review.")
}

// Download
// @Summary  Download an uploaded file
// @Param    file_id path string true "Blob id"
// @Success  200 {file} binary
// @Failure  303 "Redirect with flash when missing"
// @Router   /download/{file_id} [GET]
func (h *Handler) Download(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	back := "/dashboard"
	if p.Is(domain.RoleAdmin) {
		back = "/admin"
	}

	booking, body, err := h.service.Download(c.Request.Context(), p, c.Param("file_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.RedirectWithFlash(c, back, "File not found.")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to fetch file")
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, blob.ContentTypeFor(booking.Filename), body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", booking.Filename),
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		response.RedirectWithFlash(c, "/dashboard", verr.Message)
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store upload")
}
