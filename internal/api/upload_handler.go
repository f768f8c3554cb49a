package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and part headers on top of the
// file size limit.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadService service.UploadService
	maxBytes      int64
	logger        *slog.Logger
}

func NewUploadHandler(uploadService service.UploadService, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes, logger: logger}
}

type UploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Type     string `json:"type"`
}

// Upload accepts a single image or video in the multipart field "file".
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Not logged in")
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.logger, service.ErrFileTooLarge)
			return
		}
		respondError(c, h.logger, service.ErrMissingFile)
		return
	}
	defer file.Close()

	upload, err := h.uploadService.Upload(c.Request.Context(), service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Filename: upload.FileName,
		Path:     upload.Path,
		Type:     string(upload.Type),
	})
}

// Serve streams a stored upload. Uploaded media is public by path.
// GET /uploads/*filepath
func (h *UploadHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")

	obj, err := h.uploadService.Open(c.Request.Context(), key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer obj.Body.Close()

	size := obj.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	})
}
