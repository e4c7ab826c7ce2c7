package app

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, r io.Reader, filename string) (string, error)
}

type UploadHandler struct {
	uploader ImageUploader
}

func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload handles a single multipart image
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Image uploads are not configured", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, util.MaxUploadSize+1<<20)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		util.BadRequest(c, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > util.MaxUploadSize {
		util.BadRequest(c, "File is too large")
		return
	}
	if !util.IsSupportedImage(header.Filename) {
		util.BadRequest(c, "Unsupported image format")
		return
	}

	url, err := h.uploader.UploadImage(c.Request.Context(), file, header.Filename)
	if err != nil {
		log.Printf("Upload failed for %s: %v", header.Filename, err)
		util.InternalServerError(c)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "File uploaded successfully", gin.H{"url": url})
}
