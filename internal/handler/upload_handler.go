package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/media"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

type mediaUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*media.Result, error)
}

// UploadHandler accepts product images from the admin panel and forwards
// them to the media provider.
type UploadHandler struct {
	media   mediaUploader
	maxSize int64
}

// NewUploadHandler constructs an UploadHandler accepting files up to maxSize bytes.
func NewUploadHandler(m mediaUploader, maxSize int64) *UploadHandler {
	return &UploadHandler{media: m, maxSize: maxSize}
}

// uploadResponse mirrors the provider result under the names the panel reads.
type uploadResponse struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	Format       string `json:"format,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Bytes        int    `json:"bytes,omitempty"`
	Folder       string `json:"folder"`
}

// Upload handles POST /api/upload (multipart: file, folder)
func (h *UploadHandler) Upload(c *gin.Context) {
	// Leave room for the multipart envelope around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, 413, utils.CodeFileTooLarge, "File exceeds upload limit")
			return
		}
		utils.Error(c, 400, utils.CodeInvalidRequest, "Missing file")
		return
	}
	if fh.Size > h.maxSize {
		utils.Error(c, 413, utils.CodeFileTooLarge, "File exceeds upload limit")
		return
	}

	f, err := fh.Open()
	if err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Unreadable file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Unreadable file")
		return
	}

	res, err := h.media.Upload(c.Request.Context(), data, c.PostForm("folder"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFolder):
			utils.Error(c, 400, utils.CodeInvalidRequest, err.Error())
		case errors.Is(err, media.ErrEmptyFile):
			utils.Error(c, 400, utils.CodeInvalidRequest, err.Error())
		default:
			log.Error().Err(err).Str("filename", fh.Filename).Msg("Upload failed")
			utils.Error(c, 502, utils.CodeUploadFailed, err.Error())
		}
		return
	}

	utils.Success(c, 201, "File uploaded", uploadResponse{
		URL:          res.SecureURL,
		PublicID:     res.PublicID,
		Format:       res.Format,
		ResourceType: res.ResourceType,
		Width:        res.Width,
		Height:       res.Height,
		Bytes:        res.Bytes,
		Folder:       res.Folder,
	})
}
