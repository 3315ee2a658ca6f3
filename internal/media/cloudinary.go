package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/GTDGit/gtd_shop/internal/config"
)

// ProviderCloudinary names the Cloudinary driver.
const ProviderCloudinary = "cloudinary"

// cloudinaryAPI is the subset of the Cloudinary upload API used here.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary uploads through an explicitly constructed Cloudinary client.
type Cloudinary struct {
	api cloudinaryAPI
}

// NewCloudinary builds a client from the connection URL when present, otherwise
// from the cloud name / key / secret triple.
func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &Cloudinary{api: &cld.Upload}, nil
}

// Upload sends data to Cloudinary and lets it detect the resource type.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, folder string) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	folder = folderOrDefault(folder)

	resp, err := c.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return nil, ErrNoResult
	}
	if resp.Error.Message != "" {
		return nil, &ProviderError{Provider: ProviderCloudinary, Message: resp.Error.Message}
	}
	if resp.SecureURL == "" {
		return nil, ErrNoResult
	}

	return &Result{
		SecureURL:    resp.SecureURL,
		PublicID:     resp.PublicID,
		Format:       resp.Format,
		ResourceType: resp.ResourceType,
		Width:        resp.Width,
		Height:       resp.Height,
		Bytes:        resp.Bytes,
		Folder:       folder,
		Provider:     ProviderCloudinary,
	}, nil
}

// Delete removes an uploaded asset by public id.
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	resp, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp != nil && resp.Error.Message != "" {
		return &ProviderError{Provider: ProviderCloudinary, Message: resp.Error.Message}
	}
	return nil
}

// Provider implements Uploader.
func (c *Cloudinary) Provider() string { return ProviderCloudinary }
