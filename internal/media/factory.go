package media

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/config"
)

// New returns the Uploader selected by cfg.Driver. Missing credentials are a
// startup configuration error: it is logged once and the returned Uploader
// fails every call with ErrNotConfigured. Only client construction failures
// are returned as errors.
func New(ctx context.Context, cfg config.MediaConfig) (Uploader, error) {
	switch cfg.Driver {
	case config.MediaDriverS3:
		if !cfg.S3.HasCredentials() {
			log.Error().
				Str("driver", cfg.Driver).
				Msg("media configuration error: S3_REGION, S3_BUCKET and S3_PUBLIC_BASE_URL are required - uploads will fail")
			return unconfigured{provider: ProviderS3}, nil
		}
		return NewS3(ctx, cfg.S3)
	default:
		if !cfg.Cloudinary.HasCredentials() {
			log.Error().
				Str("driver", cfg.Driver).
				Msg("media configuration error: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET, or CLOUDINARY_URL - uploads will fail")
			return unconfigured{provider: ProviderCloudinary}, nil
		}
		return NewCloudinary(cfg.Cloudinary)
	}
}
