package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/media"
	"github.com/GTDGit/gtd_shop/internal/models"
)

// ErrInvalidFolder is returned for destination folders outside [a-z0-9_-/].
var ErrInvalidFolder = errors.New("invalid folder name")

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-/]{0,63}$`)

// assetStore persists uploaded assets.
type assetStore interface {
	Create(ctx context.Context, asset *models.MediaAsset) error
	ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error)
	IsReferenced(ctx context.Context, url string) (bool, error)
	MarkAttached(ctx context.Context, url string) error
	Delete(ctx context.Context, id int64) error
}

// MediaService uploads product images and tracks them until a product uses them.
type MediaService struct {
	uploader media.Uploader
	assets   assetStore
}

// NewMediaService constructs a MediaService. assets may be nil, in which case
// uploads are not tracked and sweeping is a no-op.
func NewMediaService(uploader media.Uploader, assets assetStore) *MediaService {
	return &MediaService{uploader: uploader, assets: assets}
}

// Upload sends data to the hosting provider exactly once.
func (s *MediaService) Upload(ctx context.Context, data []byte, folder string) (*media.Result, error) {
	if folder != "" && !folderPattern.MatchString(folder) {
		return nil, ErrInvalidFolder
	}
	res, err := s.uploader.Upload(ctx, data, folder)
	if err != nil {
		log.Error().Err(err).Str("provider", s.uploader.Provider()).Int("bytes", len(data)).Msg("Media upload failed")
		return nil, err
	}

	if s.assets != nil {
		asset := &models.MediaAsset{
			PublicID: res.PublicID,
			URL:      res.SecureURL,
			Folder:   res.Folder,
			Provider: res.Provider,
		}
		if err := s.assets.Create(ctx, asset); err != nil {
			log.Warn().Err(err).Str("public_id", res.PublicID).Msg("Failed to record uploaded asset")
		}
	}

	log.Info().Str("provider", res.Provider).Str("public_id", res.PublicID).Msg("Media uploaded")
	return res, nil
}

// SweepOrphans deletes up to batch assets that were never attached to a
// product and are older than olderThan. It returns how many were removed.
// Each candidate is checked against products again right before the
// provider delete, and one still in use is marked attached instead.
// Assets whose check or provider deletion fails are kept for the next sweep.
func (s *MediaService) SweepOrphans(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	if s.assets == nil {
		return 0, nil
	}
	orphans, err := s.assets.ListOrphans(ctx, time.Now().Add(-olderThan), batch)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range orphans {
		inUse, err := s.assets.IsReferenced(ctx, a.URL)
		if err != nil {
			log.Warn().Err(err).Str("public_id", a.PublicID).Msg("Failed to check orphaned asset usage")
			continue
		}
		if inUse {
			if err := s.assets.MarkAttached(ctx, a.URL); err != nil {
				log.Warn().Err(err).Str("public_id", a.PublicID).Msg("Failed to mark asset as attached")
			}
			continue
		}
		if err := s.uploader.Delete(ctx, a.PublicID); err != nil {
			log.Warn().Err(err).Str("public_id", a.PublicID).Msg("Failed to delete orphaned asset")
			continue
		}
		if err := s.assets.Delete(ctx, a.ID); err != nil {
			log.Warn().Err(err).Int64("asset_id", a.ID).Msg("Failed to delete orphaned asset record")
			continue
		}
		removed++
	}
	return removed, nil
}
