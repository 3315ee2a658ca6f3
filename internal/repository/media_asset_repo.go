package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_shop/internal/models"
)

// MediaAssetRepository tracks uploaded assets and whether a product uses them.
type MediaAssetRepository struct {
	db *sqlx.DB
}

// NewMediaAssetRepository creates a new MediaAssetRepository.
func NewMediaAssetRepository(db *sqlx.DB) *MediaAssetRepository {
	return &MediaAssetRepository{db: db}
}

// Create records a freshly uploaded asset.
func (r *MediaAssetRepository) Create(ctx context.Context, asset *models.MediaAsset) error {
	const q = `INSERT INTO media_assets (public_id, url, folder, provider)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (public_id) DO UPDATE SET url = EXCLUDED.url
        RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, q, asset.PublicID, asset.URL, asset.Folder, asset.Provider).
		Scan(&asset.ID, &asset.CreatedAt)
}

// MarkAttached flags every asset served from url as used by a product.
func (r *MediaAssetRepository) MarkAttached(ctx context.Context, url string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE media_assets SET attached_at = NOW() WHERE url = $1 AND attached_at IS NULL`, url)
	return err
}

// listOrphansQuery skips assets a product still points at even when
// MarkAttached never ran for them.
const listOrphansQuery = `SELECT id, public_id, url, folder, provider, attached_at, created_at
        FROM media_assets
        WHERE attached_at IS NULL AND created_at < $1
          AND NOT EXISTS (SELECT 1 FROM products p WHERE p.image_url = media_assets.url)
        ORDER BY created_at
        LIMIT $2`

// ListOrphans returns up to limit assets created before cutoff that no
// product uses.
func (r *MediaAssetRepository) ListOrphans(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error) {
	assets := []models.MediaAsset{}
	if err := r.db.SelectContext(ctx, &assets, listOrphansQuery, cutoff, limit); err != nil {
		return nil, err
	}
	return assets, nil
}

// IsReferenced reports whether any product uses url as its image.
func (r *MediaAssetRepository) IsReferenced(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE image_url = $1)`, url)
	return exists, err
}

// Delete removes an asset row.
func (r *MediaAssetRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	return err
}
