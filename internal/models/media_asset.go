package models

import "time"

// MediaAsset records an image uploaded through the API so that assets never
// referenced by a product can be swept later.
type MediaAsset struct {
	ID         int64      `db:"id" json:"id"`
	PublicID   string     `db:"public_id" json:"publicId"`
	URL        string     `db:"url" json:"url"`
	Folder     string     `db:"folder" json:"folder"`
	Provider   string     `db:"provider" json:"provider"`
	AttachedAt *time.Time `db:"attached_at" json:"attachedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
