// Package media uploads product images to an external hosting provider and
// returns the hosted URL.
package media

import (
	"context"
	"errors"
)

// DefaultFolder is used when the caller does not name a destination folder.
const DefaultFolder = "products"

var (
	// ErrEmptyFile is returned when Upload is called with no bytes.
	ErrEmptyFile = errors.New("upload failed: empty file")
	// ErrNoResult is returned when the provider reports neither a result nor an error.
	ErrNoResult = errors.New("upload failed: no result returned")
	// ErrNotConfigured is returned by every call on an adapter built without credentials.
	ErrNotConfigured = errors.New("media provider is not configured")
)

// ProviderError carries the failure message reported by the hosting provider.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return e.Provider + " upload failed: " + e.Message
}

// Result is what a successful upload yields.
type Result struct {
	SecureURL    string `json:"secureUrl"`
	PublicID     string `json:"publicId"`
	Format       string `json:"format,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Bytes        int    `json:"bytes,omitempty"`
	Folder       string `json:"folder"`
	Provider     string `json:"provider"`
}

// Uploader stores raw bytes with a hosting provider.
// Upload is attempted once; it never retries and relies on ctx for deadlines.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*Result, error)
	Delete(ctx context.Context, publicID string) error
	Provider() string
}

func folderOrDefault(folder string) string {
	if folder == "" {
		return DefaultFolder
	}
	return folder
}

// unconfigured fails every call with ErrNotConfigured.
type unconfigured struct {
	provider string
}

func (u unconfigured) Upload(context.Context, []byte, string) (*Result, error) {
	return nil, ErrNotConfigured
}

func (u unconfigured) Delete(context.Context, string) error {
	return ErrNotConfigured
}

func (u unconfigured) Provider() string { return u.provider }
