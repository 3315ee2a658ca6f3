package adminapi

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// envelope is the API's standard response wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Error      *errorInfo      `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	ItemsPerPage int  `json:"itemsPerPage"`
	Offset       int  `json:"offset"`
	Total        int  `json:"total"`
	HasMore      bool `json:"hasMore"`
}

// Product is a catalog product as returned by the API.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
	SubCategory   string          `json:"subCategory"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewsletterEntry is one newsletter subscription.
type NewsletterEntry struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadResult is what the upload endpoint returns for a stored image.
type UploadResult struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	Format       string `json:"format"`
	ResourceType string `json:"resourceType"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Bytes        int    `json:"bytes"`
	Folder       string `json:"folder"`
}

// SaveResult is the outcome of a product create or update.
type SaveResult struct {
	Message string
	Product Product
}

// NewsletterPage is one page of subscribers.
type NewsletterPage struct {
	Entries    []NewsletterEntry
	Pagination Pagination
}
