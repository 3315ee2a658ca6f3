package adminapi

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ProductPayload is the body of product create and update calls.
type ProductPayload struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	ImageURL      string          `json:"imageUrl" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	SubCategory   string          `json:"subCategory"`
}

// MarshalJSON writes prices as JSON numbers.
func (p ProductPayload) MarshalJSON() ([]byte, error) {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return json.Marshal(struct {
		Name          string      `json:"name"`
		Description   string      `json:"description"`
		Features      []string    `json:"features"`
		Price         json.Number `json:"price"`
		OriginalPrice json.Number `json:"originalPrice"`
		ImageURL      string      `json:"imageUrl"`
		Category      string      `json:"category"`
		SubCategory   string      `json:"subCategory"`
	}{
		Name:          p.Name,
		Description:   p.Description,
		Features:      features,
		Price:         json.Number(p.Price.String()),
		OriginalPrice: json.Number(p.OriginalPrice.String()),
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		SubCategory:   p.SubCategory,
	})
}

// NewsletterQuery selects one page of the newsletter list.
type NewsletterQuery struct {
	Page   int
	Limit  int
	Search string
}
