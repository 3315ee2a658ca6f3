package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a product in the storefront catalog.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID            int             `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Features      pq.StringArray  `db:"features" json:"features"`
	Price         decimal.Decimal `db:"price" json:"price"`
	OriginalPrice decimal.Decimal `db:"original_price" json:"originalPrice"`
	ImageURL      string          `db:"image_url" json:"imageUrl"`
	Category      string          `db:"category" json:"category"`
	SubCategory   string          `db:"sub_category" json:"subCategory"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// DiscountPercent returns how much cheaper Price is than OriginalPrice, in
// whole percent. Zero when there is no original price or no discount.
func (p *Product) DiscountPercent() int64 {
	if !p.OriginalPrice.IsPositive() || p.Price.GreaterThanOrEqual(p.OriginalPrice) {
		return 0
	}
	return p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(decimal.NewFromInt(100)).IntPart()
}
