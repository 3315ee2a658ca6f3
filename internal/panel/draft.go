package panel

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

// ProductDraft holds the product form exactly as typed. Features is one
// feature per line and prices are kept as text until submit.
type ProductDraft struct {
	ID            int
	Name          string
	Description   string
	Features      string
	Price         string
	OriginalPrice string
	ImageURL      string
	Category      string
	SubCategory   string
}

// DraftFromProduct copies p into a draft for editing.
func DraftFromProduct(p *adminapi.Product) ProductDraft {
	return ProductDraft{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Features:      strings.Join(p.Features, "\n"),
		Price:         p.Price.String(),
		OriginalPrice: p.OriginalPrice.String(),
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		SubCategory:   p.SubCategory,
	}
}

// IsEdit reports whether the draft belongs to an existing product.
func (d ProductDraft) IsEdit() bool {
	return d.ID > 0
}

// Payload converts the draft into the API request body.
func (d ProductDraft) Payload() *adminapi.ProductPayload {
	return &adminapi.ProductPayload{
		Name:          strings.TrimSpace(d.Name),
		Description:   d.Description,
		Features:      SplitFeatures(d.Features),
		Price:         ParsePrice(d.Price),
		OriginalPrice: ParsePrice(d.OriginalPrice),
		ImageURL:      d.ImageURL,
		Category:      d.Category,
		SubCategory:   d.SubCategory,
	}
}

// SplitFeatures splits text on line breaks and drops blank lines, keeping order.
func SplitFeatures(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParsePrice parses s as a decimal. Anything unparseable is zero.
func ParsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
