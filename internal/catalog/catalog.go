// Package catalog holds the product category taxonomy shared by the API and
// the admin panel.
package catalog

import "slices"

// Category is a top-level product category and its allowed sub-categories.
type Category struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"subCategories"`
}

// Taxonomy maps category names to their sub-category option sets.
type Taxonomy struct {
	categories []Category
	index      map[string]int
}

// New builds a Taxonomy, preserving category order.
func New(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: make([]Category, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		t.categories[i] = Category{Name: c.Name, SubCategories: slices.Clone(c.SubCategories)}
		t.index[c.Name] = i
	}
	return t
}

// Default is the storefront's category tree.
func Default() *Taxonomy {
	return New([]Category{
		{Name: "Electronics", SubCategories: []string{"Phones", "Laptops", "Audio", "Cameras", "Accessories"}},
		{Name: "Fashion", SubCategories: []string{"Men", "Women", "Kids", "Shoes", "Bags"}},
		{Name: "Home & Living", SubCategories: []string{"Furniture", "Kitchen", "Decor", "Bedding"}},
		{Name: "Beauty", SubCategories: []string{"Skincare", "Makeup", "Fragrance", "Hair Care"}},
		{Name: "Sports", SubCategories: []string{"Fitness", "Outdoor", "Cycling", "Team Sports"}},
	})
}

// Categories returns a copy of every category in display order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, SubCategories: slices.Clone(c.SubCategories)}
	}
	return out
}

// HasCategory reports whether name is a known category.
func (t *Taxonomy) HasCategory(name string) bool {
	_, ok := t.index[name]
	return ok
}

// SubCategories returns the option set for category, or nil if unknown.
func (t *Taxonomy) SubCategories(category string) []string {
	i, ok := t.index[category]
	if !ok {
		return nil
	}
	return slices.Clone(t.categories[i].SubCategories)
}

// Allows reports whether sub belongs to category's option set.
// An empty sub-category is always allowed for a known category.
func (t *Taxonomy) Allows(category, sub string) bool {
	i, ok := t.index[category]
	if !ok {
		return false
	}
	if sub == "" {
		return true
	}
	return slices.Contains(t.categories[i].SubCategories, sub)
}
