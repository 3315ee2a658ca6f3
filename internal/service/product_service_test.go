package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/sse"
)

func validRequest() *ProductRequest {
	return &ProductRequest{
		Name:          "  Wireless Earbuds ",
		Description:   "Noise cancelling",
		Features:      []string{"Bluetooth 5.3", "  ", "24h battery"},
		Price:         decimal.RequireFromString("49.999"),
		OriginalPrice: decimal.RequireFromString("79.90"),
		ImageURL:      "https://res.cloudinary.com/demo/products/earbuds.png",
		Category:      "Electronics",
		SubCategory:   "Audio",
	}
}

func TestCreateProduct(t *testing.T) {
	store := newFakeProductStore()
	assets := &fakeAssetTracker{}
	hub := sse.NewHub()
	client := hub.Register("test")
	svc := NewProductService(store, assets, catalog.Default(), hub)

	p, err := svc.CreateProduct(context.Background(), validRequest(), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Wireless Earbuds", p.Name)
	assert.Equal(t, []string{"Bluetooth 5.3", "24h battery"}, []string(p.Features))
	assert.Equal(t, "50", p.Price.String())
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{"https://res.cloudinary.com/demo/products/earbuds.png"}, assets.attached)

	var ev sse.ProductEvent
	require.NoError(t, json.Unmarshal((<-client.Events).Data, &ev))
	assert.Equal(t, sse.EventProductCreated, ev.Event)
	assert.Equal(t, 3, ev.ActorID)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), nil, catalog.Default(), nil)

	tests := []struct {
		name   string
		mutate func(r *ProductRequest)
		want   error
	}{
		{"missing image", func(r *ProductRequest) { r.ImageURL = " " }, ErrImageRequired},
		{"unknown category", func(r *ProductRequest) { r.Category = "Groceries" }, ErrInvalidCategory},
		{"foreign sub category", func(r *ProductRequest) { r.SubCategory = "Shoes" }, ErrInvalidSubCategory},
		{"negative price", func(r *ProductRequest) { r.Price = decimal.NewFromInt(-1) }, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := svc.CreateProduct(context.Background(), req, 0)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateProductReplacesFields(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store, nil, catalog.Default(), nil)
	created, err := svc.CreateProduct(context.Background(), validRequest(), 0)
	require.NoError(t, err)

	req := validRequest()
	req.Name = "Earbuds Pro"
	req.Features = nil
	inactive := false
	req.IsActive = &inactive

	updated, err := svc.UpdateProduct(context.Background(), created.ID, req, 0)
	require.NoError(t, err)
	assert.Equal(t, "Earbuds Pro", updated.Name)
	assert.Empty(t, updated.Features)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateProduct(context.Background(), 999, req, 0)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store, nil, catalog.Default(), nil)
	created, err := svc.CreateProduct(context.Background(), validRequest(), 0)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID, 0))
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), created.ID, 0), ErrProductNotFound)

	_, err = svc.GetProduct(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
