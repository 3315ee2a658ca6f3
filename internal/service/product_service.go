package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/sse"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidSubCategory = errors.New("sub category does not belong to category")
	ErrImageRequired      = errors.New("image is required")
	ErrNegativePrice      = errors.New("price must not be negative")
)

// productStore is the persistence used by ProductService.
type productStore interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter repository.ProductFilter) (*repository.ProductPage, error)
}

// assetTracker marks uploaded media as used.
type assetTracker interface {
	MarkAttached(ctx context.Context, url string) error
}

// ProductService handles product CRUD operations.
type ProductService struct {
	products productStore
	assets   assetTracker
	taxonomy *catalog.Taxonomy
	hub      *sse.Hub
}

// NewProductService constructs a ProductService. assets and hub may be nil.
func NewProductService(products productStore, assets assetTracker, taxonomy *catalog.Taxonomy, hub *sse.Hub) *ProductService {
	return &ProductService{
		products: products,
		assets:   assets,
		taxonomy: taxonomy,
		hub:      hub,
	}
}

// ProductRequest is the body of both create and update calls. Updates replace
// every field.
type ProductRequest struct {
	Name          string          `json:"name" binding:"required,max=255"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category" binding:"required"`
	SubCategory   string          `json:"subCategory"`
	IsActive      *bool           `json:"isActive"`
}

func (s *ProductService) validate(req *ProductRequest) error {
	if strings.TrimSpace(req.ImageURL) == "" {
		return ErrImageRequired
	}
	if !s.taxonomy.HasCategory(req.Category) {
		return ErrInvalidCategory
	}
	if !s.taxonomy.Allows(req.Category, req.SubCategory) {
		return ErrInvalidSubCategory
	}
	if req.Price.IsNegative() || req.OriginalPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

func (s *ProductService) apply(product *models.Product, req *ProductRequest) {
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Features = cleanFeatures(req.Features)
	product.Price = req.Price.Round(2)
	product.OriginalPrice = req.OriginalPrice.Round(2)
	product.ImageURL = strings.TrimSpace(req.ImageURL)
	product.Category = req.Category
	product.SubCategory = req.SubCategory
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, req *ProductRequest, actorID int) (*models.Product, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	product := &models.Product{IsActive: true}
	s.apply(product, req)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.afterSave(ctx, product, sse.EventProductCreated, actorID)
	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces the editable fields of product id.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *ProductRequest, actorID int) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	s.apply(product, req)

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.afterSave(ctx, product, sse.EventProductUpdated, actorID)
	return product, nil
}

// DeleteProduct deletes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int, actorID int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	if s.hub != nil {
		s.hub.Broadcast(&sse.ProductEvent{Event: sse.EventProductDeleted, ProductID: id, ActorID: actorID})
	}
	return nil
}

// ListProductsFilter holds query filters for the admin product list.
type ListProductsFilter struct {
	Category    string
	SubCategory string
	Search      string
	IsActive    *bool
	Page        int
	Limit       int
}

// ListProducts returns one page of products.
func (s *ProductService) ListProducts(ctx context.Context, filter *ListProductsFilter) (*repository.ProductPage, error) {
	return s.products.List(ctx, repository.ProductFilter{
		Category:    filter.Category,
		SubCategory: filter.SubCategory,
		Search:      strings.TrimSpace(filter.Search),
		IsActive:    filter.IsActive,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
}

// Categories returns the category taxonomy for form dropdowns.
func (s *ProductService) Categories() []catalog.Category {
	return s.taxonomy.Categories()
}

func (s *ProductService) afterSave(ctx context.Context, product *models.Product, event sse.EventType, actorID int) {
	if s.assets != nil {
		if err := s.assets.MarkAttached(ctx, product.ImageURL); err != nil {
			log.Warn().Err(err).Int("product_id", product.ID).Msg("Failed to mark product image as attached")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(&sse.ProductEvent{
			Event:     event,
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			ActorID:   actorID,
		})
	}
	log.Info().Int("product_id", product.ID).Str("event", string(event)).Msg("Product saved")
}

// cleanFeatures trims entries and drops blank ones, keeping order.
func cleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
