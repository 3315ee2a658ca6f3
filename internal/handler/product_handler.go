package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/service"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

type productManager interface {
	CreateProduct(ctx context.Context, req *service.ProductRequest, actorID int) (*models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, req *service.ProductRequest, actorID int) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int, actorID int) error
	ListProducts(ctx context.Context, filter *service.ListProductsFilter) (*repository.ProductPage, error)
	Categories() []catalog.Category
}

// ProductHandler handles product CRUD HTTP endpoints.
type ProductHandler struct {
	products productManager
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(products productManager) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := &service.ListProductsFilter{
		Category:    c.Query("category"),
		SubCategory: c.Query("subCategory"),
		Search:      c.Query("search"),
		Page:        1,
		Limit:       10,
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		filter.IsActive = &active
	}

	result, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		utils.Error(c, 500, utils.CodeInternal, "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", result.Products,
		utils.NewPagination(result.Page, result.Limit, len(result.Products), result.Total))
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Invalid request body")
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &req, c.GetInt("user_id"))
	if err != nil {
		writeProductError(c, err, "Failed to create product")
		return
	}

	utils.Success(c, 201, "Product created successfully", product)
}

// GetProduct handles GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeProductError(c, err, "Failed to retrieve product")
		return
	}

	utils.Success(c, 200, "Product retrieved", product)
}

// UpdateProduct handles PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, utils.CodeInvalidRequest, "Invalid request body")
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, &req, c.GetInt("user_id"))
	if err != nil {
		writeProductError(c, err, "Failed to update product")
		return
	}

	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id, c.GetInt("user_id")); err != nil {
		writeProductError(c, err, "Failed to delete product")
		return
	}

	utils.Success(c, 200, "Product deleted successfully", nil)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	utils.Success(c, 200, "Categories retrieved", h.products.Categories())
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, utils.CodeInvalidID, "Invalid product ID")
		return 0, false
	}
	return id, true
}

func writeProductError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		utils.Error(c, 404, utils.CodeProductNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCategory):
		utils.Error(c, 400, utils.CodeInvalidCategory, err.Error())
	case errors.Is(err, service.ErrInvalidSubCategory):
		utils.Error(c, 400, utils.CodeInvalidSubCategory, err.Error())
	case errors.Is(err, service.ErrImageRequired):
		utils.Error(c, 400, utils.CodeImageRequired, err.Error())
	case errors.Is(err, service.ErrNegativePrice):
		utils.Error(c, 400, utils.CodeInvalidRequest, err.Error())
	default:
		utils.Error(c, 500, utils.CodeInternal, fallback)
	}
}
