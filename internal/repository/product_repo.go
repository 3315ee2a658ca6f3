package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_shop/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id, or sql.ErrNoRows.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product and fills in its generated columns.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	const q = `INSERT INTO products (name, description, features, price, original_price, image_url, category, sub_category, is_active)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		product.Name,
		product.Description,
		product.Features,
		product.Price,
		product.OriginalPrice,
		product.ImageURL,
		product.Category,
		product.SubCategory,
		product.IsActive,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// Update overwrites every editable column of an existing product.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	const q = `UPDATE products
              SET name = $1, description = $2, features = $3, price = $4, original_price = $5,
                  image_url = $6, category = $7, sub_category = $8, is_active = $9, updated_at = NOW()
              WHERE id = $10
              RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, q,
		product.Name,
		product.Description,
		product.Features,
		product.Price,
		product.OriginalPrice,
		product.ImageURL,
		product.Category,
		product.SubCategory,
		product.IsActive,
		product.ID,
	).Scan(&product.UpdatedAt)
}

// Delete deletes a product by ID. It returns sql.ErrNoRows when nothing matched.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ProductFilter holds filters for admin product queries.
type ProductFilter struct {
	Category    string
	SubCategory string
	Search      string
	IsActive    *bool
	Page        int
	Limit       int
}

// ProductPage contains one page of products and the unpaged total.
type ProductPage struct {
	Products []models.Product
	Total    int
	Page     int
	Limit    int
}

// List returns products matching filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	where := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.SubCategory != "" {
		where += fmt.Sprintf(" AND sub_category = $%d", argIdx)
		args = append(args, filter.SubCategory)
		argIdx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM products `+where, args...); err != nil {
		return nil, err
	}

	listQuery := fmt.Sprintf(`SELECT * FROM products %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, args...); err != nil {
		return nil, err
	}

	return &ProductPage{Products: products, Total: total, Page: page, Limit: limit}, nil
}
