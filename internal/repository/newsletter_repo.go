package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_shop/internal/models"
)

// NewsletterRepository handles data access for newsletter subscribers.
type NewsletterRepository struct {
	db *sqlx.DB
}

// NewNewsletterRepository creates a new NewsletterRepository.
func NewNewsletterRepository(db *sqlx.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// List returns one page of subscribers, newest first, optionally filtered by
// a case-insensitive email substring, plus the unpaged total.
func (r *NewsletterRepository) List(ctx context.Context, search string, page, limit int) ([]models.NewsletterEntry, int, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit
	pattern := "%" + escapeLike(search) + "%"

	const where = `WHERE ($1 = '' OR email ILIKE $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM newsletter_subscribers `+where, search, pattern); err != nil {
		return nil, 0, err
	}

	entries := []models.NewsletterEntry{}
	listQuery := `SELECT id, email, created_at, updated_at FROM newsletter_subscribers ` + where + `
        ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &entries, listQuery, search, pattern, limit, offset); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Subscribe inserts email, or returns the existing row when it is already
// subscribed. The boolean reports whether a new row was created.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) (*models.NewsletterEntry, bool, error) {
	const insert = `INSERT INTO newsletter_subscribers (email) VALUES ($1)
        ON CONFLICT (LOWER(email)) DO NOTHING
        RETURNING id, email, created_at, updated_at`

	var entry models.NewsletterEntry
	err := r.db.GetContext(ctx, &entry, insert, email)
	if err == nil {
		return &entry, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	const existing = `SELECT id, email, created_at, updated_at FROM newsletter_subscribers WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &entry, existing, email); err != nil {
		return nil, false, err
	}
	return &entry, false, nil
}

// Delete removes a subscriber. It returns sql.ErrNoRows when nothing matched.
func (r *NewsletterRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
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
