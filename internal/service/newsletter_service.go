package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GTDGit/gtd_shop/internal/cache"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

// newsletterStore is the persistence used by NewsletterService.
type newsletterStore interface {
	List(ctx context.Context, search string, page, limit int) ([]models.NewsletterEntry, int, error)
	Subscribe(ctx context.Context, email string) (*models.NewsletterEntry, bool, error)
	Delete(ctx context.Context, id int64) error
}

// newsletterPageCache caches listing pages.
type newsletterPageCache interface {
	Get(ctx context.Context, page, limit int, search string) (*cache.NewsletterPage, string, error)
	Set(ctx context.Context, key string, p *cache.NewsletterPage) error
	Invalidate(ctx context.Context) error
}

// NewsletterService lists and manages newsletter subscriptions.
type NewsletterService struct {
	store        newsletterStore
	cache        newsletterPageCache
	validate     *validator.Validate
	group        singleflight.Group
	defaultLimit int
	maxLimit     int
}

// NewNewsletterService constructs a NewsletterService. pageCache may be nil.
func NewNewsletterService(store newsletterStore, pageCache newsletterPageCache, defaultLimit, maxLimit int) *NewsletterService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &NewsletterService{
		store:        store,
		cache:        pageCache,
		validate:     validator.New(),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// NewsletterList is one page of subscribers plus pagination metadata.
type NewsletterList struct {
	Entries    []models.NewsletterEntry
	Pagination utils.Pagination
}

// List returns one page of subscribers. Cache misses for the same page are
// collapsed into a single database query.
func (s *NewsletterService) List(ctx context.Context, page, limit int, search string) (*NewsletterList, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	search = strings.TrimSpace(search)

	// cacheKey is fixed before the database read; see NewsletterCache.Get.
	var cacheKey string
	if s.cache != nil {
		cached, key, err := s.cache.Get(ctx, page, limit, search)
		if err == nil {
			return newNewsletterList(cached, page, limit), nil
		}
		if errors.Is(err, cache.ErrMiss) {
			cacheKey = key
		} else {
			log.Warn().Err(err).Msg("Newsletter cache read failed")
		}
	}

	flightKey := cacheKey
	if flightKey == "" {
		flightKey = fmt.Sprintf("%d:%d:%s", page, limit, search)
	}
	v, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		entries, total, err := s.store.List(ctx, search, page, limit)
		if err != nil {
			return nil, err
		}
		p := &cache.NewsletterPage{Entries: entries, Total: total}
		if cacheKey != "" {
			if err := s.cache.Set(ctx, cacheKey, p); err != nil {
				log.Warn().Err(err).Msg("Newsletter cache write failed")
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return newNewsletterList(v.(*cache.NewsletterPage), page, limit), nil
}

func newNewsletterList(p *cache.NewsletterPage, page, limit int) *NewsletterList {
	entries := p.Entries
	if entries == nil {
		entries = []models.NewsletterEntry{}
	}
	return &NewsletterList{
		Entries:    entries,
		Pagination: utils.NewPagination(page, limit, len(entries), p.Total),
	}
}

// Subscribe adds email to the newsletter. Subscribing twice is not an error;
// the boolean reports whether the address is new.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterEntry, bool, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return nil, false, ErrInvalidEmail
	}
	entry, created, err := s.store.Subscribe(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.invalidate(ctx)
	}
	return entry, created, nil
}

// Unsubscribe removes a subscriber by id.
func (s *NewsletterService) Unsubscribe(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriberNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *NewsletterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Newsletter cache invalidation failed")
	}
}
