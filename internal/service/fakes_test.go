package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GTDGit/gtd_shop/internal/cache"
	"github.com/GTDGit/gtd_shop/internal/media"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
)

type fakeProductStore struct {
	products map[int]*models.Product
	nextID   int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[int]*models.Product{}, nextID: 1}
}

func (f *fakeProductStore) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return sql.ErrNoRows
	}
	p.UpdatedAt = time.Now()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductStore) Delete(_ context.Context, id int) error {
	if _, ok := f.products[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) List(_ context.Context, filter repository.ProductFilter) (*repository.ProductPage, error) {
	out := []models.Product{}
	for _, p := range f.products {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, *p)
		}
	}
	return &repository.ProductPage{Products: out, Total: len(out), Page: filter.Page, Limit: filter.Limit}, nil
}

type fakeAssetTracker struct {
	attached []string
}

func (f *fakeAssetTracker) MarkAttached(_ context.Context, url string) error {
	f.attached = append(f.attached, url)
	return nil
}

type failingTracker struct{}

func (failingTracker) MarkAttached(context.Context, string) error {
	return errors.New("connection reset")
}

type fakeNewsletterStore struct {
	mu        sync.Mutex
	entries   []models.NewsletterEntry
	listCalls int
	listDelay time.Duration
	// afterRead runs once the rows are read, before List returns.
	afterRead func()
}

func (f *fakeNewsletterStore) List(_ context.Context, _ string, _, _ int) ([]models.NewsletterEntry, int, error) {
	f.mu.Lock()
	f.listCalls++
	rows := append([]models.NewsletterEntry(nil), f.entries...)
	hook := f.afterRead
	f.mu.Unlock()
	time.Sleep(f.listDelay)
	if hook != nil {
		hook()
	}
	return rows, len(rows), nil
}

func (f *fakeNewsletterStore) Subscribe(_ context.Context, email string) (*models.NewsletterEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].Email == email {
			return &f.entries[i], false, nil
		}
	}
	e := models.NewsletterEntry{ID: int64(len(f.entries) + 1), Email: email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.entries = append(f.entries, e)
	return &e, true, nil
}

func (f *fakeNewsletterStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakePageCache mirrors NewsletterCache: pages live under a version counter
// that Invalidate bumps, and old pages stay stored but unreachable.
type fakePageCache struct {
	mu          sync.Mutex
	version     int
	pages       map[string]*cache.NewsletterPage
	invalidated int
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{pages: map[string]*cache.NewsletterPage{}}
}

func (f *fakePageCache) Get(_ context.Context, page, limit int, search string) (*cache.NewsletterPage, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("v%d|%d|%d|%s", f.version, page, limit, search)
	p, ok := f.pages[key]
	if !ok {
		return nil, key, cache.ErrMiss
	}
	return p, key, nil
}

func (f *fakePageCache) Set(_ context.Context, key string, p *cache.NewsletterPage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[key] = p
	return nil
}

func (f *fakePageCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.version++
	return nil
}

type fakeUploader struct {
	result  *media.Result
	err     error
	calls   int
	deleted []string
	failDel map[string]bool
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, folder string) (*media.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	if folder == "" {
		folder = media.DefaultFolder
	}
	res.Folder = folder
	return &res, nil
}

func (f *fakeUploader) Delete(_ context.Context, publicID string) error {
	if f.failDel[publicID] {
		return &media.ProviderError{Provider: "fake", Message: "not found"}
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeUploader) Provider() string { return "fake" }

type fakeAssetStore struct {
	created    []models.MediaAsset
	orphans    []models.MediaAsset
	deleted    []int64
	referenced map[string]bool
	attached   []string
}

func (f *fakeAssetStore) Create(_ context.Context, a *models.MediaAsset) error {
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeAssetStore) ListOrphans(_ context.Context, _ time.Time, limit int) ([]models.MediaAsset, error) {
	if len(f.orphans) > limit {
		return f.orphans[:limit], nil
	}
	return f.orphans, nil
}

func (f *fakeAssetStore) IsReferenced(_ context.Context, url string) (bool, error) {
	return f.referenced[url], nil
}

func (f *fakeAssetStore) MarkAttached(_ context.Context, url string) error {
	f.attached = append(f.attached, url)
	return nil
}

func (f *fakeAssetStore) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAdminStore struct {
	users map[string]*models.AdminUser
}

func (f *fakeAdminStore) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeAdminStore) Create(_ context.Context, u *models.AdminUser) error {
	u.ID = len(f.users) + 1
	f.users[u.Email] = u
	return nil
}
