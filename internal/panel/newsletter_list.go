package panel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

// DefaultSearchDebounce is the quiet period before a search is fetched.
const DefaultSearchDebounce = 500 * time.Millisecond

// EmptyNewsletterMessage is shown in the single placeholder row of an empty list.
const EmptyNewsletterMessage = "No subscribers found"

// NewsletterAPI fetches newsletter pages.
type NewsletterAPI interface {
	ListNewsletter(ctx context.Context, q adminapi.NewsletterQuery) (*adminapi.NewsletterPage, error)
}

// Row is one rendered table row.
type Row struct {
	ID          int64
	Email       string
	CreatedAt   string
	Placeholder string
}

// NewsletterList holds the admin subscriber table: the current page, the
// search box text and the debounce timer. Every fetch gets a sequence number
// and only the latest one may update the table.
type NewsletterList struct {
	api      NewsletterAPI
	notifier Notifier
	limit    int
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	seq        uint64
	timer      *time.Timer
	search     string
	entries    []adminapi.NewsletterEntry
	pagination adminapi.Pagination
}

// NewNewsletterList constructs a NewsletterList. Call Close to stop a
// pending debounced search.
func NewNewsletterList(api NewsletterAPI, notifier Notifier, limit int, debounce time.Duration) *NewsletterList {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if limit <= 0 {
		limit = 10
	}
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &NewsletterList{
		api:        api,
		notifier:   notifier,
		limit:      limit,
		debounce:   debounce,
		ctx:        ctx,
		cancel:     cancel,
		pagination: adminapi.Pagination{CurrentPage: 1, ItemsPerPage: limit},
	}
}

// Load fetches page with search and replaces the table on success. On
// failure the previous rows stay. A response overtaken by a newer Load is
// dropped with ErrStale.
func (l *NewsletterList) Load(ctx context.Context, page int, search string) error {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	res, err := l.api.ListNewsletter(ctx, adminapi.NewsletterQuery{Page: page, Limit: l.limit, Search: search})

	l.mu.Lock()
	if seq != l.seq {
		latest := l.seq
		l.mu.Unlock()
		log.Debug().Uint64("seq", seq).Uint64("latest", latest).Msg("Discarding stale newsletter response")
		return ErrStale
	}
	if err != nil {
		l.mu.Unlock()
		l.notifier.Error(userMessage(err, "Failed to load subscribers"))
		return err
	}
	l.entries = res.Entries
	l.pagination = res.Pagination
	l.mu.Unlock()
	return nil
}

// Search records the search box text and schedules a fetch of page 1 once
// no further keystroke arrives within the debounce period.
func (l *NewsletterList) Search(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.search = text
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() {
		if l.ctx.Err() != nil {
			return
		}
		_ = l.Load(l.ctx, 1, text)
	})
}

// GoToPage loads page with the current search text.
func (l *NewsletterList) GoToPage(ctx context.Context, page int) error {
	l.mu.Lock()
	search := l.search
	l.mu.Unlock()
	return l.Load(ctx, page, search)
}

// Entries returns the rows of the current page.
func (l *NewsletterList) Entries() []adminapi.NewsletterEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]adminapi.NewsletterEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Pagination returns the pagination of the current page.
func (l *NewsletterList) Pagination() adminapi.Pagination {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pagination
}

// SearchText returns the current search box text.
func (l *NewsletterList) SearchText() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.search
}

// Rows renders the table: one row per entry, or a single placeholder row.
func (l *NewsletterList) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return []Row{{Placeholder: EmptyNewsletterMessage}}
	}
	rows := make([]Row, len(l.entries))
	for i, e := range l.entries {
		rows[i] = Row{ID: e.ID, Email: e.Email, CreatedAt: e.CreatedAt.Format("2006-01-02 15:04")}
	}
	return rows
}

// Close stops any pending debounced search.
func (l *NewsletterList) Close() {
	l.cancel()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
}
