package panel

import (
	"context"
	"sync"

	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// renderingNotifier reads panel state from inside every callback, the way a
// UI refresh would.
type renderingNotifier struct {
	render func()
	calls  chan string
}

func newRenderingNotifier(render func()) *renderingNotifier {
	return &renderingNotifier{render: render, calls: make(chan string, 8)}
}

func (n *renderingNotifier) Success(msg string) {
	n.render()
	n.calls <- msg
}

func (n *renderingNotifier) Error(msg string) {
	n.render()
	n.calls <- msg
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

type fakeProductAPI struct {
	mu sync.Mutex

	uploadURL   string
	uploadErr   error
	uploadGate  chan struct{}
	saveErr     error
	saveMessage string

	uploads int
	creates []*adminapi.ProductPayload
	updates map[int]*adminapi.ProductPayload
}

func newFakeProductAPI() *fakeProductAPI {
	return &fakeProductAPI{uploadURL: "https://cdn.test/products/new.png", updates: map[int]*adminapi.ProductPayload{}}
}

func (f *fakeProductAPI) UploadImage(ctx context.Context, _ string, _ []byte, _ string) (*adminapi.UploadResult, error) {
	f.mu.Lock()
	f.uploads++
	gate := f.uploadGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &adminapi.UploadResult{URL: f.uploadURL, PublicID: "products/new"}, nil
}

func (f *fakeProductAPI) CreateProduct(_ context.Context, p *adminapi.ProductPayload) (*adminapi.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, p)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &adminapi.SaveResult{Message: f.saveMessage, Product: adminapi.Product{ID: 1, Name: p.Name}}, nil
}

func (f *fakeProductAPI) UpdateProduct(_ context.Context, id int, p *adminapi.ProductPayload) (*adminapi.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = p
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &adminapi.SaveResult{Message: f.saveMessage, Product: adminapi.Product{ID: id, Name: p.Name}}, nil
}

func (f *fakeProductAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads + len(f.creates) + len(f.updates)
}

type listCall struct {
	query adminapi.NewsletterQuery
	reply chan listReply
}

type listReply struct {
	page *adminapi.NewsletterPage
	err  error
}

// scriptedNewsletterAPI hands every call to the test through calls, which
// answers on the call's reply channel.
type scriptedNewsletterAPI struct {
	calls chan listCall
}

func (s *scriptedNewsletterAPI) ListNewsletter(ctx context.Context, q adminapi.NewsletterQuery) (*adminapi.NewsletterPage, error) {
	c := listCall{query: q, reply: make(chan listReply, 1)}
	s.calls <- c
	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingNewsletterAPI answers immediately and records queries.
type recordingNewsletterAPI struct {
	mu      sync.Mutex
	queries []adminapi.NewsletterQuery
	page    *adminapi.NewsletterPage
	err     error
}

func (r *recordingNewsletterAPI) ListNewsletter(_ context.Context, q adminapi.NewsletterQuery) (*adminapi.NewsletterPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.err != nil {
		return nil, r.err
	}
	return r.page, nil
}

func (r *recordingNewsletterAPI) recorded() []adminapi.NewsletterQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]adminapi.NewsletterQuery(nil), r.queries...)
}
