package panel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestWorkflow(api *fakeProductAPI) (*Workflow, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewWorkflow(api, catalog.Default(), n, "products"), n
}

func fillDraft(t *testing.T, w *Workflow) {
	t.Helper()
	require.NoError(t, w.Edit(func(d *ProductDraft) {
		d.Name = "Yoga Mat"
		d.Features = "Non-slip\n\n6mm thick"
		d.Price = "24.50"
		d.OriginalPrice = "not a number"
	}))
	require.NoError(t, w.SetCategory("Sports"))
	require.NoError(t, w.SetSubCategory("Fitness"))
}

func existingProduct() *adminapi.Product {
	return &adminapi.Product{
		ID:          42,
		Name:        "Camera",
		Price:       decimal.RequireFromString("300"),
		ImageURL:    "https://cdn.test/camera.png",
		Category:    "Electronics",
		SubCategory: "Cameras",
	}
}

func TestSubmitWithoutImageMakesNoRequest(t *testing.T) {
	api := newFakeProductAPI()
	w, n := newTestWorkflow(api)
	w.OpenCreate()
	fillDraft(t, w)

	err := w.Submit(context.Background())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "imageUrl", ve.Field)
	assert.Zero(t, api.calls())
	assert.Equal(t, "Please upload an image first", n.lastError())
	assert.Equal(t, StateIdle, w.State())
}

func TestSelectFileInCreateModeClearsImage(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	w.OpenCreate()
	require.NoError(t, w.Edit(func(d *ProductDraft) { d.ImageURL = "https://cdn.test/old.png" }))

	require.NoError(t, w.SelectFile("new.png", pngHeader))
	assert.Empty(t, w.Draft().ImageURL)
	assert.Equal(t, StateFileSelected, w.State())
	assert.True(t, strings.HasPrefix(w.Preview(), "data:image/png;base64,"))
}

func TestSelectFileInEditModeKeepsImage(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	w.OpenEdit(existingProduct())
	assert.Equal(t, "https://cdn.test/camera.png", w.Preview())

	require.NoError(t, w.SelectFile("new.png", pngHeader))
	assert.Equal(t, "https://cdn.test/camera.png", w.Draft().ImageURL)
}

func TestSelectFileStates(t *testing.T) {
	api := newFakeProductAPI()
	w, _ := newTestWorkflow(api)
	assert.ErrorIs(t, w.SelectFile("a.png", pngHeader), ErrInvalidState)

	w.OpenCreate()
	require.NoError(t, w.SelectFile("a.png", pngHeader))
	require.NoError(t, w.SelectFile("b.png", pngHeader))

	api.uploadGate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.UploadSelected(context.Background()) }()
	require.Eventually(t, func() bool { return w.State() == StateUploading }, time.Second, time.Millisecond)
	assert.ErrorIs(t, w.SelectFile("c.png", pngHeader), ErrBusy)

	close(api.uploadGate)
	require.NoError(t, <-done)
	require.NoError(t, w.SelectFile("d.png", pngHeader))
	assert.Empty(t, w.Draft().ImageURL)
}

func TestCreateFlow(t *testing.T) {
	api := newFakeProductAPI()
	api.saveMessage = "Product created successfully"
	w, n := newTestWorkflow(api)
	var saved *adminapi.Product
	w.OnSaved = func(p *adminapi.Product) { saved = p }

	w.OpenCreate()
	fillDraft(t, w)
	require.NoError(t, w.SelectFile("mat.png", pngHeader))
	require.NoError(t, w.UploadSelected(context.Background()))
	assert.Equal(t, StateUploaded, w.State())
	assert.Equal(t, api.uploadURL, w.Draft().ImageURL)

	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, api.creates, 1)
	sent := api.creates[0]
	assert.Equal(t, []string{"Non-slip", "6mm thick"}, sent.Features)
	assert.Equal(t, "24.5", sent.Price.String())
	assert.True(t, sent.OriginalPrice.IsZero())
	assert.Equal(t, "Fitness", sent.SubCategory)

	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, ProductDraft{}, w.Draft())
	assert.Empty(t, w.Preview())
	require.NotNil(t, saved)
	assert.Equal(t, "Yoga Mat", saved.Name)
	assert.Contains(t, n.successes, "Product created successfully")
}

func TestEditUsesUpdate(t *testing.T) {
	api := newFakeProductAPI()
	w, _ := newTestWorkflow(api)
	w.OpenEdit(existingProduct())

	require.NoError(t, w.Submit(context.Background()))
	assert.Empty(t, api.creates)
	require.Contains(t, api.updates, 42)
	assert.Equal(t, "https://cdn.test/camera.png", api.updates[42].ImageURL)
	assert.Zero(t, api.uploads)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	api := newFakeProductAPI()
	api.saveErr = &adminapi.ServiceError{Op: "update product", Status: 400, Message: "X"}
	w, n := newTestWorkflow(api)
	w.OpenEdit(existingProduct())
	before := w.Draft()

	err := w.Submit(context.Background())
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "X", n.lastError())
	assert.Equal(t, before, w.Draft())
	assert.Equal(t, StateIdle, w.State())
}

func TestSubmitTransportFailureShowsGenericMessage(t *testing.T) {
	api := newFakeProductAPI()
	api.saveErr = &adminapi.TransportError{Op: "create product", Err: errors.New("connection refused")}
	w, n := newTestWorkflow(api)
	w.OpenCreate()
	fillDraft(t, w)
	require.NoError(t, w.Edit(func(d *ProductDraft) { d.ImageURL = "https://cdn.test/x.png" }))

	assert.Error(t, w.Submit(context.Background()))
	assert.Equal(t, "Failed to save product", n.lastError())
	assert.Equal(t, "Yoga Mat", w.Draft().Name)
}

func TestUploadFailureLeavesImageEmpty(t *testing.T) {
	api := newFakeProductAPI()
	api.uploadErr = &adminapi.ServiceError{Op: "upload image", Status: 502, Message: "cloudinary upload failed: Invalid image file"}
	w, n := newTestWorkflow(api)
	w.OpenCreate()
	require.NoError(t, w.SelectFile("bad.png", []byte("nope")))

	assert.Error(t, w.UploadSelected(context.Background()))
	assert.Empty(t, w.Draft().ImageURL)
	assert.Equal(t, StateFileSelected, w.State())
	assert.Equal(t, "cloudinary upload failed: Invalid image file", n.lastError())
}

func TestUploadRejectsConcurrentCall(t *testing.T) {
	api := newFakeProductAPI()
	api.uploadGate = make(chan struct{})
	w, _ := newTestWorkflow(api)
	w.OpenCreate()
	require.NoError(t, w.SelectFile("a.png", pngHeader))

	done := make(chan error, 1)
	go func() { done <- w.UploadSelected(context.Background()) }()
	require.Eventually(t, func() bool { return w.State() == StateUploading }, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.UploadSelected(context.Background()), ErrBusy)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrBusy)

	close(api.uploadGate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.uploads)
}

func TestCloseDuringUploadDiscardsResult(t *testing.T) {
	api := newFakeProductAPI()
	api.uploadGate = make(chan struct{})
	w, _ := newTestWorkflow(api)
	w.OpenCreate()
	require.NoError(t, w.SelectFile("a.png", pngHeader))

	done := make(chan error, 1)
	go func() { done <- w.UploadSelected(context.Background()) }()
	require.Eventually(t, func() bool { return w.State() == StateUploading }, time.Second, time.Millisecond)

	w.Close()
	close(api.uploadGate)
	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, ProductDraft{}, w.Draft())
}

func TestCategoryChangeClearsSubCategory(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	w.OpenCreate()
	require.NoError(t, w.SetCategory("Fashion"))
	require.NoError(t, w.SetSubCategory("Shoes"))

	require.NoError(t, w.SetCategory("Beauty"))
	assert.Empty(t, w.Draft().SubCategory)

	var ve *ValidationError
	assert.ErrorAs(t, w.SetSubCategory("Shoes"), &ve)
	assert.ErrorAs(t, w.SetCategory("Groceries"), &ve)
}

func TestOpenEditClearsMismatchedSubCategory(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	p := existingProduct()
	p.SubCategory = "Shoes"
	w.OpenEdit(p)
	assert.Empty(t, w.Draft().SubCategory)
	assert.Equal(t, "Electronics", w.Draft().Category)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	api := newFakeProductAPI()
	w, n := newTestWorkflow(api)
	w.OpenCreate()
	require.NoError(t, w.SetCategory("Sports"))
	require.NoError(t, w.Edit(func(d *ProductDraft) { d.ImageURL = "https://cdn.test/x.png" }))

	var ve *ValidationError
	require.ErrorAs(t, w.Submit(context.Background()), &ve)
	assert.Equal(t, "Name", ve.Field)
	assert.NotEmpty(t, n.lastError())
	assert.Zero(t, api.calls())
}

func TestCloseAlwaysResets(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	w.OpenEdit(existingProduct())
	require.NoError(t, w.SelectFile("a.png", pngHeader))

	w.Close()
	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, ProductDraft{}, w.Draft())
	assert.Empty(t, w.Preview())
	assert.ErrorIs(t, w.Edit(func(d *ProductDraft) {}), ErrInvalidState)
}

func TestNotifierMayReadWorkflowState(t *testing.T) {
	api := newFakeProductAPI()
	var w *Workflow
	seen := make(chan State, 8)
	n := newRenderingNotifier(func() {
		seen <- w.State()
		_ = w.Draft()
		_ = w.Preview()
	})
	w = NewWorkflow(api, catalog.Default(), n, "products")
	w.OpenCreate()

	run := func(name string, fn func() error) {
		t.Helper()
		done := make(chan struct{})
		go func() {
			_ = fn()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s did not return while the notifier read state", name)
		}
	}

	run("Submit", func() error { return w.Submit(context.Background()) })
	assert.Equal(t, StateIdle, <-seen)

	require.NoError(t, w.SelectFile("a.png", pngHeader))
	run("UploadSelected", func() error { return w.UploadSelected(context.Background()) })
	assert.Equal(t, StateUploaded, <-seen)

	fillDraft(t, w)
	run("Submit", func() error { return w.Submit(context.Background()) })
	assert.Equal(t, StateClosed, <-seen)
}

func TestEditKeepsCategoryRules(t *testing.T) {
	w, _ := newTestWorkflow(newFakeProductAPI())
	w.OpenCreate()
	require.NoError(t, w.SetCategory("Fashion"))
	require.NoError(t, w.SetSubCategory("Shoes"))

	require.NoError(t, w.Edit(func(d *ProductDraft) { d.Category = "Electronics" }))
	assert.Equal(t, "Electronics", w.Draft().Category)
	assert.Empty(t, w.Draft().SubCategory)

	require.NoError(t, w.Edit(func(d *ProductDraft) {
		d.Category = "Sports"
		d.SubCategory = "Cycling"
	}))
	assert.Equal(t, "Cycling", w.Draft().SubCategory)

	var verr *ValidationError
	err := w.Edit(func(d *ProductDraft) { d.SubCategory = "Shoes" })
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subCategory", verr.Field)
	assert.Equal(t, "Cycling", w.Draft().SubCategory)

	err = w.Edit(func(d *ProductDraft) {
		d.Name = "Helmet"
		d.Category = "Groceries"
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Equal(t, "Sports", w.Draft().Category)
	assert.Equal(t, "Helmet", w.Draft().Name)
}
