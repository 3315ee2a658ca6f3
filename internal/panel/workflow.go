package panel

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

// State is where the product workflow currently is.
type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateUploading
	StateUploaded
	StateSubmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file_selected"
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ProductAPI is the subset of the admin API the workflow calls.
type ProductAPI interface {
	UploadImage(ctx context.Context, filename string, data []byte, folder string) (*adminapi.UploadResult, error)
	CreateProduct(ctx context.Context, payload *adminapi.ProductPayload) (*adminapi.SaveResult, error)
	UpdateProduct(ctx context.Context, id int, payload *adminapi.ProductPayload) (*adminapi.SaveResult, error)
}

type selectedFile struct {
	name string
	data []byte
}

// Workflow drives the add/edit product dialog: pick an image, upload it,
// then save the product. At most one upload or submit runs at a time.
type Workflow struct {
	api      ProductAPI
	taxonomy *catalog.Taxonomy
	notifier Notifier
	validate *validator.Validate
	folder   string

	// OnSaved runs after a successful save so the caller can refresh its list.
	OnSaved func(product *adminapi.Product)

	mu      sync.Mutex
	state   State
	session uint64
	draft   ProductDraft
	file    *selectedFile
	preview string
}

// NewWorkflow constructs a closed Workflow that uploads into folder.
func NewWorkflow(api ProductAPI, taxonomy *catalog.Taxonomy, notifier Notifier, folder string) *Workflow {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Workflow{
		api:      api,
		taxonomy: taxonomy,
		notifier: notifier,
		validate: validator.New(),
		folder:   folder,
		state:    StateClosed,
	}
}

// OpenCreate opens the dialog with an empty draft.
func (w *Workflow) OpenCreate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.state = StateIdle
}

// OpenEdit opens the dialog with a draft copied from p. The current image is
// used as the preview, so saving without a new upload is allowed.
func (w *Workflow) OpenEdit(p *adminapi.Product) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.draft = DraftFromProduct(p)
	if w.draft.SubCategory != "" && !w.taxonomy.Allows(w.draft.Category, w.draft.SubCategory) {
		log.Warn().
			Int("product_id", p.ID).
			Str("category", p.Category).
			Str("sub_category", p.SubCategory).
			Msg("Stored sub category no longer belongs to its category, clearing it")
		w.draft.SubCategory = ""
	}
	w.preview = p.ImageURL
	w.state = StateIdle
}

// Close discards the draft and any selected file, whatever the current state.
// Uploads or saves still in flight are ignored when they finish.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.state = StateClosed
}

func (w *Workflow) reset() {
	w.session++
	w.draft = ProductDraft{}
	w.file = nil
	w.preview = ""
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current draft.
func (w *Workflow) Draft() ProductDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Preview returns the image preview: a data URL for a selected file, or the
// hosted URL of the current image.
func (w *Workflow) Preview() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// Edit applies fn to the draft. The ID cannot change. Category and sub
// category follow the SetCategory and SetSubCategory rules: a new category
// drops a sub category it does not offer, and an unknown category or a
// foreign sub category is rejected and the previous value kept.
func (w *Workflow) Edit(fn func(d *ProductDraft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrInvalidState
	}
	before := w.draft
	fn(&w.draft)
	w.draft.ID = before.ID

	d := &w.draft
	if d.Category != before.Category {
		if d.Category != "" && !w.taxonomy.HasCategory(d.Category) {
			d.Category, d.SubCategory = before.Category, before.SubCategory
			return &ValidationError{Field: "category", Message: "Unknown category"}
		}
		if !w.taxonomy.Allows(d.Category, d.SubCategory) {
			d.SubCategory = ""
		}
		return nil
	}
	if d.SubCategory != before.SubCategory && !w.taxonomy.Allows(d.Category, d.SubCategory) {
		d.SubCategory = before.SubCategory
		return &ValidationError{Field: "subCategory", Message: "Sub category does not belong to the selected category"}
	}
	return nil
}

// SetCategory changes the category and clears the sub category.
func (w *Workflow) SetCategory(category string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrInvalidState
	}
	if category != "" && !w.taxonomy.HasCategory(category) {
		return &ValidationError{Field: "category", Message: "Unknown category"}
	}
	w.draft.Category = category
	w.draft.SubCategory = ""
	return nil
}

// SetSubCategory sets a sub category belonging to the current category.
func (w *Workflow) SetSubCategory(sub string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrInvalidState
	}
	if !w.taxonomy.Allows(w.draft.Category, sub) {
		return &ValidationError{Field: "subCategory", Message: "Sub category does not belong to the selected category"}
	}
	w.draft.SubCategory = sub
	return nil
}

// SelectFile records a file for upload and builds its preview. In create
// mode any previously uploaded image is dropped so it must be uploaded again.
func (w *Workflow) SelectFile(name string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdle, StateFileSelected, StateUploaded:
	case StateUploading, StateSubmitting:
		return ErrBusy
	default:
		return ErrInvalidState
	}
	if len(data) == 0 {
		return &ValidationError{Field: "file", Message: "Selected file is empty"}
	}

	w.file = &selectedFile{name: name, data: data}
	w.preview = dataURL(data)
	if !w.draft.IsEdit() {
		w.draft.ImageURL = ""
	}
	w.state = StateFileSelected
	return nil
}

// UploadSelected uploads the selected file once and stores the hosted URL
// in the draft.
func (w *Workflow) UploadSelected(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.state == StateUploading || w.state == StateSubmitting:
		w.mu.Unlock()
		return ErrBusy
	case w.file == nil || w.state == StateClosed:
		w.mu.Unlock()
		return ErrNoFile
	}
	file := w.file
	session := w.session
	w.state = StateUploading
	w.mu.Unlock()

	res, err := w.api.UploadImage(ctx, file.name, file.data, w.folder)

	w.mu.Lock()
	if session != w.session {
		w.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		w.state = StateFileSelected
		w.mu.Unlock()
		w.notifier.Error(userMessage(err, "Failed to upload image"))
		return err
	}
	w.draft.ImageURL = res.URL
	w.state = StateUploaded
	w.mu.Unlock()

	w.notifier.Success("Image uploaded")
	return nil
}

// Submit validates the draft and creates or updates the product. On success
// the dialog is reset and closed and OnSaved runs. On failure the draft is
// kept so the user can retry.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateClosed:
		w.mu.Unlock()
		return ErrInvalidState
	case StateUploading, StateSubmitting:
		w.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(w.draft.ImageURL) == "" {
		err := &ValidationError{Field: "imageUrl", Message: "Please upload an image first"}
		w.mu.Unlock()
		w.notifier.Error(err.Message)
		return err
	}
	payload := w.draft.Payload()
	if err := w.validatePayload(payload); err != nil {
		w.mu.Unlock()
		w.notifier.Error(userMessage(err, "Invalid product"))
		return err
	}

	id := w.draft.ID
	session := w.session
	prev := w.state
	w.state = StateSubmitting
	w.mu.Unlock()

	var (
		res *adminapi.SaveResult
		err error
	)
	if id > 0 {
		res, err = w.api.UpdateProduct(ctx, id, payload)
	} else {
		res, err = w.api.CreateProduct(ctx, payload)
	}

	w.mu.Lock()
	if session != w.session {
		w.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		w.state = prev
		w.mu.Unlock()
		w.notifier.Error(userMessage(err, "Failed to save product"))
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = "Product saved"
	}
	w.reset()
	w.state = StateClosed
	onSaved := w.OnSaved
	w.mu.Unlock()

	w.notifier.Success(msg)
	if onSaved != nil {
		onSaved(&res.Product)
	}
	return nil
}

func (w *Workflow) validatePayload(p *adminapi.ProductPayload) error {
	if err := w.validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Field() + " is " + fieldErrs[0].Tag()}
		}
		return &ValidationError{Field: "product", Message: err.Error()}
	}
	if !w.taxonomy.HasCategory(p.Category) {
		return &ValidationError{Field: "category", Message: "Unknown category"}
	}
	if !w.taxonomy.Allows(p.Category, p.SubCategory) {
		return &ValidationError{Field: "subCategory", Message: "Sub category does not belong to the selected category"}
	}
	return nil
}

func dataURL(data []byte) string {
	mime := mimetype.Detect(data)
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
