package bill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/billedapp/expense-portal/internal/dom"
)

// Form field test identifiers, shared with the rendered new-bill form.
const (
	TestIDFile        = "file"
	TestIDExpenseType = "expense-type"
	TestIDExpenseName = "expense-name"
	TestIDAmount      = "amount"
	TestIDDatepicker  = "datepicker"
	TestIDVAT         = "vat"
	TestIDPct         = "pct"
	TestIDCommentary  = "commentary"
)

// DefaultPct is the business default commission rate applied when the
// percentage field is empty or unparseable.
const DefaultPct = 20

var (
	// ErrInvalidFileFormat rejects receipt files outside the allow-list.
	ErrInvalidFileFormat = errors.New("Invalid file format")

	// ErrNoUpload rejects a form submission with no uploaded receipt.
	ErrNoUpload = errors.New("no uploaded receipt file")
)

// allowedExtensions is the receipt file allow-list, keyed by lower-case
// extension without the dot.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// ValidFileName reports whether the file name carries an allowed image
// extension. The check is on the name, not the declared MIME type.
func ValidFileName(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return allowedExtensions[ext]
}

// ParseAmount parses a monetary form field. Empty input stays absent
// rather than becoming 0.
func ParseAmount(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &amount
}

// ParsePct parses the percentage form field, falling back to DefaultPct
// on empty or unparseable input.
func ParsePct(value string) int {
	pct, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return DefaultPct
	}
	return pct
}

// UploadState names the pipeline's position in the upload/submit flow.
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateValidating UploadState = "validating"
	StateUploading  UploadState = "uploading"
	StateUploaded   UploadState = "uploaded"
	StateSubmitting UploadState = "submitting"
)

// NewBillPipeline validates a chosen receipt file, uploads it ahead of
// form submission, and submits the completed expense record. The upload
// result is the only memory carried between the two steps; its absence
// is explicit, so a submit without a prior successful upload is rejected
// cleanly instead of sending empty file fields.
type NewBillPipeline struct {
	doc     *dom.Document
	nav     NavigateFunc
	store   Store
	session *Session
	log     *slog.Logger

	mu     sync.Mutex
	state  UploadState
	upload *UploadResult
}

// NewNewBillPipeline creates a new-bill pipeline logging to the default
// logger.
func NewNewBillPipeline(doc *dom.Document, nav NavigateFunc, store Store, session *Session) *NewBillPipeline {
	return NewNewBillPipelineWithLogger(doc, nav, store, session, slog.Default())
}

// NewNewBillPipelineWithLogger creates a new-bill pipeline with an
// explicit logger, used by tests to observe the diagnostic output.
func NewNewBillPipelineWithLogger(doc *dom.Document, nav NavigateFunc, store Store, session *Session, log *slog.Logger) *NewBillPipeline {
	return &NewBillPipeline{
		doc:     doc,
		nav:     nav,
		store:   store,
		session: session,
		log:     log,
		state:   StateIdle,
	}
}

// State returns the pipeline's current position in the upload/submit
// flow.
func (p *NewBillPipeline) State() UploadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Upload returns the stored file reference from the last successful
// upload, or nil.
func (p *NewBillPipeline) Upload() *UploadResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.upload
}

// HandleChangeFile validates the chosen file and uploads it to the
// store. A file outside the allow-list is logged and rejected before any
// store call. An upload rejection is logged with the store's error kept
// intact and clears the pending draft. The mutex serializes a
// reselection against an in-flight upload: the last completed upload
// wins deterministically.
func (p *NewBillPipeline) HandleChangeFile(ctx context.Context, fileName string, data []byte, contentType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateValidating
	if !ValidFileName(fileName) {
		p.log.Error("Invalid file format", "file", fileName)
		p.state = StateIdle
		return ErrInvalidFileFormat
	}

	p.state = StateUploading
	result, err := p.store.Bills().CreateFile(ctx, CreateFileRequest{
		FileName:    fileName,
		FileData:    data,
		ContentType: contentType,
		Email:       p.session.Email,
	})
	if err != nil {
		p.log.Error("uploading receipt file", "error", err)
		p.state = StateIdle
		p.upload = nil
		return err
	}

	p.upload = result
	p.state = StateUploaded
	p.log.Info("receipt file uploaded", "fileUrl", result.FileURL)
	return nil
}

// HandleSubmit reads the completed form, assembles the bill record and
// upserts it through the store, then navigates back to the bill list. An
// update rejection is logged and returned; the user retries by
// resubmitting the form.
func (p *NewBillPipeline) HandleSubmit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.upload == nil {
		p.log.Error("submitting bill without an uploaded receipt")
		return ErrNoUpload
	}
	p.state = StateSubmitting

	date := p.fieldValue(TestIDDatepicker)
	b := Bill{
		Email:      p.session.Email,
		Type:       p.fieldValue(TestIDExpenseType),
		Name:       p.fieldValue(TestIDExpenseName),
		Amount:     ParseAmount(p.fieldValue(TestIDAmount)),
		Date:       date,
		VAT:        ParseAmount(p.fieldValue(TestIDVAT)),
		Pct:        ParsePct(p.fieldValue(TestIDPct)),
		Commentary: p.fieldValue(TestIDCommentary),
		FileURL:    p.upload.FileURL,
		FileName:   p.upload.FileName,
		Status:     StatusPending,
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding bill: %w", err)
	}

	p.log.Info("submitting bill", "timestamp", date)
	if _, err := p.store.Bills().Update(ctx, UpdateRequest{Data: data, Selector: p.upload.Key}); err != nil {
		p.log.Error("updating bill", "error", err)
		return err
	}

	p.nav(RouteBills)
	return nil
}

// fieldValue reads a form field by test identifier; a missing element
// reads as empty.
func (p *NewBillPipeline) fieldValue(testID string) string {
	el := p.doc.QueryTestID(testID)
	if el == nil {
		return ""
	}
	return el.Value()
}
