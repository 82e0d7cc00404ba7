package bill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/billedapp/expense-portal/internal/dom"
)

// Route identifiers the external router understands.
const (
	RouteBills   = "#employee/bills"
	RouteNewBill = "#employee/bill/new"
)

// NavigateFunc transitions the visible view to a destination.
type NavigateFunc func(route string)

// Markup contract with the view layer.
const (
	TestIDBtnNewBill = "btn-new-bill"
	TestIDIconEye    = "icon-eye"
	TestIDModalFile  = "modaleFile"
	AttrBillID       = "data-bill-id"
	AttrBillURL      = "data-bill-url"
)

// previewWidthPct caps the injected receipt image relative to the modal.
const previewWidthPct = 60

// ListPipeline sits between the bill-list view and the store: it fetches
// raw bill records, projects them for display, and forwards the view's
// pass-through actions.
type ListPipeline struct {
	doc      *dom.Document
	nav      NavigateFunc
	store    Store
	log      *slog.Logger
	previews map[string]string // bill ID -> receipt file URL
}

// NewListPipeline creates a list pipeline logging to the default logger.
func NewListPipeline(doc *dom.Document, nav NavigateFunc, store Store) *ListPipeline {
	return NewListPipelineWithLogger(doc, nav, store, slog.Default())
}

// NewListPipelineWithLogger creates a list pipeline with an explicit
// logger, used by tests to observe the diagnostic output.
func NewListPipelineWithLogger(doc *dom.Document, nav NavigateFunc, store Store, log *slog.Logger) *ListPipeline {
	return &ListPipeline{
		doc:      doc,
		nav:      nav,
		store:    store,
		log:      log,
		previews: make(map[string]string),
	}
}

// RetrieveBills fetches the raw bill records and projects each for
// display. A record whose date cannot be formatted keeps its raw date
// and the failure is logged, never propagated; a store failure is
// returned to the caller. A missing store resolves to an empty list so
// the page stays usable before the store is wired.
func (p *ListPipeline) RetrieveBills(ctx context.Context) ([]FormattedBill, error) {
	if p.store == nil {
		return []FormattedBill{}, nil
	}

	raw, err := p.store.Bills().List(ctx)
	if err != nil {
		return nil, err
	}

	formatted := make([]FormattedBill, 0, len(raw))
	for _, b := range raw {
		f, err := Format(b)
		if err != nil {
			p.log.Error("formatting bill date", "error", err, "bill", b.ID)
		}
		formatted = append(formatted, f)
		if b.ID != "" {
			p.previews[b.ID] = b.FileURL
		}
	}
	p.log.Info("bills retrieved", "length", len(formatted))
	return formatted, nil
}

// NavigateToNewBill switches the view to the new-bill form.
func (p *ListPipeline) NavigateToNewBill() {
	p.nav(RouteNewBill)
}

// OpenReceiptPreview shows the receipt image behind a list row's eye
// trigger in the proof modal. The URL is resolved from the preview table
// by bill ID, falling back to the trigger's data attribute (the wire
// contract with the rendered markup). Missing URL or missing modal makes
// this a no-op; the rest of the page must keep working.
func (p *ListPipeline) OpenReceiptPreview(trigger *dom.Element) {
	if trigger == nil {
		return
	}
	url := p.previews[trigger.Attr(AttrBillID)]
	if url == "" {
		url = trigger.Attr(AttrBillURL)
	}
	modal := p.doc.QueryTestID(TestIDModalFile)
	if url == "" || modal == nil {
		return
	}

	imgWidth := modal.Width() * previewWidthPct / 100
	modal.SetHTML(fmt.Sprintf(
		`<div style='text-align: center;' class="bill-proof-container"><img width=%d src=%s alt="Bill" /></div>`,
		imgWidth, url,
	))
	modal.AddClass("show")
	modal.SetStyle("display", "block")
}
