package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Align is the horizontal alignment of text or a table column.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextBlock is a single line or paragraph of text. Long text wraps.
type TextBlock struct {
	Text  string
	Size  float64
	Bold  bool
	Align Align
}

// TableColumn describes one column; spans are on a 12-column grid.
type TableColumn struct {
	Title string
	Span  int
	Align Align
}

// Table is a grid of text cells. Cells wrap instead of truncating and the
// table may continue across pages.
type Table struct {
	Columns          []TableColumn
	Rows             [][]string
	ShowHeader       bool
	EmphasizeLastRow bool
}

// Renderer is the drawing surface an estimate is laid out on.
type Renderer interface {
	DrawText(block TextBlock)
	DrawTable(table Table)
	DrawSpacer(height float64)
	NewPage()
	// Finish lays out the drawn content and returns the encoded document.
	Finish(ctx context.Context) ([]byte, error)
}

// RendererBackend creates renderers for one output format.
type RendererBackend interface {
	Name() string
	// Available returns an error wrapping ErrRendererUnavailable when the
	// backend cannot run in this environment.
	Available() error
	NewRenderer() Renderer
	ContentType() string
	Extension() string
}

var (
	ErrEmptySelection      = errors.New("no catalog items selected")
	ErrRendererUnavailable = errors.New("document renderer unavailable")
)

// ExportErrorKind classifies why an export was rejected.
type ExportErrorKind int

const (
	ExportEmptySelection ExportErrorKind = iota + 1
	ExportRendererUnavailable
)

func (k ExportErrorKind) String() string {
	switch k {
	case ExportEmptySelection:
		return "EmptySelection"
	case ExportRendererUnavailable:
		return "RendererUnavailable"
	}
	return fmt.Sprintf("ExportErrorKind(%d)", int(k))
}

// ExportError is returned when no artifact could be produced.
type ExportError struct {
	Kind ExportErrorKind
	Err  error
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("export estimate: %s", e.Kind)
	}
	return fmt.Sprintf("export estimate: %s: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (e *ExportError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case ExportEmptySelection:
		sentinel = ErrEmptySelection
	case ExportRendererUnavailable:
		sentinel = ErrRendererUnavailable
	}
	errs := make([]error, 0, 2)
	for _, err := range []error{sentinel, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Document is a finished, downloadable estimate.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	PageCount   int
	Quote       QuoteDocument
}

// QuoteExporter turns a selection into a rendered estimate.
type QuoteExporter struct {
	Backend        RendererBackend
	Title          string
	TermsOnNewPage bool
}

// Export validates the request, draws the estimate and waits for the
// renderer to finish. entries must be in ascending catalog order.
func (x *QuoteExporter) Export(ctx context.Context, entries []CatalogEntry, discountPercent float64, meta QuoteMetadata) (*Document, error) {
	if len(entries) == 0 {
		return nil, &ExportError{Kind: ExportEmptySelection}
	}
	if x.Backend == nil {
		return nil, &ExportError{Kind: ExportRendererUnavailable, Err: errors.New("no renderer configured")}
	}
	if err := x.Backend.Available(); err != nil {
		log.Printf("export: renderer %q unavailable: %v", x.Backend.Name(), err)
		return nil, &ExportError{Kind: ExportRendererUnavailable, Err: err}
	}

	doc := BuildQuoteDocument(x.Title, entries, discountPercent, meta)
	r := x.Backend.NewRenderer()
	doc.Draw(r, x.TermsOnNewPage)

	content, err := r.Finish(ctx)
	if err != nil {
		if errors.Is(err, ErrRendererUnavailable) {
			log.Printf("export: renderer %q failed to start: %v", x.Backend.Name(), err)
			return nil, &ExportError{Kind: ExportRendererUnavailable, Err: err}
		}
		return nil, fmt.Errorf("render estimate %s: %w", doc.Metadata.EstimateID, err)
	}

	out := &Document{
		Filename:    doc.BaseFilename() + "." + x.Backend.Extension(),
		ContentType: x.Backend.ContentType(),
		Content:     content,
		Quote:       doc,
	}
	if out.ContentType == pdfContentType {
		out.PageCount = pdfPageCount(content)
	}
	return out, nil
}

const pdfContentType = "application/pdf"

func init() {
	api.DisableConfigDir()
}

// pdfPageCount reads the page count back from a rendered PDF, or 0 if it
// cannot be parsed.
func pdfPageCount(content []byte) int {
	n, err := api.PageCount(bytes.NewReader(content), nil)
	if err != nil {
		log.Printf("export: could not count PDF pages: %v", err)
		return 0
	}
	return n
}
