package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportEntries() []CatalogEntry {
	return []CatalogEntry{
		{SKU: "A1", Name: "Downlight", Category: "Indoor", NetPrice: 85, GSTAmount: 15, TotalPrice: 100, Specs: "6W"},
		{SKU: "B2", Name: "Track Light", Category: "Indoor", NetPrice: 170, GSTAmount: 30, TotalPrice: 200, Specs: "20W"},
	}
}

func TestQuoteExporter_EmptySelection(t *testing.T) {
	backend := &recordingBackend{}
	x := &QuoteExporter{Backend: backend}

	doc, err := x.Export(context.Background(), nil, 10, QuoteMetadata{})
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySelection)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, ExportEmptySelection, exportErr.Kind)
	assert.Nil(t, backend.last, "no renderer should be created")
}

func TestQuoteExporter_RendererUnavailable(t *testing.T) {
	cause := fmt.Errorf("%w: no browser", ErrRendererUnavailable)

	tests := []struct {
		name    string
		backend RendererBackend
	}{
		{"nil backend", nil},
		{"not available", &recordingBackend{unavailable: cause}},
		{"fails to start", &recordingBackend{finishErr: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := &QuoteExporter{Backend: tt.backend}
			doc, err := x.Export(context.Background(), exportEntries(), 0, QuoteMetadata{})
			assert.Nil(t, doc)

			var exportErr *ExportError
			require.True(t, errors.As(err, &exportErr), "got %v", err)
			assert.Equal(t, ExportRendererUnavailable, exportErr.Kind)
			assert.ErrorIs(t, err, ErrRendererUnavailable)
		})
	}
}

func TestQuoteExporter_OtherRenderFailure(t *testing.T) {
	x := &QuoteExporter{Backend: &recordingBackend{finishErr: errors.New("disk full")}}
	_, err := x.Export(context.Background(), exportEntries(), 0, QuoteMetadata{EstimateID: "EST-9"})
	require.Error(t, err)

	var exportErr *ExportError
	assert.False(t, errors.As(err, &exportErr))
	assert.Contains(t, err.Error(), "EST-9")
	assert.Contains(t, err.Error(), "disk full")
}

func TestQuoteExporter_DrawOrder(t *testing.T) {
	backend := &recordingBackend{}
	x := &QuoteExporter{Backend: backend}

	_, err := x.Export(context.Background(), exportEntries(), 10, QuoteMetadata{CustomerName: "Asha", EstimateID: "EST-25-26-001"})
	require.NoError(t, err)

	r := backend.last
	want := []string{
		"text", "text", "spacer",
		"text", "text", "spacer",
		"table", "spacer", "table", "spacer",
		"text", "text", "text", "text", "text", "text",
	}
	assert.Equal(t, want, r.ops)

	assert.Equal(t, DefaultDocumentTitle, r.texts[0])
	assert.Equal(t, "Estimate No: EST-25-26-001", r.texts[1])
	assert.Equal(t, "Customer: Asha", r.texts[2])
	assert.Equal(t, "Email: N/A", r.texts[3])
	assert.Equal(t, "Terms & Conditions", r.texts[4])
	assert.Len(t, r.texts[5:], len(QuoteTerms))
	assert.Equal(t, "1. "+QuoteTerms[0], r.texts[5])
}

func TestQuoteExporter_TermsOnNewPage(t *testing.T) {
	backend := &recordingBackend{}
	x := &QuoteExporter{Backend: backend, TermsOnNewPage: true, Title: "Custom Title"}

	_, err := x.Export(context.Background(), exportEntries(), 0, QuoteMetadata{})
	require.NoError(t, err)

	assert.Contains(t, backend.last.ops, "page")
	assert.Equal(t, "Custom Title", backend.last.texts[0])
}

func TestQuoteExporter_RowsFollowCatalogOrder(t *testing.T) {
	catalog := []CatalogEntry{{SKU: "A"}, {SKU: "B"}, {SKU: "C"}, {SKU: "D"}, {SKU: "E"}}
	sel := NewSelection()
	for _, i := range []int{4, 1, 3} {
		sel.Toggle(i, len(catalog))
	}

	backend := &recordingBackend{}
	x := &QuoteExporter{Backend: backend}
	_, err := x.Export(context.Background(), sel.Entries(catalog), 0, QuoteMetadata{})
	require.NoError(t, err)

	items := backend.last.tables[0]
	require.Len(t, items.Rows, sel.Len())
	var skus []string
	for _, row := range items.Rows {
		skus = append(skus, row[0])
	}
	assert.Equal(t, []string{"B", "D", "E"}, skus)
}

func TestQuoteExporter_Deterministic(t *testing.T) {
	x := &QuoteExporter{Backend: &recordingBackend{}}
	meta := QuoteMetadata{CustomerName: "Ravi", CustomerEmail: "ravi@example.com", EstimateID: "EST-1"}

	a, err := x.Export(context.Background(), exportEntries(), 5, meta)
	require.NoError(t, err)
	b, err := x.Export(context.Background(), exportEntries(), 5, meta)
	require.NoError(t, err)

	assert.Equal(t, a.Content, b.Content)
	assert.True(t, reflect.DeepEqual(a.Quote, b.Quote))
}

func TestQuoteDocument_Tables(t *testing.T) {
	doc := BuildQuoteDocument("", exportEntries(), 10, QuoteMetadata{EstimateID: "EST/25:1"})

	assert.Equal(t, DefaultDocumentTitle, doc.Title)
	assert.Equal(t, "Estimation-EST-25-1", doc.BaseFilename())

	items := doc.ItemTable()
	assert.True(t, items.ShowHeader)
	require.Len(t, items.Columns, 7)
	span := 0
	for _, c := range items.Columns {
		span += c.Span
	}
	assert.Equal(t, 12, span)
	assert.Equal(t, []string{"A1", "Downlight", "Indoor", "₹85.00", "₹15.00", "₹100.00", "6W"}, items.Rows[0])

	summary := doc.SummaryTable()
	assert.False(t, summary.ShowHeader)
	assert.True(t, summary.EmphasizeLastRow)
	assert.Equal(t, [][]string{
		{"Total Net Price", "₹255.00"},
		{"Total GST", "₹45.00"},
		{"Total (before discount)", "₹300.00"},
		{"Less: Discount (10%)", "₹30.00"},
		{"Grand Total", "₹270.00"},
	}, summary.Rows)
}

func TestQuoteMetadata_WithDefaults(t *testing.T) {
	m := QuoteMetadata{CustomerName: "  ", CustomerEmail: "a@b.c"}.WithDefaults()
	assert.Equal(t, NotAvailable, m.CustomerName)
	assert.Equal(t, "a@b.c", m.CustomerEmail)
	assert.Equal(t, DefaultEstimateID, m.EstimateID)
}

func TestExportErrorKind_String(t *testing.T) {
	assert.Equal(t, "EmptySelection", ExportEmptySelection.String())
	assert.Equal(t, "RendererUnavailable", ExportRendererUnavailable.String())
	assert.Equal(t, "ExportErrorKind(9)", ExportErrorKind(9).String())
}
