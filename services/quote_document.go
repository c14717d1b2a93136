package services

import (
	"fmt"
	"strings"
)

const (
	DefaultEstimateID    = "EST-001"
	DefaultDocumentTitle = "Lighting Fixture Estimation"
)

// QuoteTerms are printed, in order, at the end of every estimate.
var QuoteTerms = []string{
	"This estimate is valid for 15 days from the date of issue.",
	"Payment: 50% advance along with the purchase order, balance 50% before dispatch.",
	"Installation, wiring and civil work are not included unless quoted separately.",
	"Goods once sold will not be taken back or exchanged.",
	"Discounts shown are subject to management approval and may be revised.",
}

// QuoteMetadata identifies the customer and the estimate on an export.
type QuoteMetadata struct {
	CustomerName  string
	CustomerEmail string
	EstimateID    string
}

// WithDefaults fills blank fields with their placeholders.
func (m QuoteMetadata) WithDefaults() QuoteMetadata {
	m.CustomerName = defaultString(m.CustomerName, NotAvailable)
	m.CustomerEmail = defaultString(m.CustomerEmail, NotAvailable)
	m.EstimateID = defaultString(m.EstimateID, DefaultEstimateID)
	return m
}

func defaultString(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// QuoteDocument is the logical content of an exported estimate. It holds no
// timestamps, so identical inputs always produce identical content.
type QuoteDocument struct {
	Title     string
	Metadata  QuoteMetadata
	Items     []CatalogEntry
	Breakdown QuoteBreakdown
	Terms     []string
}

// BuildQuoteDocument assembles the estimate for the selected entries, which
// must already be in ascending catalog order.
func BuildQuoteDocument(title string, entries []CatalogEntry, discountPercent float64, meta QuoteMetadata) QuoteDocument {
	return QuoteDocument{
		Title:     defaultString(title, DefaultDocumentTitle),
		Metadata:  meta.WithDefaults(),
		Items:     append([]CatalogEntry(nil), entries...),
		Breakdown: CalcQuoteBreakdown(entries, discountPercent),
		Terms:     append([]string(nil), QuoteTerms...),
	}
}

// BaseFilename is the suggested download name without extension.
func (d QuoteDocument) BaseFilename() string {
	return "Estimation-" + sanitizeFilename(d.Metadata.EstimateID)
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	return strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", "\"", "", "\n", "", "\r", "").Replace(s)
}

// itemTableColumns lays the item table out on a 12-column grid.
var itemTableColumns = []TableColumn{
	{Title: "SKU", Span: 1, Align: AlignLeft},
	{Title: "Name", Span: 2, Align: AlignLeft},
	{Title: "Category", Span: 1, Align: AlignLeft},
	{Title: "Net Price", Span: 2, Align: AlignRight},
	{Title: "GST Amount", Span: 2, Align: AlignRight},
	{Title: "Total Price", Span: 2, Align: AlignRight},
	{Title: "Specs", Span: 2, Align: AlignLeft},
}

// ItemTable returns the itemized table, one row per selected entry.
func (d QuoteDocument) ItemTable() Table {
	rows := make([][]string, 0, len(d.Items))
	for _, e := range d.Items {
		rows = append(rows, []string{
			e.SKU,
			e.Name,
			e.Category,
			FormatINR(e.NetPrice),
			FormatINR(e.GSTAmount),
			FormatINR(e.TotalPrice),
			e.Specs,
		})
	}
	return Table{Columns: itemTableColumns, Rows: rows, ShowHeader: true}
}

// SummaryTable returns the totals block with the grand total last.
func (d QuoteDocument) SummaryTable() Table {
	b := d.Breakdown
	return Table{
		Columns: []TableColumn{
			{Title: "Description", Span: 9, Align: AlignRight},
			{Title: "Amount", Span: 3, Align: AlignRight},
		},
		Rows: [][]string{
			{"Total Net Price", FormatINR(b.TotalNet)},
			{"Total GST", FormatINR(b.TotalGST)},
			{"Total (before discount)", FormatINR(b.Subtotal)},
			{fmt.Sprintf("Less: Discount (%s)", FormatPercent(b.DiscountPercent)), FormatINR(b.DiscountAmount)},
			{"Grand Total", FormatINR(b.GrandTotal)},
		},
		EmphasizeLastRow: true,
	}
}

// Draw issues the estimate to r: title, customer, items, summary, terms.
func (d QuoteDocument) Draw(r Renderer, termsOnNewPage bool) {
	r.DrawText(TextBlock{Text: d.Title, Size: 16, Bold: true, Align: AlignCenter})
	r.DrawText(TextBlock{Text: "Estimate No: " + d.Metadata.EstimateID, Size: 10, Align: AlignCenter})
	r.DrawSpacer(4)

	r.DrawText(TextBlock{Text: "Customer: " + d.Metadata.CustomerName, Size: 9})
	r.DrawText(TextBlock{Text: "Email: " + d.Metadata.CustomerEmail, Size: 9})
	r.DrawSpacer(4)

	r.DrawTable(d.ItemTable())
	r.DrawSpacer(6)

	r.DrawTable(d.SummaryTable())

	if termsOnNewPage {
		r.NewPage()
	} else {
		r.DrawSpacer(8)
	}

	r.DrawText(TextBlock{Text: "Terms & Conditions", Size: 10, Bold: true})
	for i, t := range d.Terms {
		r.DrawText(TextBlock{Text: fmt.Sprintf("%d. %s", i+1, t), Size: 8})
	}
}
