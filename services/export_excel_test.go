package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func exportExcel(t *testing.T, entries []CatalogEntry, discount float64, meta QuoteMetadata) *excelize.File {
	t.Helper()
	x := &QuoteExporter{Backend: ExcelBackend{}}
	doc, err := x.Export(context.Background(), entries, discount, meta)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if doc.ContentType != excelContentType {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
	if len(doc.Content) == 0 {
		t.Fatal("Export() returned empty bytes")
	}

	// Verify it's a valid Excel file
	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExcelBackend_Layout(t *testing.T) {
	f := exportExcel(t, exportEntries(), 10, QuoteMetadata{CustomerName: "Asha", EstimateID: "EST-25-26-004"})

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != excelSheetName {
		t.Fatalf("expected single sheet %q, got %v", excelSheetName, sheets)
	}

	cells := map[string]string{
		"A1":  DefaultDocumentTitle,
		"A2":  "Estimate No: EST-25-26-004",
		"A4":  "Customer: Asha",
		"A5":  "Email: N/A",
		"A7":  "SKU",
		"G7":  "Specs",
		"A8":  "A1",
		"B8":  "Downlight",
		"F8":  "₹100.00",
		"A9":  "B2",
		"A11": "Total Net Price",
		"G11": "₹255.00",
		"A14": "Less: Discount (10%)",
		"G14": "₹30.00",
		"A15": "Grand Total",
		"G15": "₹270.00",
		"A17": "Terms & Conditions",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(excelSheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestExcelBackend_OneRowPerItem(t *testing.T) {
	entries := make([]CatalogEntry, 25)
	for i := range entries {
		entries[i] = CatalogEntry{SKU: "SKU-" + string(rune('A'+i)), TotalPrice: float64(i + 1)}
	}
	f := exportExcel(t, entries, 0, QuoteMetadata{})

	for i := range entries {
		got, _ := f.GetCellValue(excelSheetName, cellName(1, 8+i))
		if got != entries[i].SKU {
			t.Errorf("row %d SKU = %q, want %q", 8+i, got, entries[i].SKU)
		}
	}
	// Spacer row straight after the last item.
	if got, _ := f.GetCellValue(excelSheetName, cellName(1, 8+len(entries))); got != "" {
		t.Errorf("expected blank row after items, got %q", got)
	}
}

func TestExcelBackend_SanitizesCells(t *testing.T) {
	entries := []CatalogEntry{{SKU: "=CMD()", Name: "@evil", TotalPrice: 1}}
	f := exportExcel(t, entries, 0, QuoteMetadata{CustomerName: "Test"})

	if got, _ := f.GetCellValue(excelSheetName, "A8"); got != "'=CMD()" {
		t.Errorf("A8 = %q, want sanitized formula", got)
	}
	if got, _ := f.GetCellValue(excelSheetName, "B8"); got != "'@evil" {
		t.Errorf("B8 = %q, want sanitized value", got)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"normal text", "Hello", "Hello"},
		{"starts with equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"starts with plus", "+1234", "'+1234"},
		{"starts with minus", "-100", "'-100"},
		{"starts with at", "@import", "'@import"},
		{"starts with tab", "\tdata", "'\tdata"},
		{"starts with pipe", "|command", "'|command"},
		{"starts with carriage return", "\rdata", "'\rdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeExcelCell(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestThinBorders(t *testing.T) {
	borders := thinBorders()
	if len(borders) != 4 {
		t.Errorf("thinBorders() returned %d borders, want 4", len(borders))
	}

	sides := map[string]bool{"left": false, "top": false, "bottom": false, "right": false}
	for _, b := range borders {
		sides[b.Type] = true
		if b.Style != 1 {
			t.Errorf("border %s style = %d, want 1 (thin)", b.Type, b.Style)
		}
	}
	for side, found := range sides {
		if !found {
			t.Errorf("missing border side: %s", side)
		}
	}
}
