package services

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func pricingCatalog() []CatalogEntry {
	return []CatalogEntry{
		{SKU: "A1", NetPrice: 85, GSTAmount: 15, TotalPrice: 100},
		{SKU: "B2", NetPrice: 170, GSTAmount: 30, TotalPrice: 200},
	}
}

func TestCalcDiscount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		percent float64
		expect  float64
	}{
		{"ten percent", 300, 10, 30},
		{"zero percent", 300, 0, 0},
		{"full discount", 300, 100, 300},
		{"zero amount", 0, 50, 0},
		{"fractional percent", 200, 12.5, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcDiscount(tt.amount, tt.percent)
			if math.Abs(got-tt.expect) > 0.001 {
				t.Errorf("CalcDiscount(%v, %v) = %v, want %v", tt.amount, tt.percent, got, tt.expect)
			}
		})
	}
}

func TestPriceSelection_Scenario(t *testing.T) {
	got := PriceSelection(pricingCatalog(), 10)

	if Round2(got.Subtotal) != 300 {
		t.Errorf("Subtotal = %v, want 300", got.Subtotal)
	}
	if Round2(got.DiscountAmount) != 30 {
		t.Errorf("DiscountAmount = %v, want 30", got.DiscountAmount)
	}
	if Round2(got.GrandTotal) != 270 {
		t.Errorf("GrandTotal = %v, want 270", got.GrandTotal)
	}

	view := PresentSummary(got)
	if view.Subtotal != "₹300.00" || view.DiscountAmount != "₹30.00" || view.GrandTotal != "₹270.00" {
		t.Errorf("PresentSummary() = %+v", view)
	}
}

func TestPriceSelection_Empty(t *testing.T) {
	got := PriceSelection(nil, 25)
	if got != (PricedSummary{}) {
		t.Errorf("PriceSelection(nil) = %+v, want zero", got)
	}

	view := PresentSummary(got)
	for _, s := range []string{view.Subtotal, view.DiscountAmount, view.GrandTotal} {
		if s != "₹0.00" {
			t.Errorf("empty summary field = %q, want ₹0.00", s)
		}
	}
}

// parseINR reads a FormatINR string back as an exact decimal.
func parseINR(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(strings.NewReplacer("₹", "", ",", "").Replace(s))
	if err != nil {
		t.Fatalf("cannot parse %q: %v", s, err)
	}
	return d
}

func TestPriceSelection_DiscountProperties(t *testing.T) {
	entries := []CatalogEntry{
		{TotalPrice: 1180.5},
		{TotalPrice: 99.99},
		{TotalPrice: 0.01},
		{TotalPrice: 250000},
	}

	for _, d := range []float64{0, 0.5, 7.25, 10, 33.33, 50, 99.99, 100} {
		got := PriceSelection(entries, d)
		view := PresentSummary(got)

		subtotal := parseINR(t, view.Subtotal)
		discount := parseINR(t, view.DiscountAmount)
		grand := parseINR(t, view.GrandTotal)

		wantDiscount := subtotal.Mul(decimal.NewFromFloat(d)).Div(decimal.NewFromInt(100)).Round(2)
		if !discount.Equal(wantDiscount) {
			t.Errorf("d=%v: discount shown %s, want %s", d, view.DiscountAmount, wantDiscount.StringFixed(2))
		}
		if !subtotal.Sub(discount).Equal(grand) {
			t.Errorf("d=%v: %s - %s != %s", d, view.Subtotal, view.DiscountAmount, view.GrandTotal)
		}
		if grand.GreaterThan(subtotal) {
			t.Errorf("d=%v: grand total %s exceeds subtotal %s", d, view.GrandTotal, view.Subtotal)
		}
	}
}

func TestPriceSelection_HalfCentDiscount(t *testing.T) {
	entries := []CatalogEntry{{TotalPrice: 100.05}}

	view := PresentSummary(PriceSelection(entries, 50))
	if view.Subtotal != "₹100.05" || view.DiscountAmount != "₹50.03" || view.GrandTotal != "₹50.02" {
		t.Errorf("PresentSummary() = %+v, want ₹100.05 / ₹50.03 / ₹50.02", view)
	}

	b := CalcQuoteBreakdown(entries, 50)
	if b.DiscountAmount != 50.03 || b.GrandTotal != 50.02 {
		t.Errorf("CalcQuoteBreakdown() = %+v, want discount 50.03 and grand total 50.02", b)
	}
}

func TestPriceSelection_Idempotent(t *testing.T) {
	entries := pricingCatalog()
	first := PriceSelection(entries, 12.5)
	second := PriceSelection(entries, 12.5)

	if first != second {
		t.Errorf("repeated pricing differs: %+v vs %+v", first, second)
	}
	if entries[0].TotalPrice != 100 || entries[1].TotalPrice != 200 {
		t.Errorf("pricing mutated its input: %+v", entries)
	}
}

func TestPriceSelection_InvalidDiscountPricesAsZero(t *testing.T) {
	d := ParseDiscount("-5")
	if d.Valid() {
		t.Fatal("-5 should be rejected")
	}

	got := PriceSelection(pricingCatalog(), d.Percent)
	if got.DiscountAmount != 0 || got.GrandTotal != got.Subtotal {
		t.Errorf("invalid discount should price as 0, got %+v", got)
	}
}

func TestCalcQuoteBreakdown(t *testing.T) {
	b := CalcQuoteBreakdown(pricingCatalog(), 10)

	if b.TotalNet != 255 {
		t.Errorf("TotalNet = %v, want 255", b.TotalNet)
	}
	if b.TotalGST != 45 {
		t.Errorf("TotalGST = %v, want 45", b.TotalGST)
	}
	if b.DiscountPercent != 10 {
		t.Errorf("DiscountPercent = %v, want 10", b.DiscountPercent)
	}

	live := PriceSelection(pricingCatalog(), 10)
	if b.Subtotal != live.Subtotal || b.DiscountAmount != live.DiscountAmount || b.GrandTotal != live.GrandTotal {
		t.Errorf("breakdown %+v disagrees with live summary %+v", b, live)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		input  float64
		expect float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{0.125, 0.13},
		{-1.005, -1.01},
		{300.0000001, 300},
		{29.999999, 30},
	}

	for _, tt := range tests {
		if got := Round2(tt.input); got != tt.expect {
			t.Errorf("Round2(%v) = %v, want %v", tt.input, got, tt.expect)
		}
	}
}
