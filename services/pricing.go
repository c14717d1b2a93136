// Package services provides catalog, pricing and export functions for lighting estimates.
package services

import "github.com/shopspring/decimal"

// PricedSummary is the live on-screen quote summary.
type PricedSummary struct {
	Subtotal       float64
	DiscountAmount float64
	GrandTotal     float64
}

// QuoteBreakdown holds the totals printed on an exported estimate.
type QuoteBreakdown struct {
	TotalNet        float64
	TotalGST        float64
	Subtotal        float64
	DiscountPercent float64
	DiscountAmount  float64
	GrandTotal      float64
}

// CalcDiscount returns amount * percent / 100 rounded to 2 places. The
// percent is expected to be validated already and is not clamped.
func CalcDiscount(amount, percent float64) float64 {
	return discountOf(decimal.NewFromFloat(amount), percent).InexactFloat64()
}

func discountOf(amount decimal.Decimal, percent float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
}

// applyDiscount rounds subtotal to 2 places, takes the rounded discount off
// it and returns all three figures, so that grand = subtotal - discount
// holds exactly on the printed amounts.
func applyDiscount(subtotal, percent float64) (sub, discount, grand float64) {
	s := decimal.NewFromFloat(subtotal).Round(2)
	d := discountOf(s, percent)
	return s.InexactFloat64(), d.InexactFloat64(), s.Sub(d).InexactFloat64()
}

// PriceSelection sums TotalPrice over entries in order and applies the discount.
func PriceSelection(entries []CatalogEntry, discountPercent float64) PricedSummary {
	var subtotal float64
	for _, e := range entries {
		subtotal += e.TotalPrice
	}
	var p PricedSummary
	p.Subtotal, p.DiscountAmount, p.GrandTotal = applyDiscount(subtotal, discountPercent)
	return p
}

// CalcQuoteBreakdown recomputes the totals from the raw entries for the
// exported document. Subtotal, discount and grand total match PriceSelection.
func CalcQuoteBreakdown(entries []CatalogEntry, discountPercent float64) QuoteBreakdown {
	var b QuoteBreakdown
	var subtotal float64
	for _, e := range entries {
		b.TotalNet += e.NetPrice
		b.TotalGST += e.GSTAmount
		subtotal += e.TotalPrice
	}
	b.TotalNet = Round2(b.TotalNet)
	b.TotalGST = Round2(b.TotalGST)
	b.DiscountPercent = discountPercent
	b.Subtotal, b.DiscountAmount, b.GrandTotal = applyDiscount(subtotal, discountPercent)
	return b
}

// Round2 rounds to 2 decimal places, half away from zero, using the shortest
// decimal representation of v (so 1.005 rounds to 1.01).
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
