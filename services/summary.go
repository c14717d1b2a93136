package services

// SummaryView is the rendered form of a PricedSummary.
type SummaryView struct {
	Subtotal       string
	DiscountAmount string
	GrandTotal     string

	ItemCount       int
	DiscountRaw     string
	DiscountPercent string
	DiscountError   string
}

// PresentSummary formats each figure with the currency symbol and 2 decimals.
func PresentSummary(s PricedSummary) SummaryView {
	return SummaryView{
		Subtotal:       FormatINR(s.Subtotal),
		DiscountAmount: FormatINR(s.DiscountAmount),
		GrandTotal:     FormatINR(s.GrandTotal),
	}
}

// presentSession adds selection and discount state to the priced view.
func presentSession(s PricedSummary, items int, d DiscountInput) SummaryView {
	v := PresentSummary(s)
	v.ItemCount = items
	v.DiscountRaw = d.Raw
	v.DiscountPercent = FormatPercent(d.Percent)
	if d.Err != nil {
		v.DiscountError = d.Err.Error()
	}
	return v
}
