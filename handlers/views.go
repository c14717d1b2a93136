package handlers

import (
	"lightquote/services"
	"lightquote/templates"
)

// catalogData converts a session snapshot into the catalog section view.
func catalogData(v services.SessionView, source string) templates.CatalogData {
	data := templates.CatalogData{
		State:  v.State.String(),
		Source: source,
		Error:  v.LoadError,
		Rows:   make([]templates.CatalogRow, 0, len(v.Catalog)),
	}
	for i, c := range v.Catalog {
		data.Rows = append(data.Rows, templates.CatalogRow{
			Index:      i,
			SKU:        c.SKU,
			Name:       c.Name,
			Category:   c.Category,
			NetPrice:   services.FormatINR(c.NetPrice),
			GSTAmount:  services.FormatINR(c.GSTAmount),
			TotalPrice: services.FormatINR(c.TotalPrice),
			Specs:      c.Specs,
			Selected:   v.Selected[i],
		})
	}
	return data
}

func summaryData(s services.SummaryView, canExport bool) templates.SummaryData {
	return templates.SummaryData{
		ItemCount:      s.ItemCount,
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		GrandTotal:     s.GrandTotal,
		DiscountRaw:    s.DiscountRaw,
		DiscountLabel:  s.DiscountPercent,
		DiscountError:  s.DiscountError,
		CanExport:      canExport,
	}
}
