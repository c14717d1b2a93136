// Package templates holds the HTML components of the estimator UI.
//
// Components are written in .templ files; the matching _templ.go files are
// produced by `templ generate` and must not be edited by hand.
package templates

//go:generate templ generate

// CatalogRow is one catalog entry as listed in the estimator.
type CatalogRow struct {
	Index      int
	SKU        string
	Name       string
	Category   string
	NetPrice   string
	GSTAmount  string
	TotalPrice string
	Specs      string
	Selected   bool
}

// CatalogData drives the catalog section.
type CatalogData struct {
	// State is one of idle, loading, ready, failed.
	State  string
	Source string
	Error  string
	Rows   []CatalogRow
}

// SummaryData is the live price summary.
type SummaryData struct {
	ItemCount      int
	Subtotal       string
	DiscountAmount string
	GrandTotal     string
	DiscountRaw    string
	DiscountLabel  string
	DiscountError  string
	CanExport      bool
}

// ExportFormData prefills the export form.
type ExportFormData struct {
	EstimateID    string
	CustomerName  string
	CustomerEmail string
	CanExport     bool
}

type EstimatorPageData struct {
	Title   string
	Catalog CatalogData
	Summary SummaryData
	Export  ExportFormData
}

// RoomOption is a selectable room type.
type RoomOption struct {
	Slug string
	Name string
}

type ToolsPageData struct {
	Title         string
	Rooms         []RoomOption
	FixtureLumens float64
}

// RoomSuggestionRow is one computed room in the suggestion table.
type RoomSuggestionRow struct {
	Room         string
	Size         string
	TargetLux    string
	LumensNeeded string
	Fixtures     int
}

type roomSize struct {
	value, label string
}

var roomSizes = []roomSize{
	{"small", "Small (e.g. 1 Bed/Bath)"},
	{"medium", "Medium (e.g. 2 Bed/Study)"},
	{"large", "Large (e.g. 3 Bed/Kitchen)"},
	{"extra-large", "Extra Large (e.g. 4+ Bed)"},
}

// roomSlots is how many room pickers the suggestion form offers.
const roomSlots = 3

func totalFixtures(rows []RoomSuggestionRow) int {
	total := 0
	for _, r := range rows {
		total += r.Fixtures
	}
	return total
}
