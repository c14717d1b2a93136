package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// GetFiscalYear returns the Indian fiscal year string for a given date.
// Indian fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}

// formatEstimateNumber constructs the estimate number from its components.
func formatEstimateNumber(fiscalYear string, sequence int) string {
	return fmt.Sprintf("EST-%s-%03d", fiscalYear, sequence)
}

// GenerateEstimateNumber suggests the next estimate number.
// Format: EST-{fiscal_year}-{sequence}, the sequence being 3-digit zero-padded
// and counted per fiscal year from the estimates register.
func GenerateEstimateNumber(app *pocketbase.PocketBase, now time.Time) string {
	fiscalYear := GetFiscalYear(now)
	prefix := fmt.Sprintf("EST-%s-", fiscalYear)

	existing, err := app.FindRecordsByFilter(
		"estimates",
		"estimate_id ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		// If collection doesn't exist or no records, start at 1
		existing = nil
	}

	return formatEstimateNumber(fiscalYear, len(existing)+1)
}

// RecordEstimate appends an exported estimate to the estimates register.
func RecordEstimate(app *pocketbase.PocketBase, doc *Document, format string) (*core.Record, error) {
	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return nil, fmt.Errorf("estimates collection not found: %w", err)
	}

	q := doc.Quote
	record := core.NewRecord(col)
	record.Set("estimate_id", q.Metadata.EstimateID)
	record.Set("customer_name", q.Metadata.CustomerName)
	record.Set("customer_email", q.Metadata.CustomerEmail)
	record.Set("item_count", len(q.Items))
	record.Set("subtotal", q.Breakdown.Subtotal)
	record.Set("discount_percent", q.Breakdown.DiscountPercent)
	record.Set("grand_total", q.Breakdown.GrandTotal)
	record.Set("format", format)
	record.Set("page_count", doc.PageCount)

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save estimate %s: %w", q.Metadata.EstimateID, err)
	}
	return record, nil
}
