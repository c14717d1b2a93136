// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// SampleCatalog is a small two-product catalog: subtotal 300 when both are selected.
const SampleCatalog = `[
	{"sku":"A1","name":"Downlight 6W","category":"Indoor","netPrice":85,"gstAmount":15,"totalPrice":100,"specs":"6W 4000K"},
	{"sku":"B2","name":"Track Light 20W","category":"Indoor","netPrice":170,"gstAmount":30,"totalPrice":200,"specs":"20W 3000K"}
]`

// WriteCatalogFile writes content to products.json in a temporary directory
// and returns its path.
func WriteCatalogFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

// CreateTestEstimate records an exported estimate with the given number.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, estimateID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		t.Fatalf("failed to find estimates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("estimate_id", estimateID)
	record.Set("customer_name", "Test Customer")
	record.Set("item_count", 1)
	record.Set("subtotal", 100.0)
	record.Set("grand_total", 100.0)
	record.Set("format", "pdf")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXTrigger checks that the HX-Trigger header names the expected event.
func AssertHXTrigger(t *testing.T, headerVal, event string) {
	t.Helper()

	if !strings.Contains(headerVal, `"`+event+`"`) {
		t.Errorf("expected HX-Trigger to contain event %q, got %q", event, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
