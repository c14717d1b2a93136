package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// NotAvailable is the placeholder for text fields missing from a catalog row.
const NotAvailable = "N/A"

// CatalogEntry is one sellable product row from the catalog.
// TotalPrice is trusted as-is; it is never checked against NetPrice + GSTAmount.
type CatalogEntry struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	NetPrice   float64 `json:"netPrice"`
	GSTAmount  float64 `json:"gstAmount"`
	TotalPrice float64 `json:"totalPrice"`
	Specs      string  `json:"specs"`
}

// LoadError reports a catalog fetch or parse failure.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CatalogSource supplies the raw JSON catalog document.
type CatalogSource interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the catalog from a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path)
}

// HTTPSource fetches the catalog over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Name() string { return s.URL }

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// NewCatalogSource picks an HTTP source for http(s) URLs and a file source otherwise.
func NewCatalogSource(name string) CatalogSource {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTPSource{URL: name}
	}
	return FileSource{Path: name}
}

// FetchCatalog opens the source and parses its JSON array into catalog entries.
// Any failure is returned as a *LoadError.
func FetchCatalog(ctx context.Context, src CatalogSource) ([]CatalogEntry, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	entries, err := ParseCatalog(raw)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	return entries, nil
}

// Field aliases: the camelCase keys first, then the headers used by the
// spreadsheet the catalog is exported from.
var (
	skuKeys      = []string{"sku", "SKU"}
	nameKeys     = []string{"name", "Product Name", "productName"}
	categoryKeys = []string{"category", "Category"}
	netKeys      = []string{"netPrice", "Price (₹)", "price"}
	gstKeys      = []string{"gstAmount", "GST 18%", "gst"}
	totalKeys    = []string{"totalPrice", "Total Price", "total"}
	specsKeys    = []string{"specs", "Specs", "specifications"}
)

// ParseCatalog decodes a JSON array of catalog rows. Missing or malformed
// numeric fields become 0 and missing text fields become "N/A"; elements
// that are not JSON objects are skipped.
func ParseCatalog(data []byte) ([]CatalogEntry, error) {
	var rows []any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("catalog must be a JSON array: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(rows))
	for i, r := range rows {
		obj, ok := r.(map[string]any)
		if !ok {
			log.Printf("catalog: skipping element %d, not an object", i)
			continue
		}
		entries = append(entries, CatalogEntry{
			SKU:        textField(obj, skuKeys),
			Name:       textField(obj, nameKeys),
			Category:   textField(obj, categoryKeys),
			NetPrice:   amountField(obj, netKeys),
			GSTAmount:  amountField(obj, gstKeys),
			TotalPrice: amountField(obj, totalKeys),
			Specs:      textField(obj, specsKeys),
		})
	}
	return entries, nil
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func textField(obj map[string]any, keys []string) string {
	v, ok := lookup(obj, keys)
	if !ok {
		return NotAvailable
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func amountField(obj map[string]any, keys []string) float64 {
	v, ok := lookup(obj, keys)
	if !ok {
		return 0
	}
	if s, isStr := v.(string); isStr {
		v = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "₹"), ",", ""))
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// CatalogStore holds the catalog loaded for one session. A successful load
// replaces the entries in full and bumps Generation.
type CatalogStore struct {
	entries    []CatalogEntry
	generation uint64
}

// Load fetches the catalog from src. On failure the store is emptied and
// the *LoadError is returned.
func (c *CatalogStore) Load(ctx context.Context, src CatalogSource) ([]CatalogEntry, error) {
	entries, err := FetchCatalog(ctx, src)
	if err != nil {
		c.Clear()
		return nil, err
	}
	c.Replace(entries)
	return c.Entries(), nil
}

// Replace swaps in a new catalog.
func (c *CatalogStore) Replace(entries []CatalogEntry) {
	c.entries = append([]CatalogEntry(nil), entries...)
	c.generation++
}

// Clear drops the current catalog.
func (c *CatalogStore) Clear() {
	c.entries = nil
	c.generation++
}

// Entries returns a copy of the loaded catalog.
func (c *CatalogStore) Entries() []CatalogEntry {
	return append([]CatalogEntry(nil), c.entries...)
}

func (c *CatalogStore) Len() int { return len(c.entries) }

func (c *CatalogStore) Generation() uint64 { return c.generation }

// Entry returns the entry at index i.
func (c *CatalogStore) Entry(i int) (CatalogEntry, bool) {
	if i < 0 || i >= len(c.entries) {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}
