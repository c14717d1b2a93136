package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogJSON = `[
	{"sku":"LED-01","name":"Panel Light","category":"Indoor","netPrice":100,"gstAmount":18,"totalPrice":118,"specs":"12W"},
	{"SKU":"LED-02","Product Name":"Flood Light","Category":"Outdoor","Price (₹)":"₹1,000.00","GST 18%":"180","Total Price":"1,180","Specs":"50W IP65"},
	{"sku":"LED-03","totalPrice":250}
]`

func TestParseCatalog_FieldsAndAliases(t *testing.T) {
	entries, err := ParseCatalog([]byte(sampleCatalogJSON))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, CatalogEntry{
		SKU: "LED-01", Name: "Panel Light", Category: "Indoor",
		NetPrice: 100, GSTAmount: 18, TotalPrice: 118, Specs: "12W",
	}, entries[0])

	assert.Equal(t, CatalogEntry{
		SKU: "LED-02", Name: "Flood Light", Category: "Outdoor",
		NetPrice: 1000, GSTAmount: 180, TotalPrice: 1180, Specs: "50W IP65",
	}, entries[1])
}

func TestParseCatalog_MissingFieldsDefault(t *testing.T) {
	entries, err := ParseCatalog([]byte(sampleCatalogJSON))
	require.NoError(t, err)

	e := entries[2]
	assert.Equal(t, "LED-03", e.SKU)
	assert.Equal(t, NotAvailable, e.Name)
	assert.Equal(t, NotAvailable, e.Category)
	assert.Equal(t, NotAvailable, e.Specs)
	assert.Zero(t, e.NetPrice)
	assert.Zero(t, e.GSTAmount)
	assert.Equal(t, 250.0, e.TotalPrice)
}

func TestParseCatalog_MalformedAmounts(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		total float64
	}{
		{"non-numeric string", `[{"totalPrice":"call us"}]`, 0},
		{"negative", `[{"totalPrice":-50}]`, 0},
		{"null", `[{"totalPrice":null}]`, 0},
		{"numeric string", `[{"totalPrice":"99.5"}]`, 99.5},
		{"rupee with grouping", `[{"totalPrice":"₹1,23,456.78"}]`, 123456.78},
		{"object", `[{"totalPrice":{"amount":5}}]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseCatalog([]byte(tt.json))
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.total, entries[0].TotalPrice)
		})
	}
}

func TestParseCatalog_SkipsNonObjects(t *testing.T) {
	entries, err := ParseCatalog([]byte(`[1, "x", null, {"sku":"A"}, []]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].SKU)
}

func TestParseCatalog_NotAnArray(t *testing.T) {
	for _, doc := range []string{`{"sku":"A"}`, `not json`, ``} {
		_, err := ParseCatalog([]byte(doc))
		assert.Error(t, err, "document %q", doc)
	}
}

func TestParseCatalog_EmptyArray(t *testing.T) {
	entries, err := ParseCatalog([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchCatalog_File(t *testing.T) {
	path := writeCatalog(t, sampleCatalogJSON)

	entries, err := FetchCatalog(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFetchCatalog_MissingFile(t *testing.T) {
	_, err := FetchCatalog(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Source, "nope.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFetchCatalog_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleCatalogJSON))
		default:
			http.Error(w, "gone", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	entries, err := FetchCatalog(context.Background(), HTTPSource{URL: srv.URL + "/products.json"})
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = FetchCatalog(context.Background(), HTTPSource{URL: srv.URL + "/broken"})
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "500")
}

func TestFetchCatalog_InvalidJSONIsLoadError(t *testing.T) {
	path := writeCatalog(t, `{"not":"an array"}`)
	_, err := FetchCatalog(context.Background(), FileSource{Path: path})

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestNewCatalogSource(t *testing.T) {
	assert.IsType(t, HTTPSource{}, NewCatalogSource("https://example.com/products.json"))
	assert.IsType(t, HTTPSource{}, NewCatalogSource("HTTP://example.com/products.json"))
	assert.IsType(t, FileSource{}, NewCatalogSource("static/products.json"))
}

func TestCatalogStore_LoadReplacesAndClears(t *testing.T) {
	var store CatalogStore
	good := writeCatalog(t, sampleCatalogJSON)

	entries, err := store.Load(context.Background(), FileSource{Path: good})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 3, store.Len())
	gen := store.Generation()

	e, ok := store.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "LED-02", e.SKU)
	_, ok = store.Entry(3)
	assert.False(t, ok)
	_, ok = store.Entry(-1)
	assert.False(t, ok)

	_, err = store.Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Zero(t, store.Len())
	assert.Greater(t, store.Generation(), gen)
}

func TestCatalogStore_EntriesIsCopy(t *testing.T) {
	var store CatalogStore
	store.Replace([]CatalogEntry{{SKU: "A"}})

	got := store.Entries()
	got[0].SKU = "changed"

	e, _ := store.Entry(0)
	assert.Equal(t, "A", e.SKU)
}
