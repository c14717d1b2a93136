package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightquote/config"
	"lightquote/services"
	"lightquote/testhelpers"
)

func exportRequest(format, form string, s *services.Session) *http.Request {
	req := sessionRequest(http.MethodPost, "/estimator/export/"+format, form, s)
	req.SetPathValue("format", format)
	return req
}

func TestHandleExport_PDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	s := readySession(t, cfg)
	s.Toggle(0)
	s.Toggle(1)
	s.SetDiscount("10")

	req := exportRequest("pdf", "customer_name=Asha+Rao&customer_email=asha%40example.com&estimate_id=EST-26-27-009", s)
	rec := httptest.NewRecorder()

	require.NoError(t, HandleExport(app, cfg, NewBackends(cfg))(newTestRequestEvent(app, req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Estimation-EST-26-27-009.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	record, err := app.FindFirstRecordByData("estimates", "estimate_id", "EST-26-27-009")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", record.GetString("customer_name"))
	assert.Equal(t, "asha@example.com", record.GetString("customer_email"))
	assert.Equal(t, 2, record.GetInt("item_count"))
	assert.Equal(t, 270.0, record.GetFloat("grand_total"))
	assert.Equal(t, "pdf", record.GetString("format"))
	assert.GreaterOrEqual(t, record.GetInt("page_count"), 1)
}

func TestHandleExport_Excel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	s := readySession(t, cfg)
	s.Toggle(1)

	req := exportRequest("xlsx", "estimate_id=EST-26-27-010", s)
	rec := httptest.NewRecorder()

	require.NoError(t, HandleExport(app, cfg, NewBackends(cfg))(newTestRequestEvent(app, req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Estimation-EST-26-27-010.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	record, err := app.FindFirstRecordByData("estimates", "estimate_id", "EST-26-27-010")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", record.GetString("format"))
	assert.Equal(t, "N/A", record.GetString("customer_name"))
}

func TestHandleExport_GeneratesEstimateNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	s := readySession(t, cfg)
	s.Toggle(0)

	req := exportRequest("xlsx", "estimate_id=", s)
	rec := httptest.NewRecorder()

	require.NoError(t, HandleExport(app, cfg, NewBackends(cfg))(newTestRequestEvent(app, req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `^attachment; filename="Estimation-EST-\d{2}-\d{2}-001\.xlsx"$`, rec.Header().Get("Content-Disposition"))
}

func TestHandleExport_Errors(t *testing.T) {
	cfg := testConfig(t)
	unavailable := Backends{"pdf": services.ChromeBackend{ExecPath: filepath.Join(t.TempDir(), "no-chrome")}}

	tests := []struct {
		name     string
		format   string
		session  func(t *testing.T) *services.Session
		backends Backends
		want     int
	}{
		{
			name:     "empty selection",
			format:   "pdf",
			session:  func(t *testing.T) *services.Session { return readySession(t, cfg) },
			backends: NewBackends(cfg),
			want:     http.StatusUnprocessableEntity,
		},
		{
			name:     "catalog not loaded",
			format:   "xlsx",
			session:  func(t *testing.T) *services.Session { return services.NewSession("idle") },
			backends: NewBackends(cfg),
			want:     http.StatusUnprocessableEntity,
		},
		{
			name:   "renderer unavailable",
			format: "pdf",
			session: func(t *testing.T) *services.Session {
				s := readySession(t, cfg)
				s.Toggle(0)
				return s
			},
			backends: unavailable,
			want:     http.StatusServiceUnavailable,
		},
		{
			name:     "unknown format",
			format:   "docx",
			session:  func(t *testing.T) *services.Session { return readySession(t, cfg) },
			backends: NewBackends(cfg),
			want:     http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testhelpers.NewTestApp(t)
			req := exportRequest(tt.format, "", tt.session(t))
			req.Header.Set("HX-Request", "true")
			rec := httptest.NewRecorder()

			require.NoError(t, HandleExport(app, cfg, tt.backends)(newTestRequestEvent(app, req, rec)))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusNotFound {
				assert.Equal(t, "none", rec.Header().Get("HX-Reswap"))
			}

			records, err := app.FindAllRecords("estimates")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestHandleExport_FormPostRedirectsWithToast(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cfg := testConfig(t)
	s := readySession(t, cfg)

	req := exportRequest("pdf", "customer_name=Asha", s)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()

	require.NoError(t, HandleExport(app, cfg, NewBackends(cfg))(newTestRequestEvent(app, req, rec)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/estimator", rec.Header().Get("Location"))

	var flash bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookieName {
			flash = true
		}
	}
	assert.True(t, flash, "expected a flash toast cookie")
}

func TestNewBackends(t *testing.T) {
	backends := NewBackends(&config.Config{DocumentRenderer: config.RendererMaroto})
	assert.Equal(t, "maroto", backends["pdf"].Name())
	assert.Equal(t, "excelize", backends["xlsx"].Name())

	backends = NewBackends(&config.Config{DocumentRenderer: config.RendererChromedp, ChromePath: "/opt/chrome"})
	chrome, ok := backends["pdf"].(services.ChromeBackend)
	require.True(t, ok)
	assert.Equal(t, "/opt/chrome", chrome.ExecPath)
}
