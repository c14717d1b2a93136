package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/config"
	"lightquote/services"
	"lightquote/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// testConfig points the catalog at a temporary copy of the sample catalog.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		CatalogSource:    testhelpers.WriteCatalogFile(t, testhelpers.SampleCatalog),
		CatalogTimeout:   5 * time.Second,
		DocumentRenderer: config.RendererMaroto,
		EstimateTitle:    "Lighting Fixture Estimation",
		SessionIdleTTL:   time.Hour,
		FixtureLumens:    services.DefaultFixtureLumens,
	}
}

// readySession returns a session with the sample catalog loaded.
func readySession(t *testing.T, cfg *config.Config) *services.Session {
	t.Helper()
	s := services.NewSession("test-session")
	if err := s.Load(context.Background(), services.NewCatalogSource(cfg.CatalogSource)); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return s
}

// sessionRequest builds a request carrying s. A non-empty form body is sent
// url-encoded.
func sessionRequest(method, target, form string, s *services.Session) *http.Request {
	var body io.Reader
	if form != "" {
		body = strings.NewReader(form)
	}
	req := httptest.NewRequest(method, target, body)
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s != nil {
		req = withSession(req, s)
	}
	return req
}
