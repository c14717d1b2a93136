package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/config"
	"lightquote/services"
)

// Backends maps an export format ("pdf", "xlsx") to the backend that renders it.
type Backends map[string]services.RendererBackend

// NewBackends picks the renderer for each export format. PDFs come from
// maroto unless DOCUMENT_RENDERER selects headless Chrome.
func NewBackends(cfg *config.Config) Backends {
	var pdf services.RendererBackend = services.MarotoBackend{}
	if cfg.DocumentRenderer == config.RendererChromedp {
		pdf = services.ChromeBackend{ExecPath: cfg.ChromePath}
	}
	return Backends{
		"pdf":  pdf,
		"xlsx": services.ExcelBackend{},
	}
}

// exportStatus maps an export failure to the HTTP status and the message
// shown to the user.
func exportStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrCatalogNotReady):
		return http.StatusUnprocessableEntity, "The catalog is not loaded yet"
	case errors.Is(err, services.ErrEmptySelection):
		return http.StatusUnprocessableEntity, "Select at least one item to export"
	case errors.Is(err, services.ErrRendererUnavailable):
		return http.StatusServiceUnavailable, "The document renderer is not available"
	default:
		return http.StatusInternalServerError, "Failed to generate the estimate"
	}
}

// wantsHTMLRedirect reports whether the request came from a plain browser form
// post, where an error is better shown as a toast on the estimator page.
func wantsHTMLRedirect(r *http.Request) bool {
	return r.Header.Get("HX-Request") != "true" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// HandleExport renders the session's selection in the format named by the
// {format} path value and sends it as a download.
func HandleExport(app *pocketbase.PocketBase, cfg *config.Config, backends Backends) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.String(http.StatusInternalServerError, err.Error())
		}

		format := e.Request.PathValue("format")
		backend, ok := backends[format]
		if !ok || backend == nil {
			return e.String(http.StatusNotFound, fmt.Sprintf("unknown export format %q", format))
		}

		meta := services.QuoteMetadata{
			CustomerName:  e.Request.FormValue("customer_name"),
			CustomerEmail: e.Request.FormValue("customer_email"),
			EstimateID:    strings.TrimSpace(e.Request.FormValue("estimate_id")),
		}
		if meta.EstimateID == "" {
			meta.EstimateID = services.GenerateEstimateNumber(app, time.Now())
		}

		exporter := &services.QuoteExporter{
			Backend:        backend,
			Title:          cfg.EstimateTitle,
			TermsOnNewPage: cfg.TermsOnNewPage,
		}

		doc, err := s.Export(e.Request.Context(), exporter, meta)
		if err != nil {
			log.Printf("export: session %s: %s via %s: %v", s.ID, format, backend.Name(), err)
			status, msg := exportStatus(err)
			if wantsHTMLRedirect(e.Request) {
				SetToast(e, "error", msg)
				return e.Redirect(http.StatusSeeOther, "/estimator")
			}
			return ErrorToast(e, status, msg)
		}

		if _, err := services.RecordEstimate(app, doc, format); err != nil {
			log.Printf("export: failed to record estimate %s: %v", doc.Quote.Metadata.EstimateID, err)
		}

		e.Response.Header().Set("Content-Type", doc.ContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(doc.Content)
		return err
	}
}
