package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/config"
	"lightquote/services"
	"lightquote/templates"
)

// loadCatalog fetches the configured catalog into s within the configured timeout.
func loadCatalog(ctx context.Context, s *services.Session, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.CatalogTimeout)
	defer cancel()

	err := s.Load(ctx, services.NewCatalogSource(cfg.CatalogSource))
	if err != nil {
		log.Printf("estimator: session %s: %v", s.ID, err)
	}
	return err
}

func estimatorPageData(app *pocketbase.PocketBase, s *services.Session, cfg *config.Config) templates.EstimatorPageData {
	v := s.View()
	return templates.EstimatorPageData{
		Title:   cfg.EstimateTitle,
		Catalog: catalogData(v, cfg.CatalogSource),
		Summary: summaryData(v.Summary, v.CanExport),
		Export: templates.ExportFormData{
			EstimateID: services.GenerateEstimateNumber(app, time.Now()),
			CanExport:  v.CanExport,
		},
	}
}

// HandleEstimatorPage renders the estimator. The catalog is loaded on the
// first visit of a session.
func HandleEstimatorPage(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.String(http.StatusInternalServerError, err.Error())
		}

		if s.State() == services.LoadIdle {
			_ = loadCatalog(e.Request.Context(), s, cfg)
		}

		data := estimatorPageData(app, s, cfg)

		var component templ.Component
		if isHTMX(e) {
			component = templates.EstimatorContent(data)
		} else {
			component = templates.EstimatorPage(data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleCatalogReload refetches the catalog. The selection is cleared
// whether or not the reload succeeds.
func HandleCatalogReload(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.String(http.StatusInternalServerError, err.Error())
		}

		if err := loadCatalog(e.Request.Context(), s, cfg); err != nil {
			SetToast(e, "error", "Could not load the product catalog")
		} else {
			SetToast(e, "success", "Catalog reloaded")
		}

		return templates.EstimatorContent(estimatorPageData(app, s, cfg)).Render(e.Request.Context(), e.Response)
	}
}

// HandleToggleSelection flips one catalog entry in or out of the selection
// and returns the refreshed summary.
func HandleToggleSelection() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.String(http.StatusInternalServerError, err.Error())
		}

		index, err := strconv.Atoi(e.Request.PathValue("index"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid catalog index")
		}
		if !s.Toggle(index) {
			log.Printf("estimator: session %s: ignored toggle of index %d", s.ID, index)
		}

		return renderSummary(e, s)
	}
}

// HandleDiscount stores the discount field. Invalid input is flagged in the
// summary and prices as no discount.
func HandleDiscount() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.String(http.StatusInternalServerError, err.Error())
		}

		s.SetDiscount(e.Request.FormValue("discount"))
		return renderSummary(e, s)
	}
}

func renderSummary(e *core.RequestEvent, s *services.Session) error {
	v := s.View()
	return templates.SummaryPanel(summaryData(v.Summary, v.CanExport)).Render(e.Request.Context(), e.Response)
}

// summaryResponse is the JSON form of the live summary.
type summaryResponse struct {
	State           string  `json:"state"`
	ItemCount       int     `json:"item_count"`
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	GrandTotal      float64 `json:"grand_total"`
	DiscountError   string  `json:"discount_error,omitempty"`
	CanExport       bool    `json:"can_export"`
	Display         struct {
		Subtotal       string `json:"subtotal"`
		DiscountAmount string `json:"discount_amount"`
		GrandTotal     string `json:"grand_total"`
	} `json:"display"`
}

// HandleSummaryJSON returns the current summary as JSON, amounts rounded to 2 places.
func HandleSummaryJSON() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := sessionFor(e)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		v := s.View()

		resp := summaryResponse{
			State:           v.State.String(),
			ItemCount:       v.Summary.ItemCount,
			Subtotal:        v.Priced.Subtotal,
			DiscountPercent: v.DiscountPercent,
			DiscountAmount:  v.Priced.DiscountAmount,
			GrandTotal:      v.Priced.GrandTotal,
			DiscountError:   v.Summary.DiscountError,
			CanExport:       v.CanExport,
		}
		resp.Display.Subtotal = v.Summary.Subtotal
		resp.Display.DiscountAmount = v.Summary.DiscountAmount
		resp.Display.GrandTotal = v.Summary.GrandTotal
		return e.JSON(http.StatusOK, resp)
	}
}
