package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"lightquote/collections"
	"lightquote/config"
	"lightquote/handlers"
)

func main() {
	app := pocketbase.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Flags override the environment; parsed by app.Start.
	app.RootCmd.PersistentFlags().StringVar(&cfg.CatalogSource, "catalog", cfg.CatalogSource,
		"product catalog file path or http(s) URL")
	app.RootCmd.PersistentFlags().StringVar(&cfg.DocumentRenderer, "renderer", cfg.DocumentRenderer,
		"PDF renderer: maroto or chromedp")

	sessions := handlers.NewSessionRegistry()

	// Create collections and seed room presets on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		cfg.DocumentRenderer = strings.ToLower(strings.TrimSpace(cfg.DocumentRenderer))
		if err := cfg.Validate(); err != nil {
			return err
		}

		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		backends := handlers.NewBackends(cfg)
		log.Printf("estimator: catalog %s, pdf renderer %s", cfg.CatalogSource, backends["pdf"].Name())

		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// ── Estimator (per-visitor session) ──────────────────────
		est := se.Router.Group("/estimator")
		est.BindFunc(handlers.SessionMiddleware(sessions))
		est.GET("", handlers.HandleEstimatorPage(app, cfg))
		est.POST("/catalog/reload", handlers.HandleCatalogReload(app, cfg))
		est.POST("/selection/{index}/toggle", handlers.HandleToggleSelection())
		est.POST("/discount", handlers.HandleDiscount())
		est.GET("/summary", handlers.HandleSummaryJSON())
		est.POST("/export/{format}", handlers.HandleExport(app, cfg, backends))

		// ── Lighting tools ───────────────────────────────────────
		se.Router.GET("/tools", handlers.HandleToolsPage(app, cfg))
		se.Router.GET("/tools/length", handlers.HandleLength())
		se.Router.GET("/tools/lumens", handlers.HandleLumens())
		se.Router.GET("/tools/lux", handlers.HandleLux())
		se.Router.GET("/tools/led-driver", handlers.HandleLEDDriver())
		se.Router.POST("/tools/rooms", handlers.HandleRoomSuggest(app, cfg))

		// Redirect home to the estimator
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/estimator")
		})

		return se.Next()
	})

	app.Cron().MustAdd("estimator-session-sweep", "*/5 * * * *", func() {
		if n := sessions.Sweep(time.Now(), cfg.SessionIdleTTL); n > 0 {
			log.Printf("estimator: dropped %d idle session(s), %d active", n, sessions.Len())
		}
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
