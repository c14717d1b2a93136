package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the estimates and room_presets
// collections exist.
func Setup(app *pocketbase.PocketBase) {
	// One record per successful export.
	ensureCollection(app, "estimates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "estimate_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "customer_email", Required: false})
		c.Fields.Add(&core.NumberField{Name: "item_count", Required: true, OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "subtotal", Required: false})
		c.Fields.Add(&core.NumberField{Name: "discount_percent", Required: false})
		c.Fields.Add(&core.NumberField{Name: "grand_total", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "format",
			Required:  true,
			Values:    []string{"pdf", "xlsx"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "page_count", Required: false, OnlyInt: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.AddIndex("idx_estimates_estimate_id", false, "estimate_id", "")
	})

	ensureCollection(app, "room_presets", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "slug", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "target_lux", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false, OnlyInt: true})
		c.AddIndex("idx_room_presets_slug", true, "slug", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
