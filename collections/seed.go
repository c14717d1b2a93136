package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type roomPresetDef struct {
	slug      string
	name      string
	targetLux float64
}

// Recommended residential illuminance per room type, in lux.
var roomPresetDefs = []roomPresetDef{
	{"bedroom", "Bedroom", 150},
	{"living-room", "Living Room", 200},
	{"kitchen", "Kitchen", 300},
	{"bathroom", "Bathroom", 200},
	{"office-study", "Office/Study", 500},
	{"dining-room", "Dining Room", 200},
	{"hallway", "Hallway", 100},
	{"garage", "Garage", 100},
	{"laundry-room", "Laundry Room", 300},
}

// Seed inserts the default room presets. Presets that already exist (by
// slug) are left untouched so edits made in the admin UI survive restarts.
func Seed(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("room_presets")
	if err != nil {
		return fmt.Errorf("seed: could not find room_presets collection: %w", err)
	}

	created := 0
	for i, d := range roomPresetDefs {
		if _, err := app.FindFirstRecordByData(col, "slug", d.slug); err == nil {
			continue
		}

		rec := core.NewRecord(col)
		rec.Set("slug", d.slug)
		rec.Set("name", d.name)
		rec.Set("target_lux", d.targetLux)
		rec.Set("sort_order", i+1)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save room preset %q: %w", d.slug, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("seed: inserted %d room presets", created)
	}
	return nil
}
