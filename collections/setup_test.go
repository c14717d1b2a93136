package collections_test

import (
	"testing"

	"lightquote/collections"
	"lightquote/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"estimates",
	"room_presets",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q ID changed: %q -> %q", name, ids[name], col.Id)
		}
	}
}

func TestSetup_EstimatesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		t.Fatalf("estimates collection not found: %v", err)
	}

	for _, name := range []string{
		"estimate_id", "customer_name", "customer_email", "item_count",
		"subtotal", "discount_percent", "grand_total", "format", "page_count", "created",
	} {
		if col.Fields.GetByName(name) == nil {
			t.Errorf("estimates is missing field %q", name)
		}
	}

	format, ok := col.Fields.GetByName("format").(*core.SelectField)
	if !ok {
		t.Fatalf("format field is %T, want *core.SelectField", col.Fields.GetByName("format"))
	}
	if len(format.Values) != 2 || format.Values[0] != "pdf" || format.Values[1] != "xlsx" {
		t.Errorf("format values = %v", format.Values)
	}
}

func TestSetup_RoomPresetSlugUnique(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("room_presets")

	first := core.NewRecord(col)
	first.Set("slug", "attic")
	first.Set("name", "Attic")
	first.Set("target_lux", 100)
	if err := app.Save(first); err != nil {
		t.Fatalf("save first preset: %v", err)
	}

	dup := core.NewRecord(col)
	dup.Set("slug", "attic")
	dup.Set("name", "Attic again")
	dup.Set("target_lux", 120)
	if err := app.Save(dup); err == nil {
		t.Error("expected duplicate slug to be rejected")
	}
}
