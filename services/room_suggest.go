package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
)

// Room sizes accepted by the suggestion tool.
const (
	RoomSmall      = "small"
	RoomMedium     = "medium"
	RoomLarge      = "large"
	RoomExtraLarge = "extra-large"
)

// DefaultFixtureLumens is the output assumed for one fixture when none is given.
const DefaultFixtureLumens = 800.0

// RoomSizeAreas maps a size to an approximate floor area in square metres.
var RoomSizeAreas = map[string]float64{
	RoomSmall:      9.3,
	RoomMedium:     13.9,
	RoomLarge:      18.6,
	RoomExtraLarge: 27.9,
}

// RoomPreset is the recommended illuminance for a room type.
type RoomPreset struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	TargetLux float64 `json:"target_lux"`
}

var DefaultRoomPresets = []RoomPreset{
	{Slug: "bedroom", Name: "Bedroom", TargetLux: 150},
	{Slug: "living-room", Name: "Living Room", TargetLux: 200},
	{Slug: "kitchen", Name: "Kitchen", TargetLux: 300},
	{Slug: "bathroom", Name: "Bathroom", TargetLux: 200},
	{Slug: "office-study", Name: "Office/Study", TargetLux: 500},
	{Slug: "dining-room", Name: "Dining Room", TargetLux: 200},
	{Slug: "hallway", Name: "Hallway", TargetLux: 100},
	{Slug: "garage", Name: "Garage", TargetLux: 100},
	{Slug: "laundry-room", Name: "Laundry Room", TargetLux: 300},
}

// RoomSlug normalises a room name ("Office/Study") to its preset slug.
func RoomSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "/", "-").Replace(s)
}

// RoomRequest is one room row of the suggestion form.
type RoomRequest struct {
	Type string `json:"type"`
	Size string `json:"size"`
}

func (r RoomRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Size, validation.Required,
			validation.In(RoomSmall, RoomMedium, RoomLarge, RoomExtraLarge)),
	)
}

// RoomSuggestion is the lighting needed for one room.
type RoomSuggestion struct {
	Room          string  `json:"room"`
	Size          string  `json:"size"`
	AreaSqM       float64 `json:"area_sqm"`
	TargetLux     float64 `json:"target_lux"`
	LumensNeeded  float64 `json:"lumens_needed"`
	FixtureLumens float64 `json:"fixture_lumens"`
	Fixtures      int     `json:"fixtures"`
}

// SuggestLighting computes required lumens (target lux × area ÷ 0.7) and the
// fixture count for each room. No rooms means one medium bedroom. An unknown
// room type or size fails the whole request, naming the offending row.
func SuggestLighting(rooms []RoomRequest, presets []RoomPreset, fixtureLumens float64) ([]RoomSuggestion, error) {
	if err := validation.Validate(fixtureLumens, finite, validation.Required, validation.Min(0.0).Exclusive()); err != nil {
		return nil, invalid(fmt.Errorf("fixture lumens: %v", err))
	}
	if len(presets) == 0 {
		presets = DefaultRoomPresets
	}
	if len(rooms) == 0 {
		rooms = []RoomRequest{{Type: "bedroom", Size: RoomMedium}}
	}

	bySlug := make(map[string]RoomPreset, len(presets))
	for _, p := range presets {
		bySlug[RoomSlug(p.Slug)] = p
	}

	out := make([]RoomSuggestion, 0, len(rooms))
	for i, r := range rooms {
		r.Size = strings.ToLower(strings.TrimSpace(r.Size))
		if err := r.Validate(); err != nil {
			return nil, invalid(fmt.Errorf("room %d: %v", i+1, err))
		}
		preset, ok := bySlug[RoomSlug(r.Type)]
		if !ok {
			return nil, invalid(fmt.Errorf("room %d: unknown room type %q", i+1, r.Type))
		}

		area := RoomSizeAreas[r.Size]
		lumens := preset.TargetLux * area / LuxUtilizationFactor
		out = append(out, RoomSuggestion{
			Room:          preset.Name,
			Size:          r.Size,
			AreaSqM:       area,
			TargetLux:     preset.TargetLux,
			LumensNeeded:  Round2(lumens),
			FixtureLumens: fixtureLumens,
			Fixtures:      int(math.Ceil(lumens / fixtureLumens)),
		})
	}
	return out, nil
}

// LoadRoomPresets reads the room_presets collection ordered by sort_order,
// falling back to DefaultRoomPresets when it is missing or empty.
func LoadRoomPresets(app *pocketbase.PocketBase) []RoomPreset {
	records, err := app.FindAllRecords("room_presets")
	if err != nil || len(records) == 0 {
		return DefaultRoomPresets
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].GetInt("sort_order") < records[j].GetInt("sort_order")
	})

	presets := make([]RoomPreset, 0, len(records))
	for _, r := range records {
		presets = append(presets, RoomPreset{
			Slug:      r.GetString("slug"),
			Name:      r.GetString("name"),
			TargetLux: r.GetFloat("target_lux"),
		})
	}
	return presets
}
