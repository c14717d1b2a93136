package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"lightquote/config"
	"lightquote/services"
	"lightquote/templates"
)

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// numberParam reads a required numeric query or form value.
func numberParam(e *core.RequestEvent, name string) (float64, error) {
	raw := strings.TrimSpace(e.Request.FormValue(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", services.ErrInvalidInput, name)
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", services.ErrInvalidInput, name)
	}
	return v, nil
}

// toolError answers a failed calculation. HTMX callers get the message as a
// fragment so it lands in the result slot; API callers get a JSON error.
func toolError(e *core.RequestEvent, err error) error {
	status := http.StatusBadRequest
	if !errors.Is(err, services.ErrInvalidInput) {
		status = http.StatusInternalServerError
	}
	if isHTMX(e) {
		return templates.ToolError(err.Error()).Render(e.Request.Context(), e.Response)
	}
	return e.JSON(status, map[string]string{"error": err.Error()})
}

func toolResult(e *core.RequestEvent, fragment templ.Component, payload any) error {
	if isHTMX(e) {
		return fragment.Render(e.Request.Context(), e.Response)
	}
	return e.JSON(http.StatusOK, payload)
}

// HandleToolsPage renders the calculators.
func HandleToolsPage(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		presets := services.LoadRoomPresets(app)
		rooms := make([]templates.RoomOption, 0, len(presets))
		for _, p := range presets {
			rooms = append(rooms, templates.RoomOption{Slug: p.Slug, Name: p.Name})
		}

		data := templates.ToolsPageData{
			Title:         "Lighting Tools",
			Rooms:         rooms,
			FixtureLumens: cfg.FixtureLumens,
		}

		var component templ.Component
		if isHTMX(e) {
			component = templates.ToolsContent(data)
		} else {
			component = templates.ToolsPage(data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// HandleLength converts between feet and metres. from=ft (default) converts
// feet to metres, from=m the other way.
func HandleLength() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		value, err := numberParam(e, "value")
		if err != nil {
			return toolError(e, err)
		}

		from := strings.ToLower(strings.TrimSpace(e.Request.FormValue("from")))
		var result float64
		var fromUnit, toUnit string
		switch from {
		case "", "ft":
			result, err = services.FeetToMeters(value)
			fromUnit, toUnit = "ft", "m"
		case "m":
			result, err = services.MetersToFeet(value)
			fromUnit, toUnit = "m", "ft"
		default:
			err = fmt.Errorf("%w: unknown unit %q", services.ErrInvalidInput, from)
		}
		if err != nil {
			return toolError(e, err)
		}

		display := services.FormatDecimal(result, 4) + " " + toUnit
		return toolResult(e, templates.ToolResult("Result", display), map[string]any{
			"value":   value,
			"from":    fromUnit,
			"to":      toUnit,
			"result":  result,
			"display": display,
		})
	}
}

// HandleLumens computes lumens = watts × efficacy.
func HandleLumens() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		watts, err := numberParam(e, "watts")
		if err != nil {
			return toolError(e, err)
		}
		efficacy, err := numberParam(e, "efficacy")
		if err != nil {
			return toolError(e, err)
		}

		lumens, err := services.CalcLumens(watts, efficacy)
		if err != nil {
			return toolError(e, err)
		}

		display := services.FormatDecimal(lumens, 2) + " lm"
		return toolResult(e, templates.ToolResult("Lumens", display), map[string]any{
			"watts":    watts,
			"efficacy": efficacy,
			"lumens":   services.Round2(lumens),
			"display":  display,
		})
	}
}

// HandleLux estimates illuminance below a fixture at the given mounting height.
func HandleLux() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		lumens, err := numberParam(e, "lumens")
		if err != nil {
			return toolError(e, err)
		}
		height, err := numberParam(e, "height")
		if err != nil {
			return toolError(e, err)
		}

		lux, err := services.CalcLux(lumens, height)
		if err != nil {
			return toolError(e, err)
		}

		display := services.FormatDecimal(lux, 2) + " lx"
		return toolResult(e, templates.ToolResult("Approximate illuminance", display), map[string]any{
			"lumens":  lumens,
			"height":  height,
			"lux":     services.Round2(lux),
			"display": display,
		})
	}
}

// HandleLEDDriver sizes a constant-current driver for a series LED string.
func HandleLEDDriver() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		vf, err := numberParam(e, "vf")
		if err != nil {
			return toolError(e, err)
		}
		current, err := numberParam(e, "current")
		if err != nil {
			return toolError(e, err)
		}
		countRaw, err := numberParam(e, "count")
		if err != nil {
			return toolError(e, err)
		}
		if countRaw != float64(int(countRaw)) {
			return toolError(e, fmt.Errorf("%w: count must be a whole number", services.ErrInvalidInput))
		}

		spec, err := services.CalcLEDDriver(vf, current, int(countRaw))
		if err != nil {
			return toolError(e, err)
		}

		return toolResult(e, templates.ToolResult("Driver", spec.Recommendation), map[string]any{
			"total_voltage":  services.Round2(spec.TotalVoltage),
			"total_power":    services.Round2(spec.TotalPower),
			"current_ma":     spec.CurrentMA,
			"recommendation": spec.Recommendation,
		})
	}
}

// roomsRequest is the JSON body accepted by HandleRoomSuggest.
type roomsRequest struct {
	FixtureLumens float64                `json:"fixture_lumens"`
	Rooms         []services.RoomRequest `json:"rooms"`
}

// readRoomsRequest accepts either a JSON body or the tools form, where
// room_type and room_size repeat once per row and blank rows are skipped.
func readRoomsRequest(e *core.RequestEvent, defaultLumens float64) (roomsRequest, error) {
	req := roomsRequest{FixtureLumens: defaultLumens}

	if strings.HasPrefix(e.Request.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("%w: malformed JSON body", services.ErrInvalidInput)
		}
		if req.FixtureLumens == 0 {
			req.FixtureLumens = defaultLumens
		}
		return req, nil
	}

	if err := e.Request.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: malformed form", services.ErrInvalidInput)
	}
	if raw := strings.TrimSpace(e.Request.PostForm.Get("fixture_lumens")); raw != "" {
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return req, fmt.Errorf("%w: fixture_lumens must be a number", services.ErrInvalidInput)
		}
		req.FixtureLumens = v
	}

	types := e.Request.PostForm["room_type"]
	sizes := e.Request.PostForm["room_size"]
	for i, t := range types {
		if strings.TrimSpace(t) == "" {
			continue
		}
		size := ""
		if i < len(sizes) {
			size = sizes[i]
		}
		req.Rooms = append(req.Rooms, services.RoomRequest{Type: t, Size: size})
	}
	return req, nil
}

// HandleRoomSuggest suggests fixture counts for up to a handful of rooms.
func HandleRoomSuggest(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := readRoomsRequest(e, cfg.FixtureLumens)
		if err != nil {
			return toolError(e, err)
		}

		suggestions, err := services.SuggestLighting(req.Rooms, services.LoadRoomPresets(app), req.FixtureLumens)
		if err != nil {
			return toolError(e, err)
		}

		rows := make([]templates.RoomSuggestionRow, 0, len(suggestions))
		total := 0
		for _, s := range suggestions {
			rows = append(rows, templates.RoomSuggestionRow{
				Room:         s.Room,
				Size:         s.Size,
				TargetLux:    services.FormatDecimal(s.TargetLux, 0),
				LumensNeeded: services.FormatDecimal(s.LumensNeeded, 2),
				Fixtures:     s.Fixtures,
			})
			total += s.Fixtures
		}

		return toolResult(e, templates.RoomSuggestionTable(rows), map[string]any{
			"rooms":          suggestions,
			"total_fixtures": total,
		})
	}
}
