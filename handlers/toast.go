package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

const flashCookieName = "flash_toast"

type toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// mergeTrigger adds event to an HX-Trigger JSON object. A missing or
// non-JSON existing value is replaced.
func mergeTrigger(existing, event string, payload any) (string, error) {
	merged := map[string]any{}
	if existing != "" {
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			merged = map[string]any{}
		}
	}
	merged[event] = payload

	data, err := json.Marshal(merged)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetToast fires a "showToast" client event through HX-Trigger and mirrors
// it in a short-lived flash cookie, so the toast also shows after a plain
// form post that ends in a redirect.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	t := toast{Message: message, Type: toastType}

	trigger, err := mergeTrigger(e.Response.Header().Get("HX-Trigger"), "showToast", t)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", trigger)

	cookieVal, err := json.Marshal(t)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by the toast script
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast shows message as an error toast and answers with statusCode.
// HX-Reswap: none keeps HTMX from swapping the error body into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
