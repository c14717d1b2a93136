package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToastEvent() (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	return e, rec
}

func parseTrigger(t *testing.T, header string) map[string]json.RawMessage {
	t.Helper()
	var parsed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(header), &parsed), "HX-Trigger is not valid JSON: %s", header)
	return parsed
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", "success", "Catalog reloaded"},
		{"error", "error", "Could not load the product catalog"},
		{"quotes", "info", `Item "Special" saved`},
		{"markup", "info", `<script>alert("xss")</script>`},
		{"newline", "warning", "line1\nline2"},
		{"unicode", "success", "Saved ✔ ₹270.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newToastEvent()
			SetToast(e, tt.toastType, tt.message)

			parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
			var got toast
			require.NoError(t, json.Unmarshal(parsed["showToast"], &got))
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, tt.toastType, got.Type)
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", `{"summaryChanged":{"items":"2"}}`)

	SetToast(e, "success", "Merged toast")

	parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
	assert.JSONEq(t, `{"items":"2"}`, string(parsed["summaryChanged"]))
	assert.Contains(t, string(parsed["showToast"]), "Merged toast")
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
	assert.Len(t, parsed, 1)
	assert.Contains(t, parsed, "showToast")
}

func TestSetToast_FlashCookie(t *testing.T) {
	e, rec := newToastEvent()
	SetToast(e, "error", "Select at least one item to export")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, flashCookieName, cookies[0].Name)
	assert.False(t, cookies[0].HttpOnly)

	raw, err := url.QueryUnescape(cookies[0].Value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Select at least one item to export","type":"error"}`, raw)
}

func TestErrorToast(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "Invalid catalog index"},
		{"unprocessable", http.StatusUnprocessableEntity, "Select at least one item to export"},
		{"unavailable", http.StatusServiceUnavailable, "The document renderer is not available"},
		{"server error", http.StatusInternalServerError, "Failed to generate the estimate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newToastEvent()

			require.NoError(t, ErrorToast(e, tt.code, tt.msg))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "none", rec.Header().Get("HX-Reswap"))
			assert.Equal(t, tt.msg, rec.Body.String())

			var got toast
			require.NoError(t, json.Unmarshal(parseTrigger(t, rec.Header().Get("HX-Trigger"))["showToast"], &got))
			assert.Equal(t, "error", got.Type)
		})
	}
}

func TestMergeTrigger(t *testing.T) {
	out, err := mergeTrigger("", "showToast", toast{Message: "hi", Type: "info"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"showToast":{"message":"hi","type":"info"}}`, out)

	out, err = mergeTrigger(`{"a":1}`, "b", 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":2}`, out)
}
