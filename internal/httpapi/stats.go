package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.Stats.Snapshot(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   snap,
		"message": "Statistics retrieved successfully",
	})
}

func (a *API) statsByDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, ok := parseDate(q.Get("startDate"))
	if !ok {
		badRequest(w, "Invalid date format", apperr.Fields{"received": apperr.Fields{"startDate": q.Get("startDate")}})
		return
	}
	end, ok := parseDate(q.Get("endDate"))
	if !ok {
		badRequest(w, "Invalid date format", apperr.Fields{"received": apperr.Fields{"endDate": q.Get("endDate")}})
		return
	}

	stats, err := a.svc.Stats.ByDateRange(r.Context(), start, end)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

// parseDate returns nil for an empty value.
func parseDate(v string) (*time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}
