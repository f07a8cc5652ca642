package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iLusha80/kbase/internal/models"
)

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.svc.GlobalSearch(q)
	if err != nil {
		writeError(w, err, "search")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dashboard())
}

// RecentActivity handles GET /api/activity.
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.RecentActivity(limit)
	if err != nil {
		writeError(w, err, "recent activity")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Standup handles GET /api/reports/standup.
func (h *Handler) Standup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.DailyStandup())
}

// WeeklyReport handles GET /api/reports/weekly. The range defaults to the
// trailing seven days; since/until accept YYYY-MM-DD overrides.
func (h *Handler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	until := now
	since := now.AddDate(0, 0, -7)

	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid since date"))
			return
		}
		since = d.Time
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid until date"))
			return
		}
		// Include the whole until day.
		until = d.Time.Add(24*time.Hour - time.Nanosecond)
	}
	if until.Before(since) {
		writeJSON(w, http.StatusBadRequest, errorBody("until is before since"))
		return
	}
	writeJSON(w, http.StatusOK, h.reports.WeeklyReport(since, until))
}
