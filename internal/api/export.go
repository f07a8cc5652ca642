package api

import (
	"encoding/json"
	"net/http"

	"github.com/iLusha80/kbase/internal/service"
)

// ExportJSON handles GET /api/export/json.
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.svc.Export()
	if err != nil {
		writeError(w, err, "export json")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="kbase-export.json"`)
	writeJSON(w, http.StatusOK, bundle)
}

// ExportTasksCSV handles GET /api/export/tasks.csv.
func (h *Handler) ExportTasksCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := h.svc.TasksCSV(w); err != nil {
		writeError(w, err, "export tasks csv")
	}
}

// ExportContactsCSV handles GET /api/export/contacts.csv.
func (h *Handler) ExportContactsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)
	if err := h.svc.ContactsCSV(w); err != nil {
		writeError(w, err, "export contacts csv")
	}
}

// ImportJSON handles POST /api/import/json.
func (h *Handler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	var bundle service.ExportBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	counts, err := h.svc.Import(bundle)
	if err != nil {
		writeError(w, err, "import json")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
