package api

import "net/http"

// ListContactTypes handles GET /api/contact-types.
func (h *Handler) ListContactTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.Store().ContactTypes()
	if err != nil {
		writeError(w, err, "list contact types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// ListContacts handles GET /api/contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.Store().Contacts()
	if err != nil {
		writeError(w, err, "list contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// GetContact handles GET /api/contacts/{id}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	contact, err := h.svc.Store().ContactByID(id)
	if err != nil {
		writeError(w, err, "get contact")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// CreateContact handles POST /api/contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decode(w, r, &req) {
		return
	}
	contact, err := h.svc.CreateContact(req.Input())
	if err != nil {
		writeError(w, err, "create contact")
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/contacts/{id}.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ContactRequest
	if !decode(w, r, &req) {
		return
	}
	contact, err := h.svc.UpdateContact(id, req.Input())
	if err != nil {
		writeError(w, err, "update contact")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/{id}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Store().DeleteContact(id); err != nil {
		writeError(w, err, "delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
