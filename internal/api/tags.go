package api

import "net/http"

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Store().Tags()
	if err != nil {
		writeError(w, err, "list tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// CreateTag handles POST /api/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.svc.Store().CreateTag(req.Name)
	if err != nil {
		writeError(w, err, "create tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// UpdateTag handles PUT /api/tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.svc.Store().UpdateTag(id, req.Name)
	if err != nil {
		writeError(w, err, "update tag")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Store().DeleteTag(id); err != nil {
		writeError(w, err, "delete tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListQuickLinks handles GET /api/quick-links.
func (h *Handler) ListQuickLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.Store().QuickLinks()
	if err != nil {
		writeError(w, err, "list quick links")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// CreateQuickLink handles POST /api/quick-links.
func (h *Handler) CreateQuickLink(w http.ResponseWriter, r *http.Request) {
	var req QuickLinkRequest
	if !decode(w, r, &req) {
		return
	}
	link, err := h.svc.Store().CreateQuickLink(req.Title, req.URL, req.Icon)
	if err != nil {
		writeError(w, err, "create quick link")
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// UpdateQuickLink handles PUT /api/quick-links/{id}.
func (h *Handler) UpdateQuickLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req QuickLinkRequest
	if !decode(w, r, &req) {
		return
	}
	link, err := h.svc.Store().UpdateQuickLink(id, req.Title, req.URL, req.Icon)
	if err != nil {
		writeError(w, err, "update quick link")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// DeleteQuickLink handles DELETE /api/quick-links/{id}.
func (h *Handler) DeleteQuickLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Store().DeleteQuickLink(id); err != nil {
		writeError(w, err, "delete quick link")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
