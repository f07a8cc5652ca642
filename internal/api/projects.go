package api

import "net/http"

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Store().Projects()
	if err != nil {
		writeError(w, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	project, err := h.svc.Store().ProjectByID(id)
	if err != nil {
		writeError(w, err, "get project")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !decode(w, r, &req) {
		return
	}
	project, err := h.svc.CreateProject(req.Input())
	if err != nil {
		writeError(w, err, "create project")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// UpdateProject handles PUT /api/projects/{id}.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ProjectRequest
	if !decode(w, r, &req) {
		return
	}
	project, err := h.svc.UpdateProject(id, req.Input())
	if err != nil {
		writeError(w, err, "update project")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/{id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Store().DeleteProject(id); err != nil {
		writeError(w, err, "delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMeetings handles GET /api/meetings.
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.svc.Store().Meetings()
	if err != nil {
		writeError(w, err, "list meetings")
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}

// GetMeeting handles GET /api/meetings/{id}.
func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	meeting, err := h.svc.Store().MeetingByID(id)
	if err != nil {
		writeError(w, err, "get meeting")
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// CreateMeeting handles POST /api/meetings.
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetingRequest
	if !decode(w, r, &req) {
		return
	}
	meeting, err := h.svc.CreateMeeting(req.Input())
	if err != nil {
		writeError(w, err, "create meeting")
		return
	}
	writeJSON(w, http.StatusCreated, meeting)
}

// UpdateMeeting handles PUT /api/meetings/{id}.
func (h *Handler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req MeetingRequest
	if !decode(w, r, &req) {
		return
	}
	meeting, err := h.svc.UpdateMeeting(id, req.Input())
	if err != nil {
		writeError(w, err, "update meeting")
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// DeleteMeeting handles DELETE /api/meetings/{id}.
func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMeeting(id); err != nil {
		writeError(w, err, "delete meeting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
