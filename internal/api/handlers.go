package api

import (
	"net/http"

	"github.com/iLusha80/kbase/internal/report"
	"github.com/iLusha80/kbase/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *service.Service
	reports *report.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service, reports *report.Service) *Handler {
	return &Handler{svc: svc, reports: reports}
}

// ListTaskStatuses handles GET /api/task-statuses.
func (h *Handler) ListTaskStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.Store().TaskStatuses()
	if err != nil {
		writeError(w, err, "list task statuses")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.Store().Tasks()
	if err != nil {
		writeError(w, err, "list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	task, err := h.svc.Store().TaskByID(id)
	if err != nil {
		writeError(w, err, "get task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decode(w, r, &req) {
		return
	}
	task, err := h.svc.CreateTask(req.Input())
	if err != nil {
		writeError(w, err, "create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TaskRequest
	if !decode(w, r, &req) {
		return
	}
	task, err := h.svc.UpdateTask(id, req.Input())
	if err != nil {
		writeError(w, err, "update task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTaskStatus handles PUT /api/tasks/{id}/status.
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req TaskStatusRequest
	if !decode(w, r, &req) {
		return
	}
	task, err := h.svc.UpdateTaskStatus(id, req.StatusID)
	if err != nil {
		writeError(w, err, "update task status")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(id); err != nil {
		writeError(w, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTaskComments handles GET /api/tasks/{id}/comments.
func (h *Handler) ListTaskComments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	comments, err := h.svc.Store().TaskComments(id)
	if err != nil {
		writeError(w, err, "list task comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// AddTaskComment handles POST /api/tasks/{id}/comments.
func (h *Handler) AddTaskComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !decode(w, r, &req) {
		return
	}
	comment, err := h.svc.Store().AddTaskComment(id, req.Text)
	if err != nil {
		writeError(w, err, "add task comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// GetTaskActivity handles GET /api/tasks/{id}/activity.
func (h *Handler) GetTaskActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.TaskActivity(id)
	if err != nil {
		writeError(w, err, "task activity")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
