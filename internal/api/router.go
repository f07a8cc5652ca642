package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/iLusha80/kbase/internal/report"
	"github.com/iLusha80/kbase/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *service.Service, reports *report.Service) chi.Router {
	h := NewHandler(svc, reports)

	r := chi.NewRouter()

	// Contacts.
	r.Get("/contact-types", h.ListContactTypes)
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/{id}", h.GetContact)
	r.Put("/contacts/{id}", h.UpdateContact)
	r.Delete("/contacts/{id}", h.DeleteContact)

	// Tasks.
	r.Get("/task-statuses", h.ListTaskStatuses)
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Put("/tasks/{id}/status", h.UpdateTaskStatus)
	r.Get("/tasks/{id}/comments", h.ListTaskComments)
	r.Post("/tasks/{id}/comments", h.AddTaskComment)
	r.Get("/tasks/{id}/activity", h.GetTaskActivity)

	// Projects and meetings.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.GetProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)
	r.Get("/meetings", h.ListMeetings)
	r.Post("/meetings", h.CreateMeeting)
	r.Get("/meetings/{id}", h.GetMeeting)
	r.Put("/meetings/{id}", h.UpdateMeeting)
	r.Delete("/meetings/{id}", h.DeleteMeeting)

	// Tags and quick links.
	r.Get("/tags", h.ListTags)
	r.Post("/tags", h.CreateTag)
	r.Put("/tags/{id}", h.UpdateTag)
	r.Delete("/tags/{id}", h.DeleteTag)
	r.Get("/quick-links", h.ListQuickLinks)
	r.Post("/quick-links", h.CreateQuickLink)
	r.Put("/quick-links/{id}", h.UpdateQuickLink)
	r.Delete("/quick-links/{id}", h.DeleteQuickLink)

	// Search, dashboard, activity, reports.
	r.Get("/search", h.Search)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/activity", h.RecentActivity)
	r.Get("/reports/standup", h.Standup)
	r.Get("/reports/weekly", h.WeeklyReport)

	// Export and import.
	r.Get("/export/json", h.ExportJSON)
	r.Get("/export/tasks.csv", h.ExportTasksCSV)
	r.Get("/export/contacts.csv", h.ExportContactsCSV)
	r.Post("/import/json", h.ImportJSON)

	return r
}
