// Package service wires the storage, search and activity layers together
// and applies the application rules that span them: activity recording on
// task and meeting mutations, global search routing, the dashboard
// composite, and export/import.
package service

import (
	"log/slog"

	"github.com/iLusha80/kbase/internal/activity"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
	"github.com/iLusha80/kbase/internal/store"
)

// Service is the application service layer.
type Service struct {
	store  *store.Store
	index  *search.Index
	log    *activity.Log
	logger *slog.Logger
}

// New creates the service layer over an open store.
func New(st *store.Store, log *activity.Log, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, index: st.Index(), log: log, logger: logger}
}

// Store exposes the underlying store for read passthroughs.
func (s *Service) Store() *store.Store { return s.store }

// record appends an activity entry after a committed mutation. Logging
// failures are reported but never propagate: the mutation already happened
// and must not be rolled back or re-reported over a log problem.
func (s *Service) record(entityType string, id int64, eventType, field, oldV, newV string) {
	if err := s.log.Record(entityType, id, eventType, field, oldV, newV); err != nil {
		s.logger.Warn("activity record failed",
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", id),
			slog.String("error", err.Error()))
	}
}

func (s *Service) recordDiff(entityType string, id int64, changes []activity.FieldChange) {
	for _, err := range activity.Diff(s.log, entityType, id, changes) {
		s.logger.Warn("activity record failed",
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", id),
			slog.String("error", err.Error()))
	}
}

// CreateTask creates a task and records the creation event.
func (s *Service) CreateTask(in models.TaskInput) (*models.Task, error) {
	id, err := s.store.CreateTask(in)
	if err != nil {
		return nil, err
	}
	task, err := s.store.TaskByID(id)
	if err != nil {
		return nil, err
	}
	s.record(activity.EntityTask, id, activity.EventCreate, "Task", "", task.Title)
	return task, nil
}

// UpdateTask replaces a task's fields and records one activity entry per
// changed field. Both sides of the diff are re-read in hydrated form so
// resolved display values are compared, not raw ids.
func (s *Service) UpdateTask(id int64, in models.TaskInput) (*models.Task, error) {
	before, err := s.store.TaskByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateTask(id, in); err != nil {
		return nil, err
	}
	after, err := s.store.TaskByID(id)
	if err != nil {
		return nil, err
	}
	s.recordDiff(activity.EntityTask, id, activity.TaskChanges(*before, *after))
	return after, nil
}

// UpdateTaskStatus moves a task to another workflow status and records the
// transition with resolved status names.
func (s *Service) UpdateTaskStatus(id, statusID int64) (*models.Task, error) {
	before, err := s.store.TaskByID(id)
	if err != nil {
		return nil, err
	}
	status, err := s.store.TaskStatusByID(statusID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateTaskStatus(id, statusID); err != nil {
		return nil, err
	}
	oldName := ""
	if before.Status != nil {
		oldName = before.Status.Name
	}
	s.record(activity.EntityTask, id, activity.EventUpdate, "Status", oldName, status.Name)
	return s.store.TaskByID(id)
}

// DeleteTask removes a task. Its activity entries are kept.
func (s *Service) DeleteTask(id int64) error {
	return s.store.DeleteTask(id)
}

// CreateMeeting creates a meeting and records the creation event.
func (s *Service) CreateMeeting(in models.MeetingInput) (*models.Meeting, error) {
	id, err := s.store.CreateMeeting(in)
	if err != nil {
		return nil, err
	}
	m, err := s.store.MeetingByID(id)
	if err != nil {
		return nil, err
	}
	s.record(activity.EntityMeeting, id, activity.EventCreate, "Meeting", "", m.Title)
	return m, nil
}

// UpdateMeeting replaces a meeting's fields and records the changes.
func (s *Service) UpdateMeeting(id int64, in models.MeetingInput) (*models.Meeting, error) {
	before, err := s.store.MeetingByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateMeeting(id, in); err != nil {
		return nil, err
	}
	after, err := s.store.MeetingByID(id)
	if err != nil {
		return nil, err
	}
	s.recordDiff(activity.EntityMeeting, id, activity.MeetingChanges(*before, *after))
	return after, nil
}

// DeleteMeeting removes a meeting. Its activity entries are kept.
func (s *Service) DeleteMeeting(id int64) error {
	return s.store.DeleteMeeting(id)
}

// TaskActivity returns the change history of one task, newest first.
func (s *Service) TaskActivity(id int64) ([]activity.Entry, error) {
	return s.log.Entries(activity.EntityTask, id)
}

// CreateContact creates a contact and returns it hydrated.
func (s *Service) CreateContact(in models.ContactInput) (*models.Contact, error) {
	id, err := s.store.CreateContact(in)
	if err != nil {
		return nil, err
	}
	return s.store.ContactByID(id)
}

// UpdateContact replaces a contact's fields and returns it hydrated.
func (s *Service) UpdateContact(id int64, in models.ContactInput) (*models.Contact, error) {
	if err := s.store.UpdateContact(id, in); err != nil {
		return nil, err
	}
	return s.store.ContactByID(id)
}

// CreateProject creates a project and returns it hydrated.
func (s *Service) CreateProject(in models.ProjectInput) (*models.Project, error) {
	id, err := s.store.CreateProject(in)
	if err != nil {
		return nil, err
	}
	return s.store.ProjectByID(id)
}

// UpdateProject replaces a project's fields and returns it hydrated.
func (s *Service) UpdateProject(id int64, in models.ProjectInput) (*models.Project, error) {
	if err := s.store.UpdateProject(id, in); err != nil {
		return nil, err
	}
	return s.store.ProjectByID(id)
}
