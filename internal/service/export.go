package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
)

// ExportBundle is the full-database JSON snapshot.
type ExportBundle struct {
	ExportedAt time.Time          `json:"exported_at"`
	Contacts   []models.Contact   `json:"contacts"`
	Tasks      []models.Task      `json:"tasks"`
	Projects   []models.Project   `json:"projects"`
	Meetings   []models.Meeting   `json:"meetings"`
	Tags       []models.Tag       `json:"tags"`
	QuickLinks []models.QuickLink `json:"quick_links"`
}

// Export snapshots every entity collection into a bundle.
func (s *Service) Export() (*ExportBundle, error) {
	out := &ExportBundle{ExportedAt: time.Now().UTC()}
	var err error
	if out.Contacts, err = s.store.Contacts(); err != nil {
		return nil, fmt.Errorf("export contacts: %w", err)
	}
	if out.Tasks, err = s.store.Tasks(); err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	if out.Projects, err = s.store.Projects(); err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	if out.Meetings, err = s.store.Meetings(); err != nil {
		return nil, fmt.Errorf("export meetings: %w", err)
	}
	if out.Tags, err = s.store.Tags(); err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}
	if out.QuickLinks, err = s.store.QuickLinks(); err != nil {
		return nil, fmt.Errorf("export quick links: %w", err)
	}
	return out, nil
}

// csvWriter returns a writer using the semicolon delimiter spreadsheet
// users here expect.
func csvWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

// TasksCSV writes all tasks as semicolon-delimited CSV.
func (s *Service) TasksCSV(w io.Writer) error {
	tasks, err := s.store.Tasks()
	if err != nil {
		return err
	}
	cw := csvWriter(w)
	if err := cw.Write([]string{"id", "title", "description", "status", "due_date", "assignee", "project", "tags", "created_at"}); err != nil {
		return err
	}
	for _, t := range tasks {
		status := ""
		if t.Status != nil {
			status = t.Status.Name
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		tags := make([]string, len(t.Tags))
		for i, g := range t.Tags {
			tags[i] = g.Name
		}
		row := []string{
			strconv.FormatInt(t.ID, 10), t.Title, t.Description, status, due,
			t.AssigneeName, t.ProjectTitle, strings.Join(tags, ","),
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ContactsCSV writes all contacts as semicolon-delimited CSV.
func (s *Service) ContactsCSV(w io.Writer) error {
	contacts, err := s.store.Contacts()
	if err != nil {
		return err
	}
	cw := csvWriter(w)
	if err := cw.Write([]string{"id", "last_name", "first_name", "middle_name", "department", "role", "email", "phone", "type", "tags"}); err != nil {
		return err
	}
	for _, c := range contacts {
		typeName := ""
		if c.Type != nil {
			typeName = c.Type.Name
		}
		tags := make([]string, len(c.Tags))
		for i, g := range c.Tags {
			tags[i] = g.Name
		}
		row := []string{
			strconv.FormatInt(c.ID, 10), c.LastName, c.FirstName, c.MiddleName,
			c.Department, c.Role, c.Email, c.Phone, typeName, strings.Join(tags, ","),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCounts reports how many records an import actually created.
type ImportCounts struct {
	Contacts   int `json:"contacts"`
	Projects   int `json:"projects"`
	Tasks      int `json:"tasks"`
	Meetings   int `json:"meetings"`
	Tags       int `json:"tags"`
	QuickLinks int `json:"quick_links"`
}

// Import loads a bundle, skipping records that already exist. Matching is
// by display name for contacts, title for projects and tasks, title plus
// date for meetings, normalized name for tags and URL for quick links.
// References inside imported tasks and meetings are re-resolved by name
// against the database after contacts and projects are in, so ids from the
// source database never leak into this one.
func (s *Service) Import(b ExportBundle) (*ImportCounts, error) {
	counts := &ImportCounts{}

	for _, g := range b.Tags {
		_, err := s.store.CreateTag(g.Name)
		if errors.Is(err, apperr.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return counts, fmt.Errorf("import tag %q: %w", g.Name, err)
		}
		counts.Tags++
	}

	existingContacts, err := s.store.Contacts()
	if err != nil {
		return counts, err
	}
	contactIDs := map[string]int64{}
	for _, c := range existingContacts {
		contactIDs[c.DisplayName()] = c.ID
	}
	for _, c := range b.Contacts {
		name := c.DisplayName()
		if _, ok := contactIDs[name]; ok {
			continue
		}
		id, err := s.store.CreateContact(contactInput(c))
		if err != nil {
			return counts, fmt.Errorf("import contact %q: %w", name, err)
		}
		contactIDs[name] = id
		counts.Contacts++
	}

	existingProjects, err := s.store.Projects()
	if err != nil {
		return counts, err
	}
	projectIDs := map[string]int64{}
	for _, p := range existingProjects {
		projectIDs[p.Title] = p.ID
	}
	for _, p := range b.Projects {
		if _, ok := projectIDs[p.Title]; ok {
			continue
		}
		id, err := s.store.CreateProject(models.ProjectInput{
			Title: p.Title, Description: p.Description, Status: p.Status, Link: p.Link,
		})
		if err != nil {
			return counts, fmt.Errorf("import project %q: %w", p.Title, err)
		}
		projectIDs[p.Title] = id
		counts.Projects++
	}

	existingTasks, err := s.store.Tasks()
	if err != nil {
		return counts, err
	}
	taskTitles := map[string]bool{}
	for _, t := range existingTasks {
		taskTitles[t.Title] = true
	}
	for _, t := range b.Tasks {
		if taskTitles[t.Title] {
			continue
		}
		in := models.TaskInput{
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Tags:        tagNames(t.Tags),
		}
		if t.Status != nil {
			if st, err := s.store.TaskStatusByName(t.Status.Name); err == nil {
				in.StatusID = st.ID
			}
		}
		if id, ok := contactIDs[t.AssigneeName]; ok {
			in.AssigneeID = &id
		}
		if id, ok := contactIDs[t.AuthorName]; ok {
			in.AuthorID = &id
		}
		if id, ok := projectIDs[t.ProjectTitle]; ok {
			in.ProjectID = &id
		}
		if _, err := s.store.CreateTask(in); err != nil {
			return counts, fmt.Errorf("import task %q: %w", t.Title, err)
		}
		taskTitles[t.Title] = true
		counts.Tasks++
	}

	existingMeetings, err := s.store.Meetings()
	if err != nil {
		return counts, err
	}
	meetingKeys := map[string]bool{}
	for _, m := range existingMeetings {
		meetingKeys[m.Title+"|"+m.Date.String()] = true
	}
	for _, m := range b.Meetings {
		key := m.Title + "|" + m.Date.String()
		if meetingKeys[key] {
			continue
		}
		date := m.Date
		in := models.MeetingInput{
			Title:           m.Title,
			Date:            &date,
			Time:            m.Time,
			DurationMinutes: m.DurationMinutes,
			Agenda:          m.Agenda,
			Notes:           m.Notes,
			Status:          m.Status,
		}
		if id, ok := projectIDs[m.ProjectTitle]; ok {
			in.ProjectID = &id
		}
		if _, err := s.store.CreateMeeting(in); err != nil {
			return counts, fmt.Errorf("import meeting %q: %w", m.Title, err)
		}
		meetingKeys[key] = true
		counts.Meetings++
	}

	existingLinks, err := s.store.QuickLinks()
	if err != nil {
		return counts, err
	}
	linkURLs := map[string]bool{}
	for _, l := range existingLinks {
		linkURLs[l.URL] = true
	}
	for _, l := range b.QuickLinks {
		if linkURLs[l.URL] {
			continue
		}
		if _, err := s.store.CreateQuickLink(l.Title, l.URL, l.Icon); err != nil {
			return counts, fmt.Errorf("import quick link %q: %w", l.URL, err)
		}
		linkURLs[l.URL] = true
		counts.QuickLinks++
	}

	return counts, nil
}

func contactInput(c models.Contact) models.ContactInput {
	return models.ContactInput{
		LastName:   c.LastName,
		FirstName:  c.FirstName,
		MiddleName: c.MiddleName,
		Department: c.Department,
		Role:       c.Role,
		Email:      c.Email,
		Phone:      c.Phone,
		Link:       c.Link,
		Notes:      c.Notes,
		IsSelf:     false, // never import someone else's self flag
		IsTeam:     c.IsTeam,
		Tags:       tagNames(c.Tags),
	}
}

func tagNames(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}
