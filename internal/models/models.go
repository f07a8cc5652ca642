// Package models defines the domain types for kbase.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for date-only values.
const DateLayout = "2006-01-02"

// Date is a calendar date (no time component) serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON serializes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ContactType classifies contacts (e.g. management, own team, vendors).
type ContactType struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Contact is a person in the knowledge base.
type Contact struct {
	ID         int64        `json:"id"`
	LastName   string       `json:"last_name"`
	FirstName  string       `json:"first_name"`
	MiddleName string       `json:"middle_name"`
	Department string       `json:"department"`
	Role       string       `json:"role"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Link       string       `json:"link"`
	Notes      string       `json:"notes"`
	TypeID     *int64       `json:"type_id"`
	Type       *ContactType `json:"type,omitempty"`
	IsSelf     bool         `json:"is_self"`
	IsTeam     bool         `json:"is_team"`
	Tags       []Tag        `json:"tags"`
}

// DisplayName is the short human-readable form used in lists and reports.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}

// ContactInput carries the mutable fields of a contact for create/update.
type ContactInput struct {
	LastName   string
	FirstName  string
	MiddleName string
	Department string
	Role       string
	Email      string
	Phone      string
	Link       string
	Notes      string
	TypeID     *int64
	IsSelf     bool
	IsTeam     bool
	Tags       []string
}

// TaskStatus is a workflow state for tasks.
type TaskStatus struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Seeded task status names. Reports key off these.
const (
	StatusTodo       = "To Do"
	StatusInProgress = "In Progress"
	StatusWaiting    = "Waiting"
	StatusDone       = "Done"
)

// Task is a unit of work, optionally tied to a project and an assignee.
type Task struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	DueDate      *Date       `json:"due_date"`
	CreatedAt    time.Time   `json:"created_at"`
	StatusID     int64       `json:"status_id"`
	Status       *TaskStatus `json:"status,omitempty"`
	AssigneeID   *int64      `json:"assignee_id"`
	AssigneeName string      `json:"assignee_name,omitempty"`
	AuthorID     *int64      `json:"author_id"`
	AuthorName   string      `json:"author_name,omitempty"`
	ProjectID    *int64      `json:"project_id"`
	ProjectTitle string      `json:"project_title,omitempty"`
	Tags         []Tag       `json:"tags"`
}

// TaskInput carries the mutable fields of a task for create/update.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *Date
	StatusID    int64 // 0 selects the default ("To Do") status
	AssigneeID  *int64
	AuthorID    *int64
	ProjectID   *int64
	Tags        []string
}

// TaskComment is a free-text note attached to a task.
type TaskComment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Project statuses.
const (
	ProjectActive   = "Active"
	ProjectPlanning = "Planning"
	ProjectOnHold   = "On Hold"
	ProjectArchived = "Archived"
	ProjectDone     = "Done"
)

// Project groups tasks and meetings.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
	TasksCount  int       `json:"tasks_count"`
	DoneCount   int       `json:"completed_tasks_count"`
}

// ProjectInput carries the mutable fields of a project.
type ProjectInput struct {
	Title       string
	Description string
	Status      string // empty selects "Active"
	Link        string
}

// Meeting statuses.
const (
	MeetingPlanned    = "planned"
	MeetingInProgress = "in_progress"
	MeetingCompleted  = "completed"
	MeetingCancelled  = "cancelled"
)

// Meeting is a scheduled or held meeting, optionally tied to a project.
type Meeting struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Date            Date      `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes *int64    `json:"duration_minutes"`
	Agenda          string    `json:"agenda"`
	Notes           string    `json:"notes"`
	ProjectID       *int64    `json:"project_id"`
	ProjectTitle    string    `json:"project_title,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// MeetingInput carries the mutable fields of a meeting.
type MeetingInput struct {
	Title           string
	Date            *Date // nil defaults to today
	Time            string
	DurationMinutes *int64
	Agenda          string
	Notes           string
	ProjectID       *int64
	Status          string // empty selects "planned"
}

// Tag is a shared label attachable to tasks and contacts.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagUsage is a tag annotated with how often it is attached to entities.
type TagUsage struct {
	Tag
	UsageCount int `json:"usage_count"`
}

// QuickLink is a pinned URL shown on the dashboard.
type QuickLink struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResults groups ranked global-search hits per entity type.
type SearchResults struct {
	Tasks          []Task    `json:"tasks"`
	Contacts       []Contact `json:"contacts"`
	Projects       []Project `json:"projects"`
	TagSuggestions []Tag     `json:"tag_suggestions,omitempty"`
}
