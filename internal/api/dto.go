package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/iLusha80/kbase/internal/models"
)

// TaskRequest is the request body for creating or updating a task.
type TaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	StatusID    int64    `json:"status_id"`
	AssigneeID  *int64   `json:"assignee_id"`
	AuthorID    *int64   `json:"author_id"`
	ProjectID   *int64   `json:"project_id"`
	Tags        []string `json:"tags"`
}

// Validate implements request validation.
func (r *TaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 10000)),
		validation.Field(&r.DueDate, validation.Date(models.DateLayout)),
		validation.Field(&r.StatusID, validation.Min(int64(0))),
		validation.Field(&r.Tags, validation.Each(validation.Length(1, 50))),
	)
}

// Input converts the request into a domain input.
func (r *TaskRequest) Input() models.TaskInput {
	in := models.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		StatusID:    r.StatusID,
		AssigneeID:  r.AssigneeID,
		AuthorID:    r.AuthorID,
		ProjectID:   r.ProjectID,
		Tags:        r.Tags,
	}
	if r.DueDate != "" {
		if d, err := models.ParseDate(r.DueDate); err == nil {
			in.DueDate = &d
		}
	}
	return in
}

// TaskStatusRequest is the request body for a status-only transition.
type TaskStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

func (r *TaskStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.StatusID, validation.Required, validation.Min(int64(1))),
	)
}

// CommentRequest is the request body for adding a task comment.
type CommentRequest struct {
	Text string `json:"text"`
}

func (r *CommentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, 5000)),
	)
}

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	LastName   string   `json:"last_name"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	Department string   `json:"department"`
	Role       string   `json:"role"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Link       string   `json:"link"`
	Notes      string   `json:"notes"`
	TypeID     *int64   `json:"type_id"`
	IsSelf     bool     `json:"is_self"`
	IsTeam     bool     `json:"is_team"`
	Tags       []string `json:"tags"`
}

func (r *ContactRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.FirstName, validation.Length(0, 100)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Link, is.URL),
		validation.Field(&r.Tags, validation.Each(validation.Length(1, 50))),
	)
}

func (r *ContactRequest) Input() models.ContactInput {
	return models.ContactInput{
		LastName:   r.LastName,
		FirstName:  r.FirstName,
		MiddleName: r.MiddleName,
		Department: r.Department,
		Role:       r.Role,
		Email:      r.Email,
		Phone:      r.Phone,
		Link:       r.Link,
		Notes:      r.Notes,
		TypeID:     r.TypeID,
		IsSelf:     r.IsSelf,
		IsTeam:     r.IsTeam,
		Tags:       r.Tags,
	}
}

// ProjectRequest is the request body for creating or updating a project.
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Link        string `json:"link"`
}

func (r *ProjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Status, validation.In(
			models.ProjectActive, models.ProjectPlanning, models.ProjectOnHold,
			models.ProjectArchived, models.ProjectDone)),
		validation.Field(&r.Link, is.URL),
	)
}

func (r *ProjectRequest) Input() models.ProjectInput {
	return models.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Link:        r.Link,
	}
}

// MeetingRequest is the request body for creating or updating a meeting.
type MeetingRequest struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes *int64 `json:"duration_minutes"`
	Agenda          string `json:"agenda"`
	Notes           string `json:"notes"`
	ProjectID       *int64 `json:"project_id"`
	Status          string `json:"status"`
}

func (r *MeetingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Date, validation.Date(models.DateLayout)),
		validation.Field(&r.Time, validation.Date("15:04")),
		validation.Field(&r.Status, validation.In(
			models.MeetingPlanned, models.MeetingInProgress,
			models.MeetingCompleted, models.MeetingCancelled)),
	)
}

func (r *MeetingRequest) Input() models.MeetingInput {
	in := models.MeetingInput{
		Title:           r.Title,
		Time:            r.Time,
		DurationMinutes: r.DurationMinutes,
		Agenda:          r.Agenda,
		Notes:           r.Notes,
		ProjectID:       r.ProjectID,
		Status:          r.Status,
	}
	if r.Date != "" {
		if d, err := models.ParseDate(r.Date); err == nil {
			in.Date = &d
		}
	}
	return in
}

// TagRequest is the request body for creating or renaming a tag.
type TagRequest struct {
	Name string `json:"name"`
}

func (r *TagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
	)
}

// QuickLinkRequest is the request body for creating or updating a quick link.
type QuickLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

func (r *QuickLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.URL, validation.Required, is.URL),
	)
}
