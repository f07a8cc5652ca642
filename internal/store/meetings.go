package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
)

const meetingSelect = `
SELECT m.id, m.title, m.date, m.time, m.duration_minutes, m.agenda, m.notes,
       m.project_id, COALESCE(p.title, ''), m.status, m.created_at
  FROM meetings m
  LEFT JOIN projects p ON p.id = m.project_id`

func (s *Store) queryMeetings(query string, args ...any) ([]models.Meeting, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query meetings: %w", err)
	}
	defer rows.Close()

	out := []models.Meeting{}
	for rows.Next() {
		var (
			m         models.Meeting
			date      string
			duration  sql.NullInt64
			projectID sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Title, &date, &m.Time, &duration, &m.Agenda, &m.Notes,
			&projectID, &m.ProjectTitle, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		if d, err := models.ParseDate(date); err == nil {
			m.Date = d
		}
		if duration.Valid {
			m.DurationMinutes = &duration.Int64
		}
		if projectID.Valid {
			m.ProjectID = &projectID.Int64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Meetings returns all meetings, most recent first.
func (s *Store) Meetings() ([]models.Meeting, error) {
	return s.queryMeetings(meetingSelect + ` ORDER BY m.date DESC, m.time DESC, m.id DESC`)
}

// MeetingByID returns one meeting or apperr.ErrNotFound.
func (s *Store) MeetingByID(id int64) (*models.Meeting, error) {
	meetings, err := s.queryMeetings(meetingSelect+` WHERE m.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &meetings[0], nil
}

// MeetingsOnDate returns non-cancelled meetings scheduled on the given day.
func (s *Store) MeetingsOnDate(day string) ([]models.Meeting, error) {
	return s.queryMeetings(meetingSelect+` WHERE m.date = ? AND m.status != ? ORDER BY m.time, m.id`,
		day, models.MeetingCancelled)
}

// CreateMeeting inserts a meeting. Meetings carry no full-text document.
func (s *Store) CreateMeeting(in models.MeetingInput) (int64, error) {
	date := time.Now().Format(models.DateLayout)
	if in.Date != nil {
		date = in.Date.String()
	}
	status := in.Status
	if status == "" {
		status = models.MeetingPlanned
	}
	res, err := s.db.Exec(`
		INSERT INTO meetings (title, date, time, duration_minutes, agenda, notes, project_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, date, in.Time, nullableID(in.DurationMinutes), in.Agenda, in.Notes,
		nullableID(in.ProjectID), status, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert meeting: %w", err)
	}
	return res.LastInsertId()
}

// UpdateMeeting replaces a meeting's mutable fields.
func (s *Store) UpdateMeeting(id int64, in models.MeetingInput) error {
	current, err := s.MeetingByID(id)
	if err != nil {
		return err
	}
	date := current.Date.String()
	if in.Date != nil {
		date = in.Date.String()
	}
	status := in.Status
	if status == "" {
		status = current.Status
	}
	_, err = s.db.Exec(`
		UPDATE meetings SET title = ?, date = ?, time = ?, duration_minutes = ?,
		       agenda = ?, notes = ?, project_id = ?, status = ?
		 WHERE id = ?`,
		in.Title, date, in.Time, nullableID(in.DurationMinutes), in.Agenda, in.Notes,
		nullableID(in.ProjectID), status, id)
	if err != nil {
		return fmt.Errorf("store: update meeting: %w", err)
	}
	return nil
}

// DeleteMeeting removes a meeting.
func (s *Store) DeleteMeeting(id int64) error {
	res, err := s.db.Exec(`DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
