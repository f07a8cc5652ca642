package activity

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/store"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "activity-test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st.DB())
}

func at(l *Log, ts time.Time) {
	l.now = func() time.Time { return ts }
}

func TestRecord_SuppressesNoOps(t *testing.T) {
	l := testLog(t)

	if err := l.Record(EntityTask, 1, EventUpdate, "Status", "Done", "Done"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, err := l.Entries(EntityTask, 1)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no-op recorded: %+v", entries)
	}

	if err := l.Record(EntityTask, 1, EventUpdate, "Status", "To Do", "Done"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, _ = l.Entries(EntityTask, 1)
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].OldValue != "To Do" || entries[0].NewValue != "Done" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestEntries_NewestFirstAndScoped(t *testing.T) {
	l := testLog(t)
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	at(l, base)
	_ = l.Record(EntityTask, 5, EventCreate, "Task", "", "first")
	at(l, base.Add(time.Minute))
	_ = l.Record(EntityTask, 5, EventUpdate, "Title", "first", "second")
	at(l, base.Add(2*time.Minute))
	_ = l.Record(EntityMeeting, 5, EventCreate, "Meeting", "", "other entity")

	entries, err := l.Entries(EntityTask, 5)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].FieldName != "Title" {
		t.Errorf("order wrong: %+v", entries)
	}
}

func TestRecent_Limit(t *testing.T) {
	l := testLog(t)
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		at(l, base.Add(time.Duration(i)*time.Second))
		_ = l.Record(EntityTask, int64(i), EventCreate, "Task", "", "t")
	}

	entries, err := l.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 15 {
		t.Errorf("default limit: got %d entries", len(entries))
	}
	if entries[0].EntityID != 19 {
		t.Errorf("newest first: %+v", entries[0])
	}
}

func TestTransitionsInWindow(t *testing.T) {
	l := testLog(t)
	base := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)

	at(l, base.Add(-48*time.Hour))
	_ = l.Record(EntityTask, 1, EventUpdate, "Status", "To Do", "Done") // too old
	at(l, base.Add(-2*time.Hour))
	_ = l.Record(EntityTask, 2, EventUpdate, "Status", "To Do", "Done")
	at(l, base.Add(-time.Hour))
	_ = l.Record(EntityTask, 2, EventUpdate, "Status", "Done", "Done2") // different value
	at(l, base.Add(-30*time.Minute))
	_ = l.Record(EntityTask, 3, EventUpdate, "Title", "a", "Done") // different field
	at(l, base.Add(-10*time.Minute))
	_ = l.Record(EntityMeeting, 4, EventUpdate, "Status", "planned", "Done") // different entity

	ids, err := l.TransitionsInWindow(EntityTask, "Status", "Done", base.Add(-24*time.Hour), base)
	if err != nil {
		t.Fatalf("TransitionsInWindow: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("ids = %v, want [2]", ids)
	}
}

func TestTransitionsInWindow_Distinct(t *testing.T) {
	l := testLog(t)
	base := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)

	at(l, base.Add(-2*time.Hour))
	_ = l.Record(EntityTask, 7, EventUpdate, "Status", "To Do", "Done")
	at(l, base.Add(-time.Hour))
	_ = l.Record(EntityTask, 7, EventUpdate, "Status", "In Progress", "Done")

	ids, err := l.TransitionsInWindow(EntityTask, "Status", "Done", base.Add(-24*time.Hour), base)
	if err != nil {
		t.Fatalf("TransitionsInWindow: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("ids = %v, want one distinct id", ids)
	}
}

func TestLatestTransitionBefore(t *testing.T) {
	l := testLog(t)
	now := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)
	cutoff := now.Add(-7 * 24 * time.Hour)

	// Task 1: entered In Progress 10 days ago, never again.
	at(l, now.AddDate(0, 0, -10))
	_ = l.Record(EntityTask, 1, EventUpdate, "Status", "To Do", "In Progress")

	// Task 2: entered 10 days ago but re-entered yesterday; latest wins.
	at(l, now.AddDate(0, 0, -10))
	_ = l.Record(EntityTask, 2, EventUpdate, "Status", "To Do", "In Progress")
	at(l, now.AddDate(0, 0, -1))
	_ = l.Record(EntityTask, 2, EventUpdate, "Status", "Waiting", "In Progress")

	ids, err := l.LatestTransitionBefore(EntityTask, "Status", "In Progress", cutoff)
	if err != nil {
		t.Fatalf("LatestTransitionBefore: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ids = %v, want [1]", ids)
	}
}

func taskFixture(title, description, status, assignee, due, project string) models.Task {
	task := models.Task{
		Title:        title,
		Description:  description,
		AssigneeName: assignee,
		ProjectTitle: project,
	}
	if status != "" {
		task.Status = &models.TaskStatus{Name: status}
	}
	if due != "" {
		if d, err := models.ParseDate(due); err == nil {
			task.DueDate = &d
		}
	}
	return task
}

func TestTaskChanges_ResolvedValues(t *testing.T) {
	oldT := taskFixture("Old title", "", "To Do", "Ivanov Ivan", "", "Apollo")
	newT := taskFixture("New title", "", "In Progress", "", "2026-08-01", "Apollo")

	changes := TaskChanges(oldT, newT)
	byLabel := map[string][2]string{}
	for _, ch := range changes {
		byLabel[ch.Label] = [2]string{ch.Old, ch.New}
	}

	if got := byLabel["Title"]; got != [2]string{"Old title", "New title"} {
		t.Errorf("Title = %v", got)
	}
	if got := byLabel["Status"]; got != [2]string{"To Do", "In Progress"} {
		t.Errorf("Status = %v", got)
	}
	if got := byLabel["Assignee"]; got != [2]string{"Ivanov Ivan", ""} {
		t.Errorf("Assignee = %v", got)
	}
	if got := byLabel["Due date"]; got != [2]string{"", "2026-08-01"} {
		t.Errorf("Due date = %v", got)
	}
	if got := byLabel["Project"]; got != [2]string{"Apollo", "Apollo"} {
		t.Errorf("Project = %v", got)
	}
}
