package store_test

import (
	"errors"
	"testing"

	"github.com/iLusha80/kbase/internal/apperr"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/testutil"
)

func TestOpen_SeedsReferenceData(t *testing.T) {
	env := testutil.NewEnv(t)

	statuses, err := env.Store.TaskStatuses()
	if err != nil {
		t.Fatalf("TaskStatuses: %v", err)
	}
	wantStatuses := []string{models.StatusTodo, models.StatusInProgress, models.StatusWaiting, models.StatusDone}
	if len(statuses) != len(wantStatuses) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(wantStatuses))
	}
	for i, w := range wantStatuses {
		if statuses[i].Name != w {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i].Name, w)
		}
	}

	types, err := env.Store.ContactTypes()
	if err != nil {
		t.Fatalf("ContactTypes: %v", err)
	}
	if len(types) != 4 {
		t.Errorf("got %d contact types, want 4", len(types))
	}
}

func TestContacts_SelfAndTeam(t *testing.T) {
	env := testutil.NewEnv(t)

	if self, err := env.Store.SelfContact(); err != nil || self != nil {
		t.Fatalf("SelfContact on empty db = %v, %v", self, err)
	}

	meID, err := env.Store.CreateContact(models.ContactInput{LastName: "Me", IsSelf: true, IsTeam: true})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	_, _ = env.Store.CreateContact(models.ContactInput{LastName: "Buddy", IsTeam: true})
	_, _ = env.Store.CreateContact(models.ContactInput{LastName: "Outsider"})

	self, err := env.Store.SelfContact()
	if err != nil || self == nil || self.ID != meID {
		t.Fatalf("SelfContact = %+v, %v", self, err)
	}

	team, err := env.Store.TeamContacts()
	if err != nil {
		t.Fatalf("TeamContacts: %v", err)
	}
	if len(team) != 2 {
		t.Errorf("team = %+v, want 2 members", team)
	}
}

func TestDeleteContact_NullsTaskReferences(t *testing.T) {
	env := testutil.NewEnv(t)

	who, _ := env.Store.CreateContact(models.ContactInput{LastName: "Leaver"})
	taskID, _ := env.Store.CreateTask(models.TaskInput{Title: "orphaned soon", AssigneeID: &who})

	if err := env.Store.DeleteContact(who); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	task, err := env.Store.TaskByID(taskID)
	if err != nil {
		t.Fatalf("TaskByID: %v", err)
	}
	if task.AssigneeID != nil || task.AssigneeName != "" {
		t.Errorf("assignee not cleared: %+v", task)
	}
}

func TestProjects_CountsAndBreakdowns(t *testing.T) {
	env := testutil.NewEnv(t)

	pid, err := env.Store.CreateProject(models.ProjectInput{Title: "Rollout"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	done, _ := env.Store.TaskStatusByName(models.StatusDone)
	inProgress, _ := env.Store.TaskStatusByName(models.StatusInProgress)

	_, _ = env.Store.CreateTask(models.TaskInput{Title: "p1", ProjectID: &pid, StatusID: done.ID})
	_, _ = env.Store.CreateTask(models.TaskInput{Title: "p2", ProjectID: &pid, StatusID: inProgress.ID})
	_, _ = env.Store.CreateTask(models.TaskInput{Title: "p3", ProjectID: &pid})

	project, err := env.Store.ProjectByID(pid)
	if err != nil {
		t.Fatalf("ProjectByID: %v", err)
	}
	if project.TasksCount != 3 || project.DoneCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", project.TasksCount, project.DoneCount)
	}
	if project.Status != models.ProjectActive {
		t.Errorf("default status = %q", project.Status)
	}

	breakdowns, err := env.Store.ProjectBreakdowns()
	if err != nil {
		t.Fatalf("ProjectBreakdowns: %v", err)
	}
	if len(breakdowns) != 1 {
		t.Fatalf("breakdowns = %+v", breakdowns)
	}
	b := breakdowns[0]
	if b.Completed != 1 || b.InProgress != 1 || b.Todo != 1 || b.Total != 3 {
		t.Errorf("breakdown = %+v", b)
	}
}

func TestTags_NormalizationAndConflict(t *testing.T) {
	env := testutil.NewEnv(t)

	tag, err := env.Store.CreateTag("  Urgent ")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tag.Name != "urgent" {
		t.Errorf("name = %q, want normalized", tag.Name)
	}

	if _, err := env.Store.CreateTag("URGENT"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate tag: err = %v, want ErrAlreadyExists", err)
	}
}

func TestFrequentTags(t *testing.T) {
	env := testutil.NewEnv(t)

	_, _ = env.Store.CreateTask(models.TaskInput{Title: "t1", Tags: []string{"hot", "cold"}})
	_, _ = env.Store.CreateTask(models.TaskInput{Title: "t2", Tags: []string{"hot"}})
	_, _ = env.Store.CreateContact(models.ContactInput{LastName: "C", Tags: []string{"hot"}})

	usage, err := env.Store.FrequentTags(10)
	if err != nil {
		t.Fatalf("FrequentTags: %v", err)
	}
	if len(usage) != 2 || usage[0].Name != "hot" || usage[0].UsageCount != 3 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestTagRouting_TasksContactsProjects(t *testing.T) {
	env := testutil.NewEnv(t)

	pid, _ := env.Store.CreateProject(models.ProjectInput{Title: "Tagged project"})
	taskID, _ := env.Store.CreateTask(models.TaskInput{Title: "tagged", ProjectID: &pid, Tags: []string{"urgent"}})
	contactID, _ := env.Store.CreateContact(models.ContactInput{LastName: "Tagged", Tags: []string{"urgent"}})
	_, _ = env.Store.CreateTask(models.TaskInput{Title: "plain"})

	tags, err := env.Store.TagsMatching("urg", 10)
	if err != nil || len(tags) != 1 {
		t.Fatalf("TagsMatching = %v, %v", tags, err)
	}
	ids := []int64{tags[0].ID}

	tasks, err := env.Store.TasksWithTags(ids, 10)
	if err != nil || len(tasks) != 1 || tasks[0].ID != taskID {
		t.Errorf("TasksWithTags = %+v, %v", tasks, err)
	}
	contacts, err := env.Store.ContactsWithTags(ids, 10)
	if err != nil || len(contacts) != 1 || contacts[0].ID != contactID {
		t.Errorf("ContactsWithTags = %+v, %v", contacts, err)
	}
	projects, err := env.Store.ProjectsWithTaggedTasks(ids, 10)
	if err != nil || len(projects) != 1 || projects[0].ID != pid {
		t.Errorf("ProjectsWithTaggedTasks = %+v, %v", projects, err)
	}
}

func TestQuickLinks_CRUD(t *testing.T) {
	env := testutil.NewEnv(t)

	link, err := env.Store.CreateQuickLink("Wiki", "https://wiki.local", "")
	if err != nil {
		t.Fatalf("CreateQuickLink: %v", err)
	}
	if link.Icon != "link" {
		t.Errorf("icon default = %q", link.Icon)
	}

	updated, err := env.Store.UpdateQuickLink(link.ID, "Wiki v2", "https://wiki.local/v2", "book")
	if err != nil {
		t.Fatalf("UpdateQuickLink: %v", err)
	}
	if updated.Title != "Wiki v2" || updated.Icon != "book" {
		t.Errorf("updated = %+v", updated)
	}

	if err := env.Store.DeleteQuickLink(link.ID); err != nil {
		t.Fatalf("DeleteQuickLink: %v", err)
	}
	if _, err := env.Store.UpdateQuickLink(link.ID, "x", "https://x", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update after delete: err = %v", err)
	}
}

func TestEntityTitle(t *testing.T) {
	env := testutil.NewEnv(t)

	id, _ := env.Store.CreateTask(models.TaskInput{Title: "Resolve me"})
	title, ok := env.Store.EntityTitle("task", id)
	if !ok || title != "Resolve me" {
		t.Errorf("EntityTitle = %q, %v", title, ok)
	}

	cid, _ := env.Store.CreateContact(models.ContactInput{LastName: "Petrov", FirstName: "Ivan"})
	title, ok = env.Store.EntityTitle("contact", cid)
	if !ok || title != "Petrov Ivan" {
		t.Errorf("contact title = %q, %v", title, ok)
	}

	if _, ok := env.Store.EntityTitle("task", 9999); ok {
		t.Error("missing entity resolved")
	}
	if _, ok := env.Store.EntityTitle("widget", 1); ok {
		t.Error("unknown entity type resolved")
	}
}
