package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/service"
	"github.com/iLusha80/kbase/internal/testutil"
)

func newService(t *testing.T) (*service.Service, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	return service.New(env.Store, env.Log, testutil.Logger()), env
}

func TestCreateTask_RecordsCreation(t *testing.T) {
	svc, _ := newService(t)

	task, err := svc.CreateTask(models.TaskInput{Title: "Ship the thing"})
	require.NoError(t, err)

	entries, err := svc.TaskActivity(task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].EventType)
	assert.Equal(t, "Task", entries[0].FieldName)
	assert.Equal(t, "Ship the thing", entries[0].NewValue)
}

func TestUpdateTask_RecordsResolvedValues(t *testing.T) {
	svc, _ := newService(t)

	alice, err := svc.CreateContact(models.ContactInput{LastName: "Alice"})
	require.NoError(t, err)
	task, err := svc.CreateTask(models.TaskInput{Title: "Assign me"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(task.ID, models.TaskInput{Title: "Assign me", AssigneeID: &alice.ID})
	require.NoError(t, err)

	entries, err := svc.TaskActivity(task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "create plus one field change")
	assert.Equal(t, "Assignee", entries[0].FieldName)
	assert.Equal(t, "", entries[0].OldValue)
	assert.Equal(t, "Alice", entries[0].NewValue, "display name, not the contact id")
}

func TestUpdateTask_NoOpRecordsNothing(t *testing.T) {
	svc, _ := newService(t)

	task, err := svc.CreateTask(models.TaskInput{Title: "Unchanged"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(task.ID, models.TaskInput{Title: "Unchanged"})
	require.NoError(t, err)

	entries, err := svc.TaskActivity(task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the creation entry")
}

func TestUpdateTaskStatus_RecordsTransition(t *testing.T) {
	svc, env := newService(t)

	task, err := svc.CreateTask(models.TaskInput{Title: "Move me"})
	require.NoError(t, err)
	done, err := env.Store.TaskStatusByName(models.StatusDone)
	require.NoError(t, err)

	updated, err := svc.UpdateTaskStatus(task.ID, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status.Name)

	entries, err := svc.TaskActivity(task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Status", entries[0].FieldName)
	assert.Equal(t, models.StatusTodo, entries[0].OldValue)
	assert.Equal(t, models.StatusDone, entries[0].NewValue)
}

func TestGlobalSearch_TextQuery(t *testing.T) {
	svc, _ := newService(t)

	hit, err := svc.CreateTask(models.TaskInput{Title: "Fix login bug"})
	require.NoError(t, err)
	_, err = svc.CreateTask(models.TaskInput{Title: "Write release notes"})
	require.NoError(t, err)

	res, err := svc.GlobalSearch("login")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, hit.ID, res.Tasks[0].ID)
	assert.Empty(t, res.Contacts)
	assert.Empty(t, res.Projects)
}

func TestGlobalSearch_ShortAndEmptyQueries(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateTask(models.TaskInput{Title: "x marks the spot"})
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "x"} {
		res, err := svc.GlobalSearch(q)
		require.NoError(t, err)
		assert.Empty(t, res.Tasks, "query %q", q)
	}
}

func TestGlobalSearch_TagRouting(t *testing.T) {
	svc, env := newService(t)

	task, err := svc.CreateTask(models.TaskInput{Title: "Hotfix", Tags: []string{"urgent"}})
	require.NoError(t, err)
	contact, err := svc.CreateContact(models.ContactInput{LastName: "Oncall", Tags: []string{"urgent"}})
	require.NoError(t, err)
	_, err = env.Store.CreateTag("backlog")
	require.NoError(t, err)

	// Bare "#" suggests tags without resolving entities.
	res, err := svc.GlobalSearch("#")
	require.NoError(t, err)
	require.Len(t, res.TagSuggestions, 2)
	assert.Empty(t, res.Tasks)

	// A fragment resolves matching tags to tagged entities.
	res, err = svc.GlobalSearch("#urg")
	require.NoError(t, err)
	require.Len(t, res.TagSuggestions, 1)
	assert.Equal(t, "urgent", res.TagSuggestions[0].Name)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, task.ID, res.Tasks[0].ID)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, contact.ID, res.Contacts[0].ID)

	// No matching tag: empty sets, no error.
	res, err = svc.GlobalSearch("#nothing")
	require.NoError(t, err)
	assert.Empty(t, res.TagSuggestions)
	assert.Empty(t, res.Tasks)
}

func TestUpdateMeeting_RecordsChanges(t *testing.T) {
	svc, _ := newService(t)

	m, err := svc.CreateMeeting(models.MeetingInput{Title: "Kickoff"})
	require.NoError(t, err)

	_, err = svc.UpdateMeeting(m.ID, models.MeetingInput{Title: "Kickoff v2", Status: models.MeetingCompleted})
	require.NoError(t, err)

	entries, err := svc.Store().DB().Query(
		`SELECT field_name FROM activity_logs WHERE entity_type = 'meeting' AND entity_id = ? ORDER BY field_name`, m.ID)
	require.NoError(t, err)
	defer entries.Close()
	fields := []string{}
	for entries.Next() {
		var f string
		require.NoError(t, entries.Scan(&f))
		fields = append(fields, f)
	}
	require.NoError(t, entries.Err())
	assert.Equal(t, []string{"Meeting", "Status", "Title"}, fields)
}
