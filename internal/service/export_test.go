package service_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/service"
)

func TestExport_SnapshotsEverything(t *testing.T) {
	svc, env := newService(t)

	_, err := svc.CreateContact(models.ContactInput{LastName: "Exported"})
	require.NoError(t, err)
	_, err = svc.CreateTask(models.TaskInput{Title: "Exported task", Tags: []string{"keep"}})
	require.NoError(t, err)
	_, err = svc.CreateProject(models.ProjectInput{Title: "Exported project"})
	require.NoError(t, err)
	_, err = env.Store.CreateQuickLink("Wiki", "https://wiki.local", "")
	require.NoError(t, err)

	b, err := svc.Export()
	require.NoError(t, err)
	assert.False(t, b.ExportedAt.IsZero())
	assert.Len(t, b.Contacts, 1)
	assert.Len(t, b.Tasks, 1)
	assert.Len(t, b.Projects, 1)
	assert.Len(t, b.Tags, 1)
	assert.Len(t, b.QuickLinks, 1)
}

func TestTasksCSV_SemicolonDelimited(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateTask(models.TaskInput{Title: "csv task", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.TasksCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id;title;description;status;due_date;assignee;project;tags;created_at", lines[0])
	assert.Contains(t, lines[1], "csv task")
	assert.Contains(t, lines[1], "a,b", "tags joined with commas inside one cell")
}

func TestImport_DedupesAndReresolvesReferences(t *testing.T) {
	// Build a bundle in one database, import it into a fresh one twice.
	src, _ := newService(t)

	assignee, err := src.CreateContact(models.ContactInput{LastName: "Petrov", FirstName: "Ivan"})
	require.NoError(t, err)
	project, err := src.CreateProject(models.ProjectInput{Title: "Migration"})
	require.NoError(t, err)
	_, err = src.CreateTask(models.TaskInput{
		Title: "Carry me over", AssigneeID: &assignee.ID, ProjectID: &project.ID, Tags: []string{"moved"},
	})
	require.NoError(t, err)
	bundle, err := src.Export()
	require.NoError(t, err)

	dst, env := newService(t)
	counts, err := dst.Import(*bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Contacts)
	assert.Equal(t, 1, counts.Projects)
	assert.Equal(t, 1, counts.Tasks)
	assert.Equal(t, 1, counts.Tags)

	tasks, err := env.Store.Tasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	imported := tasks[0]
	assert.Equal(t, "Petrov Ivan", imported.AssigneeName, "assignee resolved by name in the target database")
	assert.Equal(t, "Migration", imported.ProjectTitle)
	require.NotNil(t, imported.AssigneeID)
	assert.NotEqual(t, int64(0), *imported.AssigneeID)

	// Second import of the same bundle is a no-op.
	counts, err = dst.Import(*bundle)
	require.NoError(t, err)
	assert.Equal(t, &service.ImportCounts{}, counts)
}

func TestImport_NeverCopiesSelfFlag(t *testing.T) {
	src, _ := newService(t)
	_, err := src.CreateContact(models.ContactInput{LastName: "Someone", IsSelf: true})
	require.NoError(t, err)
	bundle, err := src.Export()
	require.NoError(t, err)

	dst, env := newService(t)
	_, err = dst.Import(*bundle)
	require.NoError(t, err)

	self, err := env.Store.SelfContact()
	require.NoError(t, err)
	assert.Nil(t, self, "imported contacts must not claim the self flag")
}
