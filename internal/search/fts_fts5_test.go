//go:build sqlite_fts5

package search_test

import (
	"testing"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
	"github.com/iLusha80/kbase/internal/testutil"
)

func createTask(t *testing.T, env *testutil.Env, title, description string) int64 {
	t.Helper()
	id, err := env.Store.CreateTask(models.TaskInput{Title: title, Description: description})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return id
}

func TestSearch_PrefixTermsRequired(t *testing.T) {
	env := testutil.NewEnv(t)
	idx := env.Store.Index()

	fixLogin := createTask(t, env, "Fix login bug", "")
	logRotation := createTask(t, env, "Rotate logs", "old entries should be fixed up")
	unrelated := createTask(t, env, "Write release notes", "")

	ids := idx.Search("fix log", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]

	want := map[int64]bool{fixLogin: true, logRotation: true}
	if len(ids) != 2 {
		t.Fatalf("got %d hits %v, want 2", len(ids), ids)
	}
	for _, id := range ids {
		if id == unrelated {
			t.Fatal("task without both terms matched")
		}
		if !want[id] {
			t.Errorf("unexpected hit %d", id)
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	env := testutil.NewEnv(t)
	createTask(t, env, "Anything", "")

	out := env.Store.Index().Search("   ", search.AllTypes, 10)
	for et, ids := range out {
		if len(ids) != 0 {
			t.Errorf("%s: got %v for empty query", et, ids)
		}
	}
}

func TestSearch_LimitAndDefault(t *testing.T) {
	env := testutil.NewEnv(t)
	for i := 0; i < 12; i++ {
		createTask(t, env, "deploy pipeline", "")
	}

	ids := env.Store.Index().Search("deploy", []search.EntityType{search.EntityTask}, 0)[search.EntityTask]
	if len(ids) != 10 {
		t.Errorf("default limit: got %d hits, want 10", len(ids))
	}
	ids = env.Store.Index().Search("deploy", []search.EntityType{search.EntityTask}, 3)[search.EntityTask]
	if len(ids) != 3 {
		t.Errorf("limit 3: got %d hits", len(ids))
	}
}

func TestUpsert_ReplacesDocument(t *testing.T) {
	env := testutil.NewEnv(t)
	idx := env.Store.Index()

	id := createTask(t, env, "original wording", "")
	if err := env.Store.UpdateTask(id, models.TaskInput{Title: "replacement wording"}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if ids := idx.Search("original", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]; len(ids) != 0 {
		t.Errorf("old document still matches: %v", ids)
	}
	ids := idx.Search("replacement", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("new document not found: %v", ids)
	}
}

func TestDelete_RemovesDocument(t *testing.T) {
	env := testutil.NewEnv(t)
	id := createTask(t, env, "vanishing task", "")
	if err := env.Store.DeleteTask(id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	ids := env.Store.Index().Search("vanishing", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]
	if len(ids) != 0 {
		t.Errorf("deleted task still indexed: %v", ids)
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	env := testutil.NewEnv(t)
	idx := env.Store.Index()
	id := createTask(t, env, "reindex me", "")

	for i := 0; i < 3; i++ {
		if err := idx.Rebuild(); err != nil {
			t.Fatalf("Rebuild #%d: %v", i+1, err)
		}
	}
	ids := idx.Search("reindex", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("after repeated rebuilds: %v", ids)
	}
}

func TestRebuild_RecreatesDroppedTable(t *testing.T) {
	env := testutil.NewEnv(t)
	idx := env.Store.Index()
	id := createTask(t, env, "survivor", "")

	if _, err := env.DB.Exec(`DROP TABLE tasks_fts`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	// First rebuild attempt fails against the missing table; the schema is
	// recreated and the rebuild retried.
	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	ids := idx.Search("survivor", []search.EntityType{search.EntityTask}, 10)[search.EntityTask]
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("after recovery rebuild: %v", ids)
	}
}

func TestEnsureInitialized_RecoversFromDrop(t *testing.T) {
	env := testutil.NewEnv(t)
	idx := env.Store.Index()

	if _, err := env.DB.Exec(`DROP TABLE contacts_fts`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := idx.EnsureInitialized(); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	// The recreated table must accept writes again.
	if _, err := env.Store.CreateContact(models.ContactInput{LastName: "Reborn"}); err != nil {
		t.Fatalf("CreateContact after recovery: %v", err)
	}
	ids := idx.Search("Reborn", []search.EntityType{search.EntityContact}, 10)[search.EntityContact]
	if len(ids) != 1 {
		t.Errorf("contact not searchable after recovery: %v", ids)
	}
}

func TestSearch_AllEntityTypes(t *testing.T) {
	env := testutil.NewEnv(t)

	taskID := createTask(t, env, "alpha rollout", "")
	contactID, err := env.Store.CreateContact(models.ContactInput{LastName: "Alphaev", FirstName: "Ivan"})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	projectID, err := env.Store.CreateProject(models.ProjectInput{Title: "Project Alpha"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	out := env.Store.Index().Search("alpha", search.AllTypes, 10)
	if ids := out[search.EntityTask]; len(ids) != 1 || ids[0] != taskID {
		t.Errorf("tasks: %v", ids)
	}
	if ids := out[search.EntityContact]; len(ids) != 1 || ids[0] != contactID {
		t.Errorf("contacts: %v", ids)
	}
	if ids := out[search.EntityProject]; len(ids) != 1 || ids[0] != projectID {
		t.Errorf("projects: %v", ids)
	}
}
