package service

import (
	"strings"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/search"
)

const (
	searchMinLength = 2
	searchLimit     = 10
	tagSuggestLimit = 8
)

// GlobalSearch answers the search box. Queries starting with "#" route to
// tag search: a bare "#" returns tag suggestions, "#frag" finds entities
// carrying matching tags. Everything else goes through the full-text index,
// with hits returned in relevance order. Queries shorter than two
// characters yield empty results.
func (s *Service) GlobalSearch(query string) (*models.SearchResults, error) {
	out := &models.SearchResults{
		Tasks:    []models.Task{},
		Contacts: []models.Contact{},
		Projects: []models.Project{},
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return out, nil
	}
	if strings.HasPrefix(query, "#") {
		return s.tagSearch(strings.TrimPrefix(query, "#"))
	}
	if len([]rune(query)) < searchMinLength {
		return out, nil
	}

	hits := s.index.Search(query, search.AllTypes, searchLimit)

	tasks, err := s.store.TasksByIDs(hits[search.EntityTask])
	if err != nil {
		return nil, err
	}
	out.Tasks = orderByIDs(tasks, hits[search.EntityTask], func(t models.Task) int64 { return t.ID })

	contacts, err := s.store.ContactsByIDs(hits[search.EntityContact])
	if err != nil {
		return nil, err
	}
	out.Contacts = orderByIDs(contacts, hits[search.EntityContact], func(c models.Contact) int64 { return c.ID })

	projects, err := s.store.ProjectsByIDs(hits[search.EntityProject])
	if err != nil {
		return nil, err
	}
	out.Projects = orderByIDs(projects, hits[search.EntityProject], func(p models.Project) int64 { return p.ID })

	return out, nil
}

// tagSearch resolves "#"-prefixed queries against the tag vocabulary.
func (s *Service) tagSearch(fragment string) (*models.SearchResults, error) {
	out := &models.SearchResults{
		Tasks:    []models.Task{},
		Contacts: []models.Contact{},
		Projects: []models.Project{},
	}
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		tags, err := s.store.TagSuggestions(tagSuggestLimit)
		if err != nil {
			return nil, err
		}
		out.TagSuggestions = tags
		return out, nil
	}

	tags, err := s.store.TagsMatching(fragment, tagSuggestLimit)
	if err != nil {
		return nil, err
	}
	out.TagSuggestions = tags
	if len(tags) == 0 {
		return out, nil
	}

	tagIDs := make([]int64, len(tags))
	for i, t := range tags {
		tagIDs[i] = t.ID
	}
	if out.Tasks, err = s.store.TasksWithTags(tagIDs, searchLimit); err != nil {
		return nil, err
	}
	if out.Contacts, err = s.store.ContactsWithTags(tagIDs, searchLimit); err != nil {
		return nil, err
	}
	if out.Projects, err = s.store.ProjectsWithTaggedTasks(tagIDs, searchLimit); err != nil {
		return nil, err
	}
	return out, nil
}

// orderByIDs reorders items to the ranked id sequence produced by the
// full-text index. Ids the store no longer knows are skipped.
func orderByIDs[T any](items []T, ids []int64, idOf func(T) int64) []T {
	byID := make(map[int64]T, len(items))
	for _, it := range items {
		byID[idOf(it)] = it
	}
	out := make([]T, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
