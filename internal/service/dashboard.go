package service

import (
	"fmt"
	"log/slog"

	"github.com/iLusha80/kbase/internal/activity"
	"github.com/iLusha80/kbase/internal/models"
)

const (
	dashboardTaskLimit     = 7
	dashboardProjectLimit  = 5
	dashboardTagLimit      = 10
	dashboardActivityLimit = 15
)

// Dashboard is the landing-page composite view.
type Dashboard struct {
	PriorityTasks  []models.Task      `json:"priority_tasks"`
	WaitingTasks   []models.Task      `json:"waiting_tasks"`
	TopProjects    []models.Project   `json:"top_projects"`
	QuickLinks     []models.QuickLink `json:"quick_links"`
	FrequentTags   []models.TagUsage  `json:"frequent_tags"`
	RecentActivity []activity.Item    `json:"recent_activity"`
}

// Dashboard assembles the landing page. Each section degrades to empty on
// failure so one bad query never blanks the whole page.
func (s *Service) Dashboard() *Dashboard {
	out := &Dashboard{
		PriorityTasks:  []models.Task{},
		WaitingTasks:   []models.Task{},
		TopProjects:    []models.Project{},
		QuickLinks:     []models.QuickLink{},
		FrequentTags:   []models.TagUsage{},
		RecentActivity: []activity.Item{},
	}

	if tasks, err := s.store.PriorityTasks(dashboardTaskLimit); err != nil {
		s.warnSection("priority tasks", err)
	} else {
		out.PriorityTasks = tasks
	}
	if tasks, err := s.store.TasksInStatus(models.StatusWaiting); err != nil {
		s.warnSection("waiting tasks", err)
	} else {
		out.WaitingTasks = tasks
	}
	if projects, err := s.store.TopActiveProjects(dashboardProjectLimit); err != nil {
		s.warnSection("top projects", err)
	} else {
		out.TopProjects = projects
	}
	if links, err := s.store.QuickLinks(); err != nil {
		s.warnSection("quick links", err)
	} else {
		out.QuickLinks = links
	}
	if tags, err := s.store.FrequentTags(dashboardTagLimit); err != nil {
		s.warnSection("frequent tags", err)
	} else {
		out.FrequentTags = tags
	}
	if items, err := s.RecentActivity(dashboardActivityLimit); err != nil {
		s.warnSection("recent activity", err)
	} else {
		out.RecentActivity = items
	}
	return out
}

// RecentActivity returns the newest activity entries annotated with resolved
// entity titles; entries for deleted entities fall back to "#<id>".
func (s *Service) RecentActivity(limit int) ([]activity.Item, error) {
	entries, err := s.log.Recent(limit)
	if err != nil {
		return nil, err
	}
	items := make([]activity.Item, len(entries))
	for i, e := range entries {
		title, ok := s.store.EntityTitle(e.EntityType, e.EntityID)
		if !ok {
			title = fmt.Sprintf("#%d", e.EntityID)
		}
		items[i] = activity.Item{Entry: e, EntityTitle: title}
	}
	return items, nil
}

func (s *Service) warnSection(name string, err error) {
	s.logger.Warn("dashboard section failed",
		slog.String("section", name), slog.String("error", err.Error()))
}
