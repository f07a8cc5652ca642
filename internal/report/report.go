// Package report derives the standup and weekly reporting views. Views
// combine the activity log with current entity state using a two-step
// protocol:
// the log supplies candidate ids, a live query keeps only those for which
// the recorded fact still holds.
package report

import (
	"log/slog"
	"sort"
	"time"

	"github.com/iLusha80/kbase/internal/activity"
	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/store"
)

// Status field label used by the task/meeting services when recording
// transitions. Reports key off it.
const StatusField = "Status"

const stuckAfter = 7 * 24 * time.Hour

// Service computes derived report views.
type Service struct {
	store  *store.Store
	log    *activity.Log
	logger *slog.Logger
	now    func() time.Time
}

// New creates a report service.
func New(st *store.Store, log *activity.Log, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, log: log, logger: logger, now: time.Now}
}

// Buckets are the five mutually exclusive standup categories.
type Buckets struct {
	Completed  []models.Task `json:"completed"`
	InProgress []models.Task `json:"in_progress"`
	DueToday   []models.Task `json:"due_today"`
	Overdue    []models.Task `json:"overdue"`
	Waiting    []models.Task `json:"waiting"`
}

func newBuckets() Buckets {
	return Buckets{
		Completed:  []models.Task{},
		InProgress: []models.Task{},
		DueToday:   []models.Task{},
		Overdue:    []models.Task{},
		Waiting:    []models.Task{},
	}
}

// Standup categories, in precedence order: when a task qualifies for more
// than one, the first match wins.
const (
	catCompleted  = "completed"
	catOverdue    = "overdue"
	catWaiting    = "waiting"
	catDueToday   = "due_today"
	catInProgress = "in_progress"
)

func (b *Buckets) add(category string, t models.Task) {
	switch category {
	case catCompleted:
		b.Completed = append(b.Completed, t)
	case catOverdue:
		b.Overdue = append(b.Overdue, t)
	case catWaiting:
		b.Waiting = append(b.Waiting, t)
	case catDueToday:
		b.DueToday = append(b.DueToday, t)
	case catInProgress:
		b.InProgress = append(b.InProgress, t)
	}
}

// AssigneeBlock holds one assignee's bucketed tasks. Contact is nil for
// the "other" block.
type AssigneeBlock struct {
	Contact *models.Contact `json:"contact,omitempty"`
	Buckets
}

// Standup is the daily standup view.
type Standup struct {
	Date     string           `json:"date"`
	Self     *AssigneeBlock   `json:"self,omitempty"`
	Team     []*AssigneeBlock `json:"team"`
	Other    *AssigneeBlock   `json:"other"`
	Meetings []models.Meeting `json:"meetings"`
}

// DailyStandup composes the standup view: tasks completed in the last 24
// hours, currently in progress, due today, overdue and waiting, partitioned
// by assignee into self/team/other blocks, plus today's meetings.
// A failing sub-query degrades to an empty section; the report never fails
// as a whole for a partial data problem.
func (s *Service) DailyStandup() *Standup {
	now := s.now()
	today := now.Format(models.DateLayout)

	completed := s.completedBetween(now.Add(-24*time.Hour), now)
	overdue := s.tasksSection("overdue", func() ([]models.Task, error) { return s.store.TasksOverdue(today) })
	waiting := s.tasksSection("waiting", func() ([]models.Task, error) { return s.store.TasksInStatus(models.StatusWaiting) })
	dueToday := s.tasksSection("due today", func() ([]models.Task, error) { return s.store.TasksDueOn(today) })
	inProgress := s.tasksSection("in progress", func() ([]models.Task, error) { return s.store.TasksInStatus(models.StatusInProgress) })

	meetings, err := s.store.MeetingsOnDate(today)
	if err != nil {
		s.logger.Warn("standup: meetings query failed", slog.String("error", err.Error()))
		meetings = []models.Meeting{}
	}

	out := &Standup{
		Date:     today,
		Team:     []*AssigneeBlock{},
		Other:    &AssigneeBlock{Buckets: newBuckets()},
		Meetings: meetings,
	}

	selfContact, err := s.store.SelfContact()
	if err != nil {
		s.logger.Warn("standup: self contact query failed", slog.String("error", err.Error()))
	}
	var selfID int64 = -1
	if selfContact != nil {
		selfID = selfContact.ID
		out.Self = &AssigneeBlock{Contact: selfContact, Buckets: newBuckets()}
	}

	teamBlocks := map[int64]*AssigneeBlock{}
	team, err := s.store.TeamContacts()
	if err != nil {
		s.logger.Warn("standup: team contacts query failed", slog.String("error", err.Error()))
		team = nil
	}
	for i := range team {
		if team[i].ID == selfID {
			continue
		}
		block := &AssigneeBlock{Contact: &team[i], Buckets: newBuckets()}
		teamBlocks[team[i].ID] = block
		out.Team = append(out.Team, block)
	}

	// Categorize with first-match-wins precedence, then route by assignee.
	seen := map[int64]bool{}
	categorize := func(category string, tasks []models.Task) {
		for _, t := range tasks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true

			block := out.Other
			if t.AssigneeID != nil {
				if *t.AssigneeID == selfID && out.Self != nil {
					block = out.Self
				} else if tb, ok := teamBlocks[*t.AssigneeID]; ok {
					block = tb
				}
			}
			block.add(category, t)
		}
	}
	categorize(catCompleted, completed)
	categorize(catOverdue, overdue)
	categorize(catWaiting, waiting)
	categorize(catDueToday, dueToday)
	categorize(catInProgress, inProgress)

	return out
}

// Blockers groups the weekly-report risk rollup.
type Blockers struct {
	Overdue    []models.Task `json:"overdue"`
	Unassigned []models.Task `json:"unassigned"`
	Stuck      []models.Task `json:"stuck"`
}

// ProjectCompletion is the per-project rollup with a completion percentage.
type ProjectCompletion struct {
	store.ProjectTaskBreakdown
	Percent float64 `json:"percent"`
}

// AssigneeWorkload summarizes one contact's completed-in-window and
// currently active task counts.
type AssigneeWorkload struct {
	ContactID int64  `json:"contact_id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Active    int    `json:"active"`
}

// Weekly is the weekly/range report view.
type Weekly struct {
	Since      string              `json:"since"`
	Until      string              `json:"until"`
	Completed  []models.Task       `json:"completed"`
	InProgress []models.Task       `json:"in_progress"`
	Todo       []models.Task       `json:"todo"`
	Created    []models.Task       `json:"created"`
	Blockers   Blockers            `json:"blockers"`
	Projects   []ProjectCompletion `json:"projects"`
	Workload   []AssigneeWorkload  `json:"workload"`
}

// WeeklyReport computes the range report for [since, until]. Callers pass
// the trailing seven days by default. Failing sub-queries degrade to empty
// sections.
func (s *Service) WeeklyReport(since, until time.Time) *Weekly {
	out := &Weekly{
		Since:      since.Format(models.DateLayout),
		Until:      until.Format(models.DateLayout),
		Completed:  s.completedBetween(since, until),
		InProgress: s.tasksSection("in progress", func() ([]models.Task, error) { return s.store.TasksInStatus(models.StatusInProgress) }),
		Todo:       s.tasksSection("todo", func() ([]models.Task, error) { return s.store.TasksInStatusLimit(models.StatusTodo, 10) }),
		Created:    s.tasksSection("created", func() ([]models.Task, error) { return s.store.TasksCreatedBetween(since, until) }),
	}

	now := s.now()
	today := now.Format(models.DateLayout)
	out.Blockers = Blockers{
		Overdue:    s.tasksSection("blockers overdue", func() ([]models.Task, error) { return s.store.TasksOverdue(today) }),
		Unassigned: s.tasksSection("blockers unassigned", func() ([]models.Task, error) { return s.store.UnassignedActiveTasks() }),
		Stuck:      s.stuckTasks(now),
	}

	out.Projects = s.projectCompletions()
	out.Workload = s.assigneeWorkloads(out.Completed)
	return out
}

// completedBetween applies the two-step protocol: transition-to-Done log
// entries in the window give candidates, a current-state query keeps only
// tasks still done (reopened tasks must not be reported as completed).
func (s *Service) completedBetween(since, until time.Time) []models.Task {
	ids, err := s.log.TransitionsInWindow(activity.EntityTask, StatusField, models.StatusDone, since, until)
	if err != nil {
		s.logger.Warn("report: completed-transition query failed", slog.String("error", err.Error()))
		return []models.Task{}
	}
	tasks, err := s.store.TasksByIDsInStatus(ids, models.StatusDone)
	if err != nil {
		s.logger.Warn("report: completed-state query failed", slog.String("error", err.Error()))
		return []models.Task{}
	}
	return tasks
}

// stuckTasks finds tasks whose latest transition into In Progress is older
// than seven days and that are still in that status today.
func (s *Service) stuckTasks(now time.Time) []models.Task {
	ids, err := s.log.LatestTransitionBefore(activity.EntityTask, StatusField, models.StatusInProgress, now.Add(-stuckAfter))
	if err != nil {
		s.logger.Warn("report: stuck-transition query failed", slog.String("error", err.Error()))
		return []models.Task{}
	}
	tasks, err := s.store.TasksByIDsInStatus(ids, models.StatusInProgress)
	if err != nil {
		s.logger.Warn("report: stuck-state query failed", slog.String("error", err.Error()))
		return []models.Task{}
	}
	return tasks
}

func (s *Service) projectCompletions() []ProjectCompletion {
	breakdowns, err := s.store.ProjectBreakdowns()
	if err != nil {
		s.logger.Warn("report: project breakdowns failed", slog.String("error", err.Error()))
		return []ProjectCompletion{}
	}
	out := make([]ProjectCompletion, len(breakdowns))
	for i, b := range breakdowns {
		pc := ProjectCompletion{ProjectTaskBreakdown: b}
		if b.Total > 0 {
			pc.Percent = float64(b.Completed) / float64(b.Total) * 100
		}
		out[i] = pc
	}
	return out
}

func (s *Service) assigneeWorkloads(completed []models.Task) []AssigneeWorkload {
	active, err := s.store.ActiveAssignedCounts()
	if err != nil {
		s.logger.Warn("report: active assignment counts failed", slog.String("error", err.Error()))
		return []AssigneeWorkload{}
	}

	byContact := map[int64]*AssigneeWorkload{}
	for _, t := range completed {
		if t.AssigneeID == nil {
			continue
		}
		w, ok := byContact[*t.AssigneeID]
		if !ok {
			w = &AssigneeWorkload{ContactID: *t.AssigneeID, Name: t.AssigneeName}
			byContact[*t.AssigneeID] = w
		}
		w.Completed++
	}
	missing := []int64{}
	for id, n := range active {
		w, ok := byContact[id]
		if !ok {
			w = &AssigneeWorkload{ContactID: id}
			byContact[id] = w
			missing = append(missing, id)
		}
		w.Active = n
	}
	if len(missing) > 0 {
		contacts, err := s.store.ContactsByIDs(missing)
		if err != nil {
			s.logger.Warn("report: workload name resolution failed", slog.String("error", err.Error()))
		} else {
			for _, c := range contacts {
				if w, ok := byContact[c.ID]; ok {
					w.Name = c.DisplayName()
				}
			}
		}
	}

	out := make([]AssigneeWorkload, 0, len(byContact))
	for _, w := range byContact {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return out[i].Completed > out[j].Completed
		}
		if out[i].Active != out[j].Active {
			return out[i].Active > out[j].Active
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Service) tasksSection(name string, query func() ([]models.Task, error)) []models.Task {
	tasks, err := query()
	if err != nil {
		s.logger.Warn("report: section query failed",
			slog.String("section", name), slog.String("error", err.Error()))
		return []models.Task{}
	}
	return tasks
}
