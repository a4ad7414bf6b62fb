package state

import (
	"time"

	"github.com/tgienger/teamsync/internal/models"
)

// Stats is today's progress
type Stats struct {
	Total     int
	Completed int
}

// Percent returns the completed share of Total, 0 when there are no tasks
func (s Stats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// FilteredTasks returns the tasks visible under filter, keeping their order.
// FilterMyTasks without an active member yields nothing.
func FilteredTasks(tasks []models.Task, filter models.FilterType, active *models.User) []models.Task {
	keep := func(models.Task) bool { return true }
	switch filter {
	case models.FilterMyTasks:
		if active == nil {
			return []models.Task{}
		}
		keep = func(t models.Task) bool { return t.UserID == active.ID }
	case models.FilterCompleted:
		keep = func(t models.Task) bool { return t.IsCompleted }
	case models.FilterPending:
		keep = func(t models.Task) bool { return !t.IsCompleted }
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// StartOfDay returns local midnight of the day containing now
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DailyStats counts the tasks created today and how many of those are done.
// A task created earlier but completed today does not count.
func DailyStats(tasks []models.Task, now time.Time) Stats {
	today := models.Millis(StartOfDay(now))
	var s Stats
	for _, t := range tasks {
		if t.CreatedAt < today {
			continue
		}
		s.Total++
		if t.IsCompleted {
			s.Completed++
		}
	}
	return s
}

// TasksOfDay returns the tasks created or completed today, keeping their order
func TasksOfDay(tasks []models.Task, now time.Time) []models.Task {
	today := models.Millis(StartOfDay(now))
	out := []models.Task{}
	for _, t := range tasks {
		if t.CreatedAt >= today || (t.CompletedAt != nil && *t.CompletedAt >= today) {
			out = append(out, t)
		}
	}
	return out
}
