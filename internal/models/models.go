package models

import (
	"strings"
	"time"
)

// User represents a team member
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
}

// Task represents a single task attributed to a team member.
// CreatedAt and CompletedAt are milliseconds since the Unix epoch.
type Task struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   int64  `json:"createdAt"`
	CompletedAt *int64 `json:"completedAt,omitempty"` // nil unless IsCompleted
}

// Created returns the creation time in the local zone
func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Completed returns the completion time, if any
func (t Task) Completed() (time.Time, bool) {
	if t.CompletedAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*t.CompletedAt), true
}

// Millis converts a time to milliseconds since the Unix epoch
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FilterType selects which tasks are shown. It is never stored on a task.
type FilterType string

const (
	FilterAll       FilterType = "ALL"
	FilterMyTasks   FilterType = "MY_TASKS"
	FilterCompleted FilterType = "COMPLETED"
	FilterPending   FilterType = "PENDING"
)

// Filters lists every filter in display order
var Filters = []FilterType{FilterAll, FilterMyTasks, FilterCompleted, FilterPending}

// Next returns the filter that follows f in display order, wrapping around
func (f FilterType) Next() FilterType {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Label is the human readable name of the filter
func (f FilterType) Label() string {
	switch f {
	case FilterMyTasks:
		return "My tasks"
	case FilterCompleted:
		return "Completed"
	case FilterPending:
		return "Pending"
	default:
		return "All"
	}
}

// ParseFilter maps a filter name such as "PENDING" or "my_tasks" to its
// FilterType; unknown names yield FilterAll
func ParseFilter(name string) FilterType {
	name = strings.TrimSpace(name)
	for _, f := range Filters {
		if strings.EqualFold(string(f), name) {
			return f
		}
	}
	return FilterAll
}
