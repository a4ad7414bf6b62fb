// Package store persists the team's users, tasks and active member as JSON
// snapshots in a key/value store.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tgienger/teamsync/internal/models"
)

// Keys of the three persisted records.
const (
	KeyUsers      = "teamSync_users"
	KeyTasks      = "teamSync_tasks"
	KeyActiveUser = "teamSync_currentUser"
)

// KV is a durable key/value store. GetSetting returns "" for a missing key.
type KV interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// DefaultUsers is the team used when nothing valid has been stored yet.
func DefaultUsers() []models.User {
	return []models.User{
		{ID: "u1", Name: "小明", AvatarColor: "#3b82f6"},
		{ID: "u2", Name: "小红", AvatarColor: "#ec4899"},
		{ID: "u3", Name: "老张", AvatarColor: "#f59e0b"},
	}
}

// Adapter loads and saves state snapshots. Reads never fail: absent or
// malformed records fall back to defaults.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

// New creates an adapter over kv
func New(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{kv: kv, logger: logger}
}

// read returns the raw record, or "" when it is missing or unreadable.
func (a *Adapter) read(key string) string {
	raw, err := a.kv.GetSetting(key)
	if err != nil {
		a.logger.Warn("read stored record", slog.String("key", key), slog.String("error", err.Error()))
		return ""
	}
	return raw
}

func (a *Adapter) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.kv.SetSetting(key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadUsers returns the stored team or DefaultUsers
func (a *Adapter) LoadUsers() []models.User {
	raw := a.read(KeyUsers)
	if raw == "" {
		return DefaultUsers()
	}

	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil || users == nil {
		a.logger.Warn("malformed users record, using defaults", slog.Any("error", err))
		return DefaultUsers()
	}
	seen := make(map[string]bool, len(users))
	for _, u := range users {
		if u.ID == "" || strings.TrimSpace(u.Name) == "" || seen[u.ID] {
			a.logger.Warn("invalid stored user, using defaults", slog.String("id", u.ID))
			return DefaultUsers()
		}
		seen[u.ID] = true
	}
	return users
}

// LoadTasks returns the stored tasks, most recent first, or an empty slice
func (a *Adapter) LoadTasks() []models.Task {
	raw := a.read(KeyTasks)
	if raw == "" {
		return []models.Task{}
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil || tasks == nil {
		a.logger.Warn("malformed tasks record, starting empty", slog.Any("error", err))
		return []models.Task{}
	}
	// Later entries with an id already seen are dropped.
	seen := make(map[string]bool, len(tasks))
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			a.logger.Warn("dropping stored task", slog.String("id", t.ID))
			continue
		}
		seen[t.ID] = true
		normalize(&t)
		kept = append(kept, t)
	}
	return kept
}

// normalize restores the invariant that CompletedAt is set iff IsCompleted.
func normalize(t *models.Task) {
	switch {
	case !t.IsCompleted:
		t.CompletedAt = nil
	case t.CompletedAt == nil:
		at := t.CreatedAt
		t.CompletedAt = &at
	}
}

// LoadActiveUser returns the stored member resolved against users. It falls
// back to the first user when nothing usable is stored.
func (a *Adapter) LoadActiveUser(users []models.User) *models.User {
	fallback := func() *models.User {
		if len(users) == 0 {
			return nil
		}
		u := users[0]
		return &u
	}

	raw := a.read(KeyActiveUser)
	if raw == "" {
		return fallback()
	}

	var stored models.User
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.ID == "" {
		a.logger.Warn("malformed active user record", slog.Any("error", err))
		return fallback()
	}
	for _, u := range users {
		if u.ID == stored.ID {
			return &u
		}
	}
	a.logger.Warn("active user is not a member", slog.String("user_id", stored.ID))
	return fallback()
}

// SaveUsers writes the team snapshot
func (a *Adapter) SaveUsers(users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	if err := a.write(KeyUsers, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// SaveTasks writes the task snapshot
func (a *Adapter) SaveTasks(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	if err := a.write(KeyTasks, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// SaveActiveUser writes the selected member. A nil user leaves the stored
// selection untouched.
func (a *Adapter) SaveActiveUser(user *models.User) error {
	if user == nil {
		return nil
	}
	if err := a.write(KeyActiveUser, user); err != nil {
		return fmt.Errorf("save active user: %w", err)
	}
	return nil
}
