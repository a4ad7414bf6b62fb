// Package state owns the in-memory team and task list and derives the views
// shown from them.
package state

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/teamsync/internal/models"
)

// Storage is the durable side of the manager. Loads never fail; saves report
// write errors.
type Storage interface {
	LoadUsers() []models.User
	LoadTasks() []models.Task
	LoadActiveUser(users []models.User) *models.User
	SaveUsers(users []models.User) error
	SaveTasks(tasks []models.Task) error
	SaveActiveUser(user *models.User) error
}

// palette holds the avatar colors handed out to new members, in order.
var palette = []string{
	"#2563eb", // blue-600
	"#7c3aed", // violet-600
	"#dc2626", // red-600
	"#059669", // green-600
	"#ea580c", // orange-600
	"#d97706", // amber-600
	"#0ea5e9", // sky-500
}

// Manager is the authoritative copy of users, tasks and the active member.
// Every mutation is written through to Storage before the lock is released.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	users  []models.User
	tasks  []models.Task // most recent first
	active *models.User
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator replaces the uuid based id generator
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithLogger sets the logger used to report persistence failures
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Open loads the stored snapshot and returns a manager over it
func Open(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.users = storage.LoadUsers()
	m.tasks = storage.LoadTasks()
	m.active = storage.LoadActiveUser(m.users)
	return m
}

// Users returns a copy of the team in insertion order
func (m *Manager) Users() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.users)
}

// Tasks returns a copy of the task list, most recent first
func (m *Manager) Tasks() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.tasks)
}

// ActiveUser returns the current member or nil
func (m *Manager) ActiveUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	u := *m.active
	return &u
}

func (m *Manager) findUser(id string) (models.User, bool) {
	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// maxIDAttempts bounds calls to the configured generator before falling back
// to random uuids.
const maxIDAttempts = 8

func (m *Manager) uniqueID(taken func(string) bool) string {
	for range maxIDAttempts {
		if id := m.newID(); id != "" && !taken(id) {
			return id
		}
	}
	m.logger.Warn("id generator keeps colliding, using uuid")
	for {
		if id := uuid.NewString(); !taken(id) {
			return id
		}
	}
}

func (m *Manager) uniqueUserID() string {
	return m.uniqueID(func(id string) bool {
		_, ok := m.findUser(id)
		return ok
	})
}

func (m *Manager) uniqueTaskID() string {
	return m.uniqueID(func(id string) bool { return m.taskIndex(id) >= 0 })
}

func (m *Manager) taskIndex(id string) int {
	return slices.IndexFunc(m.tasks, func(t models.Task) bool { return t.ID == id })
}

// AddUser appends a member named name. Blank names are ignored. The new
// member becomes active when nobody is selected.
func (m *Manager) AddUser(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := models.User{
		ID:          m.uniqueUserID(),
		Name:        name,
		AvatarColor: palette[len(m.users)%len(palette)],
	}
	m.users = append(m.users, u)

	errs := []error{m.persist("users", m.storage.SaveUsers(slices.Clone(m.users)))}
	if m.active == nil {
		active := u
		m.active = &active
		errs = append(errs, m.persist("active user", m.storage.SaveActiveUser(&active)))
	}
	return errors.Join(errs...)
}

// SelectUser makes the member with the given id active. Unknown ids are
// ignored and reselecting the active member changes nothing.
func (m *Manager) SelectUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.findUser(id)
	if !ok {
		return nil
	}
	if m.active != nil && m.active.ID == u.ID {
		return nil
	}
	m.active = &u
	return m.persist("active user", m.storage.SaveActiveUser(&u))
}

// AddTask puts a new pending task for the active member at the front of the
// list. Blank content, or no active member, is ignored.
func (m *Manager) AddTask(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}
	t := models.Task{
		ID:        m.uniqueTaskID(),
		UserID:    m.active.ID,
		Content:   content,
		CreatedAt: models.Millis(m.now()),
	}
	m.tasks = append([]models.Task{t}, m.tasks...)
	return m.saveTasks()
}

// ToggleTask flips a task between pending and completed
func (m *Manager) ToggleTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(id)
	if i < 0 {
		return nil
	}
	t := m.tasks[i]
	if t.IsCompleted {
		t.IsCompleted = false
		t.CompletedAt = nil
	} else {
		at := models.Millis(m.now())
		t.IsCompleted = true
		t.CompletedAt = &at
	}
	m.tasks[i] = t
	return m.saveTasks()
}

// DeleteTask removes a task
func (m *Manager) DeleteTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.taskIndex(id)
	if i < 0 {
		return nil
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return m.saveTasks()
}

func (m *Manager) saveTasks() error {
	return m.persist("tasks", m.storage.SaveTasks(cloneTasks(m.tasks)))
}

// persist logs a failed write; the in-memory state is kept either way.
func (m *Manager) persist(what string, err error) error {
	if err != nil {
		m.logger.Error("persist state", slog.String("record", what), slog.String("error", err.Error()))
	}
	return err
}

// cloneTasks copies tasks including their CompletedAt pointers
func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			t.CompletedAt = &at
		}
		out[i] = t
	}
	return out
}
