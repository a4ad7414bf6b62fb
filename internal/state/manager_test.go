package state

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/store"
)

// flakyKV is an in-memory KV whose writes can be switched off
type flakyKV struct {
	*store.MemoryKV
	writes  int
	failing bool
}

func (f *flakyKV) SetSetting(key, value string) error {
	if f.failing {
		return errors.New("quota exceeded")
	}
	f.writes++
	return f.MemoryKV.SetSetting(key, value)
}

type fixture struct {
	kv      *flakyKV
	adapter *store.Adapter
	clock   time.Time
	seq     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := &flakyKV{MemoryKV: store.NewMemoryKV()}
	return &fixture{
		kv:      kv,
		adapter: store.New(kv, nil),
		clock:   time.Date(2026, 10, 14, 9, 0, 0, 0, time.Local),
	}
}

func (f *fixture) open(opts ...Option) *Manager {
	base := []Option{
		WithClock(func() time.Time { return f.clock }),
		WithIDGenerator(func() string {
			f.seq++
			return fmt.Sprintf("id-%d", f.seq)
		}),
	}
	return Open(f.adapter, append(base, opts...)...)
}

// emptyTeam opens a manager whose stored team is empty and nobody is active
func (f *fixture) emptyTeam(t *testing.T) *Manager {
	t.Helper()
	require.NoError(t, f.adapter.SaveUsers([]models.User{}))
	m := f.open()
	require.Empty(t, m.Users())
	require.Nil(t, m.ActiveUser())
	return m
}

func TestOpenLoadsDefaults(t *testing.T) {
	m := newFixture(t).open()

	assert.Equal(t, store.DefaultUsers(), m.Users())
	assert.Empty(t, m.Tasks())
	require.NotNil(t, m.ActiveUser())
	assert.Equal(t, "u1", m.ActiveUser().ID)
}

func TestAddUser(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	before := m.Users()

	require.NoError(t, m.AddUser("  Ann "))

	after := m.Users()
	require.Len(t, after, len(before)+1)
	added := after[len(after)-1]
	assert.Equal(t, "Ann", added.Name)
	assert.NotEmpty(t, added.AvatarColor)
	for _, u := range before {
		assert.NotEqual(t, u.ID, added.ID)
	}
	assert.Equal(t, "u1", m.ActiveUser().ID, "existing selection is kept")

	assert.Equal(t, after, f.adapter.LoadUsers(), "users are written through")
}

func TestAddUserRejectsBlankNames(t *testing.T) {
	f := newFixture(t)
	m := f.open()

	for _, name := range []string{"", "   ", "\t\n"} {
		require.NoError(t, m.AddUser(name))
	}
	assert.Len(t, m.Users(), 3)
	assert.Zero(t, f.kv.writes)
}

func TestAddUserActivatesFirstMember(t *testing.T) {
	f := newFixture(t)
	m := f.emptyTeam(t)

	require.NoError(t, m.AddUser("Ann"))

	active := m.ActiveUser()
	require.NotNil(t, active)
	assert.Equal(t, "Ann", active.Name)
	assert.Equal(t, active.ID, f.adapter.LoadActiveUser(m.Users()).ID)

	require.NoError(t, m.AddUser("Bob"))
	assert.Equal(t, "Ann", m.ActiveUser().Name)
}

func TestAddUserSkipsTakenIDs(t *testing.T) {
	f := newFixture(t)
	ids := []string{"u1", "u2", "fresh"}
	m := f.open(WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	require.NoError(t, m.AddUser("Ann"))
	users := m.Users()
	assert.Equal(t, "fresh", users[len(users)-1].ID)
}

func TestStuckIDGeneratorFallsBackToUUID(t *testing.T) {
	for name, stuck := range map[string]string{"taken": "u1", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			m := newFixture(t).open(WithIDGenerator(func() string {
				calls++
				return stuck
			}))

			require.NoError(t, m.AddUser("Ann"))
			require.NoError(t, m.AddTask("one"))
			require.NoError(t, m.AddTask("two"))

			userIDs := map[string]bool{}
			for _, u := range m.Users() {
				userIDs[u.ID] = true
			}
			taskIDs := map[string]bool{}
			for _, task := range m.Tasks() {
				taskIDs[task.ID] = true
			}
			assert.Len(t, userIDs, len(m.Users()))
			assert.Len(t, taskIDs, len(m.Tasks()))
			assert.NotContains(t, userIDs, "")
			assert.NotContains(t, taskIDs, "")
			assert.LessOrEqual(t, calls, 3*maxIDAttempts)
		})
	}
}

func TestAddUserColorsAreDistinct(t *testing.T) {
	m := newFixture(t).emptyTeam(t)

	seen := map[string]bool{}
	for i := range len(palette) {
		require.NoError(t, m.AddUser(fmt.Sprintf("member %d", i)))
	}
	for _, u := range m.Users() {
		assert.False(t, seen[u.AvatarColor], "color %s reused", u.AvatarColor)
		seen[u.AvatarColor] = true
	}
}

func TestSelectUser(t *testing.T) {
	f := newFixture(t)
	m := f.open()

	require.NoError(t, m.SelectUser("u3"))
	assert.Equal(t, "u3", m.ActiveUser().ID)
	assert.Equal(t, "u3", f.adapter.LoadActiveUser(m.Users()).ID)

	writes := f.kv.writes
	require.NoError(t, m.SelectUser("u3"))
	assert.Equal(t, "u3", m.ActiveUser().ID)
	assert.Equal(t, writes, f.kv.writes, "reselecting writes nothing")

	require.NoError(t, m.SelectUser("nobody"))
	assert.Equal(t, "u3", m.ActiveUser().ID)
}

func TestAddTask(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	require.NoError(t, m.SelectUser("u2"))

	require.NoError(t, m.AddTask("write report"))
	f.clock = f.clock.Add(time.Minute)
	require.NoError(t, m.AddTask("buy milk"))

	tasks := m.Tasks()
	require.Len(t, tasks, 2)
	first := tasks[0]
	assert.Equal(t, "buy milk", first.Content)
	assert.Equal(t, "u2", first.UserID)
	assert.False(t, first.IsCompleted)
	assert.Nil(t, first.CompletedAt)
	assert.Equal(t, models.Millis(f.clock), first.CreatedAt)
	assert.Equal(t, "write report", tasks[1].Content)

	assert.Equal(t, tasks, f.adapter.LoadTasks())
}

func TestAddTaskRejections(t *testing.T) {
	t.Run("blank content", func(t *testing.T) {
		f := newFixture(t)
		m := f.open()
		require.NoError(t, m.AddTask("   "))
		assert.Empty(t, m.Tasks())
		assert.Zero(t, f.kv.writes)
	})

	t.Run("no active user", func(t *testing.T) {
		f := newFixture(t)
		m := f.emptyTeam(t)
		for _, content := range []string{"buy milk", "", " "} {
			require.NoError(t, m.AddTask(content))
		}
		assert.Empty(t, m.Tasks())
	})
}

func TestToggleTaskTwiceRestores(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	require.NoError(t, m.AddTask("ship it"))
	original := m.Tasks()[0]

	f.clock = f.clock.Add(time.Hour)
	require.NoError(t, m.ToggleTask(original.ID))
	done := m.Tasks()[0]
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, models.Millis(f.clock), *done.CompletedAt)
	assert.Equal(t, original.CreatedAt, done.CreatedAt)

	require.NoError(t, m.ToggleTask(original.ID))
	assert.Equal(t, original, m.Tasks()[0])
	assert.Equal(t, m.Tasks(), f.adapter.LoadTasks())
}

func TestToggleUnknownTaskIsNoop(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	require.NoError(t, m.AddTask("x"))
	writes := f.kv.writes

	require.NoError(t, m.ToggleTask("missing"))
	assert.False(t, m.Tasks()[0].IsCompleted)
	assert.Equal(t, writes, f.kv.writes)
}

func TestDeleteTaskTwice(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	require.NoError(t, m.AddTask("keep"))
	require.NoError(t, m.AddTask("drop"))
	drop := m.Tasks()[0].ID

	require.NoError(t, m.DeleteTask(drop))
	assert.Len(t, m.Tasks(), 1)
	require.NoError(t, m.DeleteTask(drop))
	assert.Len(t, m.Tasks(), 1)
	assert.Equal(t, "keep", m.Tasks()[0].Content)
	assert.Equal(t, m.Tasks(), f.adapter.LoadTasks())
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	f.kv.failing = true

	err := m.AddTask("survives")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save tasks")
	require.Len(t, m.Tasks(), 1)
	assert.Equal(t, "survives", m.Tasks()[0].Content)

	require.Error(t, m.AddUser("Ann"))
	assert.Len(t, m.Users(), 4)

	f.kv.failing = false
	require.NoError(t, m.ToggleTask(m.Tasks()[0].ID))
	assert.Len(t, f.adapter.LoadTasks(), 1, "next successful write catches up")
}

func TestReadersReturnCopies(t *testing.T) {
	m := newFixture(t).open()
	require.NoError(t, m.AddTask("x"))
	require.NoError(t, m.ToggleTask(m.Tasks()[0].ID))

	tasks := m.Tasks()
	*tasks[0].CompletedAt = 0
	tasks[0].Content = "mutated"
	assert.Equal(t, "x", m.Tasks()[0].Content)
	assert.NotZero(t, *m.Tasks()[0].CompletedAt)

	users := m.Users()
	users[0].Name = "mutated"
	assert.NotEqual(t, "mutated", m.Users()[0].Name)

	active := m.ActiveUser()
	active.Name = "mutated"
	assert.NotEqual(t, "mutated", m.ActiveUser().Name)
}

func TestReopenRestoresSnapshot(t *testing.T) {
	f := newFixture(t)
	m := f.open()
	require.NoError(t, m.AddUser("Ann"))
	require.NoError(t, m.SelectUser("u2"))
	require.NoError(t, m.AddTask("persist me"))

	again := f.open()
	assert.Equal(t, m.Users(), again.Users())
	assert.Equal(t, m.Tasks(), again.Tasks())
	assert.Equal(t, "u2", again.ActiveUser().ID)
}
