package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
	"github.com/tgienger/teamsync/internal/store"
	"github.com/tgienger/teamsync/internal/summary"
	"github.com/tgienger/teamsync/internal/ui/views"
)

type countingSummarizer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSummarizer) Summarize(context.Context, []summary.Entry) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "- great day", nil
}

var clock = time.Date(2026, 10, 14, 10, 0, 0, 0, time.Local)

func newTestApp(t *testing.T) (*App, *state.Manager, *countingSummarizer) {
	t.Helper()
	manager := state.Open(store.New(store.NewMemoryKV(), nil), state.WithClock(func() time.Time { return clock }))
	fake := &countingSummarizer{}
	requester := summary.NewRequester(fake, summary.Config{Now: func() time.Time { return clock }})
	app := NewApp(context.Background(), manager, requester, nil, func() time.Time { return clock })
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, manager, fake
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends msg and feeds back any Changed or summaryDoneMsg it produces
func press(t *testing.T, app *App, msg tea.Msg) {
	t.Helper()
	_, cmd := app.Update(msg)
	drain(app, cmd)
}

// run executes cmd, giving up on commands that wait (cursor blink ticks)
func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := run(cmd).(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(app, c)
		}
	case views.Changed, summaryDoneMsg:
		app.Update(msg)
	}
}

func typeTask(t *testing.T, app *App, content string) {
	t.Helper()
	press(t, app, runes("n"))
	press(t, app, runes(content))
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
}

func TestAddAndToggleTaskFromKeys(t *testing.T) {
	app, manager, _ := newTestApp(t)

	typeTask(t, app, "buy milk")
	require.Len(t, manager.Tasks(), 1)
	assert.Equal(t, "buy milk", manager.Tasks()[0].Content)
	assert.Equal(t, "u1", manager.Tasks()[0].UserID)

	press(t, app, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, manager.Tasks()[0].IsCompleted)
	assert.Equal(t, state.Stats{Total: 1, Completed: 1}, state.DailyStats(manager.Tasks(), clock))
	assert.Contains(t, app.View(), "buy milk")
}

func TestQuitKeyIsTextWhileTyping(t *testing.T) {
	app, manager, _ := newTestApp(t)

	press(t, app, runes("n"))
	_, cmd := app.Update(runes("q"))
	if cmd != nil {
		_, quit := run(cmd).(tea.QuitMsg)
		assert.False(t, quit)
	}
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, manager.Tasks(), 1)
	assert.Equal(t, "q", manager.Tasks()[0].Content)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	app, manager, _ := newTestApp(t)
	typeTask(t, app, "temporary")

	press(t, app, runes("d"))
	press(t, app, runes("n"))
	assert.Len(t, manager.Tasks(), 1)

	press(t, app, runes("d"))
	press(t, app, runes("y"))
	assert.Empty(t, manager.Tasks())
}

func TestFilterCycling(t *testing.T) {
	app, _, _ := newTestApp(t)
	typeTask(t, app, "one")

	press(t, app, runes("f"))
	assert.Equal(t, models.FilterMyTasks, app.tasks.Filter())
	assert.Len(t, app.tasks.Visible(), 1)

	press(t, app, runes("f"))
	assert.Equal(t, models.FilterCompleted, app.tasks.Filter())
	assert.Empty(t, app.tasks.Visible())
}

func TestAddAndSelectMember(t *testing.T) {
	app, manager, _ := newTestApp(t)

	press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PaneMembers, app.Focus())

	press(t, app, runes("a"))
	press(t, app, runes("Ann"))
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	users := manager.Users()
	require.Len(t, users, 4)
	assert.Equal(t, "Ann", users[3].Name)
	assert.Equal(t, "u1", manager.ActiveUser().ID)

	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, users[3].ID, manager.ActiveUser().ID)
}

func TestSummaryWithoutTasksSkipsSummarizer(t *testing.T) {
	app, _, fake := newTestApp(t)

	press(t, app, runes("s"))
	assert.True(t, app.ShowingSummary())
	status, text := app.requester.State()
	assert.Equal(t, summary.Resolved, status)
	assert.Equal(t, summary.NoTasksMessage, text)
	assert.Zero(t, fake.calls)

	press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, app.ShowingSummary())
	status, _ = app.requester.State()
	assert.Equal(t, summary.Idle, status)
}

func TestSummaryCallsSummarizer(t *testing.T) {
	app, _, fake := newTestApp(t)
	typeTask(t, app, "ship feature")

	press(t, app, runes("s"))
	assert.Equal(t, 1, fake.calls)
	_, text := app.requester.State()
	assert.Equal(t, "- great day", text)
	assert.Contains(t, app.View(), "great day")
}

func TestInitialFilterAndCompletionTime(t *testing.T) {
	app, manager, _ := newTestApp(t)
	typeTask(t, app, "write docs")

	app.SetFilter(models.FilterCompleted)
	assert.Equal(t, models.FilterCompleted, app.tasks.Filter())
	assert.Empty(t, app.tasks.Visible())

	require.NoError(t, manager.ToggleTask(manager.Tasks()[0].ID))
	press(t, app, views.Changed{})
	require.Len(t, app.tasks.Visible(), 1)
	assert.Contains(t, app.View(), "done 10:00")
}
