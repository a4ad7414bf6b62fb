package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
	"github.com/tgienger/teamsync/internal/summary"
	"github.com/tgienger/teamsync/internal/ui/keys"
	"github.com/tgienger/teamsync/internal/ui/styles"
	"github.com/tgienger/teamsync/internal/ui/views"
)

// Pane is the part of the screen receiving keys
type Pane int

const (
	PaneTasks Pane = iota
	PaneMembers
)

// summaryDoneMsg carries a finished summary job
type summaryDoneMsg struct {
	outcome summary.Outcome
}

type App struct {
	ctx       context.Context
	manager   *state.Manager
	requester *summary.Requester
	logger    *slog.Logger
	keys      keys.KeyMap
	styles    *styles.Styles

	members     *views.MemberListView
	tasks       *views.TaskListView
	summaryView *views.SummaryView

	focus       Pane
	showSummary bool
	status      string
	width       int
	height      int
}

// NewApp creates the application model. ctx bounds summary requests.
func NewApp(ctx context.Context, manager *state.Manager, requester *summary.Requester, logger *slog.Logger, now func() time.Time) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		ctx:         ctx,
		manager:     manager,
		requester:   requester,
		logger:      logger,
		keys:        keys.DefaultKeyMap(),
		styles:      styles.NewStyles(),
		members:     views.NewMemberListView(manager),
		tasks:       views.NewTaskListView(manager, now),
		summaryView: views.NewSummaryView(requester),
	}
	a.setFocus(PaneTasks)
	return a
}

func (a *App) Init() tea.Cmd {
	return nil
}

// Focus returns the pane receiving keys
func (a *App) Focus() Pane {
	return a.focus
}

// ShowingSummary reports whether the summary modal is open
func (a *App) ShowingSummary() bool {
	return a.showSummary
}

// Status returns the status line text
func (a *App) Status() string {
	return a.status
}

// SetFilter selects the filter of the task pane
func (a *App) SetFilter(f models.FilterType) {
	a.tasks.SetFilter(f)
}

func (a *App) setFocus(p Pane) {
	a.focus = p
	a.members.SetFocused(p == PaneMembers)
	a.tasks.SetFocused(p == PaneTasks)
}

func (a *App) resize() {
	h := max(a.height-1, 8)
	a.members.SetSize(styles.SidebarWidth, h)
	a.tasks.SetSize(styles.MainWidth(a.width), h)
	a.summaryView.SetSize(a.width, a.height)
}

// requestSummary snapshots today's work and runs the job off the UI loop
func (a *App) requestSummary() tea.Cmd {
	job := a.requester.Start(a.manager.Tasks(), a.manager.Users())
	a.showSummary = true
	a.logger.Debug("summary requested", slog.Int("entries", len(job.Entries())))
	ctx := a.ctx
	return tea.Batch(
		a.summaryView.Init(),
		func() tea.Msg {
			return summaryDoneMsg{outcome: job.Run(ctx)}
		},
	)
}

func (a *App) closeSummary() {
	a.showSummary = false
	a.requester.Reset()
}

// busy reports whether the focused pane is collecting text or a confirmation
func (a *App) busy() bool {
	if a.focus == PaneMembers {
		return a.members.Adding()
	}
	return a.tasks.Busy()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case views.Changed:
		a.members.Refresh()
		a.tasks.Refresh()
		if msg.Err != nil {
			a.status = "Could not save: " + msg.Err.Error()
		} else {
			a.status = ""
		}
		return a, nil

	case summaryDoneMsg:
		if msg.outcome.Stale {
			a.logger.Debug("dropping stale summary", slog.Uint64("seq", msg.outcome.Seq))
		}
		return a, nil

	case spinner.TickMsg:
		_, cmd := a.summaryView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.showSummary {
			return a.updateSummary(msg)
		}
		if !a.busy() {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keys.Tab):
				if a.focus == PaneTasks {
					a.setFocus(PaneMembers)
				} else {
					a.setFocus(PaneTasks)
				}
				return a, nil
			case key.Matches(msg, a.keys.Summary):
				return a, a.requestSummary()
			}
		}

		var cmd tea.Cmd
		switch a.focus {
		case PaneMembers:
			_, cmd = a.members.Update(msg)
		default:
			_, cmd = a.tasks.Update(msg)
		}
		return a, cmd
	}

	return a, nil
}

func (a *App) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Quit), key.Matches(msg, a.keys.Enter):
		a.closeSummary()
		return a, nil
	}
	_, cmd := a.summaryView.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.showSummary {
		return a.summaryView.View()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.members.View(), a.tasks.View())
	status := a.styles.Help.Render("tab switch pane • s summary • ? help • q quit")
	if a.status != "" {
		status = a.styles.StatusError.Render(a.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}
