package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
	"github.com/tgienger/teamsync/internal/ui/keys"
	"github.com/tgienger/teamsync/internal/ui/styles"
)

// TaskListView shows the input form, today's progress and the filtered tasks
type TaskListView struct {
	manager *state.Manager
	now     func() time.Time
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	focused bool
	filter  models.FilterType
	visible []models.Task
	authors map[string]models.User
	cursor  int
	scrollY int

	input  textinput.Model
	typing bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

// NewTaskListView creates the task pane
func NewTaskListView(manager *state.Manager, now func() time.Time) *TaskListView {
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.CharLimit = 500

	v := &TaskListView{
		manager: manager,
		now:     now,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		filter:  models.FilterAll,
		input:   input,
	}
	v.Refresh()
	return v
}

// Refresh recomputes the visible tasks from the manager
func (v *TaskListView) Refresh() {
	v.visible = state.FilteredTasks(v.manager.Tasks(), v.filter, v.manager.ActiveUser())
	users := v.manager.Users()
	v.authors = make(map[string]models.User, len(users))
	for _, u := range users {
		v.authors[u.ID] = u
	}
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
	v.ensureVisible()

	if active := v.manager.ActiveUser(); active != nil {
		v.input.Placeholder = fmt.Sprintf("%s, what are you working on today?", active.Name)
	} else {
		v.input.Placeholder = "Select a member to start adding tasks..."
	}
}

// Filter returns the current filter
func (v *TaskListView) Filter() models.FilterType {
	return v.filter
}

// SetFilter switches the listed tasks to f
func (v *TaskListView) SetFilter(f models.FilterType) {
	v.filter = f
	v.cursor = 0
	v.scrollY = 0
	v.Refresh()
}

// Visible returns the tasks currently listed
func (v *TaskListView) Visible() []models.Task {
	return v.visible
}

// Typing reports whether keys go to the task input
func (v *TaskListView) Typing() bool {
	return v.typing
}

// Busy reports whether a prompt or popup is waiting for keys
func (v *TaskListView) Busy() bool {
	return v.typing || v.confirmingDelete || v.showHelpPopup
}

// SetFocused marks the task pane as the pane receiving keys
func (v *TaskListView) SetFocused(focused bool) {
	v.focused = focused
	if !focused {
		v.stopTyping()
	}
}

// SetSize sets the pane size
func (v *TaskListView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-10, 10)
	v.ensureVisible()
}

func (v *TaskListView) Init() tea.Cmd {
	return nil
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	// Any key closes the help popup
	if v.showHelpPopup {
		v.showHelpPopup = false
		return v, nil
	}
	if v.confirmingDelete {
		return v.updateConfirmDelete(keyMsg)
	}
	if v.typing {
		return v.updateTyping(keyMsg)
	}
	return v.updateNormal(keyMsg)
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.New):
		if v.manager.ActiveUser() == nil {
			return v, nil
		}
		v.typing = true
		v.input.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok {
			err := v.manager.ToggleTask(t.ID)
			v.Refresh()
			return v, changed(err)
		}
	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Content
		}
	case key.Matches(msg, v.keys.Filter):
		v.SetFilter(v.filter.Next())
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}
	return v, nil
}

func (v *TaskListView) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.stopTyping()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		content := v.input.Value()
		if strings.TrimSpace(content) == "" {
			return v, nil
		}
		err := v.manager.AddTask(content)
		v.input.Reset()
		v.cursor = 0
		v.scrollY = 0
		v.Refresh()
		return v, changed(err)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		err := v.manager.DeleteTask(v.deleteTargetID)
		v.Refresh()
		return v, changed(err)
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) stopTyping() {
	v.typing = false
	v.input.Blur()
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.visible) {
		return models.Task{}, false
	}
	return v.visible[v.cursor], true
}

// listHeight is the number of task rows that fit below the header and form
func (v *TaskListView) listHeight() int {
	return max(v.height-12, 3)
}

func (v *TaskListView) ensureVisible() {
	h := v.listHeight()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+h {
		v.scrollY = v.cursor - h + 1
	}
}

// View renders the pane
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	s := v.styles
	pane := s.Pane
	if v.focused {
		pane = s.PaneFocused
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		"",
		v.renderInput(),
		s.Filter.Render("Filter: "+v.filter.Label()),
		"",
		v.renderTaskList(),
	)
	return pane.Width(max(v.width-2, 20)).Height(max(v.height-2, 5)).Render(content)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	now := v.now()
	stats := state.DailyStats(v.manager.Tasks(), now)

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("TeamSync"),
		s.TitleMuted.Render(now.Format("Monday, January 2, 2006")),
	)
	right := lipgloss.JoinVertical(lipgloss.Right,
		s.TitleMuted.Render("TODAY"),
		s.Progress.Render(fmt.Sprintf("%d", stats.Completed))+s.TitleMuted.Render(" / ")+fmt.Sprintf("%d", stats.Total)+
			s.TitleMuted.Render(fmt.Sprintf("  %d%%", stats.Percent())),
	)

	gap := max(v.width-6-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

func (v *TaskListView) renderInput() string {
	s := v.styles
	style := s.Input
	if v.typing {
		style = s.InputFocused
	}
	box := style.Width(max(v.width-8, 10)).Render(v.input.View())
	if v.manager.ActiveUser() == nil {
		return lipgloss.JoinVertical(lipgloss.Left, box,
			s.Hint.Render("! Pick yourself in the team list to start logging."))
	}
	return box
}

func (v *TaskListView) renderTaskList() string {
	if len(v.visible) == 0 {
		return v.styles.TitleMuted.Render("No tasks here yet.")
	}

	end := min(v.scrollY+v.listHeight(), len(v.visible))
	rows := make([]string, 0, end-v.scrollY)
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTaskItem(v.visible[i], i == v.cursor && v.focused))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles

	check := "[ ]"
	content := task.Content
	if task.IsCompleted {
		check = "[✓]"
		content = s.TaskDone.Render(content)
	}

	author := "Unknown"
	color := string(styles.Current.ForegroundDim)
	if u, ok := v.authors[task.UserID]; ok {
		author, color = u.Name, u.AvatarColor
	}
	when := task.Created().Format("15:04")
	if at, ok := task.Completed(); ok {
		when += " → done " + at.Format("15:04")
	}
	meta := s.TaskMeta.Render(fmt.Sprintf("%s · %s", author, when))

	row := fmt.Sprintf("%s %s %s  %s", check, styles.Avatar(author, color), content, meta)
	style := s.Task
	if selected {
		style = s.TaskSelected
	}
	return style.Width(max(v.width-6, 10)).Render(row)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	helpItems := []string{
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("space") + "  mark done / undo",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("f") + "      cycle filter",
		s.HelpKey.Render("s") + "      AI daily summary",
		s.HelpKey.Render("tab") + "    team list",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, s.Modal.Render(content))
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(truncate(v.deleteTargetName, max(v.width-10, 10))),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}
