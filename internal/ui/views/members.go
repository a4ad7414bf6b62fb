package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
	"github.com/tgienger/teamsync/internal/ui/keys"
	"github.com/tgienger/teamsync/internal/ui/styles"
)

// Changed is emitted after a view mutated state. Err carries a failed write.
type Changed struct {
	Err error
}

func changed(err error) tea.Cmd {
	return func() tea.Msg { return Changed{Err: err} }
}

type memberItem struct {
	user   models.User
	active bool
}

func (i memberItem) Title() string       { return i.user.Name }
func (i memberItem) Description() string { return "" }
func (i memberItem) FilterValue() string { return i.user.Name }

type memberDelegate struct {
	styles *styles.Styles
	width  int
}

func (d memberDelegate) Height() int                               { return 1 }
func (d memberDelegate) Spacing() int                              { return 0 }
func (d memberDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d memberDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(memberItem)
	if !ok {
		return
	}

	nameStyle := d.styles.Member
	if index == m.Index() {
		nameStyle = d.styles.MemberSelected
	}
	marker := "  "
	if it.active {
		marker = d.styles.ActiveMarker.Render("● ")
	}
	width := max(d.width-8, 6)
	name := nameStyle.Width(width).Render(truncate(it.user.Name, width))

	fmt.Fprintf(w, "%s%s %s", marker, styles.Avatar(it.user.Name, it.user.AvatarColor), name)
}

// MemberListView is the sidebar listing team members
type MemberListView struct {
	manager  *state.Manager
	list     list.Model
	delegate *memberDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	focused  bool
	adding   bool
	newName  textinput.Model
}

// NewMemberListView creates the sidebar
func NewMemberListView(manager *state.Manager) *MemberListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Member name"
	newName.CharLimit = 40

	delegate := &memberDelegate{styles: s, width: styles.SidebarWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Team"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = s.Title

	v := &MemberListView{
		manager:  manager,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
	v.Refresh()
	return v
}

// Refresh reloads members from the manager
func (v *MemberListView) Refresh() {
	active := v.manager.ActiveUser()
	users := v.manager.Users()
	items := make([]list.Item, len(users))
	for i, u := range users {
		items[i] = memberItem{user: u, active: active != nil && active.ID == u.ID}
	}
	v.list.SetItems(items)
}

// SetFocused marks the sidebar as the pane receiving keys
func (v *MemberListView) SetFocused(focused bool) {
	v.focused = focused
	if !focused {
		v.adding = false
		v.newName.Blur()
	}
}

// Adding reports whether the add-member input is open
func (v *MemberListView) Adding() bool {
	return v.adding
}

// SetSize sets the sidebar height
func (v *MemberListView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.delegate.width = width
	v.list.SetSize(width-4, max(height-6, 3))
}

func (v *MemberListView) Init() tea.Cmd {
	return nil
}

func (v *MemberListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	if v.adding {
		return v.updateAdding(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, v.keys.Add):
		v.adding = true
		v.newName.Reset()
		v.newName.Focus()
		return v, textinput.Blink
	case key.Matches(keyMsg, v.keys.Enter):
		if item, ok := v.list.SelectedItem().(memberItem); ok {
			err := v.manager.SelectUser(item.user.ID)
			v.Refresh()
			return v, changed(err)
		}
		return v, nil
	case key.Matches(keyMsg, v.keys.Up), key.Matches(keyMsg, v.keys.Down):
		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *MemberListView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.adding = false
		v.newName.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		err := v.manager.AddUser(name)
		v.adding = false
		v.newName.Blur()
		v.Refresh()
		v.list.Select(len(v.list.Items()) - 1)
		return v, changed(err)
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

// View renders the sidebar
func (v *MemberListView) View() string {
	s := v.styles
	pane := s.Pane
	if v.focused {
		pane = s.PaneFocused
	}

	body := v.list.View()
	if v.adding {
		body = lipgloss.JoinVertical(lipgloss.Left,
			body,
			"",
			s.InputFocused.Width(max(v.width-6, 10)).Render(v.newName.View()),
			s.TitleMuted.Render("↵ add • esc cancel"),
		)
	} else if v.focused {
		body = lipgloss.JoinVertical(lipgloss.Left,
			body,
			"",
			s.Help.Render(fmt.Sprintf("%s select • %s add",
				s.HelpKey.Render("↵"),
				s.HelpKey.Render("a"),
			)),
		)
	}

	return pane.Width(max(v.width-2, 10)).Height(max(v.height-2, 3)).Render(body)
}

// truncate shortens s to width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
