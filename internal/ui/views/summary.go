package views

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/teamsync/internal/summary"
	"github.com/tgienger/teamsync/internal/ui/styles"
)

// SummaryView is the modal showing the AI stand-up summary
type SummaryView struct {
	requester *summary.Requester
	styles    *styles.Styles
	spinner   spinner.Model
	viewport  viewport.Model
	shownText string
	width     int
	height    int
}

// NewSummaryView creates the modal over requester
func NewSummaryView(requester *summary.Requester) *SummaryView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Secondary)

	return &SummaryView{
		requester: requester,
		styles:    styles.NewStyles(),
		spinner:   sp,
		viewport:  viewport.New(40, 10),
	}
}

// SetSize sets the modal bounds
func (v *SummaryView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = max(min(width-10, 76), 20)
	v.viewport.Height = max(height-12, 5)
	v.shownText = ""
}

// Init starts the spinner
func (v *SummaryView) Init() tea.Cmd {
	return v.spinner.Tick
}

func (v *SummaryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if status, _ := v.requester.State(); status != summary.Pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View renders the modal
func (v *SummaryView) View() string {
	s := v.styles
	status, text := v.requester.State()

	var body string
	switch status {
	case summary.Pending:
		body = v.spinner.View() + " Analysing today's tasks..."
	case summary.Resolved:
		if text != v.shownText {
			v.viewport.SetContent(renderMarkdown(s, text, v.viewport.Width))
			v.viewport.GotoTop()
			v.shownText = text
		}
		body = v.viewport.View()
	default:
		body = s.TitleMuted.Render("No summary requested.")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("✦ AI daily summary"),
		"",
		body,
		"",
		s.TitleMuted.Render("↑/↓ scroll • esc close"),
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, s.Modal.Render(content))
}
