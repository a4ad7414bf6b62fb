package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// SidebarWidth is the width of the member pane including its border
const SidebarWidth = 26

// MainWidth returns the width left for the task pane
func MainWidth(terminalWidth int) int {
	return max(terminalWidth-SidebarWidth-2, 30)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style

	Member         lipgloss.Style
	MemberSelected lipgloss.Style
	ActiveMarker   lipgloss.Style

	Progress lipgloss.Style
	Filter   lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Hint         lipgloss.Style

	Task         lipgloss.Style
	TaskSelected lipgloss.Style
	TaskDone     lipgloss.Style
	TaskMeta     lipgloss.Style

	Modal lipgloss.Style

	SummaryHeading lipgloss.Style
	SummaryBullet  lipgloss.Style
	SummaryStrong  lipgloss.Style

	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style

	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Member: lipgloss.NewStyle().
			Foreground(t.Foreground),

		MemberSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Bold(true),

		ActiveMarker: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Progress: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Filter: lipgloss.NewStyle().
			Foreground(t.Secondary),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Hint: lipgloss.NewStyle().
			Foreground(t.Warning),

		Task: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),

		TaskMeta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(1, 2),

		SummaryHeading: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		SummaryBullet: lipgloss.NewStyle().
			Foreground(t.Primary),

		SummaryStrong: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),
	}
}

// Avatar renders a colored badge with the first letter of name
func Avatar(name, color string) string {
	initial := "?"
	for _, r := range name {
		initial = string(r)
		break
	}
	return lipgloss.NewStyle().
		Foreground(Current.Background).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1).
		Render(initial)
}
