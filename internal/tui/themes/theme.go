// Package themes defines the dark and light color schemes of the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme names accepted by GetTheme.
const (
	DarkName  = "dark"
	LightName = "light"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	Cell          lipgloss.Style
	ReadOnlyCell  lipgloss.Style
	FocusedCell   lipgloss.Style
	RoundedBox    lipgloss.Style
	FocusedBox    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Name          string
	Primary       lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
}

type palette struct {
	primary, secondary, muted, border      lipgloss.Color
	foreground, background, surface        lipgloss.Color
	info, errorColor, warning, successTint lipgloss.Color
}

func build(name string, p palette) Theme {
	return Theme{
		Name:       name,
		Primary:    p.primary,
		Border:     p.border,
		Foreground: p.foreground,
		Background: p.background,
		Info:       p.info,
		Error:      p.errorColor,
		Warning:    p.warning,
		Success:    p.successTint,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.primary).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().Foreground(p.foreground),
		Bold:   lipgloss.NewStyle().Bold(true).Foreground(p.foreground),
		Faint:  lipgloss.NewStyle().Foreground(p.muted),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.background).
			Bold(true),

		Header:       lipgloss.NewStyle().Bold(true).Foreground(p.secondary).PaddingRight(1),
		Cell:         lipgloss.NewStyle().Foreground(p.foreground).PaddingRight(1),
		ReadOnlyCell: lipgloss.NewStyle().Foreground(p.muted).PaddingRight(1),
		FocusedCell:  lipgloss.NewStyle().Background(p.surface).Foreground(p.primary).Bold(true).PaddingRight(1),

		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		FocusedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().Foreground(p.successTint).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(p.errorColor).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.info).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
	}
}

// Dark is the default theme.
var Dark = build(DarkName, palette{
	primary:     lipgloss.Color("#3b82f6"),
	secondary:   lipgloss.Color("#93c5fd"),
	muted:       lipgloss.Color("#737373"),
	border:      lipgloss.Color("#404040"),
	foreground:  lipgloss.Color("#fafafa"),
	background:  lipgloss.Color("#171717"),
	surface:     lipgloss.Color("#262626"),
	info:        lipgloss.Color("#67e8f9"),
	errorColor:  lipgloss.Color("#ef4444"),
	warning:     lipgloss.Color("#f59e0b"),
	successTint: lipgloss.Color("#10b981"),
})

// Light is the light theme.
var Light = build(LightName, palette{
	primary:     lipgloss.Color("#1d4ed8"),
	secondary:   lipgloss.Color("#1e40af"),
	muted:       lipgloss.Color("#6b7280"),
	border:      lipgloss.Color("#d4d4d8"),
	foreground:  lipgloss.Color("#111827"),
	background:  lipgloss.Color("#ffffff"),
	surface:     lipgloss.Color("#e5e7eb"),
	info:        lipgloss.Color("#0e7490"),
	errorColor:  lipgloss.Color("#b91c1c"),
	warning:     lipgloss.Color("#b45309"),
	successTint: lipgloss.Color("#047857"),
})

// GetTheme returns a theme by name. Unknown names get Dark.
func GetTheme(name string) Theme {
	if name == LightName {
		return Light
	}
	return Dark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == LightName {
		return Dark
	}
	return Light
}
