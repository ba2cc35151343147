package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-wide shortcuts. Keys inside forms and the
// sidebar are handled by the components.
type KeyMap struct {
	// Workflow
	Advance    key.Binding
	StartNew   key.Binding
	ViewData   key.Binding
	ChangeFile key.Binding
	Remove     key.Binding

	// Navigation
	SwitchPane key.Binding
	Profile    key.Binding
	Back       key.Binding
	Signup     key.Binding
	Recover    key.Binding

	// Application
	ToggleTheme key.Binding
	ToggleHelp  key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Advance: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("Ctrl+G", "next step"),
		),
		StartNew: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("Ctrl+N", "new process"),
		),
		ViewData: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view data"),
		),
		ChangeFile: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("Ctrl+O", "choose another file"),
		),
		Remove: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("Ctrl+X", "remove file"),
		),

		SwitchPane: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("Ctrl+E", "history"),
		),
		Profile: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("Ctrl+P", "profile"),
		),
		Back: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("Ctrl+B", "go back"),
		),
		Signup: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("Ctrl+U", "create account"),
		),
		Recover: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("Ctrl+R", "forgot password"),
		),

		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("Ctrl+T", "theme"),
		),
		ToggleHelp: key.NewBinding(
			// Not ctrl+h: many terminals send it for backspace.
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.SwitchPane, k.ToggleTheme, k.ToggleHelp, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Advance, k.StartNew, k.ViewData, k.ChangeFile, k.Remove},
		{k.SwitchPane, k.Profile, k.Back},
		{k.Signup, k.Recover},
		{k.ToggleTheme, k.ToggleHelp, k.Quit},
	}
}
