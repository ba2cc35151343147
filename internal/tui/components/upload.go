package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/equipeadalove/aduana/internal/config"
	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/tui/themes"
)

// UploadBox selects the PDF to upload and shows a spinner while the
// workflow is busy.
type UploadBox struct {
	theme   themes.Theme
	doc     *document.Document
	status  string
	input   textinput.Model
	spinner spinner.Model
	width   int
	loading bool
}

// NewUploadBox creates an empty upload box with the path input focused.
func NewUploadBox(theme themes.Theme) UploadBox {
	input := textinput.New()
	input.Placeholder = "path/to/invoice.pdf"
	input.Prompt = "📄 "
	input.CharLimit = 1024
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	return UploadBox{
		theme:   theme,
		input:   input,
		spinner: s,
		width:   60,
	}
}

// Init starts the cursor blink.
func (u UploadBox) Init() tea.Cmd {
	return textinput.Blink
}

// SetDocument shows doc as the selected file, or the path input when nil.
func (u *UploadBox) SetDocument(doc *document.Document) {
	u.doc = doc
	if doc == nil {
		u.input.Focus()
		return
	}
	u.input.SetValue("")
	u.input.Blur()
}

// Reopen shows the empty path input again so another file can replace
// the one shown.
func (u *UploadBox) Reopen() {
	u.doc = nil
	u.input.SetValue("")
	u.input.Focus()
}

// Document returns the file shown.
func (u UploadBox) Document() *document.Document {
	return u.doc
}

// SetLoading starts or stops the spinner. The returned command drives the
// animation.
func (u *UploadBox) SetLoading(loading bool, status string) tea.Cmd {
	wasLoading := u.loading
	u.loading = loading
	u.status = status
	if loading && !wasLoading {
		return u.spinner.Tick
	}
	return nil
}

// Loading reports whether the spinner is shown.
func (u UploadBox) Loading() bool {
	return u.loading
}

// Typing reports whether the path input has focus.
func (u UploadBox) Typing() bool {
	return u.doc == nil && !u.loading
}

// SetTheme switches the colors.
func (u *UploadBox) SetTheme(theme themes.Theme) {
	u.theme = theme
	u.spinner.Style = lipgloss.NewStyle().Foreground(theme.Primary)
}

// Resize sets the box width.
func (u *UploadBox) Resize(width int) {
	u.width = width
	u.input.Width = max(width-8, 10)
}

// Update handles key presses and spinner ticks.
func (u UploadBox) Update(msg tea.Msg) (UploadBox, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !u.loading {
			return u, nil
		}
		var cmd tea.Cmd
		u.spinner, cmd = u.spinner.Update(msg)
		return u, cmd

	case tea.KeyMsg:
		if u.loading {
			return u, nil
		}
		if u.doc != nil {
			switch msg.String() {
			case "x", "delete":
				return u, func() tea.Msg { return FileRemovedMsg{} }
			}
			return u, nil
		}
		if msg.Type == tea.KeyEnter {
			path := strings.TrimSpace(u.input.Value())
			if path == "" {
				return u, nil
			}
			path = config.ExpandPath(strings.Trim(path, `"'`))
			return u, func() tea.Msg { return FileChosenMsg{Path: path} }
		}
	}

	if u.doc != nil {
		return u, nil
	}
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return u, cmd
}

// View renders the box.
func (u UploadBox) View() string {
	var content string
	switch {
	case u.doc == nil:
		content = lipgloss.JoinVertical(lipgloss.Left,
			u.theme.Bold.Render("Select the invoice PDF"),
			u.input.View(),
			u.theme.Faint.Render("Enter to select"),
		)
	default:
		details := []string{document.FormatSize(u.doc.Size)}
		if u.doc.Pages > 0 {
			details = append([]string{fmt.Sprintf("%d pages", u.doc.Pages)}, details...)
		}
		lines := []string{
			u.theme.Bold.Render("📄 " + u.doc.Name),
			u.theme.Faint.Render(strings.Join(details, " · ")),
		}
		if !u.loading {
			lines = append(lines, u.theme.Faint.Render("x to remove"))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if u.loading {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", u.spinner.View()+" "+u.theme.StatusPending.Render(u.status))
	}

	return u.theme.RoundedBox.Width(max(u.width-2, 20)).Render(content)
}
