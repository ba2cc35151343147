package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/tui/themes"
)

// HistorySidebar lists saved transactions with month/year filters, a
// per-row menu, inline rename and confirmed delete. State lives in the
// history list; the sidebar only keeps the cursor and the rename input.
type HistorySidebar struct {
	theme   themes.Theme
	list    *history.List
	rename  textinput.Model
	current int64
	cursor  int
	width   int
	height  int
	focused bool
}

// NewHistorySidebar creates a sidebar over list.
func NewHistorySidebar(list *history.List, theme themes.Theme) HistorySidebar {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 120
	return HistorySidebar{
		theme:  theme,
		list:   list,
		rename: input,
		width:  32,
		height: 20,
	}
}

// Focus gives the sidebar the keyboard.
func (s *HistorySidebar) Focus() { s.focused = true }

// Blur returns the keyboard to the main view.
func (s *HistorySidebar) Blur() { s.focused = false }

// Focused reports whether the sidebar has the keyboard.
func (s HistorySidebar) Focused() bool { return s.focused }

// Capturing reports whether the sidebar is typing a name or waiting for a
// delete confirmation.
func (s HistorySidebar) Capturing() bool {
	return s.list.Renaming() != 0 || s.list.PendingDelete() != 0
}

// SetCurrent marks the transaction open in the main view.
func (s *HistorySidebar) SetCurrent(id int64) { s.current = id }

// SetTheme switches the colors.
func (s *HistorySidebar) SetTheme(theme themes.Theme) { s.theme = theme }

// Resize sets the available area.
func (s *HistorySidebar) Resize(width, height int) {
	s.width, s.height = width, height
	s.rename.Width = max(width-6, 8)
}

// Selected returns the transaction under the cursor.
func (s HistorySidebar) Selected() (model.TransactionSummary, bool) {
	items := s.list.Visible()
	if len(items) == 0 {
		return model.TransactionSummary{}, false
	}
	return items[min(s.cursor, len(items)-1)], true
}

// Update handles key presses while focused.
func (s HistorySidebar) Update(msg tea.Msg) (HistorySidebar, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.list.Renaming() != 0 {
			var cmd tea.Cmd
			s.rename, cmd = s.rename.Update(msg)
			return s, cmd
		}
		return s, nil
	}
	if !s.focused {
		return s, nil
	}

	if s.list.Renaming() != 0 {
		return s.updateRename(keyMsg)
	}
	if s.list.PendingDelete() != 0 {
		switch keyMsg.String() {
		case "y", "enter":
			return s, send(DeleteConfirmMsg{})
		case "n", "esc":
			s.list.CancelDelete()
		}
		return s, nil
	}

	items := s.list.Visible()
	s.cursor = clamp(s.cursor, len(items))
	selected := int64(0)
	if len(items) > 0 {
		selected = items[s.cursor].ID
	}

	switch keyMsg.String() {
	case "m", " ", "r", "d":
		s.list.HandleClick(selected)
	default:
		s.list.HandleClick(0)
	}

	switch keyMsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(items)-1 {
			s.cursor++
		}
	case "enter":
		if selected != 0 {
			return s, send(TransactionSelectedMsg{ID: selected})
		}
	case "m", " ":
		if selected != 0 {
			s.list.ToggleMenu(selected)
		}
	case "r":
		if selected != 0 && s.list.BeginRename(selected) == nil {
			s.rename.SetValue(s.list.Draft())
			s.rename.CursorEnd()
			return s, s.rename.Focus()
		}
	case "d":
		if selected != 0 {
			_ = s.list.RequestDelete(selected)
		}
	case "n":
		return s, send(NewProcessMsg{})
	case "[":
		return s, s.shiftMonth(-1)
	case "]":
		return s, s.shiftMonth(1)
	case "{":
		return s, s.shiftYear(-1)
	case "}":
		return s, s.shiftYear(1)
	case "c":
		s.list.SetFilter(history.Filter{})
		s.cursor = 0
		return s, send(FilterChangedMsg{})
	}
	return s, nil
}

func (s HistorySidebar) updateRename(msg tea.KeyMsg) (HistorySidebar, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return s, send(RenameCommitMsg{})
	case "esc":
		s.list.CancelRename()
		s.rename.Blur()
		return s, nil
	}
	var cmd tea.Cmd
	s.rename, cmd = s.rename.Update(msg)
	s.list.SetDraft(s.rename.Value())
	return s, cmd
}

// shiftMonth cycles the month filter through all months and "any".
func (s *HistorySidebar) shiftMonth(delta int) tea.Cmd {
	f := s.list.Filter()
	f.Month = time.Month((int(f.Month) + delta + 13) % 13)
	s.list.SetFilter(f)
	s.cursor = 0
	return send(FilterChangedMsg{})
}

// shiftYear cycles the year filter through the years present and "any".
func (s *HistorySidebar) shiftYear(delta int) tea.Cmd {
	options := append([]int{0}, s.list.Years()...)
	f := s.list.Filter()
	at := 0
	for i, y := range options {
		if y == f.Year {
			at = i
		}
	}
	f.Year = options[(at+delta+len(options))%len(options)]
	s.list.SetFilter(f)
	s.cursor = 0
	return send(FilterChangedMsg{})
}

// View renders the sidebar.
func (s HistorySidebar) View() string {
	var b strings.Builder
	b.WriteString(s.theme.Title.Render("🗂  History"))
	b.WriteString("\n")

	f := s.list.Filter()
	month, year := "all", "all"
	if f.Month != 0 {
		month = f.Month.String()[:3]
	}
	if f.Year != 0 {
		year = fmt.Sprint(f.Year)
	}
	b.WriteString(s.theme.Faint.Render(fmt.Sprintf("[ month: %s ]  { year: %s }", month, year)))
	b.WriteString("\n\n")

	items := s.list.Visible()
	switch {
	case s.list.Loading():
		b.WriteString(s.theme.StatusPending.Render("Loading..."))
	case len(items) == 0 && len(s.list.Items()) > 0:
		b.WriteString(s.theme.StatusPending.Render("No processes in this period."))
	case len(items) == 0:
		b.WriteString(s.theme.StatusPending.Render("No saved processes yet."))
	}

	cursor := clamp(s.cursor, len(items))
	renaming, deleting, menu := s.list.Renaming(), s.list.PendingDelete(), s.list.OpenMenu()
	width := max(s.width-4, 10)
	for i, t := range items {
		marker := "  "
		if t.ID == s.current {
			marker = "▸ "
		}
		line := marker + truncate(t.Title(), width-2)
		switch {
		case t.ID == renaming:
			line = "✎ " + s.rename.View()
		case s.focused && i == cursor:
			line = s.theme.Selected.Render(pad(line, width))
		default:
			line = s.theme.Normal.Render(line)
		}
		b.WriteString(line + "\n")
		b.WriteString("  " + s.theme.Faint.Render(t.CreatedAt.Format("02/01/2006 15:04")) + "\n")

		if t.ID == menu {
			b.WriteString("  " + s.theme.StatusInfo.Render("r rename · d delete") + "\n")
		}
		if t.ID == deleting {
			b.WriteString("  " + s.theme.StatusError.Render("Delete this process? y/n") + "\n")
		}
	}

	if s.focused {
		b.WriteString("\n" + s.theme.Faint.Render("enter open · m menu · n new · c clear"))
	}

	style := s.theme.RoundedBox
	if s.focused {
		style = s.theme.FocusedBox
	}
	return style.Width(max(s.width-2, 12)).Render(b.String())
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
