package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/equipeadalove/aduana/internal/tui/themes"
)

type column struct {
	label    string
	field    string
	weight   int
	readOnly bool
}

// itemTable is a grid of editable cells. Edits are applied to the local
// rows immediately and queued as ItemChangedMsg until taken by the parent.
type itemTable struct {
	theme   themes.Theme
	input   textinput.Model
	columns []column
	rows    [][]string
	notes   []string
	changes []ItemChangedMsg
	row     int
	col     int
	offset  int
	width   int
	height  int
	editing bool
}

func newItemTable(columns []column, theme themes.Theme) itemTable {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 500

	t := itemTable{
		theme:   theme,
		input:   input,
		columns: columns,
		width:   80,
		height:  12,
	}
	t.col = t.firstEditable()
	return t
}

func (t itemTable) firstEditable() int {
	for i, c := range t.columns {
		if !c.readOnly {
			return i
		}
	}
	return 0
}

// setRows replaces the displayed values, keeping the cursor where possible.
// The cell being edited keeps the text typed so far.
func (t *itemTable) setRows(rows [][]string, notes []string) {
	var typed string
	if t.editing {
		typed = t.input.Value()
	}

	t.rows = rows
	t.notes = notes
	if t.row >= len(rows) {
		t.row = max(len(rows)-1, 0)
	}
	if len(rows) == 0 {
		t.stopEditing()
		return
	}
	if t.editing {
		t.rows[t.row][t.col] = typed
	}
	t.scroll()
}

func (t *itemTable) takeChanges() []ItemChangedMsg {
	changes := t.changes
	t.changes = nil
	return changes
}

func (t itemTable) update(msg tea.Msg) (itemTable, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if t.editing {
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(msg)
			return t, cmd
		}
		return t, nil
	}
	if len(t.rows) == 0 {
		return t, nil
	}

	if t.editing {
		return t.updateEditing(keyMsg)
	}

	switch keyMsg.String() {
	case "up", "k":
		if t.row > 0 {
			t.row--
		}
	case "down", "j":
		if t.row < len(t.rows)-1 {
			t.row++
		}
	case "left", "h":
		t.moveCol(-1)
	case "right", "l":
		t.moveCol(1)
	case "tab":
		t.next()
	case "shift+tab":
		t.prev()
	case "home", "g":
		t.row = 0
	case "end", "G":
		t.row = len(t.rows) - 1
	case "enter", "e":
		cmd := t.startEditing()
		return t, cmd
	}
	t.scroll()
	return t, nil
}

func (t itemTable) updateEditing(msg tea.KeyMsg) (itemTable, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		t.stopEditing()
		return t, nil
	case "tab":
		t.stopEditing()
		t.next()
		t.scroll()
		return t, nil
	}

	before := t.input.Value()
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	if after := t.input.Value(); after != before {
		t.rows[t.row][t.col] = after
		t.changes = append(t.changes, ItemChangedMsg{
			Index: t.row,
			Field: t.columns[t.col].field,
			Value: after,
		})
	}
	return t, cmd
}

func (t *itemTable) startEditing() tea.Cmd {
	if t.columns[t.col].readOnly {
		return nil
	}
	t.editing = true
	t.input.SetValue(t.rows[t.row][t.col])
	t.input.CursorEnd()
	return t.input.Focus()
}

func (t *itemTable) stopEditing() {
	t.editing = false
	t.input.Blur()
}

func (t *itemTable) moveCol(delta int) {
	for c := t.col + delta; c >= 0 && c < len(t.columns); c += delta {
		if !t.columns[c].readOnly {
			t.col = c
			return
		}
	}
}

// next moves to the following editable cell, wrapping to the next row.
func (t *itemTable) next() {
	for c := t.col + 1; c < len(t.columns); c++ {
		if !t.columns[c].readOnly {
			t.col = c
			return
		}
	}
	if t.row < len(t.rows)-1 {
		t.row++
		t.col = t.firstEditable()
	}
}

func (t *itemTable) prev() {
	for c := t.col - 1; c >= 0; c-- {
		if !t.columns[c].readOnly {
			t.col = c
			return
		}
	}
	if t.row > 0 {
		t.row--
		for c := len(t.columns) - 1; c >= 0; c-- {
			if !t.columns[c].readOnly {
				t.col = c
				return
			}
		}
	}
}

func (t *itemTable) visibleRows() int {
	// Header and footer take two lines; rows with a note take two.
	return max((t.height-2)/2, 1)
}

func (t *itemTable) scroll() {
	visible := t.visibleRows()
	if t.row < t.offset {
		t.offset = t.row
	}
	if t.row >= t.offset+visible {
		t.offset = t.row - visible + 1
	}
}

func (t itemTable) columnWidths() []int {
	total := 0
	for _, c := range t.columns {
		total += c.weight
	}
	// Row number column.
	avail := max(t.width-5, len(t.columns)*6)
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = max(avail*c.weight/total, 6)
	}
	return widths
}

func (t itemTable) view() string {
	if len(t.rows) == 0 {
		return t.theme.StatusPending.Render("No items.")
	}

	widths := t.columnWidths()
	var b strings.Builder

	header := []string{t.theme.Header.Render(pad("#", 4))}
	for i, c := range t.columns {
		header = append(header, t.theme.Header.Render(pad(c.label, widths[i]-1)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	end := min(t.offset+t.visibleRows(), len(t.rows))
	for r := t.offset; r < end; r++ {
		cells := []string{t.theme.Faint.Render(pad(itoa(r+1), 5))}
		for c, col := range t.columns {
			w := widths[c] - 1
			value := t.rows[r][c]
			switch {
			case r == t.row && c == t.col && t.editing:
				t.input.Width = w
				cells = append(cells, t.theme.FocusedCell.Render(pad(t.input.View(), w)))
			case r == t.row && c == t.col:
				cells = append(cells, t.theme.FocusedCell.Render(pad(truncate(value, w), w)))
			case col.readOnly:
				cells = append(cells, t.theme.ReadOnlyCell.Render(pad(truncate(value, w), w)))
			default:
				cells = append(cells, t.theme.Cell.Render(pad(truncate(value, w), w)))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
		if r < len(t.notes) && t.notes[r] != "" {
			b.WriteString("     " + t.theme.StatusWarning.Render("⚠ "+t.notes[r]) + "\n")
		}
	}

	footer := itoa(len(t.rows)) + " items"
	if len(t.rows) > t.visibleRows() {
		footer += "  " + itoa(t.offset+1) + "-" + itoa(end)
	}
	b.WriteString(t.theme.Faint.Render(footer))
	return b.String()
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
