package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/tui/themes"
)

// Field describes one input of a FieldForm.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	CharLimit   int
	Secret      bool
}

// FieldForm is a vertical list of labeled inputs submitted with Enter on
// the last field.
type FieldForm struct {
	theme  themes.Theme
	id     string
	title  string
	fields []Field
	inputs []textinput.Model
	focus  int
	width  int
}

// NewFieldForm creates a form with the first field focused.
func NewFieldForm(id, title string, fields []Field, theme themes.Theme) FieldForm {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.Prompt = "› "
		in.CharLimit = 256
		if f.CharLimit > 0 {
			in.CharLimit = f.CharLimit
		}
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}
	form := FieldForm{
		theme:  theme,
		id:     id,
		title:  title,
		fields: fields,
		inputs: inputs,
		width:  50,
	}
	form.focusField(0)
	return form
}

// Init starts the cursor blink.
func (f FieldForm) Init() tea.Cmd {
	return textinput.Blink
}

// ID returns the form identifier carried by SubmitMsg.
func (f FieldForm) ID() string {
	return f.id
}

// Value returns the current text of the field key.
func (f FieldForm) Value(key string) string {
	for i, field := range f.fields {
		if field.Key == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// SetValue sets the text of the field key.
func (f *FieldForm) SetValue(key, value string) {
	for i, field := range f.fields {
		if field.Key == key {
			f.inputs[i].SetValue(value)
		}
	}
}

// Values returns every field's text.
func (f FieldForm) Values() map[string]string {
	values := make(map[string]string, len(f.fields))
	for i, field := range f.fields {
		values[field.Key] = f.inputs[i].Value()
	}
	return values
}

// Reset clears every input and focuses the first one.
func (f *FieldForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.focusField(0)
}

// SetTheme switches the colors.
func (f *FieldForm) SetTheme(theme themes.Theme) {
	f.theme = theme
}

// Resize sets the form width.
func (f *FieldForm) Resize(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(width-6, 10)
	}
}

func (f *FieldForm) focusField(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Update handles key presses.
func (f FieldForm) Update(msg tea.Msg) (FieldForm, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			cmd := f.focusField(f.focus + 1)
			return f, cmd
		case "shift+tab", "up":
			cmd := f.focusField(f.focus - 1)
			return f, cmd
		case "enter":
			if f.focus < len(f.inputs)-1 {
				cmd := f.focusField(f.focus + 1)
				return f, cmd
			}
			submitted := SubmitMsg{Form: f.id, Values: f.Values()}
			return f, func() tea.Msg { return submitted }
		}
	}

	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f FieldForm) View() string {
	var b strings.Builder
	b.WriteString(f.theme.Title.Render(f.title))
	b.WriteString("\n")
	for i, field := range f.fields {
		label := f.theme.Faint.Render(field.Label)
		if i == f.focus {
			label = f.theme.Bold.Render(field.Label)
		}
		b.WriteString(label + "\n" + f.inputs[i].View() + "\n\n")
	}
	b.WriteString(f.theme.Faint.Render("Tab next field · Enter submit"))
	return f.theme.RoundedBox.Width(max(f.width-2, 20)).Render(b.String())
}
