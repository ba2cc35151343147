package components

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/tui/themes"
)

// ExtractionForm edits the part number and raw description of extracted
// items.
type ExtractionForm struct {
	table itemTable
}

// NewExtractionForm creates a form over items.
func NewExtractionForm(items []model.ExtractedItem, theme themes.Theme) ExtractionForm {
	var columns []column
	for _, f := range model.ExtractedFields {
		weight := 1
		if f == model.FieldRawDescription {
			weight = 3
		}
		columns = append(columns, column{label: f.Label(), field: string(f), weight: weight})
	}
	form := ExtractionForm{table: newItemTable(columns, theme)}
	form.SetItems(items)
	return form
}

// SetItems refreshes the rows from the workflow state.
func (f *ExtractionForm) SetItems(items []model.ExtractedItem) {
	rows := make([][]string, len(items))
	for i, item := range items {
		for _, field := range model.ExtractedFields {
			rows[i] = append(rows[i], item.Get(field))
		}
	}
	f.table.setRows(rows, nil)
}

// Update handles key presses.
func (f ExtractionForm) Update(msg tea.Msg) (ExtractionForm, tea.Cmd) {
	var cmd tea.Cmd
	f.table, cmd = f.table.update(msg)
	return f, cmd
}

// TakeChanges returns the edits made since the last call, in order.
func (f *ExtractionForm) TakeChanges() []ItemChangedMsg {
	return f.table.takeChanges()
}

// Editing reports whether a cell is being typed into.
func (f ExtractionForm) Editing() bool {
	return f.table.editing
}

// Cursor returns the focused row and field.
func (f ExtractionForm) Cursor() (int, string) {
	return f.table.row, f.table.columns[f.table.col].field
}

// Resize sets the available area.
func (f *ExtractionForm) Resize(width, height int) {
	f.table.width, f.table.height = width, height
	f.table.scroll()
}

// SetTheme switches the colors.
func (f *ExtractionForm) SetTheme(theme themes.Theme) {
	f.table.theme = theme
}

// View renders the form.
func (f ExtractionForm) View() string {
	return f.table.view()
}

// ValidationForm edits processed items. The part number is shown read-only
// and items with a manufacturer new to the backend carry a warning line.
type ValidationForm struct {
	table itemTable
}

var validationColumns = []model.ProcessedField{
	model.FieldProcessedPartNumber,
	model.FieldManufacturer,
	model.FieldLocation,
	model.FieldNCM,
	model.FieldDescription,
}

// NewValidationForm creates a form over items.
func NewValidationForm(items []model.ProcessedItem, theme themes.Theme) ValidationForm {
	weights := map[model.ProcessedField]int{
		model.FieldProcessedPartNumber: 2,
		model.FieldManufacturer:        2,
		model.FieldLocation:            2,
		model.FieldNCM:                 1,
		model.FieldDescription:         4,
	}
	var columns []column
	for _, f := range validationColumns {
		columns = append(columns, column{
			label:    f.Label(),
			field:    string(f),
			weight:   weights[f],
			readOnly: !f.Editable(),
		})
	}
	form := ValidationForm{table: newItemTable(columns, theme)}
	form.SetItems(items)
	return form
}

// SetItems refreshes the rows from the workflow state.
func (f *ValidationForm) SetItems(items []model.ProcessedItem) {
	rows := make([][]string, len(items))
	notes := make([]string, len(items))
	for i, item := range items {
		for _, field := range validationColumns {
			rows[i] = append(rows[i], item.Get(field))
		}
		notes[i] = item.ManufacturerNotice()
	}
	f.table.setRows(rows, notes)
}

// Update handles key presses.
func (f ValidationForm) Update(msg tea.Msg) (ValidationForm, tea.Cmd) {
	var cmd tea.Cmd
	f.table, cmd = f.table.update(msg)
	return f, cmd
}

// TakeChanges returns the edits made since the last call, in order.
func (f *ValidationForm) TakeChanges() []ItemChangedMsg {
	return f.table.takeChanges()
}

// Editing reports whether a cell is being typed into.
func (f ValidationForm) Editing() bool {
	return f.table.editing
}

// Cursor returns the focused row and field.
func (f ValidationForm) Cursor() (int, string) {
	return f.table.row, f.table.columns[f.table.col].field
}

// Resize sets the available area.
func (f *ValidationForm) Resize(width, height int) {
	f.table.width, f.table.height = width, height
	f.table.scroll()
}

// SetTheme switches the colors.
func (f *ValidationForm) SetTheme(theme themes.Theme) {
	f.table.theme = theme
}

// View renders the form.
func (f ValidationForm) View() string {
	return f.table.view()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
