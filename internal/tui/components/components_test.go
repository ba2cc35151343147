package components

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/tui/themes"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestExtractionForm_EditQueuesChanges(t *testing.T) {
	form := NewExtractionForm([]model.ExtractedItem{
		{PartNumber: "AB-12", RawDescription: "bolt"},
		{PartNumber: "CD-34", RawDescription: "nut"},
	}, themes.Dark)

	form, _ = form.Update(key(tea.KeyEnter))
	require.True(t, form.Editing())

	form, _ = form.Update(runes("X"))
	form, _ = form.Update(runes("Y"))
	form, _ = form.Update(key(tea.KeyEnter))
	assert.False(t, form.Editing())

	assert.Equal(t, []ItemChangedMsg{
		{Index: 0, Field: "partnumber", Value: "AB-12X"},
		{Index: 0, Field: "partnumber", Value: "AB-12XY"},
	}, form.TakeChanges())
	assert.Empty(t, form.TakeChanges())
	assert.Contains(t, form.View(), "AB-12XY")
}

func TestExtractionForm_TabWrapsToNextRow(t *testing.T) {
	form := NewExtractionForm([]model.ExtractedItem{{PartNumber: "A"}, {PartNumber: "B"}}, themes.Dark)

	row, field := form.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, "partnumber", field)

	form, _ = form.Update(key(tea.KeyTab))
	row, field = form.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, "descricao_raw", field)

	form, _ = form.Update(key(tea.KeyTab))
	row, field = form.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, "partnumber", field)
}

func TestExtractionForm_SetItemsKeepsTypedText(t *testing.T) {
	form := NewExtractionForm([]model.ExtractedItem{{PartNumber: "A"}}, themes.Dark)
	form, _ = form.Update(key(tea.KeyEnter))
	form, _ = form.Update(runes("1"))

	form.SetItems([]model.ExtractedItem{{PartNumber: "A"}})
	assert.True(t, form.Editing())
	assert.Contains(t, form.View(), "A1")
}

func TestValidationForm_PartNumberIsReadOnly(t *testing.T) {
	form := NewValidationForm([]model.ProcessedItem{
		{PartNumber: "AB-12", Manufacturer: "ACME", IsNewManufacturer: true},
	}, themes.Dark)

	_, field := form.Cursor()
	assert.Equal(t, "fabricante", field)

	form, _ = form.Update(key(tea.KeyLeft))
	_, field = form.Cursor()
	assert.Equal(t, "fabricante", field, "cursor never lands on the part number")

	form, _ = form.Update(key(tea.KeyEnter))
	form, _ = form.Update(key(tea.KeyBackspace))
	changes := form.TakeChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ItemChangedMsg{Index: 0, Field: "fabricante", Value: "ACM"}, changes[0])

	assert.Contains(t, form.View(), `Manufacturer "ACME" will be added`)
}

func TestForms_EmptyItems(t *testing.T) {
	form := NewValidationForm(nil, themes.Light)
	form, cmd := form.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.False(t, form.Editing())
	assert.Contains(t, form.View(), "No items.")
}

func TestUploadBox_ChooseAndRemove(t *testing.T) {
	box := NewUploadBox(themes.Dark)
	assert.True(t, box.Typing())

	_, cmd := box.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd, "empty path is ignored")

	for _, r := range "/tmp/invoice.pdf" {
		box, _ = box.Update(runes(string(r)))
	}
	_, cmd = box.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, FileChosenMsg{Path: "/tmp/invoice.pdf"}, cmd())

	box.SetDocument(&document.Document{Name: "invoice.pdf", Pages: 3, Size: 2048})
	assert.False(t, box.Typing())
	view := box.View()
	assert.Contains(t, view, "invoice.pdf")
	assert.Contains(t, view, "3 pages")
	assert.Contains(t, view, "2.0 KB")

	_, cmd = box.Update(runes("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, FileRemovedMsg{}, cmd())
}

func TestUploadBox_LoadingIgnoresKeys(t *testing.T) {
	box := NewUploadBox(themes.Dark)
	box.SetDocument(&document.Document{Name: "invoice.pdf"})

	assert.NotNil(t, box.SetLoading(true, "Extracting data..."))
	assert.Nil(t, box.SetLoading(true, "Extracting data..."), "already spinning")

	_, cmd := box.Update(runes("x"))
	assert.Nil(t, cmd)
	assert.Contains(t, box.View(), "Extracting data...")
}

func TestFieldForm_Submit(t *testing.T) {
	form := NewFieldForm("login", "Log in", []Field{
		{Key: "email", Label: "Email"},
		{Key: "password", Label: "Password", Secret: true},
	}, themes.Dark)

	for _, r := range "ana@example.com" {
		form, _ = form.Update(runes(string(r)))
	}
	form, _ = form.Update(key(tea.KeyEnter))
	form, _ = form.Update(runes("pw"))
	_, cmd := form.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "login", msg.Form)
	assert.Equal(t, map[string]string{"email": "ana@example.com", "password": "pw"}, msg.Values)
	assert.NotContains(t, form.View(), "pw")
}

func TestFieldForm_Reset(t *testing.T) {
	form := NewFieldForm("code", "Verify", []Field{{Key: "code", Label: "Code"}}, themes.Dark)
	form.SetValue("code", "123456")
	assert.Equal(t, "123456", form.Value("code"))
	form.Reset()
	assert.Empty(t, form.Value("code"))
}

type fakeHistory struct {
	items   []model.TransactionSummary
	renamed string
	deleted int64
}

func (f *fakeHistory) Transactions(context.Context) ([]model.TransactionSummary, error) {
	return f.items, nil
}

func (f *fakeHistory) RenameTransaction(_ context.Context, _ int64, name string) (*model.TransactionSummary, error) {
	f.renamed = name
	return nil, nil
}

func (f *fakeHistory) DeleteTransaction(_ context.Context, id int64) error {
	f.deleted = id
	return nil
}

func summary(id int64, created time.Time) model.TransactionSummary {
	return model.TransactionSummary{ID: id, CreatedAt: model.Timestamp{Time: created}}
}

func loadedSidebar(t *testing.T) (HistorySidebar, *history.List, *fakeHistory) {
	t.Helper()
	backend := &fakeHistory{items: []model.TransactionSummary{
		summary(1, time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)),
		summary(2, time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)),
		summary(3, time.Date(2023, time.March, 1, 9, 0, 0, 0, time.UTC)),
	}}
	list := history.New(backend, nil)
	require.NoError(t, list.Load(context.Background()))
	sidebar := NewHistorySidebar(list, themes.Dark)
	sidebar.Focus()
	return sidebar, list, backend
}

func TestHistorySidebar_OpenSelected(t *testing.T) {
	sidebar, _, _ := loadedSidebar(t)

	sidebar, _ = sidebar.Update(key(tea.KeyDown))
	_, cmd := sidebar.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, TransactionSelectedMsg{ID: 1}, cmd())
}

func TestHistorySidebar_MonthFilter(t *testing.T) {
	sidebar, list, _ := loadedSidebar(t)

	for range 3 {
		sidebar, _ = sidebar.Update(runes("]"))
	}
	assert.Equal(t, time.March, list.Filter().Month)
	assert.Len(t, list.Visible(), 2)

	sidebar, _ = sidebar.Update(runes("}"))
	assert.Equal(t, 2024, list.Filter().Year)
	require.Len(t, list.Visible(), 1)
	assert.Equal(t, int64(2), list.Visible()[0].ID)
	assert.Contains(t, sidebar.View(), "month: Mar")

	sidebar, _ = sidebar.Update(runes("c"))
	assert.True(t, list.Filter().IsZero())
}

func TestHistorySidebar_RenameFlow(t *testing.T) {
	sidebar, list, backend := loadedSidebar(t)

	sidebar, _ = sidebar.Update(runes("r"))
	require.Equal(t, int64(2), list.Renaming())
	assert.True(t, sidebar.Capturing())

	for _, r := range "Invoice 7" {
		sidebar, _ = sidebar.Update(runes(string(r)))
	}
	assert.Equal(t, "Invoice 7", list.Draft())

	_, cmd := sidebar.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, RenameCommitMsg{}, cmd())

	require.NoError(t, list.CommitRename(context.Background()))
	assert.Equal(t, "Invoice 7", backend.renamed)
}

func TestHistorySidebar_DeleteNeedsConfirmation(t *testing.T) {
	sidebar, list, _ := loadedSidebar(t)

	sidebar, _ = sidebar.Update(runes("d"))
	assert.Equal(t, int64(2), list.PendingDelete())
	assert.Contains(t, sidebar.View(), "Delete this process?")

	sidebar, _ = sidebar.Update(runes("n"))
	assert.Zero(t, list.PendingDelete())

	sidebar, _ = sidebar.Update(runes("d"))
	_, cmd := sidebar.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteConfirmMsg{}, cmd())
}

func TestHistorySidebar_MenuClosesOnOtherKeys(t *testing.T) {
	sidebar, list, _ := loadedSidebar(t)

	sidebar, _ = sidebar.Update(runes("m"))
	assert.Equal(t, int64(2), list.OpenMenu())
	assert.Contains(t, sidebar.View(), "r rename · d delete")

	sidebar, _ = sidebar.Update(key(tea.KeyDown))
	assert.Zero(t, list.OpenMenu())

	sidebar.Blur()
	_, cmd := sidebar.Update(runes("n"))
	assert.Nil(t, cmd, "unfocused sidebar ignores keys")
}
