// Package cli provides styled terminal output using lipgloss, line
// prompts for reviewing items and interrupt handling for long commands.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/notify"
)

// Palette shared by every command; the TUI has its own themes.
var (
	accent  = lipgloss.Color("#3B82F6")
	green   = lipgloss.Color("#22C55E")
	amber   = lipgloss.Color("#EAB308")
	red     = lipgloss.Color("#EF4444")
	cyan    = lipgloss.Color("#67E8F9")
	slate   = lipgloss.Color("#6B7280")
	outline = lipgloss.Color("#334155")
)

// Message styles.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	InfoStyle    = lipgloss.NewStyle().Foreground(cyan)
	SubtleStyle  = lipgloss.NewStyle().Foreground(slate)

	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(outline).Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cellStyle   = lipgloss.NewStyle()
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
)

const (
	successIcon  = "✓"
	errorIcon    = "✗"
	warningIcon  = "⚠️"
	infoIcon     = "ℹ️"
	documentIcon = "📄"

	// SheetIcon marks spreadsheet paths.
	SheetIcon = "📊"
)

func FormatSuccess(message string) string { return SuccessStyle.Render(successIcon + " " + message) }
func FormatError(message string) string   { return ErrorStyle.Render(errorIcon + " " + message) }
func FormatWarning(message string) string { return WarningStyle.Render(warningIcon + " " + message) }
func FormatInfo(message string) string    { return InfoStyle.Render(infoIcon + " " + message) }

// FormatTitle prefixes a section title with the document icon.
func FormatTitle(title string) string { return TitleStyle.Render(documentIcon + " " + title) }

// FormatPrompt renders a question waiting for a line of input.
func FormatPrompt(prompt string) string { return promptStyle.Render(prompt + " → ") }

// FormatNotice renders a notice with the style of its level.
func FormatNotice(n notify.Notice) string {
	switch n.Level {
	case notify.LevelSuccess:
		return FormatSuccess(n.Message)
	case notify.LevelWarning:
		return FormatWarning(n.Message)
	case notify.LevelError:
		return FormatError(n.Message)
	default:
		return FormatInfo(n.Message)
	}
}

// RenderBox frames content under a bold title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.UnsetMargins().Render(title), content))
}

// RenderTable lays out rows under header in padded columns.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(cellStyle.Width(widths[i] + 2).Render(cell))
		}
	}
	return b.String()
}

// RenderExtracted renders extracted items as a table.
func RenderExtracted(items []model.ExtractedItem) string {
	header := []string{"#"}
	for _, f := range model.ExtractedFields {
		header = append(header, f.Label())
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{fmt.Sprint(i + 1), it.PartNumber, it.RawDescription}
	}
	return RenderTable(header, rows)
}

// RenderProcessed renders processed items as a table, flagging new
// manufacturers.
func RenderProcessed(items []model.ProcessedItem) string {
	header := []string{"#", model.FieldProcessedPartNumber.Label()}
	for _, f := range model.EditableProcessedFields {
		header = append(header, f.Label())
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		manufacturer := it.Manufacturer
		if it.IsNewManufacturer {
			manufacturer = WarningStyle.Render(manufacturer + " (new)")
		}
		rows[i] = []string{fmt.Sprint(i + 1), it.PartNumber, manufacturer, it.Location, it.NCM, it.Description}
	}
	return RenderTable(header, rows)
}

// Notifier prints notices to a writer as they arrive.
type Notifier struct {
	W io.Writer
}

// Notify implements notify.Notifier.
func (n Notifier) Notify(notice notify.Notice) {
	_, _ = fmt.Fprintln(n.W, FormatNotice(notice))
}
