// Package sheets reads the spreadsheets exported by the backend so the
// client can summarize and verify a download.
package sheets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/equipeadalove/aduana/internal/model"
)

// ErrNoItemHeader is returned when no sheet has a part number column.
var ErrNoItemHeader = errors.New("no item table found in spreadsheet")

// Sheet summarizes one worksheet.
type Sheet struct {
	Name    string
	Header  []string
	Preview [][]string
	Rows    int
}

// Workbook summarizes an exported file.
type Workbook struct {
	Sheets []Sheet
	Items  []model.ProcessedItem
}

// headerAliases maps normalized column titles to item fields.
var headerAliases = map[string]model.ProcessedField{
	"partnumber":          model.FieldProcessedPartNumber,
	"part number":         model.FieldProcessedPartNumber,
	"pn":                  model.FieldProcessedPartNumber,
	"fabricante":          model.FieldManufacturer,
	"manufacturer":        model.FieldManufacturer,
	"localizacao":         model.FieldLocation,
	"localização":         model.FieldLocation,
	"endereço":            model.FieldLocation,
	"location":            model.FieldLocation,
	"ncm":                 model.FieldNCM,
	"descricao":           model.FieldDescription,
	"descrição":           model.FieldDescription,
	"description":         model.FieldDescription,
	"is_new_manufacturer": model.FieldIsNewManufacturer,
}

// InspectFile opens path and summarizes it.
func InspectFile(path string, previewRows int) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return inspect(f, previewRows)
}

// Inspect summarizes a spreadsheet held in memory.
func Inspect(data []byte, previewRows int) (*Workbook, error) {
	return InspectReader(bytes.NewReader(data), previewRows)
}

// InspectReader summarizes a spreadsheet read from r.
func InspectReader(r io.Reader, previewRows int) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()
	return inspect(f, previewRows)
}

func inspect(f *excelize.File, previewRows int) (*Workbook, error) {
	wb := &Workbook{}
	itemsFound := false

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name}
		if len(rows) > 0 {
			sheet.Header = rows[0]
			body := rows[1:]
			sheet.Rows = len(body)
			if n := min(previewRows, len(body)); n > 0 {
				sheet.Preview = body[:n]
			}

			if !itemsFound {
				if items, ok := parseItems(rows); ok {
					wb.Items = items
					itemsFound = true
				}
			}
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	if !itemsFound {
		return wb, ErrNoItemHeader
	}
	return wb, nil
}

func parseItems(rows [][]string) ([]model.ProcessedItem, bool) {
	columns := make(map[int]model.ProcessedField)
	hasPartNumber := false
	for i, title := range rows[0] {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(title))]
		if !ok {
			continue
		}
		columns[i] = field
		if field == model.FieldProcessedPartNumber {
			hasPartNumber = true
		}
	}
	if !hasPartNumber {
		return nil, false
	}

	items := make([]model.ProcessedItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		var item model.ProcessedItem
		for i, cell := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			cell = strings.TrimSpace(cell)
			switch field {
			case model.FieldProcessedPartNumber:
				item.PartNumber = cell
			case model.FieldIsNewManufacturer:
				item.IsNewManufacturer = truthy(cell)
			default:
				item, _ = item.With(field, cell)
			}
		}
		items = append(items, item)
	}
	return items, true
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "sim", "yes", "x":
		return true
	}
	return false
}
