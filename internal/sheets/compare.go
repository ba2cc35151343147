package sheets

import (
	"fmt"

	"github.com/equipeadalove/aduana/internal/model"
)

// Mismatch is a difference between the items sent for export and the rows
// found in the downloaded file.
type Mismatch struct {
	Field    model.ProcessedField
	Expected string
	Actual   string
	Row      int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("row %d %s: expected %q, got %q", m.Row+1, m.Field.Label(), m.Expected, m.Actual)
}

// Compare checks the exported rows against the items that were exported.
// Only part number and the editable fields are compared; a count mismatch
// is reported as a single part-number mismatch on the first missing row.
func Compare(expected, actual []model.ProcessedItem) []Mismatch {
	var out []Mismatch
	fields := append([]model.ProcessedField{model.FieldProcessedPartNumber}, model.EditableProcessedFields...)

	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		for _, field := range fields {
			if e, a := expected[i].Get(field), actual[i].Get(field); e != a {
				out = append(out, Mismatch{Row: i, Field: field, Expected: e, Actual: a})
			}
		}
	}

	switch {
	case len(expected) > n:
		out = append(out, Mismatch{Row: n, Field: model.FieldProcessedPartNumber, Expected: expected[n].PartNumber})
	case len(actual) > n:
		out = append(out, Mismatch{Row: n, Field: model.FieldProcessedPartNumber, Actual: actual[n].PartNumber})
	}
	return out
}
