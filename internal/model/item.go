// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// ExtractedItem is one raw line item found in an uploaded PDF.
// Items have no identity beyond their position in the list.
type ExtractedItem struct {
	PartNumber     string `json:"partnumber"`
	RawDescription string `json:"descricao_raw"`
}

// ProcessedItem is an extracted item enriched by the backend with
// manufacturer, origin and tariff classification data.
type ProcessedItem struct {
	PartNumber        string `json:"partnumber"`
	Manufacturer      string `json:"fabricante"`
	Location          string `json:"localizacao"`
	NCM               string `json:"ncm"`
	Description       string `json:"descricao"`
	IsNewManufacturer bool   `json:"is_new_manufacturer"`
}

// ExtractedField names an editable field of an ExtractedItem.
type ExtractedField string

// Extracted item fields.
const (
	FieldPartNumber     ExtractedField = "partnumber"
	FieldRawDescription ExtractedField = "descricao_raw"
)

// ProcessedField names a field of a ProcessedItem.
type ProcessedField string

// Processed item fields. PartNumber and IsNewManufacturer are read-only.
const (
	FieldProcessedPartNumber ProcessedField = "partnumber"
	FieldManufacturer        ProcessedField = "fabricante"
	FieldLocation            ProcessedField = "localizacao"
	FieldNCM                 ProcessedField = "ncm"
	FieldDescription         ProcessedField = "descricao"
	FieldIsNewManufacturer   ProcessedField = "is_new_manufacturer"
)

// ExtractedFields lists the fields shown by the extraction form, in order.
var ExtractedFields = []ExtractedField{FieldPartNumber, FieldRawDescription}

// EditableProcessedFields lists the user-editable fields of a processed item, in order.
var EditableProcessedFields = []ProcessedField{FieldManufacturer, FieldLocation, FieldNCM, FieldDescription}

// Label returns a human readable label for the field.
func (f ExtractedField) Label() string {
	switch f {
	case FieldPartNumber:
		return "Part number"
	case FieldRawDescription:
		return "Extracted description"
	default:
		return string(f)
	}
}

// Label returns a human readable label for the field.
func (f ProcessedField) Label() string {
	switch f {
	case FieldProcessedPartNumber:
		return "Part number"
	case FieldManufacturer:
		return "Manufacturer"
	case FieldLocation:
		return "Manufacturer address"
	case FieldNCM:
		return "NCM code"
	case FieldDescription:
		return "Description"
	case FieldIsNewManufacturer:
		return "New manufacturer"
	default:
		return string(f)
	}
}

// Editable reports whether users may change the field after processing.
func (f ProcessedField) Editable() bool {
	for _, editable := range EditableProcessedFields {
		if f == editable {
			return true
		}
	}
	return false
}

// Get returns the value of the named field.
func (i ExtractedItem) Get(field ExtractedField) string {
	switch field {
	case FieldPartNumber:
		return i.PartNumber
	case FieldRawDescription:
		return i.RawDescription
	default:
		return ""
	}
}

// With returns a copy of the item with the named field set.
func (i ExtractedItem) With(field ExtractedField, value string) (ExtractedItem, error) {
	switch field {
	case FieldPartNumber:
		i.PartNumber = value
	case FieldRawDescription:
		i.RawDescription = value
	default:
		return i, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return i, nil
}

// Get returns the string value of the named field.
func (i ProcessedItem) Get(field ProcessedField) string {
	switch field {
	case FieldProcessedPartNumber:
		return i.PartNumber
	case FieldManufacturer:
		return i.Manufacturer
	case FieldLocation:
		return i.Location
	case FieldNCM:
		return i.NCM
	case FieldDescription:
		return i.Description
	case FieldIsNewManufacturer:
		if i.IsNewManufacturer {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// With returns a copy of the item with the named editable field set.
func (i ProcessedItem) With(field ProcessedField, value string) (ProcessedItem, error) {
	switch field {
	case FieldManufacturer:
		i.Manufacturer = value
	case FieldLocation:
		i.Location = value
	case FieldNCM:
		i.NCM = value
	case FieldDescription:
		i.Description = value
	case FieldProcessedPartNumber, FieldIsNewManufacturer:
		return i, fmt.Errorf("%w: %q", ErrReadOnlyField, field)
	default:
		return i, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return i, nil
}

// ManufacturerNotice returns the warning shown for manufacturers the backend
// has not seen before, or "" when there is nothing to warn about.
func (i ProcessedItem) ManufacturerNotice() string {
	if !i.IsNewManufacturer {
		return ""
	}
	name := strings.TrimSpace(i.Manufacturer)
	if name == "" {
		return "Unknown manufacturer: fill it in before exporting"
	}
	return fmt.Sprintf("Manufacturer %q will be added to the database", name)
}
