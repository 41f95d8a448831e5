package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lvillar/reportflow/expr"
)

// Load parses a JSON template and validates it.
func Load(data []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("schema: parsing template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// LoadFile reads and parses a JSON template from a file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: reading template: %w", err)
	}
	return Load(data)
}

// Validate checks the template for structural problems. Any error returned
// here aborts generation before the first page.
func (t *Template) Validate() error {
	if t.Body == nil {
		return fmt.Errorf("schema: template has no body")
	}
	for _, z := range []struct {
		name string
		zone *Zone
	}{
		{"pageHeader", t.PageHeader},
		{"pageFooter", t.PageFooter},
		{"docHeader", t.DocHeader},
		{"docFooter", t.DocFooter},
	} {
		if z.zone == nil {
			continue
		}
		for i := range z.zone.Fields {
			if err := validateField(&z.zone.Fields[i]); err != nil {
				return fmt.Errorf("schema: %s field %d: %w", z.name, i, err)
			}
		}
	}
	for i := range t.Body.Fields {
		if err := validateField(&t.Body.Fields[i]); err != nil {
			return fmt.Errorf("schema: body field %d: %w", i, err)
		}
	}

	seen := make(map[string]bool, len(t.Body.Tables))
	for i := range t.Body.Tables {
		tbl := &t.Body.Tables[i]
		if tbl.ID == "" {
			return fmt.Errorf("schema: body table %d: missing id", i)
		}
		if seen[tbl.ID] {
			return fmt.Errorf("schema: duplicate table id %q", tbl.ID)
		}
		seen[tbl.ID] = true
		if len(tbl.Columns) == 0 {
			return fmt.Errorf("schema: table %q: no columns", tbl.ID)
		}
		for j := range tbl.Columns {
			if tbl.Columns[j].Binding == "" {
				return fmt.Errorf("schema: table %q: column %d: missing binding", tbl.ID, j)
			}
		}
		for r, row := range tbl.FinalRows {
			if err := validateFinalRow(row, len(tbl.Columns)); err != nil {
				return fmt.Errorf("schema: table %q: final row %d: %w", tbl.ID, r, err)
			}
		}
	}
	return nil
}

func validateField(f *Field) error {
	switch f.Kind {
	case "", FieldText, FieldPageNumber, FieldTotalPages, FieldDate, FieldTime:
	case FieldImage:
		if f.Src == "" {
			return fmt.Errorf("image field requires src")
		}
	case FieldBarcode:
		switch f.BarcodeType {
		case BarcodeQR, BarcodeCode128, BarcodeEAN, BarcodePDF417:
		default:
			return fmt.Errorf("unknown barcode type %q", f.BarcodeType)
		}
		if f.Binding == "" && f.Text == "" {
			return fmt.Errorf("barcode field requires binding or text content")
		}
	case FieldRichText:
		if f.HTML == "" && f.Binding == "" {
			return fmt.Errorf("richtext field requires html or binding")
		}
	default:
		return fmt.Errorf("unknown field kind %q", f.Kind)
	}
	return nil
}

func validateFinalRow(row []FinalRowCell, columns int) error {
	span := 0
	for i, c := range row {
		cs := c.Colspan
		if cs < 0 {
			return fmt.Errorf("cell %d: negative colspan", i)
		}
		if cs == 0 {
			cs = 1
		}
		span += cs
		switch c.Kind {
		case CellStatic:
		case CellAggregate:
			switch c.Func {
			case AggSum, AggAvg, AggCount, AggMin, AggMax:
			default:
				return fmt.Errorf("cell %d: unknown aggregate func %q", i, c.Func)
			}
			if c.Field == "" {
				return fmt.Errorf("cell %d: aggregate requires field", i)
			}
		case CellFormula:
			if c.Expr == "" {
				return fmt.Errorf("cell %d: formula requires expr", i)
			}
			if _, err := expr.Parse(c.Expr); err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
		default:
			return fmt.Errorf("cell %d: unknown kind %q", i, c.Kind)
		}
	}
	if span > columns {
		return fmt.Errorf("colspans cover %d columns, table has %d", span, columns)
	}
	return nil
}
