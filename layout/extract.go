package layout

import (
	"sort"

	"github.com/lvillar/reportflow/schema"
)

// bodyElement is one entry of the body flow, either a field or a table.
// Exactly one of the two pointers is set.
type bodyElement struct {
	offset float64
	field  *schema.Field
	table  *schema.Table
}

func (el *bodyElement) isTable() bool { return el.table != nil }

// extractElements flattens the body into a single offset-ordered worklist.
// The order is authoritative: it is the draw sequence within a page and the
// basis of the sequential constraint between tables. Fields sort before
// tables at equal offsets so a label lands above the table it introduces.
func extractElements(body *schema.Body) []bodyElement {
	if body == nil {
		return nil
	}
	els := make([]bodyElement, 0, len(body.Fields)+len(body.Tables))
	for i := range body.Fields {
		f := &body.Fields[i]
		els = append(els, bodyElement{offset: f.Offset, field: f})
	}
	for i := range body.Tables {
		t := &body.Tables[i]
		els = append(els, bodyElement{offset: t.Offset, table: t})
	}
	sort.SliceStable(els, func(i, j int) bool {
		if els[i].offset != els[j].offset {
			return els[i].offset < els[j].offset
		}
		return !els[i].isTable() && els[j].isTable()
	})
	return els
}
