package layout

import (
	"fmt"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// renderFinalRows computes and draws a table's summary rows, top to bottom,
// directly below the last data row. Each row is atomic: one that does not
// fit above the floor is still drawn on this page with a fit warning, never
// deferred, so the flags below stay exactly-once.
//
// The cursor's finalRowsRendered flips here and nowhere else; the caller
// guards on it, which makes a second invocation a no-op.
func (e *engine) renderFinalRows(cv canvas.Canvas, tbl *schema.Table, widths []float64, st tableStyle, y, floor float64) float64 {
	cur := e.cursors.get(tbl.TID())
	if cur.finalRowsRendered {
		return y
	}
	for ri := range tbl.FinalRows {
		texts, spanWidths, aligns := e.finalRowCells(tbl, tbl.FinalRows[ri], widths)
		if len(texts) == 0 {
			continue
		}
		m := e.measureRow(texts, spanWidths, st.cellStyle, st.cellPad)
		if y+m.height > floor {
			e.warn("final row exceeds remaining page space",
				"table", tbl.ID, "finalRow", ri)
		}
		e.drawRow(cv, y, spanWidths, aligns, m, st.cellStyle, nil, st)
		y += m.height
	}
	cur.finalRowsRendered = true
	return y
}

// finalRowCells resolves one summary row into parallel slices of cell text,
// spanned width, and alignment, grouping visible-column widths by colspan.
// Columns left uncovered by the configured cells close out as one empty
// cell so row borders stay continuous.
func (e *engine) finalRowCells(tbl *schema.Table, row []schema.FinalRowCell, widths []float64) ([]string, []float64, []canvas.Align) {
	var (
		texts  []string
		spanW  []float64
		aligns []canvas.Align
	)
	col := 0
	for i := range row {
		cell := &row[i]
		span := cell.Colspan
		if span <= 0 {
			span = 1
		}
		w := 0.0
		for j := 0; j < span && col < len(widths); j++ {
			w += widths[col]
			col++
		}
		if w == 0 {
			break
		}
		texts = append(texts, e.finalCellText(tbl, cell))
		spanW = append(spanW, w)
		a := canvas.Align(cell.Align)
		if a == "" {
			a = canvas.AlignLeft
		}
		aligns = append(aligns, a)
	}
	if col < len(widths) {
		w := 0.0
		for ; col < len(widths); col++ {
			w += widths[col]
		}
		texts = append(texts, "")
		spanW = append(spanW, w)
		aligns = append(aligns, canvas.AlignLeft)
	}
	return texts, spanW, aligns
}

// finalCellText computes one summary cell's display text. Evaluation
// failures degrade the cell to empty and are logged; they never abort the
// document.
func (e *engine) finalCellText(tbl *schema.Table, cell *schema.FinalRowCell) string {
	switch cell.Kind {
	case schema.CellStatic:
		return cell.Label + cell.Value
	case schema.CellAggregate:
		v, err := e.evalAggregate(tbl, cell)
		if err != nil {
			e.warn("aggregate evaluation failed, cell left empty",
				"table", tbl.ID, "func", cell.Func, "field", cell.Field, "error", err.Error())
			return ""
		}
		return cell.Label + binding.Format(v)
	case schema.CellFormula:
		parsed, ok := e.formulas[cell.Expr]
		if !ok {
			return cell.Label
		}
		v, err := parsed.Evaluate(e.data)
		if err != nil {
			e.warn("formula evaluation failed, cell left empty",
				"table", tbl.ID, "expr", cell.Expr, "error", err.Error())
			return ""
		}
		return cell.Label + binding.Format(v)
	}
	return ""
}

// evalAggregate applies one aggregate function to a record field across a
// row-set, skipping missing and non-numeric values. Empty inputs yield 0.
func (e *engine) evalAggregate(tbl *schema.Table, cell *schema.FinalRowCell) (float64, error) {
	source := cell.Source
	if source == "" {
		source = tbl.Source
	}
	rows, ok := e.data.RowSet(source)
	if !ok {
		return 0, fmt.Errorf("layout: row-set %q not found", source)
	}
	var vals []float64
	for _, r := range rows {
		v, ok := binding.Resolve(r, cell.Field)
		if !ok {
			continue
		}
		n, ok := binding.Numeric(v)
		if !ok {
			continue
		}
		vals = append(vals, n)
	}
	switch cell.Func {
	case schema.AggCount:
		return float64(len(vals)), nil
	case schema.AggSum:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum, nil
	case schema.AggAvg:
		if len(vals) == 0 {
			return 0, nil
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)), nil
	case schema.AggMin:
		if len(vals) == 0 {
			return 0, nil
		}
		min := vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}
		}
		return min, nil
	case schema.AggMax:
		if len(vals) == 0 {
			return 0, nil
		}
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		return max, nil
	}
	return 0, fmt.Errorf("layout: unknown aggregate function %q", cell.Func)
}
