package layout

import (
	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// tableStyle is a table's fully resolved visual configuration.
type tableStyle struct {
	cellStyle   canvas.TextStyle
	headerStyle canvas.TextStyle
	cellPad     float64
	borderWidth float64
	borderColor *canvas.RGB
	headerFill  *canvas.RGB
	altFill     *canvas.RGB
}

// tableStyle merges the document default font with the table's own style
// block. Headers default to bold when the table font carries no style.
func (e *engine) tableStyle(tbl *schema.Table) tableStyle {
	font := e.font
	s := tbl.Style
	if s != nil {
		font = e.mergeFont(s.Font)
		if s.FontSize > 0 {
			font.Size = s.FontSize
		}
	}
	ts := tableStyle{
		cellStyle: e.textStyle(font, nil, ""),
		cellPad:   2 * e.mm,
	}
	hdr := font
	if hdr.Style == "" {
		hdr.Style = "B"
	}
	var hdrText *schema.Color
	if s != nil {
		if s.CellPadding > 0 {
			ts.cellPad = s.CellPadding
		}
		ts.borderWidth = s.BorderWidth
		if s.BorderColor != nil {
			ts.borderColor = rgb(s.BorderColor)
			if ts.borderWidth == 0 {
				ts.borderWidth = 0.2 * e.mm
			}
		}
		if s.HeaderFill != nil {
			ts.headerFill = rgb(s.HeaderFill)
		}
		if s.AltRowFill != nil {
			ts.altFill = rgb(s.AltRowFill)
		}
		hdrText = s.HeaderText
	}
	ts.headerStyle = e.textStyle(hdr, hdrText, "")
	return ts
}

func rgb(c *schema.Color) *canvas.RGB {
	return &canvas.RGB{R: c.R, G: c.G, B: c.B}
}

// visibleColumns filters a table's columns down to the drawable ones.
func visibleColumns(tbl *schema.Table) []*schema.Column {
	out := make([]*schema.Column, 0, len(tbl.Columns))
	for i := range tbl.Columns {
		c := &tbl.Columns[i]
		if c.IsVisible() {
			out = append(out, c)
		}
	}
	return out
}

// columnWidths assigns fixed widths first and splits the remaining content
// width evenly among auto (zero-width) columns.
func (e *engine) columnWidths(cols []*schema.Column) []float64 {
	widths := make([]float64, len(cols))
	fixed := 0.0
	auto := 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			auto++
		}
	}
	if auto > 0 {
		remaining := e.contentWidth() - fixed
		if remaining < 0 {
			remaining = 0
		}
		share := remaining / float64(auto)
		for i, c := range cols {
			if c.Width == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func columnAligns(cols []*schema.Column) []canvas.Align {
	out := make([]canvas.Align, len(cols))
	for i, c := range cols {
		a := canvas.Align(c.Align)
		if a == "" {
			a = canvas.AlignLeft
		}
		out[i] = a
	}
	return out
}

func columnLabels(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	any := false
	for i, c := range cols {
		out[i] = c.Label
		if c.Label != "" {
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

// rowCellTexts resolves every visible column binding against one record.
// Unresolvable bindings render as empty cells.
func rowCellTexts(row binding.Record, cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if v, ok := binding.Resolve(row, c.Binding); ok {
			out[i] = binding.Format(v)
		}
	}
	return out
}

// measuredRow is one row's wrapped cell layouts and resulting height,
// computed in full before anything is drawn.
type measuredRow struct {
	layouts []canvas.TextLayout
	height  float64
}

// measureRow wraps each cell's text at its column width. The row height is
// the maximum measured cell height; nothing here estimates.
func (e *engine) measureRow(texts []string, widths []float64, st canvas.TextStyle, pad float64) measuredRow {
	m := measuredRow{layouts: make([]canvas.TextLayout, len(texts))}
	for i, txt := range texts {
		contentW := widths[i] - 2*pad
		if contentW < 1 {
			contentW = 1
		}
		lay := e.measure(txt, contentW, st)
		m.layouts[i] = lay
		if h := lay.Height() + 2*pad; h > m.height {
			m.height = h
		}
	}
	if m.height <= 0 {
		m.height = e.lineHeight(st) + 2*pad
	}
	return m
}

// drawRow paints one measured row at y: fill, border, then each cell's
// wrapped lines. widths and aligns run parallel to the measured layouts.
func (e *engine) drawRow(cv canvas.Canvas, y float64, widths []float64, aligns []canvas.Align, m measuredRow, base canvas.TextStyle, fill *canvas.RGB, st tableStyle) {
	x := e.margins.Left
	for i := range m.layouts {
		w := widths[i]
		if fill != nil {
			cv.DrawRect(x, y, w, m.height, canvas.RectStyle{Fill: fill})
		}
		if st.borderWidth > 0 {
			stroke := st.borderColor
			if stroke == nil {
				stroke = &canvas.RGB{}
			}
			cv.DrawRect(x, y, w, m.height, canvas.RectStyle{Stroke: stroke, LineWidth: st.borderWidth})
		}
		cs := base
		cs.Align = aligns[i]
		lay := m.layouts[i]
		for li, line := range lay.Lines {
			cv.DrawText(x+st.cellPad, y+st.cellPad+float64(li)*lay.LineHeight, w-2*st.cellPad, lay.LineHeight, line, cs)
		}
		x += w
	}
}

// renderTable streams rows of one table into the band between y and floor,
// and returns the new y plus whether anything was drawn.
//
// The column header renders only on the table's first-ever appearance,
// together with the first row, so a lone header is never stranded at a page
// bottom. Rows are measured before drawing and the cursor only advances
// past drawn rows; a page where nothing fit leaves the cursor untouched so
// the same row is retried on the next page. sole marks a band with nothing
// above it, where one oversized row is forced through rather than stalling
// the run forever.
func (e *engine) renderTable(cv canvas.Canvas, tbl *schema.Table, y, floor float64, sole bool) (float64, bool) {
	cur := e.cursors.get(tbl.TID())
	rows := e.rowSet(tbl)
	cur.observeTotal(tbl.TID(), len(rows))

	cols := visibleColumns(tbl)
	if len(cols) == 0 {
		if !cur.allRowsRendered {
			e.warn("table has no visible columns", "table", tbl.ID)
			cur.markAllRendered()
			if len(tbl.FinalRows) > 0 {
				cur.finalRowsRendered = true
			}
		}
		return y, false
	}
	st := e.tableStyle(tbl)
	widths := e.columnWidths(cols)
	aligns := columnAligns(cols)
	drew := false

	if !cur.allRowsRendered {
		var header *measuredRow
		if cur.nextIndex() == 0 {
			if labels := columnLabels(cols); labels != nil {
				h := e.measureRow(labels, widths, st.headerStyle, st.cellPad)
				header = &h
			}
		}

		for idx := cur.nextIndex(); idx < len(rows); idx++ {
			texts := rowCellTexts(rows[idx], cols)
			m := e.measureRow(texts, widths, st.cellStyle, st.cellPad)

			need := m.height
			if header != nil {
				need += header.height
			}
			if y+need > floor {
				if drew || !sole {
					break
				}
				e.warn("row taller than the page band, drawing oversized",
					"table", tbl.ID, "row", idx)
			}
			if header != nil {
				e.drawRow(cv, y, widths, aligns, *header, st.headerStyle, st.headerFill, st)
				y += header.height
				header = nil
			}
			var fill *canvas.RGB
			if st.altFill != nil && idx%2 == 1 {
				fill = st.altFill
			}
			e.drawRow(cv, y, widths, aligns, m, st.cellStyle, fill, st)
			y += m.height
			cur.advance(idx)
			drew = true
		}
		if cur.exhausted() {
			cur.markAllRendered()
			e.debug("table rows exhausted", "table", tbl.ID, "rows", cur.totalItems)
		}
	}

	if cur.allRowsRendered && len(tbl.FinalRows) > 0 && !cur.finalRowsRendered {
		y = e.renderFinalRows(cv, tbl, widths, st, y, floor)
		drew = true
	}
	return y, drew
}
