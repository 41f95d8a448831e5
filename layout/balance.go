package layout

import "math"

// contentTop returns the y where body content starts on a page. The
// document header occupies the first page only.
func (e *engine) contentTop(pageIdx int) float64 {
	top := e.margins.Top + e.pageHeaderH
	if pageIdx == 0 {
		top += e.docHeaderH
	}
	top += e.cfg.ContainerPadding
	if e.tpl.Body != nil {
		top += e.tpl.Body.Padding
	}
	return top
}

// floorY returns the lowest y body content may reach. Document-footer space
// is reserved only once completion is confirmed before the page begins;
// during streaming the full band belongs to rows.
func (e *engine) floorY(reserveDocFooter bool) float64 {
	f := e.dims.H - e.margins.Bottom - e.pageFooterH
	if reserveDocFooter && e.docFooterH > 0 {
		f -= e.docFooterH + e.cfg.FooterSpacing
	}
	return f
}

// allTablesComplete reports whether every table has rendered all rows and,
// where configured, its final rows. A table whose cursor does not exist yet
// counts as incomplete.
func (e *engine) allTablesComplete() bool {
	if e.tpl.Body == nil {
		return true
	}
	for i := range e.tpl.Body.Tables {
		tbl := &e.tpl.Body.Tables[i]
		c, ok := e.cursors.peek(tbl.TID())
		if !ok || !c.complete(len(tbl.FinalRows) > 0) {
			return false
		}
	}
	return true
}

// tablesBeforeComplete reports whether every table at a strictly smaller
// offset is complete. Tables wait on this; fields never do.
func (e *engine) tablesBeforeComplete(offset float64) bool {
	if e.tpl.Body == nil {
		return true
	}
	for i := range e.tpl.Body.Tables {
		tbl := &e.tpl.Body.Tables[i]
		if tbl.Offset >= offset {
			continue
		}
		c, ok := e.cursors.peek(tbl.TID())
		if !ok || !c.complete(len(tbl.FinalRows) > 0) {
			return false
		}
	}
	return true
}

// planPages builds the initial page-count estimate from generous height
// guesses. It seeds total-page substitution on alias-less devices and is
// never trusted for termination; the cursor-driven loop owns that.
func (e *engine) planPages() int {
	band := e.floorY(false) - e.contentTop(1)
	if band <= 0 {
		return 1
	}
	var need float64
	for i := range e.elements {
		el := &e.elements[i]
		if el.isTable() {
			tbl := el.table
			rows, _ := e.data.RowSet(tbl.Source)
			st := e.tableStyle(tbl)
			rowH := e.lineHeight(st.cellStyle) + 2*st.cellPad
			// Header row, every data row, and final rows, each padded by
			// half a row to stay conservative.
			need += rowH * 1.5 * float64(1+len(rows)+len(tbl.FinalRows))
			continue
		}
		if el.field.IsVisible() {
			need += e.fieldHeight(el.field)
		}
	}
	pages := int(math.Ceil(need / band))
	if pages < 1 {
		pages = 1
	}
	return pages
}
