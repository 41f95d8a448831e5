package layout

import (
	"fmt"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// runState names the orchestrator's phase for diagnostics.
type runState int

const (
	statePlanning runState = iota
	stateRendering
	stateExtending
	stateDone
)

func (s runState) String() string {
	switch s {
	case statePlanning:
		return "planning"
	case stateRendering:
		return "rendering"
	case stateExtending:
		return "extending"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Run paginates one template against one data set onto the device and
// returns the outcome summary. A fatal error (invalid template, iteration
// cap) aborts the whole run; partial documents are never returned.
func Run(tpl *schema.Template, data binding.Data, dev canvas.Device, cfg Config) (*Outcome, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(tpl, data, dev, cfg)
	if err != nil {
		return nil, err
	}
	return e.run()
}

// run drives the page loop. Termination decisions come from cursor
// observations only; the planning estimate just seeds the plan that
// Extending grows one page at a time.
func (e *engine) run() (*Outcome, error) {
	state := statePlanning
	e.planned = e.planPages()
	e.debug("pagination planned", "state", state.String(), "estimatedPages", e.planned)

	if e.tpl.Title != "" || e.tpl.Author != "" || e.tpl.Subject != "" {
		if m, ok := e.dev.(canvas.DocInfoSetter); ok {
			m.SetDocInfo(e.tpl.Title, e.tpl.Author, e.tpl.Subject)
		}
	}

	if e.tpl.Underlay != nil {
		if u, ok := e.dev.(canvas.Underlayer); ok {
			page := e.tpl.Underlay.Page
			if page < 1 {
				page = 1
			}
			if err := u.SetUnderlay(e.tpl.Underlay.Src, page); err != nil {
				e.warn("underlay unavailable, continuing without",
					"src", e.tpl.Underlay.Src, "error", err.Error())
			}
		} else {
			e.warn("device cannot stamp underlays, continuing without",
				"src", e.tpl.Underlay.Src)
		}
	}

	fieldDone := make([]bool, len(e.elements))
	pages := 0
	state = stateRendering

	for {
		if pages >= e.cfg.IterationCap {
			return nil, fmt.Errorf("%w after %d pages", ErrIterationCap, pages)
		}
		if pages >= e.planned {
			state = stateExtending
			e.planned = pages + 1
			e.debug("extending page plan", "state", state.String(), "pages", e.planned)
			state = stateRendering
		}
		e.renderPage(pages, fieldDone)
		pages++

		if e.workComplete(fieldDone) {
			break
		}
	}
	state = stateDone
	e.debug("pagination finished", "state", state.String(), "pages", pages)

	out := &Outcome{
		Pages:    pages,
		Rows:     map[schema.TableID]int{},
		Warnings: e.warnings,
	}
	for id, c := range e.cursors {
		out.Rows[id] = c.lastRenderedIndex + 1
	}
	return out, nil
}

// renderPage produces one page: fixed zones first, then the body worklist
// in offset order, then the document footer if the last table completed
// here. Each page's canvas is closed once the next page begins.
func (e *engine) renderPage(pageIdx int, fieldDone []bool) {
	pc := pageCtx{page: pageIdx + 1, total: e.planned, alias: e.aliasToken}
	if pc.total < pc.page {
		pc.total = pc.page
	}
	cv := e.dev.StartPage(e.dims)
	e.debug("page started", "page", pc.page)

	e.renderZone(cv, e.tpl.PageHeader, e.margins.Top, pc)
	e.renderZone(cv, e.tpl.PageFooter, e.dims.H-e.margins.Bottom-e.pageFooterH, pc)
	if pageIdx == 0 {
		e.renderZone(cv, e.tpl.DocHeader, e.margins.Top+e.pageHeaderH, pc)
	}

	reserve := !e.docFooterDrawn && e.allTablesComplete()
	floor := e.floorY(reserve)
	y := e.contentTop(pageIdx)
	drewAny := false

	for i := range e.elements {
		el := &e.elements[i]
		if el.isTable() {
			tbl := el.table
			if !e.tablesBeforeComplete(el.offset) {
				continue
			}
			if c, ok := e.cursors.peek(tbl.TID()); ok && c.complete(len(tbl.FinalRows) > 0) {
				continue
			}
			ny, drew := e.renderTable(cv, tbl, y, floor, !drewAny)
			y = ny
			if drew {
				drewAny = true
			}
			continue
		}

		f := el.field
		if fieldDone[i] {
			continue
		}
		if !f.IsVisible() {
			fieldDone[i] = true
			continue
		}
		x := e.margins.Left + f.OffsetX
		h := e.flowFieldHeight(f, x, pc)
		if y+h > floor {
			if drewAny {
				// The rest of the flow moves to the next page.
				break
			}
			e.warn("field taller than the page band, drawing oversized", "page", pc.page)
		}
		e.drawField(cv, f, x, y, pc)
		y += h
		fieldDone[i] = true
		drewAny = true
	}

	if !e.docFooterDrawn && e.docFooterH > 0 && e.allTablesComplete() {
		e.drawDocFooter(cv, y, pc)
	}
}

// drawDocFooter places the document footer below the lowest body content
// with the configured spacing, clamped to stay above the page footer band.
// Clamping means it overlaps body content, which is surfaced as a warning.
func (e *engine) drawDocFooter(cv canvas.Canvas, bodyBottom float64, pc pageCtx) {
	y := bodyBottom + e.cfg.FooterSpacing
	limit := e.dims.H - e.margins.Bottom - e.pageFooterH - e.docFooterH
	if y > limit {
		y = limit
		e.warn("document footer clamped over body content", "page", pc.page)
	}
	e.renderZone(cv, e.tpl.DocFooter, y, pc)
	e.docFooterDrawn = true
}

// workComplete reports whether every field, table, and the document footer
// have fully rendered.
func (e *engine) workComplete(fieldDone []bool) bool {
	if !e.allTablesComplete() {
		return false
	}
	for i := range e.elements {
		if !e.elements[i].isTable() && !fieldDone[i] {
			return false
		}
	}
	if e.docFooterH > 0 && !e.docFooterDrawn {
		return false
	}
	return true
}
