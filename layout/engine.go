package layout

import (
	"fmt"
	"log/slog"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/expr"
	"github.com/lvillar/reportflow/logging"
	"github.com/lvillar/reportflow/schema"
)

// engine carries everything derived from a template once, so the page loop
// and the per-section renderers work off shared dimensions and cursors.
type engine struct {
	tpl  *schema.Template
	data binding.Data
	dev  canvas.Device
	cfg  Config

	dims    canvas.PageSize
	margins schema.Margin
	font    schema.Font
	scale   float64 // font points to template units
	mm      float64 // millimeters to template units

	pageHeaderH float64
	pageFooterH float64
	docHeaderH  float64
	docFooterH  float64

	elements []bodyElement
	cursors  cursorMap
	formulas map[string]*expr.Expr

	aliasToken     string
	planned        int
	docFooterDrawn bool
	warnings       []string
}

func newEngine(tpl *schema.Template, data binding.Data, dev canvas.Device, cfg Config) (*engine, error) {
	e := &engine{
		tpl:      tpl,
		data:     data,
		dev:      dev,
		cfg:      cfg.withDefaults(),
		margins:  tpl.Margins(),
		font:     tpl.DefaultFont(),
		scale:    tpl.UnitScale(),
		cursors:  cursorMap{},
		formulas: map[string]*expr.Expr{},
	}
	e.dims = tpl.PageDims()
	e.mm = e.scale * 72.0 / 25.4

	if a, ok := dev.(canvas.PageCountAliaser); ok {
		e.aliasToken = a.PageCountAlias()
	}
	if err := e.compileFormulas(); err != nil {
		return nil, err
	}

	e.pageHeaderH = e.zoneHeight(tpl.PageHeader)
	e.pageFooterH = e.zoneHeight(tpl.PageFooter)
	e.docHeaderH = e.zoneHeight(tpl.DocHeader)
	e.docFooterH = e.zoneHeight(tpl.DocFooter)

	e.elements = extractElements(tpl.Body)
	return e, nil
}

// compileFormulas parses every formula cell up front so malformed expressions
// surface before any page is produced.
func (e *engine) compileFormulas() error {
	for _, tbl := range e.tpl.Body.Tables {
		for _, row := range tbl.FinalRows {
			for _, cell := range row {
				if cell.Kind != schema.CellFormula || cell.Expr == "" {
					continue
				}
				if _, ok := e.formulas[cell.Expr]; ok {
					continue
				}
				parsed, err := expr.Parse(cell.Expr)
				if err != nil {
					return fmt.Errorf("layout: table %q: %w", tbl.ID, err)
				}
				e.formulas[cell.Expr] = parsed
			}
		}
	}
	return nil
}

// warn records a warning on the outcome and mirrors it to the logger.
func (e *engine) warn(msg string, kv ...any) {
	logging.Logger().Warn(msg, kv...)
	e.warnings = append(e.warnings, msg)
}

func (e *engine) debug(msg string, kv ...any) {
	l := logging.Logger()
	if l.Enabled(nil, slog.LevelDebug) {
		l.Debug(msg, kv...)
	}
}

// contentWidth is the horizontal span between the side margins.
func (e *engine) contentWidth() float64 {
	return e.dims.W - e.margins.Left - e.margins.Right
}

// mergeFont fills unset template font fields from the document default.
func (e *engine) mergeFont(f *schema.Font) schema.Font {
	m := e.font
	if f == nil {
		return m
	}
	if f.Family != "" {
		m.Family = f.Family
	}
	if f.Style != "" {
		m.Style = f.Style
	}
	if f.Size > 0 {
		m.Size = f.Size
	}
	return m
}

// textStyle builds a canvas style from a merged font plus optional color and
// alignment overrides.
func (e *engine) textStyle(f schema.Font, color *schema.Color, align string) canvas.TextStyle {
	st := canvas.TextStyle{
		Family: f.Family,
		Size:   f.Size,
		Align:  canvas.Align(align),
	}
	for _, r := range f.Style {
		switch r {
		case 'B', 'b':
			st.Bold = true
		case 'I', 'i':
			st.Italic = true
		}
	}
	if color != nil {
		st.Color = canvas.RGB{R: color.R, G: color.G, B: color.B}
	}
	if st.Align == "" {
		st.Align = canvas.AlignLeft
	}
	return st
}

func (e *engine) fieldStyle(f *schema.Field) canvas.TextStyle {
	return e.textStyle(e.mergeFont(f.Font), f.Color, f.Align)
}

// lineHeight derives a line height from the style's font size. Rich text
// flow uses it directly; elsewhere it backs up failed measurements.
func (e *engine) lineHeight(st canvas.TextStyle) float64 {
	return st.Size * e.scale * 1.5
}

// measure wraps text for a box width. Measurement failures are recovered:
// the text is kept as a single unwrapped line at the fallback height.
func (e *engine) measure(text string, width float64, st canvas.TextStyle) canvas.TextLayout {
	lay, err := e.dev.MeasureText(text, width, st)
	if err != nil {
		e.warn("text measurement failed, using fallback height", "error", err.Error())
		return canvas.TextLayout{Lines: []string{text}, LineHeight: e.lineHeight(st)}
	}
	if len(lay.Lines) == 0 {
		lay.Lines = []string{""}
	}
	if lay.LineHeight <= 0 {
		lay.LineHeight = e.lineHeight(st)
	}
	return lay
}

// rowSet resolves a table's backing rows. A missing auxiliary set is treated
// as empty so one bad source does not abort the document.
func (e *engine) rowSet(tbl *schema.Table) []binding.Record {
	rows, ok := e.data.RowSet(tbl.Source)
	if !ok {
		e.warn("row-set not found, treating as empty", "table", string(tbl.ID), "source", tbl.Source)
		return nil
	}
	return rows
}
