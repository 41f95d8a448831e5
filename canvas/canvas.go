// Package canvas defines the drawing and text-measurement capabilities the
// layout engine consumes. The engine emits primitive draw calls against a
// Canvas and never touches the final byte encoding; backends plug in via
// the Device interface (pdfcanvas for PDF output, Recorder for tests).
package canvas

import "image"

// Align positions text horizontally within its box.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// RGB is an RGB color with 0-255 components.
type RGB struct {
	R int
	G int
	B int
}

// TextStyle describes how a run of text is drawn.
type TextStyle struct {
	Family string // Helvetica, Courier, Times
	Size   float64
	Bold   bool
	Italic bool
	Color  RGB
	Align  Align
}

// LineStyle describes how a line is stroked.
type LineStyle struct {
	Width float64
	Color RGB
}

// RectStyle describes how a rectangle is painted. Nil Fill or Stroke means
// that aspect is skipped.
type RectStyle struct {
	Fill      *RGB
	Stroke    *RGB
	LineWidth float64
}

// PageSize is a page's dimensions in document units.
type PageSize struct {
	W float64
	H float64
}

// TextLayout is the result of wrapping a string at a width: the broken
// lines and the height of each.
type TextLayout struct {
	Lines      []string
	LineHeight float64
}

// Height returns the total height of the laid-out text.
func (tl TextLayout) Height() float64 {
	return tl.LineHeight * float64(len(tl.Lines))
}

// Canvas draws primitives onto one page. Instances are append-only and are
// never revisited once the next page begins.
type Canvas interface {
	// DrawText draws a single pre-wrapped line of text aligned within the
	// box at (x, y) with the given width and height.
	DrawText(x, y, w, h float64, text string, style TextStyle)
	// DrawRect paints a rectangle.
	DrawRect(x, y, w, h float64, style RectStyle)
	// DrawLine strokes a line from (x1, y1) to (x2, y2).
	DrawLine(x1, y1, x2, y2 float64, style LineStyle)
}

// Measurer wraps text at a width and reports the resulting lines and
// heights. The engine relies on measured heights, never estimates, when
// deciding whether a table row fits on a page.
type Measurer interface {
	MeasureText(text string, width float64, style TextStyle) (TextLayout, error)
}

// Device supplies one Canvas per page plus text measurement. StartPage
// closes the previous page; the engine never draws on a closed page.
type Device interface {
	Measurer
	StartPage(size PageSize) Canvas
}

// ImageDrawer is an optional Canvas capability for raster images. Canvases
// that do not implement it cause image fields to be skipped with a log.
type ImageDrawer interface {
	DrawImage(x, y, w, h float64, img image.Image)
}

// WidthMeasurer is an optional Device capability: the rendered width of one
// unwrapped string. Inline-styled text runs need it to flow words; devices
// without it fall back to plain-text rendering.
type WidthMeasurer interface {
	TextWidth(text string, style TextStyle) float64
}

// PageCountAliaser is an optional Device capability: backends that can
// substitute the final page count at encode time (fpdf's alias mechanism)
// return the placeholder token to draw for total-pages fields.
type PageCountAliaser interface {
	PageCountAlias() string
}

// DocInfoSetter is an optional Device capability: document metadata on
// backends whose output format carries it.
type DocInfoSetter interface {
	SetDocInfo(title, author, subject string)
}

// Underlayer is an optional Device capability: backends that can stamp an
// imported stationery page under every generated page accept it here before
// the first StartPage call.
type Underlayer interface {
	SetUnderlay(path string, page int) error
}
