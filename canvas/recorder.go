package canvas

import (
	"image"
	"strings"
)

// OpKind discriminates recorded draw operations.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
	OpImage
)

// Op is one recorded draw call.
type Op struct {
	Kind  OpKind
	X     float64
	Y     float64
	W     float64
	H     float64
	X2    float64
	Y2    float64
	Text  string
	Style TextStyle
	Rect  RectStyle
	Line  LineStyle
}

// RecordedPage is the ordered op list drawn onto one page.
type RecordedPage struct {
	Size PageSize
	Ops  []Op
}

// Texts returns the text content of every text op on the page, in draw order.
func (p *RecordedPage) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Recorder is a Device that records draw calls instead of encoding them.
// Measurement uses fixed per-character metrics so tests can predict wrapped
// heights exactly: a line holds floor(width/CharWidth) characters and each
// line is LineHeight tall, regardless of style.
type Recorder struct {
	CharWidth  float64
	LineHeight float64
	MeasureErr error // when set, MeasureText returns it

	pages []*RecordedPage
}

// NewRecorder returns a Recorder with 2-unit characters and 5-unit lines.
func NewRecorder() *Recorder {
	return &Recorder{CharWidth: 2, LineHeight: 5}
}

// StartPage implements Device.
func (r *Recorder) StartPage(size PageSize) Canvas {
	p := &RecordedPage{Size: size}
	r.pages = append(r.pages, p)
	return &recordingCanvas{page: p}
}

// MeasureText implements Measurer with greedy word wrapping at fixed
// metrics. Empty text still measures as a single empty line.
func (r *Recorder) MeasureText(text string, width float64, style TextStyle) (TextLayout, error) {
	if r.MeasureErr != nil {
		return TextLayout{}, r.MeasureErr
	}
	maxChars := int(width / r.CharWidth)
	if maxChars < 1 {
		maxChars = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapWords(para, maxChars)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return TextLayout{Lines: lines, LineHeight: r.LineHeight}, nil
}

func wrapWords(s string, maxChars int) []string {
	if len([]rune(s)) <= maxChars {
		return []string{s}
	}
	var lines []string
	var line []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > maxChars {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:maxChars]))
			w = w[maxChars:]
		}
		switch {
		case len(line) == 0:
			line = w
		case len(line)+1+len(w) <= maxChars:
			line = append(line, ' ')
			line = append(line, w...)
		default:
			lines = append(lines, string(line))
			line = w
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// TextWidth implements WidthMeasurer with the same fixed metrics as
// MeasureText.
func (r *Recorder) TextWidth(text string, style TextStyle) float64 {
	return float64(len([]rune(text))) * r.CharWidth
}

// Pages returns all recorded pages in order.
func (r *Recorder) Pages() []*RecordedPage {
	return r.pages
}

// PageCount returns the number of pages started so far.
func (r *Recorder) PageCount() int {
	return len(r.pages)
}

// Page returns the i-th page (0-based), or nil when out of range.
func (r *Recorder) Page(i int) *RecordedPage {
	if i < 0 || i >= len(r.pages) {
		return nil
	}
	return r.pages[i]
}

// FindText returns the index of the first page containing a text op whose
// content includes substr.
func (r *Recorder) FindText(substr string) (page int, ok bool) {
	for i, p := range r.pages {
		for _, op := range p.Ops {
			if op.Kind == OpText && strings.Contains(op.Text, substr) {
				return i, true
			}
		}
	}
	return 0, false
}

// CountText returns how many text ops across all pages contain substr.
func (r *Recorder) CountText(substr string) int {
	n := 0
	for _, p := range r.pages {
		for _, op := range p.Ops {
			if op.Kind == OpText && strings.Contains(op.Text, substr) {
				n++
			}
		}
	}
	return n
}

type recordingCanvas struct {
	page *RecordedPage
}

func (c *recordingCanvas) DrawText(x, y, w, h float64, text string, style TextStyle) {
	c.page.Ops = append(c.page.Ops, Op{Kind: OpText, X: x, Y: y, W: w, H: h, Text: text, Style: style})
}

func (c *recordingCanvas) DrawRect(x, y, w, h float64, style RectStyle) {
	c.page.Ops = append(c.page.Ops, Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Rect: style})
}

func (c *recordingCanvas) DrawLine(x1, y1, x2, y2 float64, style LineStyle) {
	c.page.Ops = append(c.page.Ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Line: style})
}

func (c *recordingCanvas) DrawImage(x, y, w, h float64, img image.Image) {
	c.page.Ops = append(c.page.Ops, Op{Kind: OpImage, X: x, Y: y, W: w, H: h})
}
