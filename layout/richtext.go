package layout

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// richSpan is one styled run of inline text. Break spans carry no text.
type richSpan struct {
	text      string
	bold      bool
	italic    bool
	lineBreak bool
}

// richSource resolves the markup for a rich text field: the html literal
// with interpolation, or the bound value.
func (e *engine) richSource(f *schema.Field) string {
	if f.HTML != "" {
		return binding.Interpolate(f.HTML, e.data)
	}
	if f.Binding != "" {
		if v, ok := e.data.Lookup(f.Binding); ok {
			return binding.Format(v)
		}
	}
	return ""
}

// parseRich tokenizes inline markup into styled runs. Supported tags are
// b/strong, i/em, and br; anything else contributes its text content only.
func parseRich(src string) ([]richSpan, error) {
	tz := html.NewTokenizer(strings.NewReader(src))
	var spans []richSpan
	bold, italic := 0, 0
	for {
		switch tt := tz.Next(); tt {
		case html.ErrorToken:
			if err := tz.Err(); err != io.EOF {
				return spans, fmt.Errorf("layout: parsing rich text: %w", err)
			}
			return spans, nil
		case html.TextToken:
			spans = append(spans, richSpan{
				text:   string(tz.Text()),
				bold:   bold > 0,
				italic: italic > 0,
			})
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "b", "strong":
				if tt == html.StartTagToken {
					bold++
				}
			case "i", "em":
				if tt == html.StartTagToken {
					italic++
				}
			case "br":
				spans = append(spans, richSpan{lineBreak: true})
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "b", "strong":
				if bold > 0 {
					bold--
				}
			case "i", "em":
				if italic > 0 {
					italic--
				}
			}
		}
	}
}

// richPlainText strips the markup down to its text, with br as a space.
// Used for measurement fallbacks and devices without width measurement.
func richPlainText(src string) string {
	spans, err := parseRich(src)
	if err != nil {
		return src
	}
	var b strings.Builder
	for _, sp := range spans {
		if sp.lineBreak {
			b.WriteString(" ")
			continue
		}
		b.WriteString(sp.text)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// placedWord is one styled word positioned relative to the field origin.
type placedWord struct {
	x    float64
	y    float64
	w    float64
	text string
	st   canvas.TextStyle
}

// layoutRichSpans flows styled words left to right, wrapping at the box
// width, and returns their positions plus the consumed height.
func (e *engine) layoutRichSpans(spans []richSpan, w float64, base canvas.TextStyle, wm canvas.WidthMeasurer) ([]placedWord, float64) {
	lineH := e.lineHeight(base)
	var words []placedWord
	curX := 0.0
	lineY := 0.0
	lines := 1
	for _, sp := range spans {
		if sp.lineBreak {
			curX = 0
			lineY += lineH
			lines++
			continue
		}
		st := base
		st.Bold = st.Bold || sp.bold
		st.Italic = st.Italic || sp.italic
		st.Align = canvas.AlignLeft
		for _, word := range strings.Fields(sp.text) {
			ww := wm.TextWidth(word, st)
			spaceW := 0.0
			if curX > 0 {
				spaceW = wm.TextWidth(" ", st)
			}
			if curX > 0 && curX+spaceW+ww > w {
				curX = 0
				spaceW = 0
				lineY += lineH
				lines++
			}
			words = append(words, placedWord{x: curX + spaceW, y: lineY, w: ww, text: word, st: st})
			curX += spaceW + ww
		}
	}
	return words, float64(lines) * lineH
}

// richSpansFor assembles a field's parsed spans with its label prefixed.
func (e *engine) richSpansFor(f *schema.Field) []richSpan {
	src := e.richSource(f)
	spans, err := parseRich(src)
	if err != nil {
		e.warn("rich text parse failed, rendering raw", "error", err.Error())
		spans = []richSpan{{text: src}}
	}
	if f.Label != "" {
		spans = append([]richSpan{{text: f.Label}}, spans...)
	}
	return spans
}

// richTextHeight sizes a rich text field without drawing it.
func (e *engine) richTextHeight(f *schema.Field, x float64) float64 {
	st := e.fieldStyle(f)
	w := e.fieldWidth(f, x)
	wm, ok := e.dev.(canvas.WidthMeasurer)
	if !ok {
		lay := e.measure(f.Label+richPlainText(e.richSource(f)), w, st)
		return lay.Height()
	}
	_, h := e.layoutRichSpans(e.richSpansFor(f), w, st, wm)
	return h
}

// drawRichText lays out a rich text field word by word, carrying bold and
// italic runs across line wraps. Devices that cannot measure single-line
// widths get the plain-text rendition instead.
func (e *engine) drawRichText(cv canvas.Canvas, f *schema.Field, x, y float64) float64 {
	st := e.fieldStyle(f)
	w := e.fieldWidth(f, x)

	wm, ok := e.dev.(canvas.WidthMeasurer)
	if !ok {
		lay := e.measure(f.Label+richPlainText(e.richSource(f)), w, st)
		for i, line := range lay.Lines {
			cv.DrawText(x, y+float64(i)*lay.LineHeight, w, lay.LineHeight, line, st)
		}
		return lay.Height()
	}

	words, h := e.layoutRichSpans(e.richSpansFor(f), w, st, wm)
	lineH := e.lineHeight(st)
	for _, pw := range words {
		cv.DrawText(x+pw.x, y+pw.y, pw.w, lineH, pw.text, pw.st)
	}
	return h
}
