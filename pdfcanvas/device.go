// Package pdfcanvas implements the canvas.Device contract on top of fpdf,
// producing real PDF bytes. One Device produces one document: start pages
// through the layout engine, then call Output.
package pdfcanvas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// Option is a functional option for configuring a new Device.
type Option func(*deviceConfig)

type deviceConfig struct {
	unit    string
	fontDir string
}

// WithUnit sets the measurement unit for page dimensions and drawing.
// Use "pt", "mm", "cm", or "in". The default is millimeters.
func WithUnit(unit string) Option {
	return func(c *deviceConfig) {
		c.unit = unit
	}
}

// WithFontDir sets the directory where font files are located.
func WithFontDir(dir string) Option {
	return func(c *deviceConfig) {
		c.fontDir = dir
	}
}

// Device renders layout draw calls into a PDF document. It implements
// canvas.Device plus the optional ImageDrawer, WidthMeasurer,
// PageCountAliaser, DocInfoSetter, and Underlayer capabilities.
type Device struct {
	pdf    *fpdf.Fpdf
	images int

	underlay underlay
}

// New returns a Device with millimeter units unless overridden. Automatic
// page breaking is disabled: the layout engine owns pagination.
func New(opts ...Option) *Device {
	cfg := &deviceConfig{unit: "mm"}
	for _, opt := range opts {
		opt(cfg)
	}

	pdf := fpdf.New("P", cfg.unit, "A4", cfg.fontDir)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.AliasNbPages("")
	pdf.SetFont("Helvetica", "", 11)
	return &Device{pdf: pdf}
}

// ForTemplate returns a Device whose unit matches the template's.
func ForTemplate(tpl *schema.Template) *Device {
	unit := tpl.Unit
	switch unit {
	case "":
		unit = "mm"
	case "inch":
		unit = "in"
	}
	return New(WithUnit(unit))
}

// StartPage implements canvas.Device. Each call closes the previous page;
// the stationery underlay, when configured, is stamped before any content.
func (d *Device) StartPage(size canvas.PageSize) canvas.Canvas {
	d.pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.W, Ht: size.H})
	d.stampUnderlay(size)
	return &pageCanvas{d: d}
}

// MeasureText implements canvas.Measurer by splitting the text at the
// current font metrics. Explicit newlines start new lines; everything else
// wraps greedily at the box width.
func (d *Device) MeasureText(text string, width float64, style canvas.TextStyle) (canvas.TextLayout, error) {
	d.setFont(style)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		got := d.pdf.SplitText(para, width)
		if len(got) == 0 {
			got = []string{""}
		}
		lines = append(lines, got...)
	}
	if d.pdf.Err() {
		return canvas.TextLayout{}, fmt.Errorf("pdfcanvas: measuring text: %w", d.pdf.Error())
	}
	return canvas.TextLayout{Lines: lines, LineHeight: d.lineHeight(style)}, nil
}

// TextWidth implements canvas.WidthMeasurer.
func (d *Device) TextWidth(text string, style canvas.TextStyle) float64 {
	d.setFont(style)
	return d.pdf.GetStringWidth(text)
}

// PageCountAlias implements canvas.PageCountAliaser with fpdf's alias
// mechanism: the token is replaced by the real page count at encode time.
func (d *Device) PageCountAlias() string {
	return "{nb}"
}

// SetDocInfo implements canvas.DocInfoSetter.
func (d *Device) SetDocInfo(title, author, subject string) {
	if title != "" {
		d.pdf.SetTitle(title, true)
	}
	if author != "" {
		d.pdf.SetAuthor(author, true)
	}
	if subject != "" {
		d.pdf.SetSubject(subject, true)
	}
}

// Output writes the finished document to w. Any drawing error deferred by
// fpdf surfaces here.
func (d *Device) Output(w io.Writer) error {
	if d.pdf.PageCount() == 0 {
		d.pdf.AddPage()
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("pdfcanvas: writing output: %w", err)
	}
	return nil
}

// WriteFile writes the finished document to a file.
func (d *Device) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pdfcanvas: creating %s: %w", path, err)
	}
	defer f.Close()
	return d.Output(f)
}

// Err reports whether a drawing call has failed. The underlying error also
// comes back from Output.
func (d *Device) Err() error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return nil
}

func (d *Device) setFont(st canvas.TextStyle) {
	family := st.Family
	if family == "" {
		family = "Helvetica"
	}
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	d.pdf.SetFont(family, style, st.Size)
	d.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

func (d *Device) lineHeight(st canvas.TextStyle) float64 {
	return d.pdf.PointConvert(st.Size * 1.5)
}

// pageCanvas draws onto the device's current page.
type pageCanvas struct {
	d *Device
}

func (c *pageCanvas) DrawText(x, y, w, h float64, text string, st canvas.TextStyle) {
	c.d.setFont(st)
	c.d.pdf.SetXY(x, y)
	c.d.pdf.CellFormat(w, h, text, "", 0, string(st.Align), false, 0, "")
}

func (c *pageCanvas) DrawRect(x, y, w, h float64, st canvas.RectStyle) {
	styleStr := ""
	if st.Fill != nil {
		c.d.pdf.SetFillColor(st.Fill.R, st.Fill.G, st.Fill.B)
		styleStr = "F"
	}
	if st.Stroke != nil {
		c.d.pdf.SetDrawColor(st.Stroke.R, st.Stroke.G, st.Stroke.B)
		lw := st.LineWidth
		if lw <= 0 {
			lw = 0.2
		}
		c.d.pdf.SetLineWidth(lw)
		if styleStr == "F" {
			styleStr = "FD"
		} else {
			styleStr = "D"
		}
	}
	if styleStr == "" {
		return
	}
	c.d.pdf.Rect(x, y, w, h, styleStr)
}

func (c *pageCanvas) DrawLine(x1, y1, x2, y2 float64, st canvas.LineStyle) {
	c.d.pdf.SetDrawColor(st.Color.R, st.Color.G, st.Color.B)
	lw := st.Width
	if lw <= 0 {
		lw = 0.2
	}
	c.d.pdf.SetLineWidth(lw)
	c.d.pdf.Line(x1, y1, x2, y2)
}

// DrawImage implements canvas.ImageDrawer. The image is re-encoded as PNG
// and registered under a per-document name.
func (c *pageCanvas) DrawImage(x, y, w, h float64, img image.Image) {
	d := c.d
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		d.pdf.SetErrorf("pdfcanvas: encoding image: %s", err)
		return
	}
	d.images++
	name := fmt.Sprintf("reportflow-img-%d", d.images)
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opt, &buf)
	d.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}
