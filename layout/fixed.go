package layout

import (
	"image"
	"strconv"

	"github.com/lvillar/reportflow/barcodes"
	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// pageCtx carries the page numbering visible to fields while a page
// renders. total tracks the pages planned so far; on devices that offer a
// page-count alias the alias token substitutes for it, making the printed
// total exact even for pages rendered before the count is known.
type pageCtx struct {
	page  int // 1-based
	total int
	alias string
}

func (p pageCtx) totalText() string {
	if p.alias != "" {
		return p.alias
	}
	return strconv.Itoa(p.total)
}

// renderZone draws a fixed band's visible fields relative to the zone top.
func (e *engine) renderZone(cv canvas.Canvas, z *schema.Zone, top float64, pc pageCtx) {
	if z == nil {
		return
	}
	for i := range z.Fields {
		f := &z.Fields[i]
		if !f.IsVisible() {
			continue
		}
		x := e.margins.Left + f.OffsetX
		y := top + z.Padding + f.OffsetY
		e.drawField(cv, f, x, y, pc)
	}
}

// drawField renders one field with its top-left at (x, y) and returns the
// height consumed.
func (e *engine) drawField(cv canvas.Canvas, f *schema.Field, x, y float64, pc pageCtx) float64 {
	switch f.Kind {
	case schema.FieldImage:
		return e.drawImageField(cv, f, x, y)
	case schema.FieldBarcode:
		return e.drawBarcodeField(cv, f, x, y)
	case schema.FieldRichText:
		return e.drawRichText(cv, f, x, y)
	}
	st := e.fieldStyle(f)
	w := e.fieldWidth(f, x)
	lay := e.measure(e.fieldText(f, pc), w, st)
	for i, line := range lay.Lines {
		cv.DrawText(x, y+float64(i)*lay.LineHeight, w, lay.LineHeight, line, st)
	}
	h := lay.Height()
	if f.Height > h {
		h = f.Height
	}
	return h
}

// fieldWidth is the field's box width: explicit, or the span from x to the
// right margin.
func (e *engine) fieldWidth(f *schema.Field, x float64) float64 {
	if f.Width > 0 {
		return f.Width
	}
	w := e.dims.W - e.margins.Right - x
	if w < 1 {
		w = 1
	}
	return w
}

// flowFieldHeight sizes a field before it is placed in the body flow,
// mirroring drawField's layout so the fit check and the draw agree.
func (e *engine) flowFieldHeight(f *schema.Field, x float64, pc pageCtx) float64 {
	switch f.Kind {
	case schema.FieldImage, schema.FieldBarcode:
		return e.fieldHeight(f)
	case schema.FieldRichText:
		return e.richTextHeight(f, x)
	}
	st := e.fieldStyle(f)
	lay := e.measure(e.fieldText(f, pc), e.fieldWidth(f, x), st)
	h := lay.Height()
	if f.Height > h {
		h = f.Height
	}
	return h
}

// fieldText resolves a field's display text: special kinds come from the
// page context or the run clock, plain fields from their binding or
// interpolated literal, all behind the optional label prefix.
func (e *engine) fieldText(f *schema.Field, pc pageCtx) string {
	var s string
	switch f.Kind {
	case schema.FieldPageNumber:
		s = strconv.Itoa(pc.page)
	case schema.FieldTotalPages:
		s = pc.totalText()
	case schema.FieldDate:
		s = e.cfg.Clock().Format("2006-01-02")
	case schema.FieldTime:
		s = e.cfg.Clock().Format("15:04:05")
	case schema.FieldRichText:
		s = richPlainText(e.richSource(f))
	default:
		s = e.boundText(f)
	}
	return f.Label + s
}

// boundText resolves the data-bound part of a plain field. Unresolvable
// bindings render empty rather than erroring.
func (e *engine) boundText(f *schema.Field) string {
	if f.Binding != "" {
		if v, ok := e.data.Lookup(f.Binding); ok {
			return binding.Format(v)
		}
		return ""
	}
	if f.Text != "" {
		return binding.Interpolate(f.Text, e.data)
	}
	return ""
}

// drawImageField paints the field's image source into its box. Load
// failures and image-less canvases degrade to a warning and empty space.
func (e *engine) drawImageField(cv canvas.Canvas, f *schema.Field, x, y float64) float64 {
	img, err := e.cfg.Assets.Image(f.Src)
	if err != nil {
		e.warn("image load failed, field skipped", "src", f.Src, "error", err.Error())
		return e.fieldHeight(f)
	}
	id, ok := cv.(canvas.ImageDrawer)
	if !ok {
		e.warn("canvas cannot draw images, field skipped", "src", f.Src)
		return e.fieldHeight(f)
	}
	w, h := e.imageBox(f, img)
	id.DrawImage(x, y, w, h, img)
	return h
}

// imageBox resolves the draw box from the field dimensions and the image's
// intrinsic size, preserving aspect ratio when only one side is set and
// falling back to the natural size at 96 dpi when neither is.
func (e *engine) imageBox(f *schema.Field, img image.Image) (float64, float64) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	w, h := f.Width, f.Height
	if iw <= 0 || ih <= 0 {
		return w, h
	}
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = w * ih / iw
	case h > 0:
		w = h * iw / ih
	default:
		px := e.mm * 25.4 / 96.0
		w, h = iw*px, ih*px
	}
	return w, h
}

// drawBarcodeField encodes the field's bound content and paints the module
// image at 4 pixels per millimeter of box.
func (e *engine) drawBarcodeField(cv canvas.Canvas, f *schema.Field, x, y float64) float64 {
	content := e.boundText(f)
	if content == "" {
		e.warn("barcode has no content, field skipped", "type", f.BarcodeType)
		return e.fieldHeight(f)
	}
	w := f.Width
	if w <= 0 {
		w = 10 * e.mm
	}
	h := f.Height
	if h <= 0 {
		h = w
	}
	pxW := int(w / e.mm * 4)
	pxH := int(h / e.mm * 4)
	img, err := barcodes.Encode(f.BarcodeType, content, pxW, pxH)
	if err != nil {
		e.warn("barcode encoding failed, field skipped",
			"type", f.BarcodeType, "error", err.Error())
		return h
	}
	id, ok := cv.(canvas.ImageDrawer)
	if !ok {
		e.warn("canvas cannot draw images, barcode skipped", "type", f.BarcodeType)
		return h
	}
	id.DrawImage(x, y, w, h, img)
	return h
}
