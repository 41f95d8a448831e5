package layout

import "github.com/lvillar/reportflow/schema"

// zoneHeight computes the vertical extent of a fixed band: the explicit
// height or the lowest visible field bottom, whichever is larger, plus the
// zone padding. Nil zones occupy no space.
func (e *engine) zoneHeight(z *schema.Zone) float64 {
	if z == nil {
		return 0
	}
	h := z.Height
	for i := range z.Fields {
		f := &z.Fields[i]
		if !f.IsVisible() {
			continue
		}
		if b := f.OffsetY + e.fieldHeight(f); b > h {
			h = b
		}
	}
	if h > 0 {
		h += z.Padding
	}
	return h
}

// fieldHeight is the vertical space one field occupies. Text with an
// explicit width is measured so wrapped lines count toward the band; image
// and barcode boxes fall back to a square on their width.
func (e *engine) fieldHeight(f *schema.Field) float64 {
	if f.Height > 0 {
		return f.Height
	}
	switch f.Kind {
	case schema.FieldImage, schema.FieldBarcode:
		if f.Width > 0 {
			return f.Width
		}
		return 10 * e.mm
	}
	st := e.fieldStyle(f)
	if f.Width > 0 {
		lay := e.measure(e.fieldText(f, pageCtx{page: 1, total: 1}), f.Width, st)
		return lay.Height()
	}
	return e.lineHeight(st)
}
