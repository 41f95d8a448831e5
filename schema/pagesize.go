package schema

import "github.com/lvillar/reportflow/canvas"

// Page size names.
const (
	PageSizeA3     = "A3"
	PageSizeA4     = "A4"
	PageSizeA5     = "A5"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"
)

// Orientations.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Units.
const (
	UnitMillimeter = "mm"
	UnitCentimeter = "cm"
	UnitInch       = "in"
	UnitPoint      = "pt"
)

// Standard page dimensions in millimeters, portrait.
var pageSizesMM = map[string]canvas.PageSize{
	PageSizeA3:     {W: 297, H: 420},
	PageSizeA4:     {W: 210, H: 297},
	PageSizeA5:     {W: 148, H: 210},
	PageSizeLetter: {W: 215.9, H: 279.4},
	PageSizeLegal:  {W: 215.9, H: 355.6},
}

// unitPerMM converts millimeters to the template's unit.
func unitPerMM(unit string) float64 {
	switch unit {
	case UnitCentimeter:
		return 0.1
	case UnitInch, "inch":
		return 1.0 / 25.4
	case UnitPoint:
		return 72.0 / 25.4
	default:
		return 1
	}
}

// UnitScale returns the factor converting font point sizes to the
// template's unit, used wherever a line height derives from a font size.
func (t *Template) UnitScale() float64 {
	switch t.Unit {
	case UnitCentimeter:
		return 2.54 / 72.0
	case UnitInch, "inch":
		return 1.0 / 72.0
	case UnitPoint:
		return 1
	default:
		return 25.4 / 72.0
	}
}

// PageDims resolves the template's page size and orientation into concrete
// dimensions in the template's unit. Unknown size names resolve to A4.
func (t *Template) PageDims() canvas.PageSize {
	name := t.PageSize
	if name == "" {
		name = PageSizeA4
	}
	dims, ok := pageSizesMM[name]
	if !ok {
		dims = pageSizesMM[PageSizeA4]
	}
	f := unitPerMM(t.Unit)
	dims.W *= f
	dims.H *= f
	if t.Orientation == OrientationLandscape {
		dims.W, dims.H = dims.H, dims.W
	}
	return dims
}

// Margins returns the template margins, defaulting to 10 units on every
// side when unset.
func (t *Template) Margins() Margin {
	if t.Margin != nil {
		return *t.Margin
	}
	d := 10 * unitPerMM(t.Unit)
	return Margin{Top: d, Right: d, Bottom: d, Left: d}
}

// DefaultFont returns the document default font, Helvetica 11 when unset.
func (t *Template) DefaultFont() Font {
	f := Font{Family: "Helvetica", Style: "", Size: 11}
	if t.Font != nil {
		if t.Font.Family != "" {
			f.Family = t.Font.Family
		}
		if t.Font.Size > 0 {
			f.Size = t.Font.Size
		}
		f.Style = t.Font.Style
	}
	return f
}
