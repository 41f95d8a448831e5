// Package schema defines the declarative report template: page geometry,
// fixed zones (page header/footer, document header/footer), and the dynamic
// body of data-bound fields and streaming tables. Templates are plain JSON
// and are immutable input for one generation run.
//
// Example JSON:
//
//	{
//	  "title": "Invoice",
//	  "pageSize": "A4",
//	  "pageHeader": {"height": 18, "fields": [
//	    {"kind": "text", "text": "ACME Ltd", "offsetX": 0, "offsetY": 4}
//	  ]},
//	  "body": {
//	    "fields": [{"binding": "header.customer", "label": "Customer", "offset": 0}],
//	    "tables": [{
//	      "id": "items", "offset": 10,
//	      "columns": [
//	        {"binding": "name", "label": "Item"},
//	        {"binding": "amount", "label": "Amount", "width": 30, "align": "R"}
//	      ],
//	      "finalRows": [[
//	        {"kind": "static", "value": "Total", "colspan": 1},
//	        {"kind": "aggregate", "func": "sum", "field": "amount", "align": "R"}
//	      ]]
//	    }]
//	  }
//	}
package schema

// TableID identifies one table configuration within a template. Cursor
// state is keyed by it for the whole generation run.
type TableID string

// Field kinds. The zero value renders as text.
const (
	FieldText       = "text"
	FieldPageNumber = "pageNumber"
	FieldTotalPages = "totalPages"
	FieldDate       = "date"
	FieldTime       = "time"
	FieldImage      = "image"
	FieldBarcode    = "barcode"
	FieldRichText   = "richtext"
)

// Final-row cell kinds.
const (
	CellStatic    = "static"
	CellAggregate = "aggregate"
	CellFormula   = "formula"
)

// Aggregate functions usable in final-row cells and formulas.
const (
	AggSum   = "sum"
	AggAvg   = "avg"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// Barcode types for barcode fields.
const (
	BarcodeQR      = "qr"
	BarcodeCode128 = "code128"
	BarcodeEAN     = "ean"
	BarcodePDF417  = "pdf417"
)

// Template is the top-level report definition.
type Template struct {
	Title       string    `json:"title,omitempty"`
	Author      string    `json:"author,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	PageSize    string    `json:"pageSize,omitempty"`    // A3, A4, A5, Letter, Legal (default: A4)
	Orientation string    `json:"orientation,omitempty"` // portrait, landscape
	Unit        string    `json:"unit,omitempty"`        // mm, cm, in, pt (default: mm)
	Margin      *Margin   `json:"margin,omitempty"`
	Font        *Font     `json:"font,omitempty"` // default font for the document
	Underlay    *Underlay `json:"underlay,omitempty"`
	PageHeader  *Zone     `json:"pageHeader,omitempty"` // repeated on every page
	PageFooter  *Zone     `json:"pageFooter,omitempty"` // repeated on every page
	DocHeader   *Zone     `json:"docHeader,omitempty"`  // first page only
	DocFooter   *Zone     `json:"docFooter,omitempty"`  // exactly once, on the completion page
	Body        *Body     `json:"body"`
}

// Margin defines page margins.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Font specifies a font face.
type Font struct {
	Family string  `json:"family"` // Helvetica, Courier, Times
	Style  string  `json:"style"`  // "" (regular), "B" (bold), "I" (italic), "BI"
	Size   float64 `json:"size"`
}

// Color is an RGB color.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Underlay names a stationery PDF whose page is stamped under every
// generated page, when the output backend supports it.
type Underlay struct {
	Src  string `json:"src"`
	Page int    `json:"page,omitempty"` // 1-based; default 1
}

// Zone is a fixed region of the page with its own fields. Height 0 derives
// the height from field geometry.
type Zone struct {
	Height  float64 `json:"height,omitempty"`
	Padding float64 `json:"padding,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
}

// Field is one bound or special value drawn at an offset within its zone,
// or within the body flow when it carries a body offset.
type Field struct {
	Kind    string  `json:"kind,omitempty"` // text, pageNumber, totalPages, date, time, image, barcode, richtext
	Label   string  `json:"label,omitempty"`
	Binding string  `json:"binding,omitempty"`
	Text    string  `json:"text,omitempty"` // static text; supports ${path} interpolation
	OffsetX float64 `json:"offsetX,omitempty"`
	OffsetY float64 `json:"offsetY,omitempty"`
	Offset  float64 `json:"offset,omitempty"` // body ordering key
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"` // image and barcode box height
	Font    *Font   `json:"font,omitempty"`
	Color   *Color  `json:"color,omitempty"`
	Align   string  `json:"align,omitempty"`   // L, C, R (default: L)
	Visible *bool   `json:"visible,omitempty"` // default: true

	// Image fields
	Src string `json:"src,omitempty"` // file path, data: URL, or http(s) URL

	// Barcode fields
	BarcodeType string `json:"barcodeType,omitempty"` // qr, code128, ean, pdf417

	// Rich text fields
	HTML string `json:"html,omitempty"` // inline markup: b, i, br
}

// IsVisible reports the field's visibility, defaulting to true.
func (f *Field) IsVisible() bool {
	return f.Visible == nil || *f.Visible
}

// Body holds the dynamic content: fields and tables ordered by offset.
type Body struct {
	Padding float64 `json:"padding,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
	Tables  []Table `json:"tables,omitempty"`
}

// Table binds an ordered column list to one row-set and streams its rows
// across as many pages as they need.
type Table struct {
	ID        string           `json:"id"`
	Source    string           `json:"source,omitempty"` // "" = body row-set; else auxiliary set name
	Offset    float64          `json:"offset"`
	Columns   []Column         `json:"columns"`
	Style     *TableStyle      `json:"style,omitempty"`
	FinalRows [][]FinalRowCell `json:"finalRows,omitempty"`
}

// TID returns the table's strongly typed identifier.
func (t *Table) TID() TableID {
	return TableID(t.ID)
}

// Column defines one table column.
type Column struct {
	Binding string  `json:"binding"`
	Label   string  `json:"label,omitempty"`
	Width   float64 `json:"width,omitempty"` // 0 = equal share of remaining width
	Align   string  `json:"align,omitempty"` // L, C, R
	Visible *bool   `json:"visible,omitempty"`
}

// IsVisible reports the column's visibility, defaulting to true.
func (c *Column) IsVisible() bool {
	return c.Visible == nil || *c.Visible
}

// TableStyle styles a whole table.
type TableStyle struct {
	Font        *Font   `json:"font,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	CellPadding float64 `json:"cellPadding,omitempty"`
	BorderWidth float64 `json:"borderWidth,omitempty"`
	BorderColor *Color  `json:"borderColor,omitempty"`
	HeaderFill  *Color  `json:"headerFill,omitempty"`
	HeaderText  *Color  `json:"headerText,omitempty"`
	AltRowFill  *Color  `json:"altRowFill,omitempty"` // alternating fill by absolute row parity
}

// FinalRowCell is one computed cell of a summary row drawn after the
// table's data is exhausted.
type FinalRowCell struct {
	Kind    string `json:"kind"`              // static, aggregate, formula
	Value   string `json:"value,omitempty"`   // static literal
	Func    string `json:"func,omitempty"`    // sum, avg, count, min, max
	Source  string `json:"source,omitempty"`  // row-set for the aggregate; "" = the table's own
	Field   string `json:"field,omitempty"`   // aggregated record field
	Expr    string `json:"expr,omitempty"`    // formula text, e.g. "sum(items.qty * items.price)"
	Label   string `json:"label,omitempty"`   // text prefix for the computed value
	Colspan int    `json:"colspan,omitempty"` // default: 1
	Align   string `json:"align,omitempty"`
}
