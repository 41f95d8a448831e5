package layout

import (
	"testing"
	"time"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// onePxPNG is a 1x1 transparent PNG, small enough to inline as a data URL.
const onePxPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// aliasRecorder adds fpdf-style page-count aliasing to the Recorder.
type aliasRecorder struct{ *canvas.Recorder }

func (aliasRecorder) PageCountAlias() string { return "{nb}" }

func TestPageNumberFieldPerPage(t *testing.T) {
	tpl := &schema.Template{
		PageHeader: &schema.Zone{Fields: []schema.Field{{Kind: schema.FieldPageNumber, Label: "Page "}}},
		Body:       &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}},
	}
	data := binding.Data{Items: itemRows(40, "a", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	if n := rec.CountText("Page 1"); n != 1 {
		t.Errorf("\"Page 1\" drawn %d times, want 1", n)
	}
	if page, ok := rec.FindText("Page 2"); !ok || page != 1 {
		t.Errorf("\"Page 2\" on page %d (found=%v), want 1", page, ok)
	}
}

func TestTotalPagesUsesDeviceAlias(t *testing.T) {
	tpl := &schema.Template{
		PageFooter: &schema.Zone{Fields: []schema.Field{{Kind: schema.FieldTotalPages, Label: "of "}}},
		Body:       &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}},
	}
	data := binding.Data{Items: itemRows(40, "a", zeroAmount)}

	rec := aliasRecorder{canvas.NewRecorder()}
	out, err := Run(tpl, data, rec, Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := rec.CountText("of {nb}"); n != out.Pages {
		t.Errorf("alias drawn %d times, want once per page (%d)", n, out.Pages)
	}
}

func TestDateTimeFieldsUseClock(t *testing.T) {
	tpl := &schema.Template{
		PageFooter: &schema.Zone{Fields: []schema.Field{
			{Kind: schema.FieldDate, Label: "Date: "},
			{Kind: schema.FieldTime, OffsetY: 6},
		}},
		Body: &schema.Body{Fields: []schema.Field{{Text: "x"}}},
	}
	cfg := Config{Clock: func() time.Time {
		return time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)
	}}

	rec, _ := mustRun(t, tpl, binding.Data{}, cfg)

	if n := rec.CountText("Date: 2026-08-23"); n != 1 {
		t.Errorf("date drawn %d times, want 1", n)
	}
	if n := rec.CountText("14:30:05"); n != 1 {
		t.Errorf("time drawn %d times, want 1", n)
	}
}

func TestDocHeaderOnFirstPageOnly(t *testing.T) {
	tpl := &schema.Template{
		DocHeader: &schema.Zone{Fields: []schema.Field{{Text: "INTRO"}}},
		Body:      &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}},
	}
	data := binding.Data{Items: itemRows(40, "a", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	if n := rec.CountText("INTRO"); n != 1 {
		t.Errorf("document header drawn %d times, want 1", n)
	}
	if page, _ := rec.FindText("INTRO"); page != 0 {
		t.Errorf("document header on page %d, want 0", page)
	}
}

func TestFieldBindingAndInterpolation(t *testing.T) {
	tpl := &schema.Template{
		DocHeader: &schema.Zone{Fields: []schema.Field{
			{Binding: "header.customer", Label: "Customer: "},
			{Text: "Ref ${header.ref} end", OffsetY: 8},
		}},
		Body: &schema.Body{Fields: []schema.Field{{Text: "x"}}},
	}
	data := binding.Data{Header: binding.Record{"customer": "ACME", "ref": "A-77"}}

	rec, _ := mustRun(t, tpl, data, Config{})

	if n := rec.CountText("Customer: ACME"); n != 1 {
		t.Errorf("bound field drawn %d times, want 1", n)
	}
	if n := rec.CountText("Ref A-77 end"); n != 1 {
		t.Errorf("interpolated field drawn %d times, want 1", n)
	}
}

func TestRichTextRuns(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Fields: []schema.Field{
		{Kind: schema.FieldRichText, HTML: "<b>Paid</b> in full<br>see notes"},
	}}}

	rec, _ := mustRun(t, tpl, binding.Data{}, Config{})

	var paid, in, see *canvas.Op
	ops := rec.Page(0).Ops
	for i := range ops {
		switch ops[i].Text {
		case "Paid":
			paid = &ops[i]
		case "in":
			in = &ops[i]
		case "see":
			see = &ops[i]
		}
	}
	if paid == nil || in == nil || see == nil {
		t.Fatalf("words missing: paid=%v in=%v see=%v", paid != nil, in != nil, see != nil)
	}
	if !paid.Style.Bold {
		t.Error("bold run lost its weight")
	}
	if in.Style.Bold {
		t.Error("plain run drawn bold")
	}
	if see.Y <= paid.Y {
		t.Errorf("line break ignored: see.Y=%v paid.Y=%v", see.Y, paid.Y)
	}
}

func TestImageFieldKeepsAspect(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Fields: []schema.Field{
		{Kind: schema.FieldImage, Src: onePxPNG, Width: 30},
	}}}

	rec, _ := mustRun(t, tpl, binding.Data{}, Config{})

	images := 0
	for _, op := range rec.Page(0).Ops {
		if op.Kind == canvas.OpImage {
			images++
			if op.W != 30 || op.H != 30 {
				t.Errorf("image box = %vx%v, want 30x30 for a square source", op.W, op.H)
			}
		}
	}
	if images != 1 {
		t.Errorf("images drawn = %d, want 1", images)
	}
}

func TestImageLoadFailureWarnsAndContinues(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Fields: []schema.Field{
		{Kind: schema.FieldImage, Src: "missing.png", Width: 30},
		{Text: "after image", Offset: 1},
	}}}

	rec, out := mustRun(t, tpl, binding.Data{}, Config{})

	if !hasWarning(out, "image load failed") {
		t.Error("expected an image warning")
	}
	if n := rec.CountText("after image"); n != 1 {
		t.Errorf("following field drawn %d times, want 1", n)
	}
}

func TestBarcodeFieldDraws(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Fields: []schema.Field{
		{Kind: schema.FieldBarcode, BarcodeType: schema.BarcodeQR, Text: "HELLO-123", Width: 30, Height: 30},
	}}}

	rec, _ := mustRun(t, tpl, binding.Data{}, Config{})

	images := 0
	for _, op := range rec.Page(0).Ops {
		if op.Kind == canvas.OpImage {
			images++
			if op.W != 30 || op.H != 30 {
				t.Errorf("barcode box = %vx%v, want 30x30", op.W, op.H)
			}
		}
	}
	if images != 1 {
		t.Errorf("barcodes drawn = %d, want 1", images)
	}
}

func TestInvisibleFieldSkipped(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Fields: []schema.Field{
		{Text: "HIDDEN", Visible: boolPtr(false)},
		{Text: "shown", Offset: 1},
	}}}

	rec, out := mustRun(t, tpl, binding.Data{}, Config{})

	if out.Pages != 1 {
		t.Fatalf("Pages = %d, want 1", out.Pages)
	}
	if n := rec.CountText("HIDDEN"); n != 0 {
		t.Errorf("invisible field drawn %d times, want 0", n)
	}
	if n := rec.CountText("shown"); n != 1 {
		t.Errorf("visible field drawn %d times, want 1", n)
	}
}
