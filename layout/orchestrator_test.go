package layout

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/schema"
)

// Geometry used across these tests: A4 portrait in millimeters with 10 mm
// margins, so the body band runs from y=10 to y=287 on zone-less pages. The
// Recorder measures 2-unit characters and 5-unit lines; with the default
// 2-unit cell padding a single-line table row is 9 units tall.

func itemRows(n int, prefix string, amount func(int) any) []binding.Record {
	rows := make([]binding.Record, n)
	for i := range rows {
		rows[i] = binding.Record{
			"name":   fmt.Sprintf("%s-%03d", prefix, i),
			"amount": amount(i),
		}
	}
	return rows
}

func zeroAmount(int) any { return 0 }

func itemsTable(id string, offset float64) schema.Table {
	return schema.Table{
		ID:     id,
		Offset: offset,
		Columns: []schema.Column{
			{Binding: "name", Label: "Name"},
			{Binding: "amount", Label: "Amount", Align: "R"},
		},
	}
}

func mustRun(t *testing.T, tpl *schema.Template, data binding.Data, cfg Config) (*canvas.Recorder, *Outcome) {
	t.Helper()
	rec := canvas.NewRecorder()
	out, err := Run(tpl, data, rec, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rec, out
}

func hasWarning(out *Outcome, substr string) bool {
	for _, w := range out.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestSinglePageTable(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}
	data := binding.Data{Items: itemRows(2, "a", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 1 {
		t.Fatalf("Pages = %d, want 1", out.Pages)
	}
	if out.Rows["items"] != 2 {
		t.Fatalf("Rows[items] = %d, want 2", out.Rows["items"])
	}
	for _, name := range []string{"a-000", "a-001"} {
		if n := rec.CountText(name); n != 1 {
			t.Errorf("row %q drawn %d times, want 1", name, n)
		}
	}
	if n := rec.CountText("Name"); n != 1 {
		t.Errorf("column header drawn %d times, want 1", n)
	}
}

func TestStreamsByMeasuredHeights(t *testing.T) {
	// Every row wraps to 3 lines (19 units), so 14 rows fit per page:
	// 1 header page + 6 full pages + a remainder page.
	rows := make([]binding.Record, 100)
	for i := range rows {
		rows[i] = binding.Record{
			"name":   fmt.Sprintf("b%03d-%s", i, strings.Repeat("x", 95)),
			"amount": 0,
		}
	}
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}

	rec, out := mustRun(t, tpl, binding.Data{Items: rows}, Config{})

	if out.Pages != 8 {
		t.Fatalf("Pages = %d, want 8", out.Pages)
	}
	if out.Rows["items"] != 100 {
		t.Fatalf("Rows[items] = %d, want 100", out.Rows["items"])
	}
	if page, ok := rec.FindText("b099-"); !ok || page != 7 {
		t.Errorf("last row on page %d (found=%v), want 7", page, ok)
	}
	if n := rec.CountText("Name"); n != 1 {
		t.Errorf("column header drawn %d times, want 1", n)
	}
}

func TestNoRowLossNoDuplication(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}
	data := binding.Data{Items: itemRows(60, "r", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Rows["items"] != 60 {
		t.Fatalf("Rows[items] = %d, want 60", out.Rows["items"])
	}
	for i := 0; i < 60; i++ {
		name := fmt.Sprintf("r-%03d", i)
		if n := rec.CountText(name); n != 1 {
			t.Fatalf("row %q drawn %d times, want 1", name, n)
		}
	}
}

func TestSequentialOrdering(t *testing.T) {
	// Table A spans two pages; table B must not start before A completes,
	// then starts on A's completion page.
	b := schema.Table{
		ID:     "extras",
		Source: "extras",
		Offset: 500,
		Columns: []schema.Column{
			{Binding: "name", Label: "Extra"},
			{Binding: "amount", Label: "Qty", Align: "R"},
		},
	}
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0), b}}}
	data := binding.Data{
		Items: itemRows(40, "a", zeroAmount),
		Auxiliary: map[string][]binding.Record{
			"extras": {{"name": "extra-row", "amount": 7}},
		},
	}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	page, ok := rec.FindText("extra-row")
	if !ok {
		t.Fatal("table B row never drawn")
	}
	if page != 1 {
		t.Errorf("table B first drew on page %d, want 1 (A's completion page)", page)
	}
	if n := rec.CountText("extra-row"); n != 1 {
		t.Errorf("table B row drawn %d times, want 1", n)
	}
}

func TestCompletedTableUntouchedOnLaterPages(t *testing.T) {
	// Table A finishes (rows and summary) on page 0; table B continues onto
	// page 1, where A must be skipped without redrawing anything.
	a := itemsTable("items", 0)
	a.FinalRows = [][]schema.FinalRowCell{{
		{Kind: schema.CellStatic, Value: "Summary line", Colspan: 2},
	}}
	b := schema.Table{
		ID:     "ledger",
		Source: "ledger",
		Offset: 100,
		Columns: []schema.Column{
			{Binding: "name", Label: "Entry"},
			{Binding: "amount", Align: "R"},
		},
	}
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{a, b}}}
	data := binding.Data{
		Items: itemRows(3, "a", zeroAmount),
		Auxiliary: map[string][]binding.Record{
			"ledger": itemRows(40, "L", zeroAmount),
		},
	}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	if n := rec.CountText("Summary line"); n != 1 {
		t.Errorf("summary row drawn %d times, want 1", n)
	}
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("a-%03d", i)
		if n := rec.CountText(name); n != 1 {
			t.Errorf("row %q drawn %d times, want 1", name, n)
		}
	}
	if out.Rows["ledger"] != 40 {
		t.Fatalf("Rows[ledger] = %d, want 40", out.Rows["ledger"])
	}
}

func TestFieldsAreNeverBlockedByTables(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{
		Fields: []schema.Field{{Text: "Note: reviewed", Offset: 100}},
		Tables: []schema.Table{itemsTable("items", 0)},
	}}
	data := binding.Data{Items: itemRows(40, "a", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	// The field fits in the gap under the partial table on page 1 even
	// though the table is not complete there.
	if page, ok := rec.FindText("Note: reviewed"); !ok || page != 0 {
		t.Errorf("field drawn on page %d (found=%v), want 0", page, ok)
	}
	if n := rec.CountText("Note: reviewed"); n != 1 {
		t.Errorf("field drawn %d times, want 1", n)
	}
}

func TestDocumentFooterExactlyOnceOnCompletionPage(t *testing.T) {
	tpl := &schema.Template{
		DocFooter: &schema.Zone{Height: 12, Fields: []schema.Field{{Text: "End of statement"}}},
		Body:      &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}},
	}
	data := binding.Data{Items: itemRows(40, "a", zeroAmount)}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	if n := rec.CountText("End of statement"); n != 1 {
		t.Fatalf("document footer drawn %d times, want 1", n)
	}
	page, _ := rec.FindText("End of statement")
	if page != 1 {
		t.Errorf("document footer on page %d, want completion page 1", page)
	}
	// Placed below the last row (y=109) plus the default 4-unit spacing.
	for _, op := range rec.Page(1).Ops {
		if op.Kind == canvas.OpText && op.Text == "End of statement" {
			if op.Y < 112.9 || op.Y > 113.1 {
				t.Errorf("footer y = %v, want 113", op.Y)
			}
		}
	}
}

func TestDocumentFooterWithFieldsOnlyBody(t *testing.T) {
	tpl := &schema.Template{
		DocFooter: &schema.Zone{Height: 10, Fields: []schema.Field{{Text: "Signed off"}}},
		Body:      &schema.Body{Fields: []schema.Field{{Text: "Summary line", Offset: 0}}},
	}

	rec, out := mustRun(t, tpl, binding.Data{}, Config{})

	if out.Pages != 1 {
		t.Fatalf("Pages = %d, want 1", out.Pages)
	}
	if n := rec.CountText("Signed off"); n != 1 {
		t.Errorf("document footer drawn %d times, want 1", n)
	}
}

func TestFinalRowSumExactlyOnceOnLastDataPage(t *testing.T) {
	tbl := itemsTable("items", 0)
	tbl.FinalRows = [][]schema.FinalRowCell{{
		{Kind: schema.CellAggregate, Func: schema.AggSum, Field: "amount", Label: "Total: ", Colspan: 2},
	}}
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{tbl}}}
	data := binding.Data{Items: itemRows(500, "r", func(int) any { return 1.0 })}

	rec, out := mustRun(t, tpl, data, Config{})

	if out.Rows["items"] != 500 {
		t.Fatalf("Rows[items] = %d, want 500", out.Rows["items"])
	}
	if n := rec.CountText("Total: 500"); n != 1 {
		t.Fatalf("final row drawn %d times, want 1", n)
	}
	page, _ := rec.FindText("Total: 500")
	lastRowPage, _ := rec.FindText("r-499")
	if page != lastRowPage {
		t.Errorf("final row on page %d, want last data page %d", page, lastRowPage)
	}
	if page != out.Pages-1 {
		t.Errorf("final row on page %d, want %d", page, out.Pages-1)
	}
}

func TestZeroProgressRetriesRowOnNextPage(t *testing.T) {
	// Row 29 wraps to 3 lines and no longer fits on page 1; it must be
	// retried, not skipped, and the header must not repeat.
	rows := itemRows(30, "n", zeroAmount)
	rows[29]["name"] = "tallrow-" + strings.Repeat("x", 92)
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}

	rec, out := mustRun(t, tpl, binding.Data{Items: rows}, Config{})

	if out.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", out.Pages)
	}
	if page, ok := rec.FindText("tallrow-"); !ok || page != 1 {
		t.Errorf("retried row on page %d (found=%v), want 1", page, ok)
	}
	if n := rec.CountText("tallrow-"); n != 1 {
		t.Errorf("retried row drawn %d times, want 1", n)
	}
	if n := rec.CountText("Name"); n != 1 {
		t.Errorf("column header drawn %d times, want 1", n)
	}
}

func TestOversizedRowForcedOnEmptyPage(t *testing.T) {
	rows := itemRows(6, "n", zeroAmount)
	rows[3]["name"] = "long-" + strings.Repeat("x", 2500)
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}

	rec, out := mustRun(t, tpl, binding.Data{Items: rows}, Config{})

	if out.Rows["items"] != 6 {
		t.Fatalf("Rows[items] = %d, want 6", out.Rows["items"])
	}
	if !hasWarning(out, "drawing oversized") {
		t.Error("expected an oversized-row warning")
	}
	if page, ok := rec.FindText("long-"); !ok || page != 1 {
		t.Errorf("oversized row on page %d (found=%v), want 1", page, ok)
	}
	if n := rec.CountText("n-004"); n != 1 {
		t.Errorf("row after the oversized one drawn %d times, want 1", n)
	}
}

func TestIterationCapAborts(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}
	data := binding.Data{Items: itemRows(100, "r", zeroAmount)}

	rec := canvas.NewRecorder()
	_, err := Run(tpl, data, rec, Config{IterationCap: 2})
	if !errors.Is(err, ErrIterationCap) {
		t.Fatalf("err = %v, want ErrIterationCap", err)
	}
}

func TestMeasurementFailureFallsBack(t *testing.T) {
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}}}
	data := binding.Data{Items: itemRows(3, "r", zeroAmount)}

	rec := canvas.NewRecorder()
	rec.MeasureErr = errors.New("font metrics unavailable")
	out, err := Run(tpl, data, rec, Config{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Rows["items"] != 3 {
		t.Fatalf("Rows[items] = %d, want 3", out.Rows["items"])
	}
	if !hasWarning(out, "measurement failed") {
		t.Error("expected a measurement-fallback warning")
	}
}

func TestInvalidTemplateIsFatal(t *testing.T) {
	rec := canvas.NewRecorder()
	_, err := Run(&schema.Template{}, binding.Data{}, rec, Config{})
	if err == nil {
		t.Fatal("expected an error for a template without a body")
	}
	if rec.PageCount() != 0 {
		t.Errorf("pages produced despite fatal error: %d", rec.PageCount())
	}
}

func TestMissingRowSetTreatedAsEmpty(t *testing.T) {
	tbl := itemsTable("ledger", 0)
	tbl.Source = "ledger"
	tpl := &schema.Template{Body: &schema.Body{Tables: []schema.Table{tbl}}}

	_, out := mustRun(t, tpl, binding.Data{}, Config{})

	if out.Pages != 1 {
		t.Fatalf("Pages = %d, want 1", out.Pages)
	}
	if out.Rows["ledger"] != 0 {
		t.Fatalf("Rows[ledger] = %d, want 0", out.Rows["ledger"])
	}
	if !hasWarning(out, "row-set not found") {
		t.Error("expected a missing row-set warning")
	}
}

func TestUnderlayWarnsWhenDeviceCannot(t *testing.T) {
	tpl := &schema.Template{
		Underlay: &schema.Underlay{Src: "letterhead.pdf"},
		Body:     &schema.Body{Tables: []schema.Table{itemsTable("items", 0)}},
	}
	data := binding.Data{Items: itemRows(1, "a", zeroAmount)}

	_, out := mustRun(t, tpl, data, Config{})

	if !hasWarning(out, "underlay") {
		t.Error("expected an underlay warning on a device without support")
	}
}
