package layout

import "testing"

func TestCursorMonotonicAdvance(t *testing.T) {
	c := &cursorState{lastRenderedIndex: -1}

	c.advance(4)
	if c.lastRenderedIndex != 4 {
		t.Fatalf("lastRenderedIndex = %d, want 4", c.lastRenderedIndex)
	}
	// Backward movement is ignored.
	c.advance(2)
	if c.lastRenderedIndex != 4 {
		t.Fatalf("lastRenderedIndex = %d after backward advance, want 4", c.lastRenderedIndex)
	}
	if c.nextIndex() != 5 {
		t.Fatalf("nextIndex = %d, want 5", c.nextIndex())
	}
}

func TestCursorObserveTotalPinsFirstValue(t *testing.T) {
	c := &cursorState{lastRenderedIndex: -1}

	c.observeTotal("items", 10)
	c.observeTotal("items", 99)
	if c.totalItems != 10 {
		t.Fatalf("totalItems = %d, want first observation 10", c.totalItems)
	}
}

func TestCursorExhaustion(t *testing.T) {
	c := &cursorState{lastRenderedIndex: -1}
	if c.exhausted() {
		t.Fatal("cursor exhausted before total observed")
	}

	c.observeTotal("t", 0)
	if !c.exhausted() {
		t.Fatal("empty row-set should be exhausted immediately")
	}

	c2 := &cursorState{lastRenderedIndex: -1}
	c2.observeTotal("t", 3)
	c2.advance(1)
	if c2.exhausted() {
		t.Fatal("cursor exhausted with rows remaining")
	}
	c2.advance(2)
	if !c2.exhausted() {
		t.Fatal("cursor not exhausted at last index")
	}
}

func TestCursorComplete(t *testing.T) {
	c := &cursorState{lastRenderedIndex: -1}
	c.observeTotal("t", 1)
	c.advance(0)
	c.markAllRendered()

	if !c.complete(false) {
		t.Error("table without final rows should be complete once rows are drawn")
	}
	if c.complete(true) {
		t.Error("table with final rows incomplete until they are drawn")
	}
	c.finalRowsRendered = true
	if !c.complete(true) {
		t.Error("table complete after final rows drawn")
	}
}

func TestCursorMapLazyInsert(t *testing.T) {
	m := cursorMap{}

	if _, ok := m.peek("items"); ok {
		t.Fatal("peek inserted a cursor")
	}
	c := m.get("items")
	if c.lastRenderedIndex != -1 {
		t.Fatalf("new cursor lastRenderedIndex = %d, want -1", c.lastRenderedIndex)
	}
	if again := m.get("items"); again != c {
		t.Fatal("get returned a different cursor for the same id")
	}
}
