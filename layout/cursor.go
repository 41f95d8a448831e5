package layout

import (
	"github.com/lvillar/reportflow/logging"
	"github.com/lvillar/reportflow/schema"
)

// cursorState tracks one table's progress across the whole run. It is
// created lazily on the table's first render attempt, owned exclusively by
// the orchestrator, and discarded when the run completes.
//
// lastRenderedIndex is monotonic and never resets; totalItems is fixed at
// first observation; the two completion flags each flip false to true at
// most once, finalRowsRendered only after allRowsRendered.
type cursorState struct {
	lastRenderedIndex int
	totalItems        int
	totalObserved     bool
	allRowsRendered   bool
	finalRowsRendered bool
}

// observeTotal pins the table's row count on first sight. A later,
// different count is ignored and logged: the input data must not change
// mid-run.
func (c *cursorState) observeTotal(id schema.TableID, n int) {
	if !c.totalObserved {
		c.totalItems = n
		c.totalObserved = true
		return
	}
	if c.totalItems != n {
		logging.Logger().Warn("row-set size changed mid-run, keeping first observation",
			"table", string(id), "first", c.totalItems, "now", n)
	}
}

// advance moves the cursor forward. Backward movement is a bug in the
// caller and is ignored to preserve monotonicity.
func (c *cursorState) advance(lastIndex int) {
	if lastIndex > c.lastRenderedIndex {
		c.lastRenderedIndex = lastIndex
	}
}

// nextIndex is the first row index not yet drawn.
func (c *cursorState) nextIndex() int {
	return c.lastRenderedIndex + 1
}

// exhausted reports whether every data row has been drawn.
func (c *cursorState) exhausted() bool {
	return c.totalObserved && (c.totalItems == 0 || c.lastRenderedIndex >= c.totalItems-1)
}

// markAllRendered flips allRowsRendered; repeated observation is a no-op.
func (c *cursorState) markAllRendered() {
	c.allRowsRendered = true
}

// complete reports whether the table has nothing left to do: all rows
// drawn and, when final rows are configured, those drawn too.
func (c *cursorState) complete(hasFinalRows bool) bool {
	if !c.allRowsRendered {
		return false
	}
	if hasFinalRows && !c.finalRowsRendered {
		return false
	}
	return true
}

// cursorMap holds per-table cursor state keyed by the strongly typed table
// id, lazily inserting on first touch.
type cursorMap map[schema.TableID]*cursorState

func (m cursorMap) get(id schema.TableID) *cursorState {
	c, ok := m[id]
	if !ok {
		c = &cursorState{lastRenderedIndex: -1}
		m[id] = c
	}
	return c
}

// peek returns the cursor without inserting.
func (m cursorMap) peek(id schema.TableID) (*cursorState, bool) {
	c, ok := m[id]
	return c, ok
}
