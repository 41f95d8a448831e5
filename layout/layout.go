// Package layout implements the streaming pagination engine: it walks a
// template's body elements in offset order, streams table rows across as
// many pages as their measured heights require, computes final summary rows
// exactly once per table, and surrounds every page with the template's
// fixed zones. All drawing goes through the canvas package; the engine
// never touches the output encoding.
package layout

import (
	"errors"
	"time"

	"github.com/lvillar/reportflow/assets"
	"github.com/lvillar/reportflow/schema"
)

// ErrIterationCap is returned when pagination extension exceeds the
// configured cap. It defends against a cursor stall causing unbounded page
// growth; a generation run hitting it aborts with no output.
var ErrIterationCap = errors.New("layout: pagination iteration cap exceeded")

// Config carries the run-time knobs the root package exposes as options.
type Config struct {
	// IterationCap bounds the number of pages one run may produce.
	IterationCap int
	// FooterSpacing separates the document footer from the lowest drawn
	// content above it.
	FooterSpacing float64
	// ContainerPadding pads the top of the body band on every page, in
	// addition to any padding the template body declares.
	ContainerPadding float64
	// Clock supplies the wall-clock time for date and time fields.
	Clock func() time.Time
	// Assets loads images for image fields.
	Assets *assets.Loader
}

func (c Config) withDefaults() Config {
	if c.IterationCap <= 0 {
		c.IterationCap = 1000
	}
	if c.FooterSpacing <= 0 {
		c.FooterSpacing = 4
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Assets == nil {
		c.Assets = assets.NewLoader("")
	}
	return c
}

// Outcome summarizes a completed generation run.
type Outcome struct {
	// Pages is the number of pages produced.
	Pages int
	// Rows maps each table to the number of data rows it drew.
	Rows map[schema.TableID]int
	// Warnings lists recovered problems: fit warnings, degraded cells,
	// measurement fallbacks.
	Warnings []string
}
