// Package reportflow generates paginated documents from declarative JSON
// templates and row-based data. Table rows stream across pages by their
// measured heights, summary rows are computed exactly once per table, and
// fixed zones (page header/footer, document header/footer) frame every
// page. Output backends plug in through the canvas package; pdfcanvas
// produces PDF bytes.
//
// Basic use:
//
//	tpl, err := reportflow.LoadTemplate("invoice.json")
//	if err != nil { ... }
//	gen := reportflow.NewGenerator()
//	res, err := gen.GeneratePDF(out, tpl, binding.Data{
//	    Header: binding.Record{"customer": "ACME Ltd"},
//	    Items:  rows,
//	})
package reportflow

import (
	"fmt"
	"io"

	"github.com/lvillar/reportflow/binding"
	"github.com/lvillar/reportflow/canvas"
	"github.com/lvillar/reportflow/layout"
	"github.com/lvillar/reportflow/pdfcanvas"
	"github.com/lvillar/reportflow/schema"
)

// Generator produces paginated documents from templates and data. It holds
// only configuration; each Generate call runs independently, so one
// Generator is safe to share across goroutines.
type Generator struct {
	cfg layout.Config
}

// LoadTemplate reads, parses, and validates a JSON template file.
func LoadTemplate(path string) (*schema.Template, error) {
	tpl, err := schema.LoadFile(path)
	if err != nil {
		return nil, newError("LoadTemplate", err)
	}
	return tpl, nil
}

// Result summarizes one completed generation run.
type Result struct {
	// Pages is the number of pages produced.
	Pages int
	// Rows maps each table to the number of data rows it rendered.
	Rows map[schema.TableID]int
	// Warnings lists recovered problems: degraded cells, fit warnings,
	// measurement fallbacks. An empty slice means a clean run.
	Warnings []string
}

// Generate paginates the template against the data onto the given device.
// The device owns the output encoding: pass a pdfcanvas.Device and call its
// Output afterwards for PDF bytes, or a canvas.Recorder to inspect draw
// calls. A fatal error leaves no usable output on the device.
func (g *Generator) Generate(tpl *schema.Template, data binding.Data, dev canvas.Device) (*Result, error) {
	if tpl == nil {
		return nil, newError("Generate", ErrInvalidTemplate)
	}
	if err := tpl.Validate(); err != nil {
		return nil, newError("Generate", fmt.Errorf("%w: %w", ErrInvalidTemplate, err))
	}
	out, err := layout.Run(tpl, data, dev, g.cfg)
	if err != nil {
		return nil, newError("Generate", err)
	}
	return &Result{Pages: out.Pages, Rows: out.Rows, Warnings: out.Warnings}, nil
}

// GeneratePDF runs the whole pipeline onto a PDF device matched to the
// template's unit and writes the finished document to w.
func (g *Generator) GeneratePDF(w io.Writer, tpl *schema.Template, data binding.Data) (*Result, error) {
	if tpl == nil {
		return nil, newError("GeneratePDF", ErrInvalidTemplate)
	}
	dev := pdfcanvas.ForTemplate(tpl)
	res, err := g.Generate(tpl, data, dev)
	if err != nil {
		return nil, err
	}
	if err := dev.Output(w); err != nil {
		return nil, newError("GeneratePDF", err)
	}
	return res, nil
}
