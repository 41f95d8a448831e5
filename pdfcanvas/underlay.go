package pdfcanvas

import (
	"fmt"
	"os"

	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/lvillar/reportflow/canvas"
)

// underlay holds one imported stationery page, stamped under every page the
// device starts.
type underlay struct {
	imp   *gofpdi.Importer
	tplID int
	ok    bool
}

// SetUnderlay implements canvas.Underlayer: it imports one page of an
// existing PDF and stamps it, stretched to the page box, under every page
// started afterwards. Call it before the first StartPage.
func (d *Device) SetUnderlay(path string, page int) (err error) {
	// The importer panics on unreadable or malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcanvas: importing underlay %s: %v", path, r)
		}
	}()

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("pdfcanvas: underlay: %w", err)
	}
	if page < 1 {
		page = 1
	}

	imp := gofpdi.NewImporter()
	tplID := imp.ImportPage(d.pdf, path, page, "/MediaBox")
	d.underlay = underlay{imp: imp, tplID: tplID, ok: true}
	return nil
}

func (d *Device) stampUnderlay(size canvas.PageSize) {
	if !d.underlay.ok {
		return
	}
	d.underlay.imp.UseImportedTemplate(d.pdf, d.underlay.tplID, 0, 0, size.W, size.H)
}
