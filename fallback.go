package kinten

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tomo0108/kinten/internal/fileutil"
	"github.com/Tomo0108/kinten/internal/pipeline"
)

// errLegacyFormat rejects .xls in the software renderer, which reads only
// Office Open XML workbooks.
var errLegacyFormat = fmt.Errorf("%w: legacy .xls workbooks need an office application", ErrRender)

// outputPermissions is used for PDFs written by the software renderer.
const outputPermissions = 0o644

// softwareDriver lays sheets out as HTML tables and prints them with
// headless Chrome. It never invokes an office application.
type softwareDriver struct {
	css         string // page style plus font rule
	builder     *pipeline.DocumentBuilder
	newRenderer func() pdfRenderer
}

func newSoftwareDriver(styleCSS, fontFamily, browserBin string) *softwareDriver {
	return &softwareDriver{
		css:         styleCSS + "\n" + pipeline.FontCSS(fontFamily),
		builder:     pipeline.NewDocumentBuilder(),
		newRenderer: func() pdfRenderer { return newRodRenderer(browserBin) },
	}
}

func (d *softwareDriver) Strategy() Strategy { return StrategySoftware }

// Begin returns a session owning one browser, launched on first use.
func (d *softwareDriver) Begin(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &softwareSession{driver: d, renderer: d.newRenderer()}, nil
}

type softwareSession struct {
	driver   *softwareDriver
	renderer pdfRenderer
}

// Convert renders input's bounded value grid to a PDF at output. The output
// file is only written once the whole document has rendered.
func (s *softwareSession) Convert(ctx context.Context, input, output string) (string, error) {
	if strings.EqualFold(filepath.Ext(input), ".xls") {
		return "", errLegacyFormat
	}

	sheets, err := pipeline.ReadSheets(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	if !pipeline.HasData(sheets) {
		return "", fmt.Errorf("%w: no sheet has any non-empty row", ErrRender)
	}

	doc, err := s.driver.builder.Build(ctx, documentStem(input), sheets, s.driver.css)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	htmlPath, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer cleanup()

	pdf, err := s.renderer.RenderFromFile(ctx, htmlPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	if len(pdf) == 0 {
		return "", fmt.Errorf("%w: %w", ErrRender, ErrEmptyOutput)
	}

	if err := os.WriteFile(output, pdf, outputPermissions); err != nil { // #nosec G306 -- PDFs are meant to be shared
		return "", fmt.Errorf("writing %s: %w", output, err)
	}

	return fmt.Sprintf("rendered %d sheet(s) with data", countSheetsWithData(sheets)), nil
}

func (s *softwareSession) Close() error {
	return s.renderer.Close()
}

func countSheetsWithData(sheets []pipeline.Sheet) int {
	n := 0
	for _, sh := range sheets {
		if len(sh.Rows) > 0 {
			n++
		}
	}
	return n
}
