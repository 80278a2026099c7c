package kinten

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// pdfRenderer renders a local HTML file to PDF. It abstracts the browser so
// the software driver can be tested without Chrome.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// A4 page geometry in inches (210 x 297 mm, 20 mm margins).
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	a4MarginInches = 0.787
)

// pageLoadTimeout bounds page load when ctx carries no deadline.
const pageLoadTimeout = 30 * time.Second

// resolveBrowserBin finds the Chrome binary for the software renderer:
// the configured path, then ROD_BROWSER_BIN, then a system install. It never
// triggers rod's automatic Chromium download.
func resolveBrowserBin(configured string) (string, error) {
	for _, candidate := range []string{configured, os.Getenv("ROD_BROWSER_BIN")} {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if bin, found := launcher.LookPath(); found {
		return bin, nil
	}
	return "", ErrBrowserNotFound
}

// rodRenderer implements pdfRenderer using go-rod. One browser is launched
// lazily per renderer and shared by every page it prints.
type rodRenderer struct {
	bin      string
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(bin string) *rodRenderer {
	return &rodRenderer{bin: bin}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	bin, err := resolveBrowserBin(r.bin)
	if err != nil {
		return err
	}

	l := launcher.New().Bin(bin).Headless(true).Leakless(true)

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources and removes the browser's profile dir.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it
// on A4 pages.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := pageLoadTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	bound := page.Context(ctx)
	if err := bound.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := bound.PDF(a4PrintOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// a4PrintOptions returns portrait A4 with 20 mm margins on every side.
func a4PrintOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(a4WidthInches),
		PaperHeight:     floatPtr(a4HeightInches),
		MarginTop:       floatPtr(a4MarginInches),
		MarginBottom:    floatPtr(a4MarginInches),
		MarginLeft:      floatPtr(a4MarginInches),
		MarginRight:     floatPtr(a4MarginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
