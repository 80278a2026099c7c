package kinten

// Notes:
// - Shared fakes for the driver/session seam, the command runner and the prober
// - Workbook fixtures are built with excelize in t.TempDir()
// - fakePDF is not a parseable PDF; outcome messages then carry no page count

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
)

var fakePDF = []byte("%PDF-1.4 fake")

// ---------------------------------------------------------------------------
// Fake driver
// ---------------------------------------------------------------------------

type fakeDriver struct {
	strategy Strategy
	beginErr error

	// begin, when set, runs before every Begin; an error fails that Begin.
	begin func(ctx context.Context) error

	// convert overrides the default behavior, which writes fakePDF.
	convert func(ctx context.Context, input, output string) (string, error)

	mu       sync.Mutex
	begins   int
	closes   int
	inputs   []string
	sessions int
}

func newFakeDriver(s Strategy) *fakeDriver {
	return &fakeDriver{strategy: s}
}

func (d *fakeDriver) Strategy() Strategy { return d.strategy }

func (d *fakeDriver) Begin(ctx context.Context) (session, error) {
	if d.begin != nil {
		if err := d.begin(ctx); err != nil {
			return nil, err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.begins++
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	d.sessions++
	return &fakeSession{driver: d}, nil
}

func (d *fakeDriver) calls() (begins, closes int, inputs []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.begins, d.closes, append([]string(nil), d.inputs...)
}

type fakeSession struct {
	driver *fakeDriver
}

func (s *fakeSession) Convert(ctx context.Context, input, output string) (string, error) {
	s.driver.mu.Lock()
	s.driver.inputs = append(s.driver.inputs, input)
	convert := s.driver.convert
	s.driver.mu.Unlock()

	if convert != nil {
		return convert(ctx, input, output)
	}
	if err := os.WriteFile(output, fakePDF, 0o644); err != nil {
		return "", err
	}
	return "ok", nil
}

func (s *fakeSession) Close() error {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()
	s.driver.closes++
	return nil
}

// ---------------------------------------------------------------------------
// Fake command runner
// ---------------------------------------------------------------------------

type runCall struct {
	name string
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall

	// run overrides the default, which succeeds with empty output.
	run func(ctx context.Context, name string, args ...string) (string, string, error)
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, runCall{name: name, args: append([]string(nil), args...)})
	run := r.run
	r.mu.Unlock()

	if run != nil {
		return run(ctx, name, args...)
	}
	return "", "", nil
}

func (r *fakeRunner) recorded() []runCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runCall(nil), r.calls...)
}

// ---------------------------------------------------------------------------
// Fake prober
// ---------------------------------------------------------------------------

type countingProber struct {
	caps CapabilitySet

	mu    sync.Mutex
	count int
}

func (p *countingProber) Probe(context.Context) CapabilitySet {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return p.caps
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// writeWorkbook saves an .xlsx at dir/name whose sheets hold the given rows.
func writeWorkbook(t *testing.T, dir, name string, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for sheet, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("renaming sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("adding sheet: %v", err)
		}
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatalf("writing row: %v", err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

// writeSimpleWorkbook saves a one-sheet .xlsx with a header and one row.
func writeSimpleWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	return writeWorkbook(t, dir, name, map[string][][]any{
		"Data": {{"Name", "Qty"}, {"apple", 3}},
	})
}

// writeFile saves content at dir/name.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// dirEntries lists the names in dir, failing the test on error.
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
