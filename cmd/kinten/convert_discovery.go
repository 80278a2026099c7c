package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/dateutil"
	"github.com/Tomo0108/kinten/internal/hints"
)

// Sentinel errors for input discovery.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// defaultOutputSubdir is created next to the inputs when no output
// directory is configured.
const defaultOutputSubdir = "pdf"

// discoverExtensions lists what a directory scan picks up.
var discoverExtensions = []string{".xlsx", ".xls", ".xlsm"}

// inputGroup is a set of inputs sharing a base directory.
type inputGroup struct {
	baseDir string
	inputs  []string
}

// discoverInputs expands args into input groups. Files are kept as given,
// whatever their extension, so validation can report them. Directories
// contribute their spreadsheets in name order, without recursion.
func discoverInputs(args []string) ([]inputGroup, error) {
	var groups []inputGroup
	index := make(map[string]int)
	add := func(base, input string) {
		i, ok := index[base]
		if !ok {
			i = len(groups)
			index[base] = i
			groups = append(groups, inputGroup{baseDir: base})
		}
		groups[i].inputs = append(groups[i].inputs, input)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(arg), arg)
			continue
		}

		found, err := scanDirectory(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(filepath.Clean(arg), f)
		}
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w in %s%s", kinten.ErrNoInputs,
			strings.Join(args, ", "), hints.ForInputDiscovery(discoverExtensions))
	}
	return groups, nil
}

// scanDirectory lists spreadsheets directly inside dir, sorted by name.
// Office lock files (~$name.xlsx) are skipped.
func scanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, "~$") {
			continue
		}
		if kinten.IsSpreadsheet(name) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// buildRequests turns input groups into batches. A configured output
// directory collects everything into one batch; otherwise each group writes
// to a pdf/ folder in its own base directory.
func buildRequests(groups []inputGroup, outputDir string, monthFolder string) []kinten.Request {
	if outputDir != "" {
		var all []string
		for _, g := range groups {
			all = append(all, g.inputs...)
		}
		return []kinten.Request{{Inputs: all, OutputDir: withMonthFolder(outputDir, monthFolder)}}
	}

	reqs := make([]kinten.Request, 0, len(groups))
	for _, g := range groups {
		dir := filepath.Join(g.baseDir, defaultOutputSubdir)
		reqs = append(reqs, kinten.Request{Inputs: g.inputs, OutputDir: withMonthFolder(dir, monthFolder)})
	}
	return reqs
}

// withMonthFolder appends folder to dir when set.
func withMonthFolder(dir, folder string) string {
	if folder == "" {
		return dir
	}
	return filepath.Join(dir, folder)
}

// monthFolderName formats the month sub-folder for now, or "" when disabled.
func monthFolderName(enabled bool, format string, now func() time.Time) (string, error) {
	if !enabled {
		return "", nil
	}
	return dateutil.Format(format, now())
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > kinten.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, kinten.MaxPoolSize)
	}
	return nil
}
