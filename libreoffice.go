package kinten

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Tomo0108/kinten/internal/fileutil"
)

// macOfficeBin is where the LibreOffice app bundle keeps its binary.
const macOfficeBin = "/Applications/LibreOffice.app/Contents/MacOS/soffice"

// resolveOfficeBin finds the LibreOffice binary: the configured path, then
// soffice or libreoffice on PATH, then the macOS application bundle.
func resolveOfficeBin(configured string) (string, error) {
	if configured != "" {
		if !fileutil.FileExists(configured) {
			return "", fmt.Errorf("%w: %s", ErrOfficeNotFound, configured)
		}
		return configured, nil
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" && fileutil.FileExists(macOfficeBin) {
		return macOfficeBin, nil
	}
	return "", ErrOfficeNotFound
}

// probeOffice checks that LibreOffice is installed and answers --version.
func probeOffice(ctx context.Context, runner commandRunner, configured string) error {
	bin, err := resolveOfficeBin(configured)
	if err != nil {
		return err
	}
	stdout, stderr, err := runner.Run(ctx, bin, "--version")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeAmbiguous, commandError(err, stderr))
	}
	if !strings.Contains(stdout, "LibreOffice") {
		return fmt.Errorf("%w: unexpected version output %q", ErrProbeAmbiguous, strings.TrimSpace(stdout))
	}
	return nil
}

// officeDriver exports through LibreOffice in headless mode, one child
// process per file.
type officeDriver struct {
	bin    string
	runner commandRunner
}

func (d *officeDriver) Strategy() Strategy { return StrategyNative }

// Begin creates a private user profile and scratch directory for the batch,
// so a desktop LibreOffice instance is neither reused nor locked.
func (d *officeDriver) Begin(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin, err := resolveOfficeBin(d.bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplicationStart, err)
	}
	root, err := os.MkdirTemp("", "kinten-office-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplicationStart, err)
	}
	s := &officeSession{
		bin:     bin,
		runner:  d.runner,
		root:    root,
		profile: filepath.Join(root, "profile"),
		outdir:  filepath.Join(root, "out"),
	}
	if err := os.MkdirAll(s.outdir, fileutil.DirPermissions); err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("%w: %w", ErrApplicationStart, err)
	}
	return s, nil
}

type officeSession struct {
	bin     string
	runner  commandRunner
	root    string
	profile string
	outdir  string
}

// Convert exports input into the scratch directory, then moves the PDF to
// output. LibreOffice names its output after the input stem.
func (s *officeSession) Convert(ctx context.Context, input, output string) (string, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}

	args := []string{
		"--headless", "--norestore", "--nolockcheck",
		"-env:UserInstallation=" + fileURL(s.profile),
		"--convert-to", "pdf",
		"--outdir", s.outdir,
		abs,
	}
	_, stderr, err := s.runner.Run(ctx, s.bin, args...)
	if err != nil {
		return "", commandError(err, stderr)
	}

	produced := filepath.Join(s.outdir, documentStem(abs)+".pdf")
	if !fileutil.FileExists(produced) {
		return "", fmt.Errorf("%w: %s wrote no PDF", ErrEmptyOutput, filepath.Base(s.bin))
	}
	if err := moveFile(produced, output); err != nil {
		return "", err
	}
	return "exported with LibreOffice", nil
}

// Close removes the profile and scratch directory.
func (s *officeSession) Close() error {
	return os.RemoveAll(s.root)
}

// fileURL converts an absolute path to a file:// URL as LibreOffice expects.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src) // #nosec G304 -- file inside our scratch directory
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, outputPermissions); err != nil { // #nosec G306 -- PDFs are meant to be shared
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return os.Remove(src)
}
