package kinten

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Tomo0108/kinten/internal/fileutil"
)

// osascriptBin is the macOS scripting bridge interpreter.
const osascriptBin = "osascript"

// excelBundleID is what `id of application "Microsoft Excel"` returns when
// Excel is installed.
const excelBundleID = "com.microsoft.excel"

// probeBridge checks that osascript exists and can resolve Excel.
func probeBridge(ctx context.Context, runner commandRunner) error {
	if _, err := exec.LookPath(osascriptBin); err != nil {
		return err
	}
	stdout, stderr, err := runner.Run(ctx, osascriptBin, "-e", `id of application "Microsoft Excel"`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeAmbiguous, commandError(err, stderr))
	}
	if !strings.EqualFold(strings.TrimSpace(stdout), excelBundleID) {
		return fmt.Errorf("%w: unexpected application id %q", ErrProbeAmbiguous, strings.TrimSpace(stdout))
	}
	return nil
}

// bridgeDriver drives Excel through one AppleScript that takes the input
// and output paths as arguments.
type bridgeDriver struct {
	script string
	runner commandRunner
}

func (d *bridgeDriver) Strategy() Strategy { return StrategyBridge }

// Begin writes the script to a temporary file that lives for the batch.
func (d *bridgeDriver) Begin(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, cleanup, err := fileutil.WriteTempFile(d.script, "applescript")
	if err != nil {
		return nil, fmt.Errorf("%w: writing bridge script: %w", ErrApplicationStart, err)
	}
	return &bridgeSession{script: path, cleanup: cleanup, runner: d.runner}, nil
}

type bridgeSession struct {
	script  string
	cleanup func()
	runner  commandRunner
}

func (s *bridgeSession) Convert(ctx context.Context, input, output string) (string, error) {
	in, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return "", err
	}

	stdout, stderr, err := s.runner.Run(ctx, osascriptBin, s.script, in, out)
	if err != nil {
		return "", commandError(err, stderr)
	}
	if msg := strings.TrimSpace(stdout); msg != "" {
		return msg + " via Excel", nil
	}
	return "exported via Excel", nil
}

// Close removes the temporary script.
func (s *bridgeSession) Close() error {
	s.cleanup()
	return nil
}
