package kinten

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// isolatedDriver runs each native conversion in a child process. The child
// is the worker command with the input and output paths appended; it is
// killed with its process group when the per-file deadline passes.
type isolatedDriver struct {
	command []string
	runner  commandRunner
}

func (d *isolatedDriver) Strategy() Strategy { return StrategyNativeIsolated }

// Begin has nothing to acquire; each file gets a fresh application instance
// inside its child.
func (d *isolatedDriver) Begin(ctx context.Context) (session, error) {
	if len(d.command) == 0 {
		return nil, fmt.Errorf("%w: no worker command configured", ErrApplicationStart)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *isolatedDriver) Convert(ctx context.Context, input, output string) (string, error) {
	in, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return "", err
	}

	args := append(append([]string{}, d.command[1:]...), in, out)
	stdout, stderr, err := d.runner.Run(ctx, d.command[0], args...)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", err
		}
		return "", fmt.Errorf("worker failed: %w", commandError(err, stderr))
	}
	if msg := strings.TrimSpace(stdout); msg != "" {
		return msg, nil
	}
	return "exported in worker process", nil
}

func (d *isolatedDriver) Close() error { return nil }
