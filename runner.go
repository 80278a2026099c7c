package kinten

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Tomo0108/kinten/internal/process"
)

// commandRunner abstracts child-process execution to enable testing without
// real office applications.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// waitDelay bounds how long Wait may block on inherited pipes after the
// process group was killed.
const waitDelay = 2 * time.Second

// execRunner runs commands in their own process group. When ctx is done the
// whole group is killed, so helpers spawned by the office application die
// with it.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	cmd := exec.Command(name, args...) // #nosec G204 -- fixed backend binaries with document paths as arguments
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	process.Isolate(cmd)

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return stdout.String(), stderr.String(), err
	case <-ctx.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-done
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.String(), stderr.String(), fmt.Errorf("%w: %s killed", ErrTimeout, name)
		}
		return stdout.String(), stderr.String(), ctx.Err()
	}
}

// commandError folds a child's stderr into its exit error.
func commandError(err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		return err
	}
	if len(msg) > maxStderrLen {
		msg = msg[:maxStderrLen] + "..."
	}
	return fmt.Errorf("%w: %s", err, msg)
}

// maxStderrLen keeps outcome messages readable when a child dumps a trace.
const maxStderrLen = 500
