package kinten

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Worker exit codes.
const (
	workerExitOK     = 0
	workerExitFailed = 1
	workerExitUsage  = 2
)

// RunWorker converts one document with the host's native backend and is the
// entry point of the child process used by the isolated strategy.
// args are the input and output paths. The success message is written to
// stdout and errors to stderr. It returns the process exit code.
func RunWorker(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		_, _ = fmt.Fprintln(stderr, ErrWorkerUsage)
		return workerExitUsage
	}
	input, output := args[0], args[1]

	msg, err := runWorker(ctx, nativeDriverFor(HostPlatform(), converterConfig{}, execRunner{}), input, output)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return workerExitFailed
	}
	_, _ = fmt.Fprintln(stdout, msg)
	return workerExitOK
}

// runWorker converts input with a single-use session of d.
func runWorker(ctx context.Context, d driver, input, output string) (msg string, err error) {
	if d == nil {
		return "", ErrUnsupportedPlatform
	}
	if _, statErr := os.Stat(input); statErr != nil {
		return "", statErr
	}

	sess, err := d.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	msg, err = sess.Convert(ctx, input, output)
	if err != nil {
		return "", err
	}
	if err := verifyOutput(output); err != nil {
		return "", err
	}
	return msg, nil
}
