package main

import (
	"errors"
	"os"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
	"github.com/Tomo0108/kinten/internal/dateutil"
)

// Exit codes for the kinten CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every batch converted at least one file, or had nothing to fail
	ExitGeneral = 1 // General error, or a batch where nothing converted
	ExitUsage   = 2 // Invalid flags or config
	ExitIO      = 3 // Missing inputs, unusable output directory
	ExitBackend = 4 // No backend available, browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Backend errors (exit 4)
	if errors.Is(err, kinten.ErrNoBackendAvailable) ||
		errors.Is(err, kinten.ErrBrowserConnect) ||
		errors.Is(err, kinten.ErrBrowserNotFound) ||
		errors.Is(err, kinten.ErrOfficeNotFound) {
		return ExitBackend
	}

	// I/O errors (exit 3)
	if errors.Is(err, kinten.ErrOutputDirectoryUnavailable) ||
		errors.Is(err, kinten.ErrNoInputs) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, kinten.ErrInvalidAssetPath) ||
		errors.Is(err, kinten.ErrSharedOutputDir) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
