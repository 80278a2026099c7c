package kinten

import (
	"errors"
	"fmt"
)

// Sentinel errors for batch-level preconditions. Either one aborts the batch
// before any file is attempted.
var (
	ErrNoBackendAvailable         = errors.New("no conversion backend available")
	ErrOutputDirectoryUnavailable = errors.New("output directory unavailable")
	ErrNoInputs                   = errors.New("no input documents")
)

// Sentinel errors for per-file failures. They are recorded in the batch
// result and never returned from Converter.Convert.
var (
	ErrValidation      = errors.New("invalid document")
	ErrDriver          = errors.New("conversion failed")
	ErrRender          = errors.New("software rendering failed")
	ErrEmptyOutput     = errors.New("output PDF missing or empty")
	ErrOutputNameTaken = errors.New("output file name already taken")
)

// ErrTimeout is a driver failure caused by a backend exceeding its wall-clock bound.
var ErrTimeout = fmt.Errorf("%w: timed out", ErrDriver)

// Sentinel errors for backend setup.
var (
	ErrProbeAmbiguous      = errors.New("backend probe was inconclusive")
	ErrUnsupportedPlatform = errors.New("backend not supported on this platform")
	ErrApplicationStart    = errors.New("failed to start office application")
	ErrBrowserConnect      = errors.New("failed to connect to browser")
	ErrBrowserNotFound     = errors.New("no Chrome/Chromium binary found")
	ErrPageCreate          = errors.New("failed to create browser page")
	ErrPageLoad            = errors.New("failed to load page")
	ErrPDFGeneration       = errors.New("PDF generation failed")
	ErrOfficeNotFound      = errors.New("no LibreOffice binary found")
	ErrWorkerUsage         = errors.New("usage: worker <input> <output>")
	ErrInvalidAssetPath    = errors.New("invalid assets directory")
)

// ErrorKind classifies a per-file error.
type ErrorKind string

// Error kinds carried by FileError.
const (
	KindValidation ErrorKind = "validation"
	KindDriver     ErrorKind = "driver"
	KindTimeout    ErrorKind = "timeout"
	KindOutput     ErrorKind = "output"
)

// FileError describes why a single input document was not converted.
type FileError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// validationError wraps err as a validation failure for path.
func validationError(path string, err error) *FileError {
	return &FileError{Kind: KindValidation, Path: path, Err: fmt.Errorf("%w: %w", ErrValidation, err)}
}

// driverError classifies err from a driver. Timeouts keep their own kind
// so callers can tell a hung backend from an export failure.
func driverError(path string, err error) *FileError {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, ErrTimeout) {
		return &FileError{Kind: KindTimeout, Path: path, Err: err}
	}
	if !errors.Is(err, ErrDriver) {
		err = fmt.Errorf("%w: %w", ErrDriver, err)
	}
	return &FileError{Kind: KindDriver, Path: path, Err: err}
}
