package kinten

import (
	"log/slog"
	"time"
)

// Default limits.
const (
	// DefaultTimeout bounds one file's conversion. Office automation can hang
	// indefinitely on malformed documents.
	DefaultTimeout = 90 * time.Second

	// DefaultProbeTimeout bounds each backend probe.
	DefaultProbeTimeout = 5 * time.Second

	// MaxProbeTimeout is the upper bound accepted by WithProbeTimeout.
	MaxProbeTimeout = 5 * time.Second

	// DefaultMaxFileSize rejects documents larger than 100 MiB.
	DefaultMaxFileSize int64 = 100 << 20

	// hangGrace is how long past its deadline a driver may take to return
	// before the file is abandoned.
	hangGrace = 2 * time.Second
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout          time.Duration
	probeTimeout     time.Duration
	maxFileSize      int64
	softwareFallback bool
	isolate          bool
	workerCommand    []string
	fontFamily       string
	browserBin       string
	officeBin        string
	runLogPath       string
	assetsDir        string
	grace            time.Duration // zero means hangGrace
}

// WithTimeout sets the per-file wall-clock bound.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("kinten: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithProbeTimeout sets the bound for each backend probe, capped at MaxProbeTimeout.
// Panics if d <= 0.
func WithProbeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("kinten: WithProbeTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.probeTimeout = min(d, MaxProbeTimeout)
	}
}

// WithMaxFileSize sets the largest accepted input document in bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *Converter) {
		if n > 0 {
			c.cfg.maxFileSize = n
		}
	}
}

// WithSoftwareFallback enables the degraded mode: files the primary
// backend failed to convert are retried with the software renderer.
func WithSoftwareFallback(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.softwareFallback = enabled
	}
}

// WithIsolation controls whether native conversions run in a per-file
// child process when one is available. Enabled by default.
func WithIsolation(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.isolate = enabled
	}
}

// WithWorkerCommand sets the command that runs one native conversion in a
// child process. The input and output paths are appended as the last two
// arguments. The command must end up calling RunWorker.
func WithWorkerCommand(name string, args ...string) Option {
	return func(c *Converter) {
		if name == "" {
			c.cfg.workerCommand = nil
			return
		}
		c.cfg.workerCommand = append([]string{name}, args...)
	}
}

// WithFontFamily puts family first in the software renderer's font stack.
func WithFontFamily(family string) Option {
	return func(c *Converter) {
		c.cfg.fontFamily = family
	}
}

// WithBrowserBin sets the Chrome/Chromium binary used by the software renderer.
func WithBrowserBin(path string) Option {
	return func(c *Converter) {
		c.cfg.browserBin = path
	}
}

// WithOfficeBin sets the LibreOffice binary used by the native backend on
// Linux and macOS.
func WithOfficeBin(path string) Option {
	return func(c *Converter) {
		c.cfg.officeBin = path
	}
}

// WithRunLog appends one summary line per Convert call to path.
func WithRunLog(path string) Option {
	return func(c *Converter) {
		c.cfg.runLogPath = path
	}
}

// WithAssetsDir loads the page style and bridge script from dir, falling
// back to the embedded assets for any file dir does not provide.
func WithAssetsDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetsDir = dir
	}
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock injects the time source used for output suffixes and month folders.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// WithProber replaces the host capability prober.
func WithProber(p Prober) Option {
	return func(c *Converter) {
		if p != nil {
			c.prober = p
		}
	}
}

// WithPhaseHook registers fn to observe run phase transitions.
func WithPhaseHook(fn func(Phase)) Option {
	return func(c *Converter) {
		c.onPhase = fn
	}
}

// withGrace overrides how long a driver may overrun its deadline (for tests).
func withGrace(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.grace = d
	}
}

// withRunner replaces the child-process runner (for tests).
func withRunner(r commandRunner) Option {
	return func(c *Converter) {
		c.runner = r
	}
}

// withDriver overrides the driver for a strategy (for tests).
func withDriver(s Strategy, d driver) Option {
	return func(c *Converter) {
		if c.drivers == nil {
			c.drivers = make(map[Strategy]driver)
		}
		c.drivers[s] = d
	}
}
