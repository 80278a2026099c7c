package kinten

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Tomo0108/kinten/internal/assets"
	"github.com/Tomo0108/kinten/internal/fileutil"
	"github.com/Tomo0108/kinten/internal/pipeline"
	"github.com/Tomo0108/kinten/internal/runlog"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ driver                 = (*softwareDriver)(nil)
	_ driver                 = (*officeDriver)(nil)
	_ driver                 = (*bridgeDriver)(nil)
	_ driver                 = (*isolatedDriver)(nil)
	_ session                = (*isolatedDriver)(nil)
	_ Prober                 = (*hostProber)(nil)
)

// Converter orchestrates batch conversion: it probes the host, picks one
// strategy for the batch, and returns one outcome per input.
// Create with NewConverter. A Converter is safe for concurrent Convert calls
// as long as each call targets its own output directory.
type Converter struct {
	cfg     converterConfig
	logger  *slog.Logger
	now     func() time.Time
	prober  Prober
	onPhase func(Phase)
	drivers map[Strategy]driver
	runner  commandRunner
	runlog  *runlog.Writer
	style   string // page CSS for the software renderer
	script  string // scripting bridge export script
}

// NewConverter creates a Converter with default configuration.
// Returns an error if the assets directory is invalid or an asset cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:      DefaultTimeout,
			probeTimeout: DefaultProbeTimeout,
			maxFileSize:  DefaultMaxFileSize,
			isolate:      true,
		},
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		runner: execRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	resolver, err := assets.NewAssetResolver(c.cfg.assetsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	if resolver.HasCustomLoader() {
		c.logger.Debug("loading assets from directory", "dir", c.cfg.assetsDir)
	}
	if c.style, err = resolver.LoadStyle(assets.DefaultStyleName); err != nil {
		return nil, fmt.Errorf("loading page style: %w", err)
	}
	if c.script, err = resolver.LoadScript(assets.ExportScriptName); err != nil {
		return nil, fmt.Errorf("loading bridge script: %w", err)
	}

	if c.prober == nil {
		c.prober = newHostProber(HostPlatform(), c.cfg, c.runner, c.logger)
	}
	if c.cfg.runLogPath != "" {
		c.runlog = runlog.New(c.cfg.runLogPath)
	}

	return c, nil
}

// Capabilities probes the host. Nothing is cached between calls.
func (c *Converter) Capabilities(ctx context.Context) CapabilitySet {
	return c.prober.Probe(ctx)
}

// Convert runs one batch. It returns an error only for batch-level
// preconditions (ErrNoBackendAvailable, ErrOutputDirectoryUnavailable);
// the returned result is non-nil either way. Per-file failures are
// recorded in the result's outcomes.
func (c *Converter) Convert(ctx context.Context, req Request) (*BatchResult, error) {
	runID := uuid.NewString()
	c.phase(PhaseIdle)
	logger := c.logger.With("run", runID)

	c.phase(PhaseProbing)
	caps := c.prober.Probe(ctx)
	logger.Debug("probed host", "platform", caps.Platform,
		"native", caps.Native, "bridge", caps.Bridge, "software", caps.Software, "isolation", caps.Isolation)

	strategy, d := c.selectStrategy(caps)
	if d == nil {
		return c.abort(runID, req.OutputDir, "", ErrNoBackendAvailable), ErrNoBackendAvailable
	}
	c.phase(PhaseStrategySelected)
	logger.Info("strategy selected", "strategy", strategy, "files", len(req.Inputs))

	if err := fileutil.EnsureWritableDir(req.OutputDir); err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrOutputDirectoryUnavailable, req.OutputDir, err)
		return c.abort(runID, req.OutputDir, strategy, err), err
	}

	c.phase(PhaseConverting)
	outcomes, jobs := c.prepare(req, strategy)

	runner := &batchRunner{driver: d, timeout: c.cfg.timeout, grace: c.cfg.grace, logger: logger}
	for k, o := range runner.run(ctx, jobs) {
		outcomes[jobs[k].index] = o
	}

	if c.cfg.softwareFallback && strategy != StrategySoftware && caps.Software {
		c.degrade(ctx, logger, caps, outcomes)
	}

	c.phase(PhaseAggregating)
	res := newBatchResult(runID, req.OutputDir, strategy, outcomes)
	c.record(res)
	c.phase(PhaseDone)

	logger.Info("batch finished", "converted", res.Converted, "failed", res.Failed,
		"validation_errors", res.ValidationErrors)
	return res, nil
}

// prepare validates every input and assigns output names. It returns one
// outcome slot per input and the jobs left to convert.
func (c *Converter) prepare(req Request, strategy Strategy) ([]ConversionOutcome, []job) {
	outcomes := make([]ConversionOutcome, len(req.Inputs))
	jobs := make([]job, 0, len(req.Inputs))
	namer := newOutputNamer(req.OutputDir, c.now)

	for i, input := range req.Inputs {
		outcomes[i] = ConversionOutcome{Input: input, Strategy: strategy}

		if err := validateDocument(input, c.cfg.maxFileSize); err != nil {
			outcomes[i] = failedOutcome(outcomes[i], validationError(input, err))
			continue
		}

		output, err := namer.assign(input)
		if err != nil {
			outcomes[i] = failedOutcome(outcomes[i], &FileError{Kind: KindOutput, Path: input, Err: err})
			continue
		}
		outcomes[i].Output = output
		jobs = append(jobs, job{index: i, input: input, output: output})
	}

	return outcomes, jobs
}

// degrade retries failed conversions with the software renderer. A retry
// that succeeds replaces the outcome; one that fails keeps the original
// failure and notes the retry.
func (c *Converter) degrade(ctx context.Context, logger *slog.Logger, caps CapabilitySet, outcomes []ConversionOutcome) {
	var retry []job
	for i, o := range outcomes {
		if o.Status == StatusFailed && o.Output != "" {
			retry = append(retry, job{index: i, input: o.Input, output: o.Output})
		}
	}
	if len(retry) == 0 {
		return
	}

	d := c.driverFor(StrategySoftware, caps.Platform)
	logger.Info("degraded mode: retrying with software renderer", "files", len(retry))

	runner := &batchRunner{driver: d, timeout: c.cfg.timeout, grace: c.cfg.grace, logger: logger}
	for k, o := range runner.run(ctx, retry) {
		i := retry[k].index
		if o.Status == StatusConverted {
			outcomes[i] = o
			continue
		}
		outcomes[i].Message = fmt.Sprintf("%s; software fallback: %s", outcomes[i].Message, o.Message)
	}
}

// abort finishes a run that failed a batch-level precondition. No file is
// attempted and the result carries no outcomes.
func (c *Converter) abort(runID, dir string, strategy Strategy, err error) *BatchResult {
	c.phase(PhaseAggregating)
	res := fatalResult(runID, dir, strategy, err)
	c.record(res)
	c.phase(PhaseDone)
	c.logger.Warn("batch aborted", "run", runID, "error", err)
	return res
}

// selectStrategy applies the policy: native (isolated when possible), then
// bridge, then software.
func (c *Converter) selectStrategy(caps CapabilitySet) (Strategy, driver) {
	var order []Strategy
	if caps.Native {
		if caps.Isolation && c.cfg.isolate {
			order = append(order, StrategyNativeIsolated)
		}
		order = append(order, StrategyNative)
	}
	if caps.Bridge {
		order = append(order, StrategyBridge)
	}
	if caps.Software {
		order = append(order, StrategySoftware)
	}

	for _, s := range order {
		if d := c.driverFor(s, caps.Platform); d != nil {
			return s, d
		}
	}
	return "", nil
}

// driverFor returns the driver for s on platform, or nil when the platform
// has no such driver.
func (c *Converter) driverFor(s Strategy, platform Platform) driver {
	if d, ok := c.drivers[s]; ok {
		return d
	}
	switch s {
	case StrategyNative:
		return nativeDriverFor(platform, c.cfg, c.runner)
	case StrategyNativeIsolated:
		if len(c.cfg.workerCommand) == 0 {
			return nil
		}
		return &isolatedDriver{command: c.cfg.workerCommand, runner: c.runner}
	case StrategyBridge:
		if platform != PlatformMacOS {
			return nil
		}
		return &bridgeDriver{script: c.script, runner: c.runner}
	case StrategySoftware:
		return newSoftwareDriver(c.style, c.cfg.fontFamily, c.cfg.browserBin)
	}
	return nil
}

// nativeDriverFor returns the office automation driver of platform.
func nativeDriverFor(platform Platform, cfg converterConfig, runner commandRunner) driver {
	switch platform {
	case PlatformWindows:
		return newExcelDriver()
	case PlatformLinux, PlatformMacOS:
		return &officeDriver{bin: cfg.officeBin, runner: runner}
	}
	return nil
}

func (c *Converter) phase(p Phase) {
	if c.onPhase != nil {
		c.onPhase(p)
	}
}

// record appends the run summary to the run log, if one is configured.
func (c *Converter) record(res *BatchResult) {
	if c.runlog == nil {
		return
	}
	entry := runlog.Entry{
		Time:             c.now(),
		RunID:            res.RunID,
		Strategy:         string(res.Strategy),
		Converted:        res.Converted,
		Failed:           res.Failed,
		ValidationErrors: res.ValidationErrors,
		Dir:              res.OutputDir,
	}
	if res.fatal != nil {
		entry.Err = res.fatal.Error()
	}
	if err := c.runlog.Append(entry); err != nil {
		c.logger.Warn("writing run log", "path", c.runlog.Path(), "error", err)
	}
}
