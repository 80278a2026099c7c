package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
	"github.com/Tomo0108/kinten/internal/hints"
)

// runConvertCmd executes the convert command and returns an exit code.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	f, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if err := validateWorkers(f.workers); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	warnUnknownEnvVars(env.Stderr)
	cfg, err := loadConfig(f.common.config, loadEnvConfig(), env)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	if len(positional) == 0 {
		err := fmt.Errorf("%w: no input given%s", kinten.ErrNoInputs, hints.ForInputDiscovery(discoverExtensions))
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	groups, err := discoverInputs(positional)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	month, err := monthFolderName(cfg.Output.MonthFolder, cfg.MonthFolderFormat(), env.Now)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}
	reqs := buildRequests(groups, cfg.Output.DefaultDir, month)

	conv, err := kinten.NewConverter(converterOptions(cfg, env, newLogger(f.common.verbose, env.Stderr))...)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	results, errs := kinten.RunBatches(ctx, conv, reqs, f.workers)

	if f.json {
		writeJSONResults(env.Stdout, results)
	} else {
		for i := range reqs {
			printBatch(env, results[i], errs[i], f.common.quiet)
		}
	}

	return batchExitCode(results, errs)
}

// mergeFlags applies explicitly set flags on top of cfg.
func mergeFlags(f *convertFlags, cfg *config.Config) {
	if f.output != "" {
		cfg.Output.DefaultDir = f.output
	}
	if f.monthFolder {
		cfg.Output.MonthFolder = true
	}
	if f.logFile != "" {
		cfg.Log.File = f.logFile
	}
	if f.backend.timeout != "" {
		cfg.Conversion.Timeout = f.backend.timeout
	}
	if f.backend.fallback {
		cfg.Conversion.SoftwareFallback = true
	}
	if f.backend.noIsolate {
		isolate := false
		cfg.Conversion.Isolate = &isolate
	}
	if f.backend.officeBin != "" {
		cfg.Conversion.OfficeBin = f.backend.officeBin
	}
	if f.backend.maxSizeMB != 0 {
		cfg.Conversion.MaxFileSizeMB = f.backend.maxSizeMB
	}
	if f.renderer.font != "" {
		cfg.Renderer.FontFamily = f.renderer.font
	}
	if f.renderer.browserBin != "" {
		cfg.Renderer.BrowserBin = f.renderer.browserBin
	}
	if f.renderer.assetPath != "" {
		cfg.Assets.BasePath = f.renderer.assetPath
	}
}

// converterOptions maps a validated config onto library options.
func converterOptions(cfg *config.Config, env *Environment, logger *slog.Logger) []kinten.Option {
	opts := []kinten.Option{
		kinten.WithSoftwareFallback(cfg.Conversion.SoftwareFallback),
		kinten.WithIsolation(cfg.IsolateEnabled()),
		kinten.WithFontFamily(cfg.Renderer.FontFamily),
		kinten.WithBrowserBin(cfg.Renderer.BrowserBin),
		kinten.WithOfficeBin(cfg.Conversion.OfficeBin),
		kinten.WithAssetsDir(cfg.Assets.BasePath),
		kinten.WithMaxFileSize(int64(cfg.Conversion.MaxFileSizeMB) << 20),
		kinten.WithLogger(logger),
		kinten.WithProber(env.Prober),
	}
	if env.Now != nil {
		opts = append(opts, kinten.WithClock(env.Now))
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, kinten.WithTimeout(d))
	}
	if d := cfg.ProbeTimeoutDuration(); d > 0 {
		opts = append(opts, kinten.WithProbeTimeout(d))
	}
	if cfg.Log.File != "" {
		opts = append(opts, kinten.WithRunLog(cfg.Log.File))
	}
	if env.Executable != nil {
		if exe, err := env.Executable(); err == nil {
			opts = append(opts, kinten.WithWorkerCommand(exe, "worker"))
		}
	}
	return opts
}

// newLogger returns a debug text logger on w when verbose, nil otherwise.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// printBatch prints one batch in human-readable form.
func printBatch(env *Environment, res *kinten.BatchResult, err error, quiet bool) {
	if res == nil {
		printError(env.Stderr, err)
		return
	}

	timedOut, browserFailed := false, false
	for _, o := range res.Outcomes {
		switch o.Status {
		case kinten.StatusConverted:
			if !quiet {
				fmt.Fprintf(env.Stdout, "Created %s (%s)\n", o.Output, o.Message)
			}
		case kinten.StatusValidationError:
			fmt.Fprintf(env.Stderr, "INVALID %s: %s\n", o.Input, o.Message)
		default:
			fmt.Fprintf(env.Stderr, "FAILED %s: %s\n", o.Input, o.Message)
			timedOut = timedOut || errors.Is(o.Err, kinten.ErrTimeout)
			browserFailed = browserFailed || errors.Is(o.Err, kinten.ErrBrowserConnect)
		}
	}

	if err != nil {
		printError(env.Stderr, err)
		return
	}
	if timedOut {
		printHint(env.Stderr, hints.ForTimeout())
	}
	if browserFailed {
		printHint(env.Stderr, hints.ForBrowserConnect())
	}

	if !quiet {
		fmt.Fprintf(env.Stdout, "\n%s: %d converted, %d failed, %d invalid (%s)\n",
			res.OutputDir, res.Converted, res.Failed, res.ValidationErrors, res.Strategy)
	}
	if !res.Success {
		fmt.Fprintf(env.Stderr, "error: %s\n", res.Message())
	}
}

// printError prints err with the hint matching its cause.
func printError(w io.Writer, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, kinten.ErrNoBackendAvailable):
		msg += hints.ForNoBackend(string(kinten.HostPlatform()))
	case errors.Is(err, kinten.ErrOutputDirectoryUnavailable):
		msg += hints.ForOutputDirectory()
	}
	fmt.Fprintf(w, "error: %s\n", msg)
}

// printHint prints a standalone hint line.
func printHint(w io.Writer, hint string) {
	if hint != "" {
		fmt.Fprintln(w, strings.TrimPrefix(hint, "\n"))
	}
}

// writeJSONResults prints one result object, or an array for several batches.
func writeJSONResults(w io.Writer, results []*kinten.BatchResult) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		_ = enc.Encode(results[0])
		return
	}
	_ = enc.Encode(results)
}

// batchExitCode returns the most relevant exit code across batches.
func batchExitCode(results []*kinten.BatchResult, errs []error) int {
	for _, err := range errs {
		if err != nil {
			return exitCodeFor(err)
		}
	}
	for _, res := range results {
		if res != nil && !res.Success {
			return ExitGeneral
		}
	}
	return ExitSuccess
}
