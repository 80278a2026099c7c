package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// backendFlags holds backend selection and limit flags.
type backendFlags struct {
	timeout   string
	fallback  bool
	noIsolate bool
	officeBin string
	maxSizeMB int
}

// rendererFlags holds software renderer flags.
type rendererFlags struct {
	font       string
	browserBin string
	assetPath  string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common      commonFlags
	output      string
	workers     int
	monthFolder bool
	json        bool
	logFile     string
	backend     backendFlags
	renderer    rendererFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log backend activity to stderr")
}

// addBackendFlags adds backend flags to a FlagSet.
func addBackendFlags(fs *flag.FlagSet, f *backendFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file timeout (e.g., 90s, 5m)")
	fs.BoolVar(&f.fallback, "fallback", false, "retry failed files with the software renderer")
	fs.BoolVar(&f.noIsolate, "no-isolate", false, "run native conversions in-process")
	fs.StringVar(&f.officeBin, "office-bin", "", "LibreOffice binary")
	fs.IntVar(&f.maxSizeMB, "max-size", 0, "largest accepted input in MiB (0 = default)")
}

// addRendererFlags adds software renderer flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.font, "font", "", "font family tried first by the software renderer")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel batches (0 = auto)")
	fs.BoolVar(&f.monthFolder, "month-folder", false, "write into a YYYYMM sub-folder")
	fs.BoolVar(&f.json, "json", false, "print the batch result as JSON")
	fs.StringVar(&f.logFile, "log-file", "", "append one line per run to this file")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addBackendFlags(fs, &f.backend)
	addRendererFlags(fs, &f.renderer)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printDoctorUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, usage io.Writer) (*commonFlags, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &commonFlags{}

	addCommonFlags(fs, f)

	fs.Usage = func() { printConfigUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
