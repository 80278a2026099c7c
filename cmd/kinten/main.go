package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tomo0108/kinten"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Configure GOMAXPROCS with conditional logging.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return runConvertCmd(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "worker":
		return kinten.RunWorker(ctx, rest, env.Stdout, env.Stderr)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "kinten %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	}

	// Bare paths are shorthand for convert.
	if looksLikeInput(cmd) {
		return runConvertCmd(ctx, args[1:], env)
	}

	fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// looksLikeInput reports whether arg names a spreadsheet or an existing directory.
func looksLikeInput(arg string) bool {
	if kinten.IsSpreadsheet(arg) {
		return true
	}
	info, err := os.Stat(filepath.Clean(arg))
	return err == nil && info.IsDir()
}

// hasVerboseFlag scans raw arguments for -v/--verbose before any parsing.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
