package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string                  `json:"status"` // "ready", "warnings", "errors"
	Backends  kinten.CapabilityReport `json:"capabilities"`
	Isolation bool                    `json:"isolation"`
	Browser   browserInfo             `json:"browser"`
	Env       envInfo                 `json:"environment"`
	System    systemInfo              `json:"system"`
	Warnings  []string                `json:"warnings,omitempty"`
	Errors    []string                `json:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results.
type browserInfo struct {
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = at least one backend usable, 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := loadConfig(f.common.config, loadEnvConfig(), env)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	conv, err := kinten.NewConverter(converterOptions(cfg, env, newLogger(f.common.verbose, env.Stderr))...)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	result := runDoctor(conv.Capabilities(ctx), cfg)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor turns probed capabilities and host checks into a report.
func runDoctor(caps kinten.CapabilitySet, cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status:    "ready",
		Backends:  caps.Report(),
		Isolation: caps.Isolation,
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			NoSandbox: os.Getenv("ROD_NO_SANDBOX"),
		},
	}

	checkBackends(result, caps)
	checkBrowser(result, cfg.Renderer.BrowserBin)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkBackends records errors and warnings for missing backends.
func checkBackends(result *doctorResult, caps kinten.CapabilitySet) {
	if !caps.Any() {
		result.Errors = append(result.Errors, "No conversion backend available")
		return
	}
	if !caps.Native && !caps.Bridge {
		result.Warnings = append(result.Warnings,
			"No office application found; layouts will use the software renderer")
	}
	if !caps.Software {
		result.Warnings = append(result.Warnings,
			"Software renderer unavailable; --fallback has no effect")
	}
}

// checkBrowser locates the Chrome/Chromium binary the software renderer would use.
func checkBrowser(result *doctorResult, configured string) {
	path := configured
	if path == "" {
		path = os.Getenv("ROD_BROWSER_BIN")
	}
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", path))
		return
	}
	result.Browser = browserInfo{Found: true, Path: path}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Browser.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("KINTEN_CONTAINER") == "1" {
		return true, "KINTEN_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by every backend is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "kinten-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "kinten doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Backends (%s)\n", r.Backends.Platform)
	for _, name := range []string{kinten.BackendNative, kinten.BackendBridge, kinten.BackendSoftware} {
		if r.Backends.Backends[name] {
			fmt.Fprintf(w, "  [OK] %s\n", name)
		} else {
			fmt.Fprintf(w, "  [--] %s: not available\n", name)
		}
	}
	if r.Backends.Backends[kinten.BackendNative] {
		if r.Isolation {
			fmt.Fprintln(w, "  [OK] Isolation: per-file worker process")
		} else {
			fmt.Fprintln(w, "  [OK] Isolation: off")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
