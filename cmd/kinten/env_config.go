package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Tomo0108/kinten/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // KINTEN_CONFIG: config file path
	OutputDir  string // KINTEN_OUTPUT_DIR: default output directory
	Timeout    string // KINTEN_TIMEOUT: per-file timeout
	Fallback   bool   // KINTEN_FALLBACK: software fallback for failed files
	LogFile    string // KINTEN_LOG_FILE: run log path
	BrowserBin string // KINTEN_BROWSER_BIN: Chrome/Chromium binary
}

// knownEnvVars lists valid KINTEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"KINTEN_CONFIG":      true,
	"KINTEN_OUTPUT_DIR":  true,
	"KINTEN_TIMEOUT":     true,
	"KINTEN_FALLBACK":    true,
	"KINTEN_LOG_FILE":    true,
	"KINTEN_BROWSER_BIN": true,
	"KINTEN_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("KINTEN_CONFIG"),
		OutputDir:  os.Getenv("KINTEN_OUTPUT_DIR"),
		Timeout:    os.Getenv("KINTEN_TIMEOUT"),
		LogFile:    os.Getenv("KINTEN_LOG_FILE"),
		BrowserBin: os.Getenv("KINTEN_BROWSER_BIN"),
	}

	// Unparseable booleans are ignored, like an unset variable.
	if v := os.Getenv("KINTEN_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fallback = b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized KINTEN_* variables.
// Helps catch typos like KINTEN_TIMOUT instead of KINTEN_TIMEOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "KINTEN_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout != "" && cfg.Conversion.Timeout == "" {
		cfg.Conversion.Timeout = env.Timeout
	}
	if env.Fallback && !cfg.Conversion.SoftwareFallback {
		cfg.Conversion.SoftwareFallback = true
	}
	if env.LogFile != "" && cfg.Log.File == "" {
		cfg.Log.File = env.LogFile
	}
	if env.BrowserBin != "" && cfg.Renderer.BrowserBin == "" {
		cfg.Renderer.BrowserBin = env.BrowserBin
	}
}
