// Package config loads and validates kinten's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tomo0108/kinten/internal/dateutil"
	"github.com/Tomo0108/kinten/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxFamilyLength = 100
)

// Bounds on numeric settings.
const (
	MaxProbeTimeout  = 5 * time.Second
	MaxTimeout       = 30 * time.Minute
	MaxFileSizeLimit = 2048 // MiB
)

// Config holds all configuration for a conversion run.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Conversion ConversionConfig `yaml:"conversion"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Assets     AssetsConfig     `yaml:"assets"`
	Log        LogConfig        `yaml:"log"`
}

// OutputConfig defines where PDFs are written.
type OutputConfig struct {
	DefaultDir  string `yaml:"defaultDir"`  // Empty = "pdf" next to the inputs
	MonthFolder bool   `yaml:"monthFolder"` // Write into a YYYYMM sub-folder
	MonthFormat string `yaml:"monthFormat"` // Token format, default YYYYMM
}

// ConversionConfig defines backend selection and limits.
type ConversionConfig struct {
	Timeout          string `yaml:"timeout"`          // Go duration, default 90s
	ProbeTimeout     string `yaml:"probeTimeout"`     // Go duration, default 5s, max 5s
	SoftwareFallback bool   `yaml:"softwareFallback"` // Retry failed files with the software renderer
	Isolate          *bool  `yaml:"isolate"`          // Per-file child process for native; default true
	MaxFileSizeMB    int    `yaml:"maxFileSizeMB"`    // Default 100
	OfficeBin        string `yaml:"officeBin"`        // LibreOffice binary override
}

// RendererConfig defines software renderer options.
type RendererConfig struct {
	FontFamily string `yaml:"fontFamily"` // Tried before the built-in CJK stack
	BrowserBin string `yaml:"browserBin"` // Chrome/Chromium binary
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// LogConfig defines the run log.
type LogConfig struct {
	File string `yaml:"file"` // Append one line per run; empty = disabled
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"conversion.officeBin", c.Conversion.OfficeBin, MaxPathLength},
		{"renderer.fontFamily", c.Renderer.FontFamily, MaxFamilyLength},
		{"renderer.browserBin", c.Renderer.BrowserBin, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"log.file", c.Log.File, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Output.MonthFormat != "" {
		if err := dateutil.ValidateFolderFormat(c.Output.MonthFormat); err != nil {
			return fmt.Errorf("output.monthFormat: %w", err)
		}
	}

	if _, err := parseDuration("conversion.timeout", c.Conversion.Timeout, MaxTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("conversion.probeTimeout", c.Conversion.ProbeTimeout, MaxProbeTimeout); err != nil {
		return err
	}

	if c.Conversion.MaxFileSizeMB < 0 || c.Conversion.MaxFileSizeMB > MaxFileSizeLimit {
		return fmt.Errorf("%w: conversion.maxFileSizeMB must be between 0 and %d, got %d",
			ErrInvalidValue, MaxFileSizeLimit, c.Conversion.MaxFileSizeMB)
	}

	return nil
}

// TimeoutDuration returns conversion.timeout, or 0 when unset.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := parseDuration("conversion.timeout", c.Conversion.Timeout, MaxTimeout)
	return d
}

// ProbeTimeoutDuration returns conversion.probeTimeout, or 0 when unset.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	d, _ := parseDuration("conversion.probeTimeout", c.Conversion.ProbeTimeout, MaxProbeTimeout)
	return d
}

// IsolateEnabled reports conversion.isolate, defaulting to true.
func (c *Config) IsolateEnabled() bool {
	return c.Conversion.Isolate == nil || *c.Conversion.Isolate
}

// MonthFolderFormat returns output.monthFormat or the YYYYMM default.
func (c *Config) MonthFolderFormat() string {
	if c.Output.MonthFormat == "" {
		return dateutil.MonthFolderFormat
	}
	return c.Output.MonthFormat
}

// parseDuration parses a positive duration no larger than limit. Empty is 0.
func parseDuration(field, value string, limit time.Duration) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 || d > limit {
		return 0, fmt.Errorf("%w: %s must be between 0 and %s, got %s", ErrInvalidValue, field, limit, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that leaves every setting to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the locations tried for a config name, in order:
// current directory, then the user config directory (kinten/).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "kinten", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
