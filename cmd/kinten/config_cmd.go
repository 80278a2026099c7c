package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
	"github.com/Tomo0108/kinten/internal/dateutil"
	"github.com/Tomo0108/kinten/internal/fileutil"
	"github.com/Tomo0108/kinten/internal/hints"
	"github.com/Tomo0108/kinten/internal/yamlutil"
)

// loadConfig resolves the config file (flag, then KINTEN_CONFIG) and
// applies environment overrides. Without a file, env.Config is the base.
func loadConfig(flagName string, envCfg *envConfig, env *Environment) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name == "" {
		cfg = config.DefaultConfig()
		if env.Config != nil {
			base := *env.Config
			cfg = &base
		}
	} else {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) int {
	f, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)
	cfg, err := loadConfig(f.config, loadEnvConfig(), env)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	out, err := yamlutil.Encode(effectiveConfig(cfg))
	if err != nil {
		printError(env.Stderr, err)
		return ExitGeneral
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}

// effectiveConfig returns a copy of cfg with library defaults filled in.
func effectiveConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Output.MonthFormat == "" {
		out.Output.MonthFormat = dateutil.MonthFolderFormat
	}
	if out.Conversion.Timeout == "" {
		out.Conversion.Timeout = kinten.DefaultTimeout.String()
	}
	if out.Conversion.ProbeTimeout == "" {
		out.Conversion.ProbeTimeout = kinten.DefaultProbeTimeout.String()
	}
	if out.Conversion.MaxFileSizeMB == 0 {
		out.Conversion.MaxFileSizeMB = int(kinten.DefaultMaxFileSize >> 20)
	}
	isolate := cfg.IsolateEnabled()
	out.Conversion.Isolate = &isolate
	return &out
}
