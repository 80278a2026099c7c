package main

import (
	"io"
	"os"
	"time"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and host probing.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // Replaced by the loaded file, if any

	// Prober overrides host capability probing. Nil probes the real host.
	Prober kinten.Prober

	// Executable locates this binary for the isolated worker command.
	Executable func() (string, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Config:     config.DefaultConfig(),
		Executable: os.Executable,
	}
}
