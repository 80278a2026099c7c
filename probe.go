package kinten

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Prober detects which conversion backends are usable on the host.
// Implementations must bound every check and report anything inconclusive
// as unavailable.
type Prober interface {
	Probe(ctx context.Context) CapabilitySet
}

// probeFunc checks one backend. A nil error means the backend is usable.
type probeFunc func(ctx context.Context) error

// hostProber probes the real host. Checks for distinct backends run
// concurrently, each under its own timeout.
type hostProber struct {
	platform  Platform
	timeout   time.Duration
	isolation bool // a worker command is configured and isolation is enabled
	native    probeFunc
	bridge    probeFunc
	software  probeFunc
	logger    *slog.Logger
}

// newHostProber wires the platform's checks from cfg.
func newHostProber(platform Platform, cfg converterConfig, runner commandRunner, logger *slog.Logger) *hostProber {
	p := &hostProber{
		platform: platform,
		timeout:  cfg.probeTimeout,
		software: func(context.Context) error {
			_, err := resolveBrowserBin(cfg.browserBin)
			return err
		},
		logger: logger,
	}

	switch platform {
	case PlatformWindows:
		p.native = probeExcel
		p.isolation = cfg.isolate && len(cfg.workerCommand) > 0
	case PlatformMacOS:
		p.native = func(ctx context.Context) error { return probeOffice(ctx, runner, cfg.officeBin) }
		p.bridge = func(ctx context.Context) error { return probeBridge(ctx, runner) }
	case PlatformLinux:
		p.native = func(ctx context.Context) error { return probeOffice(ctx, runner, cfg.officeBin) }
	}

	return p
}

// Probe runs every configured check and returns the resulting set.
func (p *hostProber) Probe(ctx context.Context) CapabilitySet {
	caps := CapabilitySet{Platform: p.platform}

	// Each goroutine writes its own field; Wait orders the writes before the read.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { caps.Native = p.check(gctx, BackendNative, p.native); return nil })
	g.Go(func() error { caps.Bridge = p.check(gctx, BackendBridge, p.bridge); return nil })
	g.Go(func() error { caps.Software = p.check(gctx, BackendSoftware, p.software); return nil })
	_ = g.Wait()

	caps.Isolation = caps.Native && p.isolation
	return caps
}

// check runs fn under the probe timeout. It fails closed: an error, a
// timeout, or a missing check all mean unavailable.
func (p *hostProber) check(ctx context.Context, backend string, fn probeFunc) bool {
	if fn == nil {
		return false
	}

	timeout := p.timeout
	if timeout <= 0 || timeout > MaxProbeTimeout {
		timeout = MaxProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- ErrProbeAmbiguous
			}
		}()
		done <- fn(probeCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			p.logger.Debug("backend unavailable", "backend", backend, "error", err)
			return false
		}
		return true
	case <-probeCtx.Done():
		p.logger.Debug("backend unavailable", "backend", backend, "error", ErrProbeAmbiguous)
		return false
	}
}

// staticProber reports a fixed capability set.
type staticProber CapabilitySet

func (s staticProber) Probe(context.Context) CapabilitySet { return CapabilitySet(s) }

// StaticProber returns a Prober that always reports caps. It is meant for
// forcing a backend, e.g. the software renderer only.
func StaticProber(caps CapabilitySet) Prober { return staticProber(caps) }
