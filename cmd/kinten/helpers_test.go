package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tomo0108/kinten"
	"github.com/Tomo0108/kinten/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment with captured I/O, a fixed clock and a
// prober reporting caps. It never probes the real host.
func newTestEnv(caps kinten.CapabilitySet) *testEnv {
	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Now:    func() time.Time { return fixedNow },
			Stdout: &stdout,
			Stderr: &stderr,
			Config: config.DefaultConfig(),
			Prober: kinten.StaticProber(caps),
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

// noBackends is a host where nothing can convert.
var noBackends = kinten.CapabilitySet{Platform: kinten.PlatformLinux}

// touch creates a file with content under dir and returns its path.
func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// decodeResult parses one batch result printed with --json.
func decodeResult(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	return got
}
