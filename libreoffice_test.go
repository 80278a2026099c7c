package kinten

// Notes:
// - officeSession runs against fakeRunner; the fake plays LibreOffice by
//   writing <outdir>/<stem>.pdf
// - resolveOfficeBin is only tested with an explicit path to stay host independent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fakeOffice returns a runner func that emulates `soffice --convert-to pdf`.
func fakeOffice(write bool) func(ctx context.Context, name string, args ...string) (string, string, error) {
	return func(ctx context.Context, name string, args ...string) (string, string, error) {
		i := slices.Index(args, "--outdir")
		if i < 0 || i+2 >= len(args) {
			return "", "bad args", errors.New("exit status 1")
		}
		outdir, input := args[i+1], args[len(args)-1]
		if write {
			pdf := filepath.Join(outdir, documentStem(input)+".pdf")
			if err := os.WriteFile(pdf, fakePDF, 0o644); err != nil {
				return "", "", err
			}
		}
		return "convert " + input + " -> pdf", "", nil
	}
}

func newTestOfficeSession(t *testing.T, runner *fakeRunner) *officeSession {
	t.Helper()

	bin := writeFile(t, t.TempDir(), "soffice", "#!/bin/sh\n")
	sess, err := (&officeDriver{bin: bin, runner: runner}).Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	s := sess.(*officeSession)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOfficeSession_Convert(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{run: fakeOffice(true)}
	s := newTestOfficeSession(t, runner)

	dir := t.TempDir()
	input := writeSimpleWorkbook(t, dir, "report.xlsx")
	output := filepath.Join(dir, "out.pdf")

	msg, err := s.Convert(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if msg == "" {
		t.Error("Convert() message is empty")
	}
	if data, err := os.ReadFile(output); err != nil || string(data) != string(fakePDF) {
		t.Errorf("output = %q, %v", data, err)
	}

	calls := runner.recorded()
	if len(calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(calls))
	}
	args := strings.Join(calls[0].args, " ")
	for _, want := range []string{"--headless", "--convert-to pdf", "-env:UserInstallation=file://"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestOfficeSession_NoOutput(t *testing.T) {
	t.Parallel()

	s := newTestOfficeSession(t, &fakeRunner{run: fakeOffice(false)})
	dir := t.TempDir()

	_, err := s.Convert(context.Background(), writeSimpleWorkbook(t, dir, "a.xlsx"), filepath.Join(dir, "a.pdf"))
	if !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("Convert() error = %v, want ErrEmptyOutput", err)
	}
}

func TestOfficeSession_ChildFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{run: func(context.Context, string, ...string) (string, string, error) {
		return "", "Error: source file could not be loaded", errors.New("exit status 1")
	}}
	s := newTestOfficeSession(t, runner)
	dir := t.TempDir()

	_, err := s.Convert(context.Background(), writeSimpleWorkbook(t, dir, "a.xlsx"), filepath.Join(dir, "a.pdf"))
	if err == nil || !strings.Contains(err.Error(), "could not be loaded") {
		t.Errorf("Convert() error = %v, want stderr in message", err)
	}
}

func TestOfficeSession_CloseRemovesScratch(t *testing.T) {
	t.Parallel()

	s := newTestOfficeSession(t, &fakeRunner{})
	if _, err := os.Stat(s.root); err != nil {
		t.Fatalf("scratch dir missing: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(s.root); !os.IsNotExist(err) {
		t.Errorf("scratch dir still present: %v", err)
	}
}

func TestResolveOfficeBin_ConfiguredMissing(t *testing.T) {
	t.Parallel()

	_, err := resolveOfficeBin(filepath.Join(t.TempDir(), "soffice"))
	if !errors.Is(err, ErrOfficeNotFound) {
		t.Errorf("resolveOfficeBin() error = %v, want ErrOfficeNotFound", err)
	}
}

func TestProbeOffice(t *testing.T) {
	t.Parallel()

	bin := writeFile(t, t.TempDir(), "soffice", "#!/bin/sh\n")

	tests := []struct {
		name    string
		stdout  string
		err     error
		wantErr bool
	}{
		{name: "version reported", stdout: "LibreOffice 7.6.4.1 60(Build:1)\n"},
		{name: "unexpected output", stdout: "something else", wantErr: true},
		{name: "command fails", err: errors.New("exit status 1"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{run: func(context.Context, string, ...string) (string, string, error) {
				return tt.stdout, "", tt.err
			}}
			err := probeOffice(context.Background(), runner, bin)
			if (err != nil) != tt.wantErr {
				t.Errorf("probeOffice() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()

	if got := fileURL("/tmp/profile"); got != "file:///tmp/profile" {
		t.Errorf("fileURL() = %q", got)
	}
}
