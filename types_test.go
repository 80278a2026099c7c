package kinten

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestPlatformFor(t *testing.T) {
	t.Parallel()

	tests := map[string]Platform{
		"windows": PlatformWindows,
		"darwin":  PlatformMacOS,
		"linux":   PlatformLinux,
		"freebsd": PlatformOther,
		"":        PlatformOther,
	}
	for goos, want := range tests {
		if got := platformFor(goos); got != want {
			t.Errorf("platformFor(%q) = %q, want %q", goos, got, want)
		}
	}
}

func TestCapabilitySet_Report(t *testing.T) {
	t.Parallel()

	caps := CapabilitySet{Platform: PlatformMacOS, Bridge: true, Software: true}

	if !caps.Any() {
		t.Error("Any() = false, want true")
	}
	report := caps.Report()
	if report.Platform != PlatformMacOS {
		t.Errorf("Platform = %q", report.Platform)
	}
	want := map[string]bool{BackendNative: false, BackendBridge: true, BackendSoftware: true}
	if !reflect.DeepEqual(report.Backends, want) {
		t.Errorf("Backends = %v, want %v", report.Backends, want)
	}
	if !reflect.DeepEqual(report.Missing, []string{BackendNative}) {
		t.Errorf("Missing = %v, want [native]", report.Missing)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	const wantJSON = `{"platform":"macos","backends":{"bridge":true,"native":false,"software":true},"missing":["native"]}`
	if string(data) != wantJSON {
		t.Errorf("JSON = %s, want %s", data, wantJSON)
	}
}

func TestCapabilitySet_NoneAvailable(t *testing.T) {
	t.Parallel()

	caps := CapabilitySet{Platform: PlatformOther}
	if caps.Any() {
		t.Error("Any() = true, want false")
	}
	if got := caps.Missing(); len(got) != 3 {
		t.Errorf("Missing() = %v, want all three", got)
	}
}

func TestNewBatchResult_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		statuses []Status
		want     bool
	}{
		{name: "empty batch", statuses: nil, want: true},
		{name: "all converted", statuses: []Status{StatusConverted, StatusConverted}, want: true},
		{name: "partial", statuses: []Status{StatusConverted, StatusFailed, StatusValidationError}, want: true},
		{name: "all failed", statuses: []Status{StatusFailed}, want: false},
		{name: "only validation errors", statuses: []Status{StatusValidationError}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcomes := make([]ConversionOutcome, len(tt.statuses))
			for i, s := range tt.statuses {
				outcomes[i] = ConversionOutcome{Status: s}
			}
			res := newBatchResult("run", "/out", StrategyNative, outcomes)
			if res.Success != tt.want {
				t.Errorf("Success = %v, want %v", res.Success, tt.want)
			}
			if res.Total() != len(tt.statuses) {
				t.Errorf("Total() = %d, want %d", res.Total(), len(tt.statuses))
			}
		})
	}
}

func TestBatchResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	res := newBatchResult("run-1", "/out", StrategyNative, []ConversionOutcome{
		{Input: "/in/a.xlsx", Output: "/out/a.pdf", Status: StatusConverted, Message: "ok"},
		{Input: "/in/b.xlsx", Output: "/out/b.pdf", Status: StatusFailed, Message: "boom"},
		{Input: "/in/c.xlsx", Status: StatusValidationError, Message: "file is empty"},
	})

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"converted", "failed", "validation_errors", "totals", "output_folder", "success"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if _, ok := got["error"]; ok {
		t.Errorf("successful batch has an error key: %s", data)
	}

	converted := got["converted"].([]any)[0].(map[string]any)
	if converted["input"] != "/in/a.xlsx" || converted["output"] != "/out/a.pdf" || converted["message"] != "ok" {
		t.Errorf("converted entry = %v", converted)
	}
	failed := got["failed"].([]any)[0].(map[string]any)
	if _, hasOutput := failed["output"]; hasOutput {
		t.Errorf("failed entry has output: %v", failed)
	}
	totals := got["totals"].(map[string]any)
	if totals["converted"] != 1.0 || totals["failed"] != 1.0 || totals["validation_errors"] != 1.0 {
		t.Errorf("totals = %v", totals)
	}
}

func TestBatchResult_MarshalJSON_Fatal(t *testing.T) {
	t.Parallel()

	res := newBatchResult("run-1", "/out", "", []ConversionOutcome{})
	res.Success = false
	res.fatal = ErrNoBackendAvailable

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	const want = `{"converted":[],"failed":[],"validation_errors":[],` +
		`"totals":{"converted":0,"failed":0,"validation_errors":0},` +
		`"output_folder":"/out","success":false,"run_id":"run-1","error":"no conversion backend available"}`
	if string(data) != want {
		t.Errorf("JSON =\n%s\nwant\n%s", data, want)
	}
	if !errors.Is(res.Err(), ErrNoBackendAvailable) {
		t.Errorf("Err() = %v", res.Err())
	}
}
