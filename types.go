package kinten

import (
	"encoding/json"
	"runtime"
)

// Platform identifies the host operating system family.
type Platform string

// Known platforms. Anything else probes as PlatformOther.
const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformOther   Platform = "other"
)

// HostPlatform maps runtime.GOOS to a Platform.
func HostPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	case "linux":
		return PlatformLinux
	default:
		return PlatformOther
	}
}

// Strategy names the conversion backend that produced an outcome.
type Strategy string

// Conversion strategies, in the order the policy prefers them.
const (
	StrategyNative         Strategy = "native"
	StrategyNativeIsolated Strategy = "native-isolated"
	StrategyBridge         Strategy = "bridge"
	StrategySoftware       Strategy = "software"
)

// Status is the final state of one input document.
type Status string

// Outcome statuses.
const (
	StatusConverted       Status = "converted"
	StatusFailed          Status = "failed"
	StatusValidationError Status = "validation-error"
)

// Backend names used in capability reports.
const (
	BackendNative   = "native"
	BackendBridge   = "bridge"
	BackendSoftware = "software"
)

// CapabilitySet records which backends are usable on this host.
// It is computed once per Convert call and never cached across calls.
type CapabilitySet struct {
	Platform Platform
	Native   bool // an office application can be automated
	Bridge   bool // an OS scripting bridge reaches a real office application
	Software bool // the software renderer's browser is available

	// Isolation reports that native conversions can run in a per-file
	// child process with a wall-clock timeout.
	Isolation bool
}

// Any reports whether at least one backend is usable.
func (c CapabilitySet) Any() bool {
	return c.Native || c.Bridge || c.Software
}

// Missing lists unavailable backends in policy order.
func (c CapabilitySet) Missing() []string {
	missing := []string{}
	if !c.Native {
		missing = append(missing, BackendNative)
	}
	if !c.Bridge {
		missing = append(missing, BackendBridge)
	}
	if !c.Software {
		missing = append(missing, BackendSoftware)
	}
	return missing
}

// CapabilityReport is the diagnostic form of a CapabilitySet.
type CapabilityReport struct {
	Platform Platform        `json:"platform"`
	Backends map[string]bool `json:"backends"`
	Missing  []string        `json:"missing"`
}

// Report builds the diagnostic report for c.
func (c CapabilitySet) Report() CapabilityReport {
	return CapabilityReport{
		Platform: c.Platform,
		Backends: map[string]bool{
			BackendNative:   c.Native,
			BackendBridge:   c.Bridge,
			BackendSoftware: c.Software,
		},
		Missing: c.Missing(),
	}
}

// Request is one batch: ordered input documents and a single output directory.
type Request struct {
	Inputs    []string
	OutputDir string
}

// ConversionOutcome is the result for one input document.
type ConversionOutcome struct {
	Input    string
	Output   string // empty until an output name is assigned
	Status   Status
	Message  string
	Strategy Strategy
	Err      error // nil when converted
}

// BatchResult aggregates the outcomes of one Convert call.
type BatchResult struct {
	RunID     string
	OutputDir string
	Strategy  Strategy // strategy selected for the batch; empty if none
	Outcomes  []ConversionOutcome

	Converted        int
	Failed           int
	ValidationErrors int

	// Success is false iff nothing converted and at least one file
	// failed or was rejected, or the batch was aborted.
	Success bool

	fatal error // batch-level precondition that aborted the run
}

// newBatchResult tallies outcomes into a fresh result.
// fatalResult is the result of a batch stopped before any file was
// attempted.
func fatalResult(runID, outputDir string, strategy Strategy, err error) *BatchResult {
	r := newBatchResult(runID, outputDir, strategy, []ConversionOutcome{})
	r.Success = false
	r.fatal = err
	return r
}

func newBatchResult(runID, outputDir string, strategy Strategy, outcomes []ConversionOutcome) *BatchResult {
	r := &BatchResult{
		RunID:     runID,
		OutputDir: outputDir,
		Strategy:  strategy,
		Outcomes:  outcomes,
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusConverted:
			r.Converted++
		case StatusValidationError:
			r.ValidationErrors++
		default:
			r.Failed++
		}
	}
	r.Success = !(r.Converted == 0 && (r.Failed > 0 || r.ValidationErrors > 0))
	return r
}

// Total returns the number of outcomes.
func (r *BatchResult) Total() int {
	return r.Converted + r.Failed + r.ValidationErrors
}

// Err returns the batch-level error that aborted the run, if any.
func (r *BatchResult) Err() error {
	return r.fatal
}

// Message summarizes a failed batch; empty when the batch succeeded.
func (r *BatchResult) Message() string {
	switch {
	case r.fatal != nil:
		return r.fatal.Error()
	case r.Success:
		return ""
	default:
		return "all files failed to convert"
	}
}

type convertedJSON struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Message string `json:"message"`
}

type problemJSON struct {
	Input   string `json:"input"`
	Message string `json:"message"`
}

type totalsJSON struct {
	Converted        int `json:"converted"`
	Failed           int `json:"failed"`
	ValidationErrors int `json:"validation_errors"`
}

type batchJSON struct {
	Converted        []convertedJSON `json:"converted"`
	Failed           []problemJSON   `json:"failed"`
	ValidationErrors []problemJSON   `json:"validation_errors"`
	Totals           totalsJSON      `json:"totals"`
	OutputFolder     string          `json:"output_folder"`
	Success          bool            `json:"success"`
	Strategy         Strategy        `json:"strategy,omitempty"`
	RunID            string          `json:"run_id,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// MarshalJSON encodes the result in its external, status-grouped shape.
func (r *BatchResult) MarshalJSON() ([]byte, error) {
	out := batchJSON{
		Converted:        []convertedJSON{},
		Failed:           []problemJSON{},
		ValidationErrors: []problemJSON{},
		Totals: totalsJSON{
			Converted:        r.Converted,
			Failed:           r.Failed,
			ValidationErrors: r.ValidationErrors,
		},
		OutputFolder: r.OutputDir,
		Success:      r.Success,
		Strategy:     r.Strategy,
		RunID:        r.RunID,
		Error:        r.Message(),
	}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusConverted:
			out.Converted = append(out.Converted, convertedJSON{Input: o.Input, Output: o.Output, Message: o.Message})
		case StatusValidationError:
			out.ValidationErrors = append(out.ValidationErrors, problemJSON{Input: o.Input, Message: o.Message})
		default:
			out.Failed = append(out.Failed, problemJSON{Input: o.Input, Message: o.Message})
		}
	}
	return json.Marshal(out)
}

// Phase is a step of the per-run state machine.
type Phase string

// Run phases, in order.
const (
	PhaseIdle             Phase = "idle"
	PhaseProbing          Phase = "probing"
	PhaseStrategySelected Phase = "strategy-selected"
	PhaseConverting       Phase = "converting"
	PhaseAggregating      Phase = "aggregating"
	PhaseDone             Phase = "done"
)
