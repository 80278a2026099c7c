// Package kinten converts spreadsheet workbooks (.xlsx, .xlsm, .xls) to PDF
// with whatever backend the host provides.
//
// # Quick Start
//
// Create a converter and convert a batch into one output directory:
//
//	conv, err := kinten.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, kinten.Request{
//	    Inputs:    []string{"/data/report.xlsx", "/data/budget.xlsm"},
//	    OutputDir: "/data/pdf",
//	})
//	if err != nil {
//	    log.Fatal(err) // no backend, or the output directory is unusable
//	}
//	for _, o := range result.Outcomes {
//	    fmt.Println(o.Status, o.Input, o.Output, o.Message)
//	}
//
// Per-file failures never surface as an error from Convert. They are
// recorded in the result, which holds exactly one outcome per input.
//
// # Strategies
//
// Each Convert call probes the host once and picks one strategy for the
// whole batch:
//
//  1. native: the office application exports the workbook with its own
//     page setup. Excel through COM on Windows, LibreOffice elsewhere.
//     On Windows each file runs in a child process (native-isolated)
//     when a worker command is configured with WithWorkerCommand.
//  2. bridge: Microsoft Excel driven through osascript on macOS.
//  3. software: cell values laid out as tables and printed to A4 by
//     headless Chrome (go-rod). Page setup, formulas and formatting are
//     not reproduced.
//
// When none is available Convert returns ErrNoBackendAvailable without
// touching the output directory. WithSoftwareFallback retries files the
// selected backend failed on with the software renderer.
//
// # Timeouts
//
// Every file is bounded by WithTimeout (90 s by default). Child processes
// are killed with their process group. An in-process backend that does not
// return shortly after its deadline is abandoned and replaced, so a hung
// workbook fails alone and the batch continues.
//
// # Output Names
//
// Outputs are named <stem>.pdf. A name already taken on disk or earlier in
// the batch gets a _YYYYMMDD_HHmmss suffix; existing files are never
// overwritten.
//
// # Parallel Processing
//
// RunBatches converts independent requests concurrently. Each request must
// use its own output directory.
//
// # Browser Requirements
//
// The software strategy needs Chrome or Chromium. It uses WithBrowserBin,
// then ROD_BROWSER_BIN, then a browser found on the system; it never
// downloads one. Set ROD_NO_SANDBOX=1 in containers.
package kinten
