//go:build windows

package kinten

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	excelProgID = "Excel.Application"

	xlTypePDF                         = 0
	xlQualityStandard                 = 0
	xlUpdateLinksNever                = 0
	xlDelimiterNone                   = 5 // Format argument of Workbooks.Open; ignored for xlsx
	msoAutomationSecurityForceDisable = 3

	// releaseTimeout bounds restoring settings and quitting Excel when a
	// session closes.
	releaseTimeout = 30 * time.Second
)

// sFalse is returned by CoInitializeEx when the thread was already initialized.
const sFalse = 0x00000001

// comThread runs COM calls on one OS thread initialized as a
// single-threaded apartment. Excel objects must only be touched from it.
type comThread struct {
	work chan func()
}

func startCOMThread() (*comThread, error) {
	t := &comThread{work: make(chan func())}
	ready := make(chan error, 1)
	go t.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *comThread) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			ready <- fmt.Errorf("%w: CoInitializeEx: %w", ErrApplicationStart, err)
			return
		}
	}
	defer ole.CoUninitialize()
	ready <- nil

	for fn := range t.work {
		fn()
	}
}

// do runs fn on the COM thread and waits for it or for ctx. When ctx ends
// first, fn keeps running on the thread and its result is dropped.
func (t *comThread) do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("internal error: %v", r)
			}
		}()
		done <- fn()
	}

	select {
	case t.work <- call:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop lets the thread exit after its current call.
func (t *comThread) stop() {
	close(t.work)
}

// probeExcel checks that Excel is registered and can be started and quit.
func probeExcel(ctx context.Context) error {
	thread, err := startCOMThread()
	if err != nil {
		return err
	}
	defer thread.stop()

	return thread.do(ctx, func() error {
		if _, err := ole.CLSIDFromProgID(excelProgID); err != nil {
			return fmt.Errorf("%w: %w", ErrProbeAmbiguous, err)
		}
		app, err := createExcel()
		if err != nil {
			return err
		}
		defer app.Release()
		_, err = oleutil.CallMethod(app, "Quit")
		return err
	})
}

func createExcel() (*ole.IDispatch, error) {
	unknown, err := oleutil.CreateObject(excelProgID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplicationStart, err)
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplicationStart, err)
	}
	return app, nil
}

// excelDriver automates one Excel instance per batch.
type excelDriver struct{}

func newExcelDriver() driver { return excelDriver{} }

func (excelDriver) Strategy() Strategy { return StrategyNative }

// Begin starts Excel and silences it. The settings it changes are restored
// by Close.
func (excelDriver) Begin(ctx context.Context) (session, error) {
	thread, err := startCOMThread()
	if err != nil {
		return nil, err
	}

	s := &excelSession{thread: thread}
	err = thread.do(ctx, func() error {
		app, err := createExcel()
		if err != nil {
			return err
		}
		s.app = app
		return s.suppress()
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// appSetting is an application property changed for the batch.
type appSetting struct {
	name  string
	quiet any
	saved any
}

type excelSession struct {
	thread   *comThread
	app      *ole.IDispatch
	settings []appSetting
}

// suppress records and overrides every setting that could raise a prompt.
func (s *excelSession) suppress() error {
	settings := []appSetting{
		{name: "DisplayAlerts", quiet: false},
		{name: "AskToUpdateLinks", quiet: false},
		{name: "AutomationSecurity", quiet: msoAutomationSecurityForceDisable},
		{name: "EnableEvents", quiet: false},
		{name: "ScreenUpdating", quiet: false},
		{name: "Visible", quiet: false},
	}
	for i := range settings {
		v, err := oleutil.GetProperty(s.app, settings[i].name)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrApplicationStart, settings[i].name, err)
		}
		settings[i].saved = v.Value()
		_ = v.Clear()

		if _, err := oleutil.PutProperty(s.app, settings[i].name, settings[i].quiet); err != nil {
			return fmt.Errorf("%w: setting %s: %w", ErrApplicationStart, settings[i].name, err)
		}
		s.settings = append(s.settings, settings[i])
	}
	return nil
}

// Convert opens input read-only, exports it with its own page setup and
// closes it without saving.
func (s *excelSession) Convert(ctx context.Context, input, output string) (string, error) {
	in, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return "", err
	}

	err = s.thread.do(ctx, func() error {
		books, err := oleutil.GetProperty(s.app, "Workbooks")
		if err != nil {
			return err
		}
		workbooks := books.ToIDispatch()
		defer workbooks.Release()

		// Filename, UpdateLinks, ReadOnly, Format, Password, WriteResPassword, IgnoreReadOnlyRecommended
		opened, err := oleutil.CallMethod(workbooks, "Open", in, xlUpdateLinksNever, true, xlDelimiterNone, "", "", true)
		if err != nil {
			return fmt.Errorf("opening workbook: %w", err)
		}
		wb := opened.ToIDispatch()
		defer wb.Release()
		defer func() { _, _ = oleutil.CallMethod(wb, "Close", false) }()

		// Type, Filename, Quality, IncludeDocProperties, IgnorePrintAreas
		if _, err := oleutil.CallMethod(wb, "ExportAsFixedFormat", xlTypePDF, out, xlQualityStandard, true, false); err != nil {
			return fmt.Errorf("exporting PDF: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return "exported with Excel", nil
}

// Close restores the saved settings, quits Excel and stops the COM thread.
func (s *excelSession) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	err := s.thread.do(ctx, func() error {
		if s.app == nil {
			return nil
		}
		var errs []error
		for i := len(s.settings) - 1; i >= 0; i-- {
			if _, err := oleutil.PutProperty(s.app, s.settings[i].name, s.settings[i].saved); err != nil {
				errs = append(errs, fmt.Errorf("restoring %s: %w", s.settings[i].name, err))
			}
		}
		if _, err := oleutil.CallMethod(s.app, "Quit"); err != nil {
			errs = append(errs, fmt.Errorf("quitting Excel: %w", err))
		}
		s.app.Release()
		s.app = nil
		return errors.Join(errs...)
	})
	s.thread.stop()
	return err
}
