package kinten

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// driver is one strategy variant. Begin acquires the backend's scoped
// resource (an application instance, a temporary script, a browser) for one
// batch; the returned session is closed when the batch ends, whatever happened
// to individual files.
type driver interface {
	Strategy() Strategy
	Begin(ctx context.Context) (session, error)
}

// session converts files one at a time against a live backend.
type session interface {
	// Convert writes a PDF for input at output and returns a short
	// human-readable message. It must return once ctx is done.
	Convert(ctx context.Context, input, output string) (string, error)
	Close() error
}

// job is one validated document with its assigned output path.
type job struct {
	index  int
	input  string
	output string
}

// batchRunner drives one strategy over a list of jobs sequentially.
type batchRunner struct {
	driver  driver
	timeout time.Duration
	grace   time.Duration // zero means hangGrace
	logger  *slog.Logger
}

// run converts every job and returns exactly one outcome per job, in order.
// A session whose call exceeds its deadline is abandoned and replaced so a
// single hung document cannot stall the rest of the batch. Starting a
// session is held to the same deadline.
func (r *batchRunner) run(ctx context.Context, jobs []job) []ConversionOutcome {
	outcomes := make([]ConversionOutcome, len(jobs))
	strategy := r.driver.Strategy()

	var sess session
	closeSession := func() {
		if sess == nil {
			return
		}
		if err := sess.Close(); err != nil {
			r.logger.Warn("closing backend session", "strategy", strategy, "error", err)
		}
		sess = nil
	}
	defer closeSession()

	for i, j := range jobs {
		outcomes[i] = ConversionOutcome{Input: j.input, Output: j.output, Strategy: strategy}

		if err := ctx.Err(); err != nil {
			outcomes[i] = failedOutcome(outcomes[i], driverError(j.input, err))
			continue
		}

		if sess == nil {
			s, err := r.begin(ctx)
			if err != nil {
				if errors.Is(err, errAbandoned) {
					err = fmt.Errorf("%w after %s starting backend; backend abandoned", ErrTimeout, r.timeout)
				}
				r.logger.Info("backend start failed", "input", j.input, "strategy", strategy, "error", err)
				outcomes[i] = failedOutcome(outcomes[i], driverError(j.input, err))
				continue
			}
			sess = s
		}

		msg, err := r.convertOne(ctx, sess, j)
		if err != nil {
			if errors.Is(err, errAbandoned) {
				r.closeAbandoned(sess)
				sess = nil
				err = fmt.Errorf("%w after %s; backend abandoned", ErrTimeout, r.timeout)
			}
			r.logger.Info("file failed", "input", j.input, "strategy", strategy, "error", err)
			outcomes[i] = failedOutcome(outcomes[i], driverError(j.input, err))
			continue
		}

		if err := verifyOutput(j.output); err != nil {
			outcomes[i] = failedOutcome(outcomes[i], &FileError{Kind: KindOutput, Path: j.input, Err: err})
			continue
		}

		outcomes[i].Status = StatusConverted
		outcomes[i].Message = withPageCount(msg, j.output)
		r.logger.Debug("file converted", "input", j.input, "output", j.output, "strategy", strategy)
	}

	return outcomes
}

// errAbandoned marks a call that ignored its deadline.
var errAbandoned = errors.New("backend call abandoned after deadline")

// begin starts a session under the per-file deadline. A session that
// arrives after the call was abandoned is closed in the background.
func (r *batchRunner) begin(ctx context.Context) (session, error) {
	return callWithDeadline(ctx, r.timeout, r.graceWait(), r.driver.Begin, func(s session, err error) {
		if err == nil && s != nil {
			r.closeAbandoned(s)
		}
	})
}

// convertOne calls sess.Convert under the per-file deadline.
func (r *batchRunner) convertOne(ctx context.Context, sess session, j job) (string, error) {
	return callWithDeadline(ctx, r.timeout, r.graceWait(), func(ctx context.Context) (string, error) {
		return sess.Convert(ctx, j.input, j.output)
	}, nil)
}

// closeAbandoned closes s without waiting for it. A hung backend may never
// return from Close.
func (r *batchRunner) closeAbandoned(s session) {
	strategy := r.driver.Strategy()
	go func() {
		if err := s.Close(); err != nil {
			r.logger.Warn("closing abandoned backend session", "strategy", strategy, "error", err)
		}
	}()
}

func (r *batchRunner) graceWait() time.Duration {
	if r.grace <= 0 {
		return hangGrace
	}
	return r.grace
}

// callWithDeadline runs fn with a context that expires after timeout. If fn
// has not returned once the deadline plus grace has passed, it returns
// errAbandoned and hands fn's eventual result to late, when late is set.
func callWithDeadline[T any](ctx context.Context, timeout, grace time.Duration,
	fn func(context.Context) (T, error), late func(T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("internal error: %v", p)}
			}
		}()
		v, e := fn(callCtx)
		done <- result{val: v, err: e}
	}()

	var zero T
	select {
	case res := <-done:
		if res.err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return res.val, res.err
	case <-callCtx.Done():
	}

	// Deadline or cancellation hit while the call was still running.
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err == nil && late != nil {
			// Finished within grace; the result is not used.
			late(res.val, nil)
		}
	case <-timer.C:
		if late != nil {
			go func() {
				res := <-done
				late(res.val, res.err)
			}()
		}
		return zero, errAbandoned
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return zero, callCtx.Err()
}

// failedOutcome records fe on o.
func failedOutcome(o ConversionOutcome, fe *FileError) ConversionOutcome {
	o.Err = fe
	o.Message = fe.Err.Error()
	if fe.Kind == KindValidation {
		o.Status = StatusValidationError
	} else {
		o.Status = StatusFailed
	}
	return o
}
