package board

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/pinio/utils"
)

// A ReadHandler receives the values reported for a pin.
type ReadHandler func(value int)

type reporter struct {
	workers utils.StoppableWorkers
}

func (r *reporter) stop() {
	r.workers.Stop()
}

// startReporter delivers the current value of pc to handler right away, then samples the pin on
// the board's clock and calls handler again every time the value changes. It replaces any
// reporter already running for the pin.
func (b *Board) startReporter(pc *PinController, analog bool, handler ReadHandler) (int, error) {
	read := pc.ReadDigital
	if analog {
		read = pc.ReadAnalog
	}
	first, err := read()
	if err != nil {
		return 0, err
	}
	handler(first)

	pin := pc.desc.Index
	last := first
	r := &reporter{}
	r.workers = utils.NewStoppableTickerWorker(b.clock, b.reportInterval, func(ctx context.Context) bool {
		value, err := read()
		if err != nil {
			var mismatch *ModeMismatchError
			if errors.As(err, &mismatch) || errors.Is(err, ErrBoardClosed) {
				b.forgetReporter(pin, r)
				b.logger.Debugw("stopped reporting", "pin", pin, "reason", err)
				return false
			}
			b.logger.Warnw("could not sample pin", "pin", pin, "error", err)
			return true
		}
		if value != last {
			last = value
			handler(value)
		}
		return true
	})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		r.stop()
		return 0, ErrBoardClosed
	}
	old := b.reporters[pin]
	b.reporters[pin] = r
	b.mu.Unlock()

	if old != nil {
		old.stop()
	}
	b.logger.Debugw("reporting", "pin", pin, "analog", analog, "interval", b.reportInterval)
	return first, nil
}

// forgetReporter drops r from the running reporters unless it has already been replaced.
func (b *Board) forgetReporter(pin int, r *reporter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reporters[pin] == r {
		delete(b.reporters, pin)
	}
}

// StopReporting stops the reporter running for pin, if any, and reports whether there was one.
// It waits for the reporter to exit, so it must not be called from inside a ReadHandler.
func (b *Board) StopReporting(pin int) bool {
	b.mu.Lock()
	r, ok := b.reporters[pin]
	delete(b.reporters, pin)
	b.mu.Unlock()
	if !ok {
		return false
	}
	r.stop()
	return true
}
