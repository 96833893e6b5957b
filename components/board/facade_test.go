package board_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/components/board/fake"
	"go.viam.com/pinio/logging"
)

func requireNotImplemented(tb testing.TB, err error, op board.Operation) {
	tb.Helper()
	got, ok := board.IsNotImplemented(err)
	test.That(tb, ok, test.ShouldBeTrue)
	test.That(tb, got, test.ShouldEqual, op)
	test.That(tb, err.Error(), test.ShouldEqual, op.String()+" is not yet implemented")
}

func TestUnimplementedOperations(t *testing.T) {
	ctx := context.Background()
	platform := fake.NewPlatform(fake.DefaultPins()...)
	release := platform.BlockInit(0)
	b := newTestBoard(t, platform, board.Config{})

	check := func(t *testing.T) {
		t.Helper()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		for _, op := range board.Operations() {
			if op.Implemented() {
				continue
			}
			for _, req := range []board.Request{
				{Op: op},
				{Op: op, Pin: 0, Value: 1},
				{Op: op, Pin: 2, Mode: board.ModePWM},
				{Op: op, Pin: -5, Value: 99999, Handler: func(int) {}},
			} {
				_, err := b.Do(ctx, req)
				requireNotImplemented(t, err, op)
				_, err = b.Do(cancelled, req)
				requireNotImplemented(t, err, op)
			}
		}

		requireNotImplemented(t, b.ServoWrite(ctx, 0, 90), board.OpServoWrite)
		requireNotImplemented(t, b.ServoConfig(ctx, 0, time.Millisecond, 2*time.Millisecond), board.OpServoConfig)
		_, err := b.PulseIn(ctx, 0, board.High, time.Second)
		requireNotImplemented(t, err, board.OpPulseIn)
		requireNotImplemented(t, b.PulseOut(ctx, 0, board.High, time.Millisecond), board.OpPulseOut)
		requireNotImplemented(t, b.QueryPinState(ctx, 0, nil), board.OpQueryPinState)
		requireNotImplemented(t, b.SendI2CWriteRequest(ctx, 0x40, []byte{1}), board.OpSendI2CWriteRequest)
		requireNotImplemented(t, b.SendI2CReadRequest(ctx, 0x40, 2, nil), board.OpSendI2CReadRequest)
		requireNotImplemented(t, b.SendI2CConfig(ctx, 0), board.OpSendI2CConfig)
		requireNotImplemented(t, b.SendOneWireWriteAndRead(ctx, 1, nil, nil, 1, nil), board.OpSendOneWireWriteAndRead)
		requireNotImplemented(t, b.SendOneWireDelay(ctx, 1, time.Millisecond), board.OpSendOneWireDelay)
		requireNotImplemented(t, b.SendOneWireReset(ctx, 1), board.OpSendOneWireReset)
		requireNotImplemented(t, b.SendOneWireRead(ctx, 1, nil, 1, nil), board.OpSendOneWireRead)
		requireNotImplemented(t, b.SendOneWireSearch(ctx, 1, nil), board.OpSendOneWireSearch)
		requireNotImplemented(t, b.SendOneWireAlarmsSearch(ctx, 1, nil), board.OpSendOneWireAlarmsSearch)
		requireNotImplemented(t, b.SendOneWireConfig(ctx, 1, true), board.OpSendOneWireConfig)
		requireNotImplemented(t, b.StepperConfig(ctx, 0, []int{0, 1}, 200), board.OpStepperConfig)
		requireNotImplemented(t, b.StepperStep(ctx, 0, 10, 1.5), board.OpStepperStep)
		requireNotImplemented(t, board.Reset(), board.OpReset)
	}

	t.Run("while starting", check)
	release()
	test.That(t, b.Wait(ctx), test.ShouldBeNil)
	t.Run("when ready", check)

	// Unimplemented operations never touch the pins.
	for _, state := range b.PinStates() {
		test.That(t, state.Mode, test.ShouldEqual, board.ModeUninitialized)
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, fake.NewPlatform(fake.DefaultPins()...), board.Config{})
	test.That(t, b.Wait(ctx), test.ShouldBeNil)

	_, err := b.Do(ctx, board.Request{Op: board.OpPinMode, Pin: 0, Mode: board.ModeOutput})
	test.That(t, err, test.ShouldBeNil)
	_, err = b.Do(ctx, board.Request{Op: board.OpDigitalWrite, Pin: 0, Value: board.High})
	test.That(t, err, test.ShouldBeNil)
	resp, err := b.Do(ctx, board.Request{Op: board.OpDigitalRead, Pin: 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Value, test.ShouldEqual, board.High)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Do(cancelled, board.Request{Op: board.OpDigitalRead, Pin: 0})
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)

	_, err = b.Do(ctx, board.Request{Op: board.Operation(1000), Pin: 0})
	_, ok := board.IsNotImplemented(err)
	test.That(t, ok, test.ShouldBeTrue)
}

type valueRecorder struct {
	mu     sync.Mutex
	values []int
}

func (r *valueRecorder) handle(value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *valueRecorder) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func TestReporting(t *testing.T) {
	ctx := context.Background()
	mockClock := clock.NewMock()
	interval := 20 * time.Millisecond
	platform := fake.NewPlatform(fake.DefaultPins()...)
	b := newTestBoard(t, platform, board.Config{}, board.WithClock(mockClock))
	test.That(t, b.Wait(ctx), test.ShouldBeNil)

	t.Run("validates like a read", func(t *testing.T) {
		rec := &valueRecorder{}
		err := b.DigitalRead(ctx, 0, rec.handle)
		var mismatch *board.ModeMismatchError
		test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)

		err = b.AnalogRead(ctx, 1, rec.handle)
		var unsupported *board.UnsupportedModeError
		test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)

		err = b.AnalogRead(ctx, 2, rec.handle)
		var invalid *board.InvalidPinError
		test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)

		test.That(t, rec.get(), test.ShouldBeEmpty)
		test.That(t, b.StopReporting(0), test.ShouldBeFalse)
	})

	t.Run("digital", func(t *testing.T) {
		test.That(t, b.PinMode(ctx, 1, board.ModeInput), test.ShouldBeNil)
		line, _ := platform.Line(1)
		rec := &valueRecorder{}
		test.That(t, b.DigitalRead(ctx, 1, rec.handle), test.ShouldBeNil)
		test.That(t, rec.get(), test.ShouldResemble, []int{board.Low})

		// Unchanged samples are not reported.
		mockClock.Add(interval)
		line.Set(board.High)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			mockClock.Add(interval)
			test.That(tb, rec.get(), test.ShouldResemble, []int{board.Low, board.High})
		})

		line.Set(board.Low)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			mockClock.Add(interval)
			test.That(tb, rec.get(), test.ShouldResemble, []int{board.Low, board.High, board.Low})
		})

		test.That(t, b.StopReporting(1), test.ShouldBeTrue)
		line.Set(board.High)
		mockClock.Add(interval)
		test.That(t, rec.get(), test.ShouldResemble, []int{board.Low, board.High, board.Low})
	})

	t.Run("analog", func(t *testing.T) {
		test.That(t, b.PinMode(ctx, 3, board.ModeAnalog), test.ShouldBeNil)
		line, _ := platform.Line(3)
		line.Set(100)
		rec := &valueRecorder{}
		test.That(t, b.AnalogRead(ctx, 3, rec.handle), test.ShouldBeNil)
		test.That(t, rec.get(), test.ShouldResemble, []int{100})

		line.Set(512)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			mockClock.Add(interval)
			test.That(tb, rec.get(), test.ShouldResemble, []int{100, 512})
		})

		// A new handler replaces the old one.
		other := &valueRecorder{}
		test.That(t, b.AnalogRead(ctx, 3, other.handle), test.ShouldBeNil)
		line.Set(7)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			mockClock.Add(interval)
			test.That(tb, other.get(), test.ShouldResemble, []int{512, 7})
		})
		test.That(t, rec.get(), test.ShouldResemble, []int{100, 512})
	})

	t.Run("stops when the pin is no longer readable", func(t *testing.T) {
		test.That(t, b.PinMode(ctx, 0, board.ModeOutput), test.ShouldBeNil)
		rec := &valueRecorder{}
		test.That(t, b.DigitalRead(ctx, 0, rec.handle), test.ShouldBeNil)
		test.That(t, b.DigitalWrite(ctx, 0, board.High), test.ShouldBeNil)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			mockClock.Add(interval)
			test.That(tb, rec.get(), test.ShouldResemble, []int{board.Low, board.High})
		})

		test.That(t, b.PinMode(ctx, 0, board.ModePWM), test.ShouldBeNil)
		test.That(t, b.AnalogWrite(ctx, 0, 200), test.ShouldBeNil)
		for i := 0; i < 3; i++ {
			mockClock.Add(interval)
		}
		test.That(t, rec.get(), test.ShouldResemble, []int{board.Low, board.High})
	})
}

func TestReporterStopsItself(t *testing.T) {
	ctx := context.Background()
	mockClock := clock.NewMock()
	logger, logs := logging.NewObservedTestLogger(t)
	b, err := board.NewBoard(ctx, board.Config{}, fake.NewPlatform(fake.DefaultPins()...), logger, board.WithClock(mockClock))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, b.Close(ctx), test.ShouldBeNil)
	}()
	test.That(t, b.Wait(ctx), test.ShouldBeNil)

	test.That(t, b.PinMode(ctx, 0, board.ModeInput), test.ShouldBeNil)
	rec := &valueRecorder{}
	test.That(t, b.DigitalRead(ctx, 0, rec.handle), test.ShouldBeNil)
	test.That(t, b.PinMode(ctx, 0, board.ModePWM), test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mockClock.Add(board.DefaultReportIntervalMs * time.Millisecond)
		test.That(tb, logs.FilterMessage("stopped reporting").Len(), test.ShouldEqual, 1)
	})
	test.That(t, b.StopReporting(0), test.ShouldBeFalse)

	// A reporter started afterwards is tracked again.
	test.That(t, b.PinMode(ctx, 0, board.ModeInput), test.ShouldBeNil)
	test.That(t, b.DigitalRead(ctx, 0, rec.handle), test.ShouldBeNil)
	test.That(t, b.StopReporting(0), test.ShouldBeTrue)
}
