package board

import (
	"context"
	"time"
)

// A Request asks the board to perform one operation. Only the fields the operation uses are read.
type Request struct {
	Op    Operation
	Pin   int
	Mode  Mode
	Value int
	// Handler turns a read into a continuous report; see DigitalRead.
	Handler ReadHandler
}

// A Response carries the result of a read.
type Response struct {
	Value int
}

// Do performs req. Operations the board does not implement fail with a NotImplementedError before
// anything else is looked at. Everything else is validated in order: the pin must be a capable
// pin (InvalidPinError), it must support a mode the operation needs (UnsupportedModeError), the
// board must be ready (NotReadyError), and finally the pin's controller checks its current mode
// and the value.
func (b *Board) Do(ctx context.Context, req Request) (Response, error) {
	if req.Op.Implemented() {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
	}

	switch req.Op {
	case OpPinMode:
		pc, err := b.resolve(req.Pin, req.Mode)
		if err != nil {
			return Response{}, err
		}
		return Response{}, pc.SetMode(req.Mode)

	case OpDigitalRead, OpAnalogRead:
		analog := req.Op == OpAnalogRead
		pc, err := b.resolve(req.Pin, req.Op.RequiredModes()...)
		if err != nil {
			return Response{}, err
		}
		var value int
		switch {
		case req.Handler != nil:
			value, err = b.startReporter(pc, analog, req.Handler)
		case analog:
			value, err = pc.ReadAnalog()
		default:
			value, err = pc.ReadDigital()
		}
		return Response{Value: value}, err

	case OpDigitalWrite:
		pc, err := b.resolve(req.Pin, req.Op.RequiredModes()...)
		if err != nil {
			return Response{}, err
		}
		return Response{}, pc.WriteDigital(req.Value)

	case OpAnalogWrite:
		pc, err := b.resolve(req.Pin, req.Op.RequiredModes()...)
		if err != nil {
			return Response{}, err
		}
		return Response{}, pc.WriteAnalog(req.Value)

	case OpServoWrite, OpServoConfig, OpPulseIn, OpPulseOut, OpQueryPinState,
		OpSendI2CWriteRequest, OpSendI2CReadRequest, OpSendI2CConfig,
		OpSendOneWireWriteAndRead, OpSendOneWireDelay, OpSendOneWireReset, OpSendOneWireRead,
		OpSendOneWireSearch, OpSendOneWireAlarmsSearch, OpSendOneWireConfig,
		OpStepperConfig, OpStepperStep, OpReset:
		return Response{}, &NotImplementedError{Op: req.Op}

	default:
		return Response{}, &NotImplementedError{Op: req.Op}
	}
}

// resolve finds the controller for pin and checks, without looking at the pin's current mode,
// that it could serve an operation needing one of modes.
func (b *Board) resolve(pin int, modes ...Mode) (*PinController, error) {
	pc, err := b.controller(pin)
	if err != nil {
		return nil, err
	}
	if len(modes) != 0 && !pc.desc.SupportsAny(modes...) {
		return nil, &UnsupportedModeError{Pin: pin, Mode: modes[0]}
	}
	if err := b.checkReady(pin); err != nil {
		return nil, err
	}
	return pc, nil
}

// PinMode puts pin into mode.
func (b *Board) PinMode(ctx context.Context, pin int, mode Mode) error {
	_, err := b.Do(ctx, Request{Op: OpPinMode, Pin: pin, Mode: mode})
	return err
}

// ReadDigital returns the digital value of pin, which must be in ModeInput or ModeOutput.
func (b *Board) ReadDigital(ctx context.Context, pin int) (int, error) {
	resp, err := b.Do(ctx, Request{Op: OpDigitalRead, Pin: pin})
	return resp.Value, err
}

// DigitalRead validates like ReadDigital and then reports the pin's value to handler: once
// straight away, from the calling goroutine, and after that whenever a sample differs from the
// previous one. Reporting stops when the pin leaves its readable modes, when StopReporting is
// called or when the board closes.
func (b *Board) DigitalRead(ctx context.Context, pin int, handler ReadHandler) error {
	if handler == nil {
		handler = func(int) {}
	}
	_, err := b.Do(ctx, Request{Op: OpDigitalRead, Pin: pin, Handler: handler})
	return err
}

// DigitalWrite drives pin, which must be in ModeOutput, to Low or High.
func (b *Board) DigitalWrite(ctx context.Context, pin, value int) error {
	_, err := b.Do(ctx, Request{Op: OpDigitalWrite, Pin: pin, Value: value})
	return err
}

// ReadAnalog returns the analog value of pin, which must be in ModeAnalog or ModePWM.
func (b *Board) ReadAnalog(ctx context.Context, pin int) (int, error) {
	resp, err := b.Do(ctx, Request{Op: OpAnalogRead, Pin: pin})
	return resp.Value, err
}

// AnalogRead is the analog counterpart of DigitalRead.
func (b *Board) AnalogRead(ctx context.Context, pin int, handler ReadHandler) error {
	if handler == nil {
		handler = func(int) {}
	}
	_, err := b.Do(ctx, Request{Op: OpAnalogRead, Pin: pin, Handler: handler})
	return err
}

// AnalogWrite sets the output value of pin, which must be in ModePWM.
func (b *Board) AnalogWrite(ctx context.Context, pin, value int) error {
	_, err := b.Do(ctx, Request{Op: OpAnalogWrite, Pin: pin, Value: value})
	return err
}

func (b *Board) unimplemented(ctx context.Context, op Operation, pin int) error {
	_, err := b.Do(ctx, Request{Op: op, Pin: pin})
	return err
}

// ServoWrite is not implemented.
func (b *Board) ServoWrite(ctx context.Context, pin, angle int) error {
	return b.unimplemented(ctx, OpServoWrite, pin)
}

// ServoConfig is not implemented.
func (b *Board) ServoConfig(ctx context.Context, pin int, minPulse, maxPulse time.Duration) error {
	return b.unimplemented(ctx, OpServoConfig, pin)
}

// PulseIn is not implemented.
func (b *Board) PulseIn(ctx context.Context, pin, value int, timeout time.Duration) (time.Duration, error) {
	return 0, b.unimplemented(ctx, OpPulseIn, pin)
}

// PulseOut is not implemented.
func (b *Board) PulseOut(ctx context.Context, pin, value int, width time.Duration) error {
	return b.unimplemented(ctx, OpPulseOut, pin)
}

// QueryPinState is not implemented; PinState returns the same information synchronously.
func (b *Board) QueryPinState(ctx context.Context, pin int, handler func(PinState)) error {
	return b.unimplemented(ctx, OpQueryPinState, pin)
}

// SendI2CWriteRequest is not implemented.
func (b *Board) SendI2CWriteRequest(ctx context.Context, address int, data []byte) error {
	return b.unimplemented(ctx, OpSendI2CWriteRequest, 0)
}

// SendI2CReadRequest is not implemented.
func (b *Board) SendI2CReadRequest(ctx context.Context, address, count int, handler func([]byte)) error {
	return b.unimplemented(ctx, OpSendI2CReadRequest, 0)
}

// SendI2CConfig is not implemented.
func (b *Board) SendI2CConfig(ctx context.Context, delay time.Duration) error {
	return b.unimplemented(ctx, OpSendI2CConfig, 0)
}

// SendOneWireWriteAndRead is not implemented.
func (b *Board) SendOneWireWriteAndRead(
	ctx context.Context, pin int, device, data []byte, count int, handler func([]byte),
) error {
	return b.unimplemented(ctx, OpSendOneWireWriteAndRead, pin)
}

// SendOneWireDelay is not implemented.
func (b *Board) SendOneWireDelay(ctx context.Context, pin int, delay time.Duration) error {
	return b.unimplemented(ctx, OpSendOneWireDelay, pin)
}

// SendOneWireReset is not implemented.
func (b *Board) SendOneWireReset(ctx context.Context, pin int) error {
	return b.unimplemented(ctx, OpSendOneWireReset, pin)
}

// SendOneWireRead is not implemented.
func (b *Board) SendOneWireRead(ctx context.Context, pin int, device []byte, count int, handler func([]byte)) error {
	return b.unimplemented(ctx, OpSendOneWireRead, pin)
}

// SendOneWireSearch is not implemented.
func (b *Board) SendOneWireSearch(ctx context.Context, pin int, handler func([][]byte)) error {
	return b.unimplemented(ctx, OpSendOneWireSearch, pin)
}

// SendOneWireAlarmsSearch is not implemented.
func (b *Board) SendOneWireAlarmsSearch(ctx context.Context, pin int, handler func([][]byte)) error {
	return b.unimplemented(ctx, OpSendOneWireAlarmsSearch, pin)
}

// SendOneWireConfig is not implemented.
func (b *Board) SendOneWireConfig(ctx context.Context, pin int, parasiticPower bool) error {
	return b.unimplemented(ctx, OpSendOneWireConfig, pin)
}

// StepperConfig is not implemented.
func (b *Board) StepperConfig(ctx context.Context, device int, pins []int, stepsPerRev int) error {
	return b.unimplemented(ctx, OpStepperConfig, 0)
}

// StepperStep is not implemented.
func (b *Board) StepperStep(ctx context.Context, device, steps int, speed float64) error {
	return b.unimplemented(ctx, OpStepperStep, 0)
}
