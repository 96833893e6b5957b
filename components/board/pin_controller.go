package board

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/pinio/logging"
)

// Status is the initialization status of a pin.
type Status int

// The pin initialization states. Pending moves to Ready or Failed exactly once; Failed is
// terminal.
const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// PinState is a snapshot of one pin.
type PinState struct {
	Descriptor PinDescriptor
	Mode       Mode
	Value      int
	Status     Status
	Reason     error
}

// A PinController owns the runtime state of a single capable pin: its mode, its last value and
// the line opened for it. All methods are safe to call concurrently.
type PinController struct {
	desc        PinDescriptor
	driver      PinDriver
	reapplyMode bool
	logger      logging.Logger

	mu     sync.Mutex
	status Status
	reason error
	closed bool
	mode   Mode
	value  int
	line   PinLine
}

// NewPinController returns a pending controller for desc. Nothing touches the hardware until
// Init is called. When reapplyMode is set, SetMode reconfigures the line even if the pin is
// already in the requested mode.
func NewPinController(desc PinDescriptor, driver PinDriver, reapplyMode bool, logger logging.Logger) *PinController {
	return &PinController{
		desc:        desc.clone(),
		driver:      driver,
		reapplyMode: reapplyMode,
		logger:      logger,
		status:      StatusPending,
		mode:        ModeUninitialized,
	}
}

// Descriptor returns the descriptor of the controlled pin.
func (pc *PinController) Descriptor() PinDescriptor {
	return pc.desc.clone()
}

// Init opens the pin's line. It may only be called once; a failure leaves the controller
// permanently failed.
func (pc *PinController) Init(ctx context.Context) error {
	pc.mu.Lock()
	if pc.status != StatusPending || pc.closed {
		status := pc.status
		pc.mu.Unlock()
		return errors.Errorf("pin %d cannot be initialized from status %s", pc.desc.Index, status)
	}
	pc.mu.Unlock()

	// The driver may block for a while, so don't hold the lock while it works.
	line, err := pc.driver.OpenPin(ctx, pc.desc)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err != nil {
		pc.status = StatusFailed
		pc.reason = err
		return &PinInitError{Pin: pc.desc.Index, Err: err}
	}
	if line == nil {
		pc.status = StatusFailed
		pc.reason = errors.New("driver returned no line")
		return &PinInitError{Pin: pc.desc.Index, Err: pc.reason}
	}
	if pc.closed {
		// Closed while the driver was working: release the line straight away.
		pc.status = StatusFailed
		pc.reason = ErrBoardClosed
		return multierr.Combine(&PinInitError{Pin: pc.desc.Index, Err: ErrBoardClosed}, line.Close())
	}
	pc.line = line
	pc.status = StatusReady
	return nil
}

// must be called with the lock held.
func (pc *PinController) readyLocked() error {
	if pc.closed {
		return ErrBoardClosed
	}
	if pc.status != StatusReady {
		return &NotReadyError{Pin: pc.desc.Index, Status: pc.status, Reason: pc.reason}
	}
	return nil
}

// Mode returns the pin's current mode.
func (pc *PinController) Mode() Mode {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.mode
}

// SetMode configures the pin into mode.
func (pc *PinController) SetMode(mode Mode) error {
	if !pc.desc.Supports(mode) {
		return &UnsupportedModeError{Pin: pc.desc.Index, Mode: mode}
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.readyLocked(); err != nil {
		return err
	}
	if mode == pc.mode && !pc.reapplyMode {
		return nil
	}
	if err := pc.line.SetMode(mode); err != nil {
		return errors.Wrapf(err, "could not set pin %d to %s", pc.desc.Index, mode)
	}
	if pc.mode != mode {
		// Outputs start low and PWM starts off; inputs get their value from the next read.
		pc.value = 0
	}
	pc.mode = mode
	pc.logger.Debugw("pin mode set", "pin", pc.desc.Index, "mode", mode.String())
	return nil
}

// must be called with the lock held.
func (pc *PinController) requireModeLocked(modes ...Mode) error {
	for _, m := range modes {
		if pc.mode == m {
			return nil
		}
	}
	return &ModeMismatchError{Pin: pc.desc.Index, Current: pc.mode, Want: modes}
}

// ReadDigital returns the pin's digital value. Inputs are sampled; outputs report the last value
// written.
func (pc *PinController) ReadDigital() (int, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.readyLocked(); err != nil {
		return 0, err
	}
	if err := pc.requireModeLocked(ModeInput, ModeOutput); err != nil {
		return 0, err
	}
	if pc.mode == ModeOutput {
		return pc.value, nil
	}

	sample, err := pc.line.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "could not read pin %d", pc.desc.Index)
	}
	value := Low
	if sample != 0 {
		value = High
	}
	pc.value = value
	return value, nil
}

// WriteDigital drives an output pin Low or High.
func (pc *PinController) WriteDigital(value int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.readyLocked(); err != nil {
		return err
	}
	if err := pc.requireModeLocked(ModeOutput); err != nil {
		return err
	}
	if value != Low && value != High {
		return &OutOfRangeError{Pin: pc.desc.Index, Value: value, Min: Low, Max: High}
	}
	if err := pc.line.Write(value); err != nil {
		return errors.Wrapf(err, "could not write pin %d", pc.desc.Index)
	}
	pc.value = value
	return nil
}

// ReadAnalog returns the pin's analog value. Analog inputs are sampled; PWM outputs report the
// last value written.
func (pc *PinController) ReadAnalog() (int, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.readyLocked(); err != nil {
		return 0, err
	}
	if err := pc.requireModeLocked(ModeAnalog, ModePWM); err != nil {
		return 0, err
	}
	if pc.mode == ModePWM {
		return pc.value, nil
	}

	sample, err := pc.line.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "could not read pin %d", pc.desc.Index)
	}
	if sample < 0 || sample > pc.desc.AnalogMax() {
		return 0, &OutOfRangeError{Pin: pc.desc.Index, Value: sample, Min: 0, Max: pc.desc.AnalogMax()}
	}
	pc.value = sample
	return sample, nil
}

// WriteAnalog sets a PWM pin's output value.
func (pc *PinController) WriteAnalog(value int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if err := pc.readyLocked(); err != nil {
		return err
	}
	if err := pc.requireModeLocked(ModePWM); err != nil {
		return err
	}
	if value < 0 || value > pc.desc.PWMMax() {
		return &OutOfRangeError{Pin: pc.desc.Index, Value: value, Min: 0, Max: pc.desc.PWMMax()}
	}
	if err := pc.line.Write(value); err != nil {
		return errors.Wrapf(err, "could not write pin %d", pc.desc.Index)
	}
	pc.value = value
	return nil
}

// State returns a snapshot of the pin.
func (pc *PinController) State() PinState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return PinState{
		Descriptor: pc.desc.clone(),
		Mode:       pc.mode,
		Value:      pc.value,
		Status:     pc.status,
		Reason:     pc.reason,
	}
}

// Close releases the pin's line. Every later operation fails with ErrBoardClosed.
func (pc *PinController) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.closed = true
	if pc.line == nil {
		return nil
	}
	err := pc.line.Close()
	pc.line = nil
	return err
}
