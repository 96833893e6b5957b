//go:build linux

// This file is for GPIO lines using the ioctl interface, indirectly by way of mkch's gpio package.

package genericlinux

import (
	"context"
	"sync"
	"time"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/logging"
	rutils "go.viam.com/pinio/utils"
)

// gpioLine is the part of a requested kernel line that ioctlLine drives.
type gpioLine interface {
	Value() (byte, error)
	SetValue(value byte) error
	Close() error
}

type ioctlLine struct {
	// These values should be considered immutable.
	devicePath string
	offset     uint32
	consumer   string
	desc       board.PinDescriptor
	pwmFreqHz  uint

	// These values are mutable. Lock the mutex when interacting with them.
	mu           sync.Mutex
	line         gpioLine
	mode         board.Mode
	pwmRunning   bool
	pwmDutyCycle float64
	// pwmGeneration changes every time PWM stops. A loop started under an older generation
	// exits instead of toggling the line.
	pwmGeneration uint64

	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
	logger                  logging.Logger
}

// openIoctlLine requests the line as an input, which is the state least likely to upset whatever
// is wired to it. SetMode requests it again with the right direction.
func openIoctlLine(devicePath string, offset uint32, consumer string, desc board.PinDescriptor,
	pwmFreqHz uint, logger logging.Logger,
) (board.PinLine, error) {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	pin := &ioctlLine{
		devicePath: devicePath,
		offset:     offset,
		consumer:   consumer,
		desc:       desc,
		pwmFreqHz:  pwmFreqHz,
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
		logger:     logger,
	}
	guard := rutils.NewGuard(cancelFunc)
	defer guard.OnFail()

	if err := pin.requestLine(gpio.Input); err != nil {
		return nil, errors.Wrapf(err, "cannot open line %d of %s", offset, devicePath)
	}
	guard.Success()
	return pin, nil
}

// requestLine (re)requests the line from the kernel with flags. The mutex must be held, or the
// line not yet shared.
func (pin *ioctlLine) requestLine(flags gpio.LineFlag) error {
	if pin.line != nil {
		if err := pin.line.Close(); err != nil {
			return err
		}
		pin.line = nil
	}

	chip, err := gpio.OpenChip(pin.devicePath)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	// The 0 means an output line starts low.
	line, err := chip.OpenLine(pin.offset, 0, flags, pin.consumer)
	if err != nil {
		return err
	}
	pin.line = line
	return nil
}

func (pin *ioctlLine) SetMode(mode board.Mode) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	pin.stopSoftwarePWM()
	pin.pwmDutyCycle = 0

	flags := gpio.Input
	switch mode {
	case board.ModeInput:
	case board.ModeOutput, board.ModePWM:
		flags = gpio.Output
	default:
		return errors.Errorf("a Linux GPIO line cannot be put into mode %s", mode)
	}
	if err := pin.requestLine(flags); err != nil {
		return err
	}
	pin.mode = mode
	return nil
}

func (pin *ioctlLine) Read() (int, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return 0, errors.New("line is closed")
	}
	value, err := pin.line.Value()
	if err != nil {
		return 0, err
	}
	// We'd expect value to be either 0 or 1, but any non-zero value should be considered high.
	if value != 0 {
		return board.High, nil
	}
	return board.Low, nil
}

func (pin *ioctlLine) Write(value int) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return errors.New("line is closed")
	}
	if pin.mode == board.ModePWM {
		pin.pwmDutyCycle = dutyCycle(value, pin.desc)
		return pin.startSoftwarePWM()
	}
	pin.stopSoftwarePWM()
	return pin.setInternal(value != board.Low)
}

// setInternal drives the line without changing whether it is part of a PWM loop. The mutex must
// be held.
func (pin *ioctlLine) setInternal(isHigh bool) error {
	var value byte
	if isHigh {
		value = 1
	}
	return pin.line.SetValue(value)
}

// startSoftwarePWM spins up a background goroutine to create a PWM signal in software, if one is
// needed and not already running. The mutex must be held.
func (pin *ioctlLine) startSoftwarePWM() error {
	if pin.pwmDutyCycle <= 0 || pin.pwmDutyCycle >= 1 || pin.pwmFreqHz == 0 {
		// A constant level needs no loop.
		pin.stopSoftwarePWM()
		return pin.setInternal(pin.pwmDutyCycle >= 1)
	}
	if pin.pwmRunning {
		return nil
	}

	pin.pwmRunning = true
	generation := pin.pwmGeneration
	pin.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		pin.softwarePwmLoop(generation)
	}, pin.activeBackgroundWorkers.Done)
	return nil
}

// stopSoftwarePWM retires the running PWM loop, if any. The mutex must be held.
func (pin *ioctlLine) stopSoftwarePWM() {
	if pin.pwmRunning {
		pin.pwmRunning = false
		pin.pwmGeneration++
	}
}

// halfPwmCycle turns the line on or off, then waits until it is time to flip it again. It returns
// whether the loop should continue.
func (pin *ioctlLine) halfPwmCycle(shouldBeOn bool, generation uint64) bool {
	var dutyCycle float64

	shouldContinue := func() bool {
		pin.mu.Lock()
		defer pin.mu.Unlock()
		if !pin.pwmRunning || pin.pwmGeneration != generation || pin.line == nil {
			return false
		}
		dutyCycle = pin.pwmDutyCycle

		// A failed toggle doesn't stop the loop. Hopefully the next one works.
		if err := pin.setInternal(shouldBeOn); err != nil {
			pin.logger.Debugw("software pwm toggle failed", "error", err)
		}
		return true
	}()

	if !shouldContinue {
		return false
	}

	if !shouldBeOn {
		dutyCycle = 1 - dutyCycle
	}
	duration := time.Duration(float64(time.Second) * dutyCycle / float64(pin.pwmFreqHz))
	return utils.SelectContextOrWait(pin.cancelCtx, duration)
}

func (pin *ioctlLine) softwarePwmLoop(generation uint64) {
	for {
		if !pin.halfPwmCycle(true, generation) {
			return
		}
		if !pin.halfPwmCycle(false, generation) {
			return
		}
	}
}

// Close stops any PWM loop, drives an output line low and releases it.
func (pin *ioctlLine) Close() error {
	pin.cancelFunc()
	pin.activeBackgroundWorkers.Wait()

	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return nil
	}
	var err error
	if pin.mode == board.ModeOutput || pin.mode == board.ModePWM {
		err = pin.setInternal(false)
	}
	err = multierr.Combine(err, pin.line.Close())
	pin.line = nil
	pin.stopSoftwarePWM()
	return err
}
