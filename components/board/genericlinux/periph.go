// This file is for GPIO lines driven through periph.io.

package genericlinux

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/logging"
)

var (
	hostInitOnce sync.Once
	hostInitErr  error
)

// initHost loads the periph host drivers the first time a periph line is opened.
func initHost(logger logging.Logger) error {
	hostInitOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			hostInitErr = errors.Wrap(err, "error initializing periph host drivers")
			return
		}
		for _, failure := range state.Failed {
			logger.Debugw("periph driver failed to load", "driver", failure.D.String(), "error", failure.Err)
		}
	})
	return hostInitErr
}

type periphLine struct {
	pin       gpio.PinIO
	desc      board.PinDescriptor
	frequency physic.Frequency

	mu   sync.Mutex
	mode board.Mode
}

func openPeriphLine(name string, desc board.PinDescriptor, pwmFreqHz uint, logger logging.Logger) (board.PinLine, error) {
	if err := initHost(logger); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("no global pin found for %q", name)
	}
	// Inputs until told otherwise.
	if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, errors.Wrapf(err, "cannot configure %q as an input", name)
	}
	return &periphLine{
		pin:       pin,
		desc:      desc,
		frequency: physic.Hertz * physic.Frequency(pwmFreqHz),
	}, nil
}

// periphDuty converts an analog-out value into periph's duty cycle scale.
func periphDuty(value int, desc board.PinDescriptor) gpio.Duty {
	return gpio.Duty(dutyCycle(value, desc) * float64(gpio.DutyMax))
}

func (l *periphLine) SetMode(mode board.Mode) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	switch mode {
	case board.ModeInput:
		err = l.pin.In(gpio.PullNoChange, gpio.NoEdge)
	case board.ModeOutput:
		err = l.pin.Out(gpio.Low)
	case board.ModePWM:
		err = l.pin.PWM(0, l.frequency)
	default:
		return errors.Errorf("a Linux GPIO line cannot be put into mode %s", mode)
	}
	if err != nil {
		return err
	}
	l.mode = mode
	return nil
}

func (l *periphLine) Read() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pin.Read() == gpio.High {
		return board.High, nil
	}
	return board.Low, nil
}

func (l *periphLine) Write(value int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == board.ModePWM {
		if err := l.pin.PWM(periphDuty(value, l.desc), l.frequency); err != nil {
			return errors.Wrap(err, "hardware PWM is not available on this pin, use the ioctl backend for software PWM")
		}
		return nil
	}
	level := gpio.Low
	if value != board.Low {
		level = gpio.High
	}
	return l.pin.Out(level)
}

func (l *periphLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pin.Halt()
}
