// Package genericlinux implements a board platform for Linux single-board computers. Pins are
// described in the config and driven either through the GPIO character device (by way of mkch's
// gpio package) or through periph.io. This does not know any particular board's pinout.
package genericlinux

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

// Model is the name the generic Linux platform is registered under.
const Model = "genericlinux"

func init() {
	board.RegisterModel(Model, board.Registration{
		Constructor: func(ctx context.Context, conf board.Config, logger logging.Logger) (board.Platform, error) {
			native, err := utils.AssertType[*Config](conf.ConvertedAttributes)
			if err != nil {
				return nil, err
			}
			return NewPlatform(native, logger), nil
		},
		NativeConfig: &Config{},
	})
}

// A Platform serves the pin table described by its config and opens the configured lines.
type Platform struct {
	conf     *Config
	consumer string
	logger   logging.Logger
}

// NewPlatform returns a platform for conf, which must already be valid.
func NewPlatform(conf *Config, logger logging.Logger) *Platform {
	consumer := conf.Consumer
	if consumer == "" {
		consumer = defaultConsumer
	}
	return &Platform{conf: conf, consumer: consumer, logger: logger}
}

// BoardPins builds the pin table from the config. Nothing is opened.
func (p *Platform) BoardPins(ctx context.Context) ([]board.PinDescriptor, error) {
	pins := make([]board.PinDescriptor, 0, len(p.conf.Pins))
	for idx, pc := range p.conf.Pins {
		modes, err := pc.modes()
		if err != nil {
			return nil, errors.Wrapf(err, "pin %d", idx)
		}
		name := pc.Name
		if name == "" {
			name = pc.PeriphName
		}
		pins = append(pins, board.PinDescriptor{
			Index:          idx,
			Name:           name,
			SupportedModes: modes,
			PWMResolution:  pc.PWMResolution,
		})
	}
	return pins, nil
}

// OpenPin requests the line behind desc from the kernel.
func (p *Platform) OpenPin(ctx context.Context, desc board.PinDescriptor) (board.PinLine, error) {
	if desc.Index < 0 || desc.Index >= len(p.conf.Pins) {
		return nil, errors.Errorf("no pin with index %d is configured", desc.Index)
	}
	pc := p.conf.Pins[desc.Index]
	logger := p.logger.Sublogger(desc.Name)

	switch pc.backend() {
	case BackendPeriph:
		return openPeriphLine(pc.PeriphName, desc, pc.pwmFreqHz(), logger)
	case BackendIoctl:
		return openIoctlLine(pc.GPIOChipDev, uint32(*pc.Line), p.consumer, desc, pc.pwmFreqHz(), logger)
	default:
		return nil, errors.Errorf("unknown backend %q", pc.Backend)
	}
}

// dutyCycle converts an analog-out value into a duty cycle between 0 and 1.
func dutyCycle(value int, desc board.PinDescriptor) float64 {
	return float64(value) / float64(desc.PWMMax())
}
