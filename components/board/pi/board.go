// Package pi implements the Raspberry Pi board model: the 40-pin header laid onto the generic
// Linux platform. Pin indexes are header positions minus one, so index 10 is header pin 11
// (GPIO17).
package pi

import (
	"context"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/components/board/genericlinux"
	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

// Model is the name the Raspberry Pi is registered under.
const Model = "pi"

// DefaultGPIOChipDev is the character device of the header's GPIO controller.
const DefaultGPIOChipDev = "/dev/gpiochip0"

func init() {
	board.RegisterModel(Model, board.Registration{
		Constructor: func(ctx context.Context, conf board.Config, logger logging.Logger) (board.Platform, error) {
			native, err := utils.AssertType[*Config](conf.ConvertedAttributes)
			if err != nil {
				return nil, err
			}
			return genericlinux.NewPlatform(native.LinuxConfig(), logger), nil
		},
		NativeConfig: &Config{},
	})
}

// A Config selects how the header's lines are driven.
type Config struct {
	// Backend is genericlinux.BackendIoctl (the default), which gives every GPIO software PWM,
	// or genericlinux.BackendPeriph, which only offers PWM where the SoC has a channel for it.
	Backend string `json:"backend,omitempty"`
	// GPIOChipDev overrides DefaultGPIOChipDev for the ioctl backend.
	GPIOChipDev string `json:"gpio_chip_dev,omitempty"`
	PWMFreqHz   uint   `json:"pwm_freq_hz,omitempty"`
	Consumer    string `json:"consumer,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	switch conf.Backend {
	case "", genericlinux.BackendIoctl, genericlinux.BackendPeriph:
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown backend %q", conf.Backend))
	}
	return nil
}

// LinuxConfig expands the header into a generic Linux pin config.
func (conf *Config) LinuxConfig() *genericlinux.Config {
	backend := conf.Backend
	if backend == "" {
		backend = genericlinux.BackendIoctl
	}
	chip := conf.GPIOChipDev
	if chip == "" {
		chip = DefaultGPIOChipDev
	}

	pins := make([]genericlinux.PinConfig, 0, len(header))
	for _, hp := range header {
		pc := genericlinux.PinConfig{Name: hp.name}
		if hp.gpio >= 0 && !hp.reserved {
			pc.Modes = []string{board.ModeInput.String(), board.ModeOutput.String()}
			if backend == genericlinux.BackendIoctl || hp.hwPWM {
				pc.Modes = append(pc.Modes, board.ModePWM.String())
			}
			pc.Backend = backend
			pc.GPIOChipDev = chip
			line := hp.gpio
			pc.Line = &line
			pc.PeriphName = hp.name
			pc.PWMFreqHz = conf.PWMFreqHz
		}
		pins = append(pins, pc)
	}
	return &genericlinux.Config{Pins: pins, Consumer: conf.Consumer}
}
