package genericlinux

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"go.viam.com/pinio/components/board"
)

// The two ways a pin's line can be driven.
const (
	// BackendIoctl drives the line through the GPIO character device, with PWM done in software.
	BackendIoctl = "ioctl"
	// BackendPeriph drives the line through periph.io, which can do hardware PWM where the SoC
	// has it.
	BackendPeriph = "periph"
)

// DefaultPWMFreqHz is the PWM frequency of pins whose config does not set one.
const DefaultPWMFreqHz = 800

const defaultConsumer = "pinio"

// linuxModes are the modes a Linux GPIO line can be put into.
var linuxModes = []board.Mode{board.ModeInput, board.ModeOutput, board.ModePWM}

// A PinConfig describes one pin of the board: what it can do and which line backs it. The
// index of a pin is its position in the config.
type PinConfig struct {
	Name  string   `json:"name,omitempty"`
	Modes []string `json:"modes,omitempty"`

	Backend string `json:"backend,omitempty"`
	// GPIOChipDev and Line locate the pin for the ioctl backend, e.g. "/dev/gpiochip0" and 17.
	GPIOChipDev string `json:"gpio_chip_dev,omitempty"`
	Line        *int   `json:"line,omitempty"`
	// PeriphName locates the pin for the periph backend, e.g. "GPIO17".
	PeriphName string `json:"periph_name,omitempty"`

	PWMFreqHz     uint `json:"pwm_freq_hz,omitempty"`
	PWMResolution int  `json:"pwm_resolution,omitempty"`
}

func (conf *PinConfig) backend() string {
	if conf.Backend == "" {
		return BackendIoctl
	}
	return conf.Backend
}

func (conf *PinConfig) pwmFreqHz() uint {
	if conf.PWMFreqHz == 0 {
		return DefaultPWMFreqHz
	}
	return conf.PWMFreqHz
}

func (conf *PinConfig) modes() ([]board.Mode, error) {
	modes := make([]board.Mode, 0, len(conf.Modes))
	for _, name := range conf.Modes {
		mode, err := board.ParseMode(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// Validate ensures the pin config is valid.
func (conf *PinConfig) Validate(path string) error {
	modes, err := conf.modes()
	if err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	for _, mode := range modes {
		if !lo.Contains(linuxModes, mode) {
			return goutils.NewConfigValidationError(path, errors.Errorf("mode %s is not available on a Linux GPIO line", mode))
		}
	}
	if len(modes) == 0 {
		// Power and ground pins have nothing to open.
		return nil
	}

	switch conf.backend() {
	case BackendIoctl:
		if conf.GPIOChipDev == "" {
			return goutils.NewConfigValidationFieldRequiredError(path, "gpio_chip_dev")
		}
		if conf.Line == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "line")
		}
		if *conf.Line < 0 {
			return goutils.NewConfigValidationError(path, errors.New("line cannot be negative"))
		}
	case BackendPeriph:
		if conf.PeriphName == "" {
			return goutils.NewConfigValidationFieldRequiredError(path, "periph_name")
		}
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown backend %q", conf.Backend))
	}
	if conf.PWMResolution < 0 || conf.PWMResolution > 16 {
		return goutils.NewConfigValidationError(path, errors.Errorf("invalid pwm_resolution %d", conf.PWMResolution))
	}
	return nil
}

// A Config describes the pins of a Linux board.
type Config struct {
	Pins []PinConfig `json:"pins"`
	// Consumer is the label the kernel shows as the owner of requested lines.
	Consumer string `json:"consumer,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if len(conf.Pins) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "pins")
	}
	for idx, c := range conf.Pins {
		if err := c.Validate(fmt.Sprintf("%s.%s.%d", path, "pins", idx)); err != nil {
			return err
		}
	}
	return nil
}
