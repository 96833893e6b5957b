package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Mode is an operating configuration a pin can be placed into. The numbering follows the
// firmata pin modes so that host runtimes speaking that vocabulary can pass modes through
// unchanged.
type Mode uint8

// The modes known to every board.
const (
	ModeInput   Mode = 0x0
	ModeOutput  Mode = 0x1
	ModeAnalog  Mode = 0x2
	ModePWM     Mode = 0x3
	ModeServo   Mode = 0x4
	ModeI2C     Mode = 0x6
	ModeOneWire Mode = 0x7
	ModeStepper Mode = 0x8

	// ModeUninitialized is the mode of a pin nobody has configured yet. It is never part of a
	// capability set.
	ModeUninitialized Mode = 0x7F
)

// The two digital values.
const (
	Low  = 0
	High = 1
)

var knownModes = []Mode{
	ModeInput,
	ModeOutput,
	ModeAnalog,
	ModePWM,
	ModeServo,
	ModeI2C,
	ModeOneWire,
	ModeStepper,
}

var modeNames = map[Mode]string{
	ModeInput:         "INPUT",
	ModeOutput:        "OUTPUT",
	ModeAnalog:        "ANALOG",
	ModePWM:           "PWM",
	ModeServo:         "SERVO",
	ModeI2C:           "I2C",
	ModeOneWire:       "ONEWIRE",
	ModeStepper:       "STEPPER",
	ModeUninitialized: "UNINITIALIZED",
}

// Modes returns every mode known to the board family, in numeric order.
func Modes() []Mode {
	return append([]Mode(nil), knownModes...)
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Known reports whether m is one of the modes returned by Modes.
func (m Mode) Known() bool {
	return m != ModeUninitialized && modeNames[m] != ""
}

// IsDigital reports whether m is a digital input or output mode.
func (m Mode) IsDigital() bool {
	return m == ModeInput || m == ModeOutput
}

// IsAnalog reports whether m is an analog input or output (PWM) mode.
func (m Mode) IsAnalog() bool {
	return m == ModeAnalog || m == ModePWM
}

// ParseMode converts a mode name such as "output" or "PWM" into a Mode. Numeric firmata values
// are accepted as well.
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "IN", "DIGITAL_IN", "DIGITAL-IN":
		return ModeInput, nil
	case "OUT", "DIGITAL_OUT", "DIGITAL-OUT":
		return ModeOutput, nil
	case "ANALOG_IN", "ANALOG-IN":
		return ModeAnalog, nil
	case "ANALOG_OUT", "ANALOG-OUT":
		return ModePWM, nil
	case "ONE_WIRE", "ONE-WIRE":
		return ModeOneWire, nil
	}
	for _, m := range knownModes {
		if modeNames[m] == name {
			return m, nil
		}
	}
	if raw, err := strconv.ParseUint(name, 10, 8); err == nil && Mode(raw).Known() {
		return Mode(raw), nil
	}
	return ModeUninitialized, errors.Errorf("unknown pin mode %q", s)
}
