package board

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Default sample widths, in bits, for pins whose descriptor does not specify one.
const (
	DefaultAnalogResolution = 10
	DefaultPWMResolution    = 8
)

// PinDescriptor is the static description of one physical pin: where it sits in the board's
// table and which modes the hardware supports. Descriptors never change once discovered.
type PinDescriptor struct {
	Index          int    `json:"index"`
	Name           string `json:"name,omitempty"`
	SupportedModes []Mode `json:"supported_modes"`
	Analog         bool   `json:"analog,omitempty"`

	// Widths of analog-in samples and analog-out (PWM) values in bits. Zero selects the defaults.
	AnalogResolution int `json:"analog_resolution,omitempty"`
	PWMResolution    int `json:"pwm_resolution,omitempty"`
}

// Capable reports whether the pin supports at least one mode.
func (d PinDescriptor) Capable() bool {
	return len(d.SupportedModes) != 0
}

// Supports reports whether mode is in the pin's capability set.
func (d PinDescriptor) Supports(mode Mode) bool {
	return lo.Contains(d.SupportedModes, mode)
}

// SupportsAny reports whether any of modes is in the pin's capability set.
func (d PinDescriptor) SupportsAny(modes ...Mode) bool {
	return lo.Some(d.SupportedModes, modes)
}

// AnalogMax is the largest analog-in sample the pin can produce.
func (d PinDescriptor) AnalogMax() int {
	bits := d.AnalogResolution
	if bits <= 0 {
		bits = DefaultAnalogResolution
	}
	return 1<<bits - 1
}

// PWMMax is the largest analog-out value the pin accepts.
func (d PinDescriptor) PWMMax() int {
	bits := d.PWMResolution
	if bits <= 0 {
		bits = DefaultPWMResolution
	}
	return 1<<bits - 1
}

func (d PinDescriptor) clone() PinDescriptor {
	d.SupportedModes = append([]Mode(nil), d.SupportedModes...)
	return d
}

// validatePinTable checks that a discovered table is dense and 0-based and that every capability
// set only names known modes, once each.
func validatePinTable(pins []PinDescriptor) error {
	for i, desc := range pins {
		if desc.Index != i {
			return errors.Errorf("pin at position %d has index %d", i, desc.Index)
		}
		seen := map[Mode]bool{}
		for _, mode := range desc.SupportedModes {
			if !mode.Known() {
				return errors.Errorf("pin %d lists unknown mode %s", i, mode)
			}
			if seen[mode] {
				return errors.Errorf("pin %d lists mode %s twice", i, mode)
			}
			seen[mode] = true
		}
		if desc.AnalogResolution < 0 || desc.AnalogResolution > 16 {
			return errors.Errorf("pin %d has invalid analog resolution %d", i, desc.AnalogResolution)
		}
		if desc.PWMResolution < 0 || desc.PWMResolution > 16 {
			return errors.Errorf("pin %d has invalid pwm resolution %d", i, desc.PWMResolution)
		}
	}
	return nil
}

// analogIndexes returns the indexes of the analog-capable pins, in table order. A pin that can be
// put into ModeAnalog counts even if the table forgot to flag it.
func analogIndexes(pins []PinDescriptor) []int {
	return lo.FilterMap(pins, func(desc PinDescriptor, _ int) (int, bool) {
		return desc.Index, desc.Analog || desc.Supports(ModeAnalog)
	})
}
