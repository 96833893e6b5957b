package board

import "fmt"

// An Operation is one member of the board's public operation surface. The set is closed: every
// operation a host runtime can ask for has a constant here, including the ones this board
// declares but does not implement.
type Operation int

// The operations of the public surface.
const (
	OpPinMode Operation = iota + 1
	OpDigitalRead
	OpDigitalWrite
	OpAnalogRead
	OpAnalogWrite

	OpServoWrite
	OpServoConfig
	OpPulseIn
	OpPulseOut
	OpQueryPinState
	OpSendI2CWriteRequest
	OpSendI2CReadRequest
	OpSendI2CConfig
	OpSendOneWireWriteAndRead
	OpSendOneWireDelay
	OpSendOneWireReset
	OpSendOneWireRead
	OpSendOneWireSearch
	OpSendOneWireAlarmsSearch
	OpSendOneWireConfig
	OpStepperConfig
	OpStepperStep
	OpReset
)

var operationNames = map[Operation]string{
	OpPinMode:                 "pinMode",
	OpDigitalRead:             "digitalRead",
	OpDigitalWrite:            "digitalWrite",
	OpAnalogRead:              "analogRead",
	OpAnalogWrite:             "analogWrite",
	OpServoWrite:              "servoWrite",
	OpServoConfig:             "servoConfig",
	OpPulseIn:                 "pulseIn",
	OpPulseOut:                "pulseOut",
	OpQueryPinState:           "queryPinState",
	OpSendI2CWriteRequest:     "sendI2CWriteRequest",
	OpSendI2CReadRequest:      "sendI2CReadRequest",
	OpSendI2CConfig:           "sendI2CConfig",
	OpSendOneWireWriteAndRead: "sendOneWireWriteAndRead",
	OpSendOneWireDelay:        "sendOneWireDelay",
	OpSendOneWireReset:        "sendOneWireReset",
	OpSendOneWireRead:         "sendOneWireRead",
	OpSendOneWireSearch:       "sendOneWireSearch",
	OpSendOneWireAlarmsSearch: "sendOneWireAlarmsSearch",
	OpSendOneWireConfig:       "sendOneWireConfig",
	OpStepperConfig:           "stepperConfig",
	OpStepperStep:             "stepperStep",
	OpReset:                   "reset",
}

// Operations returns every operation, in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationNames))
	for op := OpPinMode; op <= OpReset; op++ {
		ops = append(ops, op)
	}
	return ops
}

// String returns the name host runtimes use for the operation.
func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// Implemented reports whether the board actually performs op. Every other operation fails with
// a NotImplementedError.
func (op Operation) Implemented() bool {
	switch op {
	case OpPinMode, OpDigitalRead, OpDigitalWrite, OpAnalogRead, OpAnalogWrite:
		return true
	default:
		return false
	}
}

// RequiredModes returns the modes a pin must support for op to make sense on it; the pin needs
// only one of them. A nil result means op puts no requirement on the pin's capability set, either
// because it is not addressed to a pin or because the mode is an argument (OpPinMode).
func (op Operation) RequiredModes() []Mode {
	switch op {
	case OpDigitalRead:
		return []Mode{ModeInput, ModeOutput}
	case OpDigitalWrite:
		return []Mode{ModeOutput}
	case OpAnalogRead:
		return []Mode{ModeAnalog, ModePWM}
	case OpAnalogWrite:
		return []Mode{ModePWM}
	case OpServoWrite, OpServoConfig:
		return []Mode{ModeServo}
	case OpPulseIn:
		return []Mode{ModeInput}
	case OpPulseOut:
		return []Mode{ModeOutput}
	case OpSendI2CWriteRequest, OpSendI2CReadRequest, OpSendI2CConfig:
		return []Mode{ModeI2C}
	case OpSendOneWireWriteAndRead, OpSendOneWireDelay, OpSendOneWireReset, OpSendOneWireRead,
		OpSendOneWireSearch, OpSendOneWireAlarmsSearch, OpSendOneWireConfig:
		return []Mode{ModeOneWire}
	case OpStepperConfig, OpStepperStep:
		return []Mode{ModeStepper}
	case OpPinMode, OpQueryPinState, OpReset:
		return nil
	default:
		return nil
	}
}

// Reset would return every board to its power-on state. It is not implemented.
func Reset() error {
	return &NotImplementedError{Op: OpReset}
}
