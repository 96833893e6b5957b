package board_test

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/pinio/components/board"
)

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want board.Mode
	}{
		{"input", board.ModeInput},
		{"IN", board.ModeInput},
		{"digital-in", board.ModeInput},
		{"output", board.ModeOutput},
		{" Out ", board.ModeOutput},
		{"analog", board.ModeAnalog},
		{"analog_in", board.ModeAnalog},
		{"pwm", board.ModePWM},
		{"analog-out", board.ModePWM},
		{"servo", board.ModeServo},
		{"i2c", board.ModeI2C},
		{"one_wire", board.ModeOneWire},
		{"onewire", board.ModeOneWire},
		{"stepper", board.ModeStepper},
		{"3", board.ModePWM},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := board.ParseMode(tc.in)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldEqual, tc.want)
		})
	}

	for _, bad := range []string{"", "bogus", "5", "127", "uninitialized", "3x", "-3", "+3", "259"} {
		_, err := board.ParseMode(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestModes(t *testing.T) {
	modes := board.Modes()
	test.That(t, len(modes), test.ShouldEqual, 8)
	for _, m := range modes {
		test.That(t, m.Known(), test.ShouldBeTrue)
		parsed, err := board.ParseMode(m.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, m)
	}
	test.That(t, board.ModeUninitialized.Known(), test.ShouldBeFalse)
	test.That(t, board.ModeUninitialized.String(), test.ShouldEqual, "UNINITIALIZED")
	test.That(t, board.Mode(5).String(), test.ShouldEqual, "Mode(5)")

	// Callers cannot corrupt the mode list.
	modes[0] = board.ModeStepper
	test.That(t, board.Modes()[0], test.ShouldEqual, board.ModeInput)

	test.That(t, board.ModeInput.IsDigital(), test.ShouldBeTrue)
	test.That(t, board.ModeOutput.IsDigital(), test.ShouldBeTrue)
	test.That(t, board.ModeAnalog.IsDigital(), test.ShouldBeFalse)
	test.That(t, board.ModeAnalog.IsAnalog(), test.ShouldBeTrue)
	test.That(t, board.ModePWM.IsAnalog(), test.ShouldBeTrue)
	test.That(t, board.ModeServo.IsAnalog(), test.ShouldBeFalse)
	test.That(t, board.Low, test.ShouldEqual, 0)
	test.That(t, board.High, test.ShouldEqual, 1)
}

func TestPinDescriptor(t *testing.T) {
	desc := board.PinDescriptor{Index: 0, SupportedModes: []board.Mode{board.ModeInput, board.ModeOutput}}
	test.That(t, desc.Capable(), test.ShouldBeTrue)
	test.That(t, desc.Supports(board.ModeOutput), test.ShouldBeTrue)
	test.That(t, desc.Supports(board.ModePWM), test.ShouldBeFalse)
	test.That(t, desc.SupportsAny(board.ModePWM, board.ModeInput), test.ShouldBeTrue)
	test.That(t, desc.SupportsAny(board.ModePWM, board.ModeAnalog), test.ShouldBeFalse)
	test.That(t, desc.AnalogMax(), test.ShouldEqual, 1023)
	test.That(t, desc.PWMMax(), test.ShouldEqual, 255)

	desc = board.PinDescriptor{Index: 1, AnalogResolution: 12, PWMResolution: 16}
	test.That(t, desc.Capable(), test.ShouldBeFalse)
	test.That(t, desc.AnalogMax(), test.ShouldEqual, 4095)
	test.That(t, desc.PWMMax(), test.ShouldEqual, 65535)
}

func TestOperations(t *testing.T) {
	ops := board.Operations()
	test.That(t, ops[0], test.ShouldEqual, board.OpPinMode)
	test.That(t, ops[len(ops)-1], test.ShouldEqual, board.OpReset)

	implemented := 0
	names := map[string]bool{}
	for _, op := range ops {
		if op.Implemented() {
			implemented++
		}
		test.That(t, names[op.String()], test.ShouldBeFalse)
		names[op.String()] = true
	}
	test.That(t, implemented, test.ShouldEqual, 5)
	test.That(t, len(ops), test.ShouldEqual, 23)

	test.That(t, board.OpPulseIn.String(), test.ShouldEqual, "pulseIn")
	test.That(t, board.OpSendI2CConfig.String(), test.ShouldEqual, "sendI2CConfig")
	test.That(t, board.OpStepperStep.String(), test.ShouldEqual, "stepperStep")
	test.That(t, board.OpReset.String(), test.ShouldEqual, "reset")
	test.That(t, board.Operation(0).String(), test.ShouldEqual, "Operation(0)")

	test.That(t, board.OpDigitalWrite.RequiredModes(), test.ShouldResemble, []board.Mode{board.ModeOutput})
	test.That(t, board.OpAnalogRead.RequiredModes(), test.ShouldResemble, []board.Mode{board.ModeAnalog, board.ModePWM})
	test.That(t, board.OpPinMode.RequiredModes(), test.ShouldBeNil)
	test.That(t, board.OpSendOneWireSearch.RequiredModes(), test.ShouldResemble, []board.Mode{board.ModeOneWire})
}
