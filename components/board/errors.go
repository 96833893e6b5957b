package board

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrBoardClosed is returned by operations on a board that has been closed.
var ErrBoardClosed = errors.New("board is closed")

// A DiscoveryError is returned when the board's pin table could not be discovered. The board
// never becomes ready after one.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("could not initialize board: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// A PinInitError is returned when a pin's hardware could not be configured during start-up.
type PinInitError struct {
	Pin int
	Err error
}

func (e *PinInitError) Error() string {
	return fmt.Sprintf("could not initialize pin %d: %v", e.Pin, e.Err)
}

func (e *PinInitError) Unwrap() error {
	return e.Err
}

// An InvalidPinError is returned when a pin index does not name a capable pin.
type InvalidPinError struct {
	Pin int
}

func (e *InvalidPinError) Error() string {
	return fmt.Sprintf("invalid pin %d", e.Pin)
}

// An UnsupportedModeError is returned when an operation needs a mode the pin's hardware does not
// have.
type UnsupportedModeError struct {
	Pin  int
	Mode Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("pin %d does not support mode %s", e.Pin, e.Mode)
}

// A ModeMismatchError is returned when the pin could do what was asked but is currently configured
// into a different mode.
type ModeMismatchError struct {
	Pin     int
	Current Mode
	Want    []Mode
}

func (e *ModeMismatchError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, m := range e.Want {
		want = append(want, m.String())
	}
	return fmt.Sprintf("pin %d is in mode %s, needs %s", e.Pin, e.Current, strings.Join(want, " or "))
}

// An OutOfRangeError is returned for a value outside the domain of the pin's current mode.
type OutOfRangeError struct {
	Pin   int
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %d for pin %d is out of range [%d, %d]", e.Value, e.Pin, e.Min, e.Max)
}

// A NotImplementedError is returned by every operation that is part of the public surface but
// has no implementation on this board. The same operation always fails the same way.
type NotImplementedError struct {
	Op Operation
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not yet implemented", e.Op)
}

// A NotReadyError is returned by a pin that has not finished, or has failed, its initialization.
type NotReadyError struct {
	Pin    int
	Status Status
	Reason error
}

func (e *NotReadyError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("pin %d is not ready (%s): %v", e.Pin, e.Status, e.Reason)
	}
	return fmt.Sprintf("pin %d is not ready (%s)", e.Pin, e.Status)
}

func (e *NotReadyError) Unwrap() error {
	return e.Reason
}

// IsNotImplemented reports whether err is a NotImplementedError, and for which operation.
func IsNotImplemented(err error) (Operation, bool) {
	var notImpl *NotImplementedError
	if errors.As(err, &notImpl) {
		return notImpl.Op, true
	}
	return 0, false
}
