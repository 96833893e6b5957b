package board

import "context"

// A PinSource describes the pins of one board model.
type PinSource interface {
	// BoardPins returns the board's pin table, ordered by index. It must not touch hardware
	// state and must return the same table every time for a given board model.
	BoardPins(ctx context.Context) ([]PinDescriptor, error)
}

// A PinDriver opens physical pins.
type PinDriver interface {
	// OpenPin configures the hardware behind desc so it can be used. It may block; the board
	// calls it for every capable pin concurrently during start-up and never cancels it.
	OpenPin(ctx context.Context, desc PinDescriptor) (PinLine, error)
}

// A Platform is everything a Board needs from the hardware below it.
type Platform interface {
	PinSource
	PinDriver
}

// A PinLine is an individual opened pin. A line is only ever used by the pin controller that
// opened it, and values passed to it have already been range checked.
type PinLine interface {
	// SetMode reconfigures the line for mode.
	SetMode(mode Mode) error

	// Read samples the line. Digital modes return Low or High (any non-zero value counts as
	// High); ModeAnalog returns a sample within the descriptor's analog range.
	Read() (int, error)

	// Write drives the line. ModeOutput takes Low or High; ModePWM takes a value within the
	// descriptor's PWM range.
	Write(value int) error

	// Close releases the line.
	Close() error
}

// platformFuncs adapts two plain functions into a Platform.
type platformFuncs struct {
	pins func(ctx context.Context) ([]PinDescriptor, error)
	open func(ctx context.Context, desc PinDescriptor) (PinLine, error)
}

func (p platformFuncs) BoardPins(ctx context.Context) ([]PinDescriptor, error) {
	return p.pins(ctx)
}

func (p platformFuncs) OpenPin(ctx context.Context, desc PinDescriptor) (PinLine, error) {
	return p.open(ctx, desc)
}

// NewPlatform combines a PinSource and a PinDriver that are implemented separately.
func NewPlatform(source PinSource, driver PinDriver) Platform {
	return platformFuncs{pins: source.BoardPins, open: driver.OpenPin}
}
