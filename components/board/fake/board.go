// Package fake implements a fake board platform whose pins live in memory.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

// Model is the name the fake platform is registered under.
const Model = "fake"

// A PinConfig describes one pin of a fake board.
type PinConfig struct {
	Name             string   `json:"name,omitempty"`
	Modes            []string `json:"modes,omitempty"`
	Analog           bool     `json:"analog,omitempty"`
	AnalogResolution int      `json:"analog_resolution,omitempty"`
	PWMResolution    int      `json:"pwm_resolution,omitempty"`

	// FailInit makes opening the pin fail.
	FailInit bool `json:"fail_init,omitempty"`
	// InitDelayMs delays opening the pin.
	InitDelayMs int `json:"init_delay_ms,omitempty"`
}

// A Config describes the configuration of a fake board. Without any pins the board gets
// DefaultPins.
type Config struct {
	Pins          []PinConfig `json:"pins,omitempty"`
	FailDiscovery bool        `json:"fail_discovery,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, pin := range conf.Pins {
		pinPath := fmt.Sprintf("%s.%s.%d", path, "pins", idx)
		for _, mode := range pin.Modes {
			if _, err := board.ParseMode(mode); err != nil {
				return goutils.NewConfigValidationError(pinPath, err)
			}
		}
		if pin.InitDelayMs < 0 {
			return goutils.NewConfigValidationError(pinPath, errors.New("init_delay_ms cannot be negative"))
		}
	}
	return nil
}

func init() {
	board.RegisterModel(Model, board.Registration{
		Constructor: func(ctx context.Context, conf board.Config, logger logging.Logger) (board.Platform, error) {
			native, err := utils.AssertType[*Config](conf.ConvertedAttributes)
			if err != nil {
				return nil, err
			}
			return NewPlatformFromConfig(native)
		},
		NativeConfig: &Config{},
	})
}

// DefaultPins is the pin table of a fake board configured without pins: a PWM-capable GPIO, a
// plain GPIO, a pin with no modes at all and an analog input.
func DefaultPins() []board.PinDescriptor {
	return []board.PinDescriptor{
		{Index: 0, Name: "GPIO0", SupportedModes: []board.Mode{board.ModeInput, board.ModeOutput, board.ModePWM}},
		{Index: 1, Name: "GPIO1", SupportedModes: []board.Mode{board.ModeInput, board.ModeOutput}},
		{Index: 2, Name: "GND"},
		{Index: 3, Name: "A0", SupportedModes: []board.Mode{board.ModeAnalog}, Analog: true},
	}
}

// NewPlatformFromConfig returns a platform with the pins and failures described by conf.
func NewPlatformFromConfig(conf *Config) (*Platform, error) {
	if len(conf.Pins) == 0 {
		p := NewPlatform(DefaultPins()...)
		if conf.FailDiscovery {
			p.FailDiscovery(errors.New("fake discovery failure"))
		}
		return p, nil
	}

	pins := make([]board.PinDescriptor, 0, len(conf.Pins))
	for idx, pc := range conf.Pins {
		desc := board.PinDescriptor{
			Index:            idx,
			Name:             pc.Name,
			Analog:           pc.Analog,
			AnalogResolution: pc.AnalogResolution,
			PWMResolution:    pc.PWMResolution,
		}
		for _, name := range pc.Modes {
			mode, err := board.ParseMode(name)
			if err != nil {
				return nil, err
			}
			desc.SupportedModes = append(desc.SupportedModes, mode)
		}
		pins = append(pins, desc)
	}

	p := NewPlatform(pins...)
	if conf.FailDiscovery {
		p.FailDiscovery(errors.New("fake discovery failure"))
	}
	for idx, pc := range conf.Pins {
		if pc.FailInit {
			p.FailInit(idx, errors.Errorf("fake init failure on pin %d", idx))
		}
		if pc.InitDelayMs > 0 {
			p.DelayInit(idx, time.Duration(pc.InitDelayMs)*time.Millisecond)
		}
	}
	return p, nil
}

// A Platform serves a fixed pin table and opens in-memory lines. Failures and delays can be
// injected per pin before the board starts.
type Platform struct {
	mu             sync.Mutex
	pins           []board.PinDescriptor
	discoveryErr   error
	initErrs       map[int]error
	initDelays     map[int]time.Duration
	initGates      map[int]chan struct{}
	lines          map[int]*Line
	DiscoveryCount int
	OpenCount      int
}

// NewPlatform returns a platform serving pins as its pin table.
func NewPlatform(pins ...board.PinDescriptor) *Platform {
	return &Platform{
		pins:       pins,
		initErrs:   map[int]error{},
		initDelays: map[int]time.Duration{},
		initGates:  map[int]chan struct{}{},
		lines:      map[int]*Line{},
	}
}

// FailDiscovery makes BoardPins fail with err.
func (p *Platform) FailDiscovery(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discoveryErr = err
}

// FailInit makes opening pin fail with err.
func (p *Platform) FailInit(pin int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initErrs[pin] = err
}

// DelayInit makes opening pin take at least d.
func (p *Platform) DelayInit(pin int, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initDelays[pin] = d
}

// BlockInit makes opening pin block until the returned function is called.
func (p *Platform) BlockInit(pin int) (release func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	gate := make(chan struct{})
	p.initGates[pin] = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// BoardPins returns the configured pin table.
func (p *Platform) BoardPins(ctx context.Context) ([]board.PinDescriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DiscoveryCount++
	if p.discoveryErr != nil {
		return nil, p.discoveryErr
	}
	pins := make([]board.PinDescriptor, 0, len(p.pins))
	for _, desc := range p.pins {
		desc.SupportedModes = append([]board.Mode(nil), desc.SupportedModes...)
		pins = append(pins, desc)
	}
	return pins, nil
}

// OpenPin opens an in-memory line for desc, after any injected delay, block or failure.
func (p *Platform) OpenPin(ctx context.Context, desc board.PinDescriptor) (board.PinLine, error) {
	p.mu.Lock()
	p.OpenCount++
	delay := p.initDelays[desc.Index]
	gate := p.initGates[desc.Index]
	initErr := p.initErrs[desc.Index]
	p.mu.Unlock()

	if delay > 0 && !goutils.SelectContextOrWait(ctx, delay) {
		return nil, ctx.Err()
	}
	if gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-gate:
		}
	}
	if initErr != nil {
		return nil, initErr
	}

	line := &Line{desc: desc, mode: board.ModeUninitialized}
	p.mu.Lock()
	p.lines[desc.Index] = line
	p.mu.Unlock()
	return line, nil
}

// Line returns the line opened for pin, if any.
func (p *Platform) Line(pin int) (*Line, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line, ok := p.lines[pin]
	return line, ok
}

// A Line reads back the same values that are written to it, or set on it from the outside.
type Line struct {
	mu       sync.Mutex
	desc     board.PinDescriptor
	mode     board.Mode
	value    int
	modeSets int
	closed   bool
}

// SetMode records the new mode. Switching into an output mode drives the line to zero.
func (l *Line) SetMode(mode board.Mode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errors.Errorf("line %d is closed", l.desc.Index)
	}
	if mode == board.ModeOutput || mode == board.ModePWM {
		l.value = 0
	}
	l.mode = mode
	l.modeSets++
	return nil
}

// Read returns the line's value.
func (l *Line) Read() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, errors.Errorf("line %d is closed", l.desc.Index)
	}
	return l.value, nil
}

// Write stores value.
func (l *Line) Write(value int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errors.Errorf("line %d is closed", l.desc.Index)
	}
	l.value = value
	return nil
}

// Close closes the line.
func (l *Line) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Set is used to drive the line from the outside, as an input signal would.
func (l *Line) Set(value int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = value
}

// Value returns the line's current value without going through the board.
func (l *Line) Value() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Mode returns the mode the line was last set to.
func (l *Line) Mode() board.Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// ModeSets returns how many times the line's mode was set.
func (l *Line) ModeSets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.modeSets
}

// Closed returns whether the line has been closed.
func (l *Line) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
