// Package board exposes the pins of a single-board computer through a uniform capability model.
// A Board discovers its pin table, initializes every capable pin concurrently and then serves
// mode changes, reads and writes addressed to pins by index.
package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

// An Option configures a Board at construction.
type Option func(*Board)

// WithObserver subscribes o before start-up begins, so it cannot miss any event.
func WithObserver(o Observer) Option {
	return func(b *Board) {
		b.observers.add(o)
	}
}

// WithClock sets the clock read reporters sample on.
func WithClock(clk clock.Clock) Option {
	return func(b *Board) {
		b.clock = clk
	}
}

// A Board owns the pin table and pin controllers of one single-board computer.
type Board struct {
	name           string
	platform       Platform
	reapplyMode    bool
	reportInterval time.Duration
	clock          clock.Clock
	logger         logging.Logger
	observers      *observerSet

	mu          sync.RWMutex
	pins        []PinDescriptor
	controllers map[int]*PinController
	analogPins  []int
	reporters   map[int]*reporter
	startErr    error
	closed      bool

	ready                   atomic.Bool
	settled                 chan struct{}
	activeBackgroundWorkers sync.WaitGroup
}

// NewBoard returns a board driven by platform. It returns before the board is ready: discovery
// and pin initialization run in the background and their outcome is announced to observers and
// through Wait.
func NewBoard(ctx context.Context, conf Config, platform Platform, logger logging.Logger, opts ...Option) (*Board, error) {
	if platform == nil {
		return nil, errors.New("board needs a platform")
	}
	if err := conf.Validate("board"); err != nil {
		return nil, err
	}

	b := &Board{
		name:           conf.BoardName(),
		platform:       platform,
		reapplyMode:    conf.ReapplyMode,
		reportInterval: conf.ReportInterval(),
		clock:          clock.New(),
		logger:         logger.Sublogger(conf.BoardName()),
		observers:      &observerSet{},
		reporters:      map[int]*reporter{},
		settled:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	// Start-up is never cancelled, not even when ctx is.
	startCtx := context.WithoutCancel(ctx)
	b.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer b.activeBackgroundWorkers.Done()
		b.start(startCtx)
	})
	return b, nil
}

func (b *Board) start(ctx context.Context) {
	var err error
	defer func() {
		if thePanic := recover(); thePanic != nil {
			err = errors.Errorf("board start-up panicked: %v", thePanic)
		}
		b.settle(err)
	}()
	err = b.initialize(ctx)
}

// initialize discovers the pin table and brings up every capable pin. It returns the first
// failure as soon as it happens.
func (b *Board) initialize(ctx context.Context) error {
	pins, err := b.platform.BoardPins(ctx)
	if err == nil {
		err = validatePinTable(pins)
	}
	if err != nil {
		return &DiscoveryError{Err: err}
	}

	published := make([]PinDescriptor, 0, len(pins))
	controllers := map[int]*PinController{}
	var capable []*PinController
	for _, desc := range pins {
		published = append(published, desc.clone())
		if !desc.Capable() {
			continue
		}
		pc := NewPinController(desc, b.platform, b.reapplyMode, b.logger)
		controllers[desc.Index] = pc
		capable = append(capable, pc)
	}

	b.mu.Lock()
	b.pins = published
	b.controllers = controllers
	b.analogPins = analogIndexes(published)
	b.mu.Unlock()
	b.logger.Debugw("discovered pins", "pins", len(published), "capable", len(capable))

	stopSlowLogger := utils.SlowLogger(ctx, b.clock, "waiting for pins to initialize", "board", b.name, b.logger)
	defer stopSlowLogger()

	group := utils.NewFailFastGroup(len(capable))
	for _, pc := range capable {
		group.Go(ctx, pc.Init)
	}
	if err := group.FirstError(); err != nil {
		b.activeBackgroundWorkers.Add(1)
		goutils.PanicCapturingGo(func() {
			defer b.activeBackgroundWorkers.Done()
			// The remaining pins still finish; nobody is waiting on their results anymore.
			waitErr := group.Wait()
			b.logger.Debugw("remaining pin initializations finished after start-up failed", "error", waitErr)
		})
		return err
	}
	return nil
}

// settle publishes the outcome of start-up exactly once. Observers hear about it before Wait
// returns.
func (b *Board) settle(err error) {
	defer close(b.settled)
	if err != nil {
		b.mu.Lock()
		b.startErr = err
		b.mu.Unlock()
		b.logger.Errorw("board start-up failed", "error", err)
		b.observers.notify(Event{Type: EventError, Board: b.name, Err: err}, b.logger)
		return
	}

	if !b.ready.CompareAndSwap(false, true) {
		return
	}
	b.logger.Infow("board is ready", "pins", len(b.Pins()))
	b.observers.notify(Event{Type: EventReady, Board: b.name}, b.logger)
	b.observers.notify(Event{Type: EventConnect, Board: b.name}, b.logger)
}

// Name returns the board's name.
func (b *Board) Name() string {
	return b.name
}

// IsReady reports whether every capable pin initialized successfully. Once true it stays true.
func (b *Board) IsReady() bool {
	return b.ready.Load()
}

// Status returns the board-wide start-up status.
func (b *Board) Status() Status {
	if b.ready.Load() {
		return StatusReady
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.startErr != nil {
		return StatusFailed
	}
	return StatusPending
}

// Done returns a channel that is closed once start-up has either succeeded or failed.
func (b *Board) Done() <-chan struct{} {
	return b.settled
}

// Wait blocks until start-up settles and returns nil if the board became ready, or the start-up
// failure otherwise.
func (b *Board) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.settled:
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.startErr
}

// Pins returns the board's pin table in index order. It is empty until discovery has finished,
// and is available from then on whether or not the board becomes ready.
func (b *Board) Pins() []PinDescriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pins := make([]PinDescriptor, 0, len(b.pins))
	for _, desc := range b.pins {
		pins = append(pins, desc.clone())
	}
	return pins
}

// AnalogPins returns the indexes of the analog-capable pins.
func (b *Board) AnalogPins() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]int(nil), b.analogPins...)
}

// PinState returns a snapshot of one capable pin.
func (b *Board) PinState(pin int) (PinState, error) {
	pc, err := b.controller(pin)
	if err != nil {
		return PinState{}, err
	}
	return pc.State(), nil
}

// PinStates returns snapshots of every capable pin, in index order.
func (b *Board) PinStates() []PinState {
	b.mu.RLock()
	controllers := lo.Values(b.controllers)
	b.mu.RUnlock()

	sort.Slice(controllers, func(i, j int) bool {
		return controllers[i].desc.Index < controllers[j].desc.Index
	})
	states := make([]PinState, 0, len(controllers))
	for _, pc := range controllers {
		states = append(states, pc.State())
	}
	return states
}

// Subscribe registers o for lifecycle events delivered from now on. Events that already happened
// are not replayed; use Wait to learn about those.
func (b *Board) Subscribe(o Observer) uuid.UUID {
	return b.observers.add(o)
}

// Unsubscribe removes the subscription with the given id and reports whether it existed.
func (b *Board) Unsubscribe(id uuid.UUID) bool {
	return b.observers.remove(id)
}

// controller looks up the controller for pin. Before discovery has finished no pin resolves and
// the lookup fails with a pending NotReadyError rather than an InvalidPinError.
func (b *Board) controller(pin int) (*PinController, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBoardClosed
	}
	if b.controllers == nil {
		if b.startErr != nil {
			return nil, &NotReadyError{Pin: pin, Status: StatusFailed, Reason: b.startErr}
		}
		return nil, &NotReadyError{Pin: pin, Status: StatusPending}
	}
	pc, ok := b.controllers[pin]
	if !ok {
		return nil, &InvalidPinError{Pin: pin}
	}
	return pc, nil
}

// checkReady fails every pin operation until the whole board is ready.
func (b *Board) checkReady(pin int) error {
	if b.ready.Load() {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.startErr != nil {
		return &NotReadyError{Pin: pin, Status: StatusFailed, Reason: b.startErr}
	}
	return &NotReadyError{Pin: pin, Status: StatusPending}
}

// Close waits for start-up to settle, stops every reporter and releases every pin. Operations on
// a closed board fail with ErrBoardClosed.
func (b *Board) Close(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.settled:
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	reporters := b.reporters
	b.reporters = map[int]*reporter{}
	controllers := b.controllers
	b.mu.Unlock()

	for _, r := range reporters {
		r.stop()
	}

	indexes := lo.Keys(controllers)
	sort.Ints(indexes)
	var err error
	for _, idx := range indexes {
		err = multierr.Combine(err, controllers[idx].Close())
	}

	b.activeBackgroundWorkers.Wait()
	return err
}
