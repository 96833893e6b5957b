package board

import (
	"sync"

	"github.com/google/uuid"

	"go.viam.com/pinio/logging"
)

// An EventType identifies a board lifecycle notification.
type EventType int

// The lifecycle events. A board delivers EventReady and then EventConnect once start-up has
// succeeded, or EventError once if it has failed. No board delivers more than one of each.
const (
	EventReady EventType = iota + 1
	EventConnect
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventConnect:
		return "connect"
	case EventError:
		return "error"
	}
	return "unknown"
}

// An Event is a lifecycle notification from a board.
type Event struct {
	Type  EventType
	Board string
	// Err is set for EventError.
	Err error
}

// An Observer is notified of board lifecycle events. Events are delivered on the board's start-up
// goroutine, one at a time, before the board's Wait returns. OnEvent must therefore not call Wait
// or Close on the board.
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc adapts a plain function to an Observer.
type ObserverFunc func(event Event)

// OnEvent calls f(event).
func (f ObserverFunc) OnEvent(event Event) {
	f(event)
}

type subscription struct {
	id       uuid.UUID
	observer Observer
}

// observerSet keeps subscriptions in the order they were made.
type observerSet struct {
	mu   sync.Mutex
	subs []subscription
}

func (s *observerSet) add(o Observer) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.subs = append(s.subs, subscription{id: id, observer: o})
	return id
}

func (s *observerSet) remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}

// notify delivers event to a snapshot of the subscribers, so observers may subscribe or
// unsubscribe from inside OnEvent. A panicking observer is logged and skipped; the others still
// hear about the event.
func (s *observerSet) notify(event Event, logger logging.Logger) {
	s.mu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		deliver(sub, event, logger)
	}
}

func deliver(sub subscription, event Event, logger logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("observer panicked", "event", event.Type, "observer", sub.id, "panic", r)
		}
	}()
	sub.observer.OnEvent(event)
}
