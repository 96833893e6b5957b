package utils

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SimpleFunc is a unit of work run by a FailFastGroup.
type SimpleFunc func(ctx context.Context) error

// A FailFastGroup runs functions concurrently and reports the first failure as soon as it happens,
// without cancelling the functions that are still running. Every function gets the same context;
// the group never cancels it.
//
// A FailFastGroup must not be reused once FirstError has returned.
type FailFastGroup struct {
	group   errgroup.Group
	results chan error

	mu      sync.Mutex
	started int
}

// NewFailFastGroup returns a group sized for the given number of functions. Starting more
// functions than that is allowed but may block a finishing function until FirstError drains it.
func NewFailFastGroup(expected int) *FailFastGroup {
	return &FailFastGroup{results: make(chan error, expected)}
}

// Go starts f on its own goroutine. A panic in f is recovered and reported as an error.
func (g *FailFastGroup) Go(ctx context.Context, f SimpleFunc) {
	g.mu.Lock()
	g.started++
	g.mu.Unlock()

	g.group.Go(func() (err error) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				err = fmt.Errorf("got panic running something in parallel: %v", thePanic)
			}
			g.results <- err
		}()
		return f(ctx)
	})
}

// FirstError blocks until either every started function has returned nil, in which case it
// returns nil, or one of them has failed, in which case it returns that failure immediately.
// Functions still running at that point are left to finish on their own; their results are
// discarded. An empty group succeeds immediately.
func (g *FailFastGroup) FirstError() error {
	g.mu.Lock()
	started := g.started
	g.mu.Unlock()

	for i := 0; i < started; i++ {
		if err := <-g.results; err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until every started function has returned and returns the first non-nil error, if
// any. It is safe to call after FirstError.
func (g *FailFastGroup) Wait() error {
	return g.group.Wait()
}
