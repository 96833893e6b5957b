package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"
)

func TestStoppableWorkers(t *testing.T) {
	ran := atomic.NewInt32(0)
	sw := NewStoppableWorkers(func(ctx context.Context) {
		ran.Inc()
		<-ctx.Done()
	})
	sw.AddWorkers(func(ctx context.Context) {
		ran.Inc()
		<-ctx.Done()
	})

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, ran.Load(), test.ShouldEqual, 2)
	})
	sw.Stop()

	// Adding after Stop is a no-op.
	sw.AddWorkers(func(ctx context.Context) { ran.Inc() })
	test.That(t, ran.Load(), test.ShouldEqual, 2)
}

func TestStoppableTickerWorker(t *testing.T) {
	mockClock := clock.NewMock()
	ticks := atomic.NewInt32(0)

	sw := NewStoppableTickerWorker(mockClock, time.Second, func(ctx context.Context) bool {
		return ticks.Inc() < 3
	})
	defer sw.Stop()

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mockClock.Add(time.Second)
		test.That(tb, ticks.Load(), test.ShouldEqual, 3)
	})

	// The worker returned after the third tick, so more time changes nothing.
	mockClock.Add(5 * time.Second)
	test.That(t, ticks.Load(), test.ShouldEqual, 3)
}
