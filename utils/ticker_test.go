package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/pinio/logging"
)

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()

	stop := SlowLogger(context.Background(), mockClock, "still waiting", "board", "bench", logger)
	mockClock.Add(time.Second)
	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 0)

	mockClock.Add(time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 1)
	})
	entry := logs.FilterMessage("still waiting").All()[0]
	test.That(t, entry.ContextMap()["board"], test.ShouldEqual, "bench")
	test.That(t, entry.ContextMap()["time_elapsed"], test.ShouldEqual, "2s")

	stop()
	mockClock.Add(time.Minute)
	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 1)
}
