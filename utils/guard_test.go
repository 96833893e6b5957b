package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestGuard(t *testing.T) {
	var cleanups int
	guarded := func(fail bool) {
		guard := NewGuard(func() { cleanups++ })
		defer guard.OnFail()
		if fail {
			return
		}
		guard.Success()
	}

	guarded(false)
	test.That(t, cleanups, test.ShouldEqual, 0)
	guarded(true)
	test.That(t, cleanups, test.ShouldEqual, 1)
}
