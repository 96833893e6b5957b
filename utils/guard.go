package utils

// A Guard runs a cleanup function when the function that set it up fails part way through
// allocating something, and does nothing once Success has been called:
//
//	guard := NewGuard(func() { line.Close() })
//	defer guard.OnFail()
//	if err := configure(line); err != nil {
//		return nil, err
//	}
//	guard.Success()
//	return line, nil
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called first.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success declares that the allocation worked and the cleanup must not run.
func (guard *Guard) Success() {
	guard.success = true
}
