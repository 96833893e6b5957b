//go:build !linux

package genericlinux

import (
	"github.com/pkg/errors"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/logging"
)

// Outside Linux there is no GPIO character device. Configs still validate and the pin table still
// builds, so only opening a line fails.
func openIoctlLine(devicePath string, offset uint32, consumer string, desc board.PinDescriptor,
	pwmFreqHz uint, logger logging.Logger,
) (board.PinLine, error) {
	return nil, errors.Errorf("cannot open line %d of %s: GPIO character devices are only available on Linux",
		offset, devicePath)
}
