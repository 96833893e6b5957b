// Package register registers all relevant board models.
package register

import (
	// for boards.
	_ "go.viam.com/pinio/components/board/fake"
	_ "go.viam.com/pinio/components/board/genericlinux"
	_ "go.viam.com/pinio/components/board/pi"
)
