//go:build !linux

package stress

import "errors"

// PinSupported reports whether worker threads can be pinned to CPUs.
const PinSupported = false

func pinToCPU(int) error {
	return errors.New("thread pinning is only supported on linux")
}
