//go:build !linux

package backend

import "errors"

// The kernel joystick interface only exists on Linux; other platforms use
// the SDL backend.
func OpenKernelJoystick(path string) (Backend, error) {
	return nil, &OpenError{Device: path, Err: errors.New("kernel joystick interface not available on this platform")}
}
