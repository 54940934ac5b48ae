// Package backend abstracts the two hardware access models the driver
// supports: the blocking-read kernel joystick interface and the SDL3
// polling joystick API. Both satisfy the same fetch/open/close contract so
// downstream code never sees which one is in use.
package backend

import (
	"fmt"
	"time"
)

// EventKind discriminates the raw events a backend produces.
type EventKind uint8

const (
	// None means the fetch timed out without an event.
	None EventKind = iota
	// Axis carries a scaled axis position in Value.
	Axis
	// Button carries a press/release transition in Pressed.
	Button
	// Removed signals the device is gone; the session is over.
	Removed
)

// Event is one raw device event. Axis values are already scaled to [-1, 1]
// and indices are canonical: backends remap before events leave them.
type Event struct {
	Kind    EventKind
	Index   int
	Value   float64
	Pressed bool
}

// Backend is an open device session. Fetch blocks for at most the given
// timeout; a timeout is not an error, it returns an Event of kind None.
// A non-nil Fetch error is a read failure and ends the session, as does a
// Removed event. Close must be safe on every exit path.
type Backend interface {
	Fetch(timeout time.Duration) (Event, error)
	Axes() int
	Buttons() int
	Name() string
	// Degraded reports that the device is usable but running on an
	// identity mapping because its GUID was not in the database.
	Degraded() bool
	Close() error
}

// OpenError wraps a failure to acquire the device handle. It is transient:
// the reconnect supervisor retries it, it never escapes the driver.
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("backend: open %s: %v", e.Device, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError wraps a failed device read mid-session.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("backend: read: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
