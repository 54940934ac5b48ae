// Package joy holds the canonical joystick state and the pure transforms
// that update it from raw device events.
package joy

import "time"

// State is the canonical output of the driver: axes in [-1, 1], buttons as
// booleans. Lengths are fixed when a device session opens and never change
// until the next open.
type State struct {
	Axes    []float64 `json:"axes"`
	Buttons []bool    `json:"buttons"`
	Stamp   time.Time `json:"stamp"`
}

// NewState returns an all-zero state with the given geometry.
func NewState(axes, buttons int) *State {
	return &State{
		Axes:    make([]float64, axes),
		Buttons: make([]bool, buttons),
	}
}

// Reset zeroes every axis and releases every button, keeping the geometry.
func (s *State) Reset() {
	for i := range s.Axes {
		s.Axes[i] = 0
	}
	for i := range s.Buttons {
		s.Buttons[i] = false
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *State) Clone() State {
	out := State{
		Axes:    make([]float64, len(s.Axes)),
		Buttons: make([]bool, len(s.Buttons)),
		Stamp:   s.Stamp,
	}
	copy(out.Axes, s.Axes)
	copy(out.Buttons, s.Buttons)
	return out
}
