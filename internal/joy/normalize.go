package joy

import "math"

// axisEpsilon suppresses re-emission from hardware jitter: axis updates
// closer than this to the stored value do not count as a change.
const axisEpsilon = 1e-4

// Normalizer turns raw axis/button updates into canonical state changes.
// Configuration fields are read-only after construction; one Normalizer
// serves one device session.
type Normalizer struct {
	Deadzone float64 // [0, 1)
	Sticky   bool    // presses latch until an explicit release

	Scale  map[int]float64 // per-axis multiplier, unset means 1
	Invert map[int]bool    // per-axis sign flip

	// armed marks buttons whose press pulse has not been consumed yet: the
	// release belonging to the same momentary pulse is swallowed so the
	// latch holds until a later, explicit release.
	armed map[int]bool
}

// ApplyAxis folds one raw axis value (already scaled to [-1, 1] by the
// backend) into the state. Returns true when the stored value changed by
// more than the jitter epsilon. Out-of-range indices are dropped.
func (n *Normalizer) ApplyAxis(s *State, index int, raw float64) bool {
	if index < 0 || index >= len(s.Axes) {
		return false
	}
	v := scaledDeadzone(raw, n.Deadzone)
	if scale, ok := n.Scale[index]; ok {
		v *= scale
	}
	if n.Invert[index] {
		v = -v
	}
	v = clamp(v)
	if math.Abs(v-s.Axes[index]) <= axisEpsilon {
		return false
	}
	s.Axes[index] = v
	return true
}

// ApplyButton folds one raw button transition into the state. Without
// sticky buttons the state mirrors the raw press/release exactly. With
// sticky buttons a press latches the button true and the release that
// arrives as part of the same momentary pulse is ignored; only the next
// explicit release clears the latch.
func (n *Normalizer) ApplyButton(s *State, index int, pressed bool) bool {
	if index < 0 || index >= len(s.Buttons) {
		return false
	}
	if n.Sticky {
		if n.armed == nil {
			n.armed = make(map[int]bool)
		}
		if pressed {
			n.armed[index] = true
		} else if n.armed[index] {
			n.armed[index] = false
			return false
		}
	}
	if pressed == s.Buttons[index] {
		return false
	}
	s.Buttons[index] = pressed
	return true
}

// scaledDeadzone maps raw values inside the deadzone to exactly zero and
// rescales the remainder so the output is continuous at the boundary and
// still reaches ±1 at full deflection.
func scaledDeadzone(v, deadzone float64) float64 {
	if deadzone <= 0 {
		return clamp(v)
	}
	a := math.Abs(v)
	if a < deadzone {
		return 0
	}
	out := (a - deadzone) / (1 - deadzone)
	return math.Copysign(out, v)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
