package joy

import (
	"math"
	"testing"
)

func TestDeadzoneScaling(t *testing.T) {
	n := &Normalizer{Deadzone: 0.1}
	s := NewState(1, 0)

	if changed := n.ApplyAxis(s, 0, 0.05); changed {
		t.Fatal("value inside the deadzone must not change a zero axis")
	}
	if s.Axes[0] != 0 {
		t.Fatalf("axis = %v, want 0 inside deadzone", s.Axes[0])
	}

	if changed := n.ApplyAxis(s, 0, 0.55); !changed {
		t.Fatal("expected change")
	}
	want := (0.55 - 0.1) / 0.9
	if math.Abs(s.Axes[0]-want) > 1e-9 {
		t.Fatalf("axis = %v, want %v", s.Axes[0], want)
	}
}

func TestDeadzoneContinuityAndRange(t *testing.T) {
	n := &Normalizer{Deadzone: 0.2}
	s := NewState(1, 0)

	// Continuous at the boundary: |v| == d maps to 0.
	n.ApplyAxis(s, 0, 0.5)
	n.ApplyAxis(s, 0, 0.2)
	if s.Axes[0] != 0 {
		t.Fatalf("axis = %v at |v|=deadzone, want 0", s.Axes[0])
	}

	// Full deflection still reaches ±1.
	n.ApplyAxis(s, 0, 1.0)
	if s.Axes[0] != 1 {
		t.Fatalf("axis = %v at full deflection, want 1", s.Axes[0])
	}
	n.ApplyAxis(s, 0, -1.0)
	if s.Axes[0] != -1 {
		t.Fatalf("axis = %v at full negative deflection, want -1", s.Axes[0])
	}

	// Everything in between stays in range.
	for v := -1.0; v <= 1.0; v += 0.01 {
		n.ApplyAxis(s, 0, v)
		if s.Axes[0] < -1 || s.Axes[0] > 1 {
			t.Fatalf("axis = %v out of range for input %v", s.Axes[0], v)
		}
	}
}

func TestAxisScaleInvertClamp(t *testing.T) {
	n := &Normalizer{
		Scale:  map[int]float64{0: 2},
		Invert: map[int]bool{1: true},
	}
	s := NewState(2, 0)

	n.ApplyAxis(s, 0, 0.8)
	if s.Axes[0] != 1 {
		t.Fatalf("axis 0 = %v, want clamp to 1 after scaling", s.Axes[0])
	}
	n.ApplyAxis(s, 1, 0.5)
	if s.Axes[1] != -0.5 {
		t.Fatalf("axis 1 = %v, want -0.5 after invert", s.Axes[1])
	}
}

func TestJitterSuppression(t *testing.T) {
	n := &Normalizer{}
	s := NewState(1, 0)

	if !n.ApplyAxis(s, 0, 0.5) {
		t.Fatal("first update must report a change")
	}
	if n.ApplyAxis(s, 0, 0.5) {
		t.Fatal("identical update must not report a change")
	}
	if n.ApplyAxis(s, 0, 0.5+1e-6) {
		t.Fatal("sub-epsilon update must not report a change")
	}
}

func TestButtonMirrorsWithoutSticky(t *testing.T) {
	n := &Normalizer{}
	s := NewState(0, 2)

	if !n.ApplyButton(s, 1, true) {
		t.Fatal("press must report a change")
	}
	if n.ApplyButton(s, 1, true) {
		t.Fatal("repeated press must not report a change")
	}
	if !n.ApplyButton(s, 1, false) {
		t.Fatal("release must report a change")
	}
	if s.Buttons[1] {
		t.Fatal("button must mirror the release")
	}
}

func TestStickyButtonLatch(t *testing.T) {
	n := &Normalizer{Sticky: true}
	s := NewState(0, 1)

	// A momentary press pulse arrives as press+release.
	if !n.ApplyButton(s, 0, true) {
		t.Fatal("press must latch")
	}
	if n.ApplyButton(s, 0, false) {
		t.Fatal("the pulse's own release must be swallowed")
	}
	if !s.Buttons[0] {
		t.Fatal("button must stay latched after the pulse")
	}

	// An explicit release clears the latch.
	if !n.ApplyButton(s, 0, false) {
		t.Fatal("explicit release must clear the latch")
	}
	if s.Buttons[0] {
		t.Fatal("button must be released")
	}
}

func TestOutOfRangeIndicesDropped(t *testing.T) {
	n := &Normalizer{}
	s := NewState(1, 1)

	if n.ApplyAxis(s, 5, 1.0) || n.ApplyAxis(s, -1, 1.0) {
		t.Fatal("out-of-range axis must be a no-op")
	}
	if n.ApplyButton(s, 5, true) || n.ApplyButton(s, -1, true) {
		t.Fatal("out-of-range button must be a no-op")
	}
}

func TestGeometryFixedAndReset(t *testing.T) {
	s := NewState(4, 8)
	n := &Normalizer{}
	n.ApplyAxis(s, 2, 0.7)
	n.ApplyButton(s, 3, true)

	if len(s.Axes) != 4 || len(s.Buttons) != 8 {
		t.Fatalf("geometry changed: %d axes, %d buttons", len(s.Axes), len(s.Buttons))
	}

	s.Reset()
	for i, v := range s.Axes {
		if v != 0 {
			t.Fatalf("axis %d = %v after reset, want 0", i, v)
		}
	}
	for i, b := range s.Buttons {
		if b {
			t.Fatalf("button %d pressed after reset", i)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewState(1, 1)
	s.Axes[0] = 0.25
	c := s.Clone()
	s.Axes[0] = 0.75
	s.Buttons[0] = true

	if c.Axes[0] != 0.25 || c.Buttons[0] {
		t.Fatal("clone must not share storage with the source")
	}
}
