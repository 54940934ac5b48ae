package backend

import (
	"fmt"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/muskanmahajan37/joystick-drivers/internal/mapping"
)

// pollSliceNS bounds each wait slice inside Fetch so the timeout (and with
// it, cancellation) is honoured with ~1ms resolution.
const pollSliceNS = 1_000_000

// ControllerPoll reads joystick input through the SDL3 event queue and
// remaps raw indices through a resolved database entry, so downstream code
// only ever sees canonical indexing.
//
// SDL event handling is thread-affine: Fetch must run on the same
// OS-locked goroutine that called OpenControllerPoll.
type ControllerPoll struct {
	js       *sdl.Joystick
	id       sdl.JoystickID
	name     string
	entry    mapping.Entry
	mapped   bool
	degraded bool
	axes     int
	buttons  int
}

// OpenControllerPoll initializes the SDL joystick subsystem and opens the
// device at the given position in SDL's joystick list. The device GUID is
// resolved against the table; an unmapped device falls back to identity
// mapping and is flagged degraded rather than rejected.
func OpenControllerPoll(index int, table *mapping.Table) (*ControllerPoll, error) {
	device := fmt.Sprintf("sdl:%d", index)

	if !sdl.Init(sdl.InitJoystick) {
		return nil, &OpenError{Device: device, Err: fmt.Errorf("sdl init: %s", sdl.GetError())}
	}

	ids := sdl.GetJoysticks()
	if index < 0 || index >= len(ids) {
		sdl.Quit()
		return nil, &OpenError{Device: device, Err: fmt.Errorf("no joystick at index %d (%d connected)", index, len(ids))}
	}

	js := sdl.OpenJoystick(ids[index])
	if js == nil {
		err := fmt.Errorf("sdl open: %s", sdl.GetError())
		sdl.Quit()
		return nil, &OpenError{Device: device, Err: err}
	}

	c := &ControllerPoll{
		js:   js,
		id:   sdl.GetJoystickID(js),
		name: sdl.GetJoystickName(js),
	}

	guid := mapping.GUID(sdl.GetJoystickVendor(js), sdl.GetJoystickProduct(js))
	if table != nil && guid != "" {
		if entry, ok := table.Resolve(guid); ok {
			c.entry = entry
			c.mapped = true
		}
	}
	if c.mapped {
		c.axes = c.entry.AxisCount()
		c.buttons = c.entry.ButtonCount()
	} else {
		// Identity fallback: an unmapped but present controller must
		// still be usable.
		c.degraded = true
		c.axes = int(sdl.GetNumJoystickAxes(js))
		c.buttons = int(sdl.GetNumJoystickButtons(js))
	}
	return c, nil
}

// Fetch drains the SDL event queue until a relevant event appears or the
// timeout elapses. The queue survives between calls, so nothing is lost
// when several events arrive in one wait slice.
func (c *ControllerPoll) Fetch(timeout time.Duration) (Event, error) {
	deadline := time.Now().Add(timeout)
	for {
		var event sdl.Event
		for sdl.PollEvent(&event) {
			if ev, ok := c.translate(&event); ok {
				return ev, nil
			}
		}
		if !time.Now().Before(deadline) {
			return Event{Kind: None}, nil
		}
		sdl.DelayNS(pollSliceNS)
	}
}

func (c *ControllerPoll) translate(event *sdl.Event) (Event, bool) {
	switch event.Type() {
	case sdl.EventJoystickRemoved:
		if event.JDevice().Which != c.id {
			return Event{}, false
		}
		return Event{Kind: Removed}, true

	case sdl.EventJoystickAxisMotion:
		ae := event.JAxis()
		if ae.Which != c.id {
			return Event{}, false
		}
		index := int(ae.Axis)
		value := scaleSDLAxis(ae.Value)
		if c.mapped {
			binding, ok := c.entry.Axes[index]
			if !ok {
				return Event{}, false
			}
			index = binding.Canonical
			if binding.Invert {
				value = -value
			}
		}
		return Event{Kind: Axis, Index: index, Value: value}, true

	case sdl.EventJoystickButtonDown, sdl.EventJoystickButtonUp:
		be := event.JButton()
		if be.Which != c.id {
			return Event{}, false
		}
		index := int(be.Button)
		if c.mapped {
			canonical, ok := c.entry.Buttons[index]
			if !ok {
				return Event{}, false
			}
			index = canonical
		}
		return Event{Kind: Button, Index: index, Pressed: event.Type() == sdl.EventJoystickButtonDown}, true
	}
	return Event{}, false
}

func (c *ControllerPoll) Axes() int      { return c.axes }
func (c *ControllerPoll) Buttons() int   { return c.buttons }
func (c *ControllerPoll) Name() string   { return c.name }
func (c *ControllerPoll) Degraded() bool { return c.degraded }

func (c *ControllerPoll) Close() error {
	if c.js != nil {
		sdl.CloseJoystick(c.js)
		c.js = nil
		sdl.Quit()
	}
	return nil
}

func scaleSDLAxis(v int16) float64 {
	out := float64(v) / 32767
	if out < -1 {
		out = -1
	}
	return out
}
