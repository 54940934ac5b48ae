// Package driver runs the per-device control loop: it pulls raw events out
// of a backend, normalizes them into canonical state, and decides when that
// state is republished. Device loss is absorbed here and turned into an
// unbounded reconnect cycle; it never escapes as an error.
package driver

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/muskanmahajan37/joystick-drivers/internal/backend"
	"github.com/muskanmahajan37/joystick-drivers/internal/diag"
	"github.com/muskanmahajan37/joystick-drivers/internal/joy"
)

// maxFetchTimeout bounds the blocking fetch so cancellation is noticed
// within one tick even when coalescing and autorepeat are disabled.
const maxFetchTimeout = 250 * time.Millisecond

// OpenFunc acquires a device session. It is retried with backoff for as
// long as the driver runs.
type OpenFunc func() (backend.Backend, error)

// Config is the immutable per-session tuning of the loop.
type Config struct {
	Deadzone   float64
	Coalesce   time.Duration // minimum spacing between change-driven emissions
	Autorepeat time.Duration // liveness heartbeat period, 0 disables
	Sticky     bool
	AxisScale  map[int]float64
	AxisInvert map[int]bool

	BackoffMin time.Duration
	BackoffMax time.Duration

	// LockThread pins the loop goroutine to one OS thread; required by
	// the SDL backend, harmless for the kernel backend.
	LockThread bool
}

// Driver owns one device and its emission channel.
type Driver struct {
	cfg  Config
	open OpenFunc
	rep  *diag.Reporter
	out  chan joy.State

	now func() time.Time // test hook
}

func New(cfg Config, open OpenFunc, rep *diag.Reporter) (*Driver, error) {
	if open == nil {
		return nil, errors.New("driver: open func required")
	}
	if cfg.Deadzone < 0 || cfg.Deadzone >= 1 {
		return nil, errors.New("driver: deadzone must be in [0, 1)")
	}
	if rep == nil {
		rep = diag.NewReporter()
	}
	return &Driver{
		cfg:  cfg,
		open: open,
		rep:  rep,
		out:  make(chan joy.State, 64),
		now:  time.Now,
	}, nil
}

// States returns the channel canonical states are emitted on. It is closed
// when Run returns.
func (d *Driver) States() <-chan joy.State { return d.out }

// Run drives the device until the context is cancelled. The loop is the
// driver's single suspension point; every other component it calls is a
// synchronous transform.
func (d *Driver) Run(ctx context.Context) {
	if d.cfg.LockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(d.out)

	bo := newBackoff(d.cfg.BackoffMin, d.cfg.BackoffMax)
	reconnecting := false
	for {
		b := d.connect(ctx, bo, reconnecting)
		if b == nil {
			return
		}
		d.session(ctx, b)
		reconnecting = true
		if ctx.Err() != nil {
			return
		}
	}
}

// connect retries the open with exponential backoff until it succeeds or
// the context is cancelled. Attempts after a device loss count as
// reconnect attempts.
func (d *Driver) connect(ctx context.Context, bo *backoff, reconnecting bool) backend.Backend {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if reconnecting {
			d.rep.ReconnectAttempt()
		}
		b, err := d.open()
		if err == nil {
			bo.reset()
			d.rep.DeviceOpened(b.Name(), b.Degraded())
			return b
		}
		d.rep.OpenFailed()
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(bo.next()):
		}
	}
}

// session runs the fetch/normalize/emit loop for one open device. It
// returns on device loss, read failure or cancellation; the handle is
// released on every path.
func (d *Driver) session(ctx context.Context, b backend.Backend) {
	defer b.Close()

	// Fresh state per session: a reinserted device may calibrate or map
	// differently, so nothing carries over.
	state := joy.NewState(b.Axes(), b.Buttons())
	norm := &joy.Normalizer{
		Deadzone: d.cfg.Deadzone,
		Sticky:   d.cfg.Sticky,
		Scale:    d.cfg.AxisScale,
		Invert:   d.cfg.AxisInvert,
	}

	timeout := fetchTimeout(d.cfg)
	var lastEmit time.Time
	dirty := true // publish the reset state as soon as the session opens

	for {
		if ctx.Err() != nil {
			return
		}
		ev, err := b.Fetch(timeout)
		if err != nil {
			d.rep.ReadFailed()
			d.rep.DeviceLost()
			return
		}
		switch ev.Kind {
		case backend.Removed:
			d.rep.DeviceLost()
			return
		case backend.Axis:
			if norm.ApplyAxis(state, ev.Index, ev.Value) {
				dirty = true
			}
			d.rep.EventSeen()
		case backend.Button:
			if norm.ApplyButton(state, ev.Index, ev.Pressed) {
				dirty = true
			}
			d.rep.EventSeen()
		}

		now := d.now()
		emit := dirty && now.Sub(lastEmit) >= d.cfg.Coalesce
		if d.cfg.Autorepeat > 0 && now.Sub(lastEmit) >= d.cfg.Autorepeat {
			// Heartbeat: re-emit unchanged state so consumers can tell a
			// stalled driver from "no motion". A pending change and a due
			// heartbeat still produce a single emission.
			emit = true
		}
		if emit {
			state.Stamp = now
			d.emit(state.Clone())
			lastEmit = now
			dirty = false
		}
	}
}

func (d *Driver) emit(s joy.State) {
	select {
	case d.out <- s:
	default:
		// Drop rather than stall the device loop on a slow consumer.
	}
}

// fetchTimeout picks the loop tick: the smaller of the coalesce window and
// the autorepeat period, bounded so cancellation is always noticed.
func fetchTimeout(cfg Config) time.Duration {
	t := cfg.Coalesce
	if cfg.Autorepeat > 0 && (t <= 0 || cfg.Autorepeat < t) {
		t = cfg.Autorepeat
	}
	if t <= 0 || t > maxFetchTimeout {
		t = maxFetchTimeout
	}
	return t
}
