package diag

import (
	"testing"
	"time"
)

// fakeClock lets tests march time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestReporter() (*Reporter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	r := NewReporter()
	r.now = clock.now
	return r, clock
}

func TestStatusOKWhenConnectedAndClean(t *testing.T) {
	r, _ := newTestReporter()
	r.DeviceOpened("pad", false)

	h := r.Snapshot()
	if h.Status != OK {
		t.Fatalf("status = %v, want OK", h.Status)
	}
	if !h.Connected || h.DeviceName != "pad" {
		t.Fatalf("snapshot = %+v, want connected pad", h)
	}
}

func TestMappingFallbackDegrades(t *testing.T) {
	r, _ := newTestReporter()
	r.DeviceOpened("pad", true)

	if h := r.Snapshot(); h.Status != Degraded {
		t.Fatalf("status = %v, want Degraded on identity-mapping fallback", h.Status)
	}
}

func TestReadErrorWindowEscalates(t *testing.T) {
	r, clock := newTestReporter()
	r.DeviceOpened("pad", false)

	for i := 0; i < readErrorThreshold-1; i++ {
		r.ReadFailed()
	}
	if h := r.Snapshot(); h.Status == Error {
		t.Fatal("below the threshold the status must not be ERROR")
	}

	r.ReadFailed()
	if h := r.Snapshot(); h.Status != Error {
		t.Fatalf("status = %v, want Error at the threshold", h.Status)
	}

	// The window rolls: once the failures age out the status recovers,
	// while the lifetime counter keeps its value.
	clock.advance(readErrorWindow + time.Second)
	h := r.Snapshot()
	if h.Status == Error {
		t.Fatal("aged-out read errors must not keep the status at ERROR")
	}
	if h.ReadErrors != readErrorThreshold {
		t.Fatalf("readErrorCount = %d, want %d", h.ReadErrors, readErrorThreshold)
	}
}

func TestDisconnectGracePeriod(t *testing.T) {
	r, clock := newTestReporter()
	r.DeviceOpened("pad", false)
	r.DeviceLost()

	if h := r.Snapshot(); h.Status != Degraded {
		t.Fatalf("status = %v, want Degraded inside the grace period", h.Status)
	}

	clock.advance(disconnectGrace + time.Second)
	if h := r.Snapshot(); h.Status != Error {
		t.Fatalf("status = %v, want Error past the grace period", h.Status)
	}
}

func TestRecentReconnectDegrades(t *testing.T) {
	r, clock := newTestReporter()
	r.DeviceOpened("pad", false)
	r.DeviceLost()
	r.ReconnectAttempt()
	r.DeviceOpened("pad", false)

	h := r.Snapshot()
	if h.Status != Degraded {
		t.Fatalf("status = %v, want Degraded right after a reconnect", h.Status)
	}
	if h.ReconnectAttempts != 1 {
		t.Fatalf("reconnectAttempts = %d, want 1", h.ReconnectAttempts)
	}

	clock.advance(reconnectWindow + time.Second)
	if h := r.Snapshot(); h.Status != OK {
		t.Fatalf("status = %v, want OK once the reconnect is old news", h.Status)
	}
}

func TestLastEventAge(t *testing.T) {
	r, clock := newTestReporter()
	r.DeviceOpened("pad", false)
	r.EventSeen()
	clock.advance(3 * time.Second)

	if h := r.Snapshot(); h.LastEventAgeMs != 3000 {
		t.Fatalf("lastEventAgeMs = %v, want 3000", h.LastEventAgeMs)
	}
}

func TestStatusNames(t *testing.T) {
	if OK.String() != "ok" || Degraded.String() != "degraded" || Error.String() != "error" {
		t.Fatal("status names must be stable, they are part of the diagnostics message")
	}
}
