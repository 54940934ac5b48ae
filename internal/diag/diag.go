// Package diag aggregates driver error counters and device identity into a
// health summary. The reporter is the only state shared across goroutines:
// the driver loop writes it, the diagnostics publisher and HTTP server read
// snapshots.
package diag

import (
	"sync"
	"time"
)

// Status is the coarse health classification.
type Status uint8

const (
	OK Status = iota
	Degraded
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Error:
		return "error"
	}
	return "unknown"
}

// MarshalText makes Status render as its name in JSON diagnostics.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	// readErrorWindow is the rolling window for the ERROR threshold.
	readErrorWindow = 30 * time.Second
	// readErrorThreshold is the number of read errors inside the window
	// that escalates DEGRADED to ERROR.
	readErrorThreshold = 5
	// disconnectGrace is how long the device may stay disconnected before
	// the status escalates to ERROR.
	disconnectGrace = 10 * time.Second
	// reconnectWindow is how long after a reconnect attempt the status
	// stays DEGRADED even though the device is connected again.
	reconnectWindow = 30 * time.Second
)

// Health is one atomic snapshot of driver health.
type Health struct {
	Status            Status `json:"status"`
	OpenErrors        int    `json:"openErrorCount"`
	ReadErrors        int    `json:"readErrorCount"`
	ReconnectAttempts int    `json:"reconnectAttempts"`
	LastEventAgeMs    int64  `json:"lastEventAgeMs"`
	DeviceName        string `json:"deviceName"`
	Connected         bool   `json:"connected"`
}

// Reporter collects events from the driver loop. All methods are safe for
// concurrent use; Snapshot is the synchronized read for other goroutines.
type Reporter struct {
	mu sync.Mutex

	now func() time.Time // test hook

	deviceName      string
	connected       bool
	mappingFallback bool

	openErrors int
	reconnects int

	readErrors    int
	recentReads   []time.Time
	lastReconnect time.Time
	disconnectAt  time.Time
	lastEvent     time.Time
}

func NewReporter() *Reporter {
	return &Reporter{now: time.Now}
}

// DeviceOpened records a successful open. fallback marks identity-mapping
// degradation for the whole session.
func (r *Reporter) DeviceOpened(name string, fallback bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deviceName = name
	r.connected = true
	r.mappingFallback = fallback
	r.lastEvent = r.now()
}

// DeviceLost records the transition to the disconnected state.
func (r *Reporter) DeviceLost() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = false
	r.disconnectAt = r.now()
}

// OpenFailed counts one failed open attempt.
func (r *Reporter) OpenFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openErrors++
}

// ReadFailed counts one failed device read.
func (r *Reporter) ReadFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readErrors++
	r.recentReads = append(r.recentReads, r.now())
}

// ReconnectAttempt counts one backoff cycle of the reconnect supervisor.
func (r *Reporter) ReconnectAttempt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnects++
	r.lastReconnect = r.now()
}

// EventSeen refreshes the liveness timestamp.
func (r *Reporter) EventSeen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastEvent = r.now()
}

// Snapshot derives the current health. ERROR when read errors exceed the
// rolling-window threshold or the device has been gone past the grace
// period; DEGRADED when the mapping fallback is active or a reconnect
// happened recently while the device is connected; OK otherwise.
func (r *Reporter) Snapshot() Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-readErrorWindow)
	kept := r.recentReads[:0]
	for _, t := range r.recentReads {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.recentReads = kept

	h := Health{
		OpenErrors:        r.openErrors,
		ReadErrors:        r.readErrors,
		ReconnectAttempts: r.reconnects,
		DeviceName:        r.deviceName,
		Connected:         r.connected,
	}
	if !r.lastEvent.IsZero() {
		h.LastEventAgeMs = now.Sub(r.lastEvent).Milliseconds()
	}

	switch {
	case len(r.recentReads) >= readErrorThreshold:
		h.Status = Error
	case !r.connected && !r.disconnectAt.IsZero() && now.Sub(r.disconnectAt) > disconnectGrace:
		h.Status = Error
	case r.connected && r.mappingFallback:
		h.Status = Degraded
	case r.connected && !r.lastReconnect.IsZero() && now.Sub(r.lastReconnect) < reconnectWindow:
		h.Status = Degraded
	case !r.connected:
		h.Status = Degraded
	default:
		h.Status = OK
	}
	return h
}
