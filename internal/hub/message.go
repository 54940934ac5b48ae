package hub

import (
	"time"

	"github.com/muskanmahajan37/joystick-drivers/internal/diag"
	"github.com/muskanmahajan37/joystick-drivers/internal/joy"
)

// Message is the wire envelope for everything the hub publishes.
// Consumers must treat the axis/button array lengths of "state" messages as
// fixed for one device session.
type Message struct {
	Type      string       `json:"type"` // "state" or "diagnostics"
	Seq       int64        `json:"seq"`
	Timestamp int64        `json:"timestamp"` // Unix milliseconds
	State     *joy.State   `json:"state,omitempty"`
	Health    *diag.Health `json:"health,omitempty"`
}

// NewStateMessage wraps one canonical state emission.
func NewStateMessage(seq int64, state *joy.State) *Message {
	return &Message{
		Type:      "state",
		Seq:       seq,
		Timestamp: state.Stamp.UnixMilli(),
		State:     state,
	}
}

// NewDiagnosticsMessage wraps one health snapshot.
func NewDiagnosticsMessage(seq int64, h *diag.Health) *Message {
	return &Message{
		Type:      "diagnostics",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Health:    h,
	}
}
