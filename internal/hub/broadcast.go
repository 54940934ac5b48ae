package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/muskanmahajan37/joystick-drivers/internal/diag"
	"github.com/muskanmahajan37/joystick-drivers/internal/joy"
)

// Broadcaster republishes driver emissions on the hub and interleaves
// periodic diagnostics at its own cadence.
type Broadcaster struct {
	hub      *Hub
	states   <-chan joy.State
	reporter *diag.Reporter
	interval time.Duration

	mu        sync.Mutex
	lastState joy.State
	haveState bool
	seq       int64
}

func NewBroadcaster(h *Hub, states <-chan joy.State, reporter *diag.Reporter, diagInterval time.Duration) *Broadcaster {
	if diagInterval <= 0 {
		diagInterval = time.Second
	}
	return &Broadcaster{
		hub:      h,
		states:   states,
		reporter: reporter,
		interval: diagInterval,
	}
}

// Run consumes driver emissions until the state channel closes. Should be
// run in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-b.states:
			if !ok {
				return
			}
			b.mu.Lock()
			b.lastState = state
			b.haveState = true
			b.seq++
			seq := b.seq
			b.mu.Unlock()
			b.send(NewStateMessage(seq, &state))

		case <-ticker.C:
			h := b.reporter.Snapshot()
			b.mu.Lock()
			b.seq++
			seq := b.seq
			b.mu.Unlock()
			b.send(NewDiagnosticsMessage(seq, &h))
		}
	}
}

// SendInitialState pushes the most recent state to a newly connected
// client so it does not have to wait for the next emission.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	if !b.haveState {
		b.mu.Unlock()
		return
	}
	state := b.lastState
	b.seq++
	seq := b.seq
	b.mu.Unlock()

	data, err := json.Marshal(NewStateMessage(seq, &state))
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
