package hub

import (
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		h.mu.RLock()
		got := len(h.clients)
		h.mu.RUnlock()
		if got == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", got, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{send: make(chan []byte, 1)}
	slow.send <- []byte("backlog") // buffer already full
	healthy := &Client{send: make(chan []byte, 1)}
	h.Register(slow)
	h.Register(healthy)
	waitForClients(t, h, 2)

	done := make(chan struct{})
	go func() {
		h.Broadcast([]byte("update"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast must not block on a client with a full buffer")
	}

	select {
	case msg := <-healthy.send:
		if string(msg) != "update" {
			t.Fatalf("healthy client got %q, want the broadcast", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("healthy client must still receive the broadcast")
	}

	// The slow client is unregistered asynchronously; the hub closes its
	// send channel once the disconnect is processed.
	waitForClients(t, h, 1)
	<-slow.send // the stale backlog entry
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Fatal("slow client received a message instead of being dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("slow client's send channel must be closed after the drop")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = &Client{send: make(chan []byte, 4)}
		h.Register(clients[i])
	}
	waitForClients(t, h, 3)

	h.Broadcast([]byte("tick"))
	for i, c := range clients {
		select {
		case msg := <-c.send:
			if string(msg) != "tick" {
				t.Fatalf("client %d got %q", i, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d never received the broadcast", i)
		}
	}
}
