package rooms

import (
	"sync"

	"github.com/openrook/chesshub/internal/v1/types"
)

// mockConn records every event queued for a player.
type mockConn struct {
	mu       sync.Mutex
	id       types.PlayerID
	username string
	events   []sentEvent
	closed   bool
}

type sentEvent struct {
	Event   string
	Payload any
}

func newMockConn(id types.PlayerID, username string) *mockConn {
	return &mockConn{id: id, username: username}
}

func (c *mockConn) PlayerID() types.PlayerID { return c.id }
func (c *mockConn) Username() string         { return c.username }

func (c *mockConn) Send(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, sentEvent{Event: event, Payload: payload})
}

func (c *mockConn) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *mockConn) sent() []sentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *mockConn) eventNames() []string {
	var names []string
	for _, e := range c.sent() {
		names = append(names, e.Event)
	}
	return names
}

func (c *mockConn) lastEvent() (sentEvent, bool) {
	evts := c.sent()
	if len(evts) == 0 {
		return sentEvent{}, false
	}
	return evts[len(evts)-1], true
}
