package rooms

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// QueueEntry is one player waiting for an anonymous match.
type QueueEntry struct {
	PlayerID   types.PlayerID
	Info       protocol.PlayerInfo
	Elo        int
	Conn       types.ClientConn
	EnqueuedAt time.Time
}

// Manager owns the registry of active rooms and the matchmaking queue.
// Both are global tables guarded by a single mutex; per-game state
// lives behind each Room's own lock.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room
	queue []*QueueEntry
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{rooms: make(map[string]*Room)}
}

// generateCodeLocked draws six uniform characters from A-Z0-9,
// regenerating on the (rare) collision with a live room.
func (m *Manager) generateCodeLocked() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}

// CreateRoom registers a new room with the caller seated as white and
// returns it.
func (m *Manager) CreateRoom(white *Seat) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.generateCodeLocked()
	room := NewRoom(code, white)
	m.rooms[code] = room

	logging.Info(context.Background(), "Room created",
		zap.String("room", code), zap.String("username", white.Username))
	return room
}

// JoinRoom seats the caller as black. Codes are case-insensitive. The
// returned reason is empty on success; once a joiner is seated every
// later join gets room-full.
func (m *Manager) JoinRoom(code string, black *Seat) (*Room, string) {
	m.mu.Lock()
	room, ok := m.rooms[strings.ToUpper(code)]
	m.mu.Unlock()
	if !ok {
		return nil, protocol.ReasonRoomNotFound
	}

	if reason := room.SeatBlack(black); reason != "" {
		return nil, reason
	}
	return room, ""
}

// Get looks up a room by code.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToUpper(code)]
	return room, ok
}

// Remove deletes a room from the registry.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Enqueue adds a player to the matchmaking queue. A player already
// queued is overwritten in place, keeping their position.
func (m *Manager) Enqueue(entry *QueueEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.queue {
		if e.PlayerID == entry.PlayerID {
			m.queue[i] = entry
			return
		}
	}
	m.queue = append(m.queue, entry)
}

// Dequeue removes a player from the queue; silent when absent.
func (m *Manager) Dequeue(id types.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.queue {
		if e.PlayerID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

// QueueLen returns the current queue depth.
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// FindMatch pairs the two oldest queue entries into a new room, the
// first as white, the second as black. Returns nil when fewer than two
// players wait. Strict FIFO; no rating buckets.
func (m *Manager) FindMatch() (*Room, *QueueEntry, *QueueEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) < 2 {
		return nil, nil, nil
	}
	white, black := m.queue[0], m.queue[1]
	m.queue = m.queue[2:]

	code := m.generateCodeLocked()
	room := NewRoom(code, &Seat{
		PlayerID: white.PlayerID,
		Username: white.Info.Username,
		Elo:      white.Elo,
		Conn:     white.Conn,
	})
	room.black = &Seat{
		PlayerID: black.PlayerID,
		Username: black.Info.Username,
		Elo:      black.Elo,
		Conn:     black.Conn,
	}
	m.rooms[code] = room

	logging.Info(context.Background(), "Match found",
		zap.String("room", code),
		zap.String("white", white.Info.Username),
		zap.String("black", black.Info.Username))
	return room, white, black
}
