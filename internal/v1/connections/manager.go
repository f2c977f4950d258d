// Package connections tracks which player is behind which transport and
// runs the forfeit clock for players who drop mid-game.
package connections

import (
	"context"
	"sync"
	"time"

	"github.com/openrook/chesshub/internal/v1/chess"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

// DefaultForfeitWindow is how long a disconnected player has to return
// before their game is forfeited.
const DefaultForfeitWindow = 60 * time.Second

// DisconnectionRecord holds a player's pending forfeit while they are
// offline.
type DisconnectionRecord struct {
	RoomCode       string
	Color          chess.Color
	DisconnectedAt time.Time
	forfeitTimer   *time.Timer
}

// ForfeitFunc is called when a forfeit window elapses without the
// player returning.
type ForfeitFunc func(roomCode string, playerID types.PlayerID, color chess.Color)

// Manager maps live transports to player identities and owns the
// forfeit timers for disconnected players.
type Manager struct {
	mu            sync.Mutex
	players       map[types.PlayerID]types.ClientConn
	disconnected  map[types.PlayerID]*DisconnectionRecord
	forfeitWindow time.Duration
	onForfeit     ForfeitFunc
}

// NewManager creates a manager with the given forfeit window; zero
// means DefaultForfeitWindow.
func NewManager(window time.Duration, onForfeit ForfeitFunc) *Manager {
	if window <= 0 {
		window = DefaultForfeitWindow
	}
	return &Manager{
		players:       make(map[types.PlayerID]types.ClientConn),
		disconnected:  make(map[types.PlayerID]*DisconnectionRecord),
		forfeitWindow: window,
		onForfeit:     onForfeit,
	}
}

// Register binds a transport to a player identity, replacing any
// previous binding.
func (m *Manager) Register(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[conn.PlayerID()] = conn
}

// Unregister drops the binding if the given transport still owns it. A
// stale pump shutting down after a reconnect must not evict the
// replacement connection.
func (m *Manager) Unregister(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.players[conn.PlayerID()]; ok && current == conn {
		delete(m.players, conn.PlayerID())
	}
}

// Lookup returns the live transport for a player, if any.
func (m *Manager) Lookup(id types.PlayerID) (types.ClientConn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.players[id]
	return conn, ok
}

// LookupByUsername finds a connected player by display name. Usernames
// double as account keys, so the first match wins.
func (m *Manager) LookupByUsername(username string) (types.ClientConn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.players {
		if conn.Username() == username {
			return conn, true
		}
	}
	return nil, false
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// StartForfeitClock arms the forfeit timer for a player who dropped
// out of an active game. A second disconnect while a clock is already
// running keeps the original deadline.
func (m *Manager) StartForfeitClock(id types.PlayerID, roomCode string, color chess.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, pending := m.disconnected[id]; pending {
		return
	}

	rec := &DisconnectionRecord{
		RoomCode:       roomCode,
		Color:          color,
		DisconnectedAt: time.Now(),
	}
	rec.forfeitTimer = time.AfterFunc(m.forfeitWindow, func() {
		m.fireForfeit(id)
	})
	m.disconnected[id] = rec

	logging.Info(context.Background(), "Forfeit clock started",
		zap.String("player_id", string(id)),
		zap.String("room", roomCode),
		zap.Duration("window", m.forfeitWindow))
}

// fireForfeit runs on the timer goroutine. The player may have
// reconnected between the timer firing and the lock being taken, so
// presence is rechecked before forfeiting.
func (m *Manager) fireForfeit(id types.PlayerID) {
	m.mu.Lock()
	rec, ok := m.disconnected[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, back := m.players[id]; back {
		delete(m.disconnected, id)
		m.mu.Unlock()
		return
	}
	delete(m.disconnected, id)
	onForfeit := m.onForfeit
	m.mu.Unlock()

	logging.Info(context.Background(), "Forfeit window elapsed",
		zap.String("player_id", string(id)),
		zap.String("room", rec.RoomCode))
	if onForfeit != nil {
		onForfeit(rec.RoomCode, id, rec.Color)
	}
}

// Reconnect cancels a pending forfeit and returns where the player was
// seated. ok is false when no forfeit was pending, which covers both
// unknown players and ones whose game already ended.
func (m *Manager) Reconnect(id types.PlayerID) (roomCode string, color chess.Color, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, pending := m.disconnected[id]
	if !pending {
		return "", "", false
	}
	rec.forfeitTimer.Stop()
	delete(m.disconnected, id)

	logging.Info(context.Background(), "Forfeit clock cancelled",
		zap.String("player_id", string(id)),
		zap.String("room", rec.RoomCode))
	return rec.RoomCode, rec.Color, true
}

// ClearForfeit drops a pending forfeit without reporting the seat. The
// hub calls it when a game ends while one side is still offline.
func (m *Manager) ClearForfeit(id types.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, pending := m.disconnected[id]; pending {
		rec.forfeitTimer.Stop()
		delete(m.disconnected, id)
	}
}

// Shutdown stops every forfeit timer and disconnects every player.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for id, rec := range m.disconnected {
		rec.forfeitTimer.Stop()
		delete(m.disconnected, id)
	}
	conns := make([]types.ClientConn, 0, len(m.players))
	for _, conn := range m.players {
		conns = append(conns, conn)
	}
	m.players = make(map[types.PlayerID]types.ClientConn)
	m.mu.Unlock()

	for _, conn := range conns {
		conn.Disconnect()
	}
}

// PendingForfeits returns the number of armed forfeit clocks.
func (m *Manager) PendingForfeits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.disconnected)
}
