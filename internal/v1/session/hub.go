// Package session - hub.go
//
// The Hub is the central coordinator: it upgrades WebSocket
// connections, assigns player identities, routes event frames to
// handlers and drives the end-of-game settlement. Room state lives in
// the rooms package; the Hub only tracks which room each player is
// currently in.
package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/openrook/chesshub/internal/v1/auth"
	"github.com/openrook/chesshub/internal/v1/connections"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/metrics"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/rooms"
	"github.com/openrook/chesshub/internal/v1/store"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

// IdentityIssuer mints and validates the tokens that let a player
// reclaim their id after a dropped connection. Implemented by
// auth.TokenIssuer; tests substitute mocks.
type IdentityIssuer interface {
	Issue(playerID, username string) (string, error)
	Validate(tokenString string) (*auth.IdentityClaims, error)
}

// Hub wires the room registry, the connection tracker and the store
// together and owns the per-player session index.
type Hub struct {
	rooms  *rooms.Manager
	conns  *connections.Manager
	store  store.Store
	tokens IdentityIssuer

	allowedOrigins []string

	mu     sync.Mutex
	active map[types.PlayerID]string // player -> room code
}

// NewHub creates a hub. forfeitWindow zero means the default.
func NewHub(st store.Store, tokens IdentityIssuer, allowedOrigins []string, forfeitWindow time.Duration) *Hub {
	h := &Hub{
		rooms:          rooms.NewManager(),
		store:          st,
		tokens:         tokens,
		allowedOrigins: allowedOrigins,
		active:         make(map[types.PlayerID]string),
	}
	h.conns = connections.NewManager(forfeitWindow, h.onForfeit)
	return h
}

// ServeWs upgrades an HTTP request to a WebSocket connection. The
// username query parameter names the player; an optional token query
// parameter reclaims a previous identity, otherwise a fresh id is
// minted. The first frame on the socket is a connected event carrying
// the id and a reconnection token.
func (h *Hub) ServeWs(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username not provided"})
		return
	}

	playerID := types.PlayerID(uuid.NewString())
	if tokenString := c.Query("token"); tokenString != "" {
		claims, err := h.tokens.Validate(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		playerID = types.PlayerID(claims.Subject)
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Allow non-browser clients (e.g., for testing)
			}
			originURL, err := url.Parse(origin)
			if err != nil {
				return false
			}
			for _, allowed := range h.allowedOrigins {
				allowedURL, err := url.Parse(allowed)
				if err != nil {
					continue
				}
				if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
					return true
				}
			}
			return false
		},
		WriteBufferPool: &sync.Pool{
			New: func() any {
				return make([]byte, 4096)
			},
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to upgrade connection", zap.Error(err))
		return
	}

	client := newClient(conn, h, playerID, username)
	metrics.IncConnection()
	h.conns.Register(client)

	token, err := h.tokens.Issue(string(playerID), username)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to issue identity token",
			zap.String("player_id", string(playerID)), zap.Error(err))
	}
	client.Send(protocol.EventConnected, protocol.ConnectedEvent{
		PlayerID: string(playerID),
		Token:    token,
	})

	logging.Info(c.Request.Context(), "Player connected",
		zap.String("player_id", string(playerID)),
		zap.String("username", username))

	go client.writePump()
	go client.readPump()
}

// roomOf returns the room a player is currently bound to.
func (h *Hub) roomOf(id types.PlayerID) (*rooms.Room, bool) {
	h.mu.Lock()
	code, ok := h.active[id]
	h.mu.Unlock()
	if !ok {
		return nil, false
	}
	return h.rooms.Get(code)
}

func (h *Hub) bindRoom(id types.PlayerID, code string) {
	h.mu.Lock()
	h.active[id] = code
	h.mu.Unlock()
}

func (h *Hub) unbindRoom(ids ...types.PlayerID) {
	h.mu.Lock()
	for _, id := range ids {
		delete(h.active, id)
	}
	h.mu.Unlock()
}

// handleClientDisconnect runs when a read pump exits. A player in a
// live game gets a forfeit clock; everyone else is simply forgotten.
func (h *Hub) handleClientDisconnect(client *Client) {
	h.conns.Unregister(client)
	h.rooms.Dequeue(client.PlayerID())
	metrics.MatchmakingQueueDepth.Set(float64(h.rooms.QueueLen()))
	client.Disconnect()

	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		return
	}
	if !room.DetachSeat(client.PlayerID()) {
		return
	}
	if room.Ended() {
		return
	}
	if !room.IsFull() {
		// Nobody to forfeit to; drop the empty lobby.
		h.rooms.Remove(room.Code)
		h.unbindRoom(client.PlayerID())
		metrics.ActiveRooms.Set(float64(h.rooms.Count()))
		return
	}

	color, seated := room.SeatColor(client.PlayerID())
	if !seated {
		return
	}
	h.conns.StartForfeitClock(client.PlayerID(), room.Code, color)
	metrics.PendingForfeits.Set(float64(h.conns.PendingForfeits()))
}

// Shutdown disconnects all players and drops all rooms. The server
// calls this during graceful shutdown, before closing the store.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.conns.Shutdown()

	h.mu.Lock()
	h.active = make(map[types.PlayerID]string)
	h.mu.Unlock()

	logging.Info(ctx, "Session hub shut down",
		zap.Int("rooms_dropped", h.rooms.Count()))
	return nil
}

// seatFor loads (or creates) the player's account and builds their
// seat. The store is authoritative for ratings.
func (h *Hub) seatFor(ctx context.Context, client *Client) (*rooms.Seat, error) {
	user, err := h.store.EnsureUser(ctx, client.Username())
	if err != nil {
		return nil, err
	}
	return &rooms.Seat{
		PlayerID: client.PlayerID(),
		Username: user.Username,
		Elo:      user.Elo,
		Conn:     client,
	}, nil
}
