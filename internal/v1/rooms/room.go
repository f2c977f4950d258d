// Package rooms implements game sessions: the Room holding a board and
// two seats, and the Manager owning the registry of rooms plus the
// matchmaking queue.
package rooms

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/openrook/chesshub/internal/v1/chess"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

// Seat is one side of a game. Conn is nil while the player is inside
// the reconnection window.
type Seat struct {
	PlayerID types.PlayerID
	Username string
	Elo      int
	Conn     types.ClientConn
}

// Summary renders the seat for client payloads.
func (s *Seat) Summary() protocol.PlayerSummary {
	return protocol.PlayerSummary{Username: s.Username, Elo: s.Elo}
}

// Room is a single game session. All state behind mu; events for one
// room are serialized by it, so both seats always observe a consistent
// board alongside each broadcast.
type Room struct {
	Code string

	mu           sync.Mutex
	white        *Seat
	black        *Seat
	board        *chess.Board
	pendingDraw  chess.Color // color that offered; "" when none
	ended        bool
	createdAt    time.Time
	lastActivity time.Time
}

// NewRoom creates a room with the caller seated as white. The board is
// not created until the second seat fills.
func NewRoom(code string, white *Seat) *Room {
	now := time.Now()
	return &Room{
		Code:         code,
		white:        white,
		createdAt:    now,
		lastActivity: now,
	}
}

// MoveOutcome is everything a caller needs after a successful move.
type MoveOutcome struct {
	Record chess.MoveRecord
	Status chess.Status
}

// SeatColor returns the color a player occupies, if seated.
func (r *Room) SeatColor(id types.PlayerID) (chess.Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatColorLocked(id)
}

func (r *Room) seatColorLocked(id types.PlayerID) (chess.Color, bool) {
	if r.white != nil && r.white.PlayerID == id {
		return chess.White, true
	}
	if r.black != nil && r.black.PlayerID == id {
		return chess.Black, true
	}
	return "", false
}

func (r *Room) seatLocked(c chess.Color) *Seat {
	if c == chess.White {
		return r.white
	}
	return r.black
}

// WhiteID returns the id of the player seated as white.
func (r *Room) WhiteID() types.PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.white.PlayerID
}

// IsFull reports whether both seats are occupied.
func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.black != nil
}

// Ended reports whether the game has reached a terminal outcome.
func (r *Room) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// SeatBlack fills the second seat. The reason is empty on success; a
// full room refuses further joiners and the creator cannot join their
// own room. Seating and the occupancy check happen under one lock
// acquisition, so two racing joins cannot both claim the seat.
func (r *Room) SeatBlack(black *Seat) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.black != nil {
		return protocol.ReasonRoomFull
	}
	if r.white.PlayerID == black.PlayerID {
		return protocol.ReasonCannotJoinOwnRoom
	}
	r.black = black
	return ""
}

// Start creates the board and announces the game to both players.
// startEvent is game-started or match-found; the payload shape is
// identical. Both seats must be filled; a second Start is a no-op so a
// stale caller cannot reset a game in progress.
func (r *Room) Start(startEvent string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.black == nil || r.board != nil {
		return
	}
	r.board = chess.NewBoard()
	r.lastActivity = time.Now()

	logging.Info(context.Background(), "Game starting",
		zap.String("room", r.Code),
		zap.String("white", r.white.Username),
		zap.String("black", r.black.Username))

	snap := r.board.Snapshot()
	base := protocol.GameStartedEvent{
		Code:        r.Code,
		WhitePlayer: r.white.Summary(),
		BlackPlayer: r.black.Summary(),
		GameState:   snap,
	}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		seat := r.seatLocked(c)
		if seat.Conn == nil {
			continue
		}
		payload := base
		payload.PlayerColor = c
		seat.Conn.Send(startEvent, payload)
	}
}

// MakeMove validates and applies a move from the given player. On
// success the move is broadcast to both seats and the resulting status
// returned; on rejection only the sender is told.
func (r *Room) MakeMove(id types.PlayerID, from, to chess.Square, promotion string) (MoveOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated || r.board == nil || r.ended {
		r.sendToPlayerLocked(id, protocol.EventError,
			protocol.ErrorEvent{Message: protocol.ReasonRoomNotFound})
		return MoveOutcome{}, false
	}

	move, reject := r.board.Validate(from, to, promotion, color)
	if reject != "" {
		r.sendToPlayerLocked(id, protocol.EventMoveInvalid,
			protocol.MoveInvalidEvent{Reason: string(reject)})
		return MoveOutcome{}, false
	}

	rec := r.board.Apply(move)
	r.pendingDraw = "" // a move supersedes any standing offer
	r.lastActivity = time.Now()

	snap := r.board.Snapshot()
	r.broadcastLocked(protocol.EventMoveMade, protocol.MoveMadeEvent{
		Move:      rec,
		GameState: snap,
	})
	return MoveOutcome{Record: rec, Status: snap.Status}, true
}

// Chat relays a message to both seats with the sender's name and a
// server timestamp. The echo to the sender confirms delivery order.
func (r *Room) Chat(id types.PlayerID, message string) string {
	if len(message) == 0 {
		return protocol.ReasonMessageEmpty
	}
	if utf8.RuneCountInString(message) > protocol.MaxChatMessageLength {
		return protocol.ReasonMessageTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated {
		return protocol.ReasonRoomNotFound
	}

	r.broadcastLocked(protocol.EventChatMessage, protocol.ChatMessageEvent{
		Sender:    r.seatLocked(color).Username,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	return ""
}

// OfferDraw records a pending offer and forwards it to the opponent.
func (r *Room) OfferDraw(id types.PlayerID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated || r.ended {
		return protocol.ReasonRoomNotFound
	}

	r.pendingDraw = color
	if opp := r.seatLocked(color.Opponent()); opp != nil && opp.Conn != nil {
		opp.Conn.Send(protocol.EventDrawOffered, nil)
	}
	return ""
}

// RespondDraw resolves a pending offer. accepted reports that the game
// should end as an agreed draw; reject is non-empty when there was no
// offer to respond to, or the responder made the offer themselves.
func (r *Room) RespondDraw(id types.PlayerID, accept bool) (accepted bool, reject string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated || r.ended {
		return false, protocol.ReasonRoomNotFound
	}
	if r.pendingDraw == "" || r.pendingDraw == color {
		return false, protocol.ReasonNoPendingDraw
	}

	offerer := r.pendingDraw
	r.pendingDraw = ""
	if accept {
		return true, ""
	}
	if seat := r.seatLocked(offerer); seat != nil && seat.Conn != nil {
		seat.Conn.Send(protocol.EventDrawDeclined, nil)
	}
	return false, ""
}

// Resign returns the winning color for an end-of-game by resignation.
func (r *Room) Resign(id types.PlayerID) (chess.Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated || r.ended {
		return "", false
	}
	return color.Opponent(), true
}

// Finish marks the room ended and returns both seats for the caller to
// settle ratings. The second call returns false, which makes the
// competing end-of-game paths (move, resign, forfeit timer) idempotent.
func (r *Room) Finish() (white, black *Seat, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended || r.black == nil {
		return nil, nil, false
	}
	r.ended = true
	r.pendingDraw = ""
	return r.white, r.black, true
}

// DetachSeat clears the transport of a disconnected player and tells
// the opponent. Reports whether the player was seated here.
func (r *Room) DetachSeat(id types.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	color, seated := r.seatColorLocked(id)
	if !seated {
		return false
	}
	r.seatLocked(color).Conn = nil
	if opp := r.seatLocked(color.Opponent()); opp != nil && opp.Conn != nil {
		opp.Conn.Send(protocol.EventOpponentDisconnected, nil)
	}
	return true
}

// AttachSeat re-binds a transport to the seat of the given color, sends
// the restored game state to it and notifies the opponent.
func (r *Room) AttachSeat(color chess.Color, conn types.ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seatLocked(color)
	if seat == nil {
		return
	}
	seat.Conn = conn
	r.lastActivity = time.Now()

	if r.board != nil {
		conn.Send(protocol.EventGameRestored, protocol.GameRestoredEvent{
			Code:        r.Code,
			PlayerColor: color,
			GameState:   r.board.Snapshot(),
		})
	}
	if opp := r.seatLocked(color.Opponent()); opp != nil && opp.Conn != nil {
		opp.Conn.Send(protocol.EventOpponentReconnected, nil)
	}
}

// Broadcast sends an event to both seats.
func (r *Room) Broadcast(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(event, payload)
}

func (r *Room) broadcastLocked(event string, payload any) {
	for _, seat := range []*Seat{r.white, r.black} {
		if seat != nil && seat.Conn != nil {
			seat.Conn.Send(event, payload)
		}
	}
}

func (r *Room) sendToPlayerLocked(id types.PlayerID, event string, payload any) {
	for _, seat := range []*Seat{r.white, r.black} {
		if seat != nil && seat.PlayerID == id && seat.Conn != nil {
			seat.Conn.Send(event, payload)
		}
	}
}

// BothSeatsAbsent reports that nobody is connected to the room.
func (r *Room) BothSeatsAbsent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	whiteGone := r.white == nil || r.white.Conn == nil
	blackGone := r.black == nil || r.black.Conn == nil
	return whiteGone && blackGone
}
