// Package protocol defines the wire format spoken over the WebSocket:
// a tagged JSON envelope {event, data} and the payload shapes for every
// event in both directions.
package protocol

import (
	"encoding/json"

	"github.com/openrook/chesshub/internal/v1/chess"
)

// Client -> server events.
const (
	EventCreateRoom      = "create-room"
	EventJoinRoom        = "join-room"
	EventFindMatch       = "find-match"
	EventCancelFindMatch = "cancel-find-match"
	EventMakeMove        = "make-move"
	EventChatMessage     = "chat-message"
	EventOfferDraw       = "offer-draw"
	EventRespondDraw     = "respond-draw"
	EventResign          = "resign"
	EventReconnect       = "reconnect-player"
	EventFriendRequest   = "friend-request"
	EventFriendAccept    = "friend-accept"
	EventFriendDecline   = "friend-decline"
	EventFriendRemove    = "friend-remove"
	EventFriendList      = "friend-list"
)

// Server -> client events.
const (
	EventConnected            = "connected"
	EventRoomCreated          = "room-created"
	EventGameStarted          = "game-started"
	EventMatchFound           = "match-found"
	EventMoveMade             = "move-made"
	EventMoveInvalid          = "move-invalid"
	EventDrawOffered          = "draw-offered"
	EventDrawDeclined         = "draw-declined"
	EventGameEnded            = "game-ended"
	EventOpponentDisconnected = "opponent-disconnected"
	EventOpponentReconnected  = "opponent-reconnected"
	EventGameRestored         = "game-restored"
	EventError                = "error"
	EventFriends              = "friends"
	EventFriendRequested      = "friend-requested"
)

// Error reason tags outside the move-validation taxonomy, which lives
// in the chess package.
const (
	ReasonRoomNotFound        = "room-not-found"
	ReasonRoomFull            = "room-full"
	ReasonCannotJoinOwnRoom   = "cannot-join-own-room"
	ReasonNoActiveSession     = "no-active-session"
	ReasonMessageEmpty        = "message-empty"
	ReasonMessageTooLong      = "message-too-long"
	ReasonPlayerNotIdentified = "player-not-identified"
	ReasonNoPendingDraw       = "no-pending-draw"
)

// Game end reasons carried by GameEndedEvent.
const (
	EndCheckmate   = "checkmate"
	EndStalemate   = "stalemate"
	EndDraw        = "draw"
	EndDrawAgreed  = "draw-agreed"
	EndResignation = "resignation"
	EndTimeout     = "timeout"
)

// MaxChatMessageLength bounds chat payloads.
const MaxChatMessageLength = 500

// Envelope is the tagged frame every message travels in.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw frame into an envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}

// Encode builds the raw frame for an event and payload.
func Encode(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// --- Client -> server payloads ---

// PlayerInfo is the self-description a client supplies when entering
// a room or the matchmaking queue.
type PlayerInfo struct {
	Username string `json:"username"`
}

type CreateRoomRequest struct {
	PlayerInfo PlayerInfo `json:"playerInfo"`
}

type JoinRoomRequest struct {
	Code       string     `json:"code"`
	PlayerInfo PlayerInfo `json:"playerInfo"`
}

type FindMatchRequest struct {
	PlayerInfo PlayerInfo `json:"playerInfo"`
}

type MakeMoveRequest struct {
	Code      string       `json:"code"`
	From      chess.Square `json:"from"`
	To        chess.Square `json:"to"`
	Promotion string       `json:"promotion,omitempty"`
}

type ChatMessageRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OfferDrawRequest struct {
	Code string `json:"code"`
}

type RespondDrawRequest struct {
	Code   string `json:"code"`
	Accept bool   `json:"accept"`
}

type ResignRequest struct {
	Code string `json:"code"`
}

type ReconnectRequest struct {
	PlayerID string `json:"playerId"`
}

// FriendActionRequest targets another user by name.
type FriendActionRequest struct {
	Username string `json:"username"`
}

// --- Server -> client payloads ---

// ConnectedEvent greets a fresh connection with its identity and the
// token that lets it reclaim that identity later.
type ConnectedEvent struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type RoomCreatedEvent struct {
	Code string `json:"code"`
}

// PlayerSummary is the public view of a seated player.
type PlayerSummary struct {
	Username string `json:"username"`
	Elo      int    `json:"elo"`
}

// GameStartedEvent doubles as the match-found payload; the two events
// differ only in name.
type GameStartedEvent struct {
	Code        string              `json:"code"`
	PlayerColor chess.Color         `json:"playerColor"`
	WhitePlayer PlayerSummary       `json:"whitePlayer"`
	BlackPlayer PlayerSummary       `json:"blackPlayer"`
	GameState   chess.StateSnapshot `json:"gameState"`
}

type MoveMadeEvent struct {
	Move      chess.MoveRecord    `json:"move"`
	GameState chess.StateSnapshot `json:"gameState"`
}

type MoveInvalidEvent struct {
	Reason string `json:"reason"`
}

type ChatMessageEvent struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// EloPair carries a per-color value in game-end payloads.
type EloPair struct {
	White int `json:"white"`
	Black int `json:"black"`
}

type GameEndedEvent struct {
	Reason     string      `json:"reason"`
	Winner     chess.Color `json:"winner,omitempty"`
	EloChanges EloPair     `json:"eloChanges"`
	NewElos    EloPair     `json:"newElos"`
}

type GameRestoredEvent struct {
	Code        string              `json:"code"`
	PlayerColor chess.Color         `json:"playerColor"`
	GameState   chess.StateSnapshot `json:"gameState"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// FriendsEvent is the response to friend-list and the refresh pushed
// after any friend mutation.
type FriendsEvent struct {
	Friends []string `json:"friends"`
	Pending []string `json:"pending"`
}

// FriendRequestedEvent notifies a user of an incoming request.
type FriendRequestedEvent struct {
	From string `json:"from"`
}
