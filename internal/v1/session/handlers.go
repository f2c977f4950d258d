package session

import (
	"context"

	"github.com/openrook/chesshub/internal/v1/chess"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/metrics"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/rooms"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

func (h *Hub) handleCreateRoom(ctx context.Context, client *Client) {
	seat, err := h.seatFor(ctx, client)
	if err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}

	room := h.rooms.CreateRoom(seat)
	h.bindRoom(client.PlayerID(), room.Code)
	metrics.ActiveRooms.Set(float64(h.rooms.Count()))

	client.Send(protocol.EventRoomCreated, protocol.RoomCreatedEvent{Code: room.Code})
}

func (h *Hub) handleJoinRoom(ctx context.Context, client *Client, req protocol.JoinRoomRequest) {
	seat, err := h.seatFor(ctx, client)
	if err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}

	room, reason := h.rooms.JoinRoom(req.Code, seat)
	if reason != "" {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: reason})
		return
	}

	h.bindRoom(client.PlayerID(), room.Code)
	room.Start(protocol.EventGameStarted)
}

func (h *Hub) handleFindMatch(ctx context.Context, client *Client) {
	seat, err := h.seatFor(ctx, client)
	if err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}

	h.rooms.Enqueue(&rooms.QueueEntry{
		PlayerID: seat.PlayerID,
		Info:     protocol.PlayerInfo{Username: seat.Username},
		Elo:      seat.Elo,
		Conn:     client,
	})

	room, _, black := h.rooms.FindMatch()
	metrics.MatchmakingQueueDepth.Set(float64(h.rooms.QueueLen()))
	if room == nil {
		return
	}

	h.bindRoom(room.WhiteID(), room.Code)
	h.bindRoom(black.PlayerID, room.Code)
	metrics.ActiveRooms.Set(float64(h.rooms.Count()))

	room.Start(protocol.EventMatchFound)
}

func (h *Hub) handleCancelFindMatch(ctx context.Context, client *Client) {
	h.rooms.Dequeue(client.PlayerID())
	metrics.MatchmakingQueueDepth.Set(float64(h.rooms.QueueLen()))
}

func (h *Hub) handleMakeMove(ctx context.Context, client *Client, req protocol.MakeMoveRequest) {
	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}

	outcome, applied := room.MakeMove(client.PlayerID(), req.From, req.To, req.Promotion)
	if !applied {
		metrics.MovesProcessed.WithLabelValues("rejected").Inc()
		return
	}
	metrics.MovesProcessed.WithLabelValues("accepted").Inc()

	switch outcome.Status {
	case chess.StatusCheckmate:
		mover, _ := room.SeatColor(client.PlayerID())
		h.finishGame(ctx, room, protocol.EndCheckmate, mover)
	case chess.StatusStalemate:
		h.finishGame(ctx, room, protocol.EndStalemate, "")
	case chess.StatusDraw:
		h.finishGame(ctx, room, protocol.EndDraw, "")
	}
}

func (h *Hub) handleChatMessage(ctx context.Context, client *Client, req protocol.ChatMessageRequest) {
	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}
	if reason := room.Chat(client.PlayerID(), req.Message); reason != "" {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: reason})
	}
}

func (h *Hub) handleOfferDraw(ctx context.Context, client *Client) {
	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}
	if reason := room.OfferDraw(client.PlayerID()); reason != "" {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: reason})
	}
}

func (h *Hub) handleRespondDraw(ctx context.Context, client *Client, req protocol.RespondDrawRequest) {
	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}

	accepted, reason := room.RespondDraw(client.PlayerID(), req.Accept)
	if reason != "" {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: reason})
		return
	}
	if accepted {
		h.finishGame(ctx, room, protocol.EndDrawAgreed, "")
	}
}

func (h *Hub) handleResign(ctx context.Context, client *Client) {
	room, ok := h.roomOf(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}

	winner, ok := room.Resign(client.PlayerID())
	if !ok {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonPlayerNotIdentified})
		return
	}
	h.finishGame(ctx, room, protocol.EndResignation, winner)
}

// handleReconnect rebinds a returning player to their seat. The player
// id comes from the identity token presented at connect time, so the
// frame itself carries nothing to verify.
func (h *Hub) handleReconnect(ctx context.Context, client *Client) {
	id := client.PlayerID()

	if roomCode, color, ok := h.conns.Reconnect(id); ok {
		metrics.PendingForfeits.Set(float64(h.conns.PendingForfeits()))
		if room, found := h.rooms.Get(roomCode); found {
			h.bindRoom(id, room.Code)
			room.AttachSeat(color, client)
			logging.Info(ctx, "Player reconnected",
				zap.String("player_id", string(id)), zap.String("room", roomCode))
			return
		}
	}

	// No forfeit pending; the player may still hold a live seat, e.g.
	// after a fast drop where the old pump never noticed.
	if room, ok := h.roomOf(id); ok && !room.Ended() {
		if color, seated := room.SeatColor(id); seated {
			room.AttachSeat(color, client)
			return
		}
	}

	client.Send(protocol.EventError, protocol.ErrorEvent{Message: protocol.ReasonNoActiveSession})
}

// --- Friends ---

func (h *Hub) handleFriendRequest(ctx context.Context, client *Client, req protocol.FriendActionRequest) {
	if err := h.store.SendFriendRequest(ctx, client.Username(), req.Username); err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	h.pushFriends(ctx, client)
	h.notifyUser(req.Username, protocol.EventFriendRequested,
		protocol.FriendRequestedEvent{From: client.Username()})
}

func (h *Hub) handleFriendAccept(ctx context.Context, client *Client, req protocol.FriendActionRequest) {
	if err := h.store.AcceptFriendRequest(ctx, client.Username(), req.Username); err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	h.pushFriends(ctx, client)
	h.refreshFriendsOf(ctx, req.Username)
}

func (h *Hub) handleFriendDecline(ctx context.Context, client *Client, req protocol.FriendActionRequest) {
	if err := h.store.DeclineFriendRequest(ctx, client.Username(), req.Username); err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	h.pushFriends(ctx, client)
}

func (h *Hub) handleFriendRemove(ctx context.Context, client *Client, req protocol.FriendActionRequest) {
	if err := h.store.RemoveFriend(ctx, client.Username(), req.Username); err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	h.pushFriends(ctx, client)
	h.refreshFriendsOf(ctx, req.Username)
}

func (h *Hub) handleFriendList(ctx context.Context, client *Client) {
	h.pushFriends(ctx, client)
}

// pushFriends sends the client their current friends and pending
// requests.
func (h *Hub) pushFriends(ctx context.Context, client *Client) {
	friends, err := h.store.GetFriends(ctx, client.Username())
	if err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	pending, err := h.store.GetPendingRequests(ctx, client.Username())
	if err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: err.Error()})
		return
	}
	client.Send(protocol.EventFriends, protocol.FriendsEvent{Friends: friends, Pending: pending})
}

// refreshFriendsOf pushes a fresh friends list to a user if they are
// online, after a mutation made by someone else.
func (h *Hub) refreshFriendsOf(ctx context.Context, username string) {
	conn, ok := h.lookupByUsername(username)
	if !ok {
		return
	}
	friends, err := h.store.GetFriends(ctx, username)
	if err != nil {
		return
	}
	pending, err := h.store.GetPendingRequests(ctx, username)
	if err != nil {
		return
	}
	conn.Send(protocol.EventFriends, protocol.FriendsEvent{Friends: friends, Pending: pending})
}

func (h *Hub) notifyUser(username, event string, payload any) {
	if conn, ok := h.lookupByUsername(username); ok {
		conn.Send(event, payload)
	}
}

func (h *Hub) lookupByUsername(username string) (types.ClientConn, bool) {
	return h.conns.LookupByUsername(username)
}
