package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/metrics"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"go.uber.org/zap"
)

// route decodes one frame and dispatches it to the matching handler.
// Malformed frames and unknown events produce an error event back to
// the sender instead of dropping the connection.
func (h *Hub) route(ctx context.Context, client *Client, raw []byte) {
	env, err := protocol.Decode(raw)
	if err != nil {
		logging.Warn(ctx, "Failed to decode frame",
			zap.String("player_id", string(client.PlayerID())), zap.Error(err))
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: "malformed frame"})
		return
	}

	start := time.Now()
	status := "ok"

	switch env.Event {
	case protocol.EventCreateRoom:
		var req protocol.CreateRoomRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleCreateRoom(ctx, client)

	case protocol.EventJoinRoom:
		var req protocol.JoinRoomRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleJoinRoom(ctx, client, req)

	case protocol.EventFindMatch:
		var req protocol.FindMatchRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleFindMatch(ctx, client)

	case protocol.EventCancelFindMatch:
		h.handleCancelFindMatch(ctx, client)

	case protocol.EventMakeMove:
		var req protocol.MakeMoveRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleMakeMove(ctx, client, req)

	case protocol.EventChatMessage:
		var req protocol.ChatMessageRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleChatMessage(ctx, client, req)

	case protocol.EventOfferDraw:
		h.handleOfferDraw(ctx, client)

	case protocol.EventRespondDraw:
		var req protocol.RespondDrawRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleRespondDraw(ctx, client, req)

	case protocol.EventResign:
		h.handleResign(ctx, client)

	case protocol.EventReconnect:
		h.handleReconnect(ctx, client)

	case protocol.EventFriendRequest:
		var req protocol.FriendActionRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleFriendRequest(ctx, client, req)

	case protocol.EventFriendAccept:
		var req protocol.FriendActionRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleFriendAccept(ctx, client, req)

	case protocol.EventFriendDecline:
		var req protocol.FriendActionRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleFriendDecline(ctx, client, req)

	case protocol.EventFriendRemove:
		var req protocol.FriendActionRequest
		if !h.bind(client, env.Data, &req) {
			status = "bad_payload"
			break
		}
		h.handleFriendRemove(ctx, client, req)

	case protocol.EventFriendList:
		h.handleFriendList(ctx, client)

	default:
		status = "unknown_event"
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: "unknown event: " + env.Event})
	}

	metrics.WebsocketEvents.WithLabelValues(env.Event, status).Inc()
	metrics.MessageProcessingDuration.WithLabelValues(env.Event).Observe(time.Since(start).Seconds())
}

// bind unmarshals a payload, reporting failures to the sender. An
// absent payload leaves the zero value, which handlers treat the same
// as empty fields.
func (h *Hub) bind(client *Client, data json.RawMessage, out any) bool {
	if len(data) == 0 {
		return true
	}
	if err := json.Unmarshal(data, out); err != nil {
		client.Send(protocol.EventError, protocol.ErrorEvent{Message: "malformed payload"})
		return false
	}
	return true
}
