package session

import (
	"context"

	"github.com/openrook/chesshub/internal/v1/chess"
	"github.com/openrook/chesshub/internal/v1/elo"
	"github.com/openrook/chesshub/internal/v1/logging"
	"github.com/openrook/chesshub/internal/v1/metrics"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/rooms"
	"github.com/openrook/chesshub/internal/v1/store"
	"github.com/openrook/chesshub/internal/v1/types"
	"go.uber.org/zap"
)

// finishGame settles one game: rating deltas, persisted stats, the
// game-ended broadcast and registry cleanup. Room.Finish is the
// idempotence gate, so the competing end paths (move, resign, draw
// agreement, forfeit timer) cannot settle twice.
func (h *Hub) finishGame(ctx context.Context, room *rooms.Room, reason string, winner chess.Color) {
	white, black, ok := room.Finish()
	if !ok {
		return
	}

	whiteScore, blackScore := scoresFor(winner)

	whiteDelta, err := elo.Delta(white.Elo, black.Elo, whiteScore)
	if err != nil {
		logging.Error(ctx, "Failed to compute rating delta", zap.Error(err))
		whiteDelta = 0
	}
	blackDelta, err := elo.Delta(black.Elo, white.Elo, blackScore)
	if err != nil {
		logging.Error(ctx, "Failed to compute rating delta", zap.Error(err))
		blackDelta = 0
	}

	newWhite := white.Elo + whiteDelta
	newBlack := black.Elo + blackDelta

	h.persistResult(ctx, white.Username, resultFor(whiteScore), newWhite)
	h.persistResult(ctx, black.Username, resultFor(blackScore), newBlack)

	room.Broadcast(protocol.EventGameEnded, protocol.GameEndedEvent{
		Reason:     reason,
		Winner:     winner,
		EloChanges: protocol.EloPair{White: whiteDelta, Black: blackDelta},
		NewElos:    protocol.EloPair{White: newWhite, Black: newBlack},
	})

	h.conns.ClearForfeit(white.PlayerID)
	h.conns.ClearForfeit(black.PlayerID)
	h.unbindRoom(white.PlayerID, black.PlayerID)
	h.rooms.Remove(room.Code)

	metrics.GamesFinished.WithLabelValues(reason).Inc()
	metrics.ActiveRooms.Set(float64(h.rooms.Count()))
	metrics.PendingForfeits.Set(float64(h.conns.PendingForfeits()))

	logging.Info(ctx, "Game finished",
		zap.String("room", room.Code),
		zap.String("reason", reason),
		zap.String("winner", string(winner)),
		zap.Int("white_delta", whiteDelta),
		zap.Int("black_delta", blackDelta))
}

// onForfeit runs when a disconnected player's window elapses.
func (h *Hub) onForfeit(roomCode string, playerID types.PlayerID, color chess.Color) {
	room, ok := h.rooms.Get(roomCode)
	if !ok {
		return
	}
	h.finishGame(context.Background(), room, protocol.EndTimeout, color.Opponent())
}

func scoresFor(winner chess.Color) (white, black float64) {
	switch winner {
	case chess.White:
		return elo.ScoreWin, elo.ScoreLoss
	case chess.Black:
		return elo.ScoreLoss, elo.ScoreWin
	default:
		return elo.ScoreDraw, elo.ScoreDraw
	}
}

func resultFor(score float64) store.GameResult {
	switch score {
	case elo.ScoreWin:
		return store.ResultWin
	case elo.ScoreLoss:
		return store.ResultLoss
	default:
		return store.ResultDraw
	}
}

func (h *Hub) persistResult(ctx context.Context, username string, result store.GameResult, newElo int) {
	if err := h.store.UpdateStats(ctx, username, result, newElo); err != nil {
		logging.Error(ctx, "Failed to persist game result",
			zap.String("username", username), zap.Error(err))
	}
}
