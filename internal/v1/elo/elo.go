// Package elo computes rating adjustments for finished games.
package elo

import (
	"fmt"
	"math"
)

// KFactor is the weight applied to every rating update.
const KFactor = 32

// Score values accepted by Delta.
const (
	ScoreLoss = 0
	ScoreDraw = 0.5
	ScoreWin  = 1
)

// Expected returns the expected score of a player against an opponent.
func Expected(player, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-player)/400))
}

// Delta returns the integer rating change for a player who scored
// `actual` against the opponent. actual must be 0, 0.5 or 1.
func Delta(player, opponent int, actual float64) (int, error) {
	if actual != ScoreLoss && actual != ScoreDraw && actual != ScoreWin {
		return 0, fmt.Errorf("elo: invalid score %v", actual)
	}
	return int(math.Round(KFactor * (actual - Expected(player, opponent)))), nil
}
